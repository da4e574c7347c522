package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFormatLine(t *testing.T) {
	ev := TicketEvent{
		EventID: "e1", Kind: KindRefund, UserID: 7, TrainID: "G1",
		DepartureStation: 1, ArrivalStation: 2,
		DepartureTime: "08:00_06-01", ArrivalTime: "08:30_06-01",
		Tickets: 2, Price: 10, OccurredAt: "2026-06-01T07:00:00Z",
	}
	got := formatLine(ev)
	want := `[2026-06-01T07:00:00Z] Tickets refunded | event_id=e1 | user_id=7 | train="G1" | from=1 | to=2 | departs=08:00_06-01 | arrives=08:30_06-01 | tickets=2 | price=10` + "\n"
	if got != want {
		t.Fatalf("formatLine:\n got %q\nwant %q", got, want)
	}
}

func TestHandleMessageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "trips.log")
	for i := 0; i < 2; i++ {
		body, _ := json.Marshal(NewTicketEvent(TicketEvent{Kind: KindPurchase, UserID: 1, TrainID: "G1", Tickets: 1}))
		if err := handleMessage(body, path); err != nil {
			t.Fatalf("handleMessage: %v", err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "Tickets bought") {
		t.Fatalf("log = %q", data)
	}
	if err := handleMessage([]byte("{"), path); err == nil {
		t.Fatal("malformed body accepted")
	}
}

func TestNewTicketEventIDs(t *testing.T) {
	a, b := NewTicketEvent(TicketEvent{}), NewTicketEvent(TicketEvent{})
	if a.EventID == "" || a.EventID == b.EventID || a.OccurredAt == "" {
		t.Fatalf("events %+v %+v", a, b)
	}
}
