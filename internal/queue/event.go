// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// TripQueueName is the durable queue carrying TicketEvent messages.
const TripQueueName = "trips.changed"

// Event kinds.
const (
	KindPurchase = "purchase"
	KindRefund   = "refund"
)

// TicketEvent is published after a purchase or refund is committed.  It
// carries enough of the trip for downstream consumers to log or notify
// without reading the ledger.
type TicketEvent struct {
	EventID          string `json:"event_id"`
	Kind             string `json:"kind"`
	RequestID        string `json:"request_id"`
	UserID           uint64 `json:"user_id"`
	TrainID          string `json:"train_id"`
	DepartureStation int    `json:"departure_station"`
	ArrivalStation   int    `json:"arrival_station"`
	DepartureTime    string `json:"departure_time"`
	ArrivalTime      string `json:"arrival_time"`
	Tickets          int    `json:"tickets"`
	Price            int    `json:"price"`
	OccurredAt       string `json:"occurred_at"`
}

// NewTicketEvent stamps a fresh event id and the current time onto ev.
func NewTicketEvent(ev TicketEvent) TicketEvent {
	ev.EventID = uuid.NewString()
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	return ev
}
