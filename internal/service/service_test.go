package service

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/railway-ticketing/internal/booking"
	"github.com/iliyamo/railway-ticketing/internal/model"
	"github.com/iliyamo/railway-ticketing/internal/queue"
	"github.com/iliyamo/railway-ticketing/internal/repository"
	"github.com/iliyamo/railway-ticketing/internal/repository/memstore"
)

func newUsers(t *testing.T) *UserService {
	t.Helper()
	s := NewUserService(memstore.New().Users, bcrypt.MinCost, 10)
	if err := s.EnsureAdmin(context.Background(), "root"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	return s
}

func TestEnsureAdminIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newUsers(t)
	if err := s.EnsureAdmin(ctx, "other"); err != nil {
		t.Fatalf("second EnsureAdmin: %v", err)
	}
	u, err := s.Authenticate(ctx, AdminID, "root")
	if err != nil || u.Privilege != 10 {
		t.Fatalf("admin = %+v, %v", u, err)
	}
}

// racingUsers reports the admin as missing but refuses to create it, the way
// a store behaves when another instance inserted the row in between.
type racingUsers struct {
	repository.UserStore
}

func (racingUsers) Get(context.Context, uint64) (model.User, error) {
	return model.User{}, repository.ErrNotFound
}

func (racingUsers) Create(context.Context, model.User) error {
	return repository.ErrDuplicate
}

func TestEnsureAdminLosesCreateRace(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	s := NewUserService(racingUsers{memstore.New().Users}, bcrypt.MinCost, 10)
	if err := s.EnsureAdmin(context.Background(), "root"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if strings.Contains(buf.String(), "created admin") {
		t.Fatalf("logged a creation that did not happen:\n%s", buf.String())
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	s := newUsers(t)
	u, err := s.Register(ctx, 7, " alice ", "pw")
	if err != nil || u.Username != "alice" || u.Privilege != 0 {
		t.Fatalf("Register = %+v, %v", u, err)
	}
	if _, err := s.Register(ctx, 7, "bob", "pw"); !errors.Is(err, booking.ErrDuplicateID) {
		t.Fatalf("duplicate id: %v", err)
	}
	if _, err := s.Register(ctx, 8, "", "pw"); !errors.Is(err, booking.ErrMalformedInput) {
		t.Fatalf("empty username: %v", err)
	}
	if _, err := s.Authenticate(ctx, 7, "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := s.Authenticate(ctx, 99, "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: %v", err)
	}
}

func TestAccessRules(t *testing.T) {
	ctx := context.Background()
	s := newUsers(t)
	admin := booking.Caller{UserID: AdminID, Privilege: 10}
	alice := booking.Caller{UserID: 1}
	for _, id := range []uint64{1, 2} {
		if _, err := s.Register(ctx, id, "u", "pw"); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"self read", func() error { _, err := s.Get(ctx, alice, 1); return err }(), nil},
		{"peer read", func() error { _, err := s.Get(ctx, alice, 2); return err }(), booking.ErrPermissionDenied},
		{"admin reads user", func() error { _, err := s.Get(ctx, admin, 2); return err }(), nil},
		{"user reads admin", func() error { _, err := s.Get(ctx, alice, AdminID); return err }(), booking.ErrPermissionDenied},
		{"missing user", func() error { _, err := s.Get(ctx, admin, 42); return err }(), booking.ErrNotFound},
		{"self password", s.ChangePassword(ctx, alice, 1, "new"), nil},
		{"peer password", s.ChangePassword(ctx, alice, 2, "new"), booking.ErrPermissionDenied},
		{"self privilege", s.ChangePrivilege(ctx, alice, 1, 5), booking.ErrPermissionDenied},
		{"privilege too high", s.ChangePrivilege(ctx, admin, 2, 10), booking.ErrPermissionDenied},
		{"negative privilege", s.ChangePrivilege(ctx, admin, 2, -1), booking.ErrMalformedInput},
		{"admin promotes", s.ChangePrivilege(ctx, admin, 2, 9), nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.want == nil && tc.err != nil {
				t.Fatalf("unexpected error: %v", tc.err)
			}
			if tc.want != nil && !errors.Is(tc.err, tc.want) {
				t.Fatalf("err = %v, want %v", tc.err, tc.want)
			}
		})
	}

	if _, err := s.Authenticate(ctx, 1, "new"); err != nil {
		t.Fatalf("login with changed password: %v", err)
	}
	if u, _ := s.Load(ctx, 2); u.Privilege != 9 {
		t.Fatalf("privilege = %d, want 9", u.Privilege)
	}
}

func TestEventFromResult(t *testing.T) {
	dep := time.Date(model.ServiceYear, 6, 1, 8, 0, 0, 0, time.UTC)
	res := booking.Result{
		Request: model.PurchaseRequest{ID: "r1", UserID: 3, Quantity: -2},
		Outcome: booking.Fulfilled,
		Trip: model.TripRecord{
			TrainID: "G1", DepartureStation: 1, ArrivalStation: 2, TicketCount: 2, Price: 10,
			DepartureTime: dep, ArrivalTime: dep.Add(30 * time.Minute),
		},
	}
	ev := EventFromResult(res)
	if ev.Kind != queue.KindRefund || ev.RequestID != "r1" || ev.UserID != 3 || ev.Tickets != 2 {
		t.Fatalf("event = %+v", ev)
	}
	if ev.DepartureTime != "08:00_06-01" || ev.ArrivalTime != "08:30_06-01" || ev.EventID == "" {
		t.Fatalf("event times = %+v", ev)
	}
	if NewPublisher("") != nil {
		t.Fatal("empty URL should disable publishing")
	}
}
