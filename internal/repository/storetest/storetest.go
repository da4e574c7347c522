// Package storetest holds behaviour checks shared by every repository
// backend.  Each backend's tests call Run with a constructor.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/railway-ticketing/internal/model"
	"github.com/iliyamo/railway-ticketing/internal/repository"
)

// Run exercises the backend returned by newBackend.  Every subtest gets a
// fresh backend.
func Run(t *testing.T, newBackend func(t *testing.T) *repository.Backend) {
	t.Run("Schedules", func(t *testing.T) { testSchedules(t, newBackend(t)) })
	t.Run("Inventory", func(t *testing.T) { testInventory(t, newBackend(t)) })
	t.Run("Trips", func(t *testing.T) { testTrips(t, newBackend(t)) })
	t.Run("TxRollback", func(t *testing.T) { testRollback(t, newBackend(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, newBackend(t)) })
	t.Run("Tokens", func(t *testing.T) { testTokens(t, newBackend(t)) })
}

func mustMoment(t *testing.T, s string) time.Time {
	t.Helper()
	m, err := model.ParseMoment(s)
	if err != nil {
		t.Fatalf("ParseMoment(%q): %v", s, err)
	}
	return m
}

func testSchedules(t *testing.T, b *repository.Backend) {
	ctx := context.Background()
	start := 8 * time.Hour
	tt := model.TrainTimetable{
		TrainID:      "G1",
		SeatCapacity: 10,
		StartTime:    &start,
		Stations:     []model.StationID{1, 2, 3},
		Durations:    []int{30, 40},
		Prices:       []int{10, 15},
	}
	if err := b.Schedules.Put(ctx, tt); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := b.Schedules.Put(ctx, tt); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("second Put: got %v, want ErrDuplicate", err)
	}
	ok, err := b.Schedules.Exists(ctx, "G1")
	if err != nil || !ok {
		t.Fatalf("Exists(G1) = %v, %v", ok, err)
	}
	got, err := b.Schedules.Get(ctx, "G1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.SeatCapacity != 10 || len(got.Stations) != 3 || got.Prices[1] != 15 || got.StartTime == nil || *got.StartTime != start {
		t.Fatalf("Get returned %+v", got)
	}
	if _, err := b.Schedules.Get(ctx, "nope"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Get(missing): got %v, want ErrNotFound", err)
	}

	other := tt
	other.TrainID = "D7"
	other.StartTime = nil
	if err := b.Schedules.Put(ctx, other); err != nil {
		t.Fatalf("Put D7: %v", err)
	}
	list, err := b.Schedules.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].TrainID != "D7" || list[1].TrainID != "G1" || list[0].StartTime != nil {
		t.Fatalf("List = %+v", list)
	}

	if err := b.Schedules.Delete(ctx, "G1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ok, _ := b.Schedules.Exists(ctx, "G1"); ok {
		t.Fatal("G1 still exists after Delete")
	}
}

func seedInventory(t *testing.T, b *repository.Backend) []model.InventoryRecord {
	t.Helper()
	run, _ := model.ParseDate("06-01")
	recs := []model.InventoryRecord{
		{TrainID: "G1", RunDate: run, DepartureTime: mustMoment(t, "08:00_06-01"), DepartureStation: 1, ArrivalStation: 2, RemainingSeats: 5, Price: 10, Duration: 30},
		{TrainID: "G1", RunDate: run, DepartureTime: mustMoment(t, "08:30_06-01"), DepartureStation: 2, ArrivalStation: 3, RemainingSeats: 5, Price: 15, Duration: 40},
	}
	if err := b.Inventory.BulkInsert(context.Background(), recs); err != nil {
		t.Fatalf("BulkInsert: %v", err)
	}
	return recs
}

func testInventory(t *testing.T, b *repository.Backend) {
	ctx := context.Background()
	recs := seedInventory(t, b)
	key := recs[0].Key()

	got, err := b.Inventory.Find(ctx, key)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.RemainingSeats != 5 || got.ArrivalStation != 2 || model.FormatDate(got.RunDate) != "06-01" {
		t.Fatalf("Find = %+v", got)
	}

	price, err := b.Inventory.UpsertSeats(ctx, key, -5)
	if err != nil || price != 10 {
		t.Fatalf("UpsertSeats(-5) = %d, %v", price, err)
	}
	if _, err := b.Inventory.UpsertSeats(ctx, key, -1); !errors.Is(err, repository.ErrInsufficientSeats) {
		t.Fatalf("UpsertSeats below zero: got %v", err)
	}
	if got, _ := b.Inventory.Find(ctx, key); got.RemainingSeats != 0 {
		t.Fatalf("seats after rejected delta = %d, want 0", got.RemainingSeats)
	}
	missing := key
	missing.DepartureStation = 9
	if _, err := b.Inventory.UpsertSeats(ctx, missing, 1); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("UpsertSeats(missing): got %v", err)
	}

	// A batch overlapping an existing key inserts nothing.
	again := []model.InventoryRecord{recs[1]}
	again = append(again, recs[1])
	again[0].DepartureStation = 7
	if err := b.Inventory.BulkInsert(ctx, again); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("BulkInsert duplicate: got %v", err)
	}
	probe := again[0].Key()
	if _, err := b.Inventory.Find(ctx, probe); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("partial batch was stored: %v", err)
	}

	n, err := b.Inventory.BulkDelete(ctx, "G1", recs[0].RunDate)
	if err != nil || n != 2 {
		t.Fatalf("BulkDelete = %d, %v", n, err)
	}
	if _, err := b.Inventory.Find(ctx, key); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Find after delete: %v", err)
	}
}

func testTrips(t *testing.T, b *repository.Backend) {
	ctx := context.Background()
	trip := model.TripRecord{
		TrainID: "G1", DepartureStation: 1, ArrivalStation: 2, TicketCount: 2,
		Duration: 30, Price: 10,
		DepartureTime: mustMoment(t, "08:00_06-01"), ArrivalTime: mustMoment(t, "08:30_06-01"),
	}
	a, err := b.Trips.Insert(ctx, 7, trip)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	trip.TicketCount = 3
	c, err := b.Trips.Insert(ctx, 7, trip)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if a.ID == c.ID {
		t.Fatalf("trip ids collide: %d", a.ID)
	}
	list, err := b.Trips.Find(ctx, 7)
	if err != nil || len(list) != 2 || list[0].TicketCount != 2 || list[1].TicketCount != 3 {
		t.Fatalf("Find = %+v, %v", list, err)
	}
	if !list[0].DepartureTime.Equal(trip.DepartureTime) {
		t.Fatalf("departure time = %v", list[0].DepartureTime)
	}
	if err := b.Trips.Remove(ctx, 8, a); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Remove other user's trip: got %v", err)
	}
	if err := b.Trips.Remove(ctx, 7, a); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	list, _ = b.Trips.Find(ctx, 7)
	if len(list) != 1 || list[0].ID != c.ID {
		t.Fatalf("Find after remove = %+v", list)
	}
	if list, _ := b.Trips.Find(ctx, 99); len(list) != 0 {
		t.Fatalf("unknown user has trips: %+v", list)
	}
}

func testRollback(t *testing.T, b *repository.Backend) {
	ctx := context.Background()
	recs := seedInventory(t, b)
	boom := errors.New("boom")
	err := b.Tx.InTx(ctx, func(l repository.Ledger) error {
		if _, err := l.Inventory().UpsertSeats(ctx, recs[0].Key(), -3); err != nil {
			return err
		}
		if _, err := l.Trips().Insert(ctx, 1, model.TripRecord{
			TrainID: "G1", DepartureStation: 1, ArrivalStation: 2, TicketCount: 3,
			DepartureTime: recs[0].DepartureTime, ArrivalTime: recs[0].DepartureTime,
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx: got %v, want boom", err)
	}
	got, err := b.Inventory.Find(ctx, recs[0].Key())
	if err != nil || got.RemainingSeats != 5 {
		t.Fatalf("seats after rollback = %d, %v", got.RemainingSeats, err)
	}
	if list, _ := b.Trips.Find(ctx, 1); len(list) != 0 {
		t.Fatalf("trip survived rollback: %+v", list)
	}

	err = b.Tx.InTx(ctx, func(l repository.Ledger) error {
		_, err := l.Inventory().UpsertSeats(ctx, recs[0].Key(), -3)
		return err
	})
	if err != nil {
		t.Fatalf("InTx commit: %v", err)
	}
	if got, _ := b.Inventory.Find(ctx, recs[0].Key()); got.RemainingSeats != 2 {
		t.Fatalf("seats after commit = %d, want 2", got.RemainingSeats)
	}
}

func testUsers(t *testing.T, b *repository.Backend) {
	ctx := context.Background()
	u := model.User{ID: 3, Username: "ann", PasswordHash: "h1", Privilege: 2}
	if err := b.Users.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := b.Users.Create(ctx, u); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("second Create: got %v", err)
	}
	if err := b.Users.UpdatePassword(ctx, 3, "h2"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	if err := b.Users.UpdatePrivilege(ctx, 3, 5); err != nil {
		t.Fatalf("UpdatePrivilege: %v", err)
	}
	got, err := b.Users.Get(ctx, 3)
	if err != nil || got.PasswordHash != "h2" || got.Privilege != 5 || got.Username != "ann" {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if _, err := b.Users.Get(ctx, 4); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Get(missing): got %v", err)
	}
	if err := b.Users.UpdatePrivilege(ctx, 4, 1); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("UpdatePrivilege(missing): got %v", err)
	}
}

func testTokens(t *testing.T, b *repository.Backend) {
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)
	if err := b.Tokens.StoreRefresh(ctx, 3, "aaa", exp); err != nil {
		t.Fatalf("StoreRefresh: %v", err)
	}
	if err := b.Tokens.StoreRefresh(ctx, 3, "bbb", exp); err != nil {
		t.Fatalf("StoreRefresh: %v", err)
	}
	if err := b.Tokens.StoreRefresh(ctx, 3, "old", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("StoreRefresh: %v", err)
	}
	if id, err := b.Tokens.ValidateRefresh(ctx, "aaa"); err != nil || id != 3 {
		t.Fatalf("ValidateRefresh = %d, %v", id, err)
	}
	if _, err := b.Tokens.ValidateRefresh(ctx, "old"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expired token validated: %v", err)
	}
	if err := b.Tokens.RevokeByHash(ctx, "aaa"); err != nil {
		t.Fatalf("RevokeByHash: %v", err)
	}
	if _, err := b.Tokens.ValidateRefresh(ctx, "aaa"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("revoked token validated: %v", err)
	}
	if err := b.Tokens.RevokeAllForUser(ctx, 3); err != nil {
		t.Fatalf("RevokeAllForUser: %v", err)
	}
	if _, err := b.Tokens.ValidateRefresh(ctx, "bbb"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("token survived RevokeAllForUser: %v", err)
	}
}
