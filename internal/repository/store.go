package repository

import (
    "context"
    "time"

    "github.com/iliyamo/railway-ticketing/internal/model"
)

// ScheduleStore persists train timetables keyed by train id.
type ScheduleStore interface {
    Exists(ctx context.Context, id model.TrainID) (bool, error)
    // Get returns ErrNotFound when no timetable is stored for id.
    Get(ctx context.Context, id model.TrainID) (model.TrainTimetable, error)
    // Put returns ErrDuplicate when a timetable for the train already exists.
    Put(ctx context.Context, t model.TrainTimetable) error
    Delete(ctx context.Context, id model.TrainID) error
    // List returns every timetable ordered by train id.
    List(ctx context.Context) ([]model.TrainTimetable, error)
}

// InventoryStore maps (train, departure moment, departure station) to the
// remaining seats of that segment.
type InventoryStore interface {
    // Find returns ErrNotFound when the key has no row.
    Find(ctx context.Context, key model.InventoryKey) (model.InventoryRecord, error)
    // UpsertSeats adds delta to the remaining seats of key and returns the
    // segment price.  It returns ErrNotFound for a missing row and
    // ErrInsufficientSeats when the result would be negative.
    UpsertSeats(ctx context.Context, key model.InventoryKey, delta int) (int, error)
    // BulkInsert stores all records or none; ErrDuplicate when any key exists.
    BulkInsert(ctx context.Context, records []model.InventoryRecord) error
    // BulkDelete removes every record of the train's run starting on runDate
    // and returns how many rows were removed.
    BulkDelete(ctx context.Context, id model.TrainID, runDate time.Time) (int, error)
}

// TripLedger maps a user id to the trips the user bought.
type TripLedger interface {
    Find(ctx context.Context, userID uint64) ([]model.TripRecord, error)
    // Insert stores the trip and returns it with its assigned ID.
    Insert(ctx context.Context, userID uint64, trip model.TripRecord) (model.TripRecord, error)
    // Remove deletes the trip with trip.ID owned by userID; ErrNotFound when
    // there is none.
    Remove(ctx context.Context, userID uint64, trip model.TripRecord) error
}

// Ledger is the transactional view handed to Transactor callbacks.  Stores
// obtained from it must only be used inside the callback.
type Ledger interface {
    Inventory() InventoryStore
    Trips() TripLedger
}

// Transactor runs inventory and trip mutations as one unit: when fn returns
// an error every mutation it made is undone and the error is returned.
type Transactor interface {
    InTx(ctx context.Context, fn func(l Ledger) error) error
}

// UserStore persists user accounts.
type UserStore interface {
    // Create returns ErrDuplicate when the id is taken.
    Create(ctx context.Context, u model.User) error
    // Get returns ErrNotFound when the user does not exist.
    Get(ctx context.Context, id uint64) (model.User, error)
    UpdatePassword(ctx context.Context, id uint64, hash string) error
    UpdatePrivilege(ctx context.Context, id uint64, privilege int) error
}

// TokenStore persists refresh token hashes.
type TokenStore interface {
    StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
    // ValidateRefresh returns ErrNotFound for unknown, revoked or expired tokens.
    ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
    RevokeByHash(ctx context.Context, tokenHash string) error
    RevokeAllForUser(ctx context.Context, userID uint64) error
}

// Backend bundles one implementation of every store.  The booking engine
// and the handlers only see these interfaces.
type Backend struct {
    Schedules ScheduleStore
    Inventory InventoryStore
    Trips     TripLedger
    Tx        Transactor
    Users     UserStore
    Tokens    TokenStore
    // Close releases the underlying connections; nil for backends that hold none.
    Close func() error
}
