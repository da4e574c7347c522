package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/go-sql-driver/mysql"
)

// querier is satisfied by both *sql.DB and *sql.Tx so that every repo can
// run either standalone or inside the caller's transaction.
type querier interface {
    ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
    QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
    QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewMySQLBackend wires every MySQL repository onto db.  The schema must
// already exist (see database.EnsureSchema).
func NewMySQLBackend(db *sql.DB) *Backend {
    return &Backend{
        Schedules: NewScheduleRepo(db),
        Inventory: NewInventoryRepo(db),
        Trips:     NewTripRepo(db),
        Tx:        &TxRunner{db: db},
        Users:     NewUserRepo(db),
        Tokens:    NewTokenRepo(db),
        Close:     db.Close,
    }
}

// TxRunner implements Transactor on top of sql.Tx.  Inventory reads made
// through the transactional view lock the row (SELECT ... FOR UPDATE) so
// that two purchases cannot both observe the same remaining seat count.
type TxRunner struct {
    db *sql.DB
}

type txLedger struct {
    inv   *InventoryRepo
    trips *TripRepo
}

func (l txLedger) Inventory() InventoryStore { return l.inv }
func (l txLedger) Trips() TripLedger         { return l.trips }

// InTx begins a transaction, runs fn and commits.  Any error from fn or
// from the commit rolls the transaction back.
func (r *TxRunner) InTx(ctx context.Context, fn func(l Ledger) error) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    l := txLedger{
        inv:   &InventoryRepo{q: tx, lock: true},
        trips: &TripRepo{q: tx},
    }
    if err := fn(l); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// isDuplicate reports whether err is MySQL's duplicate entry error (1062).
func isDuplicate(err error) bool {
    var me *mysql.MySQLError
    return errors.As(err, &me) && me.Number == 1062
}
