// Package sqlitestore implements the repository contracts on an embedded
// SQLite database (zombiezen.com/go/sqlite).  It is the single-binary
// deployment backend: no external database server is needed.
package sqlitestore

import (
	"context"
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/iliyamo/railway-ticketing/internal/repository"
)

// acquire hands out a connection and the function that gives it back.
// Standalone stores borrow from the pool per call; transactional views
// reuse the connection that holds the transaction.
type acquire func(ctx context.Context) (*sqlite.Conn, func(), error)

func fromPool(pool *sqlitex.Pool) acquire {
	return func(ctx context.Context) (*sqlite.Conn, func(), error) {
		conn, err := pool.Take(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlitestore: take: %w", err)
		}
		return conn, func() { pool.Put(conn) }, nil
	}
}

func fixed(conn *sqlite.Conn) acquire {
	return func(context.Context) (*sqlite.Conn, func(), error) {
		return conn, func() {}, nil
	}
}

// New wires every SQLite store onto pool.  The pool must have been opened
// with database.OpenSQLite so that the schema exists.
func New(pool *sqlitex.Pool) *repository.Backend {
	get := fromPool(pool)
	return &repository.Backend{
		Schedules: &ScheduleStore{get: get},
		Inventory: &InventoryStore{get: get},
		Trips:     &TripStore{get: get},
		Tx:        &Transactor{pool: pool},
		Users:     &UserStore{get: get},
		Tokens:    &TokenStore{get: get},
		Close:     pool.Close,
	}
}

// Transactor runs callbacks inside an IMMEDIATE transaction on a single
// connection, so the write lock is taken up front and the seat check and
// the decrement cannot interleave with another writer.
type Transactor struct {
	pool *sqlitex.Pool
}

type ledger struct {
	inv   *InventoryStore
	trips *TripStore
}

func (l ledger) Inventory() repository.InventoryStore { return l.inv }
func (l ledger) Trips() repository.TripLedger         { return l.trips }

// InTx implements repository.Transactor.
func (t *Transactor) InTx(ctx context.Context, fn func(l repository.Ledger) error) (err error) {
	conn, err := t.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("sqlitestore: take: %w", err)
	}
	defer t.pool.Put(conn)

	end, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("sqlitestore: begin transaction: %w", err)
	}
	defer end(&err)

	get := fixed(conn)
	return fn(ledger{inv: &InventoryStore{get: get}, trips: &TripStore{get: get}})
}

// isUnique reports whether err is a UNIQUE or PRIMARY KEY violation.
func isUnique(err error) bool {
	switch sqlite.ErrCode(err) {
	case sqlite.ResultConstraintUnique, sqlite.ResultConstraintPrimaryKey:
		return true
	}
	return false
}
