package database

import (
	"context"
	"fmt"
	"log"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// sqliteSchema mirrors the MySQL schema for the embedded backend.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS trains (
	train_id      TEXT PRIMARY KEY,
	seat_capacity INTEGER NOT NULL,
	start_time    TEXT,
	stations      TEXT NOT NULL,
	durations     TEXT NOT NULL,
	prices        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tickets (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	train_id          TEXT NOT NULL,
	run_date          TEXT NOT NULL,
	departure_time    TEXT NOT NULL,
	departure_station INTEGER NOT NULL,
	arrival_station   INTEGER NOT NULL,
	seat_num          INTEGER NOT NULL,
	price             INTEGER NOT NULL,
	duration          INTEGER NOT NULL,
	UNIQUE (train_id, departure_time, departure_station)
);
CREATE INDEX IF NOT EXISTS idx_ticket_run ON tickets (train_id, run_date);
CREATE TABLE IF NOT EXISTS trips (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id           INTEGER NOT NULL,
	train_id          TEXT NOT NULL,
	departure_station INTEGER NOT NULL,
	arrival_station   INTEGER NOT NULL,
	ticket_count      INTEGER NOT NULL,
	duration          INTEGER NOT NULL,
	price             INTEGER NOT NULL,
	departure_time    TEXT NOT NULL,
	arrival_time      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trip_user ON trips (user_id);
CREATE TABLE IF NOT EXISTS users (
	user_id       INTEGER PRIMARY KEY,
	username      TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	privilege     INTEGER NOT NULL DEFAULT 0,
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS refresh_tokens (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    INTEGER NOT NULL,
	token_hash TEXT NOT NULL UNIQUE,
	expires_at INTEGER NOT NULL,
	revoked_at INTEGER
);
`

// OpenSQLite opens a pool of connections to the SQLite file at path and
// makes sure the schema exists.  SQLite serializes writers, so a small pool
// is enough; poolSize <= 0 defaults to 4.
func OpenSQLite(ctx context.Context, path string, poolSize int) (*sqlitex.Pool, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	if poolSize <= 0 {
		poolSize = 4
	}
	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConn,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening %s: %w", path, err)
	}

	conn, err := pool.Take(ctx)
	if err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("sqlite: take: %w", err)
	}
	err = sqlitex.ExecuteScript(conn, sqliteSchema, nil)
	pool.Put(conn)
	if err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("sqlite: schema: %w", err)
	}
	log.Printf("sqlite: opened %s (pool=%d)", path, poolSize)
	return pool, nil
}

// prepareConn applies the pragmas every connection needs.  WAL keeps readers
// from blocking the single writer.
func prepareConn(conn *sqlite.Conn) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}
	return nil
}
