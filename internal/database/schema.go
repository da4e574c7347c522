package database

import (
	"context"
	"database/sql"
	"fmt"
)

// mysqlSchema creates the tables used by the MySQL repositories.  Moments
// are stored as "HH:MM_MM-DD" text, which is also the key format of the
// in-memory and SQLite backends.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS trains (
		train_id      VARCHAR(20) NOT NULL PRIMARY KEY,
		seat_capacity INT NOT NULL,
		start_time    CHAR(5) NULL,
		stations      TEXT NOT NULL,
		durations     TEXT NOT NULL,
		prices        TEXT NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id                BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		train_id          VARCHAR(20) NOT NULL,
		run_date          CHAR(5) NOT NULL,
		departure_time    CHAR(11) NOT NULL,
		departure_station INT NOT NULL,
		arrival_station   INT NOT NULL,
		seat_num          INT NOT NULL,
		price             INT NOT NULL,
		duration          INT NOT NULL,
		UNIQUE KEY uq_ticket (train_id, departure_time, departure_station),
		KEY idx_ticket_run (train_id, run_date)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS trips (
		id                BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id           BIGINT UNSIGNED NOT NULL,
		train_id          VARCHAR(20) NOT NULL,
		departure_station INT NOT NULL,
		arrival_station   INT NOT NULL,
		ticket_count      INT NOT NULL,
		duration          INT NOT NULL,
		price             INT NOT NULL,
		departure_time    CHAR(11) NOT NULL,
		arrival_time      CHAR(11) NOT NULL,
		KEY idx_trip_user (user_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS users (
		user_id       BIGINT UNSIGNED NOT NULL PRIMARY KEY,
		username      VARCHAR(64) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		privilege     INT NOT NULL DEFAULT 0,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_refresh_user (user_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates any missing table.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range mysqlSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
