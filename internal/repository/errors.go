// Package repository defines the storage contracts of the booking engine
// and the MySQL implementation of them.  The sentinel values below are
// shared by every backend (MySQL here, SQLite in sqlitestore, maps in
// memstore) so that higher layers can distinguish failure scenarios with
// errors.Is regardless of which backend is configured.
package repository

import "errors"

// ErrNotFound is returned when the addressed schedule, inventory row,
// trip, user or token does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when inserting a row whose key already exists,
// such as a second timetable for the same train or a second release of
// the same run.
var ErrDuplicate = errors.New("duplicate key")

// ErrInsufficientSeats is returned by UpsertSeats when applying the delta
// would drive the remaining seat count below zero.  The row is left
// unchanged.
var ErrInsufficientSeats = errors.New("insufficient seats")
