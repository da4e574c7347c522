// Package booking is the order-processing core: it validates requests,
// keeps the station graph in step with stored timetables and turns queued
// purchases and refunds into inventory and trip ledger mutations.
package booking

import (
	"errors"
	"fmt"
)

// Failure taxonomy of the engine.  Validation failures are reported before
// any state changes; storage failures wrap ErrStorageFailure together with
// the backend error and are never retried.
var (
	ErrPermissionDenied      = errors.New("permission denied")
	ErrNotFound              = errors.New("not found")
	ErrDuplicateID           = errors.New("duplicate id")
	ErrInvalidStationID      = errors.New("invalid station id")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrDisconnected          = errors.New("stations are not connected")
	ErrNoMatchingTrip        = errors.New("no matching trip")
	ErrMalformedInput        = errors.New("malformed input")
	ErrStorageFailure        = errors.New("storage failure")
)

// Kinds of missing entity reported by NotFoundError.
const (
	KindTrain    = "train"
	KindStation  = "station"
	KindUser     = "user"
	KindSchedule = "schedule"
	KindTicket   = "ticket"
)

// NotFoundError names the entity that was missing.  It matches ErrNotFound
// under errors.Is.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(kind string, id any) error {
	return &NotFoundError{Kind: kind, ID: fmt.Sprint(id)}
}

func storageFailure(err error) error {
	if err == nil || errors.Is(err, ErrStorageFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}
