package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/iliyamo/railway-ticketing/internal/booking"
	"github.com/iliyamo/railway-ticketing/internal/model"
	"github.com/iliyamo/railway-ticketing/internal/service"
	"github.com/iliyamo/railway-ticketing/internal/station"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{booking.ErrPermissionDenied, http.StatusForbidden},
		{&booking.NotFoundError{Kind: booking.KindTrain, ID: "G1"}, http.StatusNotFound},
		{booking.ErrNoMatchingTrip, http.StatusNotFound},
		{booking.ErrDisconnected, http.StatusNotFound},
		{fmt.Errorf("%w: user 3", booking.ErrDuplicateID), http.StatusConflict},
		{booking.ErrInsufficientInventory, http.StatusConflict},
		{fmt.Errorf("%w: 1000", booking.ErrInvalidStationID), http.StatusBadRequest},
		{model.ErrBadMoment, http.StatusBadRequest},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{context.DeadlineExceeded, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: disk full", booking.ErrStorageFailure), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestStationRef(t *testing.T) {
	var v struct {
		Stations []stationRef `json:"stations"`
	}
	if err := json.Unmarshal([]byte(`{"stations":[3,"Jinan"]}`), &v); err != nil {
		t.Fatal(err)
	}
	if len(v.Stations) != 2 || v.Stations[0] != "3" || v.Stations[1] != "Jinan" {
		t.Fatalf("stations = %q", v.Stations)
	}
	if err := json.Unmarshal([]byte(`{"stations":[true]}`), &v); err == nil {
		t.Fatal("boolean station accepted")
	}
}

func TestResolveStation(t *testing.T) {
	dir, err := station.Parse([]byte("stations:\n  - {id: 4, name: Shanghai}\n"), 10)
	if err != nil {
		t.Fatal(err)
	}
	if id, err := resolveStation(dir, "from", "shanghai"); err != nil || id != 4 {
		t.Fatalf("by name: %d, %v", id, err)
	}
	if _, err := resolveStation(dir, "from", ""); !errors.Is(err, booking.ErrMalformedInput) {
		t.Fatalf("empty: %v", err)
	}
	if _, err := resolveStation(dir, "from", "Atlantis"); !errors.Is(err, booking.ErrInvalidStationID) {
		t.Fatalf("unknown: %v", err)
	}
}
