package handler // handler defines http handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-ticketing/internal/booking"
	"github.com/iliyamo/railway-ticketing/internal/middleware"
	"github.com/iliyamo/railway-ticketing/internal/model"
	"github.com/iliyamo/railway-ticketing/internal/service"
	"github.com/iliyamo/railway-ticketing/internal/station"
)

// callerFrom builds the engine caller from the identity JWTAuth stored.
func callerFrom(c echo.Context) booking.Caller {
	id, _ := middleware.UserID(c)
	return booking.Caller{UserID: id, Privilege: middleware.Privilege(c)}
}

// statusFor maps engine and service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, booking.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, booking.ErrNoMatchingTrip),
		errors.Is(err, booking.ErrDisconnected):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrDuplicateID), errors.Is(err, booking.ErrInsufficientInventory):
		return http.StatusConflict
	case errors.Is(err, booking.ErrInvalidStationID), errors.Is(err, booking.ErrMalformedInput),
		errors.Is(err, model.ErrBadMoment):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError answers with {"error": ...}.  Internal failures are logged and
// hidden from the client.
func writeError(c echo.Context, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

// stationRef accepts a station as a JSON number or a name.
type stationRef string

func (s *stationRef) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*s = stationRef(t)
	case float64:
		*s = stationRef(strconv.FormatFloat(t, 'f', -1, 64))
	default:
		return fmt.Errorf("station must be a number or a name")
	}
	return nil
}

// resolveStation turns a query or body value into a station id.
func resolveStation(dir *station.Directory, field, raw string) (model.StationID, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", booking.ErrMalformedInput, field)
	}
	id, ok := dir.Resolve(raw)
	if !ok {
		return 0, fmt.Errorf("%w: unknown station %q", booking.ErrInvalidStationID, raw)
	}
	return id, nil
}

type stationView struct {
	ID   model.StationID `json:"id"`
	Name string          `json:"name"`
}

func newStationView(dir *station.Directory, id model.StationID) stationView {
	return stationView{ID: id, Name: dir.Name(id)}
}

type tripView struct {
	ID            int64         `json:"id"`
	TrainID       model.TrainID `json:"train_id"`
	From          stationView   `json:"from"`
	To            stationView   `json:"to"`
	Tickets       int           `json:"tickets"`
	Duration      int           `json:"duration"`
	Price         int           `json:"price"`
	DepartureTime string        `json:"departure_time"`
	ArrivalTime   string        `json:"arrival_time"`
}

func newTripView(dir *station.Directory, t model.TripRecord) tripView {
	return tripView{
		ID:            t.ID,
		TrainID:       t.TrainID,
		From:          newStationView(dir, t.DepartureStation),
		To:            newStationView(dir, t.ArrivalStation),
		Tickets:       t.TicketCount,
		Duration:      t.Duration,
		Price:         t.Price,
		DepartureTime: model.FormatMoment(t.DepartureTime),
		ArrivalTime:   model.FormatMoment(t.ArrivalTime),
	}
}

type inventoryView struct {
	TrainID        model.TrainID `json:"train_id"`
	RunDate        string        `json:"run_date"`
	DepartureTime  string        `json:"departure_time"`
	From           stationView   `json:"from"`
	To             stationView   `json:"to"`
	RemainingSeats int           `json:"remaining_seats"`
	Price          int           `json:"price"`
	Duration       int           `json:"duration"`
}

func newInventoryView(dir *station.Directory, r model.InventoryRecord) inventoryView {
	return inventoryView{
		TrainID:        r.TrainID,
		RunDate:        model.FormatDate(r.RunDate),
		DepartureTime:  model.FormatMoment(r.DepartureTime),
		From:           newStationView(dir, r.DepartureStation),
		To:             newStationView(dir, r.ArrivalStation),
		RemainingSeats: r.RemainingSeats,
		Price:          r.Price,
		Duration:       r.Duration,
	}
}
