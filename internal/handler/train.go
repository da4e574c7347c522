package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-ticketing/internal/booking"
	"github.com/iliyamo/railway-ticketing/internal/model"
	"github.com/iliyamo/railway-ticketing/internal/station"
)

// TrainHandler serves the administrative timetable and ticket release
// endpoints.  OnTrainAdded runs after every stored train; the router uses
// it to purge cached route answers.
type TrainHandler struct {
	Engine       *booking.Engine
	Dir          *station.Directory
	OnTrainAdded func(ctx context.Context)
}

type trainReq struct {
	TrainID      string       `json:"train_id"`
	SeatCapacity int          `json:"seat_capacity"`
	StartTime    string       `json:"start_time"` // "HH:MM", optional
	Stations     []stationRef `json:"stations"`
	Durations    []int        `json:"durations"`
	Prices       []int        `json:"prices"`
}

type trainView struct {
	TrainID      model.TrainID `json:"train_id"`
	SeatCapacity int           `json:"seat_capacity"`
	StartTime    string        `json:"start_time,omitempty"`
	Stations     []stationView `json:"stations"`
	Durations    []int         `json:"durations"`
	Prices       []int         `json:"prices"`
}

type runReq struct {
	TrainID string `json:"train_id"`
	Date    string `json:"date"` // "MM-DD"
}

func (h *TrainHandler) timetable(req trainReq) (model.TrainTimetable, error) {
	t := model.TrainTimetable{
		TrainID:      model.TrainID(strings.TrimSpace(req.TrainID)),
		SeatCapacity: req.SeatCapacity,
		Durations:    req.Durations,
		Prices:       req.Prices,
	}
	if req.StartTime != "" {
		d, err := model.ParseClock(req.StartTime)
		if err != nil {
			return t, err
		}
		t.StartTime = &d
	}
	for i, s := range req.Stations {
		id, err := resolveStation(h.Dir, fmt.Sprintf("stations[%d]", i), string(s))
		if err != nil {
			return t, err
		}
		t.Stations = append(t.Stations, id)
	}
	return t, nil
}

func (h *TrainHandler) view(t model.TrainTimetable) trainView {
	v := trainView{
		TrainID:      t.TrainID,
		SeatCapacity: t.SeatCapacity,
		Durations:    t.Durations,
		Prices:       t.Prices,
		Stations:     make([]stationView, 0, len(t.Stations)),
	}
	if t.StartTime != nil {
		v.StartTime = model.FormatClock(*t.StartTime)
	}
	for _, s := range t.Stations {
		v.Stations = append(v.Stations, newStationView(h.Dir, s))
	}
	return v
}

// AddTrain handles POST /v1/admin/trains.
func (h *TrainHandler) AddTrain(c echo.Context) error {
	var req trainReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	t, err := h.timetable(req)
	if err != nil {
		return writeError(c, err)
	}
	ctx := c.Request().Context()
	if err := h.Engine.AddTrain(ctx, callerFrom(c), t); err != nil {
		return writeError(c, err)
	}
	if h.OnTrainAdded != nil {
		h.OnTrainAdded(ctx)
	}
	return c.JSON(http.StatusCreated, h.view(t))
}

// GetTrain handles GET /v1/admin/trains/:id.
func (h *TrainHandler) GetTrain(c echo.Context) error {
	t, err := h.Engine.QueryTrain(c.Request().Context(), callerFrom(c), model.TrainID(c.Param("id")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.view(t))
}

// ListTrains handles GET /v1/admin/trains.
func (h *TrainHandler) ListTrains(c echo.Context) error {
	list, err := h.Engine.ListTrains(c.Request().Context(), callerFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]trainView, 0, len(list))
	for _, t := range list {
		out = append(out, h.view(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

func bindRun(c echo.Context) (model.TrainID, time.Time, error) {
	var req runReq
	if err := c.Bind(&req); err != nil {
		return "", time.Time{}, fmt.Errorf("%w: invalid body", booking.ErrMalformedInput)
	}
	if strings.TrimSpace(req.TrainID) == "" {
		return "", time.Time{}, fmt.Errorf("%w: train_id is required", booking.ErrMalformedInput)
	}
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return "", time.Time{}, err
	}
	return model.TrainID(strings.TrimSpace(req.TrainID)), date, nil
}

// ReleaseTickets handles POST /v1/admin/tickets/release.
func (h *TrainHandler) ReleaseTickets(c echo.Context) error {
	id, date, err := bindRun(c)
	if err != nil {
		return writeError(c, err)
	}
	recs, err := h.Engine.ReleaseTickets(c.Request().Context(), callerFrom(c), id, date)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]inventoryView, 0, len(recs))
	for _, r := range recs {
		out = append(out, newInventoryView(h.Dir, r))
	}
	return c.JSON(http.StatusCreated, echo.Map{"items": out})
}

// ExpireTickets handles POST /v1/admin/tickets/expire.
func (h *TrainHandler) ExpireTickets(c echo.Context) error {
	id, date, err := bindRun(c)
	if err != nil {
		return writeError(c, err)
	}
	n, err := h.Engine.ExpireTickets(c.Request().Context(), callerFrom(c), id, date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}
