package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-ticketing/internal/booking"
	"github.com/iliyamo/railway-ticketing/internal/model"
	"github.com/iliyamo/railway-ticketing/internal/station"
)

// TicketHandler serves remaining-seat lookups, purchases, refunds and the
// caller's trip list.
type TicketHandler struct {
	Engine *booking.Engine
	Dir    *station.Directory
}

type orderReq struct {
	TrainID   string     `json:"train_id"`
	Departure string     `json:"departure"` // "HH:MM_MM-DD"
	Station   stationRef `json:"station"`
	Quantity  int        `json:"quantity"`
}

// Remaining handles GET /v1/tickets/remaining?train_id=&departure=&station=.
func (h *TicketHandler) Remaining(c echo.Context) error {
	id := strings.TrimSpace(c.QueryParam("train_id"))
	if id == "" {
		return writeError(c, fmt.Errorf("%w: train_id is required", booking.ErrMalformedInput))
	}
	dep, err := model.ParseMoment(c.QueryParam("departure"))
	if err != nil {
		return writeError(c, err)
	}
	st, err := resolveStation(h.Dir, "station", c.QueryParam("station"))
	if err != nil {
		return writeError(c, err)
	}
	rec, err := h.Engine.QueryRemaining(c.Request().Context(), model.TrainID(id), dep, st)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, newInventoryView(h.Dir, rec))
}

// Buy handles POST /v1/tickets/buy.
func (h *TicketHandler) Buy(c echo.Context) error { return h.order(c, false) }

// Refund handles POST /v1/tickets/refund.
func (h *TicketHandler) Refund(c echo.Context) error { return h.order(c, true) }

func (h *TicketHandler) order(c echo.Context, refund bool) error {
	var req orderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	dep, err := model.ParseMoment(req.Departure)
	if err != nil {
		return writeError(c, err)
	}
	st, err := resolveStation(h.Dir, "station", string(req.Station))
	if err != nil {
		return writeError(c, err)
	}

	ctx := c.Request().Context()
	id := model.TrainID(strings.TrimSpace(req.TrainID))
	var res booking.Result
	if refund {
		res, err = h.Engine.CancelOrder(ctx, callerFrom(c), id, dep, st, req.Quantity)
	} else {
		res, err = h.Engine.PlaceOrder(ctx, callerFrom(c), id, dep, st, req.Quantity)
	}
	if err != nil {
		return writeError(c, err)
	}

	body := echo.Map{"request_id": res.Request.ID, "outcome": res.Outcome.String()}
	if res.Outcome != booking.Fulfilled {
		body["error"] = res.Err.Error()
		return c.JSON(statusFor(res.Err), body)
	}
	body["trip"] = newTripView(h.Dir, res.Trip)
	return c.JSON(http.StatusOK, body)
}

// MyTrips handles GET /v1/my-trips.
func (h *TicketHandler) MyTrips(c echo.Context) error {
	trips, err := h.Engine.QueryTrips(c.Request().Context(), callerFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]tripView, 0, len(trips))
	for _, t := range trips {
		out = append(out, newTripView(h.Dir, t))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
