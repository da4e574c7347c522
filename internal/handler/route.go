package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-ticketing/internal/booking"
	"github.com/iliyamo/railway-ticketing/internal/graph"
	"github.com/iliyamo/railway-ticketing/internal/model"
	"github.com/iliyamo/railway-ticketing/internal/station"
)

// RouteHandler answers the public route queries.  Stations may be given
// as ids or directory names.
type RouteHandler struct {
	Engine *booking.Engine
	Dir    *station.Directory
}

type legView struct {
	TrainID  model.TrainID `json:"train_id"`
	To       stationView   `json:"to"`
	Price    int           `json:"price"`
	Duration int           `json:"duration"`
}

func (h *RouteHandler) endpoints(c echo.Context) (model.StationID, model.StationID, error) {
	from, err := resolveStation(h.Dir, "from", c.QueryParam("from"))
	if err != nil {
		return 0, 0, err
	}
	to, err := resolveStation(h.Dir, "to", c.QueryParam("to"))
	if err != nil {
		return 0, 0, err
	}
	return from, to, nil
}

func (h *RouteHandler) stations(ids []model.StationID) []stationView {
	out := make([]stationView, 0, len(ids))
	for _, id := range ids {
		out = append(out, newStationView(h.Dir, id))
	}
	return out
}

// Display handles GET /v1/routes?from=&to= and lists every simple route.
func (h *RouteHandler) Display(c echo.Context) error {
	from, to, err := h.endpoints(c)
	if err != nil {
		return writeError(c, err)
	}
	paths, err := h.Engine.DisplayRoute(c.Request().Context(), from, to)
	if err != nil {
		return writeError(c, err)
	}
	out := make([][]stationView, 0, len(paths))
	for _, p := range paths {
		out = append(out, h.stations(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Best handles GET /v1/routes/best?from=&to=&by=price|duration.
func (h *RouteHandler) Best(c echo.Context) error {
	from, to, err := h.endpoints(c)
	if err != nil {
		return writeError(c, err)
	}
	var cost graph.Cost
	switch strings.ToLower(c.QueryParam("by")) {
	case "", "price":
		cost = graph.ByPrice
	case "duration", "time":
		cost = graph.ByDuration
	default:
		return writeError(c, fmt.Errorf("%w: by must be price or duration", booking.ErrMalformedInput))
	}
	p, err := h.Engine.QueryBestPath(c.Request().Context(), from, to, cost)
	if err != nil {
		return writeError(c, err)
	}
	legs := make([]legView, 0, len(p.Legs))
	for _, l := range p.Legs {
		legs = append(legs, legView{TrainID: l.TrainID, To: newStationView(h.Dir, l.Arrival), Price: l.Price, Duration: l.Duration})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"by":       cost.String(),
		"cost":     p.Cost,
		"stations": h.stations(p.Stations),
		"legs":     legs,
	})
}

// Accessibility handles GET /v1/routes/accessibility?from=&to=.
func (h *RouteHandler) Accessibility(c echo.Context) error {
	from, to, err := h.endpoints(c)
	if err != nil {
		return writeError(c, err)
	}
	ok, err := h.Engine.QueryAccessibility(c.Request().Context(), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"from": from, "to": to, "connected": ok})
}
