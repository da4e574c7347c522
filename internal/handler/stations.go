package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-ticketing/internal/station"
)

// StationHandler lists the station directory.
type StationHandler struct {
	Dir *station.Directory
}

// List handles GET /v1/stations.
func (h *StationHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": h.Dir.List()})
}
