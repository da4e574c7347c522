package handler // declare the package name; contains HTTP handlers

import (
	"net/http" // net/http provides status codes and response helpers

	"github.com/labstack/echo/v4" // echo is the web framework used for this project

	"github.com/iliyamo/railway-ticketing/internal/booking"
)

// HealthHandler reports liveness together with the order queue state.
type HealthHandler struct {
	Engine *booking.Engine
}

// Health is the health-check endpoint used by load balancers and
// monitoring systems.  It always answers 200 while the process serves.
func (h *HealthHandler) Health(c echo.Context) error {
	p := h.Engine.Processor()
	return c.JSON(http.StatusOK, echo.Map{
		"status": "ok",
		"queued": p.Len(),
		"busy":   p.Busy(),
	})
}
