package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-ticketing/internal/handler"
	"github.com/iliyamo/railway-ticketing/internal/middleware"
)

// RegisterAdmin registers timetable and ticket release endpoints under
// /v1/admin.  They require a token whose privilege reaches adminPrivilege.
func RegisterAdmin(e *echo.Echo, h *handler.TrainHandler, jwtSecret string, adminPrivilege int) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequirePrivilege(adminPrivilege),
	)
	g.POST("/trains", h.AddTrain)
	g.GET("/trains", h.ListTrains)
	g.GET("/trains/:id", h.GetTrain)
	g.POST("/tickets/release", h.ReleaseTickets)
	g.POST("/tickets/expire", h.ExpireTickets)
}
