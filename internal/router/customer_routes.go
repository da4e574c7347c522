package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-ticketing/internal/handler"
	"github.com/iliyamo/railway-ticketing/internal/middleware"
)

// RegisterCustomer registers the endpoints of any signed-in user under /v1.
// Purchases and refunds are rate limited; the order's queue priority is the
// privilege carried by the token.
func RegisterCustomer(e *echo.Echo, t *handler.TicketHandler, u *handler.UserHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.POST("/tickets/buy", t.Buy, limiter)
	g.POST("/tickets/refund", t.Refund, limiter)
	g.GET("/my-trips", t.MyTrips)

	// Access rules are enforced by the user service.
	g.GET("/users/:id", u.GetUser)
	g.PUT("/users/:id/password", u.ChangePassword)
	g.PUT("/users/:id/privilege", u.ChangePrivilege)
}
