package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/railway-ticketing/internal/handler"    // import the handlers that implement the endpoints
	"github.com/iliyamo/railway-ticketing/internal/middleware" // import middleware for JWT authentication
)

// RegisterRoutes registers routes that do not require authentication and
// are not part of the API proper.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
}

// RegisterAuth registers all authentication-related routes.  Operations
// that create or exchange tokens live under /v1/auth; /v1/me requires a
// valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Logout accepts either a refresh token in the body or a Bearer access
	// token, so it sits outside the JWT group.
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers the unauthenticated query endpoints.  Route
// queries go through cache, which the train handler purges whenever a
// train is added.
func RegisterPublic(e *echo.Echo, t *handler.TicketHandler, r *handler.RouteHandler, s *handler.StationHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/stations", s.List)
	e.GET("/v1/tickets/remaining", t.Remaining)

	g := e.Group("/v1/routes", cache)
	g.GET("", r.Display)
	g.GET("/best", r.Best)
	g.GET("/accessibility", r.Accessibility)
}
