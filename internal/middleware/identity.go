package middleware

// identity.go holds the helpers that read the authenticated caller back out
// of the Echo context once JWTAuth has run.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	ctxUserID    = "user_id"
	ctxPrivilege = "privilege"
)

// UserID returns the authenticated user id, or false for anonymous requests.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok
}

// Privilege returns the privilege carried by the access token, or zero.
func Privilege(c echo.Context) int {
	p, _ := c.Get(ctxPrivilege).(int)
	return p
}

// userKey is the rate limiter's view of the caller: the decimal user id, or
// "anon" before authentication.
func userKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
