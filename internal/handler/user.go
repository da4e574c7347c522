package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/railway-ticketing/internal/service"
)

// UserHandler serves account lookups and changes.  Access rules live in
// service.UserService.
type UserHandler struct {
	Users *service.UserService
}

type passwordReq struct {
	Password string `json:"password"`
}

type privilegeReq struct {
	Privilege *int `json:"privilege"`
}

func userParam(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil
}

// GetUser handles GET /v1/users/:id.
func (h *UserHandler) GetUser(c echo.Context) error {
	id, ok := userParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	u, err := h.Users.Get(c.Request().Context(), callerFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Username: u.Username, Privilege: u.Privilege})
}

// ChangePassword handles PUT /v1/users/:id/password.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	id, ok := userParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req passwordReq
	if err := c.Bind(&req); err != nil || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password required"})
	}
	if err := h.Users.ChangePassword(c.Request().Context(), callerFrom(c), id, req.Password); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangePrivilege handles PUT /v1/users/:id/privilege.
func (h *UserHandler) ChangePrivilege(c echo.Context) error {
	id, ok := userParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req privilegeReq
	if err := c.Bind(&req); err != nil || req.Privilege == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "privilege required"})
	}
	if err := h.Users.ChangePrivilege(c.Request().Context(), callerFrom(c), id, *req.Privilege); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
