package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"spendly/internal/errors"
	"spendly/internal/middleware"
	"spendly/internal/service"
)

// UserHandler bundles user endpoints.
type UserHandler struct {
	userService service.UserService
	dev         bool
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService, dev bool) *UserHandler {
	return &UserHandler{userService: userService, dev: dev}
}

// Me godoc
// @Summary Get the authenticated user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		httpErr := errors.MapErrorToHTTP(errors.ErrUnauthenticated, h.dev)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, user)
}

// List godoc
// @Summary List all users (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err, h.dev)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, users)
}
