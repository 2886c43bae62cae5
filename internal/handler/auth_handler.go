package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"spendly/internal/errors"
	"spendly/internal/middleware"
	"spendly/internal/model"
	"spendly/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	dev         bool
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, dev bool) *AuthHandler {
	return &AuthHandler{authService: authService, dev: dev}
}

// SignupRequest represents a user registration request.
type SignupRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=32"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest carries the email to send a reset token to.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest carries the replacement password.
type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=8,max=32"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user,omitempty"`
}

func (h *AuthHandler) mapError(err error) *echo.HTTPError {
	httpErr := errors.MapErrorToHTTP(err, h.dev)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// Signup godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, token, err := h.authService.Signup(c.Request().Context(), req.Name, req.Email, req.Password, req.PasswordConfirm)
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user})
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}

// Logout godoc
// @Summary Logout and revoke the presented session token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, ok := middleware.SessionClaims(c)
	if !ok {
		return h.mapError(errors.ErrUnauthenticated)
	}

	if err := h.authService.Logout(c.Request().Context(), claims); err != nil {
		return h.mapError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// ForgotPassword godoc
// @Summary Request a password reset token by email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Account email"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return h.mapError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "reset token sent to email",
	})
}

// ResetPassword godoc
// @Summary Reset the password using an emailed token
// @Tags auth
// @Accept json
// @Produce json
// @Param token path string true "Raw reset token from the email link"
// @Param request body ResetPasswordRequest true "New password"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/reset-password/{token} [patch]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, token, err := h.authService.ResetPassword(c.Request().Context(), c.Param("token"), req.Password, req.PasswordConfirm)
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}

// SendVerificationEmail godoc
// @Summary Send an email-verification token to the authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/email-token [post]
func (h *AuthHandler) SendVerificationEmail(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return h.mapError(errors.ErrUnauthenticated)
	}

	if err := h.authService.SendVerificationEmail(c.Request().Context(), user); err != nil {
		return h.mapError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "verification token sent to email",
	})
}

// VerifyEmail godoc
// @Summary Verify the email address using an emailed token
// @Tags auth
// @Produce json
// @Param token path string true "Raw verification token from the email link"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/email-token-verify/{token} [get]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	user, err := h.authService.VerifyEmail(c.Request().Context(), c.Param("token"))
	if err != nil {
		return h.mapError(err)
	}

	return c.JSON(http.StatusOK, user)
}
