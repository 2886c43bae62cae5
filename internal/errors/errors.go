package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned on login when the email is unknown or
	// the password is wrong. One error for both, so responses do not reveal
	// which accounts exist.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrEmailTaken is returned when registering an email that is already in use.
	ErrEmailTaken = errors.New("email already in use")
	// ErrUserNotFound is returned when a user lookup by email or id finds nothing.
	ErrUserNotFound = errors.New("user not found")
	// ErrExpenseNotFound is returned when an expense is absent or owned by someone else.
	ErrExpenseNotFound = errors.New("expense not found")
	// ErrInvalidOrExpiredToken is returned when a reset/verification token does
	// not match any user or its expiry has elapsed.
	ErrInvalidOrExpiredToken = errors.New("token is invalid or has expired")
	// ErrUnauthenticated is returned when a bearer token is missing, malformed,
	// expired, or revoked.
	ErrUnauthenticated = errors.New("you are not logged in")
	// ErrStaleToken is returned when the password changed after the token was issued.
	ErrStaleToken = errors.New("password was changed recently, please log in again")
	// ErrForbidden is returned when the authenticated user's role is not permitted.
	ErrForbidden = errors.New("you do not have permission to perform this action")
	// ErrMailDelivery is returned when the email collaborator fails to send.
	ErrMailDelivery = errors.New("failed to send email")
)

// ValidationError carries a user-safe description of bad input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation creates a ValidationError with the given message.
func NewValidation(message string) error {
	return &ValidationError{Message: message}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unexpected errors become
// a generic 500; their detail is included only when dev is true.
func MapErrorToHTTP(err error, dev bool) *HTTPError {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return NewHTTPError(http.StatusBadRequest, validationErr.Message, "VALIDATION_ERROR")
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrExpenseNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "EXPENSE_NOT_FOUND")
	case errors.Is(err, ErrInvalidOrExpiredToken):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrStaleToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "STALE_TOKEN")
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "UNAUTHENTICATED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrMailDelivery):
		return NewHTTPError(http.StatusInternalServerError, "failed to send email, please try again later", "MAIL_DELIVERY_FAILED")
	default:
		if dev {
			return NewHTTPError(http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
		}
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
