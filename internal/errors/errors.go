package errors

import (
	"net/http"

	"github.com/go-chi/render"
)

// Error codes carried in the "error_code" extension of a problem response.
const (
	CodeValidation        = "VALIDATION_FAILED"
	CodeNotFound          = "NOT_FOUND"
	CodeForbidden         = "FORBIDDEN"
	CodeAdminDisabled     = "ADMIN_DISABLED"
	CodeAdminTokenInvalid = "ADMIN_TOKEN_INVALID"
	CodeRateLimit         = "RATE_LIMIT_EXCEEDED"
	CodeUnavailable       = "SERVICE_UNAVAILABLE"
)

// APIError is an error raised by the HTTP layer itself, as opposed to a
// domain error from the collection package.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError names one rejected request field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{StatusCode: statusCode, ErrorCode: errorCode, Message: message}
}

var (
	ErrAdminDisabled = New(http.StatusNotFound, CodeAdminDisabled, "Admin controls are disabled")
	ErrAdminToken    = New(http.StatusForbidden, CodeAdminTokenInvalid, "Admin token is missing or invalid")
)

// ErrValidation reports a single bad field.
func ErrValidation(field, message string) *APIError {
	return NewValidationErrors([]ValidationError{{Field: field, Message: message}})
}

// NewValidationErrors reports every bad field at once.
func NewValidationErrors(errs []ValidationError) *APIError {
	return &APIError{
		StatusCode: http.StatusBadRequest,
		ErrorCode:  CodeValidation,
		Message:    "Request validation failed",
		Details:    ValidationErrors{Errors: errs},
	}
}
