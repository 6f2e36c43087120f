package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"wastelookup/internal/collection"
	"wastelookup/internal/infrastructure"
)

// Common error types following RFC 7807
const (
	TypeValidation  = "/errors/validation"
	TypeNotFound    = "/errors/not-found"
	TypeForbidden   = "/errors/forbidden"
	TypeRateLimit   = "/errors/rate-limit"
	TypeInternal    = "/errors/internal"
	TypeServiceDown = "/errors/service-unavailable"
	TypeTimeout     = "/errors/timeout"
)

// Domain-specific error types
const (
	TypeChipNotFound      = "/errors/collection/chip-not-found"
	TypeInvalidRange      = "/errors/collection/invalid-range"
	TypeEmptyRange        = "/errors/collection/empty-range"
	TypeDataSchema        = "/errors/data/schema"
	TypeDataUnavailable   = "/errors/data/unavailable"
	TypeAdminDisabled     = "/errors/admin/disabled"
	TypeAdminTokenInvalid = "/errors/admin/token-invalid"
)

// Messages shown to residents, in the language of the source data.
const (
	MessageChipNotFound = "Tento čip sa v dátach nenašiel."
	MessageInvalidRange = "Dátum 'Od' nemôže byť neskôr ako 'Do'."
	MessageEmptyRange   = "Pre zadaný dátumový rozsah neboli nájdené žiadne záznamy."
	MessageLoadFailed   = "Chyba pri načítaní dát."
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	traceID := infrastructure.GetTraceID(r.Context())
	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", traceID)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("type", problem.Type),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if h.includeStack && problem.Status >= http.StatusInternalServerError {
		problem.WithExtension("stack", getStackTrace())
	}

	WriteProblem(w, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	instance := r.URL.Path

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			instance,
		)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	var schemaErr *collection.SchemaError
	if errors.As(err, &schemaErr) {
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeDataSchema,
			"Data Source Schema Mismatch",
			schemaErr.Error(),
			instance,
		).
			WithExtension("missing", schemaErr.Missing).
			WithExtension("expected", schemaErr.Expected).
			WithExtension("message", MessageLoadFailed)
	}

	switch {
	case errors.Is(err, collection.ErrNotFound):
		return NewProblemDetails(
			http.StatusNotFound,
			TypeChipNotFound,
			"Chip Not Found",
			"No collection records exist for this chip",
			instance,
		).WithExtension("message", MessageChipNotFound)

	case errors.Is(err, collection.ErrInvalidRange):
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeInvalidRange,
			"Invalid Date Range",
			"The 'from' date is after the 'to' date",
			instance,
		).WithExtension("message", MessageInvalidRange)

	case errors.Is(err, collection.ErrEmptyRange):
		return NewProblemDetails(
			http.StatusNotFound,
			TypeEmptyRange,
			"No Records In Range",
			"The chip has no collection records in the requested date range",
			instance,
		).WithExtension("message", MessageEmptyRange)

	case errors.Is(err, collection.ErrUnsupportedSource),
		errors.Is(err, collection.ErrEmptySource),
		errors.Is(err, fs.ErrNotExist):
		return NewProblemDetails(
			http.StatusServiceUnavailable,
			TypeDataUnavailable,
			"Data Source Unavailable",
			err.Error(),
			instance,
		).WithExtension("message", MessageLoadFailed)

	default:
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeInternal,
			"Internal Server Error",
			"An unexpected error occurred while processing your request",
			instance,
		)
	}
}

// apiErrorToProblem converts APIError to ProblemDetails
func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case CodeValidation:
		problemType = TypeValidation
	case CodeNotFound:
		problemType = TypeNotFound
	case CodeForbidden:
		problemType = TypeForbidden
	case CodeAdminDisabled:
		problemType = TypeAdminDisabled
	case CodeAdminTokenInvalid:
		problemType = TypeAdminTokenInvalid
	case CodeRateLimit:
		problemType = TypeRateLimit
	case CodeUnavailable:
		problemType = TypeServiceDown
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}
	return problem
}

// HandlePanic recovers from panics and returns RFC 7807 error
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	traceID := infrastructure.GetTraceID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	problem := NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred",
		r.URL.Path,
	).WithExtension("trace_id", traceID)

	if h.includeStack {
		problem.WithExtension("panic", fmt.Sprintf("%v", recovered))
		problem.WithExtension("stack", getStackTrace())
	}

	WriteProblem(w, problem)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteProblem(w, NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", infrastructure.GetTraceID(r.Context())))
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteProblem(w, NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeValidation,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", infrastructure.GetTraceID(r.Context())))
}

// getStackTrace returns the current stack trace
func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
