package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "wastelookup/internal/errors"
	"wastelookup/internal/infrastructure"
	"wastelookup/internal/security"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func TestRequestID(t *testing.T) {
	var seen, traced string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetReqID(r.Context())
		traced = infrastructure.GetTraceID(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, traced)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	})
}

func TestRecoverer(t *testing.T) {
	h := RequestID(Recoverer(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/collections/1", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apierrors.ProblemContentType, rec.Header().Get("Content-Type"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "req-1", body["trace_id"])
	assert.Equal(t, apierrors.TypeInternal, body["type"])
}

func TestTimeoutSetsDeadline(t *testing.T) {
	var deadline time.Time
	var ok bool
	h := Timeout(50*time.Millisecond, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, time.Second)
}

func TestCORS(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{"https://obec.sk"}})(http.HandlerFunc(okHandler))

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://obec.sk")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "https://obec.sk", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("foreign origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://obec.sk")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Admin-Token")
	})
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestAdminOnly(t *testing.T) {
	errorHandler := apierrors.NewErrorHandler(discardLogger(), false)

	tests := []struct {
		name       string
		secret     string
		target     string
		header     string
		wantStatus int
		wantType   string
	}{
		{name: "disabled", secret: "", target: "/?admin=x", wantStatus: http.StatusNotFound, wantType: apierrors.TypeAdminDisabled},
		{name: "missing token", secret: "k", target: "/", wantStatus: http.StatusForbidden, wantType: apierrors.TypeAdminTokenInvalid},
		{name: "wrong token", secret: "k", target: "/?admin=nope", wantStatus: http.StatusForbidden, wantType: apierrors.TypeAdminTokenInvalid},
		{name: "query token", secret: "k", target: "/?admin=k", wantStatus: http.StatusOK},
		{name: "header token", secret: "k", target: "/", header: "k", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := AdminOnly(security.NewAdminGate(tt.secret), errorHandler, discardLogger())(http.HandlerFunc(okHandler))
			req := httptest.NewRequest(http.MethodPost, tt.target, nil)
			if tt.header != "" {
				req.Header.Set(security.AdminTokenHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantType != "" {
				var body map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantType, body["type"])
			}
		})
	}
}

type rangeParams struct {
	From   string `query:"from" validate:"day"`
	To     string `query:"to" validate:"day"`
	Format string `query:"format" validate:"omitempty,oneof=json text"`
}

func TestValidator(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateStruct(rangeParams{From: "2024-01-01", To: ""}))

	err := v.ValidateStruct(rangeParams{From: "01.01.2024", Format: "xml"})
	require.Error(t, err)

	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	details, ok := apiErr.Details.(apierrors.ValidationErrors)
	require.True(t, ok)
	require.Len(t, details.Errors, 2)
	assert.Equal(t, "from", details.Errors[0].Field)
	assert.Contains(t, details.Errors[0].Message, "YYYY-MM-DD")
	assert.Equal(t, "format", details.Errors[1].Field)
}

func TestOTelMiddlewareRecordsRoute(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(nil, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	otelMW, err := NewOTelMiddleware(providers, nil)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(otelMW.Handler)
	r.Get("/api/collections/{chip}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/collections/000123", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	metrics := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(metrics, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := metrics.Body.String()
	assert.Contains(t, body, `route="/api/collections/{chip}"`)
	assert.Contains(t, body, `status_code="404"`)
}
