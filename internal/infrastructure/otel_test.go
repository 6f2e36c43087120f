package infrastructure

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"wastelookup/internal/config"
)

func TestOTelInitialization(t *testing.T) {
	logger := NewLogger(io.Discard, "error")

	providers, err := InitializeOTel(nil, logger)
	require.NoError(t, err)
	require.NotNil(t, providers)

	// tracing is off by default, metrics on
	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelTracingStdout(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = true
	cfg.TraceExporter = "stdout"
	cfg.EnableMetrics = false

	providers, err := InitializeOTel(cfg, NewLogger(io.Discard, "error"))
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	require.NotNil(t, providers.TracerProvider)
	assert.Nil(t, providers.PrometheusHTTP)

	ctx, span := providers.Tracer.Start(context.Background(), "test-operation")
	assert.True(t, trace.SpanContextFromContext(ctx).HasTraceID())
	RecordError(ctx, errors.New("boom"))
	span.End()
}

func TestOTelUnsupportedExporter(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = true
	cfg.TraceExporter = "zipkin"

	_, err := InitializeOTel(cfg, NewLogger(io.Discard, "error"))
	assert.Error(t, err)
}

func TestOTelConfigFrom(t *testing.T) {
	cfg := OTelConfigFrom(config.TelemetryConfig{
		Environment:   "production",
		EnableTracing: true,
		TraceExporter: "stdout",
		EnableMetrics: false,
		SampleRatio:   0.5,
	})
	assert.Equal(t, "production", cfg.Environment)
	assert.True(t, cfg.EnableTracing)
	assert.Equal(t, "stdout", cfg.TraceExporter)
	assert.False(t, cfg.EnableMetrics)
	assert.Equal(t, 0.5, cfg.SampleRatio)

	defaults := OTelConfigFrom(config.TelemetryConfig{})
	assert.Equal(t, "none", defaults.TraceExporter)
	assert.Equal(t, 1.0, defaults.SampleRatio)
}

func TestBusinessMetricsExported(t *testing.T) {
	providers, err := InitializeOTel(nil, NewLogger(io.Discard, "error"))
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordDatasetLoad(ctx, metrics, 120*time.Millisecond, 42, 3, nil)
	RecordDatasetLoad(ctx, metrics, time.Millisecond, 0, 0, errors.New("read failed"))
	RecordQuery(ctx, metrics, "query", OutcomeEmptyRange)
	RecordInvalidation(ctx, metrics, "admin")

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "dataset_loads_total")
	assert.Contains(t, body, `outcome="error"`)
	assert.Contains(t, body, "dataset_records")
	assert.Contains(t, body, "queries_total")
	assert.Contains(t, body, `outcome="empty_range"`)
	assert.Contains(t, body, "dataset_cache_invalidations_total")
	assert.Contains(t, body, "go_goroutines")
}

func TestNilMetricsAreIgnored(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordDatasetLoad(context.Background(), nil, time.Second, 1, 0, nil)
		RecordQuery(context.Background(), nil, "lookup", OutcomeOK)
		RecordInvalidation(context.Background(), nil, "watcher")
	})
}

func TestNoopProviders(t *testing.T) {
	p := NoopProviders(nil)
	require.NotNil(t, p.Tracer)
	require.NotNil(t, p.Meter)
	_, err := CreateBusinessMetrics(p.Meter)
	assert.NoError(t, err)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestInstanceID(t *testing.T) {
	a, b := instanceID(), instanceID()
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, " ")
}
