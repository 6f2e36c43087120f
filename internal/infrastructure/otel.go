package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/oklog/ulid/v2"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"wastelookup/internal/config"
)

const (
	ServiceName = "wastelookup"
	MeterName   = "wastelookup"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string // "stdout", "none"
	EnableMetrics  bool
	EnableTracing  bool
	SampleRatio    float64
}

// OTelProviders holds the OpenTelemetry providers. Tracer and Meter are
// always usable; they fall back to no-op implementations when disabled.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// DefaultOTelConfig returns a default OpenTelemetry configuration
func DefaultOTelConfig() *OTelConfig {
	return &OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: Version,
		Environment:    "development",
		TraceExporter:  "none",
		EnableMetrics:  true,
		EnableTracing:  false,
		SampleRatio:    1.0,
	}
}

// OTelConfigFrom maps the telemetry section of the app config.
func OTelConfigFrom(cfg config.TelemetryConfig) *OTelConfig {
	out := DefaultOTelConfig()
	if cfg.Environment != "" {
		out.Environment = cfg.Environment
	}
	if cfg.TraceExporter != "" {
		out.TraceExporter = cfg.TraceExporter
	}
	out.EnableTracing = cfg.EnableTracing
	out.EnableMetrics = cfg.EnableMetrics
	if cfg.SampleRatio > 0 {
		out.SampleRatio = cfg.SampleRatio
	}
	return out
}

// InitializeOTel initializes tracing and metrics
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = DefaultOTelConfig()
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()
	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("version", cfg.ServiceVersion),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{
		Logger: logger,
		Tracer: tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:  metricnoop.NewMeterProvider().Meter(MeterName),
	}

	if cfg.EnableTracing {
		if err := initializeTracing(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return providers, nil
}

// NoopProviders returns providers that record nothing. Used by the CLI and tests.
func NoopProviders(logger *slog.Logger) *OTelProviders {
	if logger == nil {
		logger = GetLogger()
	}
	return &OTelProviders{
		Logger: logger,
		Tracer: tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:  metricnoop.NewMeterProvider().Meter(MeterName),
	}
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *OTelConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", instanceID()),
	), nil
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetTracerProvider(tp)

	providers.Logger.InfoContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))
	return nil
}

// initializeMetrics wires the OTel Prometheus exporter into a private registry
// served at /metrics.
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	registry := prom.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetMeterProvider(mp)

	providers.Logger.InfoContext(ctx, "Metrics initialized", slog.String("exporter", "prometheus"))
	return nil
}

// Shutdown flushes and stops the providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown: %w", errors.Join(errs...))
	}

	p.Logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// instanceID is hostname plus a ULID, unique per process start.
func instanceID() string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "unknown"
	}
	return hostname + "-" + strings.ToLower(ulid.Make().String())
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}
