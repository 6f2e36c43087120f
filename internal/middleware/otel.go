package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"wastelookup/internal/infrastructure"
)

// OTelMiddleware traces each request and records the HTTP instruments of
// BusinessMetrics, labelled by chi route pattern so chip IDs never become
// metric labels.
type OTelMiddleware struct {
	tracer  trace.Tracer
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
}

// NewOTelMiddleware creates the middleware. A nil metrics set is created
// on the providers' meter.
func NewOTelMiddleware(providers *infrastructure.OTelProviders, metrics *infrastructure.BusinessMetrics) (*OTelMiddleware, error) {
	if metrics == nil {
		var err error
		if metrics, err = infrastructure.CreateBusinessMetrics(providers.Meter); err != nil {
			return nil, fmt.Errorf("failed to create business metrics: %w", err)
		}
	}
	return &OTelMiddleware{tracer: providers.Tracer, metrics: metrics, logger: providers.Logger}, nil
}

func (m *OTelMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := m.tracer.Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.ServerAddressKey.String(r.Host),
				semconv.UserAgentOriginalKey.String(r.UserAgent()),
				semconv.ClientAddressKey.String(clientKey(r)),
			),
		)
		defer span.End()

		if sc := span.SpanContext(); sc.IsValid() {
			ctx = infrastructure.WithTraceID(ctx, sc.TraceID().String())
		}
		r = r.WithContext(ctx)

		m.metrics.HTTPActiveRequests.Add(ctx, 1)
		defer m.metrics.HTTPActiveRequests.Add(ctx, -1)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		attrs := metric.WithAttributes(
			attribute.String("method", r.Method),
			attribute.String("route", route),
			attribute.Int("status_code", status),
		)
		m.metrics.HTTPRequestsTotal.Add(ctx, 1, attrs)
		m.metrics.HTTPRequestDuration.Record(ctx, elapsed.Seconds(), attrs)

		// The raw path may carry a chip ID; the span keeps only the pattern.
		span.SetName(r.Method + " " + route)
		span.SetAttributes(
			semconv.HTTPRouteKey.String(route),
			semconv.HTTPResponseStatusCodeKey.Int(status),
			semconv.HTTPResponseBodySizeKey.Int(ww.BytesWritten()),
		)
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	})
}

// routePattern returns the matched chi pattern, or "unmatched" for 404s
// outside any route.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
