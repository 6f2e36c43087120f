package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Query outcomes used as the "outcome" attribute.
const (
	OutcomeOK           = "ok"
	OutcomeNotFound     = "not_found"
	OutcomeInvalidRange = "invalid_range"
	OutcomeEmptyRange   = "empty_range"
	OutcomeError        = "error"
)

// BusinessMetrics holds the application metrics.
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Dataset metrics
	DatasetLoads        metric.Int64Counter
	DatasetLoadDuration metric.Float64Histogram
	DatasetRecords      metric.Int64Gauge
	DatasetDroppedRows  metric.Int64Gauge
	CacheInvalidations  metric.Int64Counter

	// Query metrics
	Queries metric.Int64Counter
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	var (
		m   BusinessMetrics
		err error
	)

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.DatasetLoads, err = meter.Int64Counter(
		"dataset_loads_total",
		metric.WithDescription("Dataset loads by outcome"),
	); err != nil {
		return nil, err
	}
	if m.DatasetLoadDuration, err = meter.Float64Histogram(
		"dataset_load_duration_seconds",
		metric.WithDescription("Time spent reading and building the dataset"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.DatasetRecords, err = meter.Int64Gauge(
		"dataset_records",
		metric.WithDescription("Records in the currently cached dataset"),
	); err != nil {
		return nil, err
	}
	if m.DatasetDroppedRows, err = meter.Int64Gauge(
		"dataset_dropped_rows",
		metric.WithDescription("Rows dropped for an unparseable date in the last load"),
	); err != nil {
		return nil, err
	}
	if m.CacheInvalidations, err = meter.Int64Counter(
		"dataset_cache_invalidations_total",
		metric.WithDescription("Cache invalidations by trigger"),
	); err != nil {
		return nil, err
	}

	if m.Queries, err = meter.Int64Counter(
		"queries_total",
		metric.WithDescription("Collection queries by outcome"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordDatasetLoad records one load attempt.
func RecordDatasetLoad(ctx context.Context, m *BusinessMetrics, duration time.Duration, records, dropped int, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.DatasetLoads.Add(ctx, 1, attrs)
	m.DatasetLoadDuration.Record(ctx, duration.Seconds(), attrs)
	if err == nil {
		m.DatasetRecords.Record(ctx, int64(records))
		m.DatasetDroppedRows.Record(ctx, int64(dropped))
	}
}

// RecordQuery counts a query by outcome and kind ("lookup" or "query").
func RecordQuery(ctx context.Context, m *BusinessMetrics, kind, outcome string) {
	if m == nil {
		return
	}
	m.Queries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}

// RecordInvalidation counts a cache invalidation.
func RecordInvalidation(ctx context.Context, m *BusinessMetrics, trigger string) {
	if m == nil {
		return
	}
	m.CacheInvalidations.Add(ctx, 1, metric.WithAttributes(attribute.String("trigger", trigger)))
}
