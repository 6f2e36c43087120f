package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"wastelookup/internal/collection"
	"wastelookup/internal/infrastructure"
)

// CollectionServiceConfig wires a CollectionService.
type CollectionServiceConfig struct {
	Source     collection.Source
	Columns    collection.Columns
	PricePerKg float64
	Metrics    *infrastructure.BusinessMetrics
	Tracer     trace.Tracer
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// CollectionService answers chip lookups against the cached dataset.
type CollectionService struct {
	source  collection.Source
	cache   *collection.Cache
	rate    float64
	metrics *infrastructure.BusinessMetrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewCollectionService creates the service. Nothing is read until the
// first request or an explicit Reload.
func NewCollectionService(cfg CollectionServiceConfig, logger *slog.Logger) *CollectionService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "collection_service"))

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(infrastructure.MeterName)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	s := &CollectionService{
		source:  cfg.Source,
		rate:    cfg.PricePerKg,
		metrics: cfg.Metrics,
		tracer:  tracer,
		logger:  logger,
	}

	loader := collection.NewLoader(cfg.Columns, logger)
	loader.Now = clock
	s.cache = collection.NewCache(
		func(ctx context.Context) (*collection.Dataset, error) {
			return loader.Load(ctx, cfg.Source)
		},
		collection.WithClock(clock),
		collection.WithLoadObserver(s.observeLoad),
	)

	logger.Info("collection service initialized",
		slog.String("source", cfg.Source.Name()),
		slog.Float64("price_per_kg", cfg.PricePerKg))
	return s
}

// observeLoad runs after each load attempt, with or without error.
func (s *CollectionService) observeLoad(e collection.LoadEvent) {
	ctx := context.Background()
	records, dropped := 0, 0
	if e.Dataset != nil {
		records, dropped = e.Dataset.Len(), e.Dataset.Dropped
	}
	infrastructure.RecordDatasetLoad(ctx, s.metrics, e.Duration, records, dropped, e.Err)

	if e.Err != nil {
		s.logger.Error("dataset load failed",
			slog.String("source", s.source.Name()),
			slog.Uint64("generation", e.Generation),
			slog.String("error", e.Err.Error()))
		return
	}
	s.logger.Info("dataset cached",
		slog.String("dataset_id", e.Dataset.ID),
		slog.Uint64("generation", e.Generation),
		slog.Int("records", records),
		slog.Int("dropped", dropped),
		slog.Duration("duration", e.Duration))
}

// SourceName identifies the configured source.
func (s *CollectionService) SourceName() string {
	return s.source.Name()
}

// Dataset returns the cached dataset, loading it if needed.
func (s *CollectionService) Dataset(ctx context.Context) (*collection.Dataset, error) {
	ctx, span := s.tracer.Start(ctx, "collection.dataset")
	defer span.End()

	ds, err := s.cache.Get(ctx)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	span.SetAttributes(attribute.String("dataset.id", ds.ID), attribute.Int("dataset.records", ds.Len()))
	return ds, nil
}

// Lookup returns every record of a chip and its available date span.
func (s *CollectionService) Lookup(ctx context.Context, chip string) (*collection.Match, error) {
	ctx, span := s.tracer.Start(ctx, "collection.lookup",
		trace.WithAttributes(attribute.String("chip.input", chip)))
	defer span.End()

	ds, err := s.Dataset(ctx)
	if err != nil {
		infrastructure.RecordQuery(ctx, s.metrics, "lookup", infrastructure.OutcomeError)
		return nil, err
	}

	m, err := collection.Lookup(ds, chip)
	infrastructure.RecordQuery(ctx, s.metrics, "lookup", outcomeOf(err))
	if err != nil {
		s.logger.DebugContext(ctx, "lookup missed", slog.String("chip", collection.NormalizeChip(chip)))
		return nil, err
	}
	span.SetAttributes(attribute.String("chip.id", m.ChipID), attribute.Int("chip.records", len(m.Records)))
	return m, nil
}

// Query aggregates a chip's pickups in a date range.
func (s *CollectionService) Query(ctx context.Context, in collection.QueryInput) (*collection.Result, error) {
	ctx, span := s.tracer.Start(ctx, "collection.query",
		trace.WithAttributes(attribute.String("chip.input", in.ChipID)))
	defer span.End()

	ds, err := s.Dataset(ctx)
	if err != nil {
		infrastructure.RecordQuery(ctx, s.metrics, "query", infrastructure.OutcomeError)
		return nil, err
	}

	res, err := collection.Query(ds, in)
	outcome := outcomeOf(err)
	infrastructure.RecordQuery(ctx, s.metrics, "query", outcome)
	if err != nil {
		s.logger.DebugContext(ctx, "query rejected",
			slog.String("chip", collection.NormalizeChip(in.ChipID)),
			slog.String("outcome", outcome))
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("result.pickups", res.PickupCount),
		attribute.Float64("result.total_kg", res.TotalMassKg),
	)
	s.logger.DebugContext(ctx, "query answered",
		slog.String("chip", res.ChipID),
		slog.Int("pickups", res.PickupCount),
		slog.Float64("total_kg", res.TotalMassKg))
	return res, nil
}

// Invalidate drops the cached dataset so the next request rereads the source.
func (s *CollectionService) Invalidate(ctx context.Context, trigger string) {
	s.cache.Invalidate()
	infrastructure.RecordInvalidation(ctx, s.metrics, trigger)
	s.logger.InfoContext(ctx, "dataset cache invalidated", slog.String("trigger", trigger))
}

// Reload invalidates the cache and loads the source again immediately.
func (s *CollectionService) Reload(ctx context.Context, trigger string) (collection.CacheStats, error) {
	s.Invalidate(ctx, trigger)
	if _, err := s.Dataset(ctx); err != nil {
		return s.cache.Stats(), err
	}
	return s.cache.Stats(), nil
}

// Stats reports cache state without loading.
func (s *CollectionService) Stats() collection.CacheStats {
	return s.cache.Stats()
}

// Loaded reports whether a dataset is cached right now.
func (s *CollectionService) Loaded() bool {
	return s.cache.Peek() != nil
}

// DefaultRate returns a copy of the configured price per kg.
func (s *CollectionService) DefaultRate() *float64 {
	r := s.rate
	return &r
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return infrastructure.OutcomeOK
	case errors.Is(err, collection.ErrNotFound):
		return infrastructure.OutcomeNotFound
	case errors.Is(err, collection.ErrInvalidRange):
		return infrastructure.OutcomeInvalidRange
	case errors.Is(err, collection.ErrEmptyRange):
		return infrastructure.OutcomeEmptyRange
	default:
		return infrastructure.OutcomeError
	}
}
