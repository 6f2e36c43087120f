package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"wastelookup/internal/collection"
)

// DatasetProbe is the slice of CollectionService health checks need.
type DatasetProbe interface {
	Dataset(ctx context.Context) (*collection.Dataset, error)
	Stats() collection.CacheStats
	SourceName() string
}

// HealthService answers the health, readiness and liveness probes.
type HealthService struct {
	version   string
	buildTime string
	probe     DatasetProbe
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Records int    `json:"records,omitempty"`
	Source  string `json:"source,omitempty"`
	// DatasetID and Generation identify the cached dataset being served.
	DatasetID  string `json:"dataset_id,omitempty"`
	Generation uint64 `json:"generation"`
}

// NewHealthService creates a new health service
func NewHealthService(version, buildTime string, probe DatasetProbe, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		probe:     probe,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready once the dataset can be served. If nothing is
// cached yet it attempts a load with ctx.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	data := hs.checkDataHealth(ctx)
	status.Services["data"] = data
	if data.Status != "ready" {
		status.Status = "not_ready"
	}
	return status
}

func (hs *HealthService) checkDataHealth(ctx context.Context) ServiceHealth {
	if hs.probe == nil {
		return ServiceHealth{Status: "not_ready", Message: "collection service not configured"}
	}

	ds, err := hs.probe.Dataset(ctx)
	if err != nil {
		hs.logger.WarnContext(ctx, "readiness check failed", slog.String("error", err.Error()))
		return ServiceHealth{Status: "not_ready", Message: err.Error(), Source: hs.probe.SourceName()}
	}
	stats := hs.probe.Stats()
	return ServiceHealth{
		Status:     "ready",
		Records:    ds.Len(),
		Source:     hs.probe.SourceName(),
		DatasetID:  ds.ID,
		Generation: stats.Generation,
	}
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":    hs.version,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"uptime":     time.Since(hs.startTime).Seconds(),
		"start_time": hs.startTime.Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	return result
}
