package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"wastelookup/internal/config"
)

var (
	globalLogger     *slog.Logger
	globalLoggerOnce sync.Once

	logFile   *os.File
	logFileMu sync.Mutex
)

// InitializeLogger builds the process logger from cfg and installs it as
// the slog default. Later calls return the first logger unchanged.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var err error
	globalLoggerOnce.Do(func() {
		var out io.Writer
		out, err = openSink(cfg)
		if err != nil {
			return
		}
		globalLogger = slog.New(newHandler(out, cfg.Format, &slog.HandlerOptions{
			AddSource: true,
			Level:     ParseLogLevel(cfg.Level),
		}))
		slog.SetDefault(globalLogger)
	})
	return globalLogger, err
}

// GetLogger returns the process logger, or slog.Default before InitializeLogger.
func GetLogger() *slog.Logger {
	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger
}

// NewLogger builds a JSON logger on w without touching global state.
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(newHandler(w, "json", &slog.HandlerOptions{Level: ParseLogLevel(level)}))
}

func newHandler(w io.Writer, format string, opts *slog.HandlerOptions) slog.Handler {
	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return &traceHandler{Handler: h}
}

// openSink resolves the output setting: "stdout" (default), "file" or "both".
func openSink(cfg config.LoggingConfig) (io.Writer, error) {
	output := strings.ToLower(cfg.Output)
	if output != "file" && output != "both" {
		return os.Stdout, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", cfg.FilePath, err)
	}

	logFileMu.Lock()
	logFile = f
	logFileMu.Unlock()

	if output == "both" {
		return io.MultiWriter(os.Stdout, f), nil
	}
	return f, nil
}

// traceHandler stamps each record with the request trace ID and, when an
// OpenTelemetry span is active, its span ID.
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	traceID := GetTraceID(ctx)
	sc := trace.SpanContextFromContext(ctx)
	if traceID == "" && sc.HasTraceID() {
		traceID = sc.TraceID().String()
	}
	if traceID != "" {
		r.AddAttrs(slog.String("trace_id", traceID))
	}
	if sc.HasSpanID() {
		r.AddAttrs(slog.String("span_id", sc.SpanID().String()))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}

// ParseLogLevel maps a config level name to slog.Level. Unknown names are info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CloseLogFile closes the log file opened by InitializeLogger, if any.
func CloseLogFile() error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// ResetLoggerForTesting drops the process logger so tests can initialize again.
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	globalLogger = nil
	globalLoggerOnce = sync.Once{}
}
