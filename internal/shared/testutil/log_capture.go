package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// LogRecord is one captured log line with its attributes flattened.
// Grouped attributes are keyed "group.key".
type LogRecord struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// Attr returns the attribute value for key and whether it was set.
func (r LogRecord) Attr(key string) (any, bool) {
	v, ok := r.Attrs[key]
	return v, ok
}

type logBuffer struct {
	mu      sync.Mutex
	records []LogRecord
}

// LogCapture is a slog.Handler that keeps every record in memory.
// Handlers derived through WithAttrs or WithGroup share one buffer.
type LogCapture struct {
	buf    *logBuffer
	attrs  []slog.Attr
	prefix string
	t      testing.TB
}

// NewLogCapture returns an empty capture. Records are echoed to t.Logf when t is set.
func NewLogCapture(t testing.TB) *LogCapture {
	return &LogCapture{buf: &logBuffer{}, t: t}
}

// NewTestLogger returns a logger writing into a fresh capture.
func NewTestLogger(t testing.TB) (*slog.Logger, *LogCapture) {
	c := NewLogCapture(t)
	return slog.New(c), c
}

func (c *LogCapture) Enabled(context.Context, slog.Level) bool { return true }

func (c *LogCapture) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(c.attrs)+r.NumAttrs())
	for _, a := range c.attrs {
		attrs[a.Key] = a.Value.Resolve().Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[c.prefix+a.Key] = a.Value.Resolve().Any()
		return true
	})

	c.buf.mu.Lock()
	c.buf.records = append(c.buf.records, LogRecord{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	c.buf.mu.Unlock()

	if c.t != nil {
		c.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

func (c *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(c.attrs)+len(attrs))
	merged = append(merged, c.attrs...)
	for _, a := range attrs {
		merged = append(merged, slog.Attr{Key: c.prefix + a.Key, Value: a.Value})
	}
	return &LogCapture{buf: c.buf, attrs: merged, prefix: c.prefix, t: c.t}
}

func (c *LogCapture) WithGroup(name string) slog.Handler {
	if name == "" {
		return c
	}
	return &LogCapture{buf: c.buf, attrs: c.attrs, prefix: c.prefix + name + ".", t: c.t}
}

// Records returns a copy of everything captured so far.
func (c *LogCapture) Records() []LogRecord {
	c.buf.mu.Lock()
	defer c.buf.mu.Unlock()
	out := make([]LogRecord, len(c.buf.records))
	copy(out, c.buf.records)
	return out
}

// ByLevel returns the captured records at level.
func (c *LogCapture) ByLevel(level slog.Level) []LogRecord {
	var out []LogRecord
	for _, r := range c.Records() {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// Find returns the first record whose message contains substr.
func (c *LogCapture) Find(substr string) (LogRecord, bool) {
	for _, r := range c.Records() {
		if strings.Contains(r.Message, substr) {
			return r, true
		}
	}
	return LogRecord{}, false
}

func (c *LogCapture) Count() int {
	c.buf.mu.Lock()
	defer c.buf.mu.Unlock()
	return len(c.buf.records)
}

func (c *LogCapture) Reset() {
	c.buf.mu.Lock()
	c.buf.records = nil
	c.buf.mu.Unlock()
}

// AssertLogContains fails t unless a record at level contains message.
func AssertLogContains(t testing.TB, c *LogCapture, level slog.Level, message string) bool {
	t.Helper()
	var seen []string
	for _, r := range c.ByLevel(level) {
		if strings.Contains(r.Message, message) {
			return true
		}
		seen = append(seen, r.Message)
	}
	return assert.Fail(t, "log message not found",
		"level %s, want %q, captured %q", level, message, seen)
}

// AssertLogAttr fails t unless some record carries key=want.
func AssertLogAttr(t testing.TB, c *LogCapture, key string, want any) bool {
	t.Helper()
	for _, r := range c.Records() {
		if v, ok := r.Attr(key); ok && v == want {
			return true
		}
	}
	return assert.Fail(t, "log attribute not found", "want %s=%v", key, want)
}

// AssertNoErrors fails t if anything was logged at error level.
func AssertNoErrors(t testing.TB, c *LogCapture) bool {
	t.Helper()
	errs := c.ByLevel(slog.LevelError)
	return assert.Empty(t, errs, "unexpected error logs")
}
