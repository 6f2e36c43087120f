package testutil

import (
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCapture(t *testing.T) {
	t.Run("records message and attrs", func(t *testing.T) {
		logger, logs := NewTestLogger(t)
		logger.Info("dataset cached", slog.Int("records", 3), slog.String("source", "data.csv"))

		rec, ok := logs.Find("cached")
		require.True(t, ok)
		assert.Equal(t, slog.LevelInfo, rec.Level)
		assert.Equal(t, int64(3), rec.Attrs["records"])
		v, ok := rec.Attr("source")
		assert.True(t, ok)
		assert.Equal(t, "data.csv", v)
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, logs := NewTestLogger(t)
		logger.Info("one")
		logger.Warn("two")
		logger.Error("three")

		assert.Len(t, logs.ByLevel(slog.LevelWarn), 1)
		assert.Len(t, logs.ByLevel(slog.LevelDebug), 0)
		AssertLogContains(t, logs, slog.LevelError, "three")
	})

	t.Run("derived loggers share the buffer", func(t *testing.T) {
		logger, logs := NewTestLogger(t)
		logger.With(slog.String("component", "watcher")).
			WithGroup("event").
			Info("source changed", slog.String("op", "WRITE"))
		logger.Info("plain")

		assert.Equal(t, 2, logs.Count())
		AssertLogAttr(t, logs, "component", "watcher")
		AssertLogAttr(t, logs, "event.op", "WRITE")
		AssertNoErrors(t, logs)

		logs.Reset()
		assert.Zero(t, logs.Count())
	})

	t.Run("failing assertions report", func(t *testing.T) {
		_, logs := NewTestLogger(t)
		rt := &recordingT{TB: t}
		assert.False(t, AssertLogContains(rt, logs, slog.LevelInfo, "missing"))
		assert.False(t, AssertLogAttr(rt, logs, "k", "v"))
		assert.Equal(t, 2, rt.failures)
	})

	t.Run("concurrent writers", func(t *testing.T) {
		logger, logs := NewTestLogger(nil)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				logger.Info("lookup", slog.Int("n", n))
			}(i)
		}
		wg.Wait()
		assert.Equal(t, 10, logs.Count())
	})
}

type recordingT struct {
	testing.TB
	failures int
}

func (r *recordingT) Helper() {}

func (r *recordingT) Errorf(string, ...any) { r.failures++ }
