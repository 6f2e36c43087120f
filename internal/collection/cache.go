package collection

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoaderFunc builds a fresh Dataset, typically by reading the source file.
type LoaderFunc func(ctx context.Context) (*Dataset, error)

// LoadEvent describes one completed load attempt.
type LoadEvent struct {
	Generation uint64
	Duration   time.Duration
	Dataset    *Dataset
	Err        error
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock replaces time.Now for load timing and stats.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// WithLoadObserver registers a callback invoked after every load attempt.
func WithLoadObserver(fn func(LoadEvent)) CacheOption {
	return func(c *Cache) { c.observers = append(c.observers, fn) }
}

// Cache memoizes the Dataset until Invalidate is called. Readers take the
// current dataset without locking; a rebuilt dataset replaces the old one
// in a single atomic store. Concurrent misses share one load.
type Cache struct {
	load      LoaderFunc
	now       func() time.Time
	observers []func(LoadEvent)

	current    atomic.Pointer[Dataset]
	generation atomic.Uint64
	group      singleflight.Group

	// swapMu orders publishing against Invalidate.
	swapMu sync.Mutex

	loads    atomic.Int64
	failures atomic.Int64
	hits     atomic.Int64
	misses   atomic.Int64
	loadedAt atomic.Pointer[time.Time]
}

// NewCache creates an empty cache around load.
func NewCache(load LoaderFunc, opts ...CacheOption) *Cache {
	c := &Cache{load: load, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached dataset, loading it first if the cache is empty.
// Load errors are returned as is and not cached; the next Get retries.
func (c *Cache) Get(ctx context.Context) (*Dataset, error) {
	if ds := c.current.Load(); ds != nil {
		c.hits.Add(1)
		return ds, nil
	}
	c.misses.Add(1)

	gen := c.generation.Load()
	v, err, _ := c.group.Do(groupKey(gen), func() (any, error) {
		// Another caller may have published while we waited.
		if ds := c.current.Load(); ds != nil {
			return ds, nil
		}
		return c.loadAndPublish(ctx, gen)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

func (c *Cache) loadAndPublish(ctx context.Context, gen uint64) (*Dataset, error) {
	start := c.now()
	ds, err := c.load(ctx)
	c.loads.Add(1)

	event := LoadEvent{Generation: gen, Duration: c.now().Sub(start), Dataset: ds, Err: err}
	defer c.notify(event)

	if err != nil {
		c.failures.Add(1)
		return nil, err
	}

	c.swapMu.Lock()
	// An Invalidate during the load makes this result stale; hand it to the
	// caller but do not keep it.
	if c.generation.Load() == gen {
		c.current.Store(ds)
		at := c.now()
		c.loadedAt.Store(&at)
	}
	c.swapMu.Unlock()
	return ds, nil
}

// Invalidate drops the cached dataset. The next Get reloads.
func (c *Cache) Invalidate() {
	c.swapMu.Lock()
	c.generation.Add(1)
	c.current.Store(nil)
	c.loadedAt.Store(nil)
	c.swapMu.Unlock()
}

// Peek returns the cached dataset without loading.
func (c *Cache) Peek() *Dataset {
	return c.current.Load()
}

// CacheStats is a snapshot of cache state.
type CacheStats struct {
	Loaded     bool      `json:"loaded"`
	DatasetID  string    `json:"dataset_id,omitempty"`
	Records    int       `json:"records"`
	Dropped    int       `json:"dropped"`
	Generation uint64    `json:"generation"`
	Loads      int64     `json:"loads"`
	Failures   int64     `json:"failures"`
	Hits       int64     `json:"hits"`
	Misses     int64     `json:"misses"`
	LoadedAt   time.Time `json:"loaded_at,omitempty"`
}

// Stats returns counters and the identity of the cached dataset.
func (c *Cache) Stats() CacheStats {
	s := CacheStats{
		Generation: c.generation.Load(),
		Loads:      c.loads.Load(),
		Failures:   c.failures.Load(),
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
	}
	if ds := c.current.Load(); ds != nil {
		s.Loaded = true
		s.DatasetID = ds.ID
		s.Records = len(ds.Records)
		s.Dropped = ds.Dropped
	}
	if at := c.loadedAt.Load(); at != nil {
		s.LoadedAt = *at
	}
	return s
}

func (c *Cache) notify(e LoadEvent) {
	for _, fn := range c.observers {
		fn(e)
	}
}

func groupKey(gen uint64) string {
	return "dataset/" + strconv.FormatUint(gen, 10)
}
