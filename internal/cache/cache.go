// Package cache memoizes computed responses per key for a bounded time window.
//
// Entries are never swept in the background: staleness is checked lazily when the
// same key is read again, so memory grows with the number of distinct keys seen.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"PriceOracle/internal/metrics"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Entry is one stored response and the time it was stored.
type Entry struct {
	Payload  json.RawMessage `json:"payload"`
	StoredAt time.Time       `json:"stored_at"`
}

// Store persists entries. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry) error
}

// KeyBuilder composes a cache key from an operation name and its parameters.
type KeyBuilder func(op string, params ...any) string

// DefaultKey joins the operation and its query-escaped parameters with ':' so that
// parameters containing the separator cannot collide.
func DefaultKey(op string, params ...any) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, url.QueryEscape(op))
	for _, p := range params {
		parts = append(parts, url.QueryEscape(fmt.Sprint(p)))
	}
	return strings.Join(parts, ":")
}

// Cache wraps a Store with TTL checks and optional per-key de-duplication.
//
// Without dedupe, concurrent misses on the same key all compute and the last write
// wins; computations are deterministic so this only wastes work. With dedupe, one
// caller computes while the others wait for its result.
type Cache struct {
	store   Store
	clock   Clock
	keys    KeyBuilder
	dedupe  bool
	group   singleflight.Group
	metrics *metrics.Metrics
	log     *logrus.Entry
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c Clock) Option { return func(ca *Cache) { ca.clock = c } }

// WithKeyBuilder replaces DefaultKey.
func WithKeyBuilder(k KeyBuilder) Option { return func(ca *Cache) { ca.keys = k } }

// WithDedupe collapses concurrent misses on one key into a single computation.
func WithDedupe(on bool) Option { return func(ca *Cache) { ca.dedupe = on } }

func WithMetrics(m *metrics.Metrics) Option { return func(ca *Cache) { ca.metrics = m } }

func WithLogger(l *logrus.Entry) Option { return func(ca *Cache) { ca.log = l } }

// New creates a Cache over store. A nil store means an in-process MemoryStore.
func New(store Store, opts ...Option) *Cache {
	if store == nil {
		store = NewMemoryStore()
	}
	c := &Cache{
		store: store,
		clock: SystemClock{},
		keys:  DefaultKey,
		log:   logrus.NewEntry(logrus.StandardLogger()).WithField("component", "cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key builds a key with the configured KeyBuilder.
func (c *Cache) Key(op string, params ...any) string {
	return c.keys(op, params...)
}

// Dedupe reports whether concurrent misses are collapsed into one computation.
func (c *Cache) Dedupe() bool { return c.dedupe }

// GetOrCompute returns the value stored under key if it is younger than ttl,
// otherwise calls fn, stores its result and returns it. Errors from fn are returned
// as-is and never cached. A ttl <= 0 always recomputes.
func GetOrCompute[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	op := opLabel(key)

	if v, ok := lookup[T](ctx, c, key, ttl); ok {
		c.hit(op)
		return v, nil
	}
	c.miss(op)

	if !c.dedupe {
		return compute(ctx, c, key, op, fn)
	}

	// the flight outlives the caller that started it; each waiter only stops
	// waiting on its own cancellation
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		// a flight that just finished may have stored a fresh entry
		if v, ok := lookup[T](flightCtx, c, key, ttl); ok {
			return v, nil
		}
		return compute(flightCtx, c, key, op, fn)
	})
	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return zero, r.Err
		}
		return r.Val.(T), nil
	}
}

func lookup[T any](ctx context.Context, c *Cache, key string, ttl time.Duration) (T, bool) {
	var zero T
	if ttl <= 0 {
		return zero, false
	}
	e, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.storeError("get", key, err)
		return zero, false
	}
	if !ok || c.clock.Now().Sub(e.StoredAt) >= ttl {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(e.Payload, &v); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("discarding undecodable cache entry")
		return zero, false
	}
	return v, true
}

func compute[T any](ctx context.Context, c *Cache, key, op string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	if c.metrics != nil {
		c.metrics.ComputeDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return v, err
	}

	payload, err := json.Marshal(v)
	if err != nil {
		c.log.WithError(err).WithField("key", key).Warn("response not cacheable")
		return v, nil
	}
	if err := c.store.Set(ctx, key, Entry{Payload: payload, StoredAt: c.clock.Now()}); err != nil {
		c.storeError("set", key, err)
	}
	return v, nil
}

func (c *Cache) hit(op string) {
	if c.metrics != nil {
		c.metrics.CacheHits.WithLabelValues(op).Inc()
	}
}

func (c *Cache) miss(op string) {
	if c.metrics != nil {
		c.metrics.CacheMisses.WithLabelValues(op).Inc()
	}
}

func (c *Cache) storeError(action, key string, err error) {
	if c.metrics != nil {
		c.metrics.CacheStoreErrors.Inc()
	}
	c.log.WithError(err).WithFields(logrus.Fields{"key": key, "action": action}).Warn("cache store failure, treating as miss")
}

func opLabel(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}
