// Package daycache deduplicates and caches per-user, per-day loads.
//
// Concurrent loads of the same (user, date) share one call through
// singleflight. When a Cache is configured the result is also kept there
// until Invalidate or the TTL expires. Cache failures are logged and the
// load goes straight to the source.
//
// A load that started before an Invalidate of its key still returns its
// result to its callers but does not write it to the cache.
package daycache

import (
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrMiss is returned by Cache.Get for absent keys.
var ErrMiss = errors.New("cache miss")

// Cache is a byte-oriented TTL cache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// generationSlots bounds the invalidation counters. Keys sharing a slot only
// cost an extra cache miss.
const generationSlots = 256

type Logger interface {
	Printf(format string, v ...any)
}

// Loader loads values of type T keyed by user and date.
type Loader[T any] struct {
	prefix string
	group  singleflight.Group
	cache  Cache
	ttl    time.Duration
	logger Logger
	gens   [generationSlots]atomic.Uint64
}

// New creates a Loader. cache may be nil for singleflight-only mode.
func New[T any](prefix string, cache Cache, ttl time.Duration, logger Logger) *Loader[T] {
	return &Loader[T]{
		prefix: prefix,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Key returns the cache key for a user and date.
func (l *Loader[T]) Key(userID, date string) string {
	return l.prefix + ":" + userID + ":" + date
}

// Load returns the cached value or calls fn once for all concurrent callers
// of the same key.
func (l *Loader[T]) Load(ctx context.Context, userID, date string, fn func(context.Context) (T, error)) (T, error) {
	key := l.Key(userID, date)

	if v, ok := l.get(ctx, key); ok {
		return v, nil
	}

	// The shared load outlives any single caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	res, err, _ := l.group.Do(key, func() (any, error) {
		gen := l.generation(key).Load()
		v, err := fn(loadCtx)
		if err != nil {
			return v, err
		}
		if l.generation(key).Load() == gen {
			l.set(loadCtx, key, v)
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

// Invalidate drops cached values for the given dates of a user.
func (l *Loader[T]) Invalidate(ctx context.Context, userID string, dates ...string) {
	if len(dates) == 0 {
		return
	}
	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		key := l.Key(userID, d)
		keys = append(keys, key)
		l.generation(key).Add(1)
		l.group.Forget(key)
	}
	if l.cache == nil {
		return
	}
	if err := l.cache.Del(ctx, keys...); err != nil {
		l.logf("WARN daycache: invalidate failed keys=%v err=%v", keys, err)
	}
}

func (l *Loader[T]) generation(key string) *atomic.Uint64 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &l.gens[h.Sum32()%generationSlots]
}

func (l *Loader[T]) get(ctx context.Context, key string) (T, bool) {
	var v T
	if l.cache == nil {
		return v, false
	}
	raw, err := l.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			l.logf("WARN daycache: get failed key=%s err=%v", key, err)
		}
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		l.logf("WARN daycache: corrupt entry key=%s err=%v", key, err)
		return v, false
	}
	return v, true
}

func (l *Loader[T]) set(ctx context.Context, key string, v T) {
	if l.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		l.logf("WARN daycache: encode failed key=%s err=%v", key, err)
		return
	}
	if err := l.cache.Set(ctx, key, raw, l.ttl); err != nil {
		l.logf("WARN daycache: set failed key=%s err=%v", key, err)
	}
}

func (l *Loader[T]) logf(format string, v ...any) {
	if l.logger != nil {
		l.logger.Printf(format, v...)
	}
}
