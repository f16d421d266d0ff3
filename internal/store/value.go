// Package store binds typed values to keys of a persistence.KV backend.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-desk/internal/persistence"
)

// Value is a JSON-encoded value of type T stored under a single key.
//
// The backend is read lazily on first access. A missing or undecodable
// entry yields the default, which is not written until the first Set.
// Write failures are logged and the new value is kept in memory, so callers
// never observe storage errors.
type Value[T any] struct {
	kv     persistence.KV
	key    string
	def    T
	logger *zap.Logger

	mu     sync.Mutex
	loaded bool
	cur    T
}

// Bind returns a Value for key with def as the fallback.
func Bind[T any](kv persistence.KV, key string, def T, logger *zap.Logger) *Value[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Value[T]{kv: kv, key: key, def: def, logger: logger.With(zap.String("key", key))}
}

// Key returns the unprefixed key.
func (v *Value[T]) Key() string { return v.key }

// Get returns the current value, loading it on first use.
func (v *Value[T]) Get(ctx context.Context) T {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ensureLoaded(ctx)
	return v.cur
}

// Set replaces the value and writes it through.
func (v *Value[T]) Set(ctx context.Context, val T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loaded = true
	v.cur = val
	v.persist(ctx)
}

// Update applies fn to the current value and writes the result through.
// The read-modify-write is atomic with respect to other callers of v.
func (v *Value[T]) Update(ctx context.Context, fn func(T) T) T {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ensureLoaded(ctx)
	v.cur = fn(v.cur)
	v.persist(ctx)
	return v.cur
}

// Reload re-reads the backend. It reports whether a stored value replaced
// the cached one; on a miss or decode failure the cache is left alone.
func (v *Value[T]) Reload(ctx context.Context) (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	val, ok := v.read(ctx)
	if ok {
		v.cur = val
		v.loaded = true
		return v.cur, true
	}
	v.ensureLoaded(ctx)
	return v.cur, false
}

// Reset writes the default back.
func (v *Value[T]) Reset(ctx context.Context) T {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loaded = true
	v.cur = v.def
	v.persist(ctx)
	return v.cur
}

func (v *Value[T]) ensureLoaded(ctx context.Context) {
	if v.loaded {
		return
	}
	if val, ok := v.read(ctx); ok {
		v.cur = val
	} else {
		v.cur = v.def
	}
	v.loaded = true
}

func (v *Value[T]) read(ctx context.Context) (T, bool) {
	var zero T
	raw, err := v.kv.Get(ctx, v.key)
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			v.logger.Warn("store read failed; using default", zap.Error(err))
		}
		return zero, false
	}
	var val T
	if err := json.Unmarshal(raw, &val); err != nil {
		v.logger.Warn("stored value is not valid JSON; using default", zap.Error(err))
		return zero, false
	}
	return val, true
}

func (v *Value[T]) persist(ctx context.Context) {
	raw, err := json.Marshal(v.cur)
	if err != nil {
		v.logger.Warn("encode value failed", zap.Error(err))
		return
	}
	if err := v.kv.Put(ctx, v.key, raw); err != nil {
		v.logger.Warn("store write failed; keeping value in memory", zap.Error(err))
	}
}
