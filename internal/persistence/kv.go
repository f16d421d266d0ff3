package persistence

import (
	"context"
	"errors"
)

// ErrNotFound is returned by KV.Get when the key holds no value.
var ErrNotFound = errors.New("persistence: key not found")

// KV is a flat key-value store holding opaque encoded values.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// WithPrefix namespaces every key of kv. Close is passed through.
func WithPrefix(kv KV, prefix string) KV {
	if prefix == "" {
		return kv
	}
	return &prefixedKV{inner: kv, prefix: prefix}
}

type prefixedKV struct {
	inner  KV
	prefix string
}

func (p *prefixedKV) Get(ctx context.Context, key string) ([]byte, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixedKV) Put(ctx context.Context, key string, value []byte) error {
	return p.inner.Put(ctx, p.prefix+key, value)
}

func (p *prefixedKV) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.prefix+key)
}

func (p *prefixedKV) Ping(ctx context.Context) error { return p.inner.Ping(ctx) }

func (p *prefixedKV) Close() error { return p.inner.Close() }
