package store

import (
	"context"
	"errors"
	"time"

	"github.com/LuaAI777/cts-project/internal/apperr"
)

// guarded bounds every call to the inner backend and converts its failures
// into STORE_UNAVAILABLE errors. ErrKeyNotFound passes through untouched.
type guarded struct {
	inner   Backend
	timeout time.Duration
}

// WithTimeout wraps b so that no call blocks longer than timeout, even if
// the backend ignores context cancellation.
func WithTimeout(b Backend, timeout time.Duration) Backend {
	return &guarded{inner: b, timeout: timeout}
}

// Unwrap returns the wrapped backend.
func (g *guarded) Unwrap() Backend {
	return g.inner
}

func (g *guarded) Name() string { return g.inner.Name() }

type result struct {
	data  []byte
	list  [][]byte
	count int64
	err   error
}

func (g *guarded) do(ctx context.Context, op string, fn func(context.Context) result) result {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() { done <- fn(ctx) }()

	var r result
	select {
	case r = <-done:
	case <-ctx.Done():
		r = result{err: ctx.Err()}
	}
	if r.err != nil && !errors.Is(r.err, ErrKeyNotFound) {
		r.err = apperr.StoreUnavailable(r.err, "%s %s", g.inner.Name(), op)
	}
	return r
}

func (g *guarded) Get(ctx context.Context, key string) ([]byte, error) {
	r := g.do(ctx, "get", func(ctx context.Context) result {
		v, err := g.inner.Get(ctx, key)
		return result{data: v, err: err}
	})
	return r.data, r.err
}

func (g *guarded) Set(ctx context.Context, key string, value []byte) error {
	return g.do(ctx, "set", func(ctx context.Context) result {
		return result{err: g.inner.Set(ctx, key, value)}
	}).err
}

func (g *guarded) AppendToList(ctx context.Context, key string, value []byte) (int64, error) {
	r := g.do(ctx, "append", func(ctx context.Context) result {
		n, err := g.inner.AppendToList(ctx, key, value)
		return result{count: n, err: err}
	})
	return r.count, r.err
}

func (g *guarded) RangeOfList(ctx context.Context, key string, start, end int64) ([][]byte, error) {
	r := g.do(ctx, "range", func(ctx context.Context) result {
		l, err := g.inner.RangeOfList(ctx, key, start, end)
		return result{list: l, err: err}
	})
	return r.list, r.err
}

func (g *guarded) Ping(ctx context.Context) error {
	return g.do(ctx, "ping", func(ctx context.Context) result {
		return result{err: g.inner.Ping(ctx)}
	}).err
}

func (g *guarded) Close() error {
	return g.inner.Close()
}

// Inner strips any timeout wrapper and returns the concrete backend.
func Inner(b Backend) Backend {
	for {
		g, ok := b.(*guarded)
		if !ok {
			return b
		}
		b = g.inner
	}
}
