// Package store provides the durable key-value capability the config
// repository is built on: plain keys plus append-only lists. Backends are
// interchangeable; Redis and Postgres are networked, memory is the local
// fallback.
package store

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key has never been set.
var ErrKeyNotFound = errors.New("store: key not found")

// Backend is the minimal storage capability.
//
// RangeOfList returns the elements at positions start..end inclusive, in
// insertion order. start must be >= 0; a negative end means "through the
// last element". Out-of-range positions are simply not returned.
type Backend interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// AppendToList appends value and returns the new list length.
	AppendToList(ctx context.Context, key string, value []byte) (int64, error)
	RangeOfList(ctx context.Context, key string, start, end int64) ([][]byte, error)
	Ping(ctx context.Context) error
	Close() error
}

// Keys used by the config repository.
const (
	KeyCurrentConfig = "cts:config:current"
	KeyHistory       = "cts:config:history"
	KeyChangeIndex   = "cts:config:changes"
	keyChangePrefix  = "cts:config:change:"
)

// ChangeKey returns the key holding one ConfigChange document.
func ChangeKey(id string) string {
	return keyChangePrefix + id
}
