package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps everything in process memory. Nothing survives a restart.
type MemoryBackend struct {
	mu    sync.RWMutex
	kv    map[string][]byte
	lists map[string][][]byte
}

var _ Backend = (*MemoryBackend)(nil)

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		kv:    make(map[string][]byte),
		lists: make(map[string][][]byte),
	}
}

func (m *MemoryBackend) Name() string { return "memory" }

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.kv[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return copyBytes(v), nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[key] = copyBytes(value)
	return nil
}

func (m *MemoryBackend) AppendToList(_ context.Context, key string, value []byte) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[key] = append(m.lists[key], copyBytes(value))
	return int64(len(m.lists[key])), nil
}

func (m *MemoryBackend) RangeOfList(_ context.Context, key string, start, end int64) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.lists[key]
	lo, hi, ok := clampRange(int64(len(list)), start, end)
	if !ok {
		return [][]byte{}, nil
	}
	out := make([][]byte, 0, hi-lo+1)
	for _, v := range list[lo : hi+1] {
		out = append(out, copyBytes(v))
	}
	return out, nil
}

func (m *MemoryBackend) Ping(context.Context) error { return nil }

func (m *MemoryBackend) Close() error { return nil }

// clampRange resolves an inclusive [start,end] request against a list of
// length n. ok is false when nothing is in range.
func clampRange(n, start, end int64) (lo, hi int64, ok bool) {
	if start < 0 {
		start = 0
	}
	if end < 0 || end >= n {
		end = n - 1
	}
	if start > end {
		return 0, 0, false
	}
	return start, end, true
}

func copyBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
