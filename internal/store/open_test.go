package store

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	b, status, err := Open(context.Background(), Options{Backend: BackendMemory, OpTimeout: time.Second}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "memory", b.Name())
	assert.False(t, status.Degraded)
	assert.Equal(t, BackendMemory, status.Active)
}

func TestOpen_UnreachableRedisDegradesToMemory(t *testing.T) {
	opts := Options{
		Backend:        BackendRedis,
		RedisURL:       "redis://127.0.0.1:1/0",
		ConnectTimeout: 200 * time.Millisecond,
		OpTimeout:      time.Second,
	}
	b, status, err := Open(context.Background(), opts, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "memory", b.Name())
	assert.True(t, status.Degraded)
	assert.Equal(t, BackendRedis, status.Requested)
	assert.Equal(t, BackendMemory, status.Active)
	assert.NotEmpty(t, status.Cause)

	// Degraded mode still serves reads and writes.
	require.NoError(t, b.Set(context.Background(), "k", []byte("v")))
	got, err := b.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestOpen_InvalidRedisURLDegrades(t *testing.T) {
	_, status, err := Open(context.Background(), Options{Backend: BackendRedis, RedisURL: "::not a url", OpTimeout: time.Second}, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, status.Degraded)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, _, err := Open(context.Background(), Options{Backend: "etcd"}, zerolog.Nop())
	assert.Error(t, err)
}
