package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/LuaAI777/cts-project/internal/db"
)

// Backend names accepted by Open.
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Options selects and configures the durable backend.
type Options struct {
	Backend         string
	RedisURL        string
	DatabaseURL     string
	ConnectTimeout  time.Duration
	ConnectAttempts int
	OpTimeout       time.Duration
}

// Status reports which backend is actually serving and why.
type Status struct {
	Requested string `json:"requested"`
	Active    string `json:"active"`
	Degraded  bool   `json:"degraded"`
	Cause     string `json:"cause,omitempty"`
}

// Open connects the requested backend. When a networked backend is
// unreachable it degrades to memory, logs the degradation and keeps going;
// state kept in that mode does not survive a restart. Only an unknown
// backend name is an error.
func Open(ctx context.Context, opts Options, log zerolog.Logger) (Backend, Status, error) {
	status := Status{Requested: opts.Backend, Active: opts.Backend}

	var (
		b   Backend
		err error
	)
	switch opts.Backend {
	case BackendMemory:
		b = NewMemoryBackend()
	case BackendRedis:
		b, err = NewRedisBackend(ctx, opts.RedisURL, opts.ConnectTimeout)
	case BackendPostgres:
		b, err = openPostgres(ctx, opts, log)
	default:
		return nil, status, fmt.Errorf("unsupported store backend %q: must be redis, postgres or memory", opts.Backend)
	}

	if err != nil {
		log.Warn().Err(err).
			Str("requested", opts.Backend).
			Msg("store: backend unreachable, degrading to in-memory state (not durable across restarts)")
		b = NewMemoryBackend()
		status.Active = BackendMemory
		status.Degraded = true
		status.Cause = err.Error()
	} else {
		log.Info().Str("backend", b.Name()).Msg("store: backend ready")
	}

	return WithTimeout(b, opts.OpTimeout), status, nil
}

func openPostgres(ctx context.Context, opts Options, log zerolog.Logger) (Backend, error) {
	attempts := max(opts.ConnectAttempts, 1)
	connectCtx, cancel := context.WithTimeout(ctx, time.Duration(attempts)*(opts.ConnectTimeout+2*time.Second))
	defer cancel()

	pool, err := db.NewPool(connectCtx, opts.DatabaseURL, opts.ConnectAttempts, log)
	if err != nil {
		return nil, err
	}
	b, err := NewPostgresBackend(connectCtx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return b, nil
}
