package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/LuaAI777/cts-project/internal/apperr"
	"github.com/LuaAI777/cts-project/internal/model"
	"github.com/LuaAI777/cts-project/internal/store"
	"github.com/LuaAI777/cts-project/pkg/hash"
)

// Snapshot is an immutable view of the live config. Callers must not
// mutate Config; the same pointer is shared by every concurrent reader.
type Snapshot struct {
	Config   *model.Config
	Digest   string
	LoadedAt time.Time
}

// Mutation describes who replaces the live config and why.
type Mutation struct {
	Actor      string
	Reason     model.ChangeReason
	ChangeID   string
	RollbackOf *int
}

// ConfigRepo holds the current config and its append-only history on top
// of a store.Backend. Reads are served from a copy-on-write snapshot behind
// an atomic pointer; writes are serialized by mu and only swap the snapshot
// after the backend accepted them.
type ConfigRepo struct {
	backend store.Backend
	ttl     time.Duration
	log     zerolog.Logger
	now     func() time.Time

	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
	loads   singleflight.Group
}

func NewConfigRepo(backend store.Backend, ttl time.Duration, log zerolog.Logger) *ConfigRepo {
	return &ConfigRepo{
		backend: backend,
		ttl:     ttl,
		log:     log,
		now:     time.Now,
	}
}

// Bootstrap makes sure a current config exists. An empty store is seeded
// with def without a history entry. A current document that lags the
// history (a write interrupted after its entry was committed) is rewritten
// from the newest entry.
func (r *ConfigRepo) Bootstrap(ctx context.Context, def *model.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	live, err := r.readLive(ctx)
	switch {
	case errors.Is(err, store.ErrKeyNotFound):
		live, err = r.seed(ctx, def)
		if err != nil {
			return err
		}
	case err != nil:
		return err
	case live.stale:
		r.log.Warn().Int64("history_len", live.historyLen).Msg("config: current config behind history, repairing")
		if err := r.writeCurrent(ctx, live.cfg, live.historyLen); err != nil {
			return err
		}
	}

	_, err = r.swap(live.cfg)
	return err
}

// seed writes the first current document. History written by an earlier
// process without a current document still wins over def.
func (r *ConfigRepo) seed(ctx context.Context, def *model.Config) (*liveState, error) {
	entries, err := r.backend.RangeOfList(ctx, store.KeyHistory, 0, -1)
	if err != nil {
		return nil, err
	}
	live := &liveState{historyLen: int64(len(entries))}
	if n := len(entries); n > 0 {
		last, err := decodeEntry(entries[n-1], n-1)
		if err != nil {
			return nil, err
		}
		live.cfg = last.NewConfig.Clone()
	} else {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		live.cfg = def.Clone()
	}
	if err := r.writeCurrent(ctx, live.cfg, live.historyLen); err != nil {
		return nil, err
	}
	r.log.Info().Int64("history_len", live.historyLen).Msg("config: seeded store with initial config")
	return live, nil
}

// Snapshot returns the live config, reloading it from the backend once the
// cached copy is older than the configured TTL. Concurrent reloads collapse
// into one backend read.
func (r *ConfigRepo) Snapshot(ctx context.Context) (*Snapshot, error) {
	old := r.current.Load()
	if old != nil && r.now().Sub(old.LoadedAt) < r.ttl {
		return old, nil
	}

	v, err, _ := r.loads.Do(store.KeyCurrentConfig, func() (any, error) {
		live, err := r.readLive(ctx)
		if err != nil {
			return nil, r.missingCurrent(err)
		}
		s, err := r.snapshotOf(live.cfg)
		if err != nil {
			return nil, err
		}
		// A writer that swapped while we were reading is newer than us.
		if !r.current.CompareAndSwap(old, s) {
			return r.current.Load(), nil
		}
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Get returns a private copy of the live config.
func (r *ConfigRepo) Get(ctx context.Context) (*model.Config, error) {
	s, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.Config.Clone(), nil
}

// Set validates cfg, records the transition in history and makes cfg the
// live config. The history append is the commit point: if it fails nothing
// changed, and once it succeeds the change is live even if refreshing the
// current document fails, because readers follow newer history entries.
func (r *ConfigRepo) Set(ctx context.Context, cfg *model.Config, m Mutation) (*model.HistoryEntry, error) {
	if cfg == nil {
		return nil, apperr.Validation("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !m.Reason.Valid() {
		return nil, apperr.Validation("unknown change reason %q", m.Reason)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev, err := r.readLive(ctx)
	if err != nil {
		return nil, r.missingCurrent(err)
	}

	next := cfg.Clone()
	entry := &model.HistoryEntry{
		Timestamp:      r.now().UTC(),
		Actor:          m.Actor,
		Reason:         m.Reason,
		PreviousConfig: *prev.cfg,
		NewConfig:      *next,
		Changes:        model.DiffConfigs(prev.cfg, next),
		ChangeID:       m.ChangeID,
		RollbackOf:     m.RollbackOf,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encode history entry: %w", err)
	}

	n, err := r.backend.AppendToList(ctx, store.KeyHistory, data)
	if err != nil {
		return nil, err
	}
	entry.Index = int(n - 1)
	entry.Version = entry.Index + 1

	if err := r.writeCurrent(ctx, next, n); err != nil {
		r.log.Warn().Err(err).
			Int("index", entry.Index).
			Msg("config: entry committed but current document not refreshed, readers follow history")
	}
	if _, err := r.swap(next); err != nil {
		return nil, err
	}

	r.log.Info().
		Int("index", entry.Index).
		Str("reason", string(entry.Reason)).
		Str("actor", hash.ForLog(entry.Actor)).
		Int("changes", len(entry.Changes)).
		Msg("config: applied")
	return entry, nil
}

// AppliedChanges maps the id of every change applied through an approval
// to its history entry.
func (r *ConfigRepo) AppliedChanges(ctx context.Context) (map[string]*model.HistoryEntry, error) {
	raw, err := r.backend.RangeOfList(ctx, store.KeyHistory, 0, -1)
	if err != nil {
		return nil, err
	}
	applied := make(map[string]*model.HistoryEntry)
	for i, data := range raw {
		e, err := decodeEntry(data, i)
		if err != nil {
			return nil, err
		}
		if e.Reason == model.ReasonApprovedChange && e.ChangeID != "" {
			applied[e.ChangeID] = e
		}
	}
	return applied, nil
}

// History returns up to limit entries starting at offset, in insertion
// order. A non-positive limit reads to the end.
func (r *ConfigRepo) History(ctx context.Context, offset, limit int) ([]model.HistoryEntry, error) {
	if offset < 0 {
		return nil, apperr.Validation("offset must be non-negative, got %d", offset)
	}
	end := int64(-1)
	if limit > 0 {
		end = int64(offset + limit - 1)
	}

	raw, err := r.backend.RangeOfList(ctx, store.KeyHistory, int64(offset), end)
	if err != nil {
		return nil, err
	}
	out := make([]model.HistoryEntry, 0, len(raw))
	for i, data := range raw {
		e, err := decodeEntry(data, offset+i)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, nil
}

// Entry returns the history entry at index.
func (r *ConfigRepo) Entry(ctx context.Context, index int) (*model.HistoryEntry, error) {
	if index < 0 {
		return nil, apperr.NotFound("history index %d out of range", index)
	}
	raw, err := r.backend.RangeOfList(ctx, store.KeyHistory, int64(index), int64(index))
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, apperr.NotFound("history index %d out of range", index)
	}
	return decodeEntry(raw[0], index)
}

// currentDoc is the stored form of the live config. HistoryLen is the
// history length it reflects; any entry at or past it is newer.
type currentDoc struct {
	Config     model.Config `json:"config"`
	HistoryLen int64        `json:"historyLen"`
}

type liveState struct {
	cfg        *model.Config
	historyLen int64
	// stale is set when committed entries are newer than the stored document.
	stale bool
}

// readLive returns the live config: the stored current document, unless
// history holds newer committed entries, in which case the newest wins.
// ErrKeyNotFound is returned only when no current document exists.
func (r *ConfigRepo) readLive(ctx context.Context) (*liveState, error) {
	data, err := r.backend.Get(ctx, store.KeyCurrentConfig)
	if err != nil {
		return nil, err
	}
	var doc currentDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperr.Validation("stored config is unreadable: %v", err)
	}
	live := &liveState{cfg: &doc.Config, historyLen: doc.HistoryLen}

	tail, err := r.backend.RangeOfList(ctx, store.KeyHistory, doc.HistoryLen, -1)
	if err != nil {
		return nil, err
	}
	if n := len(tail); n > 0 {
		last, err := decodeEntry(tail[n-1], int(doc.HistoryLen)+n-1)
		if err != nil {
			return nil, err
		}
		live.cfg = last.NewConfig.Clone()
		live.historyLen += int64(n)
		live.stale = true
	}

	if err := live.cfg.Validate(); err != nil {
		return nil, err
	}
	return live, nil
}

// missingCurrent reports an unseeded store as unavailable; Bootstrap must
// have run first.
func (r *ConfigRepo) missingCurrent(err error) error {
	if errors.Is(err, store.ErrKeyNotFound) {
		return apperr.StoreUnavailable(err, "current config missing from %s store", r.backend.Name())
	}
	return err
}

func (r *ConfigRepo) writeCurrent(ctx context.Context, cfg *model.Config, historyLen int64) error {
	data, err := json.Marshal(currentDoc{Config: *cfg, HistoryLen: historyLen})
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return r.backend.Set(ctx, store.KeyCurrentConfig, data)
}

func (r *ConfigRepo) snapshotOf(cfg *model.Config) (*Snapshot, error) {
	digest, err := hash.Digest(cfg)
	if err != nil {
		return nil, fmt.Errorf("digest config: %w", err)
	}
	return &Snapshot{Config: cfg, Digest: digest, LoadedAt: r.now()}, nil
}

func (r *ConfigRepo) swap(cfg *model.Config) (*Snapshot, error) {
	s, err := r.snapshotOf(cfg)
	if err != nil {
		return nil, err
	}
	r.current.Store(s)
	return s, nil
}

func decodeEntry(data []byte, index int) (*model.HistoryEntry, error) {
	var e model.HistoryEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, apperr.Validation("history entry %d is unreadable: %v", index, err)
	}
	e.Index = index
	e.Version = index + 1
	return &e, nil
}
