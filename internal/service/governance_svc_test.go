package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuaAI777/cts-project/internal/apperr"
	"github.com/LuaAI777/cts-project/internal/model"
	"github.com/LuaAI777/cts-project/internal/repository"
	"github.com/LuaAI777/cts-project/internal/store"
)

func newGovernance(t *testing.T) (*GovernanceService, *repository.ConfigRepo) {
	t.Helper()
	return newGovernanceOn(t, store.NewMemoryBackend())
}

func newGovernanceOn(t *testing.T, inner store.Backend) (*GovernanceService, *repository.ConfigRepo) {
	t.Helper()
	b := store.WithTimeout(inner, time.Second)
	configs := repository.NewConfigRepo(b, 0, zerolog.Nop())
	require.NoError(t, configs.Bootstrap(context.Background(), model.DefaultConfig()))

	svc := NewGovernanceService(configs, repository.NewChangeRepo(b), zerolog.Nop())
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("change-%d", n)
	}
	return svc, configs
}

func weighted(source, content float64) *model.Config {
	c := model.DefaultConfig()
	c.Weights = model.Weights{Source: source, Content: content}
	return c
}

func TestPropose_StoresPending(t *testing.T) {
	ctx := context.Background()
	svc, _ := newGovernance(t)

	change, err := svc.Propose(ctx, weighted(0.5, 0.5), "alice")
	require.NoError(t, err)
	assert.Equal(t, "change-1", change.ID)
	assert.Equal(t, model.ChangeStatusPending, change.Status)

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, change.ID, pending[0].ID)
}

func TestPropose_ChecksShapeOnly(t *testing.T) {
	ctx := context.Background()
	svc, _ := newGovernance(t)

	_, err := svc.Propose(ctx, weighted(0.5, 0.6), "alice")
	assert.NoError(t, err, "business invariants are checked at approval")

	bad := model.DefaultConfig()
	bad.Keywords.Required = nil
	_, err = svc.Propose(ctx, bad, "alice")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Propose(ctx, model.DefaultConfig(), " ")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestDecide_ApproveAppliesConfig(t *testing.T) {
	ctx := context.Background()
	svc, _ := newGovernance(t)

	change, err := svc.Propose(ctx, weighted(0.5, 0.5), "alice")
	require.NoError(t, err)

	d, err := svc.Decide(ctx, change.ID, true, "bob")
	require.NoError(t, err)
	assert.Equal(t, model.ChangeStatusApproved, d.Change.Status)
	assert.Equal(t, "bob", d.Change.Decider)
	require.NotNil(t, d.Change.DecidedAt)
	require.NotNil(t, d.Entry)
	assert.Equal(t, model.ReasonApprovedChange, d.Entry.Reason)
	assert.Equal(t, change.ID, d.Entry.ChangeID)

	cur, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cur.Weights.Source)

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDecide_RejectLeavesConfig(t *testing.T) {
	ctx := context.Background()
	svc, _ := newGovernance(t)

	change, err := svc.Propose(ctx, weighted(0.5, 0.5), "alice")
	require.NoError(t, err)

	d, err := svc.Decide(ctx, change.ID, false, "bob")
	require.NoError(t, err)
	assert.Equal(t, model.ChangeStatusRejected, d.Change.Status)
	assert.Nil(t, d.Entry)

	cur, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), cur)

	h, err := svc.History(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestDecide_InvalidWeightsStayPending(t *testing.T) {
	ctx := context.Background()
	svc, _ := newGovernance(t)

	change, err := svc.Propose(ctx, weighted(0.5, 0.6), "alice")
	require.NoError(t, err)

	_, err = svc.Decide(ctx, change.ID, true, "bob")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	cur, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), cur, "live config unchanged")

	got, err := svc.GetChange(ctx, change.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ChangeStatusPending, got.Status)

	h, err := svc.History(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestDecide_UnknownOrAlreadyDecided(t *testing.T) {
	ctx := context.Background()
	svc, _ := newGovernance(t)

	_, err := svc.Decide(ctx, "missing", true, "bob")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	change, err := svc.Propose(ctx, weighted(0.5, 0.5), "alice")
	require.NoError(t, err)
	_, err = svc.Decide(ctx, change.ID, false, "bob")
	require.NoError(t, err)

	_, err = svc.Decide(ctx, change.ID, true, "bob")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDecide_ConcurrentApprovalsApplyOnce(t *testing.T) {
	ctx := context.Background()
	svc, _ := newGovernance(t)

	change, err := svc.Propose(ctx, weighted(0.5, 0.5), "alice")
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Decide(ctx, change.ID, true, "bob"); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	h, err := svc.History(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, h, 1)
}

func TestRollback_RestoresPreviousConfig(t *testing.T) {
	ctx := context.Background()
	svc, _ := newGovernance(t)

	a := model.DefaultConfig()
	b := weighted(0.5, 0.5)
	c := weighted(0.3, 0.7)
	_, err := svc.Update(ctx, b, "alice")
	require.NoError(t, err)
	_, err = svc.Update(ctx, c, "alice")
	require.NoError(t, err)

	entry, err := svc.Rollback(ctx, 0, "carol")
	require.NoError(t, err)
	assert.Equal(t, model.ReasonRollback, entry.Reason)
	assert.Equal(t, 2, entry.Index)
	require.NotNil(t, entry.RollbackOf)
	assert.Equal(t, 0, *entry.RollbackOf)
	assert.Equal(t, *c, entry.PreviousConfig)

	cur, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, a, cur)

	// Rolling back again is just another appended entry.
	_, err = svc.Rollback(ctx, 1, "carol")
	require.NoError(t, err)
	cur, err = svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, b, cur)

	h, err := svc.History(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, h, 4)
}

func TestRollback_OutOfRange(t *testing.T) {
	ctx := context.Background()
	svc, _ := newGovernance(t)

	_, err := svc.Rollback(ctx, 0, "carol")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Update(ctx, weighted(0.5, 0.5), "alice")
	require.NoError(t, err)
	_, err = svc.Rollback(ctx, 5, "carol")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	cur, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cur.Weights.Source, "failed rollback leaves live config alone")
}

func TestHistoryIsMonotonic(t *testing.T) {
	ctx := context.Background()
	svc, _ := newGovernance(t)

	length := func() int {
		h, err := svc.History(ctx, 0, 0)
		require.NoError(t, err)
		return len(h)
	}

	last := length()
	steps := []func() error{
		func() error { _, err := svc.Update(ctx, weighted(0.5, 0.5), "a"); return err },
		func() error { _, err := svc.Propose(ctx, weighted(0.4, 0.6), "a"); return err },
		func() error { _, err := svc.Decide(ctx, "change-1", true, "b"); return err },
		func() error { _, err := svc.Update(ctx, weighted(0.9, 0.9), "a"); return err },
		func() error { _, err := svc.Rollback(ctx, 0, "c"); return err },
		func() error { _, err := svc.Rollback(ctx, 99, "c"); return err },
	}
	for i, step := range steps {
		_ = step()
		n := length()
		assert.GreaterOrEqual(t, n, last, "step %d shrank history", i)
		last = n
	}
	assert.Equal(t, 3, last)
}

// brokenChangeWrites fails writes of change documents while broken is set.
type brokenChangeWrites struct {
	store.Backend
	broken atomic.Bool
}

func (b *brokenChangeWrites) Set(ctx context.Context, key string, value []byte) error {
	if b.broken.Load() && strings.HasPrefix(key, store.ChangeKey("")) {
		return errors.New("boom")
	}
	return b.Backend.Set(ctx, key, value)
}

func TestDecide_ApprovalCommitsWhenStatusWriteFails(t *testing.T) {
	ctx := context.Background()
	backend := &brokenChangeWrites{Backend: store.NewMemoryBackend()}
	svc, configs := newGovernanceOn(t, backend)

	change, err := svc.Propose(ctx, weighted(0.5, 0.5), "alice")
	require.NoError(t, err)

	backend.broken.Store(true)
	d, err := svc.Decide(ctx, change.ID, true, "bob")
	require.NoError(t, err)
	assert.Equal(t, model.ChangeStatusApproved, d.Change.Status)
	require.NotNil(t, d.Entry)

	live, err := configs.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.5, live.Weights.Source)

	got, err := svc.GetChange(ctx, change.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ChangeStatusApproved, got.Status)
	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Still failing: settling the status errors, nothing is re-applied.
	_, err = svc.Decide(ctx, change.ID, true, "bob")
	require.ErrorIs(t, err, apperr.ErrStoreUnavailable)

	backend.broken.Store(false)
	d, err = svc.Decide(ctx, change.ID, true, "carol")
	require.NoError(t, err)
	assert.Equal(t, 0, d.Entry.Index)
	assert.Equal(t, "bob", d.Change.Decider)

	_, err = svc.Decide(ctx, change.ID, true, "carol")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	h, err := svc.History(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, h, 1)
}

func TestDecide_RejectAfterCommittedApproval(t *testing.T) {
	ctx := context.Background()
	backend := &brokenChangeWrites{Backend: store.NewMemoryBackend()}
	svc, configs := newGovernanceOn(t, backend)

	change, err := svc.Propose(ctx, weighted(0.5, 0.5), "alice")
	require.NoError(t, err)

	backend.broken.Store(true)
	_, err = svc.Decide(ctx, change.ID, true, "bob")
	require.NoError(t, err)
	backend.broken.Store(false)

	_, err = svc.Decide(ctx, change.ID, false, "carol")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	got, err := svc.GetChange(ctx, change.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ChangeStatusApproved, got.Status)
	live, err := configs.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.5, live.Weights.Source)
}

func TestDecide_FailedRejectionStaysPending(t *testing.T) {
	ctx := context.Background()
	backend := &brokenChangeWrites{Backend: store.NewMemoryBackend()}
	svc, _ := newGovernanceOn(t, backend)

	change, err := svc.Propose(ctx, weighted(0.5, 0.5), "alice")
	require.NoError(t, err)

	backend.broken.Store(true)
	_, err = svc.Decide(ctx, change.ID, false, "bob")
	require.ErrorIs(t, err, apperr.ErrStoreUnavailable)
	backend.broken.Store(false)

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, change.ID, pending[0].ID)
}
