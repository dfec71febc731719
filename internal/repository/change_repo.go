package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/LuaAI777/cts-project/internal/apperr"
	"github.com/LuaAI777/cts-project/internal/model"
	"github.com/LuaAI777/cts-project/internal/store"
)

// ChangeRepo persists proposed config changes. Each change lives under its
// own key; an append-only id list keeps proposal order.
type ChangeRepo struct {
	backend store.Backend
}

func NewChangeRepo(backend store.Backend) *ChangeRepo {
	return &ChangeRepo{backend: backend}
}

// Create registers the change id, then stores the change. The document
// write commits the change; an id whose document was never written is
// skipped by List and unknown to FindByID.
func (r *ChangeRepo) Create(ctx context.Context, c *model.ConfigChange) error {
	if _, err := r.backend.AppendToList(ctx, store.KeyChangeIndex, []byte(c.ID)); err != nil {
		return err
	}
	return r.put(ctx, c)
}

// Update overwrites an existing change record.
func (r *ChangeRepo) Update(ctx context.Context, c *model.ConfigChange) error {
	return r.put(ctx, c)
}

// FindByID returns the change with the given id.
func (r *ChangeRepo) FindByID(ctx context.Context, id string) (*model.ConfigChange, error) {
	data, err := r.backend.Get(ctx, store.ChangeKey(id))
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil, apperr.NotFound("change %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	var c model.ConfigChange
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, apperr.Validation("change %s is unreadable: %v", id, err)
	}
	return &c, nil
}

// List returns every change in proposal order.
func (r *ChangeRepo) List(ctx context.Context) ([]*model.ConfigChange, error) {
	ids, err := r.backend.RangeOfList(ctx, store.KeyChangeIndex, 0, -1)
	if err != nil {
		return nil, err
	}
	out := make([]*model.ConfigChange, 0, len(ids))
	for _, id := range ids {
		c, err := r.FindByID(ctx, string(id))
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ListPending returns only changes still awaiting a decision.
func (r *ChangeRepo) ListPending(ctx context.Context) ([]*model.ConfigChange, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]*model.ConfigChange, 0, len(all))
	for _, c := range all {
		if c.IsPending() {
			pending = append(pending, c)
		}
	}
	return pending, nil
}

func (r *ChangeRepo) put(ctx context.Context, c *model.ConfigChange) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode change %s: %w", c.ID, err)
	}
	return r.backend.Set(ctx, store.ChangeKey(c.ID), data)
}
