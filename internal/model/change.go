package model

import (
	"time"

	"github.com/LuaAI777/cts-project/internal/apperr"
)

// ChangeStatus is the lifecycle state of a proposed config change.
type ChangeStatus string

const (
	ChangeStatusPending  ChangeStatus = "pending"
	ChangeStatusApproved ChangeStatus = "approved"
	ChangeStatusRejected ChangeStatus = "rejected"
)

// ConfigChange is a proposed whole-document replacement of the live Config.
// It leaves pending exactly once and is immutable afterwards.
type ConfigChange struct {
	ID             string       `json:"id" yaml:"id"`
	ProposedConfig Config       `json:"proposedConfig" yaml:"proposedConfig"`
	Proposer       string       `json:"proposer" yaml:"proposer"`
	Status         ChangeStatus `json:"status" yaml:"status"`
	ProposedAt     time.Time    `json:"proposedAt" yaml:"proposedAt"`
	DecidedAt      *time.Time   `json:"decidedAt,omitempty" yaml:"decidedAt,omitempty"`
	Decider        string       `json:"decider,omitempty" yaml:"decider,omitempty"`
}

// NewConfigChange creates a pending change. Only the shape of cfg is checked;
// business invariants are re-checked when the change is approved.
func NewConfigChange(id string, cfg *Config, proposer string, at time.Time) (*ConfigChange, error) {
	if cfg == nil {
		return nil, apperr.Validation("proposed config is required")
	}
	if err := cfg.ValidateShape(); err != nil {
		return nil, err
	}
	return &ConfigChange{
		ID:             id,
		ProposedConfig: *cfg.Clone(),
		Proposer:       proposer,
		Status:         ChangeStatusPending,
		ProposedAt:     at.UTC(),
	}, nil
}

func (c *ConfigChange) IsPending() bool {
	return c.Status == ChangeStatusPending
}

// Decided returns a copy of c transitioned to approved or rejected.
// A change that already left pending cannot be decided again.
func (c *ConfigChange) Decided(approve bool, decider string, at time.Time) (*ConfigChange, error) {
	if !c.IsPending() {
		return nil, apperr.NotFound("change %s is already %s", c.ID, c.Status)
	}
	out := *c
	out.ProposedConfig = *c.ProposedConfig.Clone()
	decidedAt := at.UTC()
	out.DecidedAt = &decidedAt
	out.Decider = decider
	if approve {
		out.Status = ChangeStatusApproved
	} else {
		out.Status = ChangeStatusRejected
	}
	return &out, nil
}
