package model

import "time"

// ChangeReason records why a history entry exists.
type ChangeReason string

const (
	ReasonDirectUpdate   ChangeReason = "direct-update"
	ReasonApprovedChange ChangeReason = "approved-change"
	ReasonRollback       ChangeReason = "rollback"
)

func (r ChangeReason) Valid() bool {
	switch r {
	case ReasonDirectUpdate, ReasonApprovedChange, ReasonRollback:
		return true
	}
	return false
}

// HistoryEntry is an immutable audit record of one config transition.
// Entries are append-only; Index is the entry's 0-based position and is
// the value rollback targets. Version is Index+1, as shown to operators.
type HistoryEntry struct {
	Index          int          `json:"index" yaml:"index"`
	Version        int          `json:"version" yaml:"version"`
	Timestamp      time.Time    `json:"timestamp" yaml:"timestamp"`
	Actor          string       `json:"actor" yaml:"actor"`
	Reason         ChangeReason `json:"reason" yaml:"reason"`
	PreviousConfig Config       `json:"previousConfig" yaml:"previousConfig"`
	NewConfig      Config       `json:"newConfig" yaml:"newConfig"`
	Changes        []string     `json:"changes" yaml:"changes"`
	// ChangeID links approved-change entries to their ConfigChange.
	ChangeID string `json:"changeId,omitempty" yaml:"changeId,omitempty"`
	// RollbackOf is the history index a rollback entry restored from.
	RollbackOf *int `json:"rollbackOf,omitempty" yaml:"rollbackOf,omitempty"`
}
