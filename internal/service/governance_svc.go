package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/LuaAI777/cts-project/internal/apperr"
	"github.com/LuaAI777/cts-project/internal/model"
	"github.com/LuaAI777/cts-project/internal/repository"
	"github.com/LuaAI777/cts-project/pkg/hash"
)

// Decision is the outcome of deciding a pending change. Entry is set only
// for approvals.
type Decision struct {
	Change *model.ConfigChange `json:"change"`
	Entry  *model.HistoryEntry `json:"entry,omitempty"`
}

// GovernanceService runs the propose, decide and rollback workflow. All
// governance operations are serialized; scoring reads are never blocked.
type GovernanceService struct {
	configs *repository.ConfigRepo
	changes *repository.ChangeRepo
	log     zerolog.Logger
	now     func() time.Time
	newID   func() string

	mu sync.Mutex
}

func NewGovernanceService(configs *repository.ConfigRepo, changes *repository.ChangeRepo, log zerolog.Logger) *GovernanceService {
	return &GovernanceService{
		configs: configs,
		changes: changes,
		log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Current returns a copy of the live config.
func (s *GovernanceService) Current(ctx context.Context) (*model.Config, error) {
	return s.configs.Get(ctx)
}

// Update replaces the live config directly, bypassing review.
func (s *GovernanceService) Update(ctx context.Context, cfg *model.Config, actor string) (*model.HistoryEntry, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.configs.Set(ctx, cfg, repository.Mutation{Actor: actor, Reason: model.ReasonDirectUpdate})
}

// Propose stores cfg as a pending change. Only its shape is checked here.
func (s *GovernanceService) Propose(ctx context.Context, cfg *model.Config, proposer string) (*model.ConfigChange, error) {
	if err := requireActor(proposer); err != nil {
		return nil, err
	}
	change, err := model.NewConfigChange(s.newID(), cfg, proposer, s.now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.changes.Create(ctx, change); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("change_id", change.ID).
		Str("proposer", hash.ForLog(proposer)).
		Msg("governance: change proposed")
	return change, nil
}

// ListPending returns changes still awaiting a decision. A change whose
// approval is already in history is not pending, whatever its stored status.
func (s *GovernanceService) ListPending(ctx context.Context) ([]*model.ConfigChange, error) {
	pending, err := s.changes.ListPending(ctx)
	if err != nil || len(pending) == 0 {
		return pending, err
	}
	applied, err := s.configs.AppliedChanges(ctx)
	if err != nil {
		return nil, err
	}
	out := pending[:0]
	for _, c := range pending {
		if _, ok := applied[c.ID]; !ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *GovernanceService) GetChange(ctx context.Context, id string) (*model.ConfigChange, error) {
	change, err := s.changes.FindByID(ctx, id)
	if err != nil || !change.IsPending() {
		return change, err
	}
	applied, err := s.configs.AppliedChanges(ctx)
	if err != nil {
		return nil, err
	}
	if entry, ok := applied[id]; ok {
		return approvedBy(change, entry)
	}
	return change, nil
}

// Decide approves or rejects a pending change. Approval re-validates the
// proposed config; if that fails the change stays pending and the live
// config is untouched. Rejection never touches the live config.
//
// The approved-change history entry is what commits an approval. The
// stored change status follows it: if recording the status fails the
// approval still stands, and deciding the change again only settles the
// status instead of applying the config a second time.
func (s *GovernanceService) Decide(ctx context.Context, id string, approve bool, decider string) (*Decision, error) {
	if err := requireActor(decider); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	change, err := s.changes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !change.IsPending() {
		return nil, apperr.NotFound("change %s is already %s", id, change.Status)
	}

	applied, err := s.configs.AppliedChanges(ctx)
	if err != nil {
		return nil, err
	}
	if entry, ok := applied[id]; ok {
		settled, err := approvedBy(change, entry)
		if err != nil {
			return nil, err
		}
		if err := s.changes.Update(ctx, settled); err != nil {
			return nil, err
		}
		s.log.Info().
			Str("change_id", id).
			Int("history_index", entry.Index).
			Msg("governance: settled status of applied change")
		if !approve {
			return nil, apperr.NotFound("change %s is already %s", id, settled.Status)
		}
		return &Decision{Change: settled, Entry: entry}, nil
	}

	var entry *model.HistoryEntry
	if approve {
		if err := change.ProposedConfig.Validate(); err != nil {
			return nil, err
		}
		entry, err = s.configs.Set(ctx, &change.ProposedConfig, repository.Mutation{
			Actor:    decider,
			Reason:   model.ReasonApprovedChange,
			ChangeID: change.ID,
		})
		if err != nil {
			return nil, err
		}
	}

	decided, err := change.Decided(approve, decider, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.changes.Update(ctx, decided); err != nil {
		if entry == nil {
			return nil, err
		}
		s.log.Warn().Err(err).
			Str("change_id", id).
			Int("history_index", entry.Index).
			Msg("governance: change applied, status will be settled from history")
	}

	s.log.Info().
		Str("change_id", id).
		Str("status", string(decided.Status)).
		Str("decider", hash.ForLog(decider)).
		Msg("governance: change decided")
	return &Decision{Change: decided, Entry: entry}, nil
}

// approvedBy returns change as approved by the history entry that applied it.
func approvedBy(change *model.ConfigChange, entry *model.HistoryEntry) (*model.ConfigChange, error) {
	return change.Decided(true, entry.Actor, entry.Timestamp)
}

// Rollback makes the config that was live before history entry index the
// live config again, recorded as a new entry.
func (s *GovernanceService) Rollback(ctx context.Context, index int, actor string) (*model.HistoryEntry, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.configs.Entry(ctx, index)
	if err != nil {
		return nil, err
	}
	return s.configs.Set(ctx, &target.PreviousConfig, repository.Mutation{
		Actor:      actor,
		Reason:     model.ReasonRollback,
		RollbackOf: &index,
	})
}

func (s *GovernanceService) History(ctx context.Context, offset, limit int) ([]model.HistoryEntry, error) {
	return s.configs.History(ctx, offset, limit)
}

func requireActor(actor string) error {
	if strings.TrimSpace(actor) == "" {
		return apperr.InvalidInput("actor", "actor is required")
	}
	return nil
}
