package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/LuaAI777/cts-project/internal/apperr"
	"github.com/LuaAI777/cts-project/internal/model"
	"github.com/LuaAI777/cts-project/internal/repository"
)

// ErrNoProvider is returned by provider-backed operations when no content
// metadata provider is configured.
var ErrNoProvider = errors.New("content metadata provider not configured")

// MetadataProvider supplies signals from the content platform. Errors are
// expected to carry apperr kinds NOT_FOUND or RATE_LIMITED where they apply.
type MetadataProvider interface {
	FetchSignal(ctx context.Context, videoID string) (*model.VideoSignal, error)
	Search(ctx context.Context, query string, maxResults int64) ([]string, error)
}

// SearchItem is one evaluated search hit. Exactly one of Result and Error
// is set.
type SearchItem struct {
	VideoID string             `json:"videoId"`
	Result  *model.ScoreResult `json:"result,omitempty"`
	Error   *ItemError         `json:"error,omitempty"`
}

type ItemError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type EvaluationService struct {
	configs  *repository.ConfigRepo
	gate     ContentGate
	provider MetadataProvider
	cache    *CacheService
	log      zerolog.Logger

	searchConcurrency int
}

// NewEvaluationService wires the scorers to the config repository. provider
// may be nil, in which case only caller-supplied signals can be scored.
func NewEvaluationService(
	configs *repository.ConfigRepo,
	gate ContentGate,
	provider MetadataProvider,
	cache *CacheService,
	searchConcurrency int,
	log zerolog.Logger,
) *EvaluationService {
	if searchConcurrency < 1 {
		searchConcurrency = 1
	}
	return &EvaluationService{
		configs:           configs,
		gate:              gate,
		provider:          provider,
		cache:             cache,
		log:               log,
		searchConcurrency: searchConcurrency,
	}
}

// HasProvider reports whether provider-backed evaluation is available.
func (s *EvaluationService) HasProvider() bool {
	return s.provider != nil
}

// Evaluate scores sig against one snapshot of the live config.
func (s *EvaluationService) Evaluate(ctx context.Context, sig *model.VideoSignal) (*model.ScoreResult, error) {
	if sig == nil {
		return nil, apperr.InvalidInput("signal", "signal is required")
	}
	snap, err := s.configs.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.score(sig, snap)
}

// EvaluateVideo fetches the signal for videoID, from cache when possible,
// and scores it. Provider failures are returned as they are.
func (s *EvaluationService) EvaluateVideo(ctx context.Context, videoID string) (*model.ScoreResult, error) {
	sig, err := s.fetchSignal(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return s.Evaluate(ctx, sig)
}

// Search evaluates every hit of a provider search, at most
// searchConcurrency at a time. A failing hit is reported in its own item;
// only a failed search itself fails the call.
func (s *EvaluationService) Search(ctx context.Context, query string, maxResults int64) ([]SearchItem, error) {
	if s.provider == nil {
		return nil, ErrNoProvider
	}
	if query == "" {
		return nil, apperr.InvalidInput("q", "search query is required")
	}
	ids, err := s.provider.Search(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}

	items := make([]SearchItem, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.searchConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			items[i].VideoID = id
			res, err := s.EvaluateVideo(gctx, id)
			if err != nil {
				items[i].Error = itemError(err)
				return nil
			}
			items[i].Result = res
			return nil
		})
	}
	_ = g.Wait()
	return items, nil
}

func (s *EvaluationService) score(sig *model.VideoSignal, snap *repository.Snapshot) (*model.ScoreResult, error) {
	res, err := ScoreSignal(sig, snap.Config, s.gate)
	if err != nil {
		return nil, err
	}
	res.ConfigDigest = snap.Digest
	return res, nil
}

// ScoreSignal runs source scoring, content scoring and aggregation of sig
// under cfg. It is the whole scoring pipeline; the API and the offline CLI
// both go through it.
func ScoreSignal(sig *model.VideoSignal, cfg *model.Config, gate ContentGate) (*model.ScoreResult, error) {
	src, err := NewSourceTrustService().Score(sig, cfg)
	if err != nil {
		return nil, err
	}
	content := NewContentTrustService().Score(sig.Title, sig.Description, cfg.Keywords)

	res := NewGradeService(gate).Aggregate(src, content, cfg.Weights)
	res.VideoID = sig.VideoID
	return &res, nil
}

func (s *EvaluationService) fetchSignal(ctx context.Context, videoID string) (*model.VideoSignal, error) {
	if s.provider == nil {
		return nil, ErrNoProvider
	}
	if sig, err := s.cache.GetSignal(ctx, videoID); err != nil {
		s.log.Warn().Err(err).Str("video_id", videoID).Msg("signal cache read failed")
	} else if sig != nil {
		return sig, nil
	}

	sig, err := s.provider.FetchSignal(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetSignal(ctx, sig); err != nil {
		s.log.Warn().Err(err).Str("video_id", videoID).Msg("signal cache write failed")
	}
	return sig, nil
}

func itemError(err error) *ItemError {
	code := string(apperr.KindOf(err))
	if code == "" {
		code = "INTERNAL_ERROR"
	}
	return &ItemError{Code: code, Message: err.Error()}
}
