package service

import (
	"math"

	"github.com/LuaAI777/cts-project/internal/apperr"
	"github.com/LuaAI777/cts-project/internal/model"
)

const (
	subscriberWeight = 0.3
	activityWeight   = 0.2
	engagementWeight = 0.5

	// Engagement rate steps, in percent of views.
	engagementRateHigh   = 5.0
	engagementRateMedium = 2.0
	engagementRateLow    = 1.0

	// Engagement score when a video has no views yet.
	zeroViewEngagementScore = 20.0

	stepHigh   = 100.0
	stepMedium = 70.0
	stepLow    = 40.0
	stepFloor  = 20.0
)

type SourceTrustService struct{}

func NewSourceTrustService() *SourceTrustService {
	return &SourceTrustService{}
}

// Score computes the publisher/channel trust of sig against the thresholds
// in cfg. Every count is required; an absent or negative count fails with
// INVALID_INPUT naming the field.
//
//	total = subscriber*0.3 + activity*0.2 + engagement*0.5
func (s *SourceTrustService) Score(sig *model.VideoSignal, cfg *model.Config) (model.SourceScore, error) {
	if sig == nil {
		return model.SourceScore{}, apperr.InvalidInput("signal", "signal is required")
	}
	subs, err := requireCount("subscriberCount", sig.SubscriberCount)
	if err != nil {
		return model.SourceScore{}, err
	}
	age, err := requireCount("channelAgeDays", sig.ChannelAgeDays)
	if err != nil {
		return model.SourceScore{}, err
	}
	views, err := requireCount("viewCount", sig.ViewCount)
	if err != nil {
		return model.SourceScore{}, err
	}
	likes, err := requireCount("likeCount", sig.LikeCount)
	if err != nil {
		return model.SourceScore{}, err
	}
	comments, err := requireCount("commentCount", sig.CommentCount)
	if err != nil {
		return model.SourceScore{}, err
	}

	out := model.SourceScore{
		Subscriber: StepScore(subs, cfg.Thresholds.Subscribers),
		Activity:   StepScore(age, cfg.Thresholds.Activity),
	}
	out.EngagementRate, out.Engagement = s.EngagementScore(likes, comments, views)
	out.NoViews = views == 0
	out.Total = round2(clamp100(
		out.Subscriber*subscriberWeight +
			out.Activity*activityWeight +
			out.Engagement*engagementWeight))
	return out, nil
}

// StepScore maps v onto the four-step scale of a threshold table.
func StepScore(v int64, t model.Tiers) float64 {
	switch {
	case v >= t.High:
		return stepHigh
	case v >= t.Medium:
		return stepMedium
	case v >= t.Low:
		return stepLow
	default:
		return stepFloor
	}
}

// EngagementScore returns the engagement rate in percent and its step score.
// With no views the rate is 0 and the score is the zero-view baseline.
func (s *SourceTrustService) EngagementScore(likes, comments, views int64) (rate, score float64) {
	if views == 0 {
		return 0, zeroViewEngagementScore
	}
	rate = float64(likes+comments) * 100 / float64(views)
	switch {
	case rate >= engagementRateHigh:
		score = stepHigh
	case rate >= engagementRateMedium:
		score = stepMedium
	case rate >= engagementRateLow:
		score = stepLow
	default:
		score = stepFloor
	}
	return round2(rate), score
}

func requireCount(field string, v *int64) (int64, error) {
	if v == nil {
		return 0, apperr.InvalidInput(field, "%s is required", field)
	}
	if *v < 0 {
		return 0, apperr.InvalidInput(field, "%s must be non-negative, got %d", field, *v)
	}
	return *v, nil
}

func clamp100(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
