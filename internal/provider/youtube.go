// Package provider adapts the YouTube Data API to the scoring engine's
// metadata provider contract.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/LuaAI777/cts-project/internal/apperr"
	"github.com/LuaAI777/cts-project/internal/model"
)

var (
	videoParts   = []string{"snippet", "statistics"}
	channelParts = []string{"snippet", "statistics"}
)

// YouTube fetches video and channel metadata through the Data API v3.
type YouTube struct {
	svc     *youtube.Service
	timeout time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

// NewYouTube builds a client authenticated with apiKey. Extra options are
// appended, e.g. option.WithEndpoint in tests.
func NewYouTube(ctx context.Context, apiKey string, timeout time.Duration, log zerolog.Logger, opts ...option.ClientOption) (*YouTube, error) {
	if apiKey == "" {
		return nil, errors.New("youtube: API key is required")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube: create service: %w", err)
	}
	return &YouTube{svc: svc, timeout: timeout, log: log, now: time.Now}, nil
}

// FetchSignal loads the video and its channel. A hidden subscriber count
// leaves SubscriberCount nil so that scoring reports it as missing.
func (y *YouTube) FetchSignal(ctx context.Context, videoID string) (*model.VideoSignal, error) {
	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	vresp, err := y.svc.Videos.List(videoParts).Id(videoID).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err, "video "+videoID)
	}
	if len(vresp.Items) == 0 {
		return nil, apperr.NotFound("video %s not found", videoID)
	}
	video := vresp.Items[0]
	if video.Snippet == nil {
		return nil, apperr.NotFound("video %s has no snippet", videoID)
	}

	cresp, err := y.svc.Channels.List(channelParts).Id(video.Snippet.ChannelId).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err, "channel "+video.Snippet.ChannelId)
	}
	if len(cresp.Items) == 0 {
		return nil, apperr.NotFound("channel %s not found", video.Snippet.ChannelId)
	}

	sig := toSignal(video, cresp.Items[0], y.now())
	y.log.Debug().
		Str("video_id", videoID).
		Str("channel_id", sig.ChannelID).
		Msg("youtube: signal fetched")
	return sig, nil
}

// Search returns the ids of up to maxResults videos matching query.
func (y *YouTube) Search(ctx context.Context, query string, maxResults int64) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	resp, err := y.svc.Search.List([]string{"id"}).
		Q(query).
		Type("video").
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapError(err, "search")
	}
	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	return ids, nil
}

func toSignal(v *youtube.Video, ch *youtube.Channel, now time.Time) *model.VideoSignal {
	sig := &model.VideoSignal{
		VideoID:     v.Id,
		ChannelID:   ch.Id,
		Title:       v.Snippet.Title,
		Description: v.Snippet.Description,
	}
	if ch.Snippet != nil {
		sig.ChannelTitle = ch.Snippet.Title
		if published, err := time.Parse(time.RFC3339, ch.Snippet.PublishedAt); err == nil {
			sig.ChannelAgeDays = model.Count(ageDays(published, now))
		}
	}
	if st := ch.Statistics; st != nil && !st.HiddenSubscriberCount {
		sig.SubscriberCount = model.Count(int64(st.SubscriberCount))
	}
	if st := v.Statistics; st != nil {
		sig.ViewCount = model.Count(int64(st.ViewCount))
		sig.LikeCount = model.Count(int64(st.LikeCount))
		sig.CommentCount = model.Count(int64(st.CommentCount))
	}
	return sig
}

func ageDays(published, now time.Time) int64 {
	d := int64(now.Sub(published).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// mapError converts API failures into the error kinds callers act on.
func mapError(err error, what string) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("youtube %s: %w", what, err)
	}
	switch {
	case gerr.Code == http.StatusNotFound:
		return apperr.NotFound("youtube %s not found", what)
	case gerr.Code == http.StatusTooManyRequests:
		return apperr.RateLimited(err, "youtube %s", what)
	case gerr.Code == http.StatusForbidden && isQuotaReason(gerr):
		return apperr.RateLimited(err, "youtube %s: quota exhausted", what)
	}
	return fmt.Errorf("youtube %s: %w", what, err)
}

func isQuotaReason(gerr *googleapi.Error) bool {
	for _, item := range gerr.Errors {
		switch item.Reason {
		case "quotaExceeded", "rateLimitExceeded", "dailyLimitExceeded", "userRateLimitExceeded":
			return true
		}
	}
	return false
}
