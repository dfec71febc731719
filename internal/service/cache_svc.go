package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/LuaAI777/cts-project/internal/model"
)

// CacheService is a Redis cache-aside layer for provider signals. Scores are
// never cached since they depend on the live config. A nil client turns
// every operation into a no-op.
type CacheService struct {
	rdb   *redis.Client
	ttl   time.Duration
	owned bool
}

// NewCacheService connects to redisURL. If the URL is empty or the
// connection fails, caching is disabled rather than failing startup.
func NewCacheService(ctx context.Context, redisURL string, ttl time.Duration, log zerolog.Logger) *CacheService {
	if redisURL == "" {
		log.Info().Msg("redis: no URL configured, signal cache disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis: invalid URL, signal cache disabled")
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		log.Warn().Err(err).Msg("redis: connection failed, signal cache disabled")
		return &CacheService{}
	}

	log.Info().Dur("ttl", ttl).Msg("redis: connected, signal cache enabled")
	return &CacheService{rdb: rdb, ttl: ttl, owned: true}
}

// NewCacheServiceFromClient shares an existing client, e.g. the store's.
func NewCacheServiceFromClient(rdb *redis.Client, ttl time.Duration) *CacheService {
	return &CacheService{rdb: rdb, ttl: ttl}
}

// Enabled reports whether a Redis client is attached.
func (c *CacheService) Enabled() bool {
	return c != nil && c.rdb != nil
}

// GetSignal returns the cached signal for videoID, or nil on a miss or when
// caching is disabled.
func (c *CacheService) GetSignal(ctx context.Context, videoID string) (*model.VideoSignal, error) {
	if !c.Enabled() {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, signalKey(videoID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sig model.VideoSignal
	if err := json.Unmarshal(data, &sig); err != nil {
		return nil, err
	}
	return &sig, nil
}

// SetSignal stores sig for the configured TTL.
func (c *CacheService) SetSignal(ctx context.Context, sig *model.VideoSignal) error {
	if !c.Enabled() || sig.VideoID == "" {
		return nil
	}
	b, err := json.Marshal(sig)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, signalKey(sig.VideoID), b, c.ttl).Err()
}

// InvalidateSignal drops a cached signal.
func (c *CacheService) InvalidateSignal(ctx context.Context, videoID string) error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Del(ctx, signalKey(videoID)).Err()
}

// Close shuts down the Redis connection. A shared client is left to its owner.
func (c *CacheService) Close() error {
	if !c.Enabled() || !c.owned {
		return nil
	}
	return c.rdb.Close()
}

func signalKey(videoID string) string {
	return fmt.Sprintf("cts:signal:%s", videoID)
}
