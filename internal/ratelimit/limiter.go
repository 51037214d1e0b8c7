package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/campaignhub/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyMutationUser = "campaignhub:mutation:user:%s"

// MutationLimiter throttles write requests per user. A nil limiter allows everything.
type MutationLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

// NewMutationLimiter returns nil when rate limiting is disabled or Redis is not configured.
func NewMutationLimiter(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*MutationLimiter, error) {
	limitCfg := cfg.RateLimit
	addr := strings.TrimSpace(cfg.RedisAddr)
	if !limitCfg.Enabled || addr == "" {
		log.Info("mutation rate limiting disabled")
		return nil, nil
	}
	if limitCfg.Rate <= 0 || limitCfg.Burst <= 0 {
		return nil, errors.New("rate limit rate and burst must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	if lc != nil {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := client.Ping(ctx).Err(); err != nil {
					log.Warn("redis unreachable, rate limiter will fail open", zap.String("addr", addr), zap.Error(err))
				}
				return nil
			},
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
	}

	return newMutationLimiter(client, limitCfg.Rate, limitCfg.Burst), nil
}

func newMutationLimiter(client redis.Scripter, rate float64, burst int) *MutationLimiter {
	return &MutationLimiter{
		bucket: NewTokenBucket(client),
		rate:   rate,
		burst:  burst,
	}
}

func (l *MutationLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

// Allow consumes one token from userID's bucket.
func (l *MutationLimiter) Allow(ctx context.Context, userID string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("rate limit user id is required")
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyMutationUser, userID), l.rate, l.burst)
}
