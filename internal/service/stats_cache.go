package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/yourorg/rentease/internal/domain"
	"github.com/yourorg/rentease/internal/infrastructure/redis"
	"github.com/yourorg/rentease/internal/observability/metrics"
	"github.com/yourorg/rentease/internal/reliability/circuitbreaker"
	"github.com/yourorg/rentease/pkg/cache"
)

const statsCacheTTL = 30 * time.Second

// StatsCache caches payment statistics in Redis with an in-memory fallback.
// A circuit breaker keeps a flapping Redis from slowing every statistics
// request; while the breaker is open only the local cache is consulted.
type StatsCache struct {
	redis   *redis.Client
	breaker *circuitbreaker.CircuitBreaker
	local   *cache.Cache
	logger  *slog.Logger
}

// NewStatsCache creates a statistics cache. redisClient may be nil, in which
// case only the local cache is used.
func NewStatsCache(redisClient *redis.Client, logger *slog.Logger) *StatsCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsCache{
		redis:   redisClient,
		breaker: circuitbreaker.NewCircuitBreaker(3, 2, 15*time.Second),
		local:   cache.New(),
		logger:  logger,
	}
}

// Get returns cached statistics for a key, or false on miss
func (c *StatsCache) Get(ctx context.Context, key string) (*domain.PaymentStatistics, bool) {
	if c == nil {
		return nil, false
	}

	if c.redis != nil && c.breaker.AllowRequest() {
		raw, err := c.redis.Get(ctx, key)
		if err == nil {
			c.breaker.RecordSuccess()
			var stats domain.PaymentStatistics
			if err := json.Unmarshal([]byte(raw), &stats); err == nil {
				metrics.ObserveStatsCache("hit")
				return &stats, true
			}
		} else {
			c.breaker.RecordFailure()
		}
	}

	if v, ok := c.local.Get(key); ok {
		if stats, ok := v.(*domain.PaymentStatistics); ok {
			metrics.ObserveStatsCache("hit")
			return stats, true
		}
	}

	metrics.ObserveStatsCache("miss")
	return nil, false
}

// Set stores statistics under a key in both tiers
func (c *StatsCache) Set(ctx context.Context, key string, stats *domain.PaymentStatistics) {
	if c == nil || stats == nil {
		return
	}

	c.local.Set(key, stats, statsCacheTTL)

	if c.redis == nil || !c.breaker.AllowRequest() {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, string(raw), statsCacheTTL); err != nil {
		c.breaker.RecordFailure()
		c.logger.Debug("stats cache write failed", slog.String("error", err.Error()))
		return
	}
	c.breaker.RecordSuccess()
}

// Invalidate drops all cached statistics after a payment mutation
func (c *StatsCache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil {
		return
	}
	c.local.Invalidate("stats:")
	if c.redis == nil || !c.breaker.AllowRequest() {
		return
	}
	for _, key := range keys {
		if err := c.redis.Delete(ctx, key); err != nil {
			c.breaker.RecordFailure()
			return
		}
	}
	c.breaker.RecordSuccess()
}
