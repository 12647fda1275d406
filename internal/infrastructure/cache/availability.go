// Package cache provides the Redis-backed availability read cache.
// Availability answers are cheap to recompute, so every error here degrades
// to a cache miss rather than failing the request.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"turfbook/internal/config"
)

type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewAvailabilityCache connects to Redis and verifies the connection.
func NewAvailabilityCache(cfg config.CacheConfig, logger *slog.Logger) (*AvailabilityCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &AvailabilityCache{client: client, ttl: ttl, logger: logger}, nil
}

func dayKey(groundID uuid.UUID, date string) string {
	return fmt.Sprintf("avail:%s:%s", groundID, date)
}

// GetDay returns the cached booked-hour list for a ground/date, if present.
func (c *AvailabilityCache) GetDay(ctx context.Context, groundID uuid.UUID, date string) ([]int, bool) {
	raw, err := c.client.Get(ctx, dayKey(groundID, date)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("availability cache read failed", "error", err)
		}
		return nil, false
	}

	var hours []int
	if err := json.Unmarshal(raw, &hours); err != nil {
		c.logger.Warn("availability cache entry corrupt", "error", err)
		return nil, false
	}
	return hours, true
}

// SetDay stores the booked-hour list for a ground/date.
func (c *AvailabilityCache) SetDay(ctx context.Context, groundID uuid.UUID, date string, bookedHours []int) {
	raw, err := json.Marshal(bookedHours)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, dayKey(groundID, date), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("availability cache write failed", "error", err)
	}
}

// InvalidateDay drops the cached entries for all given grounds on a date.
// Called whenever a transition changes a slot's visibility.
func (c *AvailabilityCache) InvalidateDay(ctx context.Context, groundIDs []uuid.UUID, date string) {
	if len(groundIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(groundIDs))
	for _, id := range groundIDs {
		keys = append(keys, dayKey(id, date))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("availability cache invalidation failed", "error", err)
	}
}

func (c *AvailabilityCache) Close() error {
	return c.client.Close()
}

// NoopCache satisfies the availability-cache port when Redis is not
// configured.
type NoopCache struct{}

func (NoopCache) GetDay(ctx context.Context, groundID uuid.UUID, date string) ([]int, bool) {
	return nil, false
}

func (NoopCache) SetDay(ctx context.Context, groundID uuid.UUID, date string, bookedHours []int) {}

func (NoopCache) InvalidateDay(ctx context.Context, groundIDs []uuid.UUID, date string) {}
