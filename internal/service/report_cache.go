package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ReportCache stores composed attendance reports in Redis. Keys embed a
// per-school generation that is bumped on every write feeding a report
// (attendance, holidays, student records, promotions), so stale reports are
// never served and simply expire.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewReportCache returns a cache backed by client. A nil client disables caching.
func NewReportCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *ReportCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ReportCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "report_cache").Logger(),
	}
}

func generationKey(schoolID uint) string {
	return fmt.Sprintf("report:%d:generation", schoolID)
}

func (c *ReportCache) enabled() bool {
	return c != nil && c.client != nil
}

// Key resolves name under the school's current generation. Readers resolve
// the key once before loading and store under that same key, so a write that
// lands mid-load leaves the result under a generation nobody reads.
func (c *ReportCache) Key(ctx context.Context, schoolID uint, name string) (string, bool) {
	if !c.enabled() {
		return "", false
	}

	generation, err := c.client.Get(ctx, generationKey(schoolID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn().Err(err).Msg("failed to read report generation")
		return "", false
	}
	return fmt.Sprintf("report:%d:g%d:%s", schoolID, generation, name), true
}

// Load decodes the value cached under key into dest and reports whether it
// was found.
func (c *ReportCache) Load(ctx context.Context, key string, dest interface{}) bool {
	if !c.enabled() || key == "" {
		return false
	}

	cached, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Msg("failed to read report cache")
		}
		return false
	}

	if err := json.Unmarshal(cached, dest); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable report cache entry")
		return false
	}
	return true
}

// Store writes value under a key obtained from Key.
func (c *ReportCache) Store(ctx context.Context, key string, value interface{}) {
	if !c.enabled() || key == "" {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to encode report")
		return
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store report cache")
	}
}

// Invalidate moves the school to a new generation.
func (c *ReportCache) Invalidate(ctx context.Context, schoolID uint) {
	if !c.enabled() {
		return
	}
	if err := c.client.Incr(ctx, generationKey(schoolID)).Err(); err != nil {
		c.logger.Warn().Err(err).Uint("school_id", schoolID).Msg("failed to bump report generation")
	}
}
