// api/store/snapshot_cache.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"veloshop/api/models"
)

// SnapshotCache memoizes analytics snapshots in Redis, keyed by
// (period, now truncated to the minute). Identical dashboard requests
// inside the same minute share one set of event-store reads; the contract
// of the engine is unchanged since a fresh snapshot within the minute
// would observe the same window anyway.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewSnapshotCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl, logger: logger}
}

func snapshotKey(period string, now time.Time) string {
	return fmt.Sprintf("analytics:snapshot:%s:%d", period, now.Truncate(time.Minute).Unix())
}

// Get returns the cached snapshot for the current minute, or (nil, false)
// on a miss. Cache errors are logged and treated as misses.
func (c *SnapshotCache) Get(ctx context.Context, period string) (*models.AnalyticsSnapshot, bool) {
	raw, err := c.client.Get(ctx, snapshotKey(period, time.Now())).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("snapshot cache read failed", zap.String("period", period), zap.Error(err))
		}
		return nil, false
	}

	var snapshot models.AnalyticsSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		c.logger.Warn("snapshot cache entry corrupt, ignoring", zap.String("period", period), zap.Error(err))
		return nil, false
	}
	return &snapshot, true
}

// Set stores a snapshot for the current minute. Best effort: failures are
// logged, never surfaced.
func (c *SnapshotCache) Set(ctx context.Context, period string, snapshot *models.AnalyticsSnapshot) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		c.logger.Warn("snapshot cache marshal failed", zap.String("period", period), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, snapshotKey(period, time.Now()), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("snapshot cache write failed", zap.String("period", period), zap.Error(err))
	}
}
