// Package graphcache caches project graph snapshots in Redis. The cache is
// best-effort: misses and Redis failures fall through to the store, and any
// node or edge mutation in a project invalidates its entry.
package graphcache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"verdict/internal/decision/models"
	id "verdict/pkg/domain"
)

const graphKeyPrefix = "verdict:graph:"

// DefaultTTL bounds staleness when an invalidation is lost.
const DefaultTTL = 5 * time.Minute

// RedisCache is a Redis-backed graph snapshot cache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache constructs the cache. A zero ttl falls back to DefaultTTL.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func graphKey(projectID id.ProjectID) string {
	return graphKeyPrefix + projectID.String()
}

// Get returns the cached snapshot, or false on a miss. Redis failures read
// as misses.
func (c *RedisCache) Get(ctx context.Context, projectID id.ProjectID) (*models.Graph, bool) {
	raw, err := c.client.Get(ctx, graphKey(projectID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.WarnContext(ctx, "graph cache read failed", "project_id", projectID.String(), "error", err)
		return nil, false
	}
	var g models.Graph
	if err := json.Unmarshal(raw, &g); err != nil {
		c.logger.WarnContext(ctx, "graph cache entry corrupt, dropping", "project_id", projectID.String(), "error", err)
		c.client.Del(ctx, graphKey(projectID))
		return nil, false
	}
	return &g, true
}

// Set stores the snapshot with the configured TTL. Failures are logged and
// swallowed.
func (c *RedisCache) Set(ctx context.Context, projectID id.ProjectID, g *models.Graph) {
	raw, err := json.Marshal(g)
	if err != nil {
		c.logger.WarnContext(ctx, "graph cache encode failed", "project_id", projectID.String(), "error", err)
		return
	}
	if err := c.client.Set(ctx, graphKey(projectID), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "graph cache write failed", "project_id", projectID.String(), "error", err)
	}
}

// Invalidate drops the project's cached snapshot.
func (c *RedisCache) Invalidate(ctx context.Context, projectID id.ProjectID) {
	if err := c.client.Del(ctx, graphKey(projectID)).Err(); err != nil {
		c.logger.WarnContext(ctx, "graph cache invalidation failed", "project_id", projectID.String(), "error", err)
	}
}
