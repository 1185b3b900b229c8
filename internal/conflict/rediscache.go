package conflict

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache backs Analyzer's memoization with a shared Redis instance
// so multiple CLI invocations (or scheduler replicas) reuse the same
// conflict graph instead of recomputing it. A failed round trip is
// logged and treated as a cache miss rather than a fatal error: the
// cache is additive, never load-bearing (see SPEC_FULL.md §9).
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

type wireResult struct {
	Conflicts  map[string][]string `json:"conflicts"`
	Enrollment map[string]int      `json:"enrollment"`
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Result, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("conflict cache get failed, falling back to recompute", zap.Error(err))
		}
		return nil, false
	}
	var w wireResult
	if err := json.Unmarshal(raw, &w); err != nil {
		c.logger.Warn("conflict cache payload corrupt, falling back to recompute", zap.Error(err))
		return nil, false
	}
	return w.toResult(), true
}

func (c *RedisCache) Set(ctx context.Context, key string, result *Result) {
	if result == nil {
		if err := c.client.Del(ctx, key).Err(); err != nil {
			c.logger.Warn("conflict cache invalidate failed", zap.Error(err))
		}
		return
	}
	payload, err := json.Marshal(fromResult(result))
	if err != nil {
		c.logger.Warn("conflict cache marshal failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("conflict cache set failed", zap.Error(err))
	}
}

func fromResult(r *Result) wireResult {
	w := wireResult{
		Conflicts:  make(map[string][]string, len(r.Conflicts)),
		Enrollment: make(map[string]int, len(r.Enrollment)),
	}
	for id, neighbors := range r.Conflicts {
		strs := make([]string, len(neighbors))
		for i, n := range neighbors {
			strs[i] = n.String()
		}
		w.Conflicts[id.String()] = strs
	}
	for id, n := range r.Enrollment {
		w.Enrollment[id.String()] = n
	}
	return w
}

func (w wireResult) toResult() *Result {
	r := &Result{
		Conflicts:  make(map[uuid.UUID][]uuid.UUID, len(w.Conflicts)),
		Enrollment: make(map[uuid.UUID]int, len(w.Enrollment)),
	}
	for idStr, neighbors := range w.Conflicts {
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		ids := make([]uuid.UUID, 0, len(neighbors))
		for _, nStr := range neighbors {
			if n, err := uuid.Parse(nStr); err == nil {
				ids = append(ids, n)
			}
		}
		r.Conflicts[id] = ids
	}
	for idStr, n := range w.Enrollment {
		if id, err := uuid.Parse(idStr); err == nil {
			r.Enrollment[id] = n
		}
	}
	return r
}
