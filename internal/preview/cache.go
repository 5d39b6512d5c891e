package preview

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/packsafe/previewcore/internal/model"
	"github.com/redis/go-redis/v9"
)

type cacheEntry struct {
	result    model.PreviewResult
	expiresAt time.Time
}

// resultCache is the whole-PreviewResult two-tier cache [ADDED] by §4.8:
// the original only caches the LLM draft, this caches the composed
// result too, so repeat identical requests skip C6/C7 CPU work entirely.
type resultCache struct {
	mu  sync.Mutex
	l1  map[string]cacheEntry
	ttl time.Duration
	rdb *redis.Client
}

func newResultCache(ttl time.Duration, rdb *redis.Client) *resultCache {
	if rdb == nil {
		slog.Info("preview: Redis result cache disabled, using process-local cache only")
	}
	return &resultCache{l1: make(map[string]cacheEntry), ttl: ttl, rdb: rdb}
}

func (c *resultCache) get(ctx context.Context, key string) (model.PreviewResult, bool) {
	c.mu.Lock()
	if e, ok := c.l1[key]; ok && time.Now().Before(e.expiresAt) {
		c.mu.Unlock()
		return e.result, true
	}
	c.mu.Unlock()

	if c.rdb == nil {
		return model.PreviewResult{}, false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return model.PreviewResult{}, false
	}
	var result model.PreviewResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return model.PreviewResult{}, false
	}
	c.putLocal(key, result)
	return result, true
}

func (c *resultCache) put(ctx context.Context, key string, result model.PreviewResult) {
	c.putLocal(key, result)
	if c.rdb == nil {
		return
	}
	if raw, err := json.Marshal(result); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			slog.Warn("preview: redis set failed", "error", err)
		}
	}
}

func (c *resultCache) putLocal(key string, result model.PreviewResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.l1[key] = cacheEntry{result: result, expiresAt: time.Now().Add(c.ttl)}
}
