package llmclassify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/packsafe/previewcore/internal/model"
	"github.com/redis/go-redis/v9"
)

// entry is one TTL-bounded cache slot.
type entry struct {
	draft     model.ClassificationDraft
	expiresAt time.Time
}

// Cache is the two-tier draft cache described in §4.3: an in-process TTL
// map for L1, an optional Redis client for L2. A nil Redis client degrades
// to process-local caching only, matching the original's graceful
// single-process fallback.
type Cache struct {
	mu   sync.Mutex
	l1   map[string]entry
	ttl  time.Duration
	rdb  *redis.Client
	rttl time.Duration
}

// NewCache builds a cache with the given in-process TTL. Pass a nil rdb to
// disable the Redis tier.
func NewCache(ttl time.Duration, rdb *redis.Client) *Cache {
	if rdb == nil {
		slog.Info("llmclassify: Redis tier disabled, using process-local cache only")
	}
	return &Cache{
		l1:   make(map[string]entry),
		ttl:  ttl,
		rdb:  rdb,
		rttl: ttl,
	}
}

func (c *Cache) get(ctx context.Context, key string) (model.ClassificationDraft, bool) {
	c.mu.Lock()
	if e, ok := c.l1[key]; ok && time.Now().Before(e.expiresAt) {
		c.mu.Unlock()
		return e.draft, true
	}
	c.mu.Unlock()

	if c.rdb == nil {
		return model.ClassificationDraft{}, false
	}
	raw, err := c.rdb.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		return model.ClassificationDraft{}, false
	}
	var draft model.ClassificationDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return model.ClassificationDraft{}, false
	}
	c.putLocal(key, draft)
	return draft, true
}

func (c *Cache) put(ctx context.Context, key string, draft model.ClassificationDraft) {
	c.putLocal(key, draft)
	if c.rdb == nil {
		return
	}
	if raw, err := json.Marshal(draft); err == nil {
		if err := c.rdb.Set(ctx, redisKey(key), raw, c.rttl).Err(); err != nil {
			slog.Warn("llmclassify: redis set failed", "error", err)
		}
	}
}

func (c *Cache) putLocal(key string, draft model.ClassificationDraft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.l1[key] = entry{draft: draft, expiresAt: time.Now().Add(c.ttl)}
}

func redisKey(key string) string {
	return "previewcore:classify:" + key
}
