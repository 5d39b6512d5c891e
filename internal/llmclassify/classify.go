// Package llmclassify implements the LLM classifier (C3): one bounded
// Bedrock call per uncached request, behind schema validation and a
// two-tier cache, grounded on the teacher's observe.Classify HTTP pattern
// adapted to bedrockruntime.InvokeModel.
package llmclassify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/packsafe/previewcore/internal/bedrockclient"
	"github.com/packsafe/previewcore/internal/guard"
	"github.com/packsafe/previewcore/internal/model"
	"github.com/packsafe/previewcore/internal/taxonomy"
	"golang.org/x/sync/singleflight"
)

// ErrLLMUnavailable covers timeout, transport error, and a non-JSON body,
// so callers don't need to distinguish one transport failure from another.
// A body that parses but fails schema validation is not an error: Classify
// returns the guard's fallback result with ValidationErr set.
var ErrLLMUnavailable = errors.New("llmclassify: classifier unavailable")

// Config tunes the bounded call the classifier makes per miss.
type Config struct {
	MaxTokens int
	Timeout   time.Duration
	CacheTTL  time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxTokens <= 0 {
		c.MaxTokens = 600
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 15 * time.Minute
	}
	return c
}

// Classifier is the C3 component: it owns the Bedrock client, the
// taxonomy it prompts from, and the two-tier cache/single-flight group
// that collapses concurrent identical requests into one external call.
type Classifier struct {
	client *bedrockclient.Client
	tax    *taxonomy.Taxonomy
	cfg    Config
	cache  *Cache
	flight singleflight.Group
}

// New builds a Classifier. cache may come from NewCache with a nil Redis
// client when no shared cache tier is configured.
func New(client *bedrockclient.Client, tax *taxonomy.Taxonomy, cfg Config, cache *Cache) *Classifier {
	return &Classifier{
		client: client,
		tax:    tax,
		cfg:    cfg.withDefaults(),
		cache:  cache,
	}
}

// Classify returns a validated ClassificationDraft for in, using the
// cache when possible and collapsing concurrent identical requests into
// one Bedrock call. The returned guard.SchemaResult carries the
// validation flag state the caller must fold into the response's flags.
func (c *Classifier) Classify(ctx context.Context, in Input) (guard.SchemaResult, error) {
	key := Fingerprint(in)

	if draft, ok := c.cache.get(ctx, key); ok {
		return guard.SchemaResult{Draft: draft}, nil
	}

	result, err, _ := c.flight.Do(key, func() (interface{}, error) {
		res, callErr := c.call(ctx, in)
		if callErr != nil {
			return guard.SchemaResult{}, callErr
		}
		if !res.ValidationErr {
			c.cache.put(ctx, key, res.Draft)
		}
		return res, nil
	})
	if err != nil {
		return guard.SchemaResult{}, err
	}
	return result.(guard.SchemaResult), nil
}

func (c *Classifier) call(ctx context.Context, in Input) (guard.SchemaResult, error) {
	if !c.client.Configured() {
		return guard.SchemaResult{}, ErrLLMUnavailable
	}

	systemPrompt := buildSystemPrompt(c.tax)
	userPrompt := buildUserPrompt(in)

	text, err := c.client.CompleteJSON(ctx, systemPrompt, userPrompt, c.cfg.MaxTokens, c.cfg.Timeout)
	if err != nil {
		return guard.SchemaResult{}, fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}

	var raw model.RawClassifierResponse
	if err := json.Unmarshal([]byte(cleanJSON(text)), &raw); err != nil {
		return guard.SchemaResult{}, fmt.Errorf("%w: malformed JSON body", ErrLLMUnavailable)
	}

	res := guard.ValidateSchema(raw, in.Label, c.tax)
	return res, nil
}
