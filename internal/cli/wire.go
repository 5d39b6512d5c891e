package cli

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/packsafe/previewcore/internal/bedrockclient"
	"github.com/packsafe/previewcore/internal/collaborators"
	"github.com/packsafe/previewcore/internal/config"
	"github.com/packsafe/previewcore/internal/llmclassify"
	"github.com/packsafe/previewcore/internal/narration"
	"github.com/packsafe/previewcore/internal/preview"
	"github.com/packsafe/previewcore/internal/regulation"
	"github.com/packsafe/previewcore/internal/taxonomy"
)

// stack holds every wired component a running previewd needs, split out
// of serve's command handler so the construction logic lives in one
// place.
type stack struct {
	cfg          *config.Config
	tax          *taxonomy.Taxonomy
	store        *regulation.Store
	orchestrator *preview.Orchestrator
}

// buildStack loads configuration and wires C1 through C9 into a single
// Orchestrator, the way the teacher's serve command wires policy, denylist,
// and profile into one server.Config before calling server.New.
func buildStack(ctx context.Context, configPath string) (*stack, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	tax, err := taxonomy.Load(cfg.Resolver.TaxonomyDir)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}

	store, err := regulation.NewStore(cfg.Resolver.RegulationDir, nil)
	if err != nil {
		return nil, fmt.Errorf("load regulations: %w", err)
	}

	airports := collaborators.NewStaticAirportDirectory()

	bedrock, err := bedrockclient.New(ctx, bedrockclient.Config{
		Region:  cfg.LLM.Region,
		ModelID: cfg.LLM.ModelID,
	})
	if err != nil {
		return nil, fmt.Errorf("init bedrock client: %w", err)
	}

	var rdb *redis.Client
	if cfg.Cache.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
	}

	classifyCache := llmclassify.NewCache(cfg.LLM.CacheTTL(), rdb)
	classifier := llmclassify.New(bedrock, tax, llmclassify.Config{
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.Timeout(),
		CacheTTL:  cfg.LLM.CacheTTL(),
	}, classifyCache)

	narrationClient := bedrockclient.Unconfigured()
	if cfg.Narration.Enabled {
		narrationClient, err = bedrockclient.New(ctx, bedrockclient.Config{
			Region:  cfg.LLM.Region,
			ModelID: cfg.Narration.ModelID,
		})
		if err != nil {
			return nil, fmt.Errorf("init narration bedrock client: %w", err)
		}
	}
	narrator := narration.New(narrationClient, tax, cfg.Narration.Timeout())

	orchestrator := preview.New(classifier, narrator, store, airports, tax, preview.Config{
		CacheTTL:            cfg.Cache.ResultTTL(),
		ConfidenceThreshold: cfg.LLM.ConfidenceThreshold,
		AlwaysReview:        cfg.Resolver.AlwaysReview,
	}, rdb)

	return &stack{cfg: cfg, tax: tax, store: store, orchestrator: orchestrator}, nil
}
