package preview

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/packsafe/previewcore/internal/collaborators"
	"github.com/packsafe/previewcore/internal/conflict"
	"github.com/packsafe/previewcore/internal/guard"
	"github.com/packsafe/previewcore/internal/llmclassify"
	"github.com/packsafe/previewcore/internal/model"
	"github.com/packsafe/previewcore/internal/narration"
	"github.com/packsafe/previewcore/internal/regulation"
	"github.com/packsafe/previewcore/internal/resolver"
	"github.com/packsafe/previewcore/internal/taxonomy"
)

// Config tunes the orchestrator's own behavior, independent of the
// classifier's and narration adapter's internal configs.
type Config struct {
	CacheTTL            time.Duration
	ConfidenceThreshold float64
	// AlwaysReview lists canonical keys that always force needs_review
	// regardless of engine outcome, an operator override generalized from
	// the teacher's purpose-bound policy.Rule mechanism.
	AlwaysReview []string
}

func (c Config) withDefaults() Config {
	if c.CacheTTL <= 0 {
		c.CacheTTL = 10 * time.Minute
	}
	if c.ConfidenceThreshold <= 0 {
		c.ConfidenceThreshold = 0.6
	}
	return c
}

// Orchestrator is the C8 component: it owns every other component and
// drives one preview request end to end.
type Orchestrator struct {
	classifier *llmclassify.Classifier
	narrator   *narration.Adapter
	store      *regulation.Store
	airports   collaborators.AirportDirectory
	tax        *taxonomy.Taxonomy
	cfg          Config
	alwaysReview map[string]bool
	cache        *resultCache
	flight       singleflight.Group
}

// New builds an Orchestrator wiring every component it sequences.
func New(
	classifier *llmclassify.Classifier,
	narrator *narration.Adapter,
	store *regulation.Store,
	airports collaborators.AirportDirectory,
	tax *taxonomy.Taxonomy,
	cfg Config,
	redisClient *redis.Client,
) *Orchestrator {
	alwaysReview := make(map[string]bool, len(cfg.AlwaysReview))
	for _, c := range cfg.AlwaysReview {
		alwaysReview[c] = true
	}
	return &Orchestrator{
		classifier:   classifier,
		narrator:     narrator,
		store:        store,
		airports:     airports,
		tax:          tax,
		cfg:          cfg.withDefaults(),
		alwaysReview: alwaysReview,
		cache:        newResultCache(cfg.withDefaults().CacheTTL, redisClient),
	}
}

// Preview drives one request through C3→C4→C5→C6→C7→C9 and returns the
// composed, cached PreviewResult.
func (o *Orchestrator) Preview(ctx context.Context, req Request) (model.PreviewResult, error) {
	reqID := req.ReqID
	if reqID == "" {
		reqID = uuid.NewString()
	}

	key := fingerprint(req)
	if cached, ok := o.cache.get(ctx, key); ok {
		cached.ReqID = reqID
		return cached, nil
	}

	v, err, _ := o.flight.Do(key, func() (interface{}, error) {
		result := o.compute(ctx, req, reqID)
		o.cache.put(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return model.PreviewResult{}, err
	}
	result := v.(model.PreviewResult)
	result.ReqID = reqID
	return result, nil
}

func (o *Orchestrator) compute(ctx context.Context, req Request, reqID string) model.PreviewResult {
	var preFlags model.Flags

	// C3: classify.
	schemaResult, err := o.classifier.Classify(ctx, llmclassify.Input{
		Label:          req.Label,
		Locale:         req.Locale,
		Itinerary:      req.Itinerary,
		Segments:       req.Segments,
		ItemParamsHint: req.ItemParams,
	})
	if err != nil {
		preFlags.LLMError = true
		schemaResult = guard.SchemaResult{
			Draft: model.ClassificationDraft{
				Canonical: model.BenignGeneral,
				CarryOn:   model.Slot{Status: model.StatusLimit, Badges: []string{"manual review required"}},
				Checked:   model.Slot{Status: model.StatusLimit, Badges: []string{"manual review required"}},
			},
			ValidationErr:  true,
			OffendingField: "llm_call",
		}
	}
	if schemaResult.ValidationErr {
		preFlags.ValidationError = true
		preFlags.OffendingField = schemaResult.OffendingField
	}

	return ComposeFromDraft(ctx, o.tax, o.store, o.airports, o.narrator, reqID, req.Label, req.Itinerary, req.Segments,
		req.DutyFree, schemaResult.Draft, preFlags, o.cfg.ConfidenceThreshold, o.alwaysReview)
}

// ComposeFromDraft runs C5→C6→C7→C9 over an already-classified draft and
// composes the final PreviewResult. It is exported so the scenario runner
// can drive the deterministic half of the pipeline from a fixture draft
// without a live Bedrock call, and is the single place both the live
// orchestrator and offline `previewctl check` compose a result — keeping
// them from drifting apart.
func ComposeFromDraft(
	ctx context.Context,
	tax *taxonomy.Taxonomy,
	store *regulation.Store,
	airports collaborators.AirportDirectory,
	narrator *narration.Adapter,
	reqID, label string,
	itin model.Itinerary,
	segs []model.Segment,
	dutyFree *model.DutyFree,
	draft model.ClassificationDraft,
	preFlags model.Flags,
	confidenceThreshold float64,
	alwaysReview map[string]bool,
) model.PreviewResult {
	flags := preFlags

	// C5: required-parameter check against the draft's own reported params.
	missing := guard.CheckRequiredParams(draft.Canonical, draft.Params, tax)
	if len(missing) > 0 {
		flags.MissingParams = missing
	}

	// C6: resolve deterministic layers.
	engine := resolver.Resolve(draft.Canonical, draft.Params, itin, segs, store, airports, tax)

	// C7: reconcile draft against resolved.
	conflictResult := conflict.Detect(draft, engine.Decision, confidenceThreshold)
	if conflictResult.Conflict {
		flags.Conflict = true
		flags.ConflictSlots = conflictResult.ConflictSlots
	}
	if conflictResult.LowConfidence {
		flags.LowConfidence = true
	}
	if template, ok := tax.DefaultVerdicts(string(draft.Canonical)); ok {
		if conflict.ContradictsTemplate(draft, model.Status(template.CarryOn.Status), model.Status(template.Checked.Status)) {
			flags.Conflict = true
		}
	}

	// A via-point rule requiring an STEB-sealed duty-free bag (e.g. a
	// rescreening stop) only clears without review when the caller has
	// actually declared the item duty-free and sealed.
	if requiresSTEB, _ := engine.Conditions["requires_steb"].(bool); requiresSTEB {
		if dutyFree == nil || !dutyFree.IsDutyFree || !dutyFree.StebSealed {
			flags.Conflict = true
		}
	}

	if alwaysReview[string(draft.Canonical)] {
		flags.Override = true
	}

	// C9: narrate (non-authoritative, never blocks the response).
	card := narrator.Narrate(ctx, label, draft, engine)

	state := model.StateComplete
	if flags.ValidationError || len(flags.MissingParams) > 0 || flags.Conflict || flags.LowConfidence ||
		flags.Override ||
		engine.Decision.CarryOn.Status == model.StatusDeny || engine.Decision.Checked.Status == model.StatusDeny {
		state = model.StateNeedsReview
	}

	return model.PreviewResult{
		ReqID:     reqID,
		State:     state,
		Resolved:  engine.Decision,
		Engine:    engine,
		Narration: card,
		Flags:     flags,
	}
}
