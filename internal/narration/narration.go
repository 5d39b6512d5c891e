package narration

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/packsafe/previewcore/internal/bedrockclient"
	"github.com/packsafe/previewcore/internal/model"
	"github.com/packsafe/previewcore/internal/taxonomy"
)

const systemPrompt = `You are a narration writer for an air travel baggage preview system. You are given an already-resolved, authoritative carry-on and checked-bag decision. Rewrite it as a short user-facing summary.

Strict rules:
- Never introduce a new numeric value that is not already present in the input.
- Never change or contradict the given status for either bag.
- Produce exactly: title, carry_on_card{status_label,short_reason}, checked_card{status_label,short_reason}, bullets (2-4 short strings), badges (strings), footnote, sources (up to 3 strings).
- Return ONLY valid JSON, no markdown fences, no commentary.`

// Adapter is the C9 component: a second, read-only-contract Bedrock call
// over the resolved decision, with a template-only fallback when Bedrock
// is unconfigured.
type Adapter struct {
	client  *bedrockclient.Client
	tax     *taxonomy.Taxonomy
	timeout time.Duration
}

// New builds an Adapter. timeout should be shorter than the classifier's,
// since narration failure never blocks the response.
func New(client *bedrockclient.Client, tax *taxonomy.Taxonomy, timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &Adapter{client: client, tax: tax, timeout: timeout}
}

// Narrate produces a Narration for the resolved decision. When Bedrock is
// unconfigured it returns the template narration. When the call fails
// (timeout, transport error, invalid JSON) or its output contradicts the
// decision, it returns an empty Narration rather than an error: the
// response stays authoritative regardless of narration outcome (§4.9).
func (a *Adapter) Narrate(ctx context.Context, label string, draft model.ClassificationDraft, engine model.EngineTrace) model.Narration {
	if !a.client.Configured() {
		return BuildTemplate(label, draft, engine, a.tax)
	}

	narration, err := a.callLLM(ctx, label, engine)
	if err != nil {
		slog.Warn("narration: call failed, returning empty narration", "error", err)
		return model.Narration{}
	}
	if contradicts(narration, engine.Decision) {
		slog.Warn("narration: LLM output contradicted resolved decision, discarding")
		return model.Narration{}
	}
	return narration
}

func (a *Adapter) callLLM(ctx context.Context, label string, engine model.EngineTrace) (model.Narration, error) {
	payload, _ := json.Marshal(map[string]any{
		"label":    label,
		"decision": engine.Decision,
		"canonical": engine.Canonical,
	})

	text, err := a.client.CompleteJSON(ctx, systemPrompt, string(payload), 400, a.timeout)
	if err != nil {
		return model.Narration{}, err
	}

	var narration model.Narration
	if err := json.Unmarshal([]byte(cleanJSON(text)), &narration); err != nil {
		return model.Narration{}, err
	}
	return narration, nil
}

// contradicts reports whether the narration's card labels name a status
// word that disagrees with the authoritative decision, the post-hoc
// check §4.9 requires before trusting the LLM's paraphrase.
func contradicts(n model.Narration, decision model.Decision) bool {
	return mentionsWrongStatus(n.CarryOnCard.StatusLabel+" "+n.CarryOnCard.ShortReason, decision.CarryOn.Status) ||
		mentionsWrongStatus(n.CheckedCard.StatusLabel+" "+n.CheckedCard.ShortReason, decision.Checked.Status)
}

// conflictWords are the status words that would, if present, contradict
// the given actual status. "allowed" is deliberately excluded as a
// contradiction signal for limit since phrases like "conditionally
// allowed" legitimately contain it. For deny, the negated phrases "not
// allowed" and "not permitted" agree with the status and are removed
// before matching.
var conflictWords = map[model.Status][]string{
	model.StatusAllow: {"denied", "prohibited", "not allowed", "not permitted"},
	model.StatusLimit: {"denied", "prohibited", "not allowed", "not permitted"},
	model.StatusDeny:  {"allowed", "permitted"},
}

func mentionsWrongStatus(text string, actual model.Status) bool {
	lower := strings.ToLower(text)
	if actual == model.StatusDeny {
		lower = strings.NewReplacer("not allowed", "", "not permitted", "").Replace(lower)
	}
	for _, word := range conflictWords[actual] {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
