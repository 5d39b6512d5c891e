// Package conflict implements the conflict detector (C7): it compares the
// LLM draft's per-bag verdicts against the deterministic resolver's
// output and flags any disagreement, always letting the resolved status
// win.
package conflict

import (
	"github.com/packsafe/previewcore/internal/model"
)

const lowConfidenceThreshold = 0.5

// Result is the conflict detector's findings for one preview.
type Result struct {
	Conflict      bool
	ConflictSlots map[string]model.Conflict
	LowConfidence bool
}

// Detect compares draft against resolved using the same STATUS_ORDER
// lattice the resolver folds with. A resolved status strictly more
// restrictive than the draft is a conflict; the resolved value is never
// relaxed to match the draft. Low confidence or too few matched terms
// also forces review, independent of any status conflict.
func Detect(draft model.ClassificationDraft, resolved model.Decision, confidenceThreshold float64) Result {
	slots := make(map[string]model.Conflict)

	if model.MoreRestrictive(resolved.CarryOn.Status, draft.CarryOn.Status) {
		slots["carry_on"] = model.Conflict{Draft: string(draft.CarryOn.Status), Final: string(resolved.CarryOn.Status)}
	}
	if model.MoreRestrictive(resolved.Checked.Status, draft.Checked.Status) {
		slots["checked"] = model.Conflict{Draft: string(draft.Checked.Status), Final: string(resolved.Checked.Status)}
	}

	threshold := confidenceThreshold
	if threshold <= 0 {
		threshold = lowConfidenceThreshold
	}
	lowConfidence := draft.Signals.Confidence < threshold || len(draft.Signals.MatchedTerms) < 2

	return Result{
		Conflict:      len(slots) > 0,
		ConflictSlots: slots,
		LowConfidence: lowConfidence,
	}
}

// ContradictsTemplate reports whether the draft disagrees with the
// taxonomy's own default template in a way that suggests the model
// misread the item family — e.g. a carry-only family marked checked=allow
// when the template says checked should deny.
func ContradictsTemplate(draft model.ClassificationDraft, carryTemplate, checkedTemplate model.Status) bool {
	if carryTemplate == model.StatusDeny && draft.CarryOn.Status != model.StatusDeny {
		return true
	}
	if checkedTemplate == model.StatusDeny && draft.Checked.Status == model.StatusAllow {
		return true
	}
	return false
}
