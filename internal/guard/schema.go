// Package guard implements the schema guard (C4) and parameter guard (C5):
// the two checkpoints between an untrusted LLM response and a trusted
// ClassificationDraft the resolver is allowed to consult.
package guard

import (
	"strings"

	"github.com/packsafe/previewcore/internal/model"
	"github.com/packsafe/previewcore/internal/taxonomy"
)

var validStatuses = map[string]bool{
	string(model.StatusAllow): true,
	string(model.StatusLimit): true,
	string(model.StatusDeny):  true,
}

// SchemaResult is the schema guard's outcome: a usable draft plus the
// validation flag state to fold into the response.
type SchemaResult struct {
	Draft          model.ClassificationDraft
	ValidationErr  bool
	OffendingField string
}

// ValidateSchema checks raw bit-exactly against §6 of the interface
// contract. On failure it records the offending field and falls back to
// the taxonomy's default verdict templates when canonical itself parsed;
// otherwise both bags get a generic manual-review limit, mirroring the
// original's defensive sanitization chain in `_parse_response`.
func ValidateSchema(raw model.RawClassifierResponse, label string, tax *taxonomy.Taxonomy) SchemaResult {
	if !tax.IsKnown(raw.Canonical) {
		return genericReviewResult("canonical")
	}

	params, ok := sanitizeParams(raw.Params)
	if !ok {
		return fallbackToDefaults(raw.Canonical, tax, "params")
	}

	if !validStatuses[raw.CarryOn.Status] {
		return fallbackToDefaults(raw.Canonical, tax, "carry_on.status")
	}
	if !validStatuses[raw.Checked.Status] {
		return fallbackToDefaults(raw.Canonical, tax, "checked.status")
	}

	if raw.Signals.Confidence < 0 || raw.Signals.Confidence > 1 {
		return fallbackToDefaults(raw.Canonical, tax, "signals.confidence")
	}

	terms, ok := sanitizeMatchedTerms(raw.Signals.MatchedTerms, label)
	if !ok {
		return fallbackToDefaults(raw.Canonical, tax, "signals.matched_terms")
	}

	draft := model.ClassificationDraft{
		Canonical: model.Canonical(raw.Canonical),
		Params:    params,
		CarryOn:   model.Slot{Status: model.Status(raw.CarryOn.Status), Badges: raw.CarryOn.Badges},
		Checked:   model.Slot{Status: model.Status(raw.Checked.Status), Badges: raw.Checked.Badges},
		Signals: model.Signals{
			MatchedTerms: terms,
			Confidence:   raw.Signals.Confidence,
			Notes:        raw.Signals.Notes,
		},
		ModelInfo: raw.ModelInfo,
	}

	return SchemaResult{Draft: draft}
}

// fallbackToDefaults keeps the recovered canonical but replaces the two
// bag verdicts with the taxonomy's conservative defaults, per §7's
// "resolved verdicts fall back to taxonomy defaults if canonical field
// itself was recoverable" rule.
func fallbackToDefaults(canonical string, tax *taxonomy.Taxonomy, offendingField string) SchemaResult {
	def, ok := tax.DefaultVerdicts(canonical)
	if !ok {
		return genericReviewResult(offendingField)
	}
	return SchemaResult{
		Draft: model.ClassificationDraft{
			Canonical: model.Canonical(canonical),
			CarryOn:   model.Slot{Status: model.Status(def.CarryOn.Status), Badges: def.CarryOn.Badges},
			Checked:   model.Slot{Status: model.Status(def.Checked.Status), Badges: def.Checked.Badges},
			Signals:   model.Signals{Confidence: 0},
		},
		ValidationErr:  true,
		OffendingField: offendingField,
	}
}

func genericReviewResult(offendingField string) SchemaResult {
	return SchemaResult{
		Draft: model.ClassificationDraft{
			Canonical: model.BenignGeneral,
			CarryOn:   model.Slot{Status: model.StatusLimit, Badges: []string{"manual review required"}},
			Checked:   model.Slot{Status: model.StatusLimit, Badges: []string{"manual review required"}},
			Signals:   model.Signals{Confidence: 0},
		},
		ValidationErr:  true,
		OffendingField: offendingField,
	}
}

func sanitizeParams(raw model.RawParams) (model.ItemParams, bool) {
	out := model.ItemParams{}

	f, ok := checkNonNegative(raw.VolumeML)
	if !ok {
		return out, false
	}
	out.VolumeML = f

	if f, ok = checkNonNegative(raw.Wh); !ok {
		return out, false
	}
	out.Wh = f

	if f, ok = checkNonNegative(raw.WeightKg); !ok {
		return out, false
	}
	out.WeightKg = f

	if f, ok = checkNonNegative(raw.ABVPercent); !ok {
		return out, false
	}
	out.ABVPercent = f

	if f, ok = checkNonNegative(raw.BladeLengthCm); !ok {
		return out, false
	}
	out.BladeLengthCm = f

	if raw.Count != nil {
		if *raw.Count < 0 {
			return out, false
		}
		count := int(*raw.Count)
		out.Count = &count
	}

	return out, true
}

func checkNonNegative(v *float64) (*float64, bool) {
	if v == nil {
		return nil, true
	}
	if isNaNOrInf(*v) || *v < 0 {
		return nil, false
	}
	value := *v
	return &value, true
}

func isNaNOrInf(f float64) bool {
	return f != f || f > maxFinite || f < -maxFinite
}

const maxFinite = 1.7976931348623157e+308

// sanitizeMatchedTerms enforces the 2-4 count and verbatim-substring rule.
func sanitizeMatchedTerms(terms []string, label string) ([]string, bool) {
	if len(terms) < 2 || len(terms) > 4 {
		return nil, false
	}
	lowerLabel := strings.ToLower(label)
	for _, t := range terms {
		if t == "" || !strings.Contains(lowerLabel, strings.ToLower(t)) {
			return nil, false
		}
	}
	return terms, true
}
