package guard

import (
	"github.com/packsafe/previewcore/internal/model"
	"github.com/packsafe/previewcore/internal/taxonomy"
)

// CheckRequiredParams applies the taxonomy's required-parameter rule for
// canonical and returns the names of any required slots that are absent.
// A non-empty result forces needs_review but never halts the pipeline —
// the resolver still runs on whatever parameters are present (§4.5).
func CheckRequiredParams(canonical model.Canonical, params model.ItemParams, tax *taxonomy.Taxonomy) []string {
	if !tax.IsRisk(string(canonical)) {
		return nil
	}
	req := tax.RequiredParams(string(canonical))

	present := map[string]bool{
		"volume_ml":       params.VolumeML != nil,
		"wh":              params.Wh != nil,
		"count":           params.Count != nil,
		"weight_kg":       params.WeightKg != nil,
		"abv_percent":     params.ABVPercent != nil,
		"blade_length_cm": params.BladeLengthCm != nil,
	}

	return req.Missing(present)
}
