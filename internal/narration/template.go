// Package narration implements the narration adapter (C9): a
// non-authoritative paraphrase of the resolved decision, either via a
// second bounded Bedrock call or, when Bedrock is unconfigured, a
// template-only fallback grounded on the original's narration.py.
package narration

import (
	"sort"
	"strconv"
	"strings"

	"github.com/packsafe/previewcore/internal/model"
	"github.com/packsafe/previewcore/internal/taxonomy"
)

var statusLabels = map[model.Status]string{
	model.StatusAllow: "Allowed",
	model.StatusLimit: "Conditionally allowed",
	model.StatusDeny:  "Not allowed",
}

// BuildTemplate composes a Narration entirely from already-resolved,
// already-trusted fields — no external call, no new facts, used whenever
// the Bedrock client is unconfigured (§4.9 [ADDED]).
func BuildTemplate(label string, draft model.ClassificationDraft, engine model.EngineTrace, tax *taxonomy.Taxonomy) model.Narration {
	carryConditions, _ := engine.Conditions["carry_on"].(map[string]interface{})
	checkedConditions, _ := engine.Conditions["checked"].(map[string]interface{})

	title := label
	if v, ok := draft.Params.Get("volume_ml"); ok {
		title = label + " · " + trimTrailingZero(v) + "ml"
	}

	return model.Narration{
		Title:       title,
		CarryOnCard: cardFor(engine.Decision.CarryOn, carryConditions, false),
		CheckedCard: cardFor(engine.Decision.Checked, checkedConditions, true),
		Bullets:     buildBullets(carryConditions, checkedConditions, engine.Decision.CarryOn.Badges),
		Badges:      uniqueSorted(engine.Decision.CarryOn.Badges),
		Footnote:    "Customs and quarantine rules may apply separately.",
		Sources:     summarizeSources(engine.Trace),
	}
}

func cardFor(slot model.Slot, conditions map[string]interface{}, checked bool) model.NarrationCard {
	label := statusLabels[slot.Status]
	if label == "" {
		label = string(slot.Status)
	}

	var reason string
	switch slot.Status {
	case model.StatusDeny:
		reason = "Not permitted under the applicable regulations."
	case model.StatusLimit:
		switch {
		case !checked && isLAGCondition(conditions):
			reason = "Containers up to 100ml only, in one 1L resealable bag."
		case checked && hasAerosolLimits(conditions):
			reason = "Container up to 500ml, 2L total, valve capped."
		case checked:
			reason = "Permitted in checked baggage within carrier and dangerous-goods limits."
		default:
			reason = "Permitted in carry-on if conditions are met."
		}
	default:
		reason = "Allowed with no additional restriction."
	}
	return model.NarrationCard{StatusLabel: label, ShortReason: reason}
}

func isLAGCondition(conditions map[string]interface{}) bool {
	if conditions == nil {
		return false
	}
	maxML, _ := conditions["max_container_ml"].(float64)
	zip1l, _ := conditions["zip_bag_1l"].(bool)
	return maxML == 100 && zip1l
}

func hasAerosolLimits(conditions map[string]interface{}) bool {
	if conditions == nil {
		return false
	}
	_, per := conditions["md_per_container_ml"]
	_, total := conditions["md_total_ml"]
	return per || total
}

func buildBullets(carryConditions, checkedConditions map[string]interface{}, carryBadges []string) []string {
	var bullets []string
	if isLAGCondition(carryConditions) {
		bullets = append(bullets, "Security: 100ml containers only, one 1L resealable bag required.")
	}
	if hasAerosolLimits(checkedConditions) {
		perML, _ := checkedConditions["md_per_container_ml"].(float64)
		totalML, _ := checkedConditions["md_total_ml"].(float64)
		var parts []string
		if perML > 0 {
			parts = append(parts, trimTrailingZero(perML)+"ml per container")
		}
		if totalML > 0 {
			parts = append(parts, trimTrailingZero(totalML)+"ml total")
		}
		if len(parts) > 0 {
			bullets = append(bullets, "Aerosols: "+strings.Join(parts, ", "))
		}
	}
	var limits []string
	for _, b := range carryBadges {
		if strings.HasSuffix(b, "pc") || strings.HasSuffix(b, "kg") || strings.HasSuffix(b, "cm") {
			limits = append(limits, b)
		}
	}
	if len(limits) > 0 {
		bullets = append(bullets, "Carry-on limit: "+strings.Join(limits, " · "))
	}
	if len(bullets) > 3 {
		bullets = bullets[:3]
	}
	return bullets
}

func summarizeSources(trace []model.TraceEntry) []string {
	var entries []string
	for i, t := range trace {
		if i >= 3 {
			break
		}
		entries = append(entries, layerLabel(t.Layer)+"/"+t.Code)
	}
	return entries
}

func layerLabel(layer string) string {
	switch layer {
	case "country":
		return "security"
	case "airline":
		return "carrier"
	case "international":
		return "dangerous goods"
	default:
		return layer
	}
}

func uniqueSorted(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	sort.Strings(out)
	return out
}

func trimTrailingZero(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
