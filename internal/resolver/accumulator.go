package resolver

import (
	"fmt"
	"sort"

	"github.com/packsafe/previewcore/internal/model"
	"github.com/packsafe/previewcore/internal/taxonomy"
)

// minConditionKeys are numeric caps where the most restrictive (lowest)
// value wins when multiple rules expose the same key, mirroring the
// original's MIN_CONDITION_KEYS.
var minConditionKeys = map[string]bool{
	"max_container_ml": true,
	"max_total_ml":     true,
	"max_wh":            true,
	"max_pieces":        true,
	"max_weight_kg":     true,
	"max_abv_percent":   true,
}

// boolConditionKeys are sticky booleans: once any contributing rule sets
// one true, it stays true.
var boolConditionKeys = map[string]bool{
	"requires_zip_bag":          true,
	"requires_vented_packaging": true,
	"declare_required":          true,
	"requires_power_off":        true,
	"airline_approval":          true,
	"requires_steb":             true,
}

type accumulator struct {
	canonical model.Canonical
	params    model.ItemParams

	carryStatus model.Status
	checkStatus model.Status
	carryBadges map[string]bool
	checkBadges map[string]bool
	carryReasons []string
	checkReasons []string
	conditions  map[string]interface{}
	trace       []model.TraceEntry
	appliedSeen map[string]bool
	appliedRules []string
}

// newAccumulator seeds the fold from the taxonomy's default verdict
// template for canonical (§4.6 Merge step 1), falling back to an
// unrestricted allow when the taxonomy has no template for it (a benign or
// unknown key without a default_verdicts entry). Every rule layer's
// status is then merged on top of this seed via the monotone lattice, so a
// taxonomy-denied bag is never relaxed back to allow by a rule that simply
// never mentions it.
func newAccumulator(canonical model.Canonical, params model.ItemParams, tax *taxonomy.Taxonomy) *accumulator {
	a := &accumulator{
		canonical:   canonical,
		params:      params,
		carryStatus: model.StatusAllow,
		checkStatus: model.StatusAllow,
		carryBadges: make(map[string]bool),
		checkBadges: make(map[string]bool),
		conditions:  make(map[string]interface{}),
		appliedSeen: make(map[string]bool),
	}
	if tax != nil {
		if template, ok := tax.DefaultVerdicts(string(canonical)); ok {
			a.carryStatus = model.Status(template.CarryOn.Status)
			a.checkStatus = model.Status(template.Checked.Status)
			for _, b := range template.CarryOn.Badges {
				a.carryBadges[b] = true
			}
			for _, b := range template.Checked.Badges {
				a.checkBadges[b] = true
			}
		}
	}
	return a
}

func (a *accumulator) apply(c candidate) {
	r := c.rule

	appliesToCarry := true
	appliesToChecked := true
	if v, ok := boolConstraint(r.Constraints, "carry_on_only"); ok && v {
		appliesToChecked = false
	}
	if v, ok := boolConstraint(r.Constraints, "checked_only"); ok && v {
		appliesToCarry = false
	}
	if c.layer == layerAirline {
		switch r.ItemCategory {
		case "carry_on":
			appliesToChecked = false
		case "checked":
			appliesToCarry = false
		}
	}

	status := computeStatus(r, a.params)
	reasonCode := fmt.Sprintf("%s_%s_%s", c.layer, r.Code, r.ItemCategory)

	ruleKey := fmt.Sprintf("%s|%s|%s", c.layer, r.Code, r.ItemCategory)
	if !a.appliedSeen[ruleKey] {
		a.appliedSeen[ruleKey] = true
		a.appliedRules = append(a.appliedRules, reasonCode)
	}

	badges := badgesFromConstraints(r.Constraints)

	if appliesToCarry {
		a.carryStatus = model.Merge(a.carryStatus, status)
		for b := range badges {
			a.carryBadges[b] = true
		}
		a.carryReasons = appendUnique(a.carryReasons, reasonCode)
	}
	if appliesToChecked {
		a.checkStatus = model.Merge(a.checkStatus, status)
		for b := range badges {
			a.checkBadges[b] = true
		}
		a.checkReasons = appendUnique(a.checkReasons, reasonCode)
	}

	for k, v := range r.Constraints {
		if k == "route_type" || k == "cabin_class" || k == "fare_class" || k == "carry_on_only" || k == "checked_only" {
			continue
		}
		a.mergeCondition(k, v)
	}

	a.trace = append(a.trace, model.TraceEntry{
		Layer:           c.layer,
		Code:            r.Code,
		ItemCategory:    r.ItemCategory,
		CarryOn:         boolStatus(appliesToCarry, status),
		Checked:         boolStatus(appliesToChecked, status),
		ReasonCodes:     []string{reasonCode},
		ConstraintsUsed: r.Constraints,
	})
}

func boolStatus(applies bool, status model.Status) model.Status {
	if !applies {
		return model.StatusAllow
	}
	return status
}

func (a *accumulator) mergeCondition(key string, value interface{}) {
	if value == nil {
		return
	}
	switch {
	case minConditionKeys[key]:
		num, ok := asFloat(value)
		if !ok {
			return
		}
		if current, exists := a.conditions[key]; !exists {
			a.conditions[key] = num
		} else if cur, ok := asFloat(current); ok && num < cur {
			a.conditions[key] = num
		}
	case boolConditionKeys[key]:
		b, _ := value.(bool)
		if b {
			a.conditions[key] = true
		} else if _, exists := a.conditions[key]; !exists {
			a.conditions[key] = false
		}
	default:
		a.conditions[key] = value
	}
}

func (a *accumulator) build() model.EngineTrace {
	return model.EngineTrace{
		Canonical: a.canonical,
		Params:    a.params,
		Decision: model.Decision{
			CarryOn: model.Slot{Status: a.carryStatus, Badges: sortedKeys(a.carryBadges), ReasonCodes: a.carryReasons},
			Checked: model.Slot{Status: a.checkStatus, Badges: sortedKeys(a.checkBadges), ReasonCodes: a.checkReasons},
		},
		Conditions:   a.conditions,
		AppliedRules: a.appliedRules,
		Trace:        a.trace,
	}
}

// computeStatus derives an intermediate status from the rule's severity
// and, for "warn" rules, whether the request's declared parameters violate
// the rule's numeric caps: block always denies; warn denies when a
// parameter exceeds its cap and limits otherwise; info only ever allows.
func computeStatus(r model.RegulationRule, params model.ItemParams) model.Status {
	switch r.Severity {
	case model.SeverityBlock:
		return model.StatusDeny
	case model.SeverityInfo:
		return model.StatusAllow
	default: // warn
		if violatesCaps(r.Constraints, params) {
			return model.StatusDeny
		}
		return model.StatusLimit
	}
}

var capToParam = map[string]string{
	"max_container_ml": "volume_ml",
	"max_total_ml":      "volume_ml",
	"max_wh":            "wh",
	"max_weight_kg":     "weight_kg",
	"max_pieces":        "count",
	"max_abv_percent":   "abv_percent",
}

func violatesCaps(constraints map[string]interface{}, params model.ItemParams) bool {
	for capKey, paramName := range capToParam {
		capValue, ok := constraints[capKey]
		if !ok {
			continue
		}
		cap, ok := asFloat(capValue)
		if !ok {
			continue
		}
		val, present := params.Get(paramName)
		if !present {
			continue
		}
		if val > cap {
			return true
		}
	}
	return false
}

func badgesFromConstraints(constraints map[string]interface{}) map[string]bool {
	badges := make(map[string]bool)
	if v, ok := asFloat(constraints["max_container_ml"]); ok && v > 0 {
		badges[fmt.Sprintf("%gml", v)] = true
	}
	if v, ok := asFloat(constraints["max_weight_kg"]); ok && v > 0 {
		badges[fmt.Sprintf("%gkg", v)] = true
	}
	if v, ok := asFloat(constraints["max_wh"]); ok && v > 0 {
		badges[fmt.Sprintf("%gWh", v)] = true
	}
	if v, ok := asFloat(constraints["max_pieces"]); ok && v > 0 {
		badges[fmt.Sprintf("%gpc", v)] = true
	}
	if v, ok := asFloat(constraints["max_abv_percent"]); ok && v > 0 {
		badges[fmt.Sprintf("≤%g%% ABV", v)] = true
	}
	if b, _ := constraints["requires_zip_bag"].(bool); b {
		badges["1L zip bag"] = true
	}
	if b, _ := constraints["requires_vented_packaging"].(bool); b {
		badges["vented packaging"] = true
	}
	if b, _ := constraints["declare_required"].(bool); b {
		badges["declare at counter"] = true
	}
	if b, _ := constraints["requires_power_off"].(bool); b {
		badges["device powered off"] = true
	}
	if b, _ := constraints["requires_steb"].(bool); b {
		badges["STEB bag required"] = true
	}
	return badges
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func boolConstraint(constraints map[string]interface{}, key string) (bool, bool) {
	v, ok := constraints[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func appendUnique(list []string, item string) []string {
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	return append(list, item)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
