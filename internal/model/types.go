// Package model holds the shared data types that flow through the preview
// pipeline: itineraries, item parameters, classification drafts, regulation
// rules, and the resolved per-bag verdicts that make up a PreviewResult.
package model

// Status is the per-bag decision outcome. The zero value is invalid; use
// one of the declared constants.
type Status string

const (
	StatusAllow Status = "allow"
	StatusLimit Status = "limit"
	StatusDeny  Status = "deny"
)

// StatusRank orders Status for the monotone deny > limit > allow lattice.
// Higher rank wins when two rules disagree on the same bag.
var StatusRank = map[Status]int{
	StatusAllow: 1,
	StatusLimit: 2,
	StatusDeny:  3,
}

// MoreRestrictive reports whether a is strictly more restrictive than b.
func MoreRestrictive(a, b Status) bool {
	return StatusRank[a] > StatusRank[b]
}

// Merge folds two statuses for the same bag using the monotone lattice.
// The more restrictive of the two always wins; ties keep the current value.
func Merge(current, next Status) Status {
	if StatusRank[next] > StatusRank[current] {
		return next
	}
	return current
}

// Canonical is a closed-set risk-family key (or the benign sentinel).
// The set itself is data-driven — see internal/taxonomy — so this is a
// validated string rather than a compiled Go enum.
type Canonical string

// BenignGeneral is the sentinel canonical for items outside the risk taxonomy.
const BenignGeneral Canonical = "benign_general"

// ItemParams holds the quantitative attributes a classifier or caller may
// supply. Every field is a pointer: nil means "absent", never a sentinel
// zero value, per the data model's non-negotiable invariant.
type ItemParams struct {
	VolumeML      *float64 `json:"volume_ml,omitempty" yaml:"volume_ml,omitempty"`
	Wh            *float64 `json:"wh,omitempty" yaml:"wh,omitempty"`
	Count         *int     `json:"count,omitempty" yaml:"count,omitempty"`
	WeightKg      *float64 `json:"weight_kg,omitempty" yaml:"weight_kg,omitempty"`
	ABVPercent    *float64 `json:"abv_percent,omitempty" yaml:"abv_percent,omitempty"`
	BladeLengthCm *float64 `json:"blade_length_cm,omitempty" yaml:"blade_length_cm,omitempty"`
}

// Get returns the numeric value of the named parameter and whether it is
// present. Unknown names report absent.
func (p ItemParams) Get(name string) (float64, bool) {
	switch name {
	case "volume_ml":
		if p.VolumeML != nil {
			return *p.VolumeML, true
		}
	case "wh":
		if p.Wh != nil {
			return *p.Wh, true
		}
	case "count":
		if p.Count != nil {
			return float64(*p.Count), true
		}
	case "weight_kg":
		if p.WeightKg != nil {
			return *p.WeightKg, true
		}
	case "abv_percent":
		if p.ABVPercent != nil {
			return *p.ABVPercent, true
		}
	case "blade_length_cm":
		if p.BladeLengthCm != nil {
			return *p.BladeLengthCm, true
		}
	}
	return 0, false
}

// Itinerary describes the route the item is travelling on.
type Itinerary struct {
	Origin         string   `json:"origin" yaml:"origin"`
	Via            []string `json:"via,omitempty" yaml:"via,omitempty"`
	Destination    string   `json:"destination" yaml:"destination"`
	HasRescreening bool     `json:"has_rescreening" yaml:"has_rescreening,omitempty"`
}

// Segment is one operated leg of the itinerary.
type Segment struct {
	Operating  string `json:"operating" yaml:"operating"`
	CabinClass string `json:"cabin_class" yaml:"cabin_class"`
	FareClass  string `json:"fare_class,omitempty" yaml:"fare_class,omitempty"`
}

// DutyFree carries the duty-free purchase context used by the STEB/LAGs rules.
type DutyFree struct {
	IsDutyFree bool `json:"is_df" yaml:"is_df"`
	StebSealed bool `json:"steb_sealed" yaml:"steb_sealed"`
}

// Slot is a per-bag decision: a status plus the badges (short condition
// phrases) and reason codes (stable rule identifiers) that produced it.
type Slot struct {
	Status      Status   `json:"status"`
	Badges      []string `json:"badges"`
	ReasonCodes []string `json:"reason_codes,omitempty"`
}

// Decision bundles the carry-on and checked slots for one bag pair.
type Decision struct {
	CarryOn Slot `json:"carry_on"`
	Checked Slot `json:"checked"`
}

// Signals is the classifier's self-reported evidence for its canonical pick.
type Signals struct {
	MatchedTerms []string `json:"matched_terms"`
	Confidence   float64  `json:"confidence"`
	Notes        string   `json:"notes,omitempty"`
}

// ClassificationDraft is C3's validated output: a canonical guess, extracted
// parameters, a conservative draft verdict per bag, and the signals that
// justify the pick.
type ClassificationDraft struct {
	Canonical Canonical         `json:"canonical"`
	Params    ItemParams        `json:"params"`
	CarryOn   Slot              `json:"carry_on"`
	Checked   Slot              `json:"checked"`
	Signals   Signals           `json:"signals"`
	ModelInfo map[string]string `json:"model_info,omitempty"`
}

// Applicability is the normalized condition vector extracted from a
// RegulationRule's constraints at load time.
type Applicability struct {
	RouteType  *string `json:"route_type,omitempty"`
	CabinClass *string `json:"cabin_class,omitempty"`
	FareClass  *string `json:"fare_class,omitempty"`
}

// Specificity counts the non-null condition fields — the tie-break the
// resolver uses when two rules both match a request (§4.6 of the spec).
func (a Applicability) Specificity() int {
	n := 0
	if a.RouteType != nil {
		n++
	}
	if a.CabinClass != nil {
		n++
	}
	if a.FareClass != nil {
		n++
	}
	return n
}

// Scope is the authority level a RegulationRule was published under.
type Scope string

const (
	ScopeAirline       Scope = "airline"
	ScopeCountry       Scope = "country"
	ScopeInternational Scope = "international"
)

// Severity is a rule's authority tier.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityWarn  Severity = "warn"
	SeverityBlock Severity = "block"
)

// RegulationRule is one immutable regulation record loaded from a scope+code
// data file. Constraints carries the free-form caps (max_container_ml,
// max_wh, max_pieces, ...); Applicability is the condition vector pulled
// out of Constraints at load time for matching.
type RegulationRule struct {
	Scope         Scope                  `json:"scope"`
	Code          string                 `json:"code"`
	CountryISO    string                 `json:"country_iso,omitempty"`
	ItemCategory  string                 `json:"item_category"`
	Applicability Applicability          `json:"-"`
	Constraints   map[string]interface{} `json:"constraints"`
	Severity      Severity               `json:"severity"`
	Notes         string                 `json:"notes,omitempty"`

	// SourceFile and SourceIndex identify where this rule was loaded from,
	// for load-time error messages and engine trace provenance.
	SourceFile  string `json:"-"`
	SourceIndex int    `json:"-"`
}

// Flags records every review-triggering or informational signal raised
// while producing a PreviewResult. No flag ever downgrades a deny.
type Flags struct {
	ValidationError bool            `json:"validation_error,omitempty"`
	MissingParams   []string        `json:"missing_params,omitempty"`
	LowConfidence   bool            `json:"low_confidence,omitempty"`
	Conflict        bool            `json:"conflict,omitempty"`
	ConflictSlots   map[string]Conflict `json:"conflict_slots,omitempty"`
	LLMError        bool            `json:"llm_error,omitempty"`
	Override        bool            `json:"override,omitempty"`
	OffendingField  string          `json:"offending_field,omitempty"`
}

// Conflict records a disagreement between the LLM draft and the
// rule-resolved verdict for one bag slot.
type Conflict struct {
	Draft string `json:"draft"`
	Final string `json:"final"`
}

// TraceEntry is one contributing rule in the engine trace.
type TraceEntry struct {
	Layer           string                 `json:"layer"`
	Code            string                 `json:"code"`
	ItemCategory    string                 `json:"item_category"`
	CarryOn         Status                 `json:"carry_on"`
	Checked         Status                 `json:"checked"`
	ReasonCodes     []string               `json:"reason_codes,omitempty"`
	ConstraintsUsed map[string]interface{} `json:"constraints_used,omitempty"`
}

// EngineTrace is the deterministic-layer output C6/C7 hand to the orchestrator.
type EngineTrace struct {
	Canonical    Canonical              `json:"canonical"`
	Params       ItemParams             `json:"params"`
	Decision     Decision               `json:"decision"`
	Conditions   map[string]interface{} `json:"conditions"`
	AppliedRules []string               `json:"applied_rules"`
	Trace        []TraceEntry           `json:"trace"`
}

// NarrationCard is one bag's user-facing status line.
type NarrationCard struct {
	StatusLabel string `json:"status_label"`
	ShortReason string `json:"short_reason"`
}

// Narration is C9's non-authoritative, paraphrase-only UX payload.
type Narration struct {
	Title        string        `json:"title"`
	CarryOnCard  NarrationCard `json:"carry_on_card"`
	CheckedCard  NarrationCard `json:"checked_card"`
	Bullets      []string      `json:"bullets"`
	Badges       []string      `json:"badges"`
	Footnote     string        `json:"footnote,omitempty"`
	Sources      []string      `json:"sources,omitempty"`
}

// State is the top-level preview outcome.
type State string

const (
	StateComplete    State = "complete"
	StateNeedsReview State = "needs_review"
)

// PreviewResult is the final response composed by the orchestrator (C8).
type PreviewResult struct {
	ReqID     string    `json:"req_id"`
	State     State     `json:"state"`
	Resolved  Decision  `json:"resolved"`
	Engine    EngineTrace `json:"engine"`
	Narration Narration `json:"narration"`
	Flags     Flags     `json:"flags"`
}
