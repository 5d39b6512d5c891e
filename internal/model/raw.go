package model

// RawParams mirrors ItemParams but stays loosely typed (count as float64)
// because it holds an LLM response's numbers before the schema guard has
// checked them for finiteness, sign, and type.
type RawParams struct {
	VolumeML      *float64 `json:"volume_ml"`
	Wh            *float64 `json:"wh"`
	Count         *float64 `json:"count"`
	WeightKg      *float64 `json:"weight_kg"`
	ABVPercent    *float64 `json:"abv_percent"`
	BladeLengthCm *float64 `json:"blade_length_cm"`
}

// RawSlot is an unvalidated carry_on/checked entry from the classifier.
type RawSlot struct {
	Status string   `json:"status"`
	Badges []string `json:"badges"`
}

// RawSignals is the unvalidated signals block.
type RawSignals struct {
	MatchedTerms []string `json:"matched_terms"`
	Confidence   float64  `json:"confidence"`
	Notes        string   `json:"notes,omitempty"`
}

// RawClassifierResponse is the §6 LLM response shape before validation —
// every field is accepted as-is from the model and must pass through the
// schema guard (C4) before it becomes a trusted ClassificationDraft.
type RawClassifierResponse struct {
	Canonical   string            `json:"canonical"`
	Params      RawParams         `json:"params"`
	CarryOn     RawSlot           `json:"carry_on"`
	Checked     RawSlot           `json:"checked"`
	NeedsReview bool              `json:"needs_review"`
	Signals     RawSignals        `json:"signals"`
	ModelInfo   map[string]string `json:"model_info"`
}
