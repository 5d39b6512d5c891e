// Package scenario implements offline, network-free regression checks
// over the deterministic half of the preview pipeline (C5→C6→C7→C9),
// driven by fixture classifications instead of a live Bedrock call.
// Structure and naming are grounded on the teacher's scenario package
// (Case/Scenario/RunResult/CaseResult, LoadAndRun/FormatText/FormatJSON).
package scenario

import "github.com/packsafe/previewcore/internal/model"

// Classification is the fixture standing in for C3's output: what the
// classifier would have returned for this case, already past the schema
// guard. Setting LLMError simulates a classifier timeout/failure instead.
type Classification struct {
	LLMError     bool             `yaml:"llm_error,omitempty"`
	Canonical    string           `yaml:"canonical"`
	Params       model.ItemParams `yaml:"params,omitempty"`
	CarryOn      SlotFixture      `yaml:"carry_on"`
	Checked      SlotFixture      `yaml:"checked"`
	MatchedTerms []string         `yaml:"matched_terms,omitempty"`
	Confidence   float64          `yaml:"confidence"`
}

// SlotFixture is one bag's fixture verdict.
type SlotFixture struct {
	Status string   `yaml:"status"`
	Badges []string `yaml:"badges,omitempty"`
}

// Expect names the fields a case asserts against the composed result.
// Zero-value fields (empty string, false, empty list) are not checked.
type Expect struct {
	Canonical     string   `yaml:"canonical,omitempty"`
	CarryOnStatus string   `yaml:"carry_on_status,omitempty"`
	CheckedStatus string   `yaml:"checked_status,omitempty"`
	State         string   `yaml:"state"`
	MissingParams []string `yaml:"missing_params,omitempty"`
	Conflict      bool     `yaml:"conflict,omitempty"`
	LLMError      bool     `yaml:"llm_error,omitempty"`
}

// Case is one preview scenario under test.
type Case struct {
	Name           string           `yaml:"name"`
	Label          string           `yaml:"label"`
	Itinerary      model.Itinerary  `yaml:"itinerary"`
	Segments       []model.Segment  `yaml:"segments"`
	ItemParams     model.ItemParams `yaml:"item_params,omitempty"`
	DutyFree       *model.DutyFree  `yaml:"duty_free,omitempty"`
	Classification Classification   `yaml:"classification"`
	Expect         Expect           `yaml:"expect"`
}

// Scenario is a named collection of preview test cases.
type Scenario struct {
	Name  string `yaml:"name"`
	Cases []Case `yaml:"cases"`
}

// CaseResult is the outcome of evaluating one case.
type CaseResult struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Reason   string `json:"reason,omitempty"`
}

// RunResult is the outcome of running all cases in one scenario file.
type RunResult struct {
	File   string       `json:"file"`
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Cases  []CaseResult `json:"cases"`
}
