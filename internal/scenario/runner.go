package scenario

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/packsafe/previewcore/internal/bedrockclient"
	"github.com/packsafe/previewcore/internal/collaborators"
	"github.com/packsafe/previewcore/internal/model"
	"github.com/packsafe/previewcore/internal/narration"
	"github.com/packsafe/previewcore/internal/preview"
	"github.com/packsafe/previewcore/internal/regulation"
	"github.com/packsafe/previewcore/internal/taxonomy"
)

// Run evaluates every case in a scenario against the given regulation
// store and taxonomy, composing each case's result through ComposeFromDraft
// with the case's fixture classification standing in for a live C3 call.
func Run(s *Scenario, tax *taxonomy.Taxonomy, store *regulation.Store) *RunResult {
	airports := collaborators.NewStaticAirportDirectory()
	narrator := narration.New(bedrockclient.Unconfigured(), tax, 0)
	ctx := context.Background()

	result := &RunResult{Name: s.Name, Total: len(s.Cases)}

	for i, c := range s.Cases {
		draft, preFlags := toDraft(c.Classification)

		res := preview.ComposeFromDraft(ctx, tax, store, airports, narrator,
			fmt.Sprintf("scenario-%d", i+1), c.Label, c.Itinerary, c.Segments,
			c.DutyFree, draft, preFlags, 0.6, nil)

		cr := evaluate(i+1, c, res)
		if cr.Passed {
			result.Passed++
		} else {
			result.Failed++
		}
		result.Cases = append(result.Cases, cr)
	}

	return result
}

func toDraft(c Classification) (model.ClassificationDraft, model.Flags) {
	var flags model.Flags
	if c.LLMError {
		flags.LLMError = true
		return model.ClassificationDraft{
			Canonical: model.BenignGeneral,
			CarryOn:   model.Slot{Status: model.StatusLimit, Badges: []string{"manual review required"}},
			Checked:   model.Slot{Status: model.StatusLimit, Badges: []string{"manual review required"}},
		}, flags
	}
	return model.ClassificationDraft{
		Canonical: model.Canonical(c.Canonical),
		Params:    c.Params,
		CarryOn:   model.Slot{Status: model.Status(c.CarryOn.Status), Badges: c.CarryOn.Badges},
		Checked:   model.Slot{Status: model.Status(c.Checked.Status), Badges: c.Checked.Badges},
		Signals:   model.Signals{MatchedTerms: c.MatchedTerms, Confidence: c.Confidence},
	}, flags
}

func evaluate(index int, c Case, res model.PreviewResult) CaseResult {
	cr := CaseResult{Index: index, Name: c.Name, Passed: true}

	check := func(field, expected, actual string) {
		if expected == "" {
			return
		}
		if actual != expected {
			cr.Passed = false
			cr.Reason = fmt.Sprintf("%s: expected %q, got %q", field, expected, actual)
		}
	}

	check("state", c.Expect.State, string(res.State))
	check("canonical", c.Expect.Canonical, string(res.Engine.Canonical))
	check("carry_on.status", c.Expect.CarryOnStatus, string(res.Resolved.CarryOn.Status))
	check("checked.status", c.Expect.CheckedStatus, string(res.Resolved.Checked.Status))

	if c.Expect.Conflict && !res.Flags.Conflict {
		cr.Passed = false
		cr.Reason = fmt.Sprintf("conflict: expected %v, got %v", c.Expect.Conflict, res.Flags.Conflict)
	}
	if c.Expect.LLMError && !res.Flags.LLMError {
		cr.Passed = false
		cr.Reason = fmt.Sprintf("llm_error: expected %v, got %v", c.Expect.LLMError, res.Flags.LLMError)
	}
	for _, mp := range c.Expect.MissingParams {
		if !contains(res.Flags.MissingParams, mp) {
			cr.Passed = false
			cr.Reason = fmt.Sprintf("missing_params: expected %q present, got %v", mp, res.Flags.MissingParams)
		}
	}

	cr.Expected = c.Expect.State
	cr.Actual = string(res.State)
	return cr
}

func contains(list []string, target string) bool {
	for _, v := range list {
		if v == target {
			return true
		}
	}
	return false
}

// LoadAndRun loads a scenario YAML file plus the taxonomy and regulation
// data directories, and runs every case.
func LoadAndRun(scenarioPath, taxonomyDir, regulationDir string) (*RunResult, error) {
	data, err := os.ReadFile(scenarioPath)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", scenarioPath, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", scenarioPath, err)
	}

	tax, err := taxonomy.Load(taxonomyDir)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}

	store, err := regulation.NewStore(regulationDir, nil)
	if err != nil {
		return nil, fmt.Errorf("load regulations: %w", err)
	}

	result := Run(&s, tax, store)
	result.File = scenarioPath
	return result, nil
}
