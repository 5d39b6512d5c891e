// Package taxonomy loads the closed set of risk keys, required-parameter
// table, default verdict templates, and synonym hints that back both the
// classifier prompt (C3) and the runtime guards (C4/C5). Every consumer
// reads from the same five JSON assets so the prompt and the guard can
// never drift apart, per the taxonomy's single-source-of-truth contract.
package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ParamRequirement describes how a canonical's numeric parameters are
// required: AllOf means every named field must be present, AnyOf means at
// least one of the named fields must be present (the rest stay optional).
type ParamRequirement struct {
	AllOf    []string `json:"all_of"`
	AnyOf    []string `json:"any_of"`
	Optional []string `json:"optional"`
}

// Missing returns the names from AllOf/AnyOf that are absent from present,
// a set of parameter names known to be non-nil on the request.
func (r ParamRequirement) Missing(present map[string]bool) []string {
	var missing []string
	for _, name := range r.AllOf {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(r.AnyOf) > 0 {
		satisfied := false
		for _, name := range r.AnyOf {
			if present[name] {
				satisfied = true
				break
			}
		}
		if !satisfied {
			missing = append(missing, r.AnyOf...)
		}
	}
	return missing
}

// VerdictTemplate is a constant (status, badges) pair used as a
// conservative default before any rule layer has been consulted.
type VerdictTemplate struct {
	Status string   `json:"status"`
	Badges []string `json:"badges"`
}

// DefaultVerdict is the carry-on/checked template pair for one canonical.
type DefaultVerdict struct {
	CarryOn VerdictTemplate `json:"carry_on"`
	Checked VerdictTemplate `json:"checked"`
}

type keyPayload struct {
	AllowedKeys  []string          `json:"allowed_keys"`
	DisplayNames map[string]string `json:"display_names"`
}

// Taxonomy is the immutable, fully loaded set of classifier assets.
type Taxonomy struct {
	riskKeys       map[string]bool
	benignKeys     map[string]bool
	displayNames   map[string]string
	requiredParams map[string]ParamRequirement
	defaultVerdict map[string]DefaultVerdict
	synonyms       map[string][]string
	allowedKeys    []string
}

// Load reads the five taxonomy assets from dir and returns a ready-to-use
// Taxonomy. It is meant to be called once at startup; unlike the regulation
// store, the taxonomy is not hot-reloaded.
func Load(dir string) (*Taxonomy, error) {
	var risk keyPayload
	if err := readJSON(filepath.Join(dir, "risk_keys.json"), &risk); err != nil {
		return nil, err
	}
	if len(risk.AllowedKeys) == 0 {
		return nil, fmt.Errorf("taxonomy: risk_keys.json must include at least one allowed key")
	}

	var benign keyPayload
	if err := readJSON(filepath.Join(dir, "benign_keys.json"), &benign); err != nil {
		return nil, err
	}

	var required map[string]ParamRequirement
	if err := readJSON(filepath.Join(dir, "required_params.json"), &required); err != nil {
		return nil, err
	}

	var verdicts map[string]DefaultVerdict
	if err := readJSON(filepath.Join(dir, "default_verdicts.json"), &verdicts); err != nil {
		return nil, err
	}

	var synonyms map[string][]string
	if err := readJSON(filepath.Join(dir, "synonyms.json"), &synonyms); err != nil {
		return nil, err
	}

	t := &Taxonomy{
		riskKeys:       toSet(risk.AllowedKeys),
		benignKeys:     toSet(benign.AllowedKeys),
		displayNames:   merge(risk.DisplayNames, benign.DisplayNames),
		requiredParams: required,
		defaultVerdict: verdicts,
		synonyms:       synonyms,
		allowedKeys:    append(append([]string{}, risk.AllowedKeys...), benign.AllowedKeys...),
	}

	for key := range t.riskKeys {
		if _, ok := t.defaultVerdict[key]; !ok {
			return nil, fmt.Errorf("taxonomy: risk key %q has no default_verdicts entry", key)
		}
	}

	return t, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("taxonomy: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("taxonomy: parse %s: %w", path, err)
	}
	return nil
}

func toSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

func merge(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// IsRisk reports whether canonical is a member of the risk set (as opposed
// to the benign set or an unknown key).
func (t *Taxonomy) IsRisk(canonical string) bool {
	return t.riskKeys[canonical]
}

// IsKnown reports whether canonical is in either the risk or benign set.
func (t *Taxonomy) IsKnown(canonical string) bool {
	return t.riskKeys[canonical] || t.benignKeys[canonical]
}

// AllowedKeys returns every canonical key the classifier is allowed to
// emit — risk keys plus the benign sentinel set — in file order. Callers
// must not mutate the returned slice.
func (t *Taxonomy) AllowedKeys() []string {
	return t.allowedKeys
}

// RequiredParams returns the required-parameter rule for canonical. The
// zero value (no requirements) is returned for canonicals with none.
func (t *Taxonomy) RequiredParams(canonical string) ParamRequirement {
	return t.requiredParams[canonical]
}

// DefaultVerdicts returns the conservative carry-on/checked template for
// canonical and whether one was found.
func (t *Taxonomy) DefaultVerdicts(canonical string) (DefaultVerdict, bool) {
	v, ok := t.defaultVerdict[canonical]
	return v, ok
}

// DisplayName returns the human label for canonical, falling back to the
// key itself when no display name was registered.
func (t *Taxonomy) DisplayName(canonical string) string {
	if name, ok := t.displayNames[canonical]; ok {
		return name
	}
	return canonical
}

// Synonyms returns the hint tokens registered for canonical — phrases the
// classifier prompt uses to recognize a label that doesn't literally name
// the canonical key.
func (t *Taxonomy) Synonyms(canonical string) []string {
	return t.synonyms[canonical]
}
