// Package regulation loads, validates, and indexes the regulation records
// that the layer resolver (C6) consults. Rules are grouped into JSON files
// by scope+code (§6 of the interface contract) and held behind an
// atomically-swappable index so a reload never disturbs an in-flight
// preview (§5's concurrency model).
package regulation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/packsafe/previewcore/internal/model"
)

var validScopes = map[string]bool{
	string(model.ScopeInternational): true,
	string(model.ScopeCountry):       true,
	string(model.ScopeAirline):       true,
}

var validSeverities = map[string]bool{
	string(model.SeverityInfo):  true,
	string(model.SeverityWarn):  true,
	string(model.SeverityBlock): true,
}

var validRouteTypes = map[string]bool{
	"domestic": true, "international": true,
}

var validCabinClasses = map[string]bool{
	"economy": true, "business": true, "first": true, "prestige": true,
}

type fileRule struct {
	ItemName     string                 `json:"item_name,omitempty"`
	ItemCategory string                 `json:"item_category"`
	Constraints  map[string]interface{} `json:"constraints"`
	Severity     string                 `json:"severity"`
	Notes        string                 `json:"notes,omitempty"`
}

type fileDoc struct {
	Scope      string     `json:"scope"`
	Code       string     `json:"code"`
	Name       string     `json:"name,omitempty"`
	CountryISO string     `json:"country_iso,omitempty"`
	Rules      []fileRule `json:"rules"`
}

// LoadError names the file and rule index where validation failed.
type LoadError struct {
	File  string
	Index int
	Msg   string
}

func (e *LoadError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("regulation: %s: rules[%d]: %s", e.File, e.Index, e.Msg)
	}
	return fmt.Sprintf("regulation: %s: %s", e.File, e.Msg)
}

// LoadDirectory reads every *.json file in dir, validates it against the
// §6 schema, and returns the flattened, validated rule set. Store.Reload
// is the caller that indexes the result.
func LoadDirectory(dir string) ([]model.RegulationRule, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("regulation: read dir %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)

	var all []model.RegulationRule
	for _, path := range files {
		rules, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, rules...)
	}
	if err := detectCollisions(all); err != nil {
		return nil, err
	}
	return all, nil
}

func loadFile(path string) ([]model.RegulationRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("regulation: read %s: %w", path, err)
	}

	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{File: path, Index: -1, Msg: fmt.Sprintf("invalid JSON: %v", err)}
	}

	if doc.Scope == "" {
		return nil, &LoadError{File: path, Index: -1, Msg: "missing 'scope'"}
	}
	if !validScopes[doc.Scope] {
		return nil, &LoadError{File: path, Index: -1, Msg: fmt.Sprintf("invalid scope %q", doc.Scope)}
	}
	if doc.Code == "" {
		return nil, &LoadError{File: path, Index: -1, Msg: "missing or empty 'code'"}
	}
	if doc.Scope == string(model.ScopeCountry) && doc.CountryISO == "" {
		return nil, &LoadError{File: path, Index: -1, Msg: "country-scope files require 'country_iso'"}
	}
	if len(doc.Rules) == 0 {
		return nil, &LoadError{File: path, Index: -1, Msg: "'rules' array is empty"}
	}

	rules := make([]model.RegulationRule, 0, len(doc.Rules))
	for i, r := range doc.Rules {
		if r.ItemCategory == "" {
			return nil, &LoadError{File: path, Index: i, Msg: "missing 'item_category'"}
		}
		if r.Constraints == nil {
			return nil, &LoadError{File: path, Index: i, Msg: "missing 'constraints'"}
		}
		if r.Severity == "" || !validSeverities[r.Severity] {
			return nil, &LoadError{File: path, Index: i, Msg: fmt.Sprintf("invalid severity %q", r.Severity)}
		}

		app, err := extractApplicability(r.Constraints)
		if err != nil {
			return nil, &LoadError{File: path, Index: i, Msg: err.Error()}
		}

		rules = append(rules, model.RegulationRule{
			Scope:         model.Scope(doc.Scope),
			Code:          doc.Code,
			CountryISO:    doc.CountryISO,
			ItemCategory:  r.ItemCategory,
			Applicability: app,
			Constraints:   r.Constraints,
			Severity:      model.Severity(r.Severity),
			Notes:         r.Notes,
			SourceFile:    path,
			SourceIndex:   i,
		})
	}

	return rules, nil
}

func extractApplicability(c map[string]interface{}) (model.Applicability, error) {
	var app model.Applicability
	if v, ok := c["route_type"]; ok && v != nil {
		s, ok := v.(string)
		if !ok || !validRouteTypes[s] {
			return app, fmt.Errorf("invalid constraints.route_type %v", v)
		}
		app.RouteType = &s
	}
	if v, ok := c["cabin_class"]; ok && v != nil {
		s, ok := v.(string)
		if !ok || !validCabinClasses[s] {
			return app, fmt.Errorf("invalid constraints.cabin_class %v", v)
		}
		app.CabinClass = &s
	}
	if v, ok := c["fare_class"]; ok && v != nil {
		s, ok := v.(string)
		if !ok || s == "" {
			return app, fmt.Errorf("invalid constraints.fare_class %v", v)
		}
		app.FareClass = &s
	}
	return app, nil
}

// detectCollisions resolves the identity Open Question: two rules within
// the same (scope, code, item_category) group must have distinct condition
// vectors, or the load fails naming both indices. It runs over the rules
// of every file together, so a collision across two files is caught too.
func detectCollisions(rules []model.RegulationRule) error {
	seen := make(map[string]model.RegulationRule)
	for _, r := range rules {
		key := strings.Join([]string{
			string(r.Scope), r.Code, r.ItemCategory,
			derefOr(r.Applicability.RouteType, "*"),
			derefOr(r.Applicability.CabinClass, "*"),
			derefOr(r.Applicability.FareClass, "*"),
		}, "|")
		if prev, ok := seen[key]; ok {
			return &LoadError{
				File:  r.SourceFile,
				Index: r.SourceIndex,
				Msg: fmt.Sprintf(
					"duplicate rule identity with %s rules[%d]: (scope=%s, code=%s, item_category=%s) shares an identical condition vector",
					prev.SourceFile, prev.SourceIndex, r.Scope, r.Code, r.ItemCategory,
				),
			}
		}
		seen[key] = r
	}
	return nil
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
