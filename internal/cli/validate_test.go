package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func writeValidateFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newValidTaxonomyDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeValidateFixture(t, dir, "risk_keys.json", `{"allowed_keys": ["lithium_battery"], "display_names": {}}`)
	writeValidateFixture(t, dir, "benign_keys.json", `{"allowed_keys": ["benign_general"], "display_names": {}}`)
	writeValidateFixture(t, dir, "required_params.json", `{"lithium_battery": {"all_of": ["wh"]}}`)
	writeValidateFixture(t, dir, "default_verdicts.json", `{
		"lithium_battery": {"carry_on": {"status": "limit", "badges": []}, "checked": {"status": "deny", "badges": []}}
	}`)
	writeValidateFixture(t, dir, "synonyms.json", `{}`)
	return dir
}

func newValidRegulationDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeValidateFixture(t, dir, "rules.json", `{"scope": "international", "code": "IATA", "rules": [{"item_category": "dry_ice", "constraints": {}, "severity": "info"}]}`)
	return dir
}

func TestRunValidateSucceedsOnWellFormedData(t *testing.T) {
	validateTaxonomy = newValidTaxonomyDir(t)
	validateRegulation = newValidRegulationDir(t)

	if err := runValidate(nil, nil); err != nil {
		t.Fatalf("runValidate failed: %v", err)
	}
}

func TestRunValidateReportsTaxonomyError(t *testing.T) {
	validateTaxonomy = t.TempDir()
	validateRegulation = newValidRegulationDir(t)

	err := runValidate(nil, nil)
	if err == nil {
		t.Fatal("expected error for missing taxonomy files")
	}
}

func TestRunValidateReportsRegulationError(t *testing.T) {
	validateTaxonomy = newValidTaxonomyDir(t)
	dir := t.TempDir()
	writeValidateFixture(t, dir, "bad.json", `{"code": "X", "rules": []}`)
	validateRegulation = dir

	err := runValidate(nil, nil)
	if err == nil {
		t.Fatal("expected error for a rule file missing its scope")
	}
}
