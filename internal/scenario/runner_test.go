package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenarioFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newFixtureTaxonomyDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeScenarioFixture(t, dir, "risk_keys.json", `{"allowed_keys": ["lithium_battery_spare"], "display_names": {}}`)
	writeScenarioFixture(t, dir, "benign_keys.json", `{"allowed_keys": ["benign_general"], "display_names": {}}`)
	writeScenarioFixture(t, dir, "required_params.json", `{"lithium_battery_spare": {"all_of": ["wh"]}}`)
	writeScenarioFixture(t, dir, "default_verdicts.json", `{
		"lithium_battery_spare": {"carry_on": {"status": "limit", "badges": []}, "checked": {"status": "deny", "badges": []}}
	}`)
	writeScenarioFixture(t, dir, "synonyms.json", `{}`)
	return dir
}

func newFixtureRegulationDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeScenarioFixture(t, dir, "rules.json", `{
		"scope": "international",
		"code": "IATA",
		"rules": [{"item_category": "lithium_battery_spare", "constraints": {"max_wh": 100}, "severity": "block"}]
	}`)
	return dir
}

func TestLoadAndRunPassingScenario(t *testing.T) {
	taxDir := newFixtureTaxonomyDir(t)
	regDir := newFixtureRegulationDir(t)
	scenarioDir := t.TempDir()
	scenarioPath := writeScenarioFixture(t, scenarioDir, "battery.yaml", `
name: battery checks
cases:
  - name: over-limit spare battery denies
    label: spare lithium battery
    itinerary:
      origin: ICN
      destination: LAX
    classification:
      canonical: lithium_battery_spare
      params:
        wh: 150
      carry_on:
        status: allow
      checked:
        status: allow
      matched_terms: [battery, spare]
      confidence: 0.9
    expect:
      state: needs_review
      carry_on_status: deny
`)

	result, err := LoadAndRun(scenarioPath, taxDir, regDir)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 0, result.Failed)
}

func TestLoadAndRunFailingScenarioReportsReason(t *testing.T) {
	taxDir := newFixtureTaxonomyDir(t)
	regDir := newFixtureRegulationDir(t)
	scenarioDir := t.TempDir()
	scenarioPath := writeScenarioFixture(t, scenarioDir, "battery.yaml", `
name: battery checks
cases:
  - name: wrongly expects allow
    label: spare lithium battery
    itinerary:
      origin: ICN
      destination: LAX
    classification:
      canonical: lithium_battery_spare
      params:
        wh: 150
      carry_on:
        status: allow
      checked:
        status: allow
      matched_terms: [battery, spare]
      confidence: 0.9
    expect:
      state: complete
`)

	result, err := LoadAndRun(scenarioPath, taxDir, regDir)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failed)
	assert.False(t, result.Cases[0].Passed)
	assert.Contains(t, result.Cases[0].Reason, "state")
}

func newFixtureRegulationDirWithSTEB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeScenarioFixture(t, dir, "cn.json", `{
		"scope": "country",
		"code": "CN",
		"country_iso": "CN",
		"rules": [{"item_category": "aerosol_toiletry", "constraints": {"requires_steb": true, "route_type": "international"}, "severity": "info"}]
	}`)
	return dir
}

func newFixtureTaxonomyDirAerosol(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeScenarioFixture(t, dir, "risk_keys.json", `{"allowed_keys": ["aerosol_toiletry"], "display_names": {}}`)
	writeScenarioFixture(t, dir, "benign_keys.json", `{"allowed_keys": ["benign_general"], "display_names": {}}`)
	writeScenarioFixture(t, dir, "required_params.json", `{"aerosol_toiletry": {"all_of": ["volume_ml"]}}`)
	writeScenarioFixture(t, dir, "default_verdicts.json", `{
		"aerosol_toiletry": {"carry_on": {"status": "limit", "badges": []}, "checked": {"status": "allow", "badges": []}}
	}`)
	writeScenarioFixture(t, dir, "synonyms.json", `{}`)
	return dir
}

func TestLoadAndRunSTEBScenarioFlagsConflictWithoutDutyFree(t *testing.T) {
	taxDir := newFixtureTaxonomyDirAerosol(t)
	regDir := newFixtureRegulationDirWithSTEB(t)
	scenarioDir := t.TempDir()
	scenarioPath := writeScenarioFixture(t, scenarioDir, "rescreening.yaml", `
name: rescreening checks
cases:
  - name: unsealed duty-free perfume at a CN rescreening point
    label: duty-free perfume 100ml
    itinerary:
      origin: ICN
      via: [PVG]
      destination: LAX
      has_rescreening: true
    classification:
      canonical: aerosol_toiletry
      params:
        volume_ml: 100
      carry_on:
        status: limit
      checked:
        status: allow
      matched_terms: [duty, free, perfume]
      confidence: 0.9
    expect:
      state: needs_review
      conflict: true
`)

	result, err := LoadAndRun(scenarioPath, taxDir, regDir)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 0, result.Failed)
}

func TestLoadAndRunSTEBScenarioClearsWithSealedDutyFree(t *testing.T) {
	taxDir := newFixtureTaxonomyDirAerosol(t)
	regDir := newFixtureRegulationDirWithSTEB(t)
	scenarioDir := t.TempDir()
	scenarioPath := writeScenarioFixture(t, scenarioDir, "rescreening.yaml", `
name: rescreening checks
cases:
  - name: sealed duty-free perfume at a CN rescreening point
    label: duty-free perfume 100ml
    itinerary:
      origin: ICN
      via: [PVG]
      destination: LAX
      has_rescreening: true
    duty_free:
      is_df: true
      steb_sealed: true
    classification:
      canonical: aerosol_toiletry
      params:
        volume_ml: 100
      carry_on:
        status: limit
      checked:
        status: allow
      matched_terms: [duty, free, perfume]
      confidence: 0.9
    expect:
      state: complete
      conflict: false
`)

	result, err := LoadAndRun(scenarioPath, taxDir, regDir)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 0, result.Failed)
}

func TestLoadAndRunMissingScenarioFileErrors(t *testing.T) {
	taxDir := newFixtureTaxonomyDir(t)
	regDir := newFixtureRegulationDir(t)

	_, err := LoadAndRun(filepath.Join(t.TempDir(), "nope.yaml"), taxDir, regDir)
	assert.Error(t, err)
}
