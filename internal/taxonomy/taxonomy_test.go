package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir string) {
	t.Helper()
	files := map[string]string{
		"risk_keys.json": `{
			"allowed_keys": ["lithium_battery", "lighter"],
			"display_names": {"lithium_battery": "Lithium battery"}
		}`,
		"benign_keys.json": `{
			"allowed_keys": ["benign_general"],
			"display_names": {"benign_general": "General item"}
		}`,
		"required_params.json": `{
			"lithium_battery": {"all_of": ["wh"]},
			"lighter": {"any_of": ["count"], "optional": ["weight_kg"]}
		}`,
		"default_verdicts.json": `{
			"lithium_battery": {"carry_on": {"status": "limit", "badges": ["100Wh cap"]}, "checked": {"status": "deny", "badges": []}},
			"lighter": {"carry_on": {"status": "limit", "badges": ["1 per pax"]}, "checked": {"status": "deny", "badges": []}}
		}`,
		"synonyms.json": `{
			"lithium_battery": ["power bank", "spare battery"]
		}`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
}

func TestLoadValidTaxonomy(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir)

	tax, err := Load(dir)
	require.NoError(t, err)

	assert.True(t, tax.IsRisk("lithium_battery"))
	assert.False(t, tax.IsRisk("benign_general"))
	assert.True(t, tax.IsKnown("benign_general"))
	assert.False(t, tax.IsKnown("never_heard_of_it"))
	assert.ElementsMatch(t, []string{"lithium_battery", "lighter", "benign_general"}, tax.AllowedKeys())
	assert.Equal(t, "Lithium battery", tax.DisplayName("lithium_battery"))
	assert.Equal(t, "unregistered_key", tax.DisplayName("unregistered_key"))
	assert.Contains(t, tax.Synonyms("lithium_battery"), "power bank")
}

func TestLoadRejectsEmptyRiskKeys(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "risk_keys.json"), []byte(`{"allowed_keys": []}`), 0644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoadRejectsMissingDefaultVerdict(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default_verdicts.json"), []byte(`{}`), 0644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestParamRequirementMissing(t *testing.T) {
	req := ParamRequirement{AllOf: []string{"wh"}}
	assert.Equal(t, []string{"wh"}, req.Missing(map[string]bool{}))
	assert.Empty(t, req.Missing(map[string]bool{"wh": true}))

	anyOf := ParamRequirement{AnyOf: []string{"count", "weight_kg"}}
	assert.Empty(t, anyOf.Missing(map[string]bool{"count": true}))
	assert.ElementsMatch(t, []string{"count", "weight_kg"}, anyOf.Missing(map[string]bool{}))
}
