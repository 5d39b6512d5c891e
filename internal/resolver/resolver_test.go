package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packsafe/previewcore/internal/collaborators"
	"github.com/packsafe/previewcore/internal/model"
	"github.com/packsafe/previewcore/internal/regulation"
	"github.com/packsafe/previewcore/internal/taxonomy"
)

func loadResolverTaxonomy(t *testing.T) *taxonomy.Taxonomy {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"risk_keys.json": `{
			"allowed_keys": ["lithium_battery_spare"],
			"display_names": {"lithium_battery_spare": "Spare lithium battery"}
		}`,
		"benign_keys.json": `{"allowed_keys": [], "display_names": {}}`,
		"required_params.json": `{
			"lithium_battery_spare": {"all_of": ["wh"]}
		}`,
		"default_verdicts.json": `{
			"lithium_battery_spare": {"carry_on": {"status": "limit", "badges": ["terminals insulated"]}, "checked": {"status": "deny", "badges": ["prohibited in hold"]}}
		}`,
		"synonyms.json": `{}`,
	}
	for name, content := range files {
		writeResFile(t, dir, name, content)
	}
	tax, err := taxonomy.Load(dir)
	require.NoError(t, err)
	return tax
}

func writeResFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestResolveCountryOutranksInternationalAtEqualSpecificity(t *testing.T) {
	dir := t.TempDir()
	writeResFile(t, dir, "us.json", `{
		"scope": "country",
		"code": "US_TSA",
		"country_iso": "US",
		"rules": [{"item_category": "lithium_battery", "constraints": {"max_wh": 100}, "severity": "block"}]
	}`)
	writeResFile(t, dir, "iata.json", `{
		"scope": "international",
		"code": "IATA",
		"rules": [{"item_category": "lithium_battery", "constraints": {"max_wh": 160}, "severity": "warn"}]
	}`)

	store, err := regulation.NewStore(dir, nil)
	require.NoError(t, err)

	dirAirports := collaborators.NewStaticAirportDirectory()
	itin := model.Itinerary{Origin: "JFK", Destination: "ICN"}
	segs := []model.Segment{{Operating: "KE", CabinClass: "economy"}}

	trace := Resolve(model.Canonical("lithium_battery"), model.ItemParams{}, itin, segs, store, dirAirports, nil)

	assert.Contains(t, trace.AppliedRules, "country_US_TSA_lithium_battery")
	assert.Contains(t, trace.AppliedRules, "international_IATA_lithium_battery")
	assert.Equal(t, model.StatusDeny, trace.Decision.CarryOn.Status)
	require.NotEmpty(t, trace.Trace)
	assert.Equal(t, "country", trace.Trace[0].Layer)
}

func TestResolveHigherSpecificityWinsWithinGroup(t *testing.T) {
	dir := t.TempDir()
	writeResFile(t, dir, "iata.json", `{
		"scope": "international",
		"code": "IATA",
		"rules": [
			{"item_category": "lithium_battery", "constraints": {"max_wh": 100}, "severity": "warn"},
			{"item_category": "lithium_battery", "constraints": {"max_wh": 160, "cabin_class": "business"}, "severity": "warn"}
		]
	}`)

	store, err := regulation.NewStore(dir, nil)
	require.NoError(t, err)

	dirAirports := collaborators.NewStaticAirportDirectory()
	itin := model.Itinerary{Origin: "JFK", Destination: "ICN"}
	segs := []model.Segment{{Operating: "KE", CabinClass: "business"}}

	wh := 120.0
	trace := Resolve(model.Canonical("lithium_battery"), model.ItemParams{Wh: &wh}, itin, segs, store, dirAirports, nil)

	// only the more specific (business-cabin, 160Wh cap) rule should have
	// been selected, so a 120Wh battery should not trip the cap.
	require.Len(t, trace.AppliedRules, 1)
	assert.NotEqual(t, model.StatusDeny, trace.Decision.CarryOn.Status)
}

func TestResolveNumericConditionTakesMostRestrictive(t *testing.T) {
	dir := t.TempDir()
	writeResFile(t, dir, "us.json", `{
		"scope": "country",
		"code": "US_TSA",
		"country_iso": "US",
		"rules": [{"item_category": "lighter", "constraints": {"max_pieces": 1}, "severity": "warn"}]
	}`)
	writeResFile(t, dir, "kr.json", `{
		"scope": "country",
		"code": "KR_CUSTOMS",
		"country_iso": "KR",
		"rules": [{"item_category": "lighter", "constraints": {"max_pieces": 2}, "severity": "warn"}]
	}`)

	store, err := regulation.NewStore(dir, nil)
	require.NoError(t, err)

	dirAirports := collaborators.NewStaticAirportDirectory()
	itin := model.Itinerary{Origin: "JFK", Destination: "ICN"}
	segs := []model.Segment{{Operating: "KE", CabinClass: "economy"}}

	trace := Resolve(model.Canonical("lighter"), model.ItemParams{}, itin, segs, store, dirAirports, nil)

	assert.Equal(t, float64(1), trace.Conditions["max_pieces"])
}

// TestResolveCarryOnOnlyRuleLeavesCheckedAtTaxonomyDefault mirrors the
// shipped spare-battery rule shape (carry_on_only: true) and asserts that
// the bag the rule never touches falls back to the taxonomy's own
// checked=deny template instead of an unrestricted allow.
func TestResolveCarryOnOnlyRuleLeavesCheckedAtTaxonomyDefault(t *testing.T) {
	dir := t.TempDir()
	writeResFile(t, dir, "iata.json", `{
		"scope": "international",
		"code": "IATA",
		"rules": [{"item_category": "lithium_battery_spare", "constraints": {"max_wh": 160, "carry_on_only": true}, "severity": "block"}]
	}`)

	store, err := regulation.NewStore(dir, nil)
	require.NoError(t, err)

	tax := loadResolverTaxonomy(t)
	dirAirports := collaborators.NewStaticAirportDirectory()
	itin := model.Itinerary{Origin: "ICN", Destination: "LAX"}

	wh := 200.0
	trace := Resolve(model.Canonical("lithium_battery_spare"), model.ItemParams{Wh: &wh}, itin, nil, store, dirAirports, tax)

	assert.Equal(t, model.StatusDeny, trace.Decision.CarryOn.Status)
	assert.Equal(t, model.StatusDeny, trace.Decision.Checked.Status)
	assert.Contains(t, trace.Decision.Checked.Badges, "prohibited in hold")
}

func TestBuildContextDomesticVsInternational(t *testing.T) {
	dirAirports := collaborators.NewStaticAirportDirectory()

	domestic := BuildContext(model.Itinerary{Origin: "JFK", Destination: "LAX"}, nil, dirAirports)
	assert.Equal(t, "domestic", domestic.RouteType)

	intl := BuildContext(model.Itinerary{Origin: "JFK", Destination: "ICN"}, nil, dirAirports)
	assert.Equal(t, "international", intl.RouteType)
}

func TestSelectBestPerGroupPicksHighestSpecificity(t *testing.T) {
	cabin := "business"
	low := candidate{rule: model.RegulationRule{Code: "IATA", ItemCategory: "lithium_battery"}, layer: layerInternational, specificity: 0}
	high := candidate{rule: model.RegulationRule{Code: "IATA", ItemCategory: "lithium_battery"}, layer: layerInternational, specificity: 1}
	high.rule.Applicability = model.Applicability{CabinClass: &cabin}

	best := selectBestPerGroup([]candidate{low, high})
	require.Len(t, best, 1)
	assert.Equal(t, 1, best[0].specificity)
}
