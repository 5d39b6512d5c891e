package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/packsafe/previewcore/internal/model"
)

func TestCheckRequiredParamsReportsMissing(t *testing.T) {
	tax := loadTestTaxonomy(t)

	missing := CheckRequiredParams(model.Canonical("lithium_battery"), model.ItemParams{}, tax)
	assert.Equal(t, []string{"wh"}, missing)
}

func TestCheckRequiredParamsSatisfiedWhenPresent(t *testing.T) {
	tax := loadTestTaxonomy(t)
	wh := 80.0

	missing := CheckRequiredParams(model.Canonical("lithium_battery"), model.ItemParams{Wh: &wh}, tax)
	assert.Empty(t, missing)
}

func TestCheckRequiredParamsSkipsNonRiskCanonicals(t *testing.T) {
	tax := loadTestTaxonomy(t)

	missing := CheckRequiredParams(model.Canonical("benign_general"), model.ItemParams{}, tax)
	assert.Empty(t, missing)
}
