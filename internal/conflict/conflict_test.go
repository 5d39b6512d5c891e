package conflict

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/packsafe/previewcore/internal/model"
)

func TestDetectFlagsMoreRestrictiveResolved(t *testing.T) {
	draft := model.ClassificationDraft{
		CarryOn: model.Slot{Status: model.StatusAllow},
		Checked: model.Slot{Status: model.StatusAllow},
		Signals: model.Signals{Confidence: 0.9, MatchedTerms: []string{"a", "b"}},
	}
	resolved := model.Decision{
		CarryOn: model.Slot{Status: model.StatusDeny},
		Checked: model.Slot{Status: model.StatusAllow},
	}

	result := Detect(draft, resolved, 0.5)

	assert.True(t, result.Conflict)
	assert.Equal(t, model.Conflict{Draft: "allow", Final: "deny"}, result.ConflictSlots["carry_on"])
	assert.NotContains(t, result.ConflictSlots, "checked")
	assert.False(t, result.LowConfidence)
}

func TestDetectNeverFlagsResolvedRelaxation(t *testing.T) {
	draft := model.ClassificationDraft{
		CarryOn: model.Slot{Status: model.StatusDeny},
		Checked: model.Slot{Status: model.StatusDeny},
		Signals: model.Signals{Confidence: 0.9, MatchedTerms: []string{"a", "b"}},
	}
	resolved := model.Decision{
		CarryOn: model.Slot{Status: model.StatusAllow},
		Checked: model.Slot{Status: model.StatusAllow},
	}

	result := Detect(draft, resolved, 0.5)

	assert.False(t, result.Conflict)
	assert.Empty(t, result.ConflictSlots)
}

func TestDetectLowConfidenceFromThresholdOrSparseTerms(t *testing.T) {
	base := model.Decision{CarryOn: model.Slot{Status: model.StatusAllow}, Checked: model.Slot{Status: model.StatusAllow}}

	lowConf := model.ClassificationDraft{
		CarryOn: model.Slot{Status: model.StatusAllow},
		Checked: model.Slot{Status: model.StatusAllow},
		Signals: model.Signals{Confidence: 0.2, MatchedTerms: []string{"a", "b"}},
	}
	assert.True(t, Detect(lowConf, base, 0.5).LowConfidence)

	sparseTerms := model.ClassificationDraft{
		CarryOn: model.Slot{Status: model.StatusAllow},
		Checked: model.Slot{Status: model.StatusAllow},
		Signals: model.Signals{Confidence: 0.9, MatchedTerms: []string{"a"}},
	}
	assert.True(t, Detect(sparseTerms, base, 0.5).LowConfidence)
}

func TestDetectUsesDefaultThresholdWhenUnset(t *testing.T) {
	draft := model.ClassificationDraft{
		CarryOn: model.Slot{Status: model.StatusAllow},
		Checked: model.Slot{Status: model.StatusAllow},
		Signals: model.Signals{Confidence: 0.45, MatchedTerms: []string{"a", "b"}},
	}
	resolved := model.Decision{CarryOn: model.Slot{Status: model.StatusAllow}, Checked: model.Slot{Status: model.StatusAllow}}

	result := Detect(draft, resolved, 0)
	assert.True(t, result.LowConfidence)
}

func TestContradictsTemplate(t *testing.T) {
	draft := model.ClassificationDraft{
		CarryOn: model.Slot{Status: model.StatusAllow},
		Checked: model.Slot{Status: model.StatusAllow},
	}
	assert.True(t, ContradictsTemplate(draft, model.StatusDeny, model.StatusDeny))
	assert.False(t, ContradictsTemplate(draft, model.StatusAllow, model.StatusLimit))
}
