package narration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/packsafe/previewcore/internal/bedrockclient"
	"github.com/packsafe/previewcore/internal/model"
)

func TestNarrateFallsBackToTemplateWhenUnconfigured(t *testing.T) {
	a := New(bedrockclient.Unconfigured(), nil, 0)
	engine := model.EngineTrace{
		Decision: model.Decision{
			CarryOn: model.Slot{Status: model.StatusAllow},
			Checked: model.Slot{Status: model.StatusAllow},
		},
	}

	n := a.Narrate(context.Background(), "a wool scarf", model.ClassificationDraft{}, engine)

	assert.Equal(t, "Allowed", n.CarryOnCard.StatusLabel)
}

func TestContradictsDetectsWrongStatusWords(t *testing.T) {
	decision := model.Decision{CarryOn: model.Slot{Status: model.StatusDeny}}
	n := model.Narration{CarryOnCard: model.NarrationCard{ShortReason: "This item is allowed in carry-on."}}

	assert.True(t, contradicts(n, decision))
}

func TestContradictsAllowsConditionalPhrasing(t *testing.T) {
	decision := model.Decision{CarryOn: model.Slot{Status: model.StatusLimit}}
	n := model.Narration{CarryOnCard: model.NarrationCard{StatusLabel: "Conditionally allowed"}}

	assert.False(t, contradicts(n, decision))
}
