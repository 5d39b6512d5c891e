// Package preview implements the orchestrator (C8): it sequences
// C3→C4→C5→C6→C7→C9 behind a request-fingerprint cache and composes the
// final PreviewResult.
package preview

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/packsafe/previewcore/internal/llmclassify"
	"github.com/packsafe/previewcore/internal/model"
)

// Request is the external preview call shape (§6): label, locale, an
// itinerary, the segments flown, optional item parameter hints, and an
// optional duty-free context.
type Request struct {
	Label     string           `json:"label"`
	Locale    string           `json:"locale,omitempty"`
	ReqID     string           `json:"req_id,omitempty"`
	Itinerary model.Itinerary  `json:"itinerary"`
	Segments  []model.Segment  `json:"segments"`
	ItemParams model.ItemParams `json:"item_params,omitempty"`
	DutyFree  *model.DutyFree  `json:"duty_free,omitempty"`
}

// fingerprint computes the whole-preview cache key the same way C3
// fingerprints its own narrower input (via llmclassify.Fingerprint), plus
// the duty-free context C3 never sees, namespaced separately so the two
// caches never collide.
func fingerprint(req Request) string {
	var b strings.Builder
	b.WriteString(llmclassify.Fingerprint(llmclassify.Input{
		Label:          req.Label,
		Locale:         req.Locale,
		Itinerary:      req.Itinerary,
		Segments:       req.Segments,
		ItemParamsHint: req.ItemParams,
	}))
	if req.DutyFree != nil {
		fmt.Fprintf(&b, "\xa6%t/%t", req.DutyFree.IsDutyFree, req.DutyFree.StebSealed)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return "preview:" + hex.EncodeToString(sum[:])
}
