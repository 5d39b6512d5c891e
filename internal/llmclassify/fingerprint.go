package llmclassify

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/packsafe/previewcore/internal/model"
)

// Input is the classifier's call shape: everything the system prompt and
// the cache fingerprint are derived from.
type Input struct {
	Label          string
	Locale         string
	Itinerary      model.Itinerary
	Segments       []model.Segment
	ItemParamsHint model.ItemParams
}

// Fingerprint computes sha256(label‖locale‖canonicalized itinerary‖
// canonicalized segments‖canonicalized hints), matching §4.3's cache key.
// Canonicalization lower-cases the label and sorts the via-point list so
// equivalent requests collapse to one cache entry regardless of
// caller-supplied ordering or casing.
func Fingerprint(in Input) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.TrimSpace(in.Label)))
	b.WriteByte('\xa6')
	b.WriteString(strings.ToLower(in.Locale))
	b.WriteByte('\xa6')
	b.WriteString(canonicalItinerary(in.Itinerary))
	b.WriteByte('\xa6')
	b.WriteString(canonicalSegments(in.Segments))
	b.WriteByte('\xa6')
	b.WriteString(canonicalParams(in.ItemParamsHint))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func canonicalItinerary(itin model.Itinerary) string {
	via := append([]string(nil), itin.Via...)
	sort.Strings(via)
	return fmt.Sprintf("%s>%s>%s|%v", itin.Origin, strings.Join(via, ","), itin.Destination, itin.HasRescreening)
}

func canonicalSegments(segs []model.Segment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = fmt.Sprintf("%s/%s/%s", s.Operating, s.CabinClass, s.FareClass)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func canonicalParams(p model.ItemParams) string {
	fields := []string{"volume_ml", "wh", "count", "weight_kg", "abv_percent", "blade_length_cm"}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		v, ok := p.Get(f)
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%v", f, v))
	}
	return strings.Join(parts, ",")
}
