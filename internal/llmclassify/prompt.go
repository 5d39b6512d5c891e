package llmclassify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/packsafe/previewcore/internal/taxonomy"
)

// buildSystemPrompt renders the closed-set contract the model must honor,
// grounded on the teacher's classifySystemPrompt constant but driven by
// the taxonomy's data-backed key list rather than a hardcoded enum, per
// §4.1's "single source of truth" rule.
func buildSystemPrompt(tax *taxonomy.Taxonomy) string {
	keys := append([]string(nil), tax.AllowedKeys()...)
	keys = append(keys, "benign_general")

	var b strings.Builder
	b.WriteString("You are a baggage-content classifier for an air travel preview system. ")
	b.WriteString("You receive an item label, an itinerary, and flight segments, and must classify the item into exactly one canonical key from this closed set:\n\n")
	for _, k := range keys {
		b.WriteString("- ")
		b.WriteString(k)
		if syn := tax.Synonyms(k); len(syn) > 0 {
			b.WriteString(" (e.g. ")
			b.WriteString(strings.Join(syn, ", "))
			b.WriteString(")")
		}
		b.WriteString("\n")
	}
	b.WriteString("\nRules:\n")
	b.WriteString("- Choose benign_general when the item is not a risk item and matches no other key.\n")
	b.WriteString("- Never invent numeric parameters: if the label or hints do not state a value, report it as null.\n")
	b.WriteString("- matched_terms must be verbatim lowercase substrings of the label, 2 to 4 entries.\n")
	b.WriteString("- confidence is a number in [0,1].\n")
	b.WriteString("- Draft verdicts must be conservative: aerosols default to limit, spare lithium batteries default to carry-only, unknown risk items default to limit rather than allow.\n")
	b.WriteString("- Return ONLY valid JSON, no markdown fences, no commentary, matching exactly:\n")
	b.WriteString(`{"canonical":"<key>","params":{"volume_ml":null,"wh":null,"count":null,"weight_kg":null,"abv_percent":null,"blade_length_cm":null},"carry_on":{"status":"allow|limit|deny","badges":[]},"checked":{"status":"allow|limit|deny","badges":[]},"needs_review":false,"signals":{"matched_terms":[],"confidence":0,"notes":""}}`)
	b.WriteString("\n")
	return b.String()
}

// buildUserPrompt renders the request payload the model must classify.
func buildUserPrompt(in Input) string {
	payload := map[string]any{
		"label":             in.Label,
		"locale":            in.Locale,
		"itinerary":         in.Itinerary,
		"segments":          in.Segments,
		"item_params_hint":  in.ItemParamsHint,
	}
	body, _ := json.Marshal(payload)
	return fmt.Sprintf("Classify this item:\n%s", body)
}

// cleanJSON strips markdown fences some models wrap JSON output in,
// mirroring the teacher's observe.cleanJSON helper.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
