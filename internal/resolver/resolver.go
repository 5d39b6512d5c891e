// Package resolver implements the deterministic layer resolver (C6): it
// collects applicable regulation rules across the country, airline, and
// international dangerous-goods layers, picks the highest-specificity rule
// per contributing group, and folds the results into a resolved per-bag
// decision using the monotone deny > limit > allow lattice.
package resolver

import (
	"sort"

	"github.com/packsafe/previewcore/internal/collaborators"
	"github.com/packsafe/previewcore/internal/model"
	"github.com/packsafe/previewcore/internal/regulation"
	"github.com/packsafe/previewcore/internal/taxonomy"
)

const (
	layerCountry       = "country"
	layerAirline       = "airline"
	layerInternational = "international"
)

// layerPriority orders layers for the specificity tie-break (§4.6): country
// security/customs rules outrank airline rules, which outrank the
// international dangerous-goods layer.
var layerPriority = map[string]int{
	layerCountry:       0,
	layerAirline:       1,
	layerInternational: 2,
}

type candidate struct {
	rule         model.RegulationRule
	layer        string
	specificity  int
}

func specificityOf(ctx ItineraryContext, app model.Applicability) int {
	n := 0
	if app.RouteType != nil && ctx.MatchesRoute(app.RouteType) {
		n++
	}
	if app.CabinClass != nil && ctx.MatchesCabin(app.CabinClass) {
		n++
	}
	if app.FareClass != nil && ctx.MatchesFare(app.FareClass) {
		n++
	}
	return n
}

// Resolve computes the deterministic engine trace for one (canonical,
// itinerary, segments) request.
func Resolve(
	canonical model.Canonical,
	params model.ItemParams,
	itin model.Itinerary,
	segs []model.Segment,
	store *regulation.Store,
	airports collaborators.AirportDirectory,
	tax *taxonomy.Taxonomy,
) model.EngineTrace {
	ctx := BuildContext(itin, segs, airports)

	var candidates []candidate

	for _, country := range ctx.Countries {
		for _, r := range store.FindCountry(country, string(canonical)) {
			if !ctx.Matches(r.Applicability) {
				continue
			}
			if steb, ok := boolConstraint(r.Constraints, "requires_steb"); ok && steb && !ctx.RequiresScreeningAt(country) {
				// A duty-free STEB requirement only bites where the bag
				// actually passes back through security — skip it for a
				// plain connection with no rescreening at this country.
				continue
			}
			candidates = append(candidates, candidate{rule: r, layer: layerCountry, specificity: specificityOf(ctx, r.Applicability)})
		}
	}

	for _, carrier := range ctx.Airlines {
		rules := store.Find(model.ScopeAirline, carrier, string(canonical))
		rules = append(rules, store.Find(model.ScopeAirline, carrier, "carry_on")...)
		rules = append(rules, store.Find(model.ScopeAirline, carrier, "checked")...)
		for _, r := range rules {
			if !ctx.Matches(r.Applicability) {
				continue
			}
			candidates = append(candidates, candidate{rule: r, layer: layerAirline, specificity: specificityOf(ctx, r.Applicability)})
		}
	}

	for _, r := range store.FindInternational(string(canonical)) {
		if !ctx.Matches(r.Applicability) {
			continue
		}
		candidates = append(candidates, candidate{rule: r, layer: layerInternational, specificity: specificityOf(ctx, r.Applicability)})
	}

	best := selectBestPerGroup(candidates)

	sort.SliceStable(best, func(i, j int) bool {
		if best[i].specificity != best[j].specificity {
			return best[i].specificity > best[j].specificity
		}
		return layerPriority[best[i].layer] < layerPriority[best[j].layer]
	})

	acc := newAccumulator(canonical, params, tax)
	for _, c := range best {
		acc.apply(c)
	}

	return acc.build()
}

// selectBestPerGroup picks the single highest-specificity candidate per
// (layer, code, item_category) group. This step must happen before the
// monotone fold: folding the raw candidate list directly would let two
// condition-vector variants of the same rule both contribute, which is not
// the same as picking the one that actually matches best — the
// non-commutative step the original's _select_best_records performs.
func selectBestPerGroup(candidates []candidate) []candidate {
	type key struct {
		layer    string
		code     string
		category string
	}
	groups := make(map[key][]candidate)
	var order []key
	for _, c := range candidates {
		k := key{c.layer, c.rule.Code, c.rule.ItemCategory}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], c)
	}

	best := make([]candidate, 0, len(order))
	for _, k := range order {
		bucket := groups[k]
		top := bucket[0]
		for _, c := range bucket[1:] {
			if c.specificity > top.specificity {
				top = c
			}
		}
		best = append(best, top)
	}
	return best
}
