package resolver

import (
	"strings"

	"github.com/packsafe/previewcore/internal/collaborators"
	"github.com/packsafe/previewcore/internal/model"
)

// ItineraryContext is the itinerary-derived request context rules are
// matched against: route type, the countries security screening touches,
// the airlines operating each segment, and the cabin/fare classes in play.
type ItineraryContext struct {
	RouteType      string
	Countries      []string // unique, in origin/via/destination order
	SecurityCountries []string // origin, plus via-points when rescreening applies
	Airlines       []string
	CabinClasses   map[string]bool
	FareClasses    map[string]bool
}

// BuildContext derives an ItineraryContext from the request's itinerary and
// segments using dir to resolve airport-to-country codes.
func BuildContext(itin model.Itinerary, segs []model.Segment, dir collaborators.AirportDirectory) ItineraryContext {
	ctx := ItineraryContext{
		CabinClasses: make(map[string]bool),
		FareClasses:  make(map[string]bool),
	}

	originCountry, _ := dir.CountryCode(itin.Origin)
	destCountry, _ := dir.CountryCode(itin.Destination)

	seen := make(map[string]bool)
	addCountry := func(code string) {
		if code == "" || seen[code] {
			return
		}
		seen[code] = true
		ctx.Countries = append(ctx.Countries, code)
	}
	addCountry(originCountry)
	for _, v := range itin.Via {
		c, _ := dir.CountryCode(v)
		addCountry(c)
	}
	addCountry(destCountry)

	ctx.SecurityCountries = append(ctx.SecurityCountries, originCountry)
	if itin.HasRescreening {
		for _, v := range itin.Via {
			c, _ := dir.CountryCode(v)
			if c != "" {
				ctx.SecurityCountries = append(ctx.SecurityCountries, c)
			}
		}
	}

	if originCountry == "" || destCountry == "" {
		ctx.RouteType = "international"
	} else if originCountry == destCountry {
		ctx.RouteType = "domestic"
	} else {
		ctx.RouteType = "international"
	}

	airlineSeen := make(map[string]bool)
	for _, seg := range segs {
		carrier := strings.ToUpper(seg.Operating)
		if carrier != "" && !airlineSeen[carrier] {
			airlineSeen[carrier] = true
			ctx.Airlines = append(ctx.Airlines, carrier)
		}
		if seg.CabinClass != "" {
			ctx.CabinClasses[strings.ToLower(seg.CabinClass)] = true
		}
		if seg.FareClass != "" {
			ctx.FareClasses[strings.ToLower(seg.FareClass)] = true
		}
	}

	return ctx
}

// RequiresScreeningAt reports whether country is a point where this
// itinerary's bags pass through security screening — the origin always,
// plus any via-point only when the itinerary re-screens there.
func (c ItineraryContext) RequiresScreeningAt(country string) bool {
	for _, sc := range c.SecurityCountries {
		if sc == country {
			return true
		}
	}
	return false
}

// MatchesRoute reports whether a rule's route_type condition is satisfied.
func (c ItineraryContext) MatchesRoute(routeType *string) bool {
	return routeType == nil || *routeType == c.RouteType
}

// MatchesCabin reports whether a rule's cabin_class condition is satisfied
// by any segment in the itinerary.
func (c ItineraryContext) MatchesCabin(cabinClass *string) bool {
	return cabinClass == nil || c.CabinClasses[strings.ToLower(*cabinClass)]
}

// MatchesFare reports whether a rule's fare_class condition is satisfied
// by any segment in the itinerary.
func (c ItineraryContext) MatchesFare(fareClass *string) bool {
	return fareClass == nil || c.FareClasses[strings.ToLower(*fareClass)]
}

// Matches reports whether every condition field on app is satisfied.
func (c ItineraryContext) Matches(app model.Applicability) bool {
	return c.MatchesRoute(app.RouteType) && c.MatchesCabin(app.CabinClass) && c.MatchesFare(app.FareClass)
}
