// Package collaborators declares narrow interfaces for the small pieces of
// world knowledge the resolver needs but that the preview pipeline itself
// does not own — airport-to-country lookups today, more later. Keeping
// these behind an interface lets a deployment swap in a real dataset
// (e.g. an IATA airport table synced from a directory service) without
// touching internal/resolver.
package collaborators

import "strings"

// AirportDirectory resolves an IATA airport code to its ISO 3166-1 alpha-2
// country code.
type AirportDirectory interface {
	CountryCode(iataCode string) (string, bool)
}

// staticAirports is a small built-in table covering common hubs, enough to
// exercise route-type inference (domestic vs international) in tests and
// in deployments that have not wired a real airport dataset yet.
type staticAirports struct {
	byCode map[string]string
}

// NewStaticAirportDirectory returns an AirportDirectory backed by a fixed,
// in-memory table of major airports. Deployments needing full IATA
// coverage should implement AirportDirectory against a real dataset.
func NewStaticAirportDirectory() AirportDirectory {
	return &staticAirports{byCode: defaultAirportTable}
}

func (s *staticAirports) CountryCode(iataCode string) (string, bool) {
	code, ok := s.byCode[strings.ToUpper(iataCode)]
	return code, ok
}

var defaultAirportTable = map[string]string{
	"ICN": "KR", "GMP": "KR", "PUS": "KR", "CJU": "KR",
	"JFK": "US", "LAX": "US", "SFO": "US", "ORD": "US", "ATL": "US", "SEA": "US", "IAD": "US", "EWR": "US", "DFW": "US", "MIA": "US", "HNL": "US",
	"NRT": "JP", "HND": "JP", "KIX": "JP",
	"PEK": "CN", "PVG": "CN", "CAN": "CN",
	"HKG": "HK", "TPE": "TW",
	"LHR": "GB", "LGW": "GB", "MAN": "GB",
	"CDG": "FR", "ORY": "FR",
	"FRA": "DE", "MUC": "DE",
	"AMS": "NL", "MAD": "ES", "FCO": "IT", "ZRH": "CH", "IST": "TR",
	"SYD": "AU", "MEL": "AU", "AKL": "NZ",
	"SIN": "SG", "BKK": "TH", "KUL": "MY", "CGK": "ID", "MNL": "PH", "HAN": "VN", "SGN": "VN",
	"DXB": "AE", "DOH": "QA",
	"YYZ": "CA", "YVR": "CA",
	"GRU": "BR", "EZE": "AR", "MEX": "MX", "BOG": "CO",
}
