package collaborators

import "testing"

func TestStaticAirportDirectoryKnownCodes(t *testing.T) {
	dir := NewStaticAirportDirectory()

	cases := []struct {
		code string
		want string
	}{
		{"JFK", "US"},
		{"icn", "KR"},
		{"LHR", "GB"},
	}
	for _, c := range cases {
		got, ok := dir.CountryCode(c.code)
		if !ok {
			t.Errorf("CountryCode(%s): expected ok=true", c.code)
		}
		if got != c.want {
			t.Errorf("CountryCode(%s) = %s, want %s", c.code, got, c.want)
		}
	}
}

func TestStaticAirportDirectoryUnknownCode(t *testing.T) {
	dir := NewStaticAirportDirectory()

	_, ok := dir.CountryCode("ZZZ")
	if ok {
		t.Error("expected unknown airport code to report ok=false")
	}
}
