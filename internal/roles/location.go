package roles

import (
	"sort"
	"strings"
)

// AnyLocation disables the location filter.
const AnyLocation = "Any"

var locations = map[string][]string{
	AnyLocation: nil,
	"Hyderabad": {"hyderabad", "hyd"},
	"Bangalore": {"bangalore", "bengaluru"},
	"Chennai":   {"chennai"},
	"Pune":      {"pune"},
	"Delhi":     {"delhi"},
	"India":     {"india"},
}

// Locations returns the known location names, AnyLocation first.
func Locations() []string {
	names := make([]string, 0, len(locations))
	for name := range locations {
		if name != AnyLocation {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append([]string{AnyLocation}, names...)
}

// LocationKeywords returns the keywords of a location. Unknown names match
// themselves so ad-hoc cities still work.
func LocationKeywords(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, AnyLocation) {
		return nil
	}
	for known, keywords := range locations {
		if strings.EqualFold(known, name) {
			return append([]string(nil), keywords...)
		}
	}
	return []string{strings.ToLower(name)}
}

// MatchLocation reports whether normalized text mentions the location.
func MatchLocation(text, name string) bool {
	keywords := LocationKeywords(name)
	if len(keywords) == 0 {
		return true
	}
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
