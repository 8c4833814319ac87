// Package extract pulls structured values out of the free-text fields of
// the Israeli GTFS feed: the city embedded in a stop description and the
// origin, destination and city suffixes embedded in a route long name.
//
// Every function is best effort. No match yields the zero value.
package extract

import (
	"regexp"
	"strings"
)

const LabelSeparator = " ⟷ "

var (
	// "רחוב: הרצל עיר: תל אביב רציף: 3" -> "תל אביב"
	stopCityRegex = regexp.MustCompile(`עיר:\s*([^\s]+(?:\s+[^\s]+)?)\s*רציף:`)

	// "תל אביב<->חיפה-33#" -> "תל אביב", "חיפה"
	endpointsRegex = regexp.MustCompile(`(.+)<->(.+)-\d+#?`)

	cityBeforeSuffixRegex = regexp.MustCompile(`-([^-<>]+)-\d+#?$`)
	trailingTokenRegex    = regexp.MustCompile(`-([^-]+)$`)
	suffixJunkRegex       = regexp.MustCompile(`[-\d#]+$`)
)

// CityFromStopDesc returns the one- or two-word city between the "עיר:"
// and "רציף:" markers of a stop description.
func CityFromStopDesc(desc string) string {
	m := stopCityRegex.FindStringSubmatch(desc)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Endpoints is the origin/destination reading of a route long name.
type Endpoints struct {
	Origin      string
	Destination string
	Label       string
	Matched     bool
}

// ParseLongName splits "ORIGIN<->DESTINATION-<digits>[#]". When the long
// name does not have that shape the label is the long name itself and
// origin and destination are empty.
func ParseLongName(longName string) Endpoints {
	m := endpointsRegex.FindStringSubmatch(longName)
	if m == nil {
		return Endpoints{Label: longName}
	}
	origin := strings.TrimSpace(m[1])
	destination := strings.TrimSpace(m[2])
	return Endpoints{
		Origin:      origin,
		Destination: destination,
		Label:       origin + LabelSeparator + destination,
		Matched:     true,
	}
}

// CitiesFromLongName returns the city candidates of a long name in the
// order found, without duplicates. Candidates can be empty or a single
// character; callers filter those.
func CitiesFromLongName(longName string) []string {
	var out []string
	add := func(c string) {
		for _, existing := range out {
			if existing == c {
				return
			}
		}
		out = append(out, c)
	}

	if m := cityBeforeSuffixRegex.FindStringSubmatch(longName); m != nil {
		add(strings.TrimSpace(m[1]))
	}
	for _, part := range strings.Split(longName, "<->") {
		if m := trailingTokenRegex.FindStringSubmatch(part); m != nil {
			add(strings.TrimSpace(suffixJunkRegex.ReplaceAllString(m[1], "")))
		}
	}
	return out
}
