package gtfs

import "kavyashar.org/intake/internal/extract"

// Alternative is one origin/destination pairing of a line. Value is the
// route id of the first route that produced the label.
type Alternative struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// Alternatives lists the distinct directions of a line, optionally limited
// to one operator. Labels are unique and keep route order.
func (ix *Index) Alternatives(line, operatorID string) []Alternative {
	alternatives := []Alternative{}
	if line == "" {
		return alternatives
	}

	seen := map[string]bool{}
	for _, i := range ix.routesByLine[line] {
		r := ix.tables.Routes[i]
		if operatorID != "" && r.AgencyID != operatorID {
			continue
		}
		ep := extract.ParseLongName(r.LongName)
		if seen[ep.Label] {
			continue
		}
		seen[ep.Label] = true
		alternatives = append(alternatives, Alternative{
			Value:       r.ID,
			Label:       ep.Label,
			Origin:      ep.Origin,
			Destination: ep.Destination,
		})
	}
	return alternatives
}

// HasAlternative reports whether value is among Alternatives(line, operatorID).
func (ix *Index) HasAlternative(line, operatorID, value string) bool {
	for _, a := range ix.Alternatives(line, operatorID) {
		if a.Value == value {
			return true
		}
	}
	return false
}
