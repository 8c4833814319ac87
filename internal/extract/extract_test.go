package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCityFromStopDesc(t *testing.T) {
	tests := []struct {
		name     string
		desc     string
		expected string
	}{
		{"two word city", "רחוב: הרצל עיר: תל אביב רציף: 3", "תל אביב"},
		{"one word city", "רחוב: יפו 23 עיר: ירושלים רציף:   קומה: ", "ירושלים"},
		{"no space after marker", "רחוב: הנשיא עיר:חיפה רציף: 1", "חיפה"},
		{"three words only takes two", "עיר: קרית אונו מזרח רציף:", ""},
		{"missing platform marker", "רחוב: הרצל עיר: תל אביב", ""},
		{"empty", "", ""},
		{"latin description", "Herzl St / Rothschild", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CityFromStopDesc(tt.desc))
		})
	}
}

func TestParseLongName(t *testing.T) {
	tests := []struct {
		name     string
		longName string
		expected Endpoints
	}{
		{
			name:     "origin destination with marker",
			longName: "תל אביב<->חיפה-33#",
			expected: Endpoints{Origin: "תל אביב", Destination: "חיפה", Label: "תל אביב ⟷ חיפה", Matched: true},
		},
		{
			name:     "hyphenated endpoints keep their city",
			longName: "ת. מרכזית-ירושלים<->מסוף רידינג-תל אביב יפו-10#",
			expected: Endpoints{
				Origin:      "ת. מרכזית-ירושלים",
				Destination: "מסוף רידינג-תל אביב יפו",
				Label:       "ת. מרכזית-ירושלים ⟷ מסוף רידינג-תל אביב יפו",
				Matched:     true,
			},
		},
		{
			name:     "no marker",
			longName: "קניון<->מרכז-1",
			expected: Endpoints{Origin: "קניון", Destination: "מרכז", Label: "קניון ⟷ מרכז", Matched: true},
		},
		{
			name:     "no separator falls back to raw name",
			longName: "קו מעגלי",
			expected: Endpoints{Label: "קו מעגלי"},
		},
		{
			name:     "separator without numeric suffix",
			longName: "א<->ב",
			expected: Endpoints{Label: "א<->ב"},
		},
		{
			name:     "empty",
			longName: "",
			expected: Endpoints{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLongName(tt.longName))
		})
	}
}

func TestCitiesFromLongName(t *testing.T) {
	tests := []struct {
		name     string
		longName string
		expected []string
	}{
		{
			name:     "suffix city then endpoint cities",
			longName: "ת. מרכזית-ירושלים<->מסוף רידינג-תל אביב יפו-10#",
			expected: []string{"תל אביב יפו", "ירושלים", ""},
		},
		{
			name:     "both ends carry a city",
			longName: "קניון-חיפה<->מרכז-נשר-1",
			expected: []string{"נשר", "חיפה", ""},
		},
		{
			name:     "numeric suffix only",
			longName: "תל אביב<->חיפה-33#",
			expected: []string{""},
		},
		{
			name:     "no hyphen",
			longName: "קו מעגלי",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CitiesFromLongName(tt.longName))
		})
	}
}
