package gtfs

import "kavyashar.org/intake/internal/feed"

func testTables() feed.Tables {
	return feed.Tables{
		Stops: []feed.Stop{
			{ID: "1", Code: "21001", Name: "הרצל/רוטשילד", City: "תל אביב", Lat: 32.0636, Lon: 34.7726},
			{ID: "2", Code: "21002", Name: "אלנבי", City: "תל אביב", Lat: 32.0650, Lon: 34.7700},
			{ID: "3", Code: "38831", Name: "ת. מרכזית", City: "ירושלים", Lat: 31.7890, Lon: 35.2030},
			{ID: "4", Code: "50001", Name: "no coords"},
		},
		Routes: []feed.Route{
			{ID: "100", AgencyID: "3", ShortName: "5", LongName: "ת. מרכזית-ירושלים<->מסוף רידינג-תל אביב יפו-10#"},
			{ID: "101", AgencyID: "3", ShortName: "5", LongName: "ת. מרכזית-ירושלים<->מסוף רידינג-תל אביב יפו-20#"},
			{ID: "102", AgencyID: "5", ShortName: "5", LongName: "קניון-חיפה<->מרכז-נשר-1"},
			{ID: "103", AgencyID: "5", ShortName: "18", LongName: "תל אביב<->חיפה-33#"},
			{ID: "104", AgencyID: "9", ShortName: "18", LongName: "תל אביב<->חיפה-34#"},
			{ID: "105", AgencyID: "3", ShortName: "א1", LongName: "קו מעגלי"},
			{ID: "106", AgencyID: "3", ShortName: "480", LongName: "ירושלים<->תל אביב-1#"},
			{ID: "107", AgencyID: "3"},
		},
		Agencies: []feed.Agency{
			{ID: "3", Name: "אגד"},
			{ID: "5", Name: "דן"},
		},
		StopRoutes: []feed.StopLines{
			{StopID: "1", Lines: []string{"5", "18", "5"}},
			{StopID: "3", Lines: []string{"5"}},
			{StopID: "2", Lines: []string{"18"}},
			{StopID: "99", Lines: []string{"5"}},
			{StopID: "3", Lines: []string{"5", "480"}},
		},
	}
}
