package constraint

import (
	"kavyashar.org/intake/internal/feed"
	"kavyashar.org/intake/internal/gtfs"
)

var (
	stopHerzl   = feed.Stop{ID: "1", Code: "10001", Name: "הרצל", City: "תל אביב"}
	stopAllenby = feed.Stop{ID: "2", Code: "10002", Name: "אלנבי", City: "תל אביב"}
	stopCentral = feed.Stop{ID: "3", Code: "10003", Name: "מרכזית", City: "חיפה"}
)

func testIndex() *gtfs.Index {
	return gtfs.BuildIndex(feed.Tables{
		Stops: []feed.Stop{stopHerzl, stopAllenby, stopCentral},
		Routes: []feed.Route{
			{ID: "r1", AgencyID: "3", ShortName: "1", LongName: "א<->ב-1#"},
			{ID: "r2", AgencyID: "3", ShortName: "2", LongName: "ג<->ד-1#"},
			{ID: "r5a", AgencyID: "3", ShortName: "5", LongName: "תל אביב<->חיפה-1#"},
			{ID: "r5b", AgencyID: "5", ShortName: "5", LongName: "חיפה<->עכו-2#"},
			{ID: "r7", AgencyID: "5", ShortName: "7", LongName: "חולון<->בת ים-1#"},
		},
		Agencies: []feed.Agency{{ID: "3", Name: "אגד"}, {ID: "5", Name: "דן"}},
		StopRoutes: []feed.StopLines{
			{StopID: "1", Lines: []string{"1", "2"}},
			{StopID: "2", Lines: []string{"5"}},
			{StopID: "3", Lines: []string{"5", "7"}},
		},
	})
}
