package models

import (
	"kavyashar.org/intake/internal/feed"
	"kavyashar.org/intake/internal/gtfs"
)

type Stop struct {
	ID       string   `json:"id"`
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	City     string   `json:"city"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	Lines    []string `json:"lines,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
}

func NewStop(s feed.Stop, lines []string) Stop {
	return Stop{
		ID:    s.ID,
		Code:  s.Code,
		Name:  s.Name,
		City:  s.City,
		Lat:   s.Lat,
		Lon:   s.Lon,
		Lines: lines,
	}
}

func NewNearbyStop(s gtfs.NearbyStop) Stop {
	out := NewStop(s.Stop, nil)
	d := s.Distance
	out.Distance = &d
	return out
}

type Route struct {
	ID        string `json:"id"`
	AgencyID  string `json:"agencyId"`
	ShortName string `json:"shortName"`
	LongName  string `json:"longName"`
	Desc      string `json:"desc,omitempty"`
}

func NewRoute(r feed.Route) Route {
	return Route{ID: r.ID, AgencyID: r.AgencyID, ShortName: r.ShortName, LongName: r.LongName, Desc: r.Desc}
}

type Operator struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewOperator(a feed.Agency) Operator {
	return Operator{ID: a.ID, Name: a.Name}
}

// LineStops is the stop sequence of a line with an encoded polyline of the
// stop positions for the form's map preview.
type LineStops struct {
	Line     string `json:"line"`
	Stops    []Stop `json:"stops"`
	Polyline string `json:"polyline"`
}

type TableStatus struct {
	Table    string       `json:"table"`
	Status   Availability `json:"status"`
	Rows     int          `json:"rows"`
	Dropped  int          `json:"dropped"`
	Checksum string       `json:"checksum,omitempty"`
	Reason   string       `json:"reason,omitempty"`
	Error    string       `json:"error,omitempty"`
	LoadedAt int64        `json:"loadedAt,omitempty"`
}

func NewTableStatus(table feed.TableID, st gtfs.TableStatus) TableStatus {
	out := TableStatus{
		Table:    string(table),
		Status:   AvailabilityOf(st.State),
		Rows:     st.Rows,
		Dropped:  st.Dropped,
		Checksum: st.Checksum,
		Reason:   st.Reason,
		Error:    st.Error,
	}
	if !st.LoadedAt.IsZero() {
		out.LoadedAt = st.LoadedAt.UnixMilli()
	}
	return out
}
