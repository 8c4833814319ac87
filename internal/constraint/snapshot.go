package constraint

import (
	"slices"

	"kavyashar.org/intake/internal/feed"
	"kavyashar.org/intake/internal/gtfs"
)

// Phase names where a form section stands in the stop/line selection.
type Phase string

const (
	PhaseEmpty        Phase = "empty"
	PhaseStopSelected Phase = "stop_selected"
	PhaseLineSelected Phase = "line_selected"
	// PhaseLineFiltered: the stop came first and the line was picked from
	// the lines at that stop.
	PhaseLineFiltered Phase = "line_filtered"
	// PhaseStopFiltered: the line came first and the stop was picked from
	// the stops of that line.
	PhaseStopFiltered Phase = "stop_filtered"
)

// Field names a selection that a transition may clear.
type Field string

const (
	FieldStop        Field = "stop"
	FieldLine        Field = "line"
	FieldOperator    Field = "operator"
	FieldAlternative Field = "alternative"
)

// Snapshot is the derived state of one form section after a transition.
// Handlers never modify a snapshot; they return a new one. Slices may be
// shared between snapshots and must be treated as read-only.
type Snapshot struct {
	Phase       Phase      `json:"phase"`
	Stop        *feed.Stop `json:"stop,omitempty"`
	Line        string     `json:"line,omitempty"`
	OperatorID  string     `json:"operator,omitempty"`
	Alternative string     `json:"alternative,omitempty"`

	LinesAtStop  []string           `json:"linesAtStop"`
	StopsForLine []feed.Stop        `json:"stopsForLine"`
	Operators    []feed.Agency      `json:"operators"`
	Alternatives []gtfs.Alternative `json:"alternatives"`
	Cities       []string           `json:"cities"`

	// Cleared lists the selections the last transition removed.
	Cleared []Field `json:"cleared,omitempty"`

	// anchor is whichever of stop and line was selected first.
	anchor Field
}

func (s Snapshot) HasStop() bool {
	return s.Stop != nil
}

func (s Snapshot) StopID() string {
	if s.Stop == nil {
		return ""
	}
	return s.Stop.ID
}

// next copies s as the starting point of a transition.
func (s Snapshot) next() Snapshot {
	n := s
	n.Cleared = nil
	return n
}

func (s *Snapshot) clear(f Field) {
	switch f {
	case FieldStop:
		if s.Stop == nil {
			return
		}
		s.Stop = nil
		s.LinesAtStop = nil
	case FieldLine:
		if s.Line == "" {
			return
		}
		s.Line = ""
		s.StopsForLine = nil
		s.Operators = nil
		s.Cities = nil
		s.Alternatives = nil
	case FieldOperator:
		if s.OperatorID == "" {
			return
		}
		s.OperatorID = ""
	case FieldAlternative:
		if s.Alternative == "" {
			return
		}
		s.Alternative = ""
	}
	if !slices.Contains(s.Cleared, f) {
		s.Cleared = append(s.Cleared, f)
	}
}

// settle recomputes the anchor and phase from the current selections.
func (s *Snapshot) settle(selected Field) {
	switch {
	case s.Stop == nil && s.Line == "":
		s.anchor = ""
	case s.Stop == nil:
		s.anchor = FieldLine
	case s.Line == "":
		s.anchor = FieldStop
	case s.anchor == "":
		s.anchor = selected
	}

	switch {
	case s.Stop == nil && s.Line == "":
		s.Phase = PhaseEmpty
	case s.Line == "":
		s.Phase = PhaseStopSelected
	case s.Stop == nil:
		s.Phase = PhaseLineSelected
	case s.anchor == FieldStop:
		s.Phase = PhaseLineFiltered
	default:
		s.Phase = PhaseStopFiltered
	}
}
