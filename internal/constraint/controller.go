// Package constraint keeps the stop, line, operator and alternative fields
// of a complaint form consistent with each other. Each field change is an
// explicit event that maps the previous Snapshot to a new one.
package constraint

import (
	"slices"

	"kavyashar.org/intake/internal/feed"
	"kavyashar.org/intake/internal/gtfs"
)

// Querier is the part of the feed index the controller reads.
// *gtfs.Index satisfies it.
type Querier interface {
	RoutesForStop(stopID string) []string
	StopsForLine(line string) []feed.Stop
	OperatorsForLine(line string) []feed.Agency
	CitiesForLine(line string) []string
	Alternatives(line, operatorID string) []gtfs.Alternative
}

type Controller struct {
	index Querier
}

func NewController(index Querier) *Controller {
	return &Controller{index: index}
}

// Reset returns the empty snapshot.
func (c *Controller) Reset() Snapshot {
	return Snapshot{Phase: PhaseEmpty}
}

// OnStopSelected applies a validated stop, or clears it when stop is nil.
// A chosen line that does not serve the new stop is cleared together with
// its operator and alternative.
func (c *Controller) OnStopSelected(prev Snapshot, stop *feed.Stop) Snapshot {
	s := prev.next()
	if stop == nil {
		s.clear(FieldStop)
		s.settle(FieldStop)
		return s
	}

	picked := *stop
	s.Stop = &picked
	s.LinesAtStop = c.index.RoutesForStop(picked.ID)

	if s.Line != "" && !slices.Contains(s.LinesAtStop, s.Line) {
		s.clear(FieldLine)
		s.clear(FieldOperator)
		s.clear(FieldAlternative)
	}
	s.settle(FieldStop)
	return s
}

// OnLineSelected applies a line, or clears it when line is empty. It
// recomputes the stops, operators, cities and alternatives of the line,
// clears a stop the line does not serve and an operator that does not run
// it, and picks the only operator when there is exactly one.
func (c *Controller) OnLineSelected(prev Snapshot, line string) Snapshot {
	s := prev.next()
	if line == "" {
		s.clear(FieldLine)
		s.clear(FieldOperator)
		s.clear(FieldAlternative)
		s.settle(FieldLine)
		return s
	}

	if line != s.Line {
		s.clear(FieldAlternative)
	}
	s.Line = line
	s.StopsForLine = c.index.StopsForLine(line)
	if s.Stop != nil && !containsStop(s.StopsForLine, s.Stop.ID) {
		s.clear(FieldStop)
	}

	s.Operators = c.index.OperatorsForLine(line)
	if s.OperatorID != "" && !containsAgency(s.Operators, s.OperatorID) {
		s.clear(FieldOperator)
	}
	if s.OperatorID == "" && len(s.Operators) == 1 {
		s.OperatorID = s.Operators[0].ID
	}

	s.Cities = c.index.CitiesForLine(line)
	c.refreshAlternatives(&s)
	s.settle(FieldLine)
	return s
}

// OnOperatorSelected applies an operator and recomputes the alternatives.
// An operator that does not run the chosen line is rejected and a chosen
// alternative that no longer matches is cleared.
func (c *Controller) OnOperatorSelected(prev Snapshot, operatorID string) Snapshot {
	s := prev.next()
	if operatorID == "" {
		s.clear(FieldOperator)
	} else if s.Line != "" && !containsAgency(s.Operators, operatorID) {
		s.clear(FieldOperator)
	} else {
		s.OperatorID = operatorID
	}
	c.refreshAlternatives(&s)
	s.settle(FieldLine)
	return s
}

// OnAlternativeSelected applies an alternative. Values not among the
// current alternatives clear the selection.
func (c *Controller) OnAlternativeSelected(prev Snapshot, value string) Snapshot {
	s := prev.next()
	if value != "" && containsAlternative(s.Alternatives, value) {
		s.Alternative = value
	} else {
		s.clear(FieldAlternative)
	}
	s.settle(FieldLine)
	return s
}

func (c *Controller) refreshAlternatives(s *Snapshot) {
	if s.Line == "" {
		s.Alternatives = nil
		s.clear(FieldAlternative)
		return
	}
	s.Alternatives = c.index.Alternatives(s.Line, s.OperatorID)
	if s.Alternative != "" && !containsAlternative(s.Alternatives, s.Alternative) {
		s.clear(FieldAlternative)
	}
}

func containsStop(stops []feed.Stop, id string) bool {
	return slices.ContainsFunc(stops, func(s feed.Stop) bool { return s.ID == id })
}

func containsAgency(agencies []feed.Agency, id string) bool {
	return slices.ContainsFunc(agencies, func(a feed.Agency) bool { return a.ID == id })
}

func containsAlternative(alts []gtfs.Alternative, value string) bool {
	return slices.ContainsFunc(alts, func(a gtfs.Alternative) bool { return a.Value == value })
}
