package constraint

import (
	"slices"

	"kavyashar.org/intake/internal/feed"
)

// Selection is the part of a Snapshot a client holds between requests.
// The derived lists are recomputed by Restore.
type Selection struct {
	Phase       Phase  `json:"phase,omitempty"`
	StopID      string `json:"stopId,omitempty"`
	Line        string `json:"line,omitempty"`
	OperatorID  string `json:"operator,omitempty"`
	Alternative string `json:"alternative,omitempty"`
}

func (s Snapshot) Selection() Selection {
	return Selection{
		Phase:       s.Phase,
		StopID:      s.StopID(),
		Line:        s.Line,
		OperatorID:  s.OperatorID,
		Alternative: s.Alternative,
	}
}

// Restore replays sel against the index and returns the snapshot it leads
// to. stop is sel.StopID resolved by the caller, nil when it is unknown.
// The line is applied first only when the phase says it was chosen first.
// Selections that no longer hold are dropped and listed in Cleared.
func (c *Controller) Restore(sel Selection, stop *feed.Stop) Snapshot {
	s := c.Reset()
	var cleared []Field
	step := func(next Snapshot) {
		s = next
		for _, f := range next.Cleared {
			if !slices.Contains(cleared, f) {
				cleared = append(cleared, f)
			}
		}
	}

	if sel.StopID != "" && stop == nil {
		cleared = append(cleared, FieldStop)
	}
	applyStop := func() {
		if stop != nil {
			step(c.OnStopSelected(s, stop))
		}
	}
	applyLine := func() {
		if sel.Line != "" {
			step(c.OnLineSelected(s, sel.Line))
		}
	}

	if sel.Phase == PhaseStopFiltered || sel.Phase == PhaseLineSelected {
		applyLine()
		applyStop()
	} else {
		applyStop()
		applyLine()
	}
	if sel.OperatorID != "" && s.Line != "" {
		step(c.OnOperatorSelected(s, sel.OperatorID))
	}
	if sel.Alternative != "" && s.Line != "" {
		step(c.OnAlternativeSelected(s, sel.Alternative))
	}

	s.Cleared = cleared
	return s
}
