package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kavyashar.org/intake/internal/feed"
)

func stopIDs(stops []feed.Stop) []string {
	ids := []string{}
	for _, s := range stops {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestLineNotAtStopClearsStop(t *testing.T) {
	c := NewController(testIndex())

	s := c.OnStopSelected(c.Reset(), &stopHerzl)
	assert.Equal(t, PhaseStopSelected, s.Phase)
	assert.Equal(t, []string{"1", "2"}, s.LinesAtStop)

	s = c.OnLineSelected(s, "5")
	assert.Nil(t, s.Stop)
	assert.Nil(t, s.LinesAtStop)
	assert.Equal(t, []Field{FieldStop}, s.Cleared)
	assert.Equal(t, PhaseLineSelected, s.Phase)
	assert.Equal(t, []string{"2", "3"}, stopIDs(s.StopsForLine))
	assert.Len(t, s.Operators, 2)
	assert.Empty(t, s.OperatorID, "two operators, nothing picked")
	assert.Len(t, s.Alternatives, 2)
}

func TestStopNotOnLineClearsLine(t *testing.T) {
	c := NewController(testIndex())

	s := c.OnLineSelected(c.Reset(), "7")
	assert.Equal(t, PhaseLineSelected, s.Phase)
	assert.Equal(t, "5", s.OperatorID, "sole operator is picked")
	assert.Equal(t, []string{"3"}, stopIDs(s.StopsForLine))

	s = c.OnStopSelected(s, &stopHerzl)
	assert.Equal(t, "", s.Line)
	assert.Equal(t, "", s.OperatorID)
	assert.Nil(t, s.Operators)
	assert.Equal(t, []Field{FieldLine, FieldOperator}, s.Cleared)
	assert.Equal(t, PhaseStopSelected, s.Phase)
}

func TestConsistentSelectionsKeepBoth(t *testing.T) {
	c := NewController(testIndex())

	s := c.OnStopSelected(c.Reset(), &stopCentral)
	s = c.OnLineSelected(s, "5")
	require.NotNil(t, s.Stop)
	assert.Equal(t, "3", s.StopID())
	assert.Empty(t, s.Cleared)
	assert.Equal(t, PhaseLineFiltered, s.Phase)

	s = c.OnLineSelected(c.Reset(), "5")
	s = c.OnStopSelected(s, &stopCentral)
	assert.Equal(t, "5", s.Line)
	assert.Equal(t, PhaseStopFiltered, s.Phase)
	assert.Equal(t, []string{}, s.Cities, "long names without a city suffix")
}

func TestOperatorChangeClearsStaleAlternative(t *testing.T) {
	c := NewController(testIndex())

	s := c.OnLineSelected(c.Reset(), "5")
	s = c.OnAlternativeSelected(s, "r5a")
	require.Equal(t, "r5a", s.Alternative)

	kept := c.OnOperatorSelected(s, "3")
	assert.Equal(t, "r5a", kept.Alternative)
	assert.Len(t, kept.Alternatives, 1)
	assert.Empty(t, kept.Cleared)

	changed := c.OnOperatorSelected(s, "5")
	assert.Equal(t, "", changed.Alternative)
	assert.Equal(t, []Field{FieldAlternative}, changed.Cleared)
	require.Len(t, changed.Alternatives, 1)
	assert.Equal(t, "r5b", changed.Alternatives[0].Value)
}

func TestOperatorNotRunningLineIsRejected(t *testing.T) {
	c := NewController(testIndex())

	s := c.OnLineSelected(c.Reset(), "7")
	s = c.OnOperatorSelected(s, "3")
	assert.Equal(t, "", s.OperatorID)
	assert.Equal(t, []Field{FieldOperator}, s.Cleared)
	assert.Len(t, s.Alternatives, 1, "alternatives fall back to every operator")
}

func TestLineChangeRevalidatesOperatorAndAlternative(t *testing.T) {
	c := NewController(testIndex())

	s := c.OnLineSelected(c.Reset(), "5")
	s = c.OnOperatorSelected(s, "3")
	s = c.OnAlternativeSelected(s, "r5a")

	s = c.OnLineSelected(s, "7")
	assert.Equal(t, "5", s.OperatorID, "invalid operator cleared, then the sole one picked")
	assert.Equal(t, "", s.Alternative)
	assert.Equal(t, []Field{FieldAlternative, FieldOperator}, s.Cleared)
}

func TestUnknownAlternativeIsCleared(t *testing.T) {
	c := NewController(testIndex())

	s := c.OnLineSelected(c.Reset(), "5")
	s = c.OnAlternativeSelected(s, "r5a")
	s = c.OnAlternativeSelected(s, "r7")
	assert.Equal(t, "", s.Alternative)
	assert.Equal(t, []Field{FieldAlternative}, s.Cleared)
}

func TestClearingLineDropsDependents(t *testing.T) {
	c := NewController(testIndex())

	s := c.OnStopSelected(c.Reset(), &stopCentral)
	s = c.OnLineSelected(s, "7")
	s = c.OnLineSelected(s, "")

	assert.Equal(t, PhaseStopSelected, s.Phase)
	assert.Equal(t, "", s.OperatorID)
	assert.Nil(t, s.Alternatives)
	assert.Equal(t, []string{"5", "7"}, s.LinesAtStop)

	s = c.OnStopSelected(s, nil)
	assert.Equal(t, PhaseEmpty, s.Phase)
}

func TestTransitionsDoNotModifyPrevious(t *testing.T) {
	c := NewController(testIndex())

	prev := c.OnStopSelected(c.Reset(), &stopHerzl)
	prevCopy := prev
	prevStop := *prev.Stop

	_ = c.OnLineSelected(prev, "5")
	assert.Equal(t, prevCopy, prev)
	assert.Equal(t, prevStop, *prev.Stop)

	stop := stopAllenby
	s := c.OnStopSelected(c.Reset(), &stop)
	stop.Name = "changed"
	assert.Equal(t, "אלנבי", s.Stop.Name, "the snapshot owns its stop")
}
