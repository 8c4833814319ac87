package datetime

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kavyashar.org/intake/internal/clock"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jerusalem")
	require.NoError(t, err)
	// 2025-05-01 14:30 local.
	return NewValidator(clock.NewMockClock(time.Date(2025, 5, 1, 14, 30, 0, 0, loc)), loc)
}

func TestIsDateInFuture(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		date     string
		expected bool
	}{
		{"2025-05-02", true},
		{"2026-01-01", true},
		{"2025-05-01", false},
		{"2025-04-30", false},
		{"", false},
		{"01/05/2025", false},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.expected, v.IsDateInFuture(tt.date))
		})
	}
}

func TestIsDateInFutureUsesLocalCalendar(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	require.NoError(t, err)
	// 23:30 UTC on April 30 is already May 1 in Jerusalem.
	v := NewValidator(clock.NewMockClock(time.Date(2025, 4, 30, 23, 30, 0, 0, time.UTC)), loc)

	assert.False(t, v.IsDateInFuture("2025-05-01"))
	assert.Equal(t, "2025-05-01", v.Today())
	assert.Equal(t, "02:30", v.CurrentTime())
}

func TestIsTimeInFuture(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name     string
		date     string
		tm       string
		expected bool
	}{
		{"later today", "2025-05-01", "15:00", true},
		{"earlier today", "2025-05-01", "14:00", false},
		{"this minute", "2025-05-01", "14:30", false},
		{"other day ignores time", "2025-04-30", "23:59", false},
		{"future day ignores time", "2025-05-02", "23:59", false},
		{"seconds tolerated", "2025-05-01", "14:31:00", true},
		{"empty time", "2025-05-01", "", false},
		{"empty date", "", "15:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, v.IsTimeInFuture(tt.date, tt.tm))
		})
	}
}

func TestIsDepartureAfterArrival(t *testing.T) {
	tests := []struct {
		arrival   string
		departure string
		expected  bool
	}{
		{"23:30", "00:15", true},
		{"10:00", "09:59", false},
		{"14:00", "15:00", true},
		{"14:00", "14:00", false},
		{"20:00", "03:59", true},
		{"19:59", "03:59", false},
		{"20:00", "04:00", false},
		{"", "09:00", true},
		{"09:00", "", true},
		{"9am", "10:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.arrival+"-"+tt.departure, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDepartureAfterArrival(tt.arrival, tt.departure))
		})
	}
}

func TestValidateOrder(t *testing.T) {
	v := newTestValidator(t)

	tests := []struct {
		name     string
		in       EventDateTime
		expected ErrorKey
	}{
		{"valid", EventDateTime{Date: "2025-05-01", ArrivalTime: "10:00", DepartureTime: "10:20"}, OK},
		{"future date wins over everything", EventDateTime{Date: "2025-05-03", ArrivalTime: "10:00", DepartureTime: "09:00"}, FutureDate},
		{"future arrival", EventDateTime{Date: "2025-05-01", ArrivalTime: "16:00", DepartureTime: "15:00"}, FutureTime},
		{"future departure", EventDateTime{Date: "2025-05-01", ArrivalTime: "14:00", DepartureTime: "15:00"}, FutureTime},
		{"departure before arrival", EventDateTime{Date: "2025-04-28", ArrivalTime: "10:00", DepartureTime: "09:00"}, DepartureBeforeArrival},
		{"overnight ride yesterday", EventDateTime{Date: "2025-04-30", ArrivalTime: "23:30", DepartureTime: "00:15"}, OK},
		{"no departure", EventDateTime{Date: "2025-05-01", ArrivalTime: "09:00"}, OK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, v.Validate(tt.in))
		})
	}
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "לא ניתן לבחור תאריך עתידי", FutureDate.Message())
	assert.Equal(t, "לא ניתן לבחור שעה עתידית", FutureTime.Message())
	assert.Equal(t, "שעת העזיבה חייבת להיות אחרי שעת ההגעה", DepartureBeforeArrival.Message())
	assert.Equal(t, "", OK.Message())
}
