// Package datetime checks the date and times a rider reports for an event:
// nothing in the future, and a departure after the arrival with rides past
// midnight counted on the next day.
package datetime

import (
	"strconv"
	"strings"
	"time"

	"kavyashar.org/intake/internal/clock"
)

// ErrorKey names a temporal rule violation. The empty key means valid.
type ErrorKey string

const (
	OK                     ErrorKey = ""
	FutureDate             ErrorKey = "FUTURE_DATE"
	FutureTime             ErrorKey = "FUTURE_TIME"
	DepartureBeforeArrival ErrorKey = "DEPARTURE_BEFORE_ARRIVAL"
)

var messages = map[ErrorKey]string{
	FutureDate:             "לא ניתן לבחור תאריך עתידי",
	FutureTime:             "לא ניתן לבחור שעה עתידית",
	DepartureBeforeArrival: "שעת העזיבה חייבת להיות אחרי שעת ההגעה",
}

// Message returns the Hebrew text shown to the rider.
func (k ErrorKey) Message() string {
	return messages[k]
}

const (
	DateLayout = "2006-01-02"

	eveningStart       = 20 * 60
	earlyMorningCutoff = 4 * 60
	minutesPerDay      = 24 * 60
)

// EventDateTime is the temporal part of a complaint. DepartureTime is only
// present for station complaints.
type EventDateTime struct {
	Date          string `json:"eventDate"`
	ArrivalTime   string `json:"arrivalTime"`
	DepartureTime string `json:"departureTime,omitempty"`
}

// Validator evaluates the rules against a clock in one time zone.
type Validator struct {
	Clock    clock.Clock
	Location *time.Location
}

func NewValidator(c clock.Clock, loc *time.Location) *Validator {
	if loc == nil {
		loc = time.Local
	}
	return &Validator{Clock: c, Location: loc}
}

func (v *Validator) now() time.Time {
	return v.Clock.Now().In(v.Location)
}

// Today returns the local date as YYYY-MM-DD.
func (v *Validator) Today() string {
	return v.now().Format(DateLayout)
}

// CurrentTime returns the local wall clock as HH:MM.
func (v *Validator) CurrentTime() string {
	return v.now().Format("15:04")
}

func (v *Validator) parseDate(date string) (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), v.Location)
	return t, err == nil
}

func (v *Validator) midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, v.Location)
}

// IsDateInFuture reports whether date falls on a later calendar day than
// today. Empty or unparseable dates are not in the future.
func (v *Validator) IsDateInFuture(date string) bool {
	d, ok := v.parseDate(date)
	if !ok {
		return false
	}
	return d.After(v.midnight(v.now()))
}

// IsTimeInFuture reports whether date is today and date+tm is after now.
func (v *Validator) IsTimeInFuture(date, tm string) bool {
	d, ok := v.parseDate(date)
	if !ok {
		return false
	}
	now := v.now()
	if !d.Equal(v.midnight(now)) {
		return false
	}
	mins, ok := ParseMinutes(tm)
	if !ok {
		return false
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, mins/60, mins%60, 0, 0, v.Location).After(now)
}

// ParseMinutes converts HH:MM (seconds ignored) to minutes since midnight.
func ParseMinutes(tm string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(tm), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// IsDepartureAfterArrival holds when either time is empty. A departure
// before 04:00 following an arrival from 20:00 on is taken as next-day.
// Unparseable times fail the check.
func IsDepartureAfterArrival(arrival, departure string) bool {
	if strings.TrimSpace(arrival) == "" || strings.TrimSpace(departure) == "" {
		return true
	}
	a, ok := ParseMinutes(arrival)
	if !ok {
		return false
	}
	d, ok := ParseMinutes(departure)
	if !ok {
		return false
	}
	if a >= eveningStart && d < earlyMorningCutoff {
		d += minutesPerDay
	}
	return d > a
}

// Validate returns the first violated rule, checking the date, then the
// arrival time, then the departure time, then their order.
func (v *Validator) Validate(e EventDateTime) ErrorKey {
	switch {
	case v.IsDateInFuture(e.Date):
		return FutureDate
	case v.IsTimeInFuture(e.Date, e.ArrivalTime):
		return FutureTime
	case v.IsTimeInFuture(e.Date, e.DepartureTime):
		return FutureTime
	case !IsDepartureAfterArrival(e.ArrivalTime, e.DepartureTime):
		return DepartureBeforeArrival
	}
	return OK
}
