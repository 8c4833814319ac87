// Package clock abstracts the wall clock so the temporal rules of a
// complaint (no future dates, no future times today) can be tested at fixed
// instants and evaluated in the rider's local time zone.
package clock

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Clock provides an abstraction for time operations.
// Use RealClock in production and MockClock in tests.
type Clock interface {
	// Now returns the current time
	Now() time.Time
	// NowUnixMilli returns the current time as Unix milliseconds
	NowUnixMilli() int64
}

// RealClock reads the system clock. When Location is set, Now is expressed
// in that zone so callers can compare local calendar dates directly.
type RealClock struct {
	Location *time.Location
}

func (c RealClock) Now() time.Time {
	now := time.Now()
	if c.Location != nil {
		return now.In(c.Location)
	}
	return now
}

func (RealClock) NowUnixMilli() int64 {
	return time.Now().UnixMilli()
}

// MockClock implements Clock and provides a controllable, thread-safe time for tests.
// Use NewMockClock to create instances.
type MockClock struct {
	currentTime time.Time
	mu          sync.Mutex
}

// NewMockClock creates a new MockClock set to the specified time.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentTime
}

func (m *MockClock) NowUnixMilli() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentTime.UnixMilli()
}

// Set changes the mock clock's current time.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = t
}

// Advance moves the mock clock by the specified duration.
// Use positive durations to move forward, negative to move backward.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}

// PinnedClock lets staging deployments pretend "now" is a fixed local
// instant, read on every call through lookup (normally os.LookupEnv under
// Key). Without a usable value it defers to Base.
type PinnedClock struct {
	Key      string
	Location *time.Location
	Base     Clock
	lookup   func(string) (string, bool)
	warnOnce sync.Once
}

// NewPinnedClock returns a PinnedClock. base defaults to RealClock in loc.
func NewPinnedClock(key string, loc *time.Location, base Clock, lookup func(string) (string, bool)) *PinnedClock {
	if base == nil {
		base = RealClock{Location: loc}
	}
	return &PinnedClock{Key: key, Location: loc, Base: base, lookup: lookup}
}

func (p *PinnedClock) Now() time.Time {
	t, err := p.pinned()
	if err == nil {
		return t
	}
	if p.lookup != nil {
		if raw, ok := p.lookup(p.Key); ok && raw != "" {
			p.warnOnce.Do(func() {
				slog.Warn("pinned clock value unusable, using base clock",
					slog.String("key", p.Key), slog.String("error", err.Error()))
			})
		}
	}
	return p.Base.Now()
}

func (p *PinnedClock) NowUnixMilli() int64 {
	return p.Now().UnixMilli()
}

func (p *PinnedClock) pinned() (time.Time, error) {
	if p.lookup == nil || p.Key == "" {
		return time.Time{}, errors.New("pinned clock not configured")
	}
	raw, ok := p.lookup(p.Key)
	if !ok || strings.TrimSpace(raw) == "" {
		return time.Time{}, errors.New("pinned clock value not set")
	}
	return ParseLocal(raw, p.Location)
}

// ParseLocal accepts RFC3339, or a zone-less date-time / date interpreted
// in loc.
func ParseLocal(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		if loc != nil {
			return t.In(loc), nil
		}
		return t, nil
	}

	if loc == nil {
		return time.Time{}, errors.New("timezone not configured")
	}

	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse time %q: expected RFC3339, YYYY-MM-DD HH:MM[:SS] or YYYY-MM-DD", s)
}
