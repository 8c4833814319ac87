package constraint

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"kavyashar.org/intake/internal/feed"
	"kavyashar.org/intake/internal/gtfs"
)

const (
	DefaultStopCodeDelay = 300 * time.Millisecond
	DefaultSearchDelay   = 500 * time.Millisecond
	MinStopCodeLength    = 3
)

// Source hands out the current index with the load state of the tables a
// query needs. *gtfs.Manager satisfies it.
type Source interface {
	Snapshot(tables ...feed.TableID) (*gtfs.Index, gtfs.LoadState)
}

// LookupStatus is the outcome of a debounced stop-code lookup.
type LookupStatus string

const (
	LookupFound       LookupStatus = "found"
	LookupNotFound    LookupStatus = "not_found"
	LookupLoading     LookupStatus = "loading"
	LookupUnavailable LookupStatus = "unavailable"
	LookupCleared     LookupStatus = "cleared"
)

type StopLookup struct {
	Code     string       `json:"code"`
	Status   LookupStatus `json:"status"`
	Stop     *feed.Stop   `json:"stop,omitempty"`
	Snapshot Snapshot     `json:"snapshot"`
}

type SearchResult struct {
	Query  string       `json:"query"`
	Status LookupStatus `json:"status"`
	Stops  []feed.Stop  `json:"stops"`
}

type SessionOptions struct {
	StopCodeDelay time.Duration
	SearchDelay   time.Duration
	SearchLimit   int
	// OnStopLookup and OnSearch receive results that were not superseded.
	// They run on timer goroutines and must not call back into the Session.
	OnStopLookup func(StopLookup)
	OnSearch     func(SearchResult)
}

// Session holds the state of one form section for its lifetime. Field
// selections apply synchronously; stop-code lookups and name searches are
// debounced and the result of a superseded or closed lookup is discarded.
type Session struct {
	source Source
	opts   SessionOptions
	logger *slog.Logger

	mu       sync.Mutex
	snapshot Snapshot

	stopCode *debouncer
	search   *debouncer
}

func NewSession(source Source, opts SessionOptions) *Session {
	if opts.StopCodeDelay <= 0 {
		opts.StopCodeDelay = DefaultStopCodeDelay
	}
	if opts.SearchDelay <= 0 {
		opts.SearchDelay = DefaultSearchDelay
	}
	return &Session{
		source:   source,
		opts:     opts,
		logger:   slog.Default().With(slog.String("component", "form_session")),
		snapshot: Snapshot{Phase: PhaseEmpty},
		stopCode: newDebouncer(opts.StopCodeDelay),
		search:   newDebouncer(opts.SearchDelay),
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// update applies a controller transition built on the current index.
func (s *Session) update(fn func(*Controller, Snapshot) Snapshot) Snapshot {
	index, _ := s.source.Snapshot()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = fn(NewController(index), s.snapshot)
	return s.snapshot
}

// TypeStopCode reacts to a keystroke in the stop-code field. Codes shorter
// than three characters clear the stop at once; longer codes are looked up
// after the debounce delay.
func (s *Session) TypeStopCode(code string) {
	code = strings.TrimSpace(code)
	if len(code) < MinStopCodeLength {
		s.stopCode.invalidate()
		snap := s.update(func(c *Controller, prev Snapshot) Snapshot {
			if prev.Stop == nil {
				return prev
			}
			return c.OnStopSelected(prev, nil)
		})
		s.emitStop(StopLookup{Code: code, Status: LookupCleared, Snapshot: snap})
		return
	}

	s.stopCode.schedule(func(ctx context.Context, gen uint64) {
		if ctx.Err() != nil {
			return
		}
		index, state := s.source.Snapshot(feed.Stops)
		result := StopLookup{Code: code}

		var stop *feed.Stop
		switch state {
		case gtfs.StateLoading:
			result.Status = LookupLoading
		case gtfs.StateFailed:
			result.Status = LookupUnavailable
		default:
			if found, ok := index.StopByCode(code); ok {
				stop = &found
				result.Status = LookupFound
				result.Stop = stop
			} else {
				result.Status = LookupNotFound
			}
		}

		s.stopCode.deliver(gen, func() {
			s.mu.Lock()
			s.snapshot = NewController(index).OnStopSelected(s.snapshot, stop)
			result.Snapshot = s.snapshot
			s.mu.Unlock()
			s.emitStop(result)
		})
	})
}

// SearchStops reacts to a keystroke in the stop-name search box.
func (s *Session) SearchStops(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		s.search.invalidate()
		s.emitSearch(SearchResult{Query: query, Status: LookupCleared, Stops: []feed.Stop{}})
		return
	}

	s.search.schedule(func(ctx context.Context, gen uint64) {
		if ctx.Err() != nil {
			return
		}
		index, state := s.source.Snapshot(feed.Stops)
		result := SearchResult{Query: query, Stops: []feed.Stop{}}
		switch state {
		case gtfs.StateLoading:
			result.Status = LookupLoading
		case gtfs.StateFailed:
			result.Status = LookupUnavailable
		default:
			result.Stops = index.SearchStops(query, s.opts.SearchLimit)
			result.Status = LookupFound
			if len(result.Stops) == 0 {
				result.Status = LookupNotFound
			}
		}
		s.search.deliver(gen, func() { s.emitSearch(result) })
	})
}

// SelectStop applies a stop picked from search results or the map.
func (s *Session) SelectStop(stop *feed.Stop) Snapshot {
	s.stopCode.invalidate()
	return s.update(func(c *Controller, prev Snapshot) Snapshot { return c.OnStopSelected(prev, stop) })
}

func (s *Session) SelectLine(line string) Snapshot {
	return s.update(func(c *Controller, prev Snapshot) Snapshot { return c.OnLineSelected(prev, line) })
}

func (s *Session) SelectOperator(operatorID string) Snapshot {
	return s.update(func(c *Controller, prev Snapshot) Snapshot { return c.OnOperatorSelected(prev, operatorID) })
}

func (s *Session) SelectAlternative(value string) Snapshot {
	return s.update(func(c *Controller, prev Snapshot) Snapshot { return c.OnAlternativeSelected(prev, value) })
}

func (s *Session) Reset() Snapshot {
	s.stopCode.invalidate()
	s.search.invalidate()
	return s.update(func(c *Controller, _ Snapshot) Snapshot { return c.Reset() })
}

// Close cancels pending lookups. Results arriving afterwards are dropped.
func (s *Session) Close() {
	s.stopCode.close()
	s.search.close()
}

func (s *Session) emitStop(r StopLookup) {
	if s.opts.OnStopLookup != nil {
		s.opts.OnStopLookup(r)
	}
	s.logger.Debug("stop lookup", slog.String("code", r.Code), slog.String("status", string(r.Status)))
}

func (s *Session) emitSearch(r SearchResult) {
	if s.opts.OnSearch != nil {
		s.opts.OnSearch(r)
	}
}
