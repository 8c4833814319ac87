package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrFeedUnavailable means the table could not be fetched or read.
	ErrFeedUnavailable = errors.New("feed unavailable")
	// ErrFeedMalformed means the table has no header and data rows.
	ErrFeedMalformed = errors.New("feed malformed")
)

// TableError ties a load failure to its table. It unwraps to
// ErrFeedUnavailable or ErrFeedMalformed plus the underlying cause.
type TableError struct {
	Table TableID
	Kind  error
	Err   error
}

func (e *TableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Table, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Table, e.Kind, e.Err)
}

func (e *TableError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func unavailable(table TableID, err error) error {
	return &TableError{Table: table, Kind: ErrFeedUnavailable, Err: err}
}

func malformed(table TableID, err error) error {
	return &TableError{Table: table, Kind: ErrFeedMalformed, Err: err}
}

// Reason returns a short label for metrics: "unavailable", "malformed" or
// "other".
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrFeedUnavailable):
		return "unavailable"
	case errors.Is(err, ErrFeedMalformed):
		return "malformed"
	default:
		return "other"
	}
}
