package models

import (
	"kavyashar.org/intake/internal/clock"
	"kavyashar.org/intake/internal/gtfs"
)

const apiVersion = 2

// ResponseModel is the envelope of every JSON response.
type ResponseModel struct {
	Code        int    `json:"code"`
	CurrentTime int64  `json:"currentTime"`
	Data        any    `json:"data,omitempty"`
	Text        string `json:"text"`
	Version     int    `json:"version"`
}

// Availability tells the form whether an empty answer means "not found" or
// "not loaded yet".
type Availability string

const (
	Loading     Availability = "loading"
	Ready       Availability = "ready"
	Unavailable Availability = "unavailable"
)

func AvailabilityOf(state gtfs.LoadState) Availability {
	switch state {
	case gtfs.StateReady:
		return Ready
	case gtfs.StateFailed:
		return Unavailable
	default:
		return Loading
	}
}

type EntryData struct {
	Entry  any          `json:"entry"`
	Status Availability `json:"status,omitempty"`
}

type ListData struct {
	List          any          `json:"list"`
	LimitExceeded bool         `json:"limitExceeded"`
	Status        Availability `json:"status,omitempty"`
}

func ResponseCurrentTime(c clock.Clock) int64 {
	if c == nil {
		return 0
	}
	return c.NowUnixMilli()
}

func NewOKResponse(data any, c clock.Clock) ResponseModel {
	return ResponseModel{
		Code:        200,
		CurrentTime: ResponseCurrentTime(c),
		Data:        data,
		Text:        "OK",
		Version:     apiVersion,
	}
}

func NewEntryResponse(entry any, status Availability, c clock.Clock) ResponseModel {
	return NewOKResponse(EntryData{Entry: entry, Status: status}, c)
}

func NewListResponse(list any, limitExceeded bool, status Availability, c clock.Clock) ResponseModel {
	return NewOKResponse(ListData{List: list, LimitExceeded: limitExceeded, Status: status}, c)
}

func NewErrorResponse(code int, text string, data any, c clock.Clock) ResponseModel {
	return ResponseModel{
		Code:        code,
		CurrentTime: ResponseCurrentTime(c),
		Data:        data,
		Text:        text,
		Version:     apiVersion,
	}
}
