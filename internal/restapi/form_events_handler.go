package restapi

import (
	"net/http"
	"slices"
	"strings"

	"kavyashar.org/intake/internal/constraint"
	"kavyashar.org/intake/internal/feed"
	"kavyashar.org/intake/internal/models"
)

// FormEvent is one field change of the stop/line section.
type FormEvent struct {
	Type  string `json:"type" validate:"required,oneof=stop line operator alternative reset"`
	Value string `json:"value" validate:"max=64"`
}

// FormEventRequest carries the selection the client holds and the change
// to apply to it. For a stop event Value is the stop code.
type FormEventRequest struct {
	Selection constraint.Selection `json:"selection"`
	Event     FormEvent            `json:"event"`
}

// FormEventResponse is the new snapshot plus the selection to send back
// with the next event. OperatorsStatus is set when a line is chosen but the
// agency table is not ready, so the operator list may be empty or stale.
type FormEventResponse struct {
	constraint.Snapshot
	Selection       constraint.Selection `json:"selection"`
	OperatorsStatus models.Availability  `json:"operatorsStatus,omitempty"`
}

// formEventTables lists the tables replaying sel and applying event read.
// The agency table is left out; only the operator list depends on it.
func formEventTables(sel constraint.Selection, event FormEvent) []feed.TableID {
	var tables []feed.TableID
	add := func(ids ...feed.TableID) {
		for _, id := range ids {
			if !slices.Contains(tables, id) {
				tables = append(tables, id)
			}
		}
	}
	if sel.StopID != "" || event.Type == "stop" {
		add(feed.Stops, feed.StopRoutes)
	}
	if sel.Line != "" || event.Type == "line" {
		add(feed.Routes, feed.StopRoutes, feed.Stops)
	}
	if sel.OperatorID != "" || sel.Alternative != "" || event.Type == "operator" || event.Type == "alternative" {
		add(feed.Routes)
	}
	return tables
}

// formEventHandler applies one field change to the client's selection.
// The selection is replayed against the current index first, so a reload
// between two events can clear stale choices. Nothing is applied until the
// tables the event reads are ready; the client keeps its state and sees why.
func (api *RestAPI) formEventHandler(w http.ResponseWriter, r *http.Request) {
	var req FormEventRequest
	fieldErrors, err := decodeBody(w, r, &req)
	if err != nil {
		api.badRequestResponse(w, r, err.Error())
		return
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	if req.Event.Type == "reset" {
		s := constraint.NewController(nil).Reset()
		api.sendResponse(w, r, models.NewEntryResponse(FormEventResponse{Snapshot: s, Selection: s.Selection()}, models.Ready, api.Clock))
		return
	}

	ix, status := api.snapshot(w, formEventTables(req.Selection, req.Event)...)
	if status != models.Ready {
		api.sendResponse(w, r, models.NewEntryResponse(nil, status, api.Clock))
		return
	}

	c := constraint.NewController(ix)
	var current *feed.Stop
	if id := req.Selection.StopID; id != "" {
		if s, ok := ix.StopByID(id); ok {
			current = &s
		}
	}
	s := c.Restore(req.Selection, current)
	restored := s.Cleared

	value := strings.TrimSpace(req.Event.Value)
	switch req.Event.Type {
	case "stop":
		var picked *feed.Stop
		if stop, ok := ix.StopByCode(value); ok {
			picked = &stop
		}
		s = c.OnStopSelected(s, picked)
	case "line":
		s = c.OnLineSelected(s, value)
	case "operator":
		s = c.OnOperatorSelected(s, value)
	case "alternative":
		s = c.OnAlternativeSelected(s, value)
	}

	for _, f := range restored {
		if !slices.Contains(s.Cleared, f) {
			s.Cleared = append(s.Cleared, f)
		}
	}

	resp := FormEventResponse{Snapshot: s, Selection: s.Selection()}
	if s.Line != "" {
		if operators := models.AvailabilityOf(api.GtfsManager.Availability(feed.Agencies)); operators != models.Ready {
			resp.OperatorsStatus = operators
		}
	}
	api.sendResponse(w, r, models.NewEntryResponse(resp, status, api.Clock))
}
