package restapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"kavyashar.org/intake/complaintdb"
	"kavyashar.org/intake/internal/complaint"
	"kavyashar.org/intake/internal/logging"
	"kavyashar.org/intake/internal/models"
)

// referenceAttempts bounds the retries when two submissions land in the
// same millisecond.
const referenceAttempts = 5

// submitComplaintHandler decodes, validates, stores and forwards one
// complaint. The response status tells the form whether the feed
// cross-checks ran.
func (api *RestAPI) submitComplaintHandler(w http.ResponseWriter, r *http.Request) {
	logger := api.requestLogger(r)
	c, err := complaint.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	switch {
	case errors.Is(err, complaint.ErrUnknownType):
		api.validationErrorResponse(w, r, map[string][]string{"complaintType": {"יש לבחור סוג תלונה"}})
		return
	case err != nil:
		api.badRequestResponse(w, r, err.Error())
		return
	}

	fieldErrors, state := api.ComplaintValidator.Validate(c)
	if api.Locations != nil && !fieldErrors.Has("personalDetails.city") &&
		!api.Locations.IsKnownCity(r.Context(), c.PersonalDetails.City) {
		fieldErrors.Add("personalDetails.city", "יש לבחור עיר מהרשימה")
	}
	if len(fieldErrors) > 0 {
		api.Metrics.ObserveComplaint(string(c.Type), false)
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	submittedAt := api.Clock.Now()
	var rec complaintdb.Complaint
	for attempt := range referenceAttempts {
		ref := complaint.ReferenceAt(submittedAt.UnixMilli() + int64(attempt))
		rec, err = c.Record(ref, submittedAt)
		if err != nil {
			api.serverErrorResponse(w, r, err)
			return
		}
		err = api.ComplaintDB.InsertComplaint(r.Context(), rec)
		if !errors.Is(err, complaintdb.ErrDuplicateReference) {
			break
		}
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	api.Metrics.ObserveComplaint(string(c.Type), true)
	logging.LogOperation(logger, "complaint_accepted",
		slog.String("reference", rec.ReferenceNumber),
		slog.String("type", string(c.Type)),
		slog.String("feed_status", string(state)))

	if api.Webhook != nil {
		envelope, err := c.Envelope(rec.ReferenceNumber, submittedAt)
		if err != nil {
			logging.LogError(logger, "failed to build webhook payload", err,
				slog.String("reference", rec.ReferenceNumber))
		} else {
			api.Webhook.SendAsync(rec.ReferenceNumber, envelope)
		}
	}

	receipt := models.ComplaintReceipt{
		ReferenceNumber: rec.ReferenceNumber,
		SubmittedAt:     submittedAt.UnixMilli(),
		ComplaintType:   string(c.Type),
		Label:           c.Type.Label(),
	}
	noStore(w)
	api.writeJSON(w, r, http.StatusCreated, models.NewEntryResponse(receipt, models.AvailabilityOf(state), api.Clock))
}

// complaintStatusHandler lets a rider look up the handling status of a
// complaint by its reference number. Personal details are never returned.
func (api *RestAPI) complaintStatusHandler(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(r.PathValue("ref"))
	if !complaint.IsReference(ref) {
		api.sendNotFound(w, r)
		return
	}
	rec, err := api.ComplaintDB.GetComplaint(r.Context(), ref)
	if errors.Is(err, complaintdb.ErrNotFound) {
		api.sendNotFound(w, r)
		return
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}
	noStore(w)
	api.sendResponse(w, r, models.NewEntryResponse(models.NewComplaintStatus(*rec), "", api.Clock))
}
