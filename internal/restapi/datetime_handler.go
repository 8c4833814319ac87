package restapi

import (
	"net/http"

	"kavyashar.org/intake/internal/datetime"
	"kavyashar.org/intake/internal/models"
)

// DateTimeCheck is the outcome of validating an event date and times.
type DateTimeCheck struct {
	Valid       bool              `json:"valid"`
	ErrorKey    datetime.ErrorKey `json:"errorKey,omitempty"`
	Message     string            `json:"message,omitempty"`
	Today       string            `json:"today"`
	CurrentTime string            `json:"currentTime"`
}

func (api *RestAPI) validateDateTimeHandler(w http.ResponseWriter, r *http.Request) {
	var req datetime.EventDateTime
	fieldErrors, err := decodeBody(w, r, &req)
	if err != nil {
		api.badRequestResponse(w, r, err.Error())
		return
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	key := api.Temporal.Validate(req)
	noStore(w)
	api.sendResponse(w, r, models.NewOKResponse(DateTimeCheck{
		Valid:       key == datetime.OK,
		ErrorKey:    key,
		Message:     key.Message(),
		Today:       api.Temporal.Today(),
		CurrentTime: api.Temporal.CurrentTime(),
	}, api.Clock))
}
