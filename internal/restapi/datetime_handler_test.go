package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kavyashar.org/intake/internal/datetime"
)

func TestValidateDateTimeHandler(t *testing.T) {
	env := createTestEnv(t)

	tests := []struct {
		name     string
		body     map[string]string
		valid    bool
		errorKey datetime.ErrorKey
	}{
		{"past event", map[string]string{"eventDate": "2025-05-01", "arrivalTime": "09:30", "departureTime": "09:45"}, true, datetime.OK},
		{"tomorrow", map[string]string{"eventDate": "2025-05-02", "arrivalTime": "09:30"}, false, datetime.FutureDate},
		{"later today", map[string]string{"eventDate": "2025-05-01", "arrivalTime": "11:00"}, false, datetime.FutureTime},
		{"departure before arrival", map[string]string{"eventDate": "2025-04-30", "arrivalTime": "10:00", "departureTime": "09:00"}, false, datetime.DepartureBeforeArrival},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, model := env.post(t, "/api/datetime/validate", tt.body)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, noStoreValue, resp.Header.Get("Cache-Control"))

			entry := dataMap(t, model)
			assert.Equal(t, tt.valid, entry["valid"])
			assert.Equal(t, "2025-05-01", entry["today"])
			assert.Equal(t, "10:00", entry["currentTime"])
			if tt.valid {
				assert.NotContains(t, entry, "errorKey")
				return
			}
			assert.Equal(t, string(tt.errorKey), entry["errorKey"])
			assert.Equal(t, tt.errorKey.Message(), entry["message"])
		})
	}
}

func TestValidateDateTimeHandlerRejectsUnknownFields(t *testing.T) {
	env := createTestEnv(t)

	resp, model := env.post(t, "/api/datetime/validate", `{"eventDate":"2025-05-01","when":"now"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, http.StatusBadRequest, model.Code)
}
