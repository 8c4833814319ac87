package complaint

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"kavyashar.org/intake/complaintdb"
)

// Envelope is the flat JSON document stored with a complaint and posted to
// the delivery webhook: reference, submission time, type, personal details
// and the variant's fields at the top level.
func (c *Complaint) Envelope(reference string, submittedAt time.Time) (map[string]any, error) {
	out := map[string]any{}
	if c.Details != nil {
		raw, err := json.Marshal(c.Details)
		if err != nil {
			return nil, fmt.Errorf("error encoding complaint details: %w", err)
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("error flattening complaint details: %w", err)
		}
	}

	maps.Copy(out, map[string]any{
		"referenceNumber": reference,
		"submittedAt":     submittedAt.UTC().Format(time.RFC3339Nano),
		"complaintType":   c.Type,
		"complaintLabel":  c.Type.Label(),
		"personalDetails": c.PersonalDetails,
		"attachments":     attachmentsOrEmpty(c.Attachments),
	})
	return out, nil
}

func attachmentsOrEmpty(a []string) []string {
	if a == nil {
		return []string{}
	}
	return a
}

// Record converts an accepted complaint into the stored row.
func (c *Complaint) Record(reference string, submittedAt time.Time) (complaintdb.Complaint, error) {
	env, err := c.Envelope(reference, submittedAt)
	if err != nil {
		return complaintdb.Complaint{}, err
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return complaintdb.Complaint{}, fmt.Errorf("error encoding complaint payload: %w", err)
	}

	var s summary
	if c.Details != nil {
		s = c.Details.summary()
	}
	pd := c.PersonalDetails
	return complaintdb.Complaint{
		ReferenceNumber: reference,
		Type:            string(c.Type),
		SubmittedAt:     submittedAt,
		FirstName:       pd.FirstName,
		LastName:        pd.LastName,
		IDNumber:        pd.IDNumber,
		Mobile:          pd.Mobile,
		Email:           pd.Email,
		LineNumber:      s.line,
		OperatorID:      s.operator,
		StopCode:        s.stopCode,
		EventDate:       s.date,
		Payload:         payload,
		Status:          complaintdb.StatusNew,
	}, nil
}
