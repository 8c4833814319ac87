package complaint

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	ErrUnknownType = errors.New("unknown complaint type")
	ErrMalformed   = errors.New("malformed complaint")
)

// Complaint is a decoded submission. Details always holds the variant that
// matches Type.
type Complaint struct {
	Type            Type
	PersonalDetails PersonalDetails
	Details         Details
	Attachments     []string
}

type wireComplaint struct {
	Type            Type            `json:"complaintType"`
	PersonalDetails PersonalDetails `json:"personalDetails"`
	Details         json.RawMessage `json:"details"`
	Attachments     []string        `json:"attachments"`
}

// Decode reads {complaintType, personalDetails, details, attachments}.
// Unknown fields inside details are rejected so a payload meant for another
// type does not pass as this one.
func Decode(r io.Reader) (*Complaint, error) {
	var wire wireComplaint
	if err := json.NewDecoder(r).Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if !wire.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, wire.Type)
	}

	details := newDetails(wire.Type)
	if len(wire.Details) > 0 && !bytes.Equal(wire.Details, []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(wire.Details))
		dec.DisallowUnknownFields()
		if err := dec.Decode(details); err != nil {
			return nil, fmt.Errorf("%w: details for %s: %w", ErrMalformed, wire.Type, err)
		}
	}

	return &Complaint{
		Type:            wire.Type,
		PersonalDetails: wire.PersonalDetails,
		Details:         details,
		Attachments:     wire.Attachments,
	}, nil
}

// MarshalJSON writes the same shape Decode reads.
func (c *Complaint) MarshalJSON() ([]byte, error) {
	details, err := json.Marshal(c.Details)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireComplaint{
		Type:            c.Type,
		PersonalDetails: c.PersonalDetails,
		Details:         details,
		Attachments:     c.Attachments,
	})
}
