package models

import (
	"encoding/json"

	"kavyashar.org/intake/complaintdb"
	"kavyashar.org/intake/internal/complaint"
)

// ComplaintReceipt is returned to the rider after a successful submission.
type ComplaintReceipt struct {
	ReferenceNumber string `json:"referenceNumber"`
	SubmittedAt     int64  `json:"submittedAt"`
	ComplaintType   string `json:"complaintType"`
	Label           string `json:"label"`
}

// ComplaintStatus is what a rider may look up by reference number.
type ComplaintStatus struct {
	ReferenceNumber string `json:"referenceNumber"`
	ComplaintType   string `json:"complaintType"`
	Label           string `json:"label"`
	SubmittedAt     int64  `json:"submittedAt"`
	Status          string `json:"status"`
}

func NewComplaintStatus(c complaintdb.Complaint) ComplaintStatus {
	return ComplaintStatus{
		ReferenceNumber: c.ReferenceNumber,
		ComplaintType:   c.Type,
		Label:           complaint.Type(c.Type).Label(),
		SubmittedAt:     c.SubmittedAt.UnixMilli(),
		Status:          c.Status,
	}
}

// ComplaintSummary is one row of the admin listing. The ID number is never
// included.
type ComplaintSummary struct {
	ReferenceNumber string `json:"referenceNumber"`
	ComplaintType   string `json:"complaintType"`
	Label           string `json:"label"`
	SubmittedAt     int64  `json:"submittedAt"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Mobile          string `json:"mobile"`
	Email           string `json:"email,omitempty"`
	LineNumber      string `json:"lineNumber,omitempty"`
	Operator        string `json:"operator,omitempty"`
	StationNumber   string `json:"stationNumber,omitempty"`
	EventDate       string `json:"eventDate,omitempty"`
	Status          string `json:"status"`
	UpdatedAt       int64  `json:"updatedAt,omitempty"`
}

// NewComplaintSummary converts a stored complaint to its listing model.
func NewComplaintSummary(c complaintdb.Complaint) ComplaintSummary {
	out := ComplaintSummary{
		ReferenceNumber: c.ReferenceNumber,
		ComplaintType:   c.Type,
		Label:           complaint.Type(c.Type).Label(),
		SubmittedAt:     c.SubmittedAt.UnixMilli(),
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		Mobile:          c.Mobile,
		Email:           c.Email,
		LineNumber:      c.LineNumber,
		Operator:        c.OperatorID,
		StationNumber:   c.StopCode,
		EventDate:       c.EventDate,
		Status:          c.Status,
	}
	if !c.UpdatedAt.IsZero() {
		out.UpdatedAt = c.UpdatedAt.UnixMilli()
	}
	return out
}

// ComplaintDetail adds the full submitted document to the summary.
type ComplaintDetail struct {
	ComplaintSummary
	Payload json.RawMessage `json:"payload"`
}

func NewComplaintDetail(c complaintdb.Complaint) ComplaintDetail {
	payload := json.RawMessage(c.Payload)
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	return ComplaintDetail{ComplaintSummary: NewComplaintSummary(c), Payload: payload}
}

// ComplaintType is one entry of the type picker.
type ComplaintType struct {
	Value        string `json:"value"`
	Label        string `json:"label"`
	StationBased bool   `json:"stationBased"`
}

func NewComplaintTypes() []ComplaintType {
	types := complaint.Types()
	out := make([]ComplaintType, 0, len(types))
	for _, t := range types {
		out = append(out, ComplaintType{Value: string(t), Label: t.Label(), StationBased: t.StationBased()})
	}
	return out
}
