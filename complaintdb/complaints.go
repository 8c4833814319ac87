package complaintdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Complaint is one persisted submission. Payload holds the full JSON body
// as submitted; the remaining columns are indexed copies for listing.
type Complaint struct {
	ReferenceNumber string    `json:"referenceNumber"`
	Type            string    `json:"complaintType"`
	SubmittedAt     time.Time `json:"submittedAt"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	IDNumber        string    `json:"-"`
	Mobile          string    `json:"mobile"`
	Email           string    `json:"email,omitempty"`
	LineNumber      string    `json:"lineNumber,omitempty"`
	OperatorID      string    `json:"operator,omitempty"`
	StopCode        string    `json:"stationNumber,omitempty"`
	EventDate       string    `json:"eventDate,omitempty"`
	Payload         []byte    `json:"-"`
	Status          string    `json:"status"`
	UpdatedAt       time.Time `json:"updatedAt,omitzero"`
}

// StatusNew is the status of a freshly submitted complaint.
const StatusNew = "new"

// ListParams filters ListComplaints. Search matches the reference number,
// ID number or either name, case-insensitively.
type ListParams struct {
	Type   string
	Search string
	Limit  int
	Offset int
}

const complaintColumns = `reference_number, complaint_type, submitted_at, first_name, last_name,
	id_number, mobile, email, line_number, operator_id, stop_code, event_date, payload, status, updated_at`

func (c *Client) InsertComplaint(ctx context.Context, rec Complaint) error {
	if rec.Status == "" {
		rec.Status = StatusNew
	}
	_, err := c.DB.ExecContext(ctx,
		`INSERT INTO complaints (`+complaintColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		rec.ReferenceNumber,
		rec.Type,
		rec.SubmittedAt.UnixMilli(),
		rec.FirstName,
		rec.LastName,
		rec.IDNumber,
		rec.Mobile,
		toNullString(rec.Email),
		toNullString(rec.LineNumber),
		toNullString(rec.OperatorID),
		toNullString(rec.StopCode),
		toNullString(rec.EventDate),
		string(rec.Payload),
		rec.Status,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrDuplicateReference, rec.ReferenceNumber)
		}
		return fmt.Errorf("error inserting complaint %s: %w", rec.ReferenceNumber, err)
	}
	return nil
}

func (c *Client) GetComplaint(ctx context.Context, ref string) (*Complaint, error) {
	row := c.DB.QueryRowContext(ctx,
		`SELECT `+complaintColumns+` FROM complaints WHERE reference_number = ?`, ref)

	rec, err := scanComplaint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error loading complaint %s: %w", ref, err)
	}
	return rec, nil
}

// ListComplaints returns complaints newest first.
func (c *Client) ListComplaints(ctx context.Context, params ListParams) ([]Complaint, error) {
	limit := params.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	offset := max(params.Offset, 0)

	query := `SELECT ` + complaintColumns + ` FROM complaints`
	var where []string
	args := []any{}
	if params.Type != "" {
		where = append(where, `complaint_type = ?`)
		args = append(args, params.Type)
	}
	if term := strings.TrimSpace(params.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		where = append(where, `(lower(reference_number) LIKE ? OR id_number LIKE ? OR lower(first_name) LIKE ? OR lower(last_name) LIKE ?)`)
		args = append(args, like, like, like, like)
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY submitted_at DESC, reference_number DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing complaints: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []Complaint{}
	for rows.Next() {
		rec, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// UpdateComplaintStatus sets the handling status of a complaint.
func (c *Client) UpdateComplaintStatus(ctx context.Context, ref, status string, at time.Time) error {
	res, err := c.DB.ExecContext(ctx,
		`UPDATE complaints SET status = ?, updated_at = ? WHERE reference_number = ?`,
		status, at.UnixMilli(), ref)
	if err != nil {
		return fmt.Errorf("error updating status of %s: %w", ref, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Client) CountComplaints(ctx context.Context, complaintType string) (int, error) {
	var n int
	var err error
	if complaintType == "" {
		err = c.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM complaints`).Scan(&n)
	} else {
		err = c.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM complaints WHERE complaint_type = ?`, complaintType).Scan(&n)
	}
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComplaint(row rowScanner) (*Complaint, error) {
	var (
		rec                                        Complaint
		submitted                                  int64
		email, line, operator, stopCode, eventDate sql.NullString
		payload                                    string
		updated                                    sql.NullInt64
	)
	err := row.Scan(
		&rec.ReferenceNumber,
		&rec.Type,
		&submitted,
		&rec.FirstName,
		&rec.LastName,
		&rec.IDNumber,
		&rec.Mobile,
		&email,
		&line,
		&operator,
		&stopCode,
		&eventDate,
		&payload,
		&rec.Status,
		&updated,
	)
	if err != nil {
		return nil, err
	}
	rec.SubmittedAt = time.UnixMilli(submitted).UTC()
	rec.Email = email.String
	rec.LineNumber = line.String
	rec.OperatorID = operator.String
	rec.StopCode = stopCode.String
	rec.EventDate = eventDate.String
	rec.Payload = []byte(payload)
	if updated.Valid {
		rec.UpdatedAt = time.UnixMilli(updated.Int64).UTC()
	}
	return &rec, nil
}
