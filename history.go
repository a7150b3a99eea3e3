package lineq

import (
	"context"
	"time"
)

// Record is one stored query and its outcome.
type Record struct {
	ID        string     `json:"id"`
	Host      string     `json:"host"`
	Port      int        `json:"port"`
	Mode      SearchMode `json:"mode"`
	Query     string     `json:"query"`
	Body      string     `json:"body"`
	BodyHash  string     `json:"bodyHash"`
	Code      string     `json:"code"`
	Detail    string     `json:"detail"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewRecord captures a finished query. Code and Detail are empty on
// success.
func NewRecord(ep Endpoint, req QueryRequest, o Outcome) *Record {
	r := &Record{
		Host:  ep.Host,
		Port:  ep.Port,
		Mode:  req.Mode,
		Query: req.Text,
		Body:  o.Body,
	}
	if o.Err != nil {
		r.Code = o.Err.Code
		r.Detail = o.Err.Message
	}
	return r
}

// Validate returns an error if the record contains invalid fields.
func (r *Record) Validate() error {
	if r.Host == "" {
		return Errorf(EINVALID, "record host required")
	}
	if !r.Mode.Valid() {
		return Errorf(EINVALID, "record mode %d invalid", r.Mode)
	}
	return nil
}

// Failed reports whether the record holds a client error.
func (r *Record) Failed() bool {
	return r.Code != ""
}

// Endpoint returns the endpoint the query was sent to.
func (r *Record) Endpoint() Endpoint {
	return Endpoint{Host: r.Host, Port: r.Port}
}

// HistoryService represents a service for managing past queries.
type HistoryService interface {
	// CreateRecord stores a new record, assigning its ID and timestamp.
	CreateRecord(ctx context.Context, r *Record) error

	// FindRecordByID retrieves a record by ID.
	// Returns ENOTFOUND if the record does not exist.
	FindRecordByID(ctx context.Context, id string) (*Record, error)

	// FindRecords retrieves records matching the filter, newest first.
	FindRecords(ctx context.Context, filter RecordFilter) ([]*Record, error)

	// DeleteRecord permanently removes a record.
	// Returns ENOTFOUND if the record does not exist.
	DeleteRecord(ctx context.Context, id string) error
}

// RecordFilter represents a filter for FindRecords.
type RecordFilter struct {
	ID   *string `json:"id"`
	Host *string `json:"host"`
	Code *string `json:"code"`

	// FailedOnly restricts results to client errors.
	FailedOnly bool `json:"failedOnly"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
