package lineq

import "context"

// QueryRequest is one query to send to the search service.
// Text is trimmed before transmission; empty text is legal.
type QueryRequest struct {
	Text string     `json:"text"`
	Mode SearchMode `json:"mode"`
}

// Querier runs queries against a single endpoint.
type Querier interface {
	// Query sends the request and returns the server's reply body.
	// Every failure is a *Error carrying one of the client error codes.
	Query(ctx context.Context, req QueryRequest) (body string, err error)
}
