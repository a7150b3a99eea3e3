package tcp

import (
	"context"
	"net"
	"time"

	"github.com/fwojciec/lineq"
)

// Ensure Client implements lineq.Querier at compile time.
var _ lineq.Querier = (*Client)(nil)

// Client sends queries to one endpoint. Every call to Query opens its own
// connection, so a Client may be shared between goroutines.
type Client struct {
	endpoint    lineq.Endpoint
	dialer      Dialer
	dialTimeout time.Duration
	ioTimeout   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithDialer replaces the dialer used to open connections.
func WithDialer(d Dialer) Option {
	return func(c *Client) {
		c.dialer = d
	}
}

// WithDialTimeout bounds connection establishment. Zero means no limit.
// Ignored when a custom dialer is supplied.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.dialTimeout = d
	}
}

// WithIOTimeout bounds each line read or write. Zero means no limit.
func WithIOTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.ioTimeout = d
	}
}

// NewClient creates a Client for the endpoint.
func NewClient(ep lineq.Endpoint, opts ...Option) *Client {
	c := &Client{endpoint: ep}
	for _, opt := range opts {
		opt(c)
	}
	if c.dialer == nil {
		c.dialer = &net.Dialer{Timeout: c.dialTimeout}
	}
	return c
}

// Endpoint returns the endpoint the client talks to.
func (c *Client) Endpoint() lineq.Endpoint {
	return c.endpoint
}

// Query runs one request/response exchange. The connection is closed
// before Query returns, whatever the result.
func (c *Client) Query(ctx context.Context, req lineq.QueryRequest) (string, error) {
	s, err := Open(ctx, c.dialer, c.endpoint)
	if err != nil {
		return "", err
	}
	defer s.Close()
	s.ioTimeout = c.ioTimeout

	if err := writeRequest(s, req); err != nil {
		if peerHungUp(err) {
			return "", errSilent(err)
		}
		return "", classifyIO(err)
	}

	body, terminated, err := collectResponse(s)
	if err != nil {
		return "", classifyIO(err)
	}
	if body == "" && !terminated {
		return "", errSilent(nil)
	}

	// Acknowledgments are best effort and never change the result.
	if body != "" {
		_ = s.WriteLine(AckReceived)
		return body, nil
	}
	_ = s.WriteLine(AckMissing)
	return "", errSilent(nil)
}

// QueryServer runs a single query against ep and returns its outcome.
// The mode defaults to lineq.FullScan.
func QueryServer(ctx context.Context, ep lineq.Endpoint, query string, mode ...lineq.SearchMode) lineq.Outcome {
	m := lineq.FullScan
	if len(mode) > 0 {
		m = mode[0]
	}
	body, err := NewClient(ep).Query(ctx, lineq.QueryRequest{Text: query, Mode: m})
	return lineq.NewOutcome(body, err)
}
