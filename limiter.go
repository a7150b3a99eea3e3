package lineq

import "context"

// EndpointLimiter paces requests per endpoint address.
type EndpointLimiter interface {
	// Wait blocks until a request to the address is allowed.
	// Returns an error if the context is canceled first.
	Wait(ctx context.Context, address string) error
}
