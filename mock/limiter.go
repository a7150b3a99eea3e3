package mock

import (
	"context"

	"github.com/fwojciec/lineq"
)

var _ lineq.EndpointLimiter = (*EndpointLimiter)(nil)

// EndpointLimiter is a mock implementation of lineq.EndpointLimiter.
type EndpointLimiter struct {
	WaitFn func(ctx context.Context, address string) error
}

func (l *EndpointLimiter) Wait(ctx context.Context, address string) error {
	return l.WaitFn(ctx, address)
}
