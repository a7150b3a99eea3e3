package batch

import (
	"context"
	"sync"

	"github.com/fwojciec/lineq"
	"golang.org/x/time/rate"
)

var _ lineq.EndpointLimiter = (*AddressLimiter)(nil)

// AddressLimiter paces queries per endpoint address. Every address has its
// own token bucket with a burst of 1, so a slow server never holds back
// queries to another one.
type AddressLimiter struct {
	limit   rate.Limit
	buckets sync.Map // address -> *rate.Limiter
}

// NewAddressLimiter allows rps queries per second to each address. A
// non-positive rps means no limit.
func NewAddressLimiter(rps float64) *AddressLimiter {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &AddressLimiter{limit: limit}
}

// Wait blocks until a query to address may start. It fails when ctx ends
// first or when the wait would outlast the ctx deadline.
func (l *AddressLimiter) Wait(ctx context.Context, address string) error {
	return l.bucket(address).Wait(ctx)
}

func (l *AddressLimiter) bucket(address string) *rate.Limiter {
	if b, ok := l.buckets.Load(address); ok {
		return b.(*rate.Limiter)
	}
	b, _ := l.buckets.LoadOrStore(address, rate.NewLimiter(l.limit, 1))
	return b.(*rate.Limiter)
}
