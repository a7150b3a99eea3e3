package mock

import (
	"context"

	"github.com/fwojciec/lineq"
)

var _ lineq.Querier = (*Querier)(nil)

// Querier is a mock implementation of lineq.Querier.
type Querier struct {
	QueryFn func(ctx context.Context, req lineq.QueryRequest) (string, error)
}

func (q *Querier) Query(ctx context.Context, req lineq.QueryRequest) (string, error) {
	return q.QueryFn(ctx, req)
}
