// Package slog provides log/slog decorators for lineq services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/lineq"
	"github.com/google/uuid"
)

// Ensure LoggingQuerier implements lineq.Querier.
var _ lineq.Querier = (*LoggingQuerier)(nil)

// LoggingQuerier wraps a Querier with logging of every query.
type LoggingQuerier struct {
	next     lineq.Querier
	endpoint lineq.Endpoint
	logger   *slog.Logger
}

// NewLoggingQuerier creates a new LoggingQuerier. The endpoint is only
// used as a log attribute.
func NewLoggingQuerier(next lineq.Querier, endpoint lineq.Endpoint, logger *slog.Logger) *LoggingQuerier {
	return &LoggingQuerier{next: next, endpoint: endpoint, logger: logger}
}

// Query delegates to the wrapped querier and logs the exchange.
func (q *LoggingQuerier) Query(ctx context.Context, req lineq.QueryRequest) (body string, err error) {
	id := uuid.NewString()
	q.logger.Debug("query start",
		"id", id,
		"endpoint", q.endpoint.Address(),
		"mode", req.Mode.String(),
	)
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelWarn
		}
		q.logger.Log(ctx, level, "query",
			"id", id,
			"endpoint", q.endpoint.Address(),
			"mode", req.Mode.String(),
			"bytes", len(body),
			"code", lineq.ErrorCode(err),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return q.next.Query(ctx, req)
}
