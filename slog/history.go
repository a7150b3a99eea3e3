package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/lineq"
)

// Ensure LoggingHistoryService implements lineq.HistoryService.
var _ lineq.HistoryService = (*LoggingHistoryService)(nil)

// LoggingHistoryService wraps a HistoryService with debug logging.
type LoggingHistoryService struct {
	next   lineq.HistoryService
	logger *slog.Logger
}

// NewLoggingHistoryService creates a new LoggingHistoryService.
func NewLoggingHistoryService(next lineq.HistoryService, logger *slog.Logger) *LoggingHistoryService {
	return &LoggingHistoryService{next: next, logger: logger}
}

// CreateRecord delegates to the wrapped service and logs the operation.
func (s *LoggingHistoryService) CreateRecord(ctx context.Context, r *lineq.Record) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("history create",
			"id", r.ID,
			"code", r.Code,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateRecord(ctx, r)
}

// FindRecordByID delegates to the wrapped service and logs the operation.
func (s *LoggingHistoryService) FindRecordByID(ctx context.Context, id string) (r *lineq.Record, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("history find",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindRecordByID(ctx, id)
}

// FindRecords delegates to the wrapped service and logs the operation.
func (s *LoggingHistoryService) FindRecords(ctx context.Context, filter lineq.RecordFilter) (records []*lineq.Record, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("history list",
			"count", len(records),
			"limit", filter.Limit,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindRecords(ctx, filter)
}

// DeleteRecord delegates to the wrapped service and logs the operation.
func (s *LoggingHistoryService) DeleteRecord(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("history delete",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteRecord(ctx, id)
}
