package mock

import (
	"context"

	"github.com/fwojciec/lineq"
)

var _ lineq.HistoryService = (*HistoryService)(nil)

// HistoryService is a mock implementation of lineq.HistoryService.
type HistoryService struct {
	CreateRecordFn   func(ctx context.Context, r *lineq.Record) error
	FindRecordByIDFn func(ctx context.Context, id string) (*lineq.Record, error)
	FindRecordsFn    func(ctx context.Context, filter lineq.RecordFilter) ([]*lineq.Record, error)
	DeleteRecordFn   func(ctx context.Context, id string) error
}

func (s *HistoryService) CreateRecord(ctx context.Context, r *lineq.Record) error {
	return s.CreateRecordFn(ctx, r)
}

func (s *HistoryService) FindRecordByID(ctx context.Context, id string) (*lineq.Record, error) {
	return s.FindRecordByIDFn(ctx, id)
}

func (s *HistoryService) FindRecords(ctx context.Context, filter lineq.RecordFilter) ([]*lineq.Record, error) {
	return s.FindRecordsFn(ctx, filter)
}

func (s *HistoryService) DeleteRecord(ctx context.Context, id string) error {
	return s.DeleteRecordFn(ctx, id)
}
