package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/lineq"
	"github.com/fwojciec/lineq/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func newRecord(host, query, body, code string) *lineq.Record {
	return &lineq.Record{
		Host:  host,
		Port:  8080,
		Mode:  lineq.QuickScan,
		Query: query,
		Body:  body,
		Code:  code,
	}
}

func TestHistoryService_CreateRecord(t *testing.T) {
	t.Parallel()

	t.Run("creates record with generated ID, timestamp and hash", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewHistoryService(setupTestDB(t))
		r := newRecord("localhost", "capital of France", "Paris\n", "")

		err := svc.CreateRecord(context.Background(), r)
		require.NoError(t, err)

		assert.NotEmpty(t, r.ID, "ID should be generated")
		assert.False(t, r.CreatedAt.IsZero(), "CreatedAt should be set")
		assert.Len(t, r.BodyHash, 16)
	})

	t.Run("same body hashes the same", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewHistoryService(setupTestDB(t))
		a := newRecord("localhost", "a", "same\n", "")
		b := newRecord("localhost", "b", "same\n", "")
		require.NoError(t, svc.CreateRecord(context.Background(), a))
		require.NoError(t, svc.CreateRecord(context.Background(), b))

		assert.Equal(t, a.BodyHash, b.BodyHash)
	})

	t.Run("returns error for invalid record", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewHistoryService(setupTestDB(t))

		err := svc.CreateRecord(context.Background(), &lineq.Record{})
		require.Error(t, err)
		assert.Equal(t, lineq.EINVALID, lineq.ErrorCode(err))
	})
}

func TestHistoryService_FindRecordByID(t *testing.T) {
	t.Parallel()

	t.Run("returns stored record", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewHistoryService(setupTestDB(t))
		ctx := context.Background()
		created := newRecord("localhost", "x", "", lineq.ESERVERSILENT)
		created.Detail = lineq.MessageServerSilent
		require.NoError(t, svc.CreateRecord(ctx, created))

		found, err := svc.FindRecordByID(ctx, created.ID)
		require.NoError(t, err)

		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, "localhost", found.Host)
		assert.Equal(t, 8080, found.Port)
		assert.Equal(t, lineq.QuickScan, found.Mode)
		assert.Equal(t, "x", found.Query)
		assert.Equal(t, lineq.ESERVERSILENT, found.Code)
		assert.Equal(t, lineq.MessageServerSilent, found.Detail)
		assert.True(t, created.CreatedAt.Equal(found.CreatedAt))
	})

	t.Run("returns ENOTFOUND when not found", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewHistoryService(setupTestDB(t))

		_, err := svc.FindRecordByID(context.Background(), "nonexistent-id")
		require.Error(t, err)
		assert.Equal(t, lineq.ENOTFOUND, lineq.ErrorCode(err))
	})
}

func TestHistoryService_FindRecords(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T, svc *sqlite.HistoryService) {
		t.Helper()
		ctx := context.Background()
		require.NoError(t, svc.CreateRecord(ctx, newRecord("alpha", "q1", "a\n", "")))
		require.NoError(t, svc.CreateRecord(ctx, newRecord("beta", "q2", "", lineq.ECONNFAILED)))
		require.NoError(t, svc.CreateRecord(ctx, newRecord("alpha", "q3", "", lineq.ESERVERSILENT)))
	}

	t.Run("returns all records newest first", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewHistoryService(setupTestDB(t))
		seed(t, svc)

		records, err := svc.FindRecords(context.Background(), lineq.RecordFilter{})
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "q3", records[0].Query)
		assert.Equal(t, "q1", records[2].Query)
	})

	t.Run("filters by host", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewHistoryService(setupTestDB(t))
		seed(t, svc)
		host := "beta"

		records, err := svc.FindRecords(context.Background(), lineq.RecordFilter{Host: &host})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "q2", records[0].Query)
	})

	t.Run("filters failed records", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewHistoryService(setupTestDB(t))
		seed(t, svc)

		records, err := svc.FindRecords(context.Background(), lineq.RecordFilter{FailedOnly: true})
		require.NoError(t, err)
		require.Len(t, records, 2)
		for _, r := range records {
			assert.True(t, r.Failed())
		}
	})

	t.Run("filters by code", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewHistoryService(setupTestDB(t))
		seed(t, svc)
		code := lineq.ESERVERSILENT

		records, err := svc.FindRecords(context.Background(), lineq.RecordFilter{Code: &code})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "q3", records[0].Query)
	})

	t.Run("applies limit and offset", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewHistoryService(setupTestDB(t))
		seed(t, svc)

		records, err := svc.FindRecords(context.Background(), lineq.RecordFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "q2", records[0].Query)

		records, err = svc.FindRecords(context.Background(), lineq.RecordFilter{Offset: 2})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "q1", records[0].Query)
	})
}

func TestHistoryService_DeleteRecord(t *testing.T) {
	t.Parallel()

	t.Run("deletes existing record", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewHistoryService(setupTestDB(t))
		ctx := context.Background()
		r := newRecord("localhost", "q", "a\n", "")
		require.NoError(t, svc.CreateRecord(ctx, r))

		require.NoError(t, svc.DeleteRecord(ctx, r.ID))

		_, err := svc.FindRecordByID(ctx, r.ID)
		assert.Equal(t, lineq.ENOTFOUND, lineq.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND when not found", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewHistoryService(setupTestDB(t))

		err := svc.DeleteRecord(context.Background(), "nonexistent-id")
		assert.Equal(t, lineq.ENOTFOUND, lineq.ErrorCode(err))
	})
}
