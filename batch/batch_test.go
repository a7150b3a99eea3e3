package batch_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/lineq"
	"github.com/fwojciec/lineq/batch"
	"github.com/fwojciec/lineq/mock"
	"github.com/fwojciec/lineq/tcp"
	"github.com/fwojciec/lineq/tcp/tcptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEndpoint = lineq.Endpoint{Host: "localhost", Port: 9000}

func jobsFor(queries ...string) []batch.Job {
	jobs := make([]batch.Job, len(queries))
	for i, q := range queries {
		jobs[i] = batch.Job{Endpoint: testEndpoint, Request: lineq.QueryRequest{Text: q}}
	}
	return jobs
}

func upperQuerier() *mock.Querier {
	return &mock.Querier{
		QueryFn: func(_ context.Context, req lineq.QueryRequest) (string, error) {
			if req.Text == "silent" {
				return "", &lineq.Error{Code: lineq.ESERVERSILENT, Message: lineq.MessageServerSilent}
			}
			return strings.ToUpper(req.Text) + "\n", nil
		},
	}
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	t.Run("returns zero result for no jobs", func(t *testing.T) {
		t.Parallel()

		r := &batch.Runner{NewQuerier: func(lineq.Endpoint) lineq.Querier { return upperQuerier() }}

		result, err := r.Run(context.Background(), nil, nil)

		require.NoError(t, err)
		assert.Empty(t, result.Outcomes)
		assert.Zero(t, result.Succeeded)
		assert.Zero(t, result.Failed)
	})

	t.Run("keeps outcomes in input order", func(t *testing.T) {
		t.Parallel()

		r := &batch.Runner{
			NewQuerier:  func(lineq.Endpoint) lineq.Querier { return upperQuerier() },
			Concurrency: 3,
		}

		result, err := r.Run(context.Background(), jobsFor("a", "silent", "c", "d"), nil)

		require.NoError(t, err)
		require.Len(t, result.Outcomes, 4)
		assert.Equal(t, "A\n", result.Outcomes[0].Body)
		assert.Equal(t, lineq.ESERVERSILENT, result.Outcomes[1].Code())
		assert.Equal(t, "C\n", result.Outcomes[2].Body)
		assert.Equal(t, "D\n", result.Outcomes[3].Body)
		assert.Equal(t, 3, result.Succeeded)
		assert.Equal(t, 1, result.Failed)
	})

	t.Run("respects the concurrency limit", func(t *testing.T) {
		t.Parallel()

		var inFlight, peak atomic.Int32
		q := &mock.Querier{
			QueryFn: func(_ context.Context, _ lineq.QueryRequest) (string, error) {
				n := inFlight.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				inFlight.Add(-1)
				return "ok\n", nil
			},
		}
		r := &batch.Runner{
			NewQuerier:  func(lineq.Endpoint) lineq.Querier { return q },
			Concurrency: 2,
		}

		_, err := r.Run(context.Background(), jobsFor("1", "2", "3", "4", "5", "6"), nil)

		require.NoError(t, err)
		assert.LessOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("waits on the limiter with the endpoint address", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var addresses []string
		limiter := &mock.EndpointLimiter{
			WaitFn: func(_ context.Context, address string) error {
				mu.Lock()
				addresses = append(addresses, address)
				mu.Unlock()
				return nil
			},
		}
		r := &batch.Runner{
			NewQuerier: func(lineq.Endpoint) lineq.Querier { return upperQuerier() },
			Limiter:    limiter,
		}

		_, err := r.Run(context.Background(), jobsFor("a", "b"), nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"localhost:9000", "localhost:9000"}, addresses)
	})

	t.Run("records history and counts storage failures", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var stored []*lineq.Record
		history := &mock.HistoryService{
			CreateRecordFn: func(_ context.Context, rec *lineq.Record) error {
				if rec.Query == "b" {
					return errors.New("disk full")
				}
				mu.Lock()
				stored = append(stored, rec)
				mu.Unlock()
				return nil
			},
		}
		r := &batch.Runner{
			NewQuerier: func(lineq.Endpoint) lineq.Querier { return upperQuerier() },
			History:    history,
		}

		result, err := r.Run(context.Background(), jobsFor("a", "b", "silent"), nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Unrecorded)
		require.Len(t, stored, 2)
		for _, rec := range stored {
			if rec.Query == "silent" {
				assert.Equal(t, lineq.ESERVERSILENT, rec.Code)
			} else {
				assert.Equal(t, "A\n", rec.Body)
			}
		}
	})

	t.Run("reports progress events", func(t *testing.T) {
		t.Parallel()

		r := &batch.Runner{NewQuerier: func(lineq.Endpoint) lineq.Querier { return upperQuerier() }}

		var events []batch.ProgressEvent
		_, err := r.Run(context.Background(), jobsFor("a", "silent"), func(e batch.ProgressEvent) {
			events = append(events, e)
		})

		require.NoError(t, err)
		require.Len(t, events, 4)
		assert.Equal(t, batch.ProgressStarted, events[0].Type)
		assert.Equal(t, 2, events[0].Total)
		assert.Equal(t, batch.ProgressFinished, events[3].Type)

		var completed, failed int
		for _, e := range events[1:3] {
			switch e.Type {
			case batch.ProgressCompleted:
				completed++
			case batch.ProgressFailed:
				failed++
				assert.Equal(t, "silent", e.Job.Request.Text)
			}
		}
		assert.Equal(t, 1, completed)
		assert.Equal(t, 1, failed)
	})

	t.Run("stops starting jobs once the context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		var calls atomic.Int32
		q := &mock.Querier{
			QueryFn: func(_ context.Context, _ lineq.QueryRequest) (string, error) {
				if calls.Add(1) == 1 {
					cancel()
				}
				return "ok\n", nil
			},
		}
		r := &batch.Runner{
			NewQuerier:  func(lineq.Endpoint) lineq.Querier { return q },
			Concurrency: 1,
		}

		result, err := r.Run(ctx, jobsFor("1", "2", "3", "4", "5"), nil)

		require.ErrorIs(t, err, context.Canceled)
		assert.Less(t, int(calls.Load()), 5)
		assert.Equal(t, 5, result.Succeeded+result.Failed+result.Skipped)
		for _, o := range result.Outcomes[calls.Load():] {
			assert.Equal(t, lineq.ESKIPPED, o.Code())
		}
	})

	t.Run("reports jobs left unrun when the limiter fails", func(t *testing.T) {
		t.Parallel()

		limiter := &mock.EndpointLimiter{
			WaitFn: func(context.Context, string) error {
				return context.DeadlineExceeded
			},
		}
		r := &batch.Runner{
			NewQuerier: func(lineq.Endpoint) lineq.Querier {
				t.Fatal("no query should run")
				return nil
			},
			Limiter: limiter,
		}

		result, err := r.Run(context.Background(), jobsFor("a", "b"), nil)

		require.Error(t, err)
		assert.Equal(t, lineq.ESKIPPED, lineq.ErrorCode(err))
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 0, result.Succeeded)
		assert.Equal(t, 2, result.Skipped)
		for i, o := range result.Outcomes {
			assert.False(t, o.OK(), "outcome %d", i)
			assert.Equal(t, lineq.ESKIPPED, o.Code(), "outcome %d", i)
		}
	})

	t.Run("skips jobs the rate limit cannot fit before the deadline", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		r := &batch.Runner{
			NewQuerier:  func(lineq.Endpoint) lineq.Querier { return upperQuerier() },
			Limiter:     batch.NewAddressLimiter(0.01),
			Concurrency: 1,
		}

		result, err := r.Run(ctx, jobsFor("a", "b", "c"), nil)

		require.Error(t, err)
		assert.Equal(t, lineq.ESKIPPED, lineq.ErrorCode(err))
		assert.Equal(t, 1, result.Succeeded)
		assert.Equal(t, 2, result.Skipped)
		assert.Equal(t, "A\n", result.Outcomes[0].Body)
		assert.False(t, result.Outcomes[1].OK())
		assert.False(t, result.Outcomes[2].OK())
	})

	t.Run("runs real queries against independent servers", func(t *testing.T) {
		t.Parallel()

		srvA := tcptest.NewServer(t, tcptest.Echo())
		srvB := tcptest.NewServer(t, tcptest.Echo())
		jobs := []batch.Job{
			{Endpoint: srvA.Endpoint, Request: lineq.QueryRequest{Text: "alpha"}},
			{Endpoint: srvB.Endpoint, Request: lineq.QueryRequest{Text: "beta", Mode: lineq.QuickScan}},
		}
		r := &batch.Runner{
			NewQuerier:  func(ep lineq.Endpoint) lineq.Querier { return tcp.NewClient(ep) },
			Limiter:     batch.NewAddressLimiter(0),
			Concurrency: 2,
		}

		result, err := r.Run(context.Background(), jobs, nil)

		require.NoError(t, err)
		assert.Equal(t, "index\nalpha\n", result.Outcomes[0].Body)
		assert.Equal(t, "index2\nbeta\n", result.Outcomes[1].Body)

		srvA.Close()
		srvB.Close()
		require.Len(t, srvA.Exchanges(), 1)
		require.Len(t, srvB.Exchanges(), 1)
		assert.Equal(t, []string{"index", "alpha", "END"}, srvA.Exchanges()[0].Frame)
		assert.Equal(t, []string{"index2", "beta", "END"}, srvB.Exchanges()[0].Frame)
	})
}
