package lineq_test

import (
	"testing"

	"github.com/fwojciec/lineq"
	"github.com/stretchr/testify/assert"
)

func TestNewRecord(t *testing.T) {
	t.Parallel()

	ep := lineq.Endpoint{Host: "localhost", Port: 9000}
	req := lineq.QueryRequest{Text: "x", Mode: lineq.QuickScan}

	t.Run("success has no code", func(t *testing.T) {
		t.Parallel()

		r := lineq.NewRecord(ep, req, lineq.Outcome{Body: "y\n"})

		assert.False(t, r.Failed())
		assert.Equal(t, "y\n", r.Body)
		assert.Equal(t, ep, r.Endpoint())
		assert.Equal(t, lineq.QuickScan, r.Mode)
	})

	t.Run("failure keeps code and message", func(t *testing.T) {
		t.Parallel()

		r := lineq.NewRecord(ep, req, lineq.Outcome{Err: &lineq.Error{Code: lineq.ESERVERSILENT, Message: lineq.MessageServerSilent}})

		assert.True(t, r.Failed())
		assert.Equal(t, lineq.ESERVERSILENT, r.Code)
		assert.Equal(t, lineq.MessageServerSilent, r.Detail)
	})
}

func TestRecord_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, (&lineq.Record{Host: "h", Mode: lineq.FullScan}).Validate())
	assert.Equal(t, lineq.EINVALID, lineq.ErrorCode((&lineq.Record{Mode: lineq.FullScan}).Validate()))
	assert.Equal(t, lineq.EINVALID, lineq.ErrorCode((&lineq.Record{Host: "h", Mode: 7}).Validate()))
}
