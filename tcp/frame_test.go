package tcp_test

import (
	"testing"

	"github.com/fwojciec/lineq"
	"github.com/fwojciec/lineq/tcp"
	"github.com/stretchr/testify/assert"
)

func TestEncodeRequest(t *testing.T) {
	t.Parallel()

	t.Run("full scan sends index token", func(t *testing.T) {
		t.Parallel()

		lines := tcp.EncodeRequest(lineq.QueryRequest{Text: "capital of France", Mode: lineq.FullScan})

		assert.Equal(t, []string{"index", "capital of France", "END"}, lines)
	})

	t.Run("quick scan sends index2 token", func(t *testing.T) {
		t.Parallel()

		lines := tcp.EncodeRequest(lineq.QueryRequest{Text: "x", Mode: lineq.QuickScan})

		assert.Equal(t, []string{"index2", "x", "END"}, lines)
	})

	t.Run("trims outer whitespace only", func(t *testing.T) {
		t.Parallel()

		lines := tcp.EncodeRequest(lineq.QueryRequest{Text: "\t a  b \n"})

		assert.Equal(t, "a  b", lines[1])
	})
}
