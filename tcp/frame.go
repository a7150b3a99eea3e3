package tcp

import (
	"strings"

	"github.com/fwojciec/lineq"
)

// Terminator ends a message in both directions. The protocol has no
// escaping, so a content line equal to Terminator cannot be sent.
const Terminator = "END"

// Acknowledgment lines sent after the reply has been collected.
const (
	AckReceived = "Thanks, I received your answer!"
	AckMissing  = "I am sorry, I did not receive your request!"
)

// EncodeRequest returns the lines sent for req: the mode token, the
// trimmed query text and the terminator.
func EncodeRequest(req lineq.QueryRequest) []string {
	return []string{
		req.Mode.Token(),
		strings.TrimSpace(req.Text),
		Terminator,
	}
}

type lineWriter interface {
	WriteLine(text string) error
}

type lineReader interface {
	ReadLine() (line string, ok bool, err error)
}

// writeRequest sends the encoded request one line at a time.
func writeRequest(w lineWriter, req lineq.QueryRequest) error {
	for _, line := range EncodeRequest(req) {
		if err := w.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}

// collectResponse reads content lines until the terminator or the end of
// the stream. Each line is trimmed and followed by a newline in body.
// terminated reports whether the terminator was seen. A server hanging up
// before the first line counts as the end of the stream.
func collectResponse(r lineReader) (body string, terminated bool, err error) {
	var b strings.Builder
	for {
		line, ok, err := r.ReadLine()
		if err != nil {
			if b.Len() == 0 && peerHungUp(err) {
				return "", false, nil
			}
			return "", false, err
		}
		if !ok {
			return b.String(), false, nil
		}
		if line == Terminator {
			return b.String(), true, nil
		}
		b.WriteString(strings.TrimSpace(line))
		b.WriteByte('\n')
	}
}
