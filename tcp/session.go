// Package tcp implements lineq.Querier over a plain TCP connection.
package tcp

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"github.com/fwojciec/lineq"
)

// Dialer opens stream connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Session owns the connection of a single query. It is not safe for
// concurrent use and is never reused across queries.
type Session struct {
	ctx       context.Context
	conn      net.Conn
	r         *bufio.Reader
	w         *bufio.Writer
	deadline  time.Time
	ioTimeout time.Duration

	stopWatch func() bool
	closed    bool
}

// Open dials the endpoint. Failures are returned as a classified
// *lineq.Error.
//
// A deadline on ctx becomes the connection deadline, and canceling ctx
// interrupts any blocked read or write.
func Open(ctx context.Context, dialer Dialer, ep lineq.Endpoint) (*Session, error) {
	conn, err := dialer.DialContext(ctx, "tcp", ep.Address())
	if err != nil {
		return nil, classifyDial(ep, err)
	}

	s := &Session{
		ctx:  ctx,
		conn: conn,
		r:    bufio.NewReader(conn),
		w:    bufio.NewWriter(conn),
	}
	if deadline, ok := ctx.Deadline(); ok {
		s.deadline = deadline
		_ = conn.SetDeadline(deadline)
	}
	s.stopWatch = context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	return s, nil
}

// WriteLine writes text followed by a newline and flushes it.
func (s *Session) WriteLine(text string) error {
	s.armDeadline()
	if _, err := s.w.WriteString(text); err != nil {
		return err
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return err
	}
	return s.w.Flush()
}

// ReadLine returns the next line without its line terminator. ok is false
// once the stream has ended. A trailing fragment without a newline is
// returned as a line before the end is reported.
func (s *Session) ReadLine() (line string, ok bool, err error) {
	s.armDeadline()
	line, err = s.r.ReadString('\n')
	if errors.Is(err, io.EOF) {
		if line == "" {
			return "", false, nil
		}
		err = nil
	}
	if err != nil {
		return "", false, err
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, true, nil
}

// Close releases the connection. It is safe to call more than once and on
// a nil Session; every step is attempted and failures are ignored.
func (s *Session) Close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true

	if s.w != nil && s.conn != nil {
		_ = s.w.Flush()
	}
	if s.stopWatch != nil {
		s.stopWatch()
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
}

// armDeadline pushes the per-operation deadline forward when an I/O
// timeout is configured. The context deadline is never extended.
func (s *Session) armDeadline() {
	if s.ioTimeout <= 0 {
		return
	}
	d := time.Now().Add(s.ioTimeout)
	if !s.deadline.IsZero() && s.deadline.Before(d) {
		d = s.deadline
	}
	_ = s.conn.SetDeadline(d)
	if s.ctx.Err() != nil {
		_ = s.conn.SetDeadline(time.Now())
	}
}
