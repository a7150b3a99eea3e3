// Package tcptest provides scripted line-protocol servers for tests.
package tcptest

import (
	"bufio"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/lineq"
)

// Handler returns the lines written back for a received request frame.
// The lines are sent verbatim, so a well-behaved reply ends with "END".
type Handler func(frame []string) []string

// Exchange is what the server observed on one connection.
type Exchange struct {
	// Frame holds the request lines up to and including "END".
	Frame []string
	// Ack is the line the client sent after the reply, if any.
	Ack string
}

// Server accepts connections on a loopback port and answers each with its
// handler.
type Server struct {
	Endpoint lineq.Endpoint

	ln      net.Listener
	handler Handler
	wg      sync.WaitGroup

	hangup      bool
	hangupDelay time.Duration

	mu        sync.Mutex
	exchanges []Exchange

	closeOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithHangup makes the server reset every connection after delay without
// reading the request or calling the handler, the way a server that drops
// clients does.
func WithHangup(delay time.Duration) Option {
	return func(s *Server) {
		s.hangup = true
		s.hangupDelay = delay
	}
}

// NewServer starts a server and registers its shutdown with t.Cleanup.
func NewServer(t testing.TB, h Handler, opts ...Option) *Server {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("tcptest: listen: %v", err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	s := &Server{
		Endpoint: lineq.Endpoint{Host: "127.0.0.1", Port: addr.Port},
		ln:       ln,
		handler:  h,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.wg.Add(1)
	go s.serve()
	t.Cleanup(s.Close)
	return s
}

// Close stops accepting and waits for open connections to finish.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		_ = s.ln.Close()
		s.wg.Wait()
	})
}

// Exchanges returns the exchanges recorded so far. Call Close first to be
// sure every connection has been fully handled.
func (s *Server) Exchanges() []Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Exchange, len(s.exchanges))
	copy(out, s.exchanges)
	return out
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

	if s.hangup {
		time.Sleep(s.hangupDelay)
		// Zero linger turns Close into a reset.
		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.SetLinger(0)
		}
		s.mu.Lock()
		s.exchanges = append(s.exchanges, Exchange{})
		s.mu.Unlock()
		return
	}

	r := bufio.NewReader(conn)
	var ex Exchange
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			line = strings.TrimRight(line, "\r\n")
			ex.Frame = append(ex.Frame, line)
		}
		if err != nil || line == "END" {
			break
		}
	}

	if s.handler != nil {
		w := bufio.NewWriter(conn)
		for _, line := range s.handler(ex.Frame) {
			_, _ = w.WriteString(line + "\n")
		}
		_ = w.Flush()
	}

	// The client acknowledges and hangs up; a half-close lets it see the
	// end of the reply even when the handler sent no terminator.
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.CloseWrite()
	}
	if ack, err := r.ReadString('\n'); err == nil || ack != "" {
		ex.Ack = strings.TrimRight(ack, "\r\n")
	}

	s.mu.Lock()
	s.exchanges = append(s.exchanges, ex)
	s.mu.Unlock()
}

// Reply answers every request with the given content lines and "END".
func Reply(lines ...string) Handler {
	return func([]string) []string {
		return append(append([]string{}, lines...), "END")
	}
}

// Raw answers every request with exactly the given lines.
func Raw(lines ...string) Handler {
	return func([]string) []string {
		return lines
	}
}

// Echo answers with the received mode token and query text as content.
func Echo() Handler {
	return func(frame []string) []string {
		out := make([]string, 0, 3)
		for _, line := range frame {
			if line == "END" {
				break
			}
			out = append(out, line)
		}
		return append(out, "END")
	}
}

// ClosedPort returns an endpoint on the loopback interface where nothing
// is listening.
func ClosedPort(t testing.TB) lineq.Endpoint {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("tcptest: listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()
	return lineq.Endpoint{Host: "127.0.0.1", Port: port}
}

// String renders the frame as it appeared on the wire.
func (e Exchange) String() string {
	return strings.Join(e.Frame, "\n") + " (ack " + strconv.Quote(e.Ack) + ")"
}
