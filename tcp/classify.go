package tcp

import (
	"errors"
	"net"
	"syscall"

	"github.com/fwojciec/lineq"
)

// classifyDial maps a failure to establish the stream. Name resolution
// failures are reported separately from every other dial failure.
func classifyDial(ep lineq.Endpoint, err error) *lineq.Error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &lineq.Error{
			Code:    lineq.EHOSTUNRESOLVABLE,
			Message: lineq.HostUnresolvableMessage(ep.Host),
			Err:     err,
		}
	}
	return &lineq.Error{
		Code:    lineq.ECONNFAILED,
		Message: lineq.MessageConnFailed,
		Err:     err,
	}
}

// classifyIO maps a read or write failure on an open stream.
func classifyIO(err error) *lineq.Error {
	return &lineq.Error{
		Code:    lineq.ETRANSPORTIO,
		Message: lineq.MessageTransportIO,
		Err:     err,
	}
}

// errSilent reports a server that never replied with any content. cause
// may be nil.
func errSilent(cause error) *lineq.Error {
	return &lineq.Error{
		Code:    lineq.ESERVERSILENT,
		Message: lineq.MessageServerSilent,
		Err:     cause,
	}
}

// peerHungUp reports whether err means the server reset or closed the
// connection, as opposed to a local timeout or cancellation.
func peerHungUp(err error) bool {
	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE)
}
