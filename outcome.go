package lineq

import (
	"errors"
	"strings"
)

// ClientMark prefixes every client error rendered as text, so consumers
// can tell "the client could not talk to the server" from server content.
const ClientMark = "clientMark"

// Outcome is the result of one query: either a reply body or a client
// error, never both.
type Outcome struct {
	Body string
	Err  *Error
}

// NewOutcome builds an Outcome from a Querier result. Errors that are not
// a *Error are reported as a failure to establish the connection.
func NewOutcome(body string, err error) Outcome {
	if err == nil {
		return Outcome{Body: body}
	}
	var e *Error
	if errors.As(err, &e) {
		return Outcome{Err: e}
	}
	return Outcome{Err: &Error{Code: ECONNFAILED, Message: MessageConnFailed, Err: err}}
}

// OK reports whether the outcome carries a server reply.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Code returns the error code, or "" on success.
func (o Outcome) Code() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Code
}

// Text renders the outcome for an external consumer: the body on success,
// ClientMark followed by the error message otherwise.
func (o Outcome) Text() string {
	if o.Err == nil {
		return o.Body
	}
	return ClientMark + o.Err.Message
}

// StripMark removes ClientMark from text rendered by Outcome.Text and
// reports whether it was present.
func StripMark(text string) (string, bool) {
	if rest, ok := strings.CutPrefix(text, ClientMark); ok {
		return rest, true
	}
	return text, false
}

// User-facing messages for the client error codes.
const (
	MessageConnFailed   = "Impossible to establish a connection!"
	MessageTransportIO  = "Impossible to receive answer from server!"
	MessageServerSilent = "Unreliable server: it did not reply!"
)

// HostUnresolvableMessage returns the message for a host that could not be
// resolved.
func HostUnresolvableMessage(host string) string {
	return "Not detected server: " + host + "!"
}
