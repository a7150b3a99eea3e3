// Package lineq provides a client for a line-oriented search protocol
// spoken over a plain TCP stream. A query is sent as a mode token, the
// query text and an END line; the server answers with zero or more content
// lines followed by END, and the client acknowledges what it received.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., tcp/, sqlite/, slog/).
package lineq
