package lineq

import "strings"

// SearchMode selects the server-side search strategy.
type SearchMode int

// SearchMode constants.
const (
	FullScan SearchMode = iota
	QuickScan
)

// Wire tokens sent as the first line of a request.
const (
	fullScanToken  = "index"
	quickScanToken = "index2"
)

// Token returns the mode-selector line sent to the server.
// Unknown modes fall back to the full scan token.
func (m SearchMode) Token() string {
	if m == QuickScan {
		return quickScanToken
	}
	return fullScanToken
}

// String returns the short name used on the command line and in storage.
func (m SearchMode) String() string {
	switch m {
	case FullScan:
		return "full"
	case QuickScan:
		return "quick"
	}
	return "unknown"
}

// Valid reports whether m is one of the defined modes.
func (m SearchMode) Valid() bool {
	return m == FullScan || m == QuickScan
}

// ParseSearchMode parses a mode name. Both the short names and the wire
// tokens are accepted, case-insensitively.
func ParseSearchMode(s string) (SearchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full", "fullscan", fullScanToken:
		return FullScan, nil
	case "quick", "quickscan", quickScanToken:
		return QuickScan, nil
	}
	return FullScan, Errorf(EINVALID, "unknown search mode %q (want full or quick)", s)
}
