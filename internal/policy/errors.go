// Package policy parses the security-relevant response header values the
// checks reason about. Parsers never panic; malformed input yields a
// *ParseError.
package policy

import "fmt"

// ParseError reports a header value that could not be interpreted.
type ParseError struct {
	Header string
	Value  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse %s %q: %s", e.Header, e.Value, e.Reason)
}

func parseErr(header, value, reason string) *ParseError {
	return &ParseError{Header: header, Value: value, Reason: reason}
}
