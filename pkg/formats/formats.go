// Package formats provides parsers and writers for the pfmap tile map and
// pfmat material file formats.
package formats

import "fmt"

// ParseError locates a parse failure inside a text stream.
// Line is 1-based; Column is the 1-based token index within the line
// (0 when the failure is not tied to one token).
type ParseError struct {
	Line   int
	Column int
	Token  string
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Column > 0 && e.Token != "":
		return fmt.Sprintf("line %d, token %d (%q): %v", e.Line, e.Column, e.Token, e.Err)
	case e.Column > 0:
		return fmt.Sprintf("line %d, token %d: %v", e.Line, e.Column, e.Err)
	default:
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
