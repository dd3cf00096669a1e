// Package parser turns a lexer.Token stream into a fragment.Forest of
// fragment.Statement nodes. Parsing never aborts: malformed input produces
// Diagnostics on a side channel instead of a fatal error.
package parser

import "fmt"

// Diagnostic is a non-fatal parse-time observation (unknown glyph, malformed
// timer literal, unterminated group/action, ...). Diagnostics never appear
// in the runtime's output stream; they are collected on a side channel for
// editor/lint consumers.
type Diagnostic struct {
	Line    int
	Column  int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s", d.Line, d.Column, d.Message)
}
