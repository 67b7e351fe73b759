// Package diag defines the diagnostic model shared by the lexer, parser and
// type checker. Diagnostics are plain data; rendering lives in cmd/forkvm.
package diag

import (
	"fmt"

	"forkvm/internal/token"
)

// Diagnostic is one finding produced before execution starts.
// Pos is zero for findings that have no source location (ASTs built in code).
type Diagnostic struct {
	Severity  Severity
	Code      Code
	Message   string
	Pos       token.Pos
	Construct string // rendering of the offending node, if any
}

func (d Diagnostic) String() string {
	loc := ""
	if d.Pos.Line > 0 {
		loc = d.Pos.String() + ": "
	}
	msg := fmt.Sprintf("%s%s %s: %s", loc, d.Severity, d.Code.ID(), d.Message)
	if d.Construct != "" {
		msg += "\n    in: " + d.Construct
	}
	return msg
}
