package sema

import (
	"errors"

	"forkvm/internal/diag"
	"forkvm/internal/token"
)

// TypeError is a static failure naming the construct that caused it.
type TypeError struct {
	Code      diag.Code
	Construct string
	Msg       string
}

func (e *TypeError) Error() string {
	if e.Construct == "" {
		return e.Code.ID() + ": " + e.Msg
	}
	return e.Code.ID() + ": " + e.Msg + " in " + e.Construct
}

// Diagnostic converts the error for reporting. The AST carries no
// positions, so Pos stays zero.
func (e *TypeError) Diagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Severity:  diag.SevError,
		Code:      e.Code,
		Message:   e.Msg,
		Pos:       token.Pos{},
		Construct: e.Construct,
	}
}

// at attaches construct to err if it has none yet, so the innermost
// offending node is the one named.
func at(err error, construct string) error {
	var te *TypeError
	if errors.As(err, &te) && te.Construct == "" {
		te.Construct = construct
	}
	return err
}
