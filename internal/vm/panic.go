package vm

import (
	"fmt"
	"strings"
)

// Code identifies a runtime failure.
type Code int

// Stable codes - do not change values. The thousands digit is the class.
const (
	CodeUndefinedVariable Code = 1001 // VM1001: variable not declared
	CodeTypeMismatch      Code = 1002 // VM1002: operand or binding of the wrong type
	CodeDivisionByZero    Code = 1003 // VM1003: integer division by zero
	CodeInvalidOperator   Code = 1004 // VM1004: operator outside its closed set

	CodeInvalidAddress   Code = 2001 // VM2001: null, absent or collected address
	CodeHeapTypeMismatch Code = 2002 // VM2002: heap value disagrees with the reference type

	CodeFileAlreadyOpen Code = 3001 // VM3001: openRFile on an open name
	CodeFileNotOpen     Code = 3002 // VM3002: read/close of a name that is not open
	CodeFileIO          Code = 3003 // VM3003: operating system I/O failure

	CodeEmptyStack Code = 4001 // VM4001: stepping a finished state

	CodeDuplicateKey Code = 5001 // VM5001: declaring an existing name
	CodeMissingKey   Code = 5002 // VM5002: lookup of an absent name

	CodeInternal Code = 9001 // VM9001: error that did not come from the reducer
)

// String returns the code as "VM1001" format.
func (c Code) String() string {
	return fmt.Sprintf("VM%d", int(c))
}

// Class groups codes by the layer that raised them.
type Class uint8

const (
	ClassUnknown Class = iota
	ClassExpression
	ClassHeap
	ClassFile
	ClassStack
	ClassDictionary
)

func (c Class) String() string {
	switch c {
	case ClassExpression:
		return "expression"
	case ClassHeap:
		return "heap"
	case ClassFile:
		return "file"
	case ClassStack:
		return "stack"
	case ClassDictionary:
		return "dictionary"
	}
	return "unknown"
}

func (c Code) Class() Class {
	switch int(c) / 1000 {
	case 1:
		return ClassExpression
	case 2:
		return ClassHeap
	case 3:
		return ClassFile
	case 4:
		return ClassStack
	case 5:
		return ClassDictionary
	}
	return ClassUnknown
}

// Error is a runtime failure of one program state.
type Error struct {
	Code    Code
	Message string
	StateID int
	Stmt    string // statement being executed, if known
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("panic %s: %s", e.Code, e.Message)
}

// Detail renders the error with the state and statement it happened in.
func (e *Error) Detail() string {
	var sb strings.Builder
	sb.WriteString(e.Error())
	if e.StateID != 0 {
		fmt.Fprintf(&sb, "\nin state %d", e.StateID)
	}
	if e.Stmt != "" {
		sb.WriteString("\nat ")
		sb.WriteString(e.Stmt)
	}
	return sb.String()
}

// Recovered turns a panic raised while stepping state id into an
// internal error for that state alone.
func Recovered(id int, v any) *Error {
	e := newError(CodeInternal, "internal error: %v", v)
	e.StateID = id
	return e
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
