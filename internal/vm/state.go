// Package vm holds program states and the one-step reducer that advances them.
package vm

import (
	"errors"

	"forkvm/internal/ast"
	"forkvm/internal/heap"
)

// IDSource hands out program state ids. Ids must be unique for the
// lifetime of the process.
type IDSource interface {
	Next() int
}

// State is one thread of execution. Stack and Symbols belong to the
// state alone; Output, Files and Heap may be shared with forks.
type State struct {
	ID      int
	Stack   *ExecStack
	Symbols *SymbolTable
	Output  *Output
	Files   *FileTable
	Heap    heap.Heap
	Program ast.Stmt
	Err     *Error
}

// NewState creates a root state whose stack is seeded with program.
func NewState(id int, program ast.Stmt, h heap.Heap, files *FileTable) *State {
	if files == nil {
		files = NewFileTable("")
	}
	return &State{
		ID:      id,
		Stack:   NewExecStack(program),
		Symbols: NewSymbolTable(),
		Output:  NewOutput(),
		Files:   files,
		Heap:    h,
		Program: program,
	}
}

// fork returns a child that runs body with a copy of the bindings and
// the parent's output, files and heap.
func (s *State) fork(id int, body ast.Stmt) *State {
	return &State{
		ID:      id,
		Stack:   NewExecStack(body),
		Symbols: s.Symbols.Copy(),
		Output:  s.Output,
		Files:   s.Files,
		Heap:    s.Heap,
		Program: body,
	}
}

// Done reports whether the state has nothing left to run.
func (s *State) Done() bool { return s.Err != nil || s.Stack.Empty() }

// Failed reports whether a step of this state returned an error.
func (s *State) Failed() bool { return s.Err != nil }

// Fail makes the state terminal.
func (s *State) Fail(err error) {
	if err == nil {
		return
	}
	var ve *Error
	if !errors.As(err, &ve) {
		ve = newError(CodeInternal, "%v", err)
	}
	if ve.StateID == 0 {
		ve.StateID = s.ID
	}
	s.Err = ve
}
