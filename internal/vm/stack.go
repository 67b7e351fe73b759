package vm

import "forkvm/internal/ast"

// ExecStack holds the statements that remain to run, top last.
type ExecStack struct {
	items []ast.Stmt
}

func NewExecStack(seed ...ast.Stmt) *ExecStack {
	s := &ExecStack{}
	for _, st := range seed {
		s.Push(st)
	}
	return s
}

func (s *ExecStack) Push(st ast.Stmt) { s.items = append(s.items, st) }

func (s *ExecStack) Pop() (ast.Stmt, error) {
	if len(s.items) == 0 {
		return nil, newError(CodeEmptyStack, "execution stack is empty")
	}
	top := s.items[len(s.items)-1]
	s.items[len(s.items)-1] = nil
	s.items = s.items[:len(s.items)-1]
	return top, nil
}

// Peek returns the next statement without removing it.
func (s *ExecStack) Peek() (ast.Stmt, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	return s.items[len(s.items)-1], true
}

func (s *ExecStack) Len() int    { return len(s.items) }
func (s *ExecStack) Empty() bool { return len(s.items) == 0 }

// Items returns the pending statements, most recent first.
func (s *ExecStack) Items() []ast.Stmt {
	out := make([]ast.Stmt, len(s.items))
	for i, st := range s.items {
		out[len(s.items)-1-i] = st
	}
	return out
}
