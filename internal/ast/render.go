package ast

import "strings"

// binding strength used to decide where parentheses are needed
const (
	precOr = iota + 1
	precAnd
	precNot
	precCmp
	precAdd
	precMul
	precAtom
)

func exprPrec(e Expr) int {
	switch x := e.(type) {
	case *Logic:
		switch x.Op {
		case OpOr:
			return precOr
		case OpAnd:
			return precAnd
		default:
			return precNot
		}
	case *Compare:
		return precCmp
	case *Arith:
		if x.Op == OpAdd || x.Op == OpSub {
			return precAdd
		}
		return precMul
	default:
		return precAtom
	}
}

// operand renders child e of an operator with precedence parent.
// Operators are left-associative, so a right operand of equal strength needs parens.
func operand(e Expr, parent int, right bool) string {
	if Missing(e) {
		return missingText
	}
	p := exprPrec(e)
	if p < parent || (right && p == parent) {
		return "(" + e.String() + ")"
	}
	return e.String()
}

// missingText stands in for absent children of host-built trees.
const missingText = "<missing>"

func text(e Expr) string {
	if Missing(e) {
		return missingText
	}
	return e.String()
}

func stmtText(s Stmt) string {
	if MissingStmt(s) {
		return missingText
	}
	return s.String()
}

func (e *Literal) String() string  { return e.Value.String() }
func (e *Variable) String() string { return e.Name }

func (e *Arith) String() string {
	p := exprPrec(e)
	return operand(e.LHS, p, false) + " " + e.Op.String() + " " + operand(e.RHS, p, true)
}

func (e *Compare) String() string {
	// comparisons do not chain
	return operand(e.LHS, precCmp+1, false) + " " + e.Op.String() + " " + operand(e.RHS, precCmp+1, false)
}

func (e *Logic) String() string {
	if e.Op == OpNot {
		return "!" + operand(e.LHS, precNot, false)
	}
	p := exprPrec(e)
	return operand(e.LHS, p, false) + " " + e.Op.String() + " " + operand(e.RHS, p, true)
}

func (e *HeapRead) String() string { return "rH(" + text(e.Inner) + ")" }

func block(s Stmt) string {
	return "{ " + stmtText(s) + " }"
}

func (s *VarDecl) String() string { return s.Type.String() + " " + s.Name + ";" }
func (s *Assign) String() string  { return s.Name + " = " + text(s.Value) + ";" }
func (s *Print) String() string   { return "print(" + text(s.Value) + ");" }

func (s *If) String() string {
	var sb strings.Builder
	sb.WriteString("if (")
	sb.WriteString(text(s.Cond))
	sb.WriteString(") ")
	sb.WriteString(block(s.Then))
	if !MissingStmt(s.Else) && s.Else.Kind() != StmtNop {
		sb.WriteString(" else ")
		sb.WriteString(block(s.Else))
	}
	return sb.String()
}

func (s *While) String() string {
	return "while (" + text(s.Cond) + ") " + block(s.Body)
}

func (s *Seq) String() string {
	first := stmtText(s.First)
	if !MissingStmt(s.First) && s.First.Kind() == StmtSeq {
		// left-nested sequences keep their shape through a nested block
		first = block(s.First)
	}
	return first + " " + stmtText(s.Second)
}

func (s *HeapNew) String() string {
	return "new(" + s.Name + ", " + text(s.Value) + ");"
}

func (s *HeapWrite) String() string {
	return "wH(" + text(s.Addr) + ", " + text(s.Value) + ");"
}

func (s *OpenFile) String() string  { return "openRFile(" + text(s.Name) + ");" }
func (s *ReadFile) String() string  { return "readFile(" + text(s.Name) + ", " + s.Target + ");" }
func (s *CloseFile) String() string { return "closeRFile(" + text(s.Name) + ");" }
func (s *Fork) String() string      { return "fork " + block(s.Body) }
func (*Nop) String() string         { return "nop;" }
