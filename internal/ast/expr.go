package ast

import (
	"forkvm/internal/types"
)

// ExprKind identifies an expression variant.
type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	ExprVariable
	ExprArith
	ExprCompare
	ExprLogic
	ExprHeapRead
)

// Expr is a closed set of expression nodes. Only types in this package implement it.
type Expr interface {
	Kind() ExprKind
	String() string
	exprNode()
}

// ArithOp is an integer arithmetic operator.
type ArithOp uint8

const (
	OpAdd ArithOp = iota + 1 // +
	OpSub                    // -
	OpMul                    // *
	OpDiv                    // /
)

func (op ArithOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	}
	return "?"
}

// CompareOp is an integer comparison operator.
type CompareOp uint8

const (
	OpLt CompareOp = iota + 1 // <
	OpLe                      // <=
	OpEq                      // ==
	OpNe                      // !=
	OpGt                      // >
	OpGe                      // >=
)

func (op CompareOp) String() string {
	switch op {
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	}
	return "?"
}

// LogicOp is a boolean operator. OpNot is unary.
type LogicOp uint8

const (
	OpAnd LogicOp = iota + 1 // &&
	OpOr                     // ||
	OpNot                    // !
)

func (op LogicOp) String() string {
	switch op {
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpNot:
		return "!"
	}
	return "?"
}

// Literal is a constant value.
type Literal struct {
	Value types.Value
}

// Variable reads a symbol table binding.
type Variable struct {
	Name string
}

// Arith applies an integer operator.
type Arith struct {
	Op       ArithOp
	LHS, RHS Expr
}

// Compare compares two integers.
type Compare struct {
	Op       CompareOp
	LHS, RHS Expr
}

// Logic combines booleans. RHS is nil for OpNot.
type Logic struct {
	Op       LogicOp
	LHS, RHS Expr
}

// HeapRead dereferences a reference (rH).
type HeapRead struct {
	Inner Expr
}

func (*Literal) Kind() ExprKind  { return ExprLiteral }
func (*Variable) Kind() ExprKind { return ExprVariable }
func (*Arith) Kind() ExprKind    { return ExprArith }
func (*Compare) Kind() ExprKind  { return ExprCompare }
func (*Logic) Kind() ExprKind    { return ExprLogic }
func (*HeapRead) Kind() ExprKind { return ExprHeapRead }

func (*Literal) exprNode()  {}
func (*Variable) exprNode() {}
func (*Arith) exprNode()    {}
func (*Compare) exprNode()  {}
func (*Logic) exprNode()    {}
func (*HeapRead) exprNode() {}

// Lit wraps a value in a Literal.
func Lit(v types.Value) *Literal { return &Literal{Value: v} }

// Int is shorthand for an integer literal.
func Int(i int64) *Literal { return Lit(types.IntValue(i)) }

// Bool is shorthand for a boolean literal.
func Bool(b bool) *Literal { return Lit(types.BoolValue(b)) }

// Str is shorthand for a string literal.
func Str(s string) *Literal { return Lit(types.StrValue(s)) }

// Var references a variable by name.
func Var(name string) *Variable { return &Variable{Name: name} }

// Bin builds an arithmetic expression.
func Bin(op ArithOp, lhs, rhs Expr) *Arith { return &Arith{Op: op, LHS: lhs, RHS: rhs} }

// Cmp builds a comparison.
func Cmp(op CompareOp, lhs, rhs Expr) *Compare { return &Compare{Op: op, LHS: lhs, RHS: rhs} }

// And builds a conjunction.
func And(lhs, rhs Expr) *Logic { return &Logic{Op: OpAnd, LHS: lhs, RHS: rhs} }

// Or builds a disjunction.
func Or(lhs, rhs Expr) *Logic { return &Logic{Op: OpOr, LHS: lhs, RHS: rhs} }

// Not builds a negation.
func Not(x Expr) *Logic { return &Logic{Op: OpNot, LHS: x} }

// RH builds a heap read.
func RH(inner Expr) *HeapRead { return &HeapRead{Inner: inner} }

// Missing reports whether e is absent, either a nil interface or a nil node.
func Missing(e Expr) bool {
	switch x := e.(type) {
	case nil:
		return true
	case *Literal:
		return x == nil
	case *Variable:
		return x == nil
	case *Arith:
		return x == nil
	case *Compare:
		return x == nil
	case *Logic:
		return x == nil
	case *HeapRead:
		return x == nil
	}
	return false
}
