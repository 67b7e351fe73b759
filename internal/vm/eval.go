package vm

import (
	"errors"

	"forkvm/internal/ast"
	"forkvm/internal/heap"
	"forkvm/internal/types"
)

// Eval computes e in st. Only HeapRead touches the heap, and only to read.
func Eval(e ast.Expr, st *State) (types.Value, error) {
	if ast.Missing(e) {
		return types.Value{}, newError(CodeInvalidOperator, "missing expression")
	}
	switch x := e.(type) {
	case *ast.Literal:
		return x.Value, nil

	case *ast.Variable:
		v, err := st.Symbols.Lookup(x.Name)
		if err != nil {
			return types.Value{}, newError(CodeUndefinedVariable, "variable %q is not declared", x.Name)
		}
		return v, nil

	case *ast.Arith:
		a, b, err := evalInts(x.LHS, x.RHS, st)
		if err != nil {
			return types.Value{}, err
		}
		switch x.Op {
		case ast.OpAdd:
			return types.IntValue(a + b), nil
		case ast.OpSub:
			return types.IntValue(a - b), nil
		case ast.OpMul:
			return types.IntValue(a * b), nil
		case ast.OpDiv:
			if b == 0 {
				return types.Value{}, newError(CodeDivisionByZero, "division by zero in %s", x)
			}
			return types.IntValue(a / b), nil
		}
		return types.Value{}, newError(CodeInvalidOperator, "unknown arithmetic operator %d", x.Op)

	case *ast.Compare:
		a, b, err := evalInts(x.LHS, x.RHS, st)
		if err != nil {
			return types.Value{}, err
		}
		switch x.Op {
		case ast.OpLt:
			return types.BoolValue(a < b), nil
		case ast.OpLe:
			return types.BoolValue(a <= b), nil
		case ast.OpEq:
			return types.BoolValue(a == b), nil
		case ast.OpNe:
			return types.BoolValue(a != b), nil
		case ast.OpGt:
			return types.BoolValue(a > b), nil
		case ast.OpGe:
			return types.BoolValue(a >= b), nil
		}
		return types.Value{}, newError(CodeInvalidOperator, "unknown comparison operator %d", x.Op)

	case *ast.Logic:
		// both sides are evaluated, there is no short circuit
		a, err := evalBool(x.LHS, st)
		if err != nil {
			return types.Value{}, err
		}
		if x.Op == ast.OpNot {
			return types.BoolValue(!a), nil
		}
		b, err := evalBool(x.RHS, st)
		if err != nil {
			return types.Value{}, err
		}
		switch x.Op {
		case ast.OpAnd:
			return types.BoolValue(a && b), nil
		case ast.OpOr:
			return types.BoolValue(a || b), nil
		}
		return types.Value{}, newError(CodeInvalidOperator, "unknown logic operator %d", x.Op)

	case *ast.HeapRead:
		ref, err := Eval(x.Inner, st)
		if err != nil {
			return types.Value{}, err
		}
		addr, _, ok := ref.Ref()
		if !ok {
			return types.Value{}, newError(CodeTypeMismatch, "rH expects a reference, got %s", ref.Type())
		}
		v, err := st.Heap.Read(addr)
		if err != nil {
			return types.Value{}, heapError(err, addr)
		}
		return v, nil
	}
	return types.Value{}, newError(CodeInvalidOperator, "unsupported expression %T", e)
}

func evalInts(lhs, rhs ast.Expr, st *State) (int64, int64, error) {
	a, err := evalInt(lhs, st)
	if err != nil {
		return 0, 0, err
	}
	b, err := evalInt(rhs, st)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func evalInt(e ast.Expr, st *State) (int64, error) {
	v, err := Eval(e, st)
	if err != nil {
		return 0, err
	}
	i, ok := v.Int()
	if !ok {
		return 0, newError(CodeTypeMismatch, "operand %s is %s, want int", e, v.Type())
	}
	return i, nil
}

func evalBool(e ast.Expr, st *State) (bool, error) {
	v, err := Eval(e, st)
	if err != nil {
		return false, err
	}
	b, ok := v.Bool()
	if !ok {
		return false, newError(CodeTypeMismatch, "operand %s is %s, want bool", e, v.Type())
	}
	return b, nil
}

func heapError(err error, addr types.Address) *Error {
	if errors.Is(err, heap.ErrInvalidAddress) {
		return newError(CodeInvalidAddress, "address %d is not allocated", addr)
	}
	return newError(CodeInternal, "heap: %v", err)
}
