package sema

import (
	"forkvm/internal/ast"
	"forkvm/internal/diag"
	"forkvm/internal/types"
)

// TypeOf returns the static type of e under env.
func TypeOf(e ast.Expr, env Env) (types.Type, error) {
	if ast.Missing(e) {
		return types.Type{}, malformed("missing expression")
	}
	switch x := e.(type) {
	case *ast.Literal:
		return x.Value.Type(), nil

	case *ast.Variable:
		t, err := env.Lookup(x.Name)
		return t, at(err, x.String())

	case *ast.Arith:
		if err := operands(env, types.Int(), diag.TypeNotInt, x.LHS, x.RHS); err != nil {
			return types.Type{}, at(err, x.String())
		}
		return types.Int(), nil

	case *ast.Compare:
		if err := operands(env, types.Int(), diag.TypeNotInt, x.LHS, x.RHS); err != nil {
			return types.Type{}, at(err, x.String())
		}
		return types.Bool(), nil

	case *ast.Logic:
		sides := []ast.Expr{x.LHS, x.RHS}
		if x.Op == ast.OpNot {
			sides = sides[:1]
		}
		if err := operands(env, types.Bool(), diag.TypeNotBool, sides...); err != nil {
			return types.Type{}, at(err, x.String())
		}
		return types.Bool(), nil

	case *ast.HeapRead:
		t, err := TypeOf(x.Inner, env)
		if err != nil {
			return types.Type{}, at(err, x.String())
		}
		inner, ok := t.Inner()
		if !ok {
			return types.Type{}, &TypeError{Code: diag.TypeNotReference, Construct: x.String(),
				Msg: "rH expects a reference, got " + t.String()}
		}
		return inner, nil
	}
	return types.Type{}, &TypeError{Code: diag.UnknownCode, Msg: "unsupported expression"}
}

func malformed(msg string) *TypeError {
	return &TypeError{Code: diag.TypeMalformed, Msg: msg}
}

// operands checks that every side has type want. A missing side is an error.
func operands(env Env, want types.Type, code diag.Code, sides ...ast.Expr) error {
	for _, side := range sides {
		t, err := TypeOf(side, env)
		if err != nil {
			return err
		}
		if !t.Equal(want) {
			return &TypeError{Code: code, Msg: "operand " + side.String() + " has type " + t.String() + ", want " + want.String()}
		}
	}
	return nil
}
