package sema

import (
	"fmt"

	"forkvm/internal/ast"
	"forkvm/internal/diag"
	"forkvm/internal/types"
)

// CheckProgram type-checks program against an empty environment and
// reports the first failure. It returns the final environment and
// whether the program may be scheduled.
func CheckProgram(program ast.Stmt, r diag.Reporter) (Env, bool) {
	env, err := Check(program, NewEnv())
	if err != nil {
		if te, ok := err.(*TypeError); ok && r != nil {
			r.Report(te.Diagnostic())
		}
		return env, false
	}
	return env, true
}

// Check threads env through stmt. If, While and Fork check their bodies
// against copies and return the incoming env, so nested declarations
// never leak outwards.
func Check(stmt ast.Stmt, env Env) (Env, error) {
	if ast.MissingStmt(stmt) {
		return env, malformed("missing statement")
	}
	switch s := stmt.(type) {
	case *ast.VarDecl:
		if err := env.Put(s.Name, s.Type); err != nil {
			return env, at(err, s.String())
		}
		return env, nil

	case *ast.Assign:
		want, err := env.Lookup(s.Name)
		if err != nil {
			return env, at(err, s.String())
		}
		got, err := TypeOf(s.Value, env)
		if err != nil {
			return env, at(err, s.String())
		}
		if !got.Equal(want) {
			return env, mismatch(s.String(), "cannot assign %s to %s of type %s", got, s.Name, want)
		}
		return env, nil

	case *ast.Print:
		if _, err := TypeOf(s.Value, env); err != nil {
			return env, at(err, s.String())
		}
		return env, nil

	case *ast.Seq:
		next, err := Check(s.First, env)
		if err != nil {
			return env, err
		}
		return Check(s.Second, next)

	case *ast.If:
		if err := checkCond(s.Cond, env, "if"); err != nil {
			return env, at(err, s.String())
		}
		if _, err := Check(s.Then, env.Copy()); err != nil {
			return env, err
		}
		if _, err := Check(s.Else, env.Copy()); err != nil {
			return env, err
		}
		return env, nil

	case *ast.While:
		if err := checkCond(s.Cond, env, "while"); err != nil {
			return env, at(err, s.String())
		}
		if _, err := Check(s.Body, env.Copy()); err != nil {
			return env, err
		}
		return env, nil

	case *ast.HeapNew:
		varType, err := env.Lookup(s.Name)
		if err != nil {
			return env, at(err, s.String())
		}
		inner, ok := varType.Inner()
		if !ok {
			return env, &TypeError{Code: diag.TypeNotReference, Construct: s.String(),
				Msg: fmt.Sprintf("new expects a reference variable, %s has type %s", s.Name, varType)}
		}
		got, err := TypeOf(s.Value, env)
		if err != nil {
			return env, at(err, s.String())
		}
		if !got.Equal(inner) {
			return env, mismatch(s.String(), "cannot allocate %s behind %s", got, varType)
		}
		return env, nil

	case *ast.HeapWrite:
		addrType, err := TypeOf(s.Addr, env)
		if err != nil {
			return env, at(err, s.String())
		}
		if !addrType.IsRef() {
			return env, &TypeError{Code: diag.TypeNotReference, Construct: s.String(),
				Msg: "wH expects a reference, got " + addrType.String()}
		}
		valType, err := TypeOf(s.Value, env)
		if err != nil {
			return env, at(err, s.String())
		}
		if !addrType.Equal(types.Ref(valType)) {
			return env, mismatch(s.String(), "cannot write %s through %s", valType, addrType)
		}
		return env, nil

	case *ast.OpenFile:
		return env, at(checkFileName(s.Name, env), s.String())

	case *ast.CloseFile:
		return env, at(checkFileName(s.Name, env), s.String())

	case *ast.ReadFile:
		if err := checkFileName(s.Name, env); err != nil {
			return env, at(err, s.String())
		}
		target, err := env.Lookup(s.Target)
		if err != nil {
			return env, at(err, s.String())
		}
		if !target.Equal(types.Int()) {
			return env, &TypeError{Code: diag.TypeNotInt, Construct: s.String(),
				Msg: fmt.Sprintf("readFile target %s must be int, got %s", s.Target, target)}
		}
		return env, nil

	case *ast.Fork:
		if _, err := Check(s.Body, env.Copy()); err != nil {
			return env, err
		}
		return env, nil

	case *ast.Nop:
		return env, nil
	}
	return env, &TypeError{Code: diag.UnknownCode, Msg: fmt.Sprintf("unsupported statement %T", stmt)}
}

func checkCond(cond ast.Expr, env Env, what string) error {
	t, err := TypeOf(cond, env)
	if err != nil {
		return err
	}
	if !t.Equal(types.Bool()) {
		return &TypeError{Code: diag.TypeNotBoolCondition, Msg: what + " condition must be bool, got " + t.String()}
	}
	return nil
}

func checkFileName(name ast.Expr, env Env) error {
	t, err := TypeOf(name, env)
	if err != nil {
		return err
	}
	if !t.Equal(types.Str()) {
		return &TypeError{Code: diag.TypeNotString, Msg: "file name must be string, got " + t.String()}
	}
	return nil
}

func mismatch(construct, format string, args ...any) *TypeError {
	return &TypeError{Code: diag.TypeMismatch, Construct: construct, Msg: fmt.Sprintf(format, args...)}
}
