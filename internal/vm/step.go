package vm

import (
	"errors"
	"strconv"
	"strings"

	"forkvm/internal/ast"
	"forkvm/internal/types"
)

// Step executes exactly one non-sequence statement of st. Seq nodes on
// top of the stack are only rewritten (second pushed, then first) and do
// not count as a step. A Fork returns the new child state; every other
// statement returns nil. Errors carry the state id and the statement;
// the caller decides whether to Fail st.
func Step(st *State, ids IDSource) (*State, error) {
	stmt, err := st.Stack.Pop()
	if err != nil {
		return nil, stamp(err, st, "")
	}
	for {
		seq, ok := stmt.(*ast.Seq)
		if !ok || seq == nil {
			break
		}
		st.Stack.Push(seq.Second)
		stmt = seq.First
	}
	if ast.MissingStmt(stmt) {
		return nil, stamp(newError(CodeInvalidOperator, "missing statement"), st, "")
	}
	child, err := exec(stmt, st, ids)
	if err != nil {
		return nil, stamp(err, st, stmt.String())
	}
	return child, nil
}

func stamp(err error, st *State, stmt string) error {
	var ve *Error
	if !errors.As(err, &ve) {
		ve = newError(CodeInternal, "%v", err)
	}
	ve.StateID = st.ID
	if ve.Stmt == "" {
		ve.Stmt = stmt
	}
	return ve
}

// exec runs a single statement; Step has already unfolded sequences.
func exec(stmt ast.Stmt, st *State, ids IDSource) (*State, error) {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		if err := st.Symbols.Declare(s.Name, s.Type.Default()); err != nil {
			return nil, err
		}

	case *ast.Assign:
		cur, err := st.Symbols.Lookup(s.Name)
		if err != nil {
			return nil, newError(CodeUndefinedVariable, "variable %q is not declared", s.Name)
		}
		v, err := Eval(s.Value, st)
		if err != nil {
			return nil, err
		}
		if !v.Type().Equal(cur.Type()) {
			return nil, newError(CodeTypeMismatch, "cannot assign %s to %s of type %s", v.Type(), s.Name, cur.Type())
		}
		if err := st.Symbols.Set(s.Name, v); err != nil {
			return nil, err
		}

	case *ast.Print:
		v, err := Eval(s.Value, st)
		if err != nil {
			return nil, err
		}
		st.Output.Append(v)

	case *ast.If:
		cond, err := evalBool(s.Cond, st)
		if err != nil {
			return nil, err
		}
		if cond {
			st.Stack.Push(s.Then)
		} else {
			st.Stack.Push(s.Else)
		}

	case *ast.While:
		cond, err := evalBool(s.Cond, st)
		if err != nil {
			return nil, err
		}
		if cond {
			st.Stack.Push(s)
			st.Stack.Push(s.Body)
		}

	case *ast.HeapNew:
		return nil, execHeapNew(s, st)

	case *ast.HeapWrite:
		return nil, execHeapWrite(s, st)

	case *ast.OpenFile:
		name, err := evalFileName(s.Name, st)
		if err != nil {
			return nil, err
		}
		return nil, st.Files.Open(name)

	case *ast.ReadFile:
		return nil, execReadFile(s, st)

	case *ast.CloseFile:
		name, err := evalFileName(s.Name, st)
		if err != nil {
			return nil, err
		}
		return nil, st.Files.Close(name)

	case *ast.Fork:
		return st.fork(ids.Next(), s.Body), nil

	case *ast.Nop:

	default:
		return nil, newError(CodeInvalidOperator, "unsupported statement %T", stmt)
	}
	return nil, nil
}

func execHeapNew(s *ast.HeapNew, st *State) error {
	v, err := Eval(s.Value, st)
	if err != nil {
		return err
	}
	cur, err := st.Symbols.Lookup(s.Name)
	if err != nil {
		return newError(CodeUndefinedVariable, "variable %q is not declared", s.Name)
	}
	_, pointee, ok := cur.Ref()
	if !ok {
		return newError(CodeTypeMismatch, "new expects a reference variable, %s is %s", s.Name, cur.Type())
	}
	if !pointee.Equal(v.Type()) {
		return newError(CodeHeapTypeMismatch, "cannot allocate %s behind %s", v.Type(), cur.Type())
	}
	addr := st.Heap.Allocate(v)
	return st.Symbols.Set(s.Name, types.RefValue(addr, v.Type()))
}

func execHeapWrite(s *ast.HeapWrite, st *State) error {
	ref, err := Eval(s.Addr, st)
	if err != nil {
		return err
	}
	addr, pointee, ok := ref.Ref()
	if !ok {
		return newError(CodeTypeMismatch, "wH expects a reference, got %s", ref.Type())
	}
	v, err := Eval(s.Value, st)
	if err != nil {
		return err
	}
	if !pointee.Equal(v.Type()) {
		return newError(CodeHeapTypeMismatch, "cannot write %s through %s", v.Type(), ref.Type())
	}
	if err := st.Heap.Write(addr, v); err != nil {
		return heapError(err, addr)
	}
	return nil
}

func execReadFile(s *ast.ReadFile, st *State) error {
	cur, err := st.Symbols.Lookup(s.Target)
	if err != nil {
		return newError(CodeUndefinedVariable, "variable %q is not declared", s.Target)
	}
	if !cur.Type().Equal(types.Int()) {
		return newError(CodeTypeMismatch, "readFile target %s is %s, want int", s.Target, cur.Type())
	}
	name, err := evalFileName(s.Name, st)
	if err != nil {
		return err
	}
	line, ok, err := st.Files.ReadLine(name)
	if err != nil {
		return err
	}
	return st.Symbols.Set(s.Target, types.IntValue(parseLine(line, ok)))
}

// parseLine never fails: end of file and malformed lines read as 0.
func parseLine(line string, ok bool) int64 {
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func evalFileName(e ast.Expr, st *State) (string, error) {
	v, err := Eval(e, st)
	if err != nil {
		return "", err
	}
	name, ok := v.Str()
	if !ok {
		return "", newError(CodeTypeMismatch, "file name must be string, got %s", v.Type())
	}
	return name, nil
}
