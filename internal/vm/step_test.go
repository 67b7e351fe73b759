package vm

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"forkvm/internal/ast"
	"forkvm/internal/heap"
	"forkvm/internal/types"
)

func TestSeqOfNopsTakesTwoSteps(t *testing.T) {
	st, ids := newTestState(&ast.Seq{First: &ast.Nop{}, Second: &ast.Nop{}})
	steps := 0
	for !st.Stack.Empty() {
		if _, err := Step(st, ids); err != nil {
			t.Fatalf("step: %v", err)
		}
		steps++
	}
	if steps != 2 {
		t.Fatalf("steps = %d, want 2", steps)
	}
	if st.Output.Len() != 0 || st.Symbols.Len() != 0 {
		t.Fatalf("Nop changed the state")
	}
}

func TestSeqRunsFirstAndKeepsSecond(t *testing.T) {
	first, second := &ast.Print{Value: ast.Int(1)}, &ast.Print{Value: ast.Int(2)}
	st, ids := newTestState(&ast.Seq{First: first, Second: second})
	if _, err := Step(st, ids); err != nil {
		t.Fatal(err)
	}
	items := st.Stack.Items()
	if len(items) != 1 || items[0] != ast.Stmt(second) {
		t.Fatalf("stack after Seq = %v", items)
	}
	if got := outputs(st); !slices.Equal(got, []string{"1"}) {
		t.Fatalf("output = %v", got)
	}
}

func TestNestedSeqUnfoldsInOrder(t *testing.T) {
	// Seq(Seq(a, b), c) must run a, b, c
	prog := &ast.Seq{
		First:  &ast.Seq{First: &ast.Print{Value: ast.Int(1)}, Second: &ast.Print{Value: ast.Int(2)}},
		Second: &ast.Print{Value: ast.Int(3)},
	}
	st, ids := newTestState(prog)
	runToEnd(t, st, ids)
	if got := outputs(st); !slices.Equal(got, []string{"1", "2", "3"}) {
		t.Fatalf("output = %v", got)
	}
}

func TestWhileFalseNeverPushesBody(t *testing.T) {
	body := &ast.Print{Value: ast.Int(1)}
	st, ids := newTestState(&ast.While{Cond: ast.Bool(false), Body: body})
	if _, err := Step(st, ids); err != nil {
		t.Fatal(err)
	}
	if !st.Stack.Empty() {
		t.Fatalf("stack = %v", st.Stack.Items())
	}
}

func TestWhileRepushesSameNode(t *testing.T) {
	loop := &ast.While{Cond: ast.Cmp(ast.OpLt, ast.Var("i"), ast.Int(3)), Body: &ast.Assign{Name: "i", Value: ast.Bin(ast.OpAdd, ast.Var("i"), ast.Int(1))}}
	st, ids := newTestState(ast.Block(&ast.VarDecl{Name: "i", Type: types.Int()}, loop, &ast.Print{Value: ast.Var("i")}))
	// VarDecl, then While
	for i := 0; i < 2; i++ {
		if _, err := Step(st, ids); err != nil {
			t.Fatal(err)
		}
	}
	items := st.Stack.Items()
	if len(items) < 2 || items[1] != ast.Stmt(loop) {
		t.Fatalf("While must re-push itself under its body, stack = %v", items)
	}
	runToEnd(t, st, ids)
	if got := outputs(st); !slices.Equal(got, []string{"3"}) {
		t.Fatalf("output = %v", got)
	}
}

func TestIfBranches(t *testing.T) {
	prog := ast.Block(
		&ast.If{Cond: ast.Cmp(ast.OpGe, ast.Int(2), ast.Int(1)), Then: &ast.Print{Value: ast.Str("then")}, Else: &ast.Print{Value: ast.Str("else")}},
		&ast.If{Cond: ast.Bool(false), Then: &ast.Print{Value: ast.Int(1)}, Else: &ast.Nop{}},
	)
	st, ids := newTestState(prog)
	runToEnd(t, st, ids)
	if got := outputs(st); !slices.Equal(got, []string{`"then"`}) {
		t.Fatalf("output = %v", got)
	}
}

func TestArithmeticAndLogic(t *testing.T) {
	st, _ := newTestState(&ast.Nop{})
	cases := []struct {
		expr ast.Expr
		want types.Value
	}{
		{ast.Bin(ast.OpSub, ast.Int(7), ast.Bin(ast.OpMul, ast.Int(2), ast.Int(3))), types.IntValue(1)},
		{ast.Bin(ast.OpDiv, ast.Int(-7), ast.Int(2)), types.IntValue(-3)},
		{ast.Cmp(ast.OpNe, ast.Int(1), ast.Int(2)), types.BoolValue(true)},
		{ast.Or(ast.Bool(false), ast.Not(ast.Bool(false))), types.BoolValue(true)},
		{ast.And(ast.Bool(true), ast.Bool(false)), types.BoolValue(false)},
	}
	for _, tc := range cases {
		got, err := Eval(tc.expr, st)
		if err != nil {
			t.Fatalf("%s: %v", tc.expr, err)
		}
		if !got.Equal(tc.want) {
			t.Errorf("%s = %s, want %s", tc.expr, got, tc.want)
		}
	}
}

func codeOf(t *testing.T, err error) Code {
	t.Helper()
	var ve *Error
	if !errors.As(err, &ve) {
		t.Fatalf("expected *vm.Error, got %v", err)
	}
	return ve.Code
}

func TestRuntimeErrors(t *testing.T) {
	refInt := types.Ref(types.Int())
	cases := []struct {
		name string
		prog ast.Stmt
		code Code
	}{
		{"division by zero", &ast.Print{Value: ast.Bin(ast.OpDiv, ast.Int(1), ast.Int(0))}, CodeDivisionByZero},
		{"undefined variable", &ast.Print{Value: ast.Var("nope")}, CodeUndefinedVariable},
		{"assign undefined", &ast.Assign{Name: "x", Value: ast.Int(1)}, CodeUndefinedVariable},
		{"duplicate decl", ast.Block(&ast.VarDecl{Name: "v", Type: types.Int()}, &ast.VarDecl{Name: "v", Type: types.Int()}), CodeDuplicateKey},
		{"assign mismatch", ast.Block(&ast.VarDecl{Name: "v", Type: types.Int()}, &ast.Assign{Name: "v", Value: ast.Str("idk")}), CodeTypeMismatch},
		{"non-bool condition", &ast.If{Cond: ast.Int(1), Then: &ast.Nop{}, Else: &ast.Nop{}}, CodeTypeMismatch},
		{"rH of null", ast.Block(&ast.VarDecl{Name: "a", Type: refInt}, &ast.Print{Value: ast.RH(ast.Var("a"))}), CodeInvalidAddress},
		{"wH of null", ast.Block(&ast.VarDecl{Name: "a", Type: refInt}, &ast.HeapWrite{Addr: ast.Var("a"), Value: ast.Int(1)}), CodeInvalidAddress},
		{"new wrong type", ast.Block(&ast.VarDecl{Name: "a", Type: refInt}, &ast.HeapNew{Name: "a", Value: ast.Bool(true)}), CodeHeapTypeMismatch},
		{"wH wrong type", ast.Block(&ast.VarDecl{Name: "a", Type: refInt}, &ast.HeapNew{Name: "a", Value: ast.Int(1)}, &ast.HeapWrite{Addr: ast.Var("a"), Value: ast.Str("s")}), CodeHeapTypeMismatch},
		{"close not open", &ast.CloseFile{Name: ast.Str("x.in")}, CodeFileNotOpen},
		{"open missing", &ast.OpenFile{Name: ast.Str("definitely-missing.in")}, CodeFileIO},
	}
	for _, tc := range cases {
		st, ids := newTestState(tc.prog)
		var err error
		for err == nil && !st.Stack.Empty() {
			_, err = Step(st, ids)
		}
		if err == nil {
			t.Errorf("%s: expected an error", tc.name)
			continue
		}
		if got := codeOf(t, err); got != tc.code {
			t.Errorf("%s: code = %s, want %s (%v)", tc.name, got, tc.code, err)
		}
		var ve *Error
		errors.As(err, &ve)
		if ve.StateID != st.ID || ve.Stmt == "" {
			t.Errorf("%s: error not stamped: %+v", tc.name, ve)
		}
	}
}

func TestStepEmptyStack(t *testing.T) {
	st, ids := newTestState(&ast.Nop{})
	runToEnd(t, st, ids)
	_, err := Step(st, ids)
	if got := codeOf(t, err); got != CodeEmptyStack || got.Class() != ClassStack {
		t.Fatalf("code = %s", got)
	}
}

func TestFailMakesStateTerminal(t *testing.T) {
	st, ids := newTestState(ast.Block(&ast.Print{Value: ast.Var("x")}, &ast.Print{Value: ast.Int(1)}))
	for !st.Done() {
		if _, err := Step(st, ids); err != nil {
			st.Fail(err)
		}
	}
	if !st.Failed() || st.Err.StateID != st.ID {
		t.Fatalf("state should be failed: %+v", st.Err)
	}
	if st.Output.Len() != 0 {
		t.Fatalf("failed state kept running")
	}
	if snap := st.Snapshot(); snap.Err == "" || !snap.Done {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestReadFileParsesLinesAndDefaultsToZero(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "test.in", "15\n  50 \nnot-a-number\n")
	fileVar := ast.Var("f")
	prog := ast.Block(
		&ast.VarDecl{Name: "f", Type: types.Str()},
		&ast.Assign{Name: "f", Value: ast.Str("test.in")},
		&ast.OpenFile{Name: fileVar},
		&ast.VarDecl{Name: "c", Type: types.Int()},
		&ast.ReadFile{Name: fileVar, Target: "c"}, &ast.Print{Value: ast.Var("c")},
		&ast.ReadFile{Name: fileVar, Target: "c"}, &ast.Print{Value: ast.Var("c")},
		&ast.ReadFile{Name: fileVar, Target: "c"}, &ast.Print{Value: ast.Var("c")},
		// end of file
		&ast.ReadFile{Name: fileVar, Target: "c"}, &ast.Print{Value: ast.Var("c")},
		&ast.CloseFile{Name: fileVar},
	)
	ids := &counter{}
	st := NewState(ids.Next(), prog, heap.NewPlain(), NewFileTable(dir))
	runToEnd(t, st, ids)
	if got := outputs(st); !slices.Equal(got, []string{"15", "50", "0", "0"}) {
		t.Fatalf("output = %v", got)
	}
	if len(st.Files.Names()) != 0 {
		t.Fatalf("file left open: %v", st.Files.Names())
	}
}

func TestOpenTwiceFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.in", "1\n")
	files := NewFileTable(dir)
	if err := files.Open("a.in"); err != nil {
		t.Fatal(err)
	}
	if got := codeOf(t, files.Open("a.in")); got != CodeFileAlreadyOpen {
		t.Fatalf("code = %s", got)
	}
	if err := files.CloseAll(); err != nil {
		t.Fatal(err)
	}
}

func TestHeapNewRebinds(t *testing.T) {
	prog := ast.Block(
		&ast.VarDecl{Name: "a", Type: types.Ref(types.Int())},
		&ast.HeapNew{Name: "a", Value: ast.Int(22)},
		&ast.HeapWrite{Addr: ast.Var("a"), Value: ast.Bin(ast.OpAdd, ast.RH(ast.Var("a")), ast.Int(1))},
		&ast.Print{Value: ast.RH(ast.Var("a"))},
		&ast.Print{Value: ast.Var("a")},
	)
	st, ids := newTestState(prog)
	runToEnd(t, st, ids)
	if got := outputs(st); !slices.Equal(got, []string{"23", "(1, int)"}) {
		t.Fatalf("output = %v", got)
	}
}

func TestForkCopiesSymbolsAndSharesOutput(t *testing.T) {
	prog := ast.Block(
		&ast.VarDecl{Name: "v", Type: types.Int()},
		&ast.Assign{Name: "v", Value: ast.Int(10)},
		&ast.Fork{Body: ast.Block(&ast.Assign{Name: "v", Value: ast.Int(32)}, &ast.Print{Value: ast.Var("v")})},
		&ast.Print{Value: ast.Var("v")},
	)
	st, ids := newTestState(prog)
	children := runToEnd(t, st, ids)
	if len(children) != 1 {
		t.Fatalf("children = %d", len(children))
	}
	child := children[0]
	if child.ID == st.ID || child.ID != 2 {
		t.Fatalf("child id = %d", child.ID)
	}
	if child.Output != st.Output || child.Files != st.Files || child.Heap != st.Heap {
		t.Fatalf("fork must alias output, files and heap")
	}
	runToEnd(t, child, ids)
	if v, _ := st.Symbols.Lookup("v"); !v.Equal(types.IntValue(10)) {
		t.Fatalf("parent v = %s, fork wrote through", v)
	}
	if got := outputs(st); !slices.Equal(got, []string{"10", "32"}) {
		t.Fatalf("shared output = %v", got)
	}
}

func TestSnapshotShape(t *testing.T) {
	prog := ast.Block(
		&ast.VarDecl{Name: "a", Type: types.Ref(types.Int())},
		&ast.HeapNew{Name: "a", Value: ast.Int(5)},
		&ast.Print{Value: ast.Str("hi")},
	)
	st, ids := newTestState(prog)
	runToEnd(t, st, ids)
	snap := st.Snapshot()
	if snap.ID != 1 || !snap.Done || len(snap.Stack) != 0 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if len(snap.Symbols) != 1 || snap.Symbols[0] != (Binding{Name: "a", Type: "ref int", Value: "(1, int)"}) {
		t.Fatalf("symbols = %+v", snap.Symbols)
	}
	if len(snap.Heap) != 1 || snap.Heap[0] != (HeapCell{Addr: 1, Value: "5"}) {
		t.Fatalf("heap = %+v", snap.Heap)
	}
	if !slices.Equal(snap.Output, []string{`"hi"`}) {
		t.Fatalf("output = %v", snap.Output)
	}
}

func TestIncompleteTreeFailsCleanly(t *testing.T) {
	st, ids := newTestState(ast.Block(
		&ast.Print{Value: &ast.Logic{Op: ast.OpAnd, LHS: ast.Bool(true)}},
		&ast.Print{Value: ast.Int(1)},
	))
	_, err := Step(st, ids)
	var ve *Error
	if !errors.As(err, &ve) || ve.Code != CodeInvalidOperator {
		t.Fatalf("expected %s, got %v", CodeInvalidOperator, err)
	}
	if ve.Stmt != "print(true && <missing>);" {
		t.Errorf("stmt = %q", ve.Stmt)
	}
	if got := st.Snapshot().Stack; len(got) != 1 || got[0] != "print(1);" {
		t.Errorf("remaining stack = %v", got)
	}
}
