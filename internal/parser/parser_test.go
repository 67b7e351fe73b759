package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"forkvm/internal/ast"
	"forkvm/internal/diag"
	"forkvm/internal/types"
)

func diagnosticsSummary(bag *diag.Bag) string {
	if bag == nil {
		return "<nil bag>"
	}
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

func parseOK(t *testing.T, src string) ast.Stmt {
	t.Helper()
	bag := diag.NewBag(0)
	res := ParseSource([]byte(src), Options{Reporter: diag.BagReporter{Bag: bag}})
	if !res.OK() {
		t.Fatalf("parse %q failed: %s", src, diagnosticsSummary(bag))
	}
	return res.Program
}

func parseErr(t *testing.T, src string) *diag.Bag {
	t.Helper()
	bag := diag.NewBag(0)
	res := ParseSource([]byte(src), Options{Reporter: diag.BagReporter{Bag: bag}})
	if res.OK() {
		t.Fatalf("parse %q should fail", src)
	}
	return bag
}

func TestParseForkExample(t *testing.T) {
	src := `
ref int a;
new(a, 22);
fork {
    wH(a, 30);
    print(rH(a));
}
print(rH(a));
`
	got := parseOK(t, src)
	want := ast.Block(
		&ast.VarDecl{Name: "a", Type: types.Ref(types.Int())},
		&ast.HeapNew{Name: "a", Value: ast.Int(22)},
		&ast.Fork{Body: ast.Block(
			&ast.HeapWrite{Addr: ast.Var("a"), Value: ast.Int(30)},
			&ast.Print{Value: ast.RH(ast.Var("a"))},
		)},
		&ast.Print{Value: ast.RH(ast.Var("a"))},
	)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got\n%s\nwant\n%s", got, want)
	}
}

func TestPrecedence(t *testing.T) {
	prog := parseOK(t, "x = 1 + 2 * 3 < 10 && !b || c;")
	assign, ok := prog.(*ast.Assign)
	if !ok {
		t.Fatalf("expected assignment, got %T", prog)
	}
	want := ast.Or(
		ast.And(
			ast.Cmp(ast.OpLt, ast.Bin(ast.OpAdd, ast.Int(1), ast.Bin(ast.OpMul, ast.Int(2), ast.Int(3))), ast.Int(10)),
			ast.Not(ast.Var("b")),
		),
		ast.Var("c"),
	)
	if !reflect.DeepEqual(assign.Value, ast.Expr(want)) {
		t.Fatalf("got %s, want %s", assign.Value, want)
	}
}

func TestUnaryMinus(t *testing.T) {
	prog := parseOK(t, "x = -3 - -y;")
	want := ast.Bin(ast.OpSub, ast.Int(-3), ast.Bin(ast.OpSub, ast.Int(0), ast.Var("y")))
	if got := prog.(*ast.Assign).Value; !reflect.DeepEqual(got, ast.Expr(want)) {
		t.Fatalf("got %s, want %s", got, want)
	}
	parseOK(t, "x = -9223372036854775808;")
	parseErr(t, "x = 9223372036854775808;")
}

func TestRoundTrip(t *testing.T) {
	sources := []string{
		"int v; v = 10; print(v);",
		"bool b; b = !(1 < 2) && (true || false);",
		"int x; x = (1 - 2) - 3; x = 1 - (2 - 3); x = 8 / (2 * 2);",
		"string s; s = \"in\\\"put\"; openRFile(s); int n; readFile(s, n); closeRFile(s);",
		"int i; while (i < 3) { i = i + 1; print(i); } nop;",
		"if (1 == 1) { print(1); } else { print(2); } if (true) { nop; }",
		"ref ref int rr; ref int r; new(r, 5); new(rr, r); wH(rH(rr), 6);",
		"{ int a; a = 1; } print(2);",
		"fork { fork { print(1); } print(2); } print(3);",
		"{ }",
	}
	for _, src := range sources {
		first := parseOK(t, src)
		rendered := first.String()
		second := parseOK(t, rendered)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("round trip changed the tree:\n src: %s\n out: %s\n again: %s", src, rendered, second)
		}
		if again := second.String(); again != rendered {
			t.Errorf("rendering is not stable: %q vs %q", rendered, again)
		}
	}
}

func TestSyntaxErrors(t *testing.T) {
	cases := map[string]diag.Code{
		"int x":                 diag.SynExpectSemicolon,
		"x = ;":                 diag.SynUnexpectedToken,
		"while (true) { nop;":   diag.SynUnclosedBrace,
		"print((1);":            diag.SynUnclosedParen,
		"ref x;":                diag.SynExpectType,
		"new(1, 2);":            diag.SynExpectIdent,
		"x = 1 < 2 < 3;":        diag.SynUnexpectedToken,
		"}":                     diag.SynUnexpectedToken,
	}
	for src, code := range cases {
		bag := parseErr(t, src)
		if bag.Len() == 0 || bag.Items()[0].Code != code {
			t.Errorf("%q: got %s, want %s", src, diagnosticsSummary(bag), code.ID())
		}
	}
}

func TestRecoveryReportsSeveralErrors(t *testing.T) {
	bag := parseErr(t, "int ; x = ; print(1);\nnop")
	if bag.Len() < 3 {
		t.Fatalf("expected at least 3 diagnostics, got %s", diagnosticsSummary(bag))
	}
	last := bag.Items()[bag.Len()-1]
	if last.Pos.Line != 2 {
		t.Errorf("missing ';' should point at line 2, got %s", last.Pos)
	}
}

func TestMaxErrors(t *testing.T) {
	bag := diag.NewBag(0)
	res := ParseSource([]byte("x = ; y = ; z = ;"), Options{MaxErrors: 1, Reporter: diag.BagReporter{Bag: bag}})
	if res.Errors != 3 {
		t.Errorf("errors counted = %d, want 3", res.Errors)
	}
	if bag.Len() != 1 {
		t.Errorf("reported = %d, want 1", bag.Len())
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.fv")
	if err := os.WriteFile(path, []byte("print(1);"), 0o600); err != nil {
		t.Fatal(err)
	}
	if res := ParseFile(path, Options{}); !res.OK() {
		t.Fatalf("ParseFile failed")
	}
	bag := diag.NewBag(0)
	res := ParseFile(filepath.Join(dir, "missing.fv"), Options{Reporter: diag.BagReporter{Bag: bag}})
	if res.OK() || bag.Items()[0].Code != diag.IOLoadFileError {
		t.Fatalf("missing file should report %s", diag.IOLoadFileError.ID())
	}
}
