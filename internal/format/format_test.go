package format

import (
	"testing"

	"forkvm/internal/ast"
	"forkvm/internal/diag"
)

func TestFormatLayout(t *testing.T) {
	src := `int v; ref int a; v = 10; new(a, 22);
fork { wH(a, 100); if (v > 1) { print(v); } else { nop; } }
while (v < 12) { v = v + 1; }`
	got, err := Source([]byte(src), Options{}, diag.NopReporter{})
	if err != nil {
		t.Fatal(err)
	}
	want := `int v;
ref int a;
v = 10;
new(a, 22);
fork {
    wH(a, 100);
    if (v > 1) {
        print(v);
    }
}
while (v < 12) {
    v = v + 1;
}
`
	if string(got) != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatTabsAndLeftNesting(t *testing.T) {
	prog := &ast.Seq{
		First:  &ast.Seq{First: &ast.Nop{}, Second: &ast.Print{Value: ast.Int(1)}},
		Second: &ast.Fork{Body: &ast.Nop{}},
	}
	got := string(FormatProgram(prog, Options{UseTabs: true}))
	want := "{\n\tnop;\n\tprint(1);\n}\nfork {\n\tnop;\n}\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCheckRoundTrip(t *testing.T) {
	sources := []string{
		"int i; while (i < 3) { i = i + 1; print(i); }",
		"if (true) { } else { print(2); }",
		"{ int a; a = 1; } print(2);",
		"fork { fork { print(1); } print(2); } print(3);",
	}
	for _, src := range sources {
		if ok, msg := CheckRoundTrip([]byte(src), Options{IndentWidth: 2}); !ok {
			t.Errorf("%q: %s", src, msg)
		}
	}
	if ok, _ := CheckRoundTrip([]byte("int ;"), Options{}); ok {
		t.Errorf("broken source must fail the check")
	}
	if _, err := Source([]byte("x = ;"), Options{}, nil); err != ErrParse {
		t.Errorf("expected ErrParse, got %v", err)
	}
}
