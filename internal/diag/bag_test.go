package diag

import (
	"strings"
	"testing"

	"forkvm/internal/token"
)

func TestBagRespectsLimit(t *testing.T) {
	bag := NewBag(2)
	r := BagReporter{Bag: bag}
	for i := 0; i < 5; i++ {
		ReportError(r, SynUnexpectedToken, token.Pos{Line: i + 1, Col: 1}, "boom")
	}
	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", bag.Len())
	}
	if !bag.HasErrors() {
		t.Errorf("bag should report errors")
	}
}

func TestBagSortByPosition(t *testing.T) {
	bag := NewBag(10)
	bag.Add(Diagnostic{Severity: SevError, Code: TypeMismatch, Pos: token.Pos{Line: 3, Col: 1}})
	bag.Add(Diagnostic{Severity: SevWarning, Code: TypeMismatch, Pos: token.Pos{Line: 1, Col: 4}})
	bag.Add(Diagnostic{Severity: SevError, Code: LexBadNumber, Pos: token.Pos{Line: 1, Col: 4}})
	bag.Sort()
	items := bag.Items()
	if items[0].Code != LexBadNumber || items[1].Severity != SevWarning || items[2].Pos.Line != 3 {
		t.Fatalf("unexpected order: %+v", items)
	}
}

func TestCodeIDs(t *testing.T) {
	cases := map[Code]string{
		LexUnknownChar:     "LEX1001",
		SynUnexpectedToken: "SYN2001",
		TypeMismatch:       "TC3001",
		IOLoadFileError:    "IO4001",
		UnknownCode:        "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Errorf("%d: ID = %q, want %q", code, got, want)
		}
	}
	if !strings.Contains(TypeMismatch.String(), "Type mismatch") {
		t.Errorf("String should contain the title: %q", TypeMismatch.String())
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Severity: SevError, Code: TypeMismatch, Message: "bad", Pos: token.Pos{Line: 2, Col: 5}, Construct: "v = \"idk\";"}
	got := d.String()
	want := "2:5: ERROR TC3001: bad\n    in: v = \"idk\";"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
