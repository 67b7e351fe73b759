package ast

import (
	"forkvm/internal/types"
)

// StmtKind identifies a statement variant.
type StmtKind uint8

const (
	StmtVarDecl StmtKind = iota
	StmtAssign
	StmtPrint
	StmtIf
	StmtWhile
	StmtSeq
	StmtHeapNew
	StmtHeapWrite
	StmtOpenFile
	StmtReadFile
	StmtCloseFile
	StmtFork
	StmtNop
)

var stmtKindNames = [...]string{
	StmtVarDecl:   "vardecl",
	StmtAssign:    "assign",
	StmtPrint:     "print",
	StmtIf:        "if",
	StmtWhile:     "while",
	StmtSeq:       "seq",
	StmtHeapNew:   "new",
	StmtHeapWrite: "wH",
	StmtOpenFile:  "openRFile",
	StmtReadFile:  "readFile",
	StmtCloseFile: "closeRFile",
	StmtFork:      "fork",
	StmtNop:       "nop",
}

func (k StmtKind) String() string {
	if int(k) < len(stmtKindNames) {
		return stmtKindNames[k]
	}
	return "unknown"
}

// Stmt is a closed set of statement nodes.
// Nodes are never mutated after construction, so the same node may sit on
// several execution stacks at once.
type Stmt interface {
	Kind() StmtKind
	String() string
	stmtNode()
}

// VarDecl binds Name to the default value of Type.
type VarDecl struct {
	Name string
	Type types.Type
}

// Assign overwrites an existing binding.
type Assign struct {
	Name  string
	Value Expr
}

// Print appends a value to the output.
type Print struct {
	Value Expr
}

// If pushes Then or Else depending on Cond.
type If struct {
	Cond       Expr
	Then, Else Stmt
}

// While re-pushes itself after Body while Cond holds.
type While struct {
	Cond Expr
	Body Stmt
}

// Seq runs First then Second.
type Seq struct {
	First, Second Stmt
}

// HeapNew allocates Value and rebinds Name to the new reference.
type HeapNew struct {
	Name  string
	Value Expr
}

// HeapWrite stores Value at the address Addr evaluates to (wH).
type HeapWrite struct {
	Addr  Expr
	Value Expr
}

// OpenFile opens a read handle for the file named by Name.
type OpenFile struct {
	Name Expr
}

// ReadFile reads one integer line from an open file into Target.
type ReadFile struct {
	Name   Expr
	Target string
}

// CloseFile closes an open read handle.
type CloseFile struct {
	Name Expr
}

// Fork starts Body in a new program state.
type Fork struct {
	Body Stmt
}

// Nop does nothing.
type Nop struct{}

func (*VarDecl) Kind() StmtKind   { return StmtVarDecl }
func (*Assign) Kind() StmtKind    { return StmtAssign }
func (*Print) Kind() StmtKind     { return StmtPrint }
func (*If) Kind() StmtKind        { return StmtIf }
func (*While) Kind() StmtKind     { return StmtWhile }
func (*Seq) Kind() StmtKind       { return StmtSeq }
func (*HeapNew) Kind() StmtKind   { return StmtHeapNew }
func (*HeapWrite) Kind() StmtKind { return StmtHeapWrite }
func (*OpenFile) Kind() StmtKind  { return StmtOpenFile }
func (*ReadFile) Kind() StmtKind  { return StmtReadFile }
func (*CloseFile) Kind() StmtKind { return StmtCloseFile }
func (*Fork) Kind() StmtKind      { return StmtFork }
func (*Nop) Kind() StmtKind       { return StmtNop }

func (*VarDecl) stmtNode()   {}
func (*Assign) stmtNode()    {}
func (*Print) stmtNode()     {}
func (*If) stmtNode()        {}
func (*While) stmtNode()     {}
func (*Seq) stmtNode()       {}
func (*HeapNew) stmtNode()   {}
func (*HeapWrite) stmtNode() {}
func (*OpenFile) stmtNode()  {}
func (*ReadFile) stmtNode()  {}
func (*CloseFile) stmtNode() {}
func (*Fork) stmtNode()      {}
func (*Nop) stmtNode()       {}

// Block folds stmts into right-nested Seq nodes. An empty block is Nop.
func Block(stmts ...Stmt) Stmt {
	switch len(stmts) {
	case 0:
		return &Nop{}
	case 1:
		return stmts[0]
	}
	out := stmts[len(stmts)-1]
	for i := len(stmts) - 2; i >= 0; i-- {
		out = &Seq{First: stmts[i], Second: out}
	}
	return out
}

// Walk visits stmt and every nested statement in pre-order.
// Returning false from fn skips the children of that node.
func Walk(stmt Stmt, fn func(Stmt) bool) {
	if MissingStmt(stmt) || !fn(stmt) {
		return
	}
	switch s := stmt.(type) {
	case *Seq:
		Walk(s.First, fn)
		Walk(s.Second, fn)
	case *If:
		Walk(s.Then, fn)
		Walk(s.Else, fn)
	case *While:
		Walk(s.Body, fn)
	case *Fork:
		Walk(s.Body, fn)
	}
}

// ContainsFork reports whether the program can spawn new states.
func ContainsFork(stmt Stmt) bool {
	found := false
	Walk(stmt, func(s Stmt) bool {
		if s.Kind() == StmtFork {
			found = true
		}
		return !found
	})
	return found
}

// MissingStmt is Missing for statements.
func MissingStmt(s Stmt) bool {
	switch x := s.(type) {
	case nil:
		return true
	case *VarDecl:
		return x == nil
	case *Assign:
		return x == nil
	case *Print:
		return x == nil
	case *If:
		return x == nil
	case *While:
		return x == nil
	case *Seq:
		return x == nil
	case *HeapNew:
		return x == nil
	case *HeapWrite:
		return x == nil
	case *OpenFile:
		return x == nil
	case *ReadFile:
		return x == nil
	case *CloseFile:
		return x == nil
	case *Fork:
		return x == nil
	case *Nop:
		return x == nil
	}
	return false
}
