package sched

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"testing"

	"forkvm/internal/ast"
	"forkvm/internal/diag"
	"forkvm/internal/heap"
	"forkvm/internal/parser"
	"forkvm/internal/types"
	"forkvm/internal/vm"
)

const forkExample = `
int v;
ref int a;
v = 10;
new(a, 22);
fork {
    wH(a, 100);
    v = 32;
    print(v);
    print(rH(a));
}
print(rH(a));
new(a, 1000);
print(v);
fork { new(a, 999); }
`

func mustLoad(t *testing.T, src string, opts Options) *Controller {
	t.Helper()
	bag := diag.NewBag(0)
	res := parser.ParseSource([]byte(src), parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	if !res.OK() {
		t.Fatalf("parse failed: %v", bag.Items())
	}
	c, err := Load(res.Program, opts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c
}

type recorder struct{ reports []RoundReport }

func (r *recorder) OnRound(rep RoundReport) { r.reports = append(r.reports, rep) }

func heapAddrs(rep RoundReport) []uint64 {
	if len(rep.States) == 0 {
		return nil
	}
	var out []uint64
	for _, c := range rep.States[0].Heap {
		out = append(out, c.Addr)
	}
	return out
}

func TestForkExample(t *testing.T) {
	rec := &recorder{}
	c := mustLoad(t, forkExample, Options{Workers: 1, Observer: rec})
	if _, ok := c.Heap().(*heap.Concurrent); !ok {
		t.Fatalf("auto mode should pick the concurrent heap for a forking program, got %T", c.Heap())
	}
	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := []string{"22", "10", "32", "100"}; !reflect.DeepEqual(res.Output, want) {
		t.Fatalf("output = %v, want %v", res.Output, want)
	}
	if res.Rounds != 10 || len(rec.reports) != 10 {
		t.Fatalf("rounds = %d (reports %d), want 10", res.Rounds, len(rec.reports))
	}
	if got := rec.reports[4].Forked; !reflect.DeepEqual(got, []int{2}) {
		t.Fatalf("round 5 should fork state 2, got %v", got)
	}
	// address 1 held 22 and stays alive while the first child can reach it
	if !slices.Contains(heapAddrs(rec.reports[7]), 1) {
		t.Fatalf("address 1 freed too early: %v", heapAddrs(rec.reports[7]))
	}
	// once a is rebound in the parent and the child has finished it is gone
	if got := heapAddrs(rec.reports[8]); !reflect.DeepEqual(got, []uint64{2}) {
		t.Fatalf("heap after round 9 = %v, want [2]", got)
	}
	if rec.reports[8].GC.Freed != 1 {
		t.Fatalf("round 9 should free one cell, got %+v", rec.reports[8].GC)
	}
	if c.Heap().Len() != 0 {
		t.Fatalf("heap should be empty after the run, has %d cells", c.Heap().Len())
	}
	if c.Phase() != PhaseDone {
		t.Fatalf("phase = %s", c.Phase())
	}
	if st := c.Stats(); st.Forks != 2 || st.Rounds != 10 {
		t.Fatalf("stats = %s", st)
	}
}

func TestDeterministicWithoutFork(t *testing.T) {
	src := `int i; int s; while (i < 5) { i = i + 1; s = s + i * i; print(s); } print(i);`
	var first []vm.Snapshot
	for run := 0; run < 3; run++ {
		rec := &recorder{}
		c := mustLoad(t, src, Options{Workers: 4, Observer: rec})
		if _, ok := c.Heap().(*heap.Plain); !ok {
			t.Fatalf("auto mode should pick the plain heap without forks")
		}
		res, err := c.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if want := []string{"1", "5", "14", "30", "55", "5"}; !reflect.DeepEqual(res.Output, want) {
			t.Fatalf("output = %v", res.Output)
		}
		var all []vm.Snapshot
		for _, r := range rec.reports {
			all = append(all, r.States...)
		}
		if run == 0 {
			first = all
			continue
		}
		if !reflect.DeepEqual(all, first) {
			t.Fatalf("run %d produced different snapshots", run)
		}
	}
}

func TestFailureIsolated(t *testing.T) {
	rec := &recorder{}
	c := mustLoad(t, `int x; fork { x = 1 / x; } print(7); print(8);`, Options{Workers: 2, Observer: rec})
	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"7", "8"}; !reflect.DeepEqual(res.Output, want) {
		t.Fatalf("output = %v", res.Output)
	}
	if len(res.Failed) != 1 {
		t.Fatalf("failures = %+v", res.Failed)
	}
	f := res.Failed[0]
	if f.StateID != 2 || f.Err.Code != vm.CodeDivisionByZero || f.Round != 3 {
		t.Fatalf("unexpected failure %+v (%v)", f, f.Err)
	}
	// the failed state is shown in its round and gone from the next one
	failRound := rec.reports[2]
	if !reflect.DeepEqual(failRound.Failed, []int{2}) {
		t.Fatalf("round 3 failed = %v", failRound.Failed)
	}
	var shown bool
	for _, s := range failRound.States {
		if s.ID == 2 {
			shown = s.Err != "" && s.Done
		}
	}
	if !shown {
		t.Fatalf("failed state missing from its round: %+v", failRound.States)
	}
	for _, s := range rec.reports[3].States {
		if s.ID == 2 {
			t.Fatalf("failed state still reported in the next round")
		}
	}
}

func TestTypeErrorNeverScheduled(t *testing.T) {
	res := parser.ParseSource([]byte(`int v; v = "idk"; print(v);`), parser.Options{})
	if !res.OK() {
		t.Fatal("parse failed")
	}
	bag := diag.NewBag(0)
	c, err := Load(res.Program, Options{Reporter: diag.BagReporter{Bag: bag}})
	if !errors.Is(err, ErrRejected) || c != nil {
		t.Fatalf("expected rejection, got %v %v", c, err)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.TypeMismatch {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
}

func TestRoundLimitAndCancel(t *testing.T) {
	c := mustLoad(t, `while (true) { nop; }`, Options{MaxRounds: 5})
	res, err := c.Run(context.Background())
	if !errors.Is(err, ErrRoundLimit) || res.Rounds != 5 {
		t.Fatalf("got %d rounds, err %v", res.Rounds, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c = mustLoad(t, `print(1);`, Options{})
	res, err = c.Run(ctx)
	if !errors.Is(err, context.Canceled) || res.Rounds != 0 {
		t.Fatalf("cancelled run: %d rounds, err %v", res.Rounds, err)
	}
}

type brokenLogger struct{ calls int }

func (b *brokenLogger) Log(int, []vm.Snapshot) error { b.calls++; return errors.New("disk full") }
func (b *brokenLogger) Close() error                 { return nil }

func TestLoggerErrorsDoNotAbort(t *testing.T) {
	lg := &brokenLogger{}
	c := mustLoad(t, `print(1); print(2);`, Options{Logger: lg})
	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("logger errors must not abort: %v", err)
	}
	if lg.calls != 2 || c.Stats().LogErrs != 2 || len(res.Output) != 2 {
		t.Fatalf("calls=%d stats=%s output=%v", lg.calls, c.Stats(), res.Output)
	}
}

func TestReadFileThroughController(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "test.in"), []byte("15\n50\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	src := `string f; f = "test.in"; openRFile(f); int a; int b;
readFile(f, a); readFile(f, b); closeRFile(f);
if (a >= b) { print(a); } else { print(b); }`
	c := mustLoad(t, src, Options{FilesDir: dir})
	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(res.Output, []string{"50"}) {
		t.Fatalf("output = %v", res.Output)
	}
}

func TestForcedPlainHeapSteppedSerially(t *testing.T) {
	c := mustLoad(t, forkExample, Options{Heap: HeapPlain, Workers: 8})
	if c.Workers() != 1 {
		t.Fatalf("plain heap with forks must use one worker, got %d", c.Workers())
	}
	c = mustLoad(t, `print(1);`, Options{Heap: HeapConcurrent, Shards: 4})
	if _, ok := c.Heap().(*heap.Concurrent); !ok {
		t.Fatalf("forced concurrent heap ignored")
	}
}

func TestIDAllocator(t *testing.T) {
	var ids IDAllocator
	if ids.Next() != 1 || ids.Next() != 2 || ids.Last() != 2 {
		t.Fatalf("ids must start at 1 and increase")
	}
	var _ vm.IDSource = &ids
}

func TestIncompleteTreeRejected(t *testing.T) {
	prog := &ast.Print{Value: &ast.Logic{Op: ast.OpAnd, LHS: ast.Bool(true)}}
	bag := diag.NewBag(0)
	c, err := Load(prog, Options{Reporter: diag.BagReporter{Bag: bag}})
	if !errors.Is(err, ErrRejected) || c != nil {
		t.Fatalf("expected rejection, got %v %v", c, err)
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.TypeMalformed {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
}

// explodingHeap panics on allocation.
type explodingHeap struct{ heap.Heap }

func (explodingHeap) Allocate(v types.Value) types.Address { panic("allocation refused") }

func TestPanicFailsOnlyItsState(t *testing.T) {
	c := mustLoad(t, `fork { print(1); print(2); } ref int a; new(a, 5); print(3);`, Options{Workers: 2})
	h := explodingHeap{Heap: heap.NewPlain()}
	c.heap = h
	c.root.Heap = h

	res, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := []string{"1", "2"}; !reflect.DeepEqual(res.Output, want) {
		t.Fatalf("output = %v, want %v", res.Output, want)
	}
	if len(res.Failed) != 1 {
		t.Fatalf("failures = %+v", res.Failed)
	}
	f := res.Failed[0]
	if f.StateID != 1 || f.Round != 3 || f.Err.Code != vm.CodeInternal {
		t.Fatalf("unexpected failure %+v (%v)", f, f.Err)
	}
}

func TestCloseReleasesFilesOfSteppedRun(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "in.txt"), []byte("1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c := mustLoad(t, `string f; f = "in.txt"; openRFile(f); nop;`, Options{Workers: 1, FilesDir: dir})
	for range 3 {
		if _, err := c.RunRound(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if files := c.Snapshots()[0].Files; !slices.Equal(files, []string{"in.txt"}) {
		t.Fatalf("files after open = %v", files)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if files := c.Snapshots()[0].Files; len(files) != 0 {
		t.Fatalf("files after Close = %v", files)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
