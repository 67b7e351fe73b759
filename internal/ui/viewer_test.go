package ui

import (
	"strings"
	"testing"

	"forkvm/internal/heap"
	"forkvm/internal/sched"
	"forkvm/internal/vm"
)

func TestViewerTracksStates(t *testing.T) {
	ch := make(chan sched.RoundReport)
	m := NewViewerModel("prog.fv", ch).(*viewerModel)

	m.Update(reportMsg{
		Round: 5,
		States: []vm.Snapshot{
			{ID: 2, Stack: []string{"wH(a, 100);"}, Symbols: []vm.Binding{{Name: "a", Value: "(1, int)"}}},
			{ID: 1, Stack: []string{"print(rH(a));"}, Heap: []vm.HeapCell{{Addr: 1, Value: "22"}}, Output: []string{"7"}},
		},
	})
	m.Update(reportMsg{
		Round: 6,
		GC:    heap.Stats{Freed: 2},
		States: []vm.Snapshot{
			{ID: 1, Done: true},
			{ID: 2, Err: "panic VM1003: division by zero", Done: true},
		},
	})

	if len(m.items) != 2 || m.items[0].id != 1 || m.items[1].id != 2 {
		t.Fatalf("items not sorted by id: %+v", m.items)
	}
	if m.items[0].status != "done" || m.items[1].status != "failed" {
		t.Fatalf("statuses = %s, %s", m.items[0].status, m.items[1].status)
	}
	view := m.View()
	for _, want := range []string{"round 6", "panic VM1003", "(freed 2)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestViewerQuitsWhenChannelCloses(t *testing.T) {
	ch := make(chan sched.RoundReport)
	close(ch)
	m := NewViewerModel("prog.fv", ch).(*viewerModel)
	msg := m.listen()()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("expected doneMsg, got %T", msg)
	}
	_, cmd := m.Update(msg)
	if !m.done || cmd == nil {
		t.Fatalf("model should finish and return tea.Quit")
	}
	if !strings.Contains(m.View(), "done: prog.fv") {
		t.Fatalf("view = %q", m.View())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefghij", 6); got != "abc..." {
		t.Fatalf("got %q", got)
	}
	if got := truncate("短い文字列です", 8); !strings.HasSuffix(got, "...") {
		t.Fatalf("wide runes not truncated: %q", got)
	}
}
