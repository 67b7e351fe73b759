// Package testkit checks structural invariants of scheduler rounds. Tests
// run it after every round to catch heap and bookkeeping drift early.
package testkit

import (
	"fmt"
	"strconv"
	"strings"

	"forkvm/internal/sched"
	"forkvm/internal/types"
	"forkvm/internal/vm"
)

// CheckRound runs the round invariants on rep:
// 1) state ids are unique and every forked or failed id is among the states
// 2) all states see the same heap, listed by strictly increasing address
// 3) the heap holds exactly GC.Live cells and never address 0
// 4) references held by live states, and by heap cells, point at live cells
func CheckRound(rep sched.RoundReport) error {
	if len(rep.States) == 0 {
		return nil
	}
	byID := make(map[int]*vm.Snapshot, len(rep.States))
	for i := range rep.States {
		s := &rep.States[i]
		if _, dup := byID[s.ID]; dup {
			return fmt.Errorf("round %d: duplicate state id %d", rep.Round, s.ID)
		}
		byID[s.ID] = s
	}
	for _, id := range rep.Forked {
		if _, ok := byID[id]; !ok {
			return fmt.Errorf("round %d: forked state %d is not reported", rep.Round, id)
		}
	}
	for _, id := range rep.Failed {
		s, ok := byID[id]
		if !ok {
			return fmt.Errorf("round %d: failed state %d is not reported", rep.Round, id)
		}
		if s.Err == "" || !s.Done {
			return fmt.Errorf("round %d: failed state %d has no error or is not done", rep.Round, id)
		}
	}

	cells := rep.States[0].Heap
	live := make(map[uint64]struct{}, len(cells))
	for i, c := range cells {
		if uint64(types.Null) == c.Addr {
			return fmt.Errorf("round %d: null address allocated", rep.Round)
		}
		if i > 0 && cells[i-1].Addr >= c.Addr {
			return fmt.Errorf("round %d: heap not ordered at %d", rep.Round, c.Addr)
		}
		live[c.Addr] = struct{}{}
	}
	if len(cells) != rep.GC.Live {
		return fmt.Errorf("round %d: heap has %d cells, gc reported %d live", rep.Round, len(cells), rep.GC.Live)
	}
	for _, s := range rep.States[1:] {
		if !sameHeap(cells, s.Heap) {
			return fmt.Errorf("round %d: state %d sees a different heap", rep.Round, s.ID)
		}
	}

	for _, c := range cells {
		if err := checkRef(c.Value, live); err != nil {
			return fmt.Errorf("round %d: cell %d: %w", rep.Round, c.Addr, err)
		}
	}
	for _, s := range rep.States {
		if s.Done {
			continue
		}
		for _, b := range s.Symbols {
			if err := checkRef(b.Value, live); err != nil {
				return fmt.Errorf("round %d: state %d: %s: %w", rep.Round, s.ID, b.Name, err)
			}
		}
	}
	return nil
}

func sameHeap(a, b []vm.HeapCell) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// checkRef parses the printed form "(addr, type)" of a reference.
func checkRef(rendered string, live map[uint64]struct{}) error {
	if !strings.HasPrefix(rendered, "(") {
		return nil
	}
	head, _, ok := strings.Cut(rendered[1:], ",")
	if !ok {
		return fmt.Errorf("malformed reference %q", rendered)
	}
	addr, err := strconv.ParseUint(head, 10, 64)
	if err != nil {
		return fmt.Errorf("malformed reference %q: %w", rendered, err)
	}
	if addr == uint64(types.Null) {
		return nil
	}
	if _, ok := live[addr]; !ok {
		return fmt.Errorf("dangling reference to %d", addr)
	}
	return nil
}
