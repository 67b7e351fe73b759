package vm

import (
	"testing"

	"forkvm/internal/ast"
	"forkvm/internal/heap"
)

type counter struct{ n int }

func (c *counter) Next() int {
	c.n++
	return c.n
}

func newTestState(prog ast.Stmt) (*State, *counter) {
	ids := &counter{}
	return NewState(ids.Next(), prog, heap.NewPlain(), NewFileTable("")), ids
}

// runToEnd steps st until its stack is empty and returns the forked
// children in creation order.
func runToEnd(t *testing.T, st *State, ids IDSource) []*State {
	t.Helper()
	var children []*State
	for steps := 0; !st.Stack.Empty(); steps++ {
		if steps > 10000 {
			t.Fatalf("state %d did not terminate", st.ID)
		}
		child, err := Step(st, ids)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if child != nil {
			children = append(children, child)
		}
	}
	return children
}

func outputs(st *State) []string {
	var out []string
	for _, v := range st.Output.Values() {
		out = append(out, v.String())
	}
	return out
}
