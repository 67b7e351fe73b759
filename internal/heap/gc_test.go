package heap

import (
	"testing"

	"forkvm/internal/types"
)

type roots []types.Value

func (r roots) EachValue(fn func(types.Value)) {
	for _, v := range r {
		fn(v)
	}
}

var refInt = types.Ref(types.Int())

func TestCollectFollowsChains(t *testing.T) {
	h := NewPlain()
	leaf := h.Allocate(types.IntValue(22))
	mid := h.Allocate(types.RefValue(leaf, types.Int()))
	garbage := h.Allocate(types.IntValue(1000))
	orphanRef := h.Allocate(types.RefValue(garbage, types.Int()))

	st := Collect(h, []RootSet{roots{
		types.IntValue(5),
		types.RefValue(mid, refInt),
		types.RefValue(types.Null, types.Int()),
	}})

	if !h.Contains(leaf) || !h.Contains(mid) {
		t.Fatalf("reachable cells were collected")
	}
	if h.Contains(garbage) || h.Contains(orphanRef) {
		t.Fatalf("unreachable cells survived")
	}
	if st.Live != 2 || st.Freed != 2 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestCollectUnionsRoots(t *testing.T) {
	h := NewConcurrent(2)
	a := h.Allocate(types.IntValue(1))
	b := h.Allocate(types.IntValue(2))
	c := h.Allocate(types.IntValue(3))
	Collect(h, []RootSet{
		roots{types.RefValue(a, types.Int())},
		roots{types.RefValue(b, types.Int())},
	})
	if !h.Contains(a) || !h.Contains(b) || h.Contains(c) {
		t.Fatalf("heap after collect = %v", h.Snapshot())
	}
}

func TestCollectHandlesCyclesAndDangling(t *testing.T) {
	h := NewPlain()
	// заранее выделяем две ячейки и замыкаем их друг на друга
	x := h.Allocate(types.IntValue(0))
	y := h.Allocate(types.RefValue(x, refInt))
	if err := h.Write(x, types.RefValue(y, refInt)); err != nil {
		t.Fatal(err)
	}
	st := Collect(h, []RootSet{roots{
		types.RefValue(x, refInt),
		types.RefValue(999, types.Int()),
	}})
	if st.Live != 2 || st.Freed != 0 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestCollectEmptyRootsFreesEverything(t *testing.T) {
	h := NewPlain()
	h.Allocate(types.IntValue(1))
	h.Allocate(types.StrValue("s"))
	if st := Collect(h, nil); st.Freed != 2 || h.Len() != 0 {
		t.Fatalf("stats = %+v len = %d", st, h.Len())
	}
}
