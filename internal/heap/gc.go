package heap

import "forkvm/internal/types"

// RootSet yields the values a program state can reach directly.
type RootSet interface {
	EachValue(fn func(types.Value))
}

// Stats summarizes one collection.
type Stats struct {
	Live  int
	Freed int
}

// Collect marks every address reachable from roots and frees the rest.
// From each reference binding it follows the chain "read the cell; keep
// going while the cell holds a non-null reference". A chain stops at
// null, at a non-reference, or at an address that is absent or already
// marked.
//
// Collect must not run while any state is stepping.
func Collect(h Heap, roots []RootSet) Stats {
	marked := make(map[types.Address]struct{})
	for _, root := range roots {
		root.EachValue(func(v types.Value) {
			mark(h, v, marked)
		})
	}

	var st Stats
	for _, e := range h.Snapshot() {
		if _, ok := marked[e.Addr]; ok {
			st.Live++
			continue
		}
		if h.Free(e.Addr) == nil {
			st.Freed++
		}
	}
	return st
}

func mark(h Heap, v types.Value, marked map[types.Address]struct{}) {
	for {
		addr, _, ok := v.Ref()
		if !ok || addr == types.Null {
			return
		}
		if _, seen := marked[addr]; seen {
			return
		}
		next, err := h.Read(addr)
		if err != nil {
			// dangling reference: nothing to keep alive
			return
		}
		marked[addr] = struct{}{}
		v = next
	}
}
