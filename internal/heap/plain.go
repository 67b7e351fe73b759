package heap

import (
	"slices"

	"forkvm/internal/types"
)

// Plain is a single-map heap for programs that never fork.
// It is not safe for concurrent use.
type Plain struct {
	cells map[types.Address]types.Value
	next  types.Address
}

func NewPlain() *Plain {
	return &Plain{cells: make(map[types.Address]types.Value), next: 1}
}

func (h *Plain) Allocate(v types.Value) types.Address {
	addr := h.next
	h.next++
	h.cells[addr] = v
	return addr
}

func (h *Plain) Read(addr types.Address) (types.Value, error) {
	v, ok := h.cells[addr]
	if !ok {
		return types.Value{}, invalid(addr)
	}
	return v, nil
}

func (h *Plain) Write(addr types.Address, v types.Value) error {
	if _, ok := h.cells[addr]; !ok {
		return invalid(addr)
	}
	h.cells[addr] = v
	return nil
}

func (h *Plain) Free(addr types.Address) error {
	if _, ok := h.cells[addr]; !ok {
		return invalid(addr)
	}
	delete(h.cells, addr)
	return nil
}

func (h *Plain) Contains(addr types.Address) bool {
	_, ok := h.cells[addr]
	return ok
}

func (h *Plain) Len() int { return len(h.cells) }

func (h *Plain) Snapshot() []Entry {
	out := make([]Entry, 0, len(h.cells))
	for addr, v := range h.cells {
		out = append(out, Entry{Addr: addr, Value: v})
	}
	slices.SortFunc(out, func(a, b Entry) int { return cmpAddr(a.Addr, b.Addr) })
	return out
}

func cmpAddr(a, b types.Address) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
