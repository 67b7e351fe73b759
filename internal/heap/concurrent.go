package heap

import (
	"slices"
	"sync"
	"sync/atomic"

	"forkvm/internal/types"
)

// DefaultShards is used when NewConcurrent gets a non-positive count.
const DefaultShards = 16

// Concurrent spreads cells over independently locked shards. Every
// operation touches exactly one shard, so operations on different
// addresses proceed in parallel and each one is linearizable.
type Concurrent struct {
	shards []shard
	cursor atomic.Uint64 // последний выданный адрес
	size   atomic.Int64
}

type shard struct {
	mu    sync.RWMutex
	cells map[types.Address]types.Value
}

func NewConcurrent(shards int) *Concurrent {
	if shards <= 0 {
		shards = DefaultShards
	}
	h := &Concurrent{shards: make([]shard, shards)}
	for i := range h.shards {
		h.shards[i].cells = make(map[types.Address]types.Value)
	}
	return h
}

func (h *Concurrent) shardFor(addr types.Address) *shard {
	return &h.shards[uint64(addr)%uint64(len(h.shards))]
}

func (h *Concurrent) Allocate(v types.Value) types.Address {
	addr := types.Address(h.cursor.Add(1))
	s := h.shardFor(addr)
	s.mu.Lock()
	s.cells[addr] = v
	s.mu.Unlock()
	h.size.Add(1)
	return addr
}

func (h *Concurrent) Read(addr types.Address) (types.Value, error) {
	s := h.shardFor(addr)
	s.mu.RLock()
	v, ok := s.cells[addr]
	s.mu.RUnlock()
	if !ok {
		return types.Value{}, invalid(addr)
	}
	return v, nil
}

func (h *Concurrent) Write(addr types.Address, v types.Value) error {
	s := h.shardFor(addr)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cells[addr]; !ok {
		return invalid(addr)
	}
	s.cells[addr] = v
	return nil
}

func (h *Concurrent) Free(addr types.Address) error {
	s := h.shardFor(addr)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cells[addr]; !ok {
		return invalid(addr)
	}
	delete(s.cells, addr)
	h.size.Add(-1)
	return nil
}

func (h *Concurrent) Contains(addr types.Address) bool {
	s := h.shardFor(addr)
	s.mu.RLock()
	_, ok := s.cells[addr]
	s.mu.RUnlock()
	return ok
}

func (h *Concurrent) Len() int { return int(h.size.Load()) }

// Snapshot locks shards one at a time; it is only consistent when no
// other goroutine is mutating the heap, which holds between rounds.
func (h *Concurrent) Snapshot() []Entry {
	out := make([]Entry, 0, h.Len())
	for i := range h.shards {
		s := &h.shards[i]
		s.mu.RLock()
		for addr, v := range s.cells {
			out = append(out, Entry{Addr: addr, Value: v})
		}
		s.mu.RUnlock()
	}
	slices.SortFunc(out, func(a, b Entry) int { return cmpAddr(a.Addr, b.Addr) })
	return out
}
