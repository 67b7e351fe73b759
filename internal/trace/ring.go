package trace

import (
	"io"
	"sync"
)

// Ring keeps the last events in memory; Dump prints them.
type Ring struct {
	mu     sync.Mutex
	events []Event
	total  uint64 // events ever stored
	level  Level
}

// NewRing keeps up to size events.
func NewRing(size int, level Level) *Ring {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Ring{events: make([]Event, size), level: level}
}

func (r *Ring) Emit(ev Event) {
	if !r.level.Wants(ev.Kind) {
		return
	}
	stamp(&ev)
	r.mu.Lock()
	r.events[r.total%uint64(len(r.events))] = ev
	r.total++
	r.mu.Unlock()
}

func (r *Ring) Level() Level { return r.level }
func (r *Ring) Close() error { return nil }

// Events returns the kept events, oldest first.
func (r *Ring) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := uint64(len(r.events))
	from := uint64(0)
	if r.total > n {
		from = r.total - n
	}
	out := make([]Event, 0, r.total-from)
	for i := from; i < r.total; i++ {
		out = append(out, r.events[i%n])
	}
	return out
}

// Dropped is the number of events pushed out of the ring.
func (r *Ring) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := uint64(len(r.events)); r.total > n {
		return r.total - n
	}
	return 0
}

// Dump writes the kept events to w.
func (r *Ring) Dump(w io.Writer, f Format) error {
	var buf []byte
	for _, ev := range r.Events() {
		buf = AppendEvent(buf, &ev, f)
	}
	_, err := w.Write(buf)
	return err
}
