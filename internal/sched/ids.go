package sched

import "sync/atomic"

// IDAllocator hands out state ids starting at 1. Safe for concurrent use.
type IDAllocator struct {
	last atomic.Int64
}

func (a *IDAllocator) Next() int { return int(a.last.Add(1)) }

// Last returns the most recently issued id (0 if none).
func (a *IDAllocator) Last() int { return int(a.last.Load()) }
