package observ

import (
	"fmt"
	"sync/atomic"
)

// Counters aggregates scheduler activity across rounds.
type Counters struct {
	Rounds  atomic.Int64
	Steps   atomic.Int64
	Forks   atomic.Int64
	Failed  atomic.Int64
	Freed   atomic.Int64
	LogErrs atomic.Int64
}

// CounterSnapshot is a plain copy of Counters for printing and JSON.
type CounterSnapshot struct {
	Rounds  int64 `json:"rounds"`
	Steps   int64 `json:"steps"`
	Forks   int64 `json:"forks"`
	Failed  int64 `json:"failed"`
	Freed   int64 `json:"freed"`
	LogErrs int64 `json:"log_errors,omitempty"`
}

// Snapshot copies the current values.
func (c *Counters) Snapshot() CounterSnapshot {
	return CounterSnapshot{
		Rounds:  c.Rounds.Load(),
		Steps:   c.Steps.Load(),
		Forks:   c.Forks.Load(),
		Failed:  c.Failed.Load(),
		Freed:   c.Freed.Load(),
		LogErrs: c.LogErrs.Load(),
	}
}

func (s CounterSnapshot) String() string {
	out := fmt.Sprintf("rounds=%d steps=%d forks=%d failed=%d freed=%d", s.Rounds, s.Steps, s.Forks, s.Failed, s.Freed)
	if s.LogErrs > 0 {
		out += fmt.Sprintf(" log_errors=%d", s.LogErrs)
	}
	return out
}
