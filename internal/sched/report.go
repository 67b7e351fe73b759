package sched

import (
	"forkvm/internal/heap"
	"forkvm/internal/vm"
)

// RoundReport describes one finished round.
type RoundReport struct {
	Round  int
	Phase  Phase
	States []vm.Snapshot // every state stepped this round plus new children
	Forked []int         // ids of children created this round
	Failed []int         // ids of states that failed this round
	GC     heap.Stats
	LogErr error // logger failure, if any; the round itself still counts
}

// Failure is a state that stopped with a runtime error.
type Failure struct {
	StateID int
	Round   int
	Err     *vm.Error
}

// Result is the outcome of Run.
type Result struct {
	Rounds int
	Failed []Failure
	// Output is the root output. Forks append to the same output, so it
	// holds every printed value in round order.
	Output []string
}
