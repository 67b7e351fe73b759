package sched

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"forkvm/internal/diag"
	"forkvm/internal/execlog"
)

// HeapMode picks the heap implementation.
type HeapMode uint8

const (
	HeapAuto       HeapMode = iota // concurrent iff the program forks
	HeapPlain                      // single map, one worker
	HeapConcurrent                 // sharded
)

func (m HeapMode) String() string {
	switch m {
	case HeapAuto:
		return "auto"
	case HeapPlain:
		return "plain"
	case HeapConcurrent:
		return "concurrent"
	default:
		return "unknown"
	}
}

// ParseHeapMode converts a string to HeapMode.
func ParseHeapMode(s string) (HeapMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return HeapAuto, nil
	case "plain":
		return HeapPlain, nil
	case "concurrent":
		return HeapConcurrent, nil
	default:
		return HeapAuto, fmt.Errorf("invalid heap mode: %q (expected: auto|plain|concurrent)", s)
	}
}

// Observer is told about every round after it completes. OnRound runs on
// the controller goroutine and must not block for long.
type Observer interface {
	OnRound(RoundReport)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(RoundReport)

func (f ObserverFunc) OnRound(r RoundReport) { f(r) }

// Options configure a controller.
type Options struct {
	Workers   int // <=0: GOMAXPROCS
	Heap      HeapMode
	Shards    int // concurrent heap shards, <=0: heap.DefaultShards
	MaxRounds int // 0: unlimited
	FilesDir  string
	Logger    execlog.Logger
	Observer  Observer
	Reporter  diag.Reporter // receives the type error of a rejected program
	Heartbeat time.Duration // traced progress interval during Run, 0: none
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.Workers
}
