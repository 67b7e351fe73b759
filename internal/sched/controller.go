// Package sched drives program states round by round: every live state
// makes one step per round on a bounded worker pool, then the shared heap
// is collected and the round is reported.
package sched

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"forkvm/internal/ast"
	"forkvm/internal/heap"
	"forkvm/internal/observ"
	"forkvm/internal/sema"
	"forkvm/internal/trace"
	"forkvm/internal/vm"
)

var (
	// ErrRejected wraps the type error of a program that failed checking.
	ErrRejected = errors.New("program rejected by type checker")
	// ErrRoundLimit is returned by Run when Options.MaxRounds is reached.
	ErrRoundLimit = errors.New("round limit reached")
)

// Controller owns the live states of one program run.
type Controller struct {
	opts     Options
	workers  int
	ids      IDAllocator
	heap     heap.Heap
	files    *vm.FileTable
	root     *vm.State
	states   []*vm.State
	round    int
	phase    Phase
	failures []Failure
	counters observ.Counters
}

// Load type-checks program and prepares its root state. A program that
// fails checking is never scheduled: its diagnostic goes to
// opts.Reporter and the error wraps ErrRejected.
func Load(program ast.Stmt, opts Options) (*Controller, error) {
	if _, err := sema.Check(program, sema.NewEnv()); err != nil {
		var te *sema.TypeError
		if errors.As(err, &te) && opts.Reporter != nil {
			opts.Reporter.Report(te.Diagnostic())
		}
		return nil, fmt.Errorf("%w: %w", ErrRejected, err)
	}

	c := &Controller{opts: opts, workers: opts.workers()}
	forks := ast.ContainsFork(program)
	switch {
	case opts.Heap == HeapConcurrent, opts.Heap == HeapAuto && forks:
		shards := opts.Shards
		if shards <= 0 {
			shards = heap.DefaultShards
		}
		c.heap = heap.NewConcurrent(shards)
	default:
		c.heap = heap.NewPlain()
		if forks {
			// plain heap без блокировок: шагаем по одному
			c.workers = 1
		}
	}
	c.files = vm.NewFileTable(opts.FilesDir)
	c.root = vm.NewState(c.ids.Next(), program, c.heap, c.files)
	c.states = []*vm.State{c.root}
	return c, nil
}

// Phase reports where the controller is.
func (c *Controller) Phase() Phase { return c.phase }

// Round returns the number of completed rounds.
func (c *Controller) Round() int { return c.round }

// Heap exposes the shared heap for inspection.
func (c *Controller) Heap() heap.Heap { return c.heap }

// Workers is the effective worker limit.
func (c *Controller) Workers() int { return c.workers }

// Stats returns counters accumulated so far.
func (c *Controller) Stats() observ.CounterSnapshot { return c.counters.Snapshot() }

// Live returns the number of states that will be stepped next round.
func (c *Controller) Live() int {
	n := 0
	for _, st := range c.states {
		if !st.Done() {
			n++
		}
	}
	return n
}

// Snapshots copies every state currently held by the controller.
func (c *Controller) Snapshots() []vm.Snapshot {
	out := make([]vm.Snapshot, len(c.states))
	for i, st := range c.states {
		out[i] = st.Snapshot()
	}
	return out
}

// RunRound performs one round. When no live state is left it switches to
// PhaseDone and returns a report without states. A started round always
// runs to completion; ctx only carries the tracer.
func (c *Controller) RunRound(ctx context.Context) (RoundReport, error) {
	tr := trace.FromContext(ctx)

	// 1. cleanup: finished and failed states from the previous round go away
	live := c.states[:0]
	for _, st := range c.states {
		if !st.Done() {
			live = append(live, st)
		}
	}
	c.states = live

	// 2.
	if len(c.states) == 0 {
		c.phase = PhaseDone
		return RoundReport{Round: c.round, Phase: PhaseDone}, nil
	}

	c.round++
	c.counters.Rounds.Add(1)
	began := time.Now()
	tr.Emit(trace.Event{Kind: trace.KindRoundBegin, Round: c.round, States: len(c.states)})

	// 3. step everybody, join all
	c.phase = PhaseStepping
	stepping := c.states
	children := make([]*vm.State, len(stepping))
	errs := make([]error, len(stepping))
	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, st := range stepping {
		if trace.Wants(tr, trace.KindStep) {
			if top, ok := st.Stack.Peek(); ok {
				tr.Emit(trace.Event{Kind: trace.KindStep, Round: c.round, State: st.ID, Text: top.String()})
			}
		}
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					children[i], errs[i] = nil, vm.Recovered(st.ID, r)
				}
			}()
			children[i], errs[i] = vm.Step(st, &c.ids)
			return nil
		})
	}
	_ = g.Wait() // шаги не возвращают ошибок в группу

	report := RoundReport{Round: c.round}
	c.counters.Steps.Add(int64(len(stepping)))

	// 4. failures are terminal for their state only
	for i, err := range errs {
		if err == nil {
			continue
		}
		st := stepping[i]
		st.Fail(err)
		c.failures = append(c.failures, Failure{StateID: st.ID, Round: c.round, Err: st.Err})
		report.Failed = append(report.Failed, st.ID)
		c.counters.Failed.Add(1)
		tr.Emit(trace.Event{
			Kind:  trace.KindFail,
			Round: c.round,
			State: st.ID,
			Code:  st.Err.Code.String(),
			Text:  st.Err.Error(),
		})
	}

	// 5. children in parent order
	for i, child := range children {
		if child == nil {
			continue
		}
		c.states = append(c.states, child)
		report.Forked = append(report.Forked, child.ID)
		c.counters.Forks.Add(1)
		tr.Emit(trace.Event{Kind: trace.KindFork, Round: c.round, State: stepping[i].ID, Child: child.ID})
	}

	// 6. collect from the symbol tables of states that will run again
	c.phase = PhaseCollecting
	roots := make([]heap.RootSet, 0, len(c.states))
	for _, st := range c.states {
		if !st.Done() {
			roots = append(roots, st.Symbols)
		}
	}
	report.GC = heap.Collect(c.heap, roots)
	c.counters.Freed.Add(int64(report.GC.Freed))
	if report.GC.Freed > 0 {
		tr.Emit(trace.Event{Kind: trace.KindGC, Round: c.round, Live: report.GC.Live, Freed: report.GC.Freed})
	}

	// 7. report
	report.States = c.Snapshots()
	if c.opts.Logger != nil {
		if err := c.opts.Logger.Log(c.round, report.States); err != nil {
			report.LogErr = err
			c.counters.LogErrs.Add(1)
			tr.Emit(trace.Event{Kind: trace.KindLogError, Round: c.round, Text: err.Error()})
		}
	}
	c.phase = PhaseIdle
	report.Phase = c.phase
	if c.opts.Observer != nil {
		c.opts.Observer.OnRound(report)
	}

	tr.Emit(trace.Event{
		Kind:    trace.KindRoundEnd,
		Round:   c.round,
		States:  len(report.States),
		Elapsed: time.Since(began),
	})
	return report, nil
}

// Run repeats rounds until no state is live. Cancellation is checked
// between rounds and returns ctx.Err() together with the partial result.
func (c *Controller) Run(ctx context.Context) (Result, error) {
	tr := trace.FromContext(ctx)
	began := time.Now()
	tr.Emit(trace.Event{Kind: trace.KindRunBegin, States: len(c.states)})
	stopBeat := heartbeat(tr, c.opts.Heartbeat, &c.counters)

	var runErr error
	for c.phase != PhaseDone {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if c.opts.MaxRounds > 0 && c.round >= c.opts.MaxRounds && c.Live() > 0 {
			runErr = fmt.Errorf("%w (%d)", ErrRoundLimit, c.opts.MaxRounds)
			break
		}
		if _, err := c.RunRound(ctx); err != nil {
			runErr = err
			break
		}
	}

	if err := c.Close(); err != nil {
		tr.Emit(trace.Event{Kind: trace.KindFileError, Round: c.round, Text: err.Error()})
		if runErr == nil {
			runErr = err
		}
	}
	stopBeat()
	tr.Emit(trace.Event{
		Kind:    trace.KindRunEnd,
		Round:   c.round,
		Elapsed: time.Since(began),
		Text:    c.counters.Snapshot().String(),
	})
	return c.Result(), runErr
}

// Close releases every file the states opened. Callers that drive
// RunRound themselves must call it; Run does so on return. Close may be
// called more than once.
func (c *Controller) Close() error {
	if err := c.files.CloseAll(); err != nil {
		return fmt.Errorf("closing files: %w", err)
	}
	return nil
}

// Result summarizes the run so far.
func (c *Controller) Result() Result {
	res := Result{Rounds: c.round, Failed: append([]Failure(nil), c.failures...)}
	for _, v := range c.root.Output.Values() {
		res.Output = append(res.Output, v.String())
	}
	return res
}
