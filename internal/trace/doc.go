// Package trace is the run journal of the forkvm scheduler. The controller
// records typed events (run and round boundaries, steps, forks, failures,
// collections, logger trouble) tagged with the round and the state they
// belong to.
//
//	forkvm run --trace=- --trace-level=detail prog.fv
//
// Levels:
//
//   - LevelOff: nothing
//   - LevelError: failures, logger and file errors, heartbeats
//   - LevelPhase: plus run and round boundaries
//   - LevelDetail: plus forks and collections
//   - LevelDebug: plus every single step
//
// The tracer travels in the context:
//
//	ctx = trace.WithTracer(ctx, tr)
//	trace.FromContext(ctx).Emit(trace.Event{Kind: trace.KindFork, Round: 3, State: 1, Child: 4})
package trace
