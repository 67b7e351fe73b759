package sched

import (
	"time"

	"forkvm/internal/observ"
	"forkvm/internal/trace"
)

// heartbeat reports the counters every interval until stop is called.
// A zero interval or a tracer that drops heartbeats starts nothing.
func heartbeat(tr trace.Tracer, every time.Duration, counters *observ.Counters) (stop func()) {
	if every <= 0 || !trace.Wants(tr, trace.KindHeartbeat) {
		return func() {}
	}
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		tick := time.NewTicker(every)
		defer tick.Stop()
		for {
			select {
			case <-done:
				return
			case <-tick.C:
				tr.Emit(trace.Event{
					Kind:  trace.KindHeartbeat,
					Round: int(counters.Rounds.Load()),
					Text:  counters.Snapshot().String(),
				})
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}
