package sched

import (
	"context"
	"strings"
	"testing"
	"time"

	"forkvm/internal/observ"
	"forkvm/internal/trace"
)

func TestRunJournal(t *testing.T) {
	rec := &recorder{}
	c := mustLoad(t, `int x; fork { x = 1 / x; } print(7); print(8);`, Options{Workers: 2, Observer: rec})
	ring := trace.NewRing(256, trace.LevelDetail)
	res, err := c.Run(trace.WithTracer(context.Background(), ring))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	evs := ring.Events()
	if evs[0].Kind != trace.KindRunBegin || evs[len(evs)-1].Kind != trace.KindRunEnd {
		t.Fatalf("journal not framed by run events: %s .. %s", evs[0].Kind, evs[len(evs)-1].Kind)
	}
	if last := evs[len(evs)-1]; last.Round != res.Rounds || !strings.Contains(last.Text, "forks=") {
		t.Fatalf("run end = %+v, rounds %d", last, res.Rounds)
	}

	forks := map[int][]int{} // round -> children
	fails := map[int]int{}   // state -> round
	round := 0
	for _, ev := range evs {
		switch ev.Kind {
		case trace.KindRoundBegin:
			round = ev.Round
		case trace.KindRoundEnd:
			if ev.Round != round {
				t.Fatalf("round %d closed inside round %d", ev.Round, round)
			}
		case trace.KindFork:
			if ev.Round != round || ev.State == ev.Child {
				t.Fatalf("bad fork event %+v in round %d", ev, round)
			}
			forks[ev.Round] = append(forks[ev.Round], ev.Child)
		case trace.KindFail:
			fails[ev.State] = ev.Round
			if ev.Code == "" {
				t.Fatalf("failure without code: %+v", ev)
			}
		case trace.KindStep:
			t.Fatalf("steps are below LevelDetail")
		}
	}

	for _, rep := range rec.reports {
		if got := forks[rep.Round]; len(got) != len(rep.Forked) {
			t.Errorf("round %d: traced forks %v, reported %v", rep.Round, got, rep.Forked)
		}
		for _, id := range rep.Failed {
			if fails[id] != rep.Round {
				t.Errorf("state %d failed in round %d, traced in %d", id, rep.Round, fails[id])
			}
		}
	}
	if len(res.Failed) != 1 || fails[res.Failed[0].StateID] != res.Failed[0].Round {
		t.Fatalf("traced failures %v, result %+v", fails, res.Failed)
	}
}

func TestHeartbeatReportsCounters(t *testing.T) {
	var counters observ.Counters
	counters.Rounds.Add(4)
	ring := trace.NewRing(16, trace.LevelError)
	stop := heartbeat(ring, time.Millisecond, &counters)
	deadline := time.Now().Add(2 * time.Second)
	for len(ring.Events()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	stop()

	evs := ring.Events()
	if len(evs) == 0 {
		t.Fatalf("no heartbeat within 2s")
	}
	if evs[0].Kind != trace.KindHeartbeat || evs[0].Round != 4 || !strings.HasPrefix(evs[0].Text, "rounds=4 ") {
		t.Fatalf("heartbeat = %+v", evs[0])
	}
	n := len(ring.Events())
	time.Sleep(5 * time.Millisecond)
	if len(ring.Events()) != n {
		t.Fatalf("heartbeat kept running after stop")
	}

	// nothing starts when the tracer drops heartbeats
	heartbeat(trace.Nop, time.Millisecond, &counters)()
}
