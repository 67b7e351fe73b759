package trace

import (
	"fmt"
	"time"
)

// Kind says what happened.
type Kind uint8

const (
	KindRunBegin   Kind = iota + 1
	KindRunEnd          // Text carries the run counters
	KindRoundBegin      // States is the number of live states
	KindRoundEnd
	KindStep      // State is about to execute Text
	KindFork      // State spawned Child
	KindFail      // State stopped with Code
	KindGC        // collection freed Freed cells, Live remain
	KindLogError  // the execution log rejected Round
	KindFileError // closing program files failed
	KindHeartbeat // progress while a run is going
)

var kindNames = [...]string{
	KindRunBegin:   "run-begin",
	KindRunEnd:     "run-end",
	KindRoundBegin: "round-begin",
	KindRoundEnd:   "round-end",
	KindStep:       "step",
	KindFork:       "fork",
	KindFail:       "fail",
	KindGC:         "gc",
	KindLogError:   "log-error",
	KindFileError:  "file-error",
	KindHeartbeat:  "heartbeat",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// MarshalText keeps NDJSON readable.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText accepts the names produced by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name != "" && name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown trace event kind %q", b)
}

// level is the lowest Level that records k.
func (k Kind) level() Level {
	switch k {
	case KindFail, KindLogError, KindFileError, KindHeartbeat:
		return LevelError
	case KindRunBegin, KindRunEnd, KindRoundBegin, KindRoundEnd:
		return LevelPhase
	case KindFork, KindGC:
		return LevelDetail
	}
	return LevelDebug
}

// depth is the indentation in text output: run, round, state.
func (k Kind) depth() int {
	switch k {
	case KindRunBegin, KindRunEnd, KindHeartbeat, KindFileError:
		return 0
	case KindRoundBegin, KindRoundEnd, KindLogError, KindGC:
		return 1
	}
	return 2
}

// Event is one journal entry. Seq and Time are filled by the tracer when
// left zero; other zero fields are not printed.
type Event struct {
	Seq     uint64        `json:"seq"`
	Time    time.Time     `json:"time"`
	Kind    Kind          `json:"kind"`
	Round   int           `json:"round,omitempty"`
	State   int           `json:"state,omitempty"`
	Child   int           `json:"child,omitempty"`
	States  int           `json:"states,omitempty"`
	Live    int           `json:"live,omitempty"`
	Freed   int           `json:"freed,omitempty"`
	Code    string        `json:"code,omitempty"`
	Elapsed time.Duration `json:"elapsed_ns,omitempty"`
	Text    string        `json:"text,omitempty"`
}
