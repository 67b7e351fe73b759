package sched

// Phase is the controller's position inside a round.
type Phase uint8

const (
	PhaseIdle       Phase = iota // between rounds
	PhaseStepping                // workers are stepping states
	PhaseCollecting              // heap collection and reporting
	PhaseDone                    // no live states left
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseStepping:
		return "stepping"
	case PhaseCollecting:
		return "collecting"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}
