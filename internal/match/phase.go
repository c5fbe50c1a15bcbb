package match

import (
	"fmt"
	"time"
)

// Phase is the lifecycle stage of a match
type Phase int

const (
	// PhaseReady - created, no decision made yet
	PhaseReady Phase = iota

	// PhaseRunning - sides are alternating decisions
	PhaseRunning

	// PhaseEnded - decided or out of turns
	PhaseEnded

	// PhaseAborted - cancelled or failed part way through
	PhaseAborted
)

func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhaseRunning:
		return "running"
	case PhaseEnded:
		return "ended"
	case PhaseAborted:
		return "aborted"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// IsTerminal returns true if no further decisions can be made
func (p Phase) IsTerminal() bool {
	return p == PhaseEnded || p == PhaseAborted
}

// CanTransitionTo reports whether the lifecycle allows moving to target
func (p Phase) CanTransitionTo(target Phase) bool {
	switch p {
	case PhaseReady:
		return target == PhaseRunning || target == PhaseAborted
	case PhaseRunning:
		return target == PhaseEnded || target == PhaseAborted
	default:
		return false
	}
}

// Transition is one entry of the phase history
type Transition struct {
	From      Phase
	To        Phase
	Timestamp time.Time
	Reason    string
}
