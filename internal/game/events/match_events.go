package events

import (
	"time"

	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/core"
)

// Event is anything published on the bus during a match
type Event interface {
	Type() string
	Timestamp() time.Time
	MatchID() string
}

// header is embedded in every match event and carries the fields the bus
// and subscribers filter on
type header struct {
	Kind  string    `json:"type"`
	At    time.Time `json:"timestamp"`
	Match string    `json:"match_id"`
}

func stamp(kind, matchID string) header {
	return header{Kind: kind, At: time.Now(), Match: matchID}
}

func (h header) Type() string         { return h.Kind }
func (h header) Timestamp() time.Time { return h.At }
func (h header) MatchID() string      { return h.Match }

const (
	TypeMatchStarted = "match.started"
	TypeMatchEnded   = "match.ended"
	TypeDecisionMade = "decision.made"
	TypeUnitDamaged  = "unit.damaged"
	TypeUnitKilled   = "unit.killed"
	TypePhaseChanged = "match.phase_changed"
)

// MatchStartedEvent is published before the first decision of a match
type MatchStartedEvent struct {
	header
	Width           int
	Height          int
	ControlledUnits int
	HostileUnits    int
	Depth           int
}

// NewMatchStartedEvent creates a new MatchStartedEvent
func NewMatchStartedEvent(matchID string, width, height, controlled, hostile, depth int) *MatchStartedEvent {
	return &MatchStartedEvent{
		header:          stamp(TypeMatchStarted, matchID),
		Width:           width,
		Height:          height,
		ControlledUnits: controlled,
		HostileUnits:    hostile,
		Depth:           depth,
	}
}

// MatchEndedEvent is published once a side is wiped out or the ply limit is hit
type MatchEndedEvent struct {
	header
	Outcome  string
	Plies    int
	Duration time.Duration
}

// NewMatchEndedEvent creates a new MatchEndedEvent
func NewMatchEndedEvent(matchID, outcome string, plies int, duration time.Duration) *MatchEndedEvent {
	return &MatchEndedEvent{
		header:   stamp(TypeMatchEnded, matchID),
		Outcome:  outcome,
		Plies:    plies,
		Duration: duration,
	}
}

// DecisionMadeEvent carries the joint action a search chose for one ply
type DecisionMadeEvent struct {
	header
	DecisionID string
	Ply        int
	Side       core.Side
	Action     core.JointAction
	Value      float64
	Nodes      int64
	Cutoffs    int64
	Elapsed    time.Duration
	Truncated  bool
}

// NewDecisionMadeEvent creates a new DecisionMadeEvent
func NewDecisionMadeEvent(matchID, decisionID string, ply int, side core.Side, action core.JointAction, value float64) *DecisionMadeEvent {
	return &DecisionMadeEvent{
		header:     stamp(TypeDecisionMade, matchID),
		DecisionID: decisionID,
		Ply:        ply,
		Side:       side,
		Action:     action,
		Value:      value,
	}
}

// UnitDamagedEvent is published for every attack that lands
type UnitDamagedEvent struct {
	header
	Ply         int
	AttackerID  int
	TargetID    int
	Damage      int
	RemainingHP int
}

// NewUnitDamagedEvent creates a new UnitDamagedEvent
func NewUnitDamagedEvent(matchID string, ply, attackerID, targetID, damage, remaining int) *UnitDamagedEvent {
	return &UnitDamagedEvent{
		header:      stamp(TypeUnitDamaged, matchID),
		Ply:         ply,
		AttackerID:  attackerID,
		TargetID:    targetID,
		Damage:      damage,
		RemainingHP: remaining,
	}
}

// UnitKilledEvent is published when an attack brings a unit to zero hit points
type UnitKilledEvent struct {
	header
	Ply      int
	UnitID   int
	Side     core.Side
	KilledBy int
	Position core.Coordinate
}

// NewUnitKilledEvent creates a new UnitKilledEvent
func NewUnitKilledEvent(matchID string, ply, unitID int, side core.Side, killedBy int, pos core.Coordinate) *UnitKilledEvent {
	return &UnitKilledEvent{
		header:   stamp(TypeUnitKilled, matchID),
		Ply:      ply,
		UnitID:   unitID,
		Side:     side,
		KilledBy: killedBy,
		Position: pos,
	}
}

// PhaseChangedEvent records a match lifecycle transition
type PhaseChangedEvent struct {
	header
	From   string
	To     string
	Reason string
}

// NewPhaseChangedEvent creates a new PhaseChangedEvent
func NewPhaseChangedEvent(matchID, from, to, reason string) *PhaseChangedEvent {
	return &PhaseChangedEvent{
		header: stamp(TypePhaseChanged, matchID),
		From:   from,
		To:     to,
		Reason: reason,
	}
}
