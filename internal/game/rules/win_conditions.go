package rules

import (
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/core"
	"github.com/rs/zerolog"
)

// Outcome is the result of a skirmish at a given state
type Outcome int

const (
	Ongoing Outcome = iota
	ControlledWins
	HostileWins
	Draw
)

func (o Outcome) String() string {
	switch o {
	case Ongoing:
		return "ongoing"
	case ControlledWins:
		return "controlled_wins"
	case HostileWins:
		return "hostile_wins"
	case Draw:
		return "draw"
	default:
		return "unknown"
	}
}

// IsOver reports whether the outcome ends the skirmish
func (o Outcome) IsOver() bool { return o != Ongoing }

// WinConditionChecker handles game over detection and winner determination
type WinConditionChecker struct {
	logger zerolog.Logger
}

// NewWinConditionChecker creates a new win condition checker
func NewWinConditionChecker(logger zerolog.Logger) *WinConditionChecker {
	return &WinConditionChecker{
		logger: logger.With().Str("component", "WinConditionChecker").Logger(),
	}
}

// Check determines the outcome from the alive counts of both sides.
// A side with no survivors has lost; both empty is a draw.
func (wc *WinConditionChecker) Check(s *game.State) Outcome {
	allies := s.AliveCount(core.Controlled)
	enemies := s.AliveCount(core.Hostile)

	outcome := Evaluate(allies, enemies)

	if outcome.IsOver() {
		wc.logger.Info().
			Str("outcome", outcome.String()).
			Int("ply", s.Ply).
			Msg("Skirmish decided")
	}
	wc.logger.Debug().
		Int("alive_controlled", allies).
		Int("alive_hostile", enemies).
		Str("outcome", outcome.String()).
		Msg("Win condition check complete")

	return outcome
}

// Evaluate maps alive counts to an outcome without logging; the search calls
// it at every leaf.
func Evaluate(aliveControlled, aliveHostile int) Outcome {
	switch {
	case aliveControlled == 0 && aliveHostile == 0:
		return Draw
	case aliveHostile == 0:
		return ControlledWins
	case aliveControlled == 0:
		return HostileWins
	default:
		return Ongoing
	}
}
