// Package match plays the search against itself: both sides take turns asking
// the engine for a joint action, which is applied to a private copy of the
// starting state. Every decision, hit and kill is published on an event bus.
package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/core"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/events"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/rules"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/search"
	"github.com/rs/zerolog"
)

var (
	ErrMatchOver    = errors.New("match is over")
	ErrNilEngine    = errors.New("match needs a search engine")
	ErrInvalidTurns = errors.New("max turns must be positive")
)

// ReasonTurnLimit is the MatchEnded outcome when neither side won in time
const ReasonTurnLimit = "turn_limit"

// Config controls a self-play match
type Config struct {
	MatchID         string // generated when empty
	MaxTurns        int    // decisions, counting both sides
	CheckInvariants bool   // verify occupancy after every ply
	EventBus        *events.EventBus
	Logger          zerolog.Logger
}

// Turn records one decision and what it did to the battlefield
type Turn struct {
	Ply    int
	Side   core.Side
	Result search.Result
	Kills  []int
}

// Summary is the report of a finished (or aborted) match
type Summary struct {
	MatchID          string
	Phase            Phase
	Outcome          rules.Outcome
	TurnLimitReached bool
	Plies            int
	Duration         time.Duration
	Turns            []Turn
}

// Match drives one skirmish from a starting state to an outcome
type Match struct {
	id      string
	cfg     Config
	state   *game.State
	engine  *search.Engine
	checker *rules.WinConditionChecker
	bus     *events.EventBus
	logger  zerolog.Logger

	phase      Phase
	history    []Transition
	turns      []Turn
	outcome    rules.Outcome
	limitHit   bool
	startedAt  time.Time
	finishedAt time.Time
}

// New prepares a match on a copy of s. Nothing is searched or published until
// the first Step or Run.
func New(s *game.State, engine *search.Engine, cfg Config) (*Match, error) {
	if s == nil {
		return nil, search.ErrNilState
	}
	if engine == nil {
		return nil, ErrNilEngine
	}
	if cfg.MaxTurns <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTurns, cfg.MaxTurns)
	}
	if cfg.MatchID == "" {
		cfg.MatchID = uuid.NewString()
	}

	logger := cfg.Logger.With().
		Str("component", "match").
		Str("match_id", cfg.MatchID).
		Logger()

	bus := cfg.EventBus
	if bus == nil {
		bus = events.NewEventBus(cfg.Logger)
	}

	return &Match{
		id:      cfg.MatchID,
		cfg:     cfg,
		state:   s.Clone(),
		engine:  engine,
		checker: rules.NewWinConditionChecker(logger),
		bus:     bus,
		logger:  logger,
		phase:   PhaseReady,
	}, nil
}

func (m *Match) ID() string             { return m.id }
func (m *Match) Bus() *events.EventBus  { return m.bus }
func (m *Match) Phase() Phase           { return m.phase }
func (m *Match) Outcome() rules.Outcome { return m.outcome }

// State returns a copy of the current battlefield
func (m *Match) State() *game.State { return m.state.Clone() }

// History returns a copy of the phase transitions so far
func (m *Match) History() []Transition {
	history := make([]Transition, len(m.history))
	copy(history, m.history)
	return history
}

// Run alternates decisions until one side is wiped out, the turn limit is
// reached or ctx is cancelled. The summary is valid in every case.
func (m *Match) Run(ctx context.Context) (Summary, error) {
	if m.phase == PhaseReady {
		if err := m.start(); err != nil {
			return m.Summary(), err
		}
	}
	for !m.phase.IsTerminal() {
		if _, err := m.Step(ctx); err != nil {
			return m.Summary(), err
		}
	}
	return m.Summary(), nil
}

// Step makes one decision for the side to move and applies it
func (m *Match) Step(ctx context.Context) (Turn, error) {
	if m.phase == PhaseReady {
		if err := m.start(); err != nil {
			return Turn{}, err
		}
	}
	if m.phase.IsTerminal() {
		return Turn{}, ErrMatchOver
	}
	if err := ctx.Err(); err != nil {
		m.abort(err)
		return Turn{}, err
	}

	ply, side := m.state.Ply, m.state.ToMove
	res, err := m.engine.Search(ctx, m.state)
	if err != nil {
		m.abort(err)
		return Turn{}, fmt.Errorf("ply %d: %w", ply, err)
	}

	decision := events.NewDecisionMadeEvent(m.id, res.DecisionID, ply, side, res.Action, res.Value)
	decision.Nodes = res.Stats.Nodes
	decision.Cutoffs = res.Stats.Cutoffs
	decision.Elapsed = res.Stats.Elapsed
	decision.Truncated = res.Truncated
	m.bus.Publish(decision)

	turn := Turn{Ply: ply, Side: side, Result: res}
	turn.Kills = m.apply(ply, res.Action)
	m.turns = append(m.turns, turn)

	if m.cfg.CheckInvariants {
		if err := m.state.CheckInvariants(); err != nil {
			m.abort(err)
			return turn, fmt.Errorf("ply %d: %w", ply, err)
		}
	}

	m.logger.Debug().
		Int("ply", ply).
		Str("side", side.String()).
		Str("action", res.Action.String()).
		Float64("value", res.Value).
		Msg("Turn applied")

	if outcome := m.checker.Check(m.state); outcome.IsOver() {
		m.finish(outcome, false)
	} else if len(m.turns) >= m.cfg.MaxTurns {
		m.finish(rules.Ongoing, true)
	}
	return turn, nil
}

// Summary reports the match so far
func (m *Match) Summary() Summary {
	end := m.finishedAt
	if end.IsZero() {
		end = time.Now()
	}
	var duration time.Duration
	if !m.startedAt.IsZero() {
		duration = end.Sub(m.startedAt)
	}

	turns := make([]Turn, len(m.turns))
	copy(turns, m.turns)
	return Summary{
		MatchID:          m.id,
		Phase:            m.phase,
		Outcome:          m.outcome,
		TurnLimitReached: m.limitHit,
		Plies:            len(m.turns),
		Duration:         duration,
		Turns:            turns,
	}
}

func (m *Match) start() error {
	m.startedAt = time.Now()
	if err := m.transitionTo(PhaseRunning, "match started"); err != nil {
		return err
	}

	m.bus.Publish(events.NewMatchStartedEvent(m.id,
		m.state.Width(), m.state.Height(),
		m.state.AliveCount(core.Controlled), m.state.AliveCount(core.Hostile),
		m.engine.Options().Depth,
	))

	// a snapshot can arrive already decided
	if outcome := m.checker.Check(m.state); outcome.IsOver() {
		m.finish(outcome, false)
	}
	return nil
}

// apply plays the joint action one unit at a time so every hit can be
// attributed to its attacker, then ends the ply. It returns the killed IDs.
func (m *Match) apply(ply int, joint core.JointAction) []int {
	var kills []int
	for _, id := range joint.UnitIDs() {
		a := joint[id]
		if !a.IsAttack() {
			m.state.Apply(a)
			continue
		}

		before, _ := m.state.Unit(a.TargetID)
		m.state.Apply(a)
		after, _ := m.state.Unit(a.TargetID)

		m.bus.Publish(events.NewUnitDamagedEvent(m.id, ply, id, a.TargetID, before.HP-after.HP, after.HP))
		if !after.IsAlive() {
			kills = append(kills, after.ID)
			m.bus.Publish(events.NewUnitKilledEvent(m.id, ply, after.ID, after.Side, id, after.Pos))
		}
	}
	m.state.EndPly()
	return kills
}

func (m *Match) finish(outcome rules.Outcome, limitHit bool) {
	m.outcome = outcome
	m.limitHit = limitHit
	m.finishedAt = time.Now()

	reason := outcome.String()
	if limitHit {
		reason = ReasonTurnLimit
	}
	m.bus.Publish(events.NewMatchEndedEvent(m.id, reason, len(m.turns), m.finishedAt.Sub(m.startedAt)))
	if err := m.transitionTo(PhaseEnded, reason); err != nil {
		m.logger.Error().Err(err).Msg("Failed to end match")
		return
	}

	m.logger.Info().
		Str("outcome", reason).
		Int("plies", len(m.turns)).
		Dur("duration", m.finishedAt.Sub(m.startedAt)).
		Msg("Match finished")
}

func (m *Match) abort(cause error) {
	m.finishedAt = time.Now()
	if err := m.transitionTo(PhaseAborted, cause.Error()); err != nil {
		m.logger.Error().Err(err).Msg("Failed to abort match")
		return
	}
	m.logger.Warn().Err(cause).Int("plies", len(m.turns)).Msg("Match aborted")
}

func (m *Match) transitionTo(target Phase, reason string) error {
	if !m.phase.CanTransitionTo(target) {
		return fmt.Errorf("invalid transition from %s to %s", m.phase, target)
	}

	previous := m.phase
	m.phase = target
	m.history = append(m.history, Transition{
		From:      previous,
		To:        target,
		Timestamp: time.Now(),
		Reason:    reason,
	})

	m.bus.Publish(events.NewPhaseChangedEvent(m.id, previous.String(), target.String(), reason))
	m.logger.Debug().
		Str("from_phase", previous.String()).
		Str("to_phase", target.String()).
		Str("reason", reason).
		Msg("Phase transition completed")
	return nil
}
