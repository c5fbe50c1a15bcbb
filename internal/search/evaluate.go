package search

import (
	"errors"
	"fmt"
	"math"

	"github.com/mitchelldurbincs/SkirmishSearch/internal/game"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/core"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/rules"
)

// ErrNonMonotonic is returned for weights or formulas that do not reward
// surviving allies and dead enemies
var ErrNonMonotonic = errors.New("evaluation must favour more allies and fewer enemies")

// Evaluator scores a state from the controlled side's point of view.
// Implementations return +Inf when every hostile unit is dead, -Inf when every
// controlled unit is dead (also when both sides are empty) and a finite value
// otherwise.
type Evaluator interface {
	Evaluate(s *game.State) float64
}

// Features are the tactical quantities an evaluator combines. Field names are
// also the variable names available to expression evaluators.
type Features struct {
	AliveAllies          float64
	AliveEnemies         float64
	DamageDealt          float64 // hit points missing from hostile units, dead ones included
	AllyHP               float64 // hit points of alive controlled units
	AttackableEnemies    float64 // distinct hostile units some ally can hit right now
	NearestEnemyDistance float64 // summed over alive allies
	AdjacentObstacles    float64 // obstacle cells touching an alive ally, summed over allies
}

// ExtractFeatures computes the feature vector of a non-terminal state in one
// pass over the unit table
func ExtractFeatures(s *game.State) Features {
	var f Features
	attackable := make(map[int]struct{}, 4)

	for _, u := range s.Units() {
		if u.Side == core.Hostile {
			f.DamageDealt += float64(u.DamageTaken())
			if u.IsAlive() {
				f.AliveEnemies++
			}
			continue
		}
		if !u.IsAlive() {
			continue
		}

		f.AliveAllies++
		f.AllyHP += float64(u.HP)
		for _, id := range s.AttackableTargets(u.ID) {
			attackable[id] = struct{}{}
		}
		if _, d, ok := s.Nearest(u.ID); ok {
			f.NearestEnemyDistance += float64(d)
		}
		for _, n := range u.Pos.ValidNeighbors(s.Width(), s.Height(), true) {
			if s.OccupantAt(n).IsObstacle() {
				f.AdjacentObstacles++
			}
		}
	}
	f.AttackableEnemies = float64(len(attackable))
	return f
}

// terminalValue returns the infinite score of a decided state
func terminalValue(s *game.State) (float64, bool) {
	switch rules.Evaluate(s.AliveCount(core.Controlled), s.AliveCount(core.Hostile)) {
	case rules.ControlledWins:
		return math.Inf(1), true
	case rules.HostileWins, rules.Draw:
		return math.Inf(-1), true
	default:
		return 0, false
	}
}

// Weights are the coefficients of the linear evaluator
type Weights struct {
	AliveAlly        float64
	AliveEnemy       float64
	DamageDealt      float64
	AllyHP           float64
	Attackable       float64
	Distance         float64
	AdjacentObstacle float64
}

// DefaultWeights returns weights where unit counts dominate, then damage,
// then positioning
func DefaultWeights() Weights {
	return Weights{
		AliveAlly:        1000,
		AliveEnemy:       -1000,
		DamageDealt:      20,
		AllyHP:           5,
		Attackable:       15,
		Distance:         -10,
		AdjacentObstacle: -2,
	}
}

// Validate checks the monotonicity requirements
func (w Weights) Validate() error {
	if w.AliveAlly <= 0 || w.AliveEnemy >= 0 {
		return fmt.Errorf("%w: alive_ally=%g alive_enemy=%g", ErrNonMonotonic, w.AliveAlly, w.AliveEnemy)
	}
	for _, v := range []float64{w.AliveAlly, w.AliveEnemy, w.DamageDealt, w.AllyHP, w.Attackable, w.Distance, w.AdjacentObstacle} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("evaluation weights must be finite: %+v", w)
		}
	}
	return nil
}

// Score is the weighted sum of the features
func (w Weights) Score(f Features) float64 {
	return w.AliveAlly*f.AliveAllies +
		w.AliveEnemy*f.AliveEnemies +
		w.DamageDealt*f.DamageDealt +
		w.AllyHP*f.AllyHP +
		w.Attackable*f.AttackableEnemies +
		w.Distance*f.NearestEnemyDistance +
		w.AdjacentObstacle*f.AdjacentObstacles
}

// LinearEvaluator is a weighted linear combination of Features
type LinearEvaluator struct {
	Weights Weights
}

// NewLinearEvaluator validates the weights and returns an evaluator using them
func NewLinearEvaluator(w Weights) (*LinearEvaluator, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &LinearEvaluator{Weights: w}, nil
}

func (e *LinearEvaluator) Evaluate(s *game.State) float64 {
	if v, ok := terminalValue(s); ok {
		return v
	}
	return e.Weights.Score(ExtractFeatures(s))
}
