package search

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game"
)

// ErrEmptyExpression is returned when no evaluation formula is configured
var ErrEmptyExpression = errors.New("evaluation expression is empty")

// ExprEvaluator scores non-terminal states with a user formula over the
// Features field names, e.g. "1000*AliveAllies - 1000*AliveEnemies + 20*DamageDealt".
// Decided states still score ±Inf without running the formula.
type ExprEvaluator struct {
	source   string
	program  *vm.Program
	failures atomic.Int64
}

// NewExprEvaluator compiles the formula once. The formula must produce a number
// that rises with AliveAllies and falls with AliveEnemies.
func NewExprEvaluator(source string) (*ExprEvaluator, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrEmptyExpression
	}

	program, err := expr.Compile(source, expr.Env(Features{}), expr.AsFloat64())
	if err != nil {
		return nil, fmt.Errorf("compile evaluation expression %q: %w", source, err)
	}
	if _, err := vm.Run(program, Features{}); err != nil {
		return nil, fmt.Errorf("run evaluation expression %q: %w", source, err)
	}
	if err := checkMonotonic(program); err != nil {
		return nil, fmt.Errorf("evaluation expression %q: %w", source, err)
	}

	return &ExprEvaluator{source: source, program: program}, nil
}

// checkMonotonic scores a one-on-one position against the same position with
// one more ally and with one more enemy
func checkMonotonic(program *vm.Program) error {
	base := Features{AliveAllies: 1, AliveEnemies: 1}
	moreAllies, moreEnemies := base, base
	moreAllies.AliveAllies++
	moreEnemies.AliveEnemies++

	var scores [3]float64
	for i, f := range []Features{base, moreAllies, moreEnemies} {
		out, err := vm.Run(program, f)
		if err != nil {
			return fmt.Errorf("monotonic check: %w", err)
		}
		scores[i], _ = out.(float64)
	}

	if !(scores[1] > scores[0]) || !(scores[2] < scores[0]) {
		return fmt.Errorf("%w: base=%g one more ally=%g one more enemy=%g",
			ErrNonMonotonic, scores[0], scores[1], scores[2])
	}
	return nil
}

// Source returns the formula the evaluator was compiled from
func (e *ExprEvaluator) Source() string { return e.source }

// Failures returns how many leaves the formula failed to score
func (e *ExprEvaluator) Failures() int64 { return e.failures.Load() }

func (e *ExprEvaluator) Evaluate(s *game.State) float64 {
	if v, ok := terminalValue(s); ok {
		return v
	}

	out, err := vm.Run(e.program, ExtractFeatures(s))
	if err != nil {
		// counted and scored as neutral; the engine reports the count per search
		e.failures.Add(1)
		return 0
	}
	v, _ := out.(float64)
	return clampFinite(v)
}

// clampFinite keeps formula output off the values reserved for decided states
func clampFinite(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	default:
		return v
	}
}
