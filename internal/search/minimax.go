package search

import (
	"math"

	"github.com/mitchelldurbincs/SkirmishSearch/internal/game"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/core"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/rules"
)

// Minimax is the unpruned reference search. It visits the whole tree to the
// given depth and returns the value of s with the index of the chosen child in
// move order (-1 when s is a leaf). With the same orderer it agrees with
// Engine.Search on both.
func Minimax(s *game.State, depth int, gen *rules.ActionGenerator, eval Evaluator, order Orderer) (float64, int) {
	if order == nil {
		order = GenerationOrder{}
	}
	if depth <= 0 || s.IsTerminal() {
		return eval.Evaluate(s), -1
	}

	maximise := s.ToMove == core.Controlled
	value, best := math.Inf(-1), -1
	if !maximise {
		value = math.Inf(1)
	}

	for i, child := range order.Order(Expand(s, gen)) {
		v, _ := Minimax(child.State, depth-1, gen, eval, order)
		if best < 0 || (maximise && v > value) || (!maximise && v < value) {
			value, best = v, i
		}
	}
	return value, best
}
