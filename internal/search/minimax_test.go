package search

import (
	"math"
	"testing"

	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/rules"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinimax_Leaf(t *testing.T) {
	s, _, _ := testutil.LoneDuel(t)
	ev, err := NewLinearEvaluator(DefaultWeights())
	require.NoError(t, err)

	v, idx := Minimax(s, 0, rules.NewActionGenerator(false), ev, nil)
	assert.Equal(t, -1, idx)
	assert.Equal(t, ev.Evaluate(s), v)
}

func TestMinimax_LoneDuel(t *testing.T) {
	s, _, _ := testutil.LoneDuel(t)
	ev, err := NewLinearEvaluator(DefaultWeights())
	require.NoError(t, err)
	gen := rules.NewActionGenerator(false)

	v, idx := Minimax(s, 2, gen, ev, GenerationOrder{})
	assert.Equal(t, 30.0, v)
	assert.Equal(t, 0, idx, "east comes before south")

	children := Expand(s, gen)
	require.Len(t, children, 2)
	assert.Equal(t, v, mustMinimax(t, children[idx], gen, ev))
}

func mustMinimax(t *testing.T, n Node, gen *rules.ActionGenerator, ev Evaluator) float64 {
	t.Helper()
	v, _ := Minimax(n.State, 1, gen, ev, nil)
	require.False(t, math.IsNaN(v))
	return v
}
