package search

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/mitchelldurbincs/SkirmishSearch/internal/game"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/core"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/mapgen"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/rules"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomSkirmish is a small 2v2 close enough for kills to happen within a few plies
func randomSkirmish(t *testing.T, seed int64) *game.State {
	t.Helper()
	config := mapgen.DefaultMapConfig(5, 5)
	config.MinSideSpacing = 1
	config.Controlled = mapgen.UnitTemplate{HP: 12, Damage: 6, Range: 1}
	config.Hostile = mapgen.UnitTemplate{HP: 8, Damage: 4, Range: 2}
	s, err := mapgen.NewGenerator(config, testutil.NewTestRNG(seed)).Generate()
	require.NoError(t, err)
	return s
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.Evaluator == nil {
		ev, err := NewLinearEvaluator(DefaultWeights())
		require.NoError(t, err)
		opts.Evaluator = ev
	}
	e, err := NewEngine(opts, testutil.NopLogger())
	require.NoError(t, err)
	return e
}

func TestNewEngine_RejectsBadOptions(t *testing.T) {
	ev, err := NewLinearEvaluator(DefaultWeights())
	require.NoError(t, err)

	for _, depth := range []int{0, -1} {
		_, err := NewEngine(Options{Depth: depth, Evaluator: ev}, testutil.NopLogger())
		assert.True(t, errors.Is(err, ErrInvalidDepth), "depth %d", depth)
	}

	_, err = NewEngine(Options{Depth: 2}, testutil.NopLogger())
	assert.True(t, errors.Is(err, ErrNilEvaluator))

	e, err := NewEngine(Options{Depth: 2, Evaluator: ev}, testutil.NopLogger())
	require.NoError(t, err)
	assert.Equal(t, AttackFirst{}, e.Options().Orderer, "default ordering")
}

func TestSearch_NilState(t *testing.T) {
	e := newTestEngine(t, Options{Depth: 1})
	res, err := e.Search(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrNilState))
	assert.Equal(t, -1, res.ChildIndex)
}

func TestSearch_LoneDuelClosesDistance(t *testing.T) {
	s, f, _ := testutil.LoneDuel(t)
	e := newTestEngine(t, Options{Depth: 2})

	res, err := e.Search(context.Background(), s)
	require.NoError(t, err)

	require.Contains(t, res.Action, f)
	assert.Equal(t, core.NewMoveAction(f, core.East), res.Action[f], "step to (1,0)")
	assert.Equal(t, 30.0, res.Value)
	assert.NotEmpty(t, res.DecisionID)
	assert.False(t, res.Truncated)
	assert.Positive(t, res.Stats.Nodes)
	assert.Equal(t, 2, res.Stats.MaxDepth)

	// the caller's state is not modified
	u, _ := s.Unit(f)
	assert.Equal(t, core.NewCoordinate(0, 0), u.Pos)
	assert.Equal(t, core.Controlled, s.ToMove)
}

func TestSearch_AdjacentAttacks(t *testing.T) {
	b := testutil.NewStateBuilder(6, 6)
	f := b.Footman(0, 0, 10, 3)
	a := b.Unit(core.Hostile, 1, 0, 10, 3, 1)
	s := b.Build(t)

	for _, order := range []Orderer{AttackFirst{}, GenerationOrder{}} {
		e := newTestEngine(t, Options{Depth: 1, Orderer: order})
		res, err := e.Search(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, core.NewAttackAction(f, a), res.Action[f], "%T", order)
		assert.Equal(t, 115.0, res.Value)
	}
}

func TestSearch_DeadHostileIgnored(t *testing.T) {
	b := testutil.NewStateBuilder(4, 1)
	f := b.Footman(0, 0, 10, 3)
	dead := b.Archer(1, 0, 10, 3, 1)
	b.Wounded(dead, 0)
	b.Archer(3, 0, 10, 3, 1)
	s := b.Build(t)

	assert.Empty(t, s.AttackableTargets(f))
	assert.False(t, s.IsOccupied(core.NewCoordinate(1, 0)))

	e := newTestEngine(t, Options{Depth: 1})
	res, err := e.Search(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, core.NewMoveAction(f, core.East), res.Action[f], "steps over the corpse")
}

func TestSearch_HostileToMoveMinimises(t *testing.T) {
	b := testutil.NewStateBuilder(6, 6)
	b.Footman(0, 0, 10, 3)
	a := b.Unit(core.Hostile, 2, 0, 10, 3, 1)
	s := b.HostileToMove().Build(t)

	e := newTestEngine(t, Options{Depth: 1})
	res, err := e.Search(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, core.NewMoveAction(a, core.East), res.Action[a], "backs away")
	assert.Equal(t, 20.0, res.Value)
}

func TestSearch_TerminalRoot(t *testing.T) {
	b := testutil.NewStateBuilder(3, 3)
	b.Footman(0, 0, 10, 3)
	a := b.Archer(2, 2, 10, 3, 1)
	b.Wounded(a, 0)
	s := b.Build(t)

	e := newTestEngine(t, Options{Depth: 3})
	res, err := e.Search(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, -1, res.ChildIndex)
	assert.NotNil(t, res.Action)
	assert.True(t, res.Action.IsPass())
	assert.Equal(t, math.Inf(1), res.Value)
}

func TestSearch_PassRoot(t *testing.T) {
	b := testutil.NewStateBuilder(4, 4)
	b.Footman(0, 0, 10, 3)
	b.Obstacle(1, 0)
	b.Obstacle(0, 1)
	b.Archer(3, 3, 10, 3, 1)
	s := b.Build(t)

	e := newTestEngine(t, Options{Depth: 2})
	res, err := e.Search(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ChildIndex)
	assert.True(t, res.Action.IsPass())
}

func TestSearch_ExpiredContext(t *testing.T) {
	s := testutil.TwoOnTwo(t)
	e := newTestEngine(t, Options{Depth: 4})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := e.Search(ctx, s)
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.GreaterOrEqual(t, res.ChildIndex, 0, "a cut search still returns a legal action")
	assert.Equal(t, 1, res.Stats.MaxDepth)
	for _, id := range res.Action.UnitIDs() {
		assert.NoError(t, s.ValidateAction(res.Action[id]))
	}
}

func TestSearch_TimeBudget(t *testing.T) {
	s := testutil.TwoOnTwo(t)
	e := newTestEngine(t, Options{Depth: 40, Diagonal: true, TimeBudget: 20 * time.Millisecond})

	res, err := e.Search(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.GreaterOrEqual(t, res.ChildIndex, 0)
	assert.Less(t, res.Stats.Elapsed, 5*time.Second)
}

func TestSearch_MatchesMinimax(t *testing.T) {
	gen := rules.NewActionGenerator(false)
	ev, err := NewLinearEvaluator(DefaultWeights())
	require.NoError(t, err)

	for seed := int64(1); seed <= 12; seed++ {
		s := randomSkirmish(t, seed)
		for depth := 1; depth <= 3; depth++ {
			for _, order := range []Orderer{AttackFirst{}, GenerationOrder{}} {
				want, wantIdx := Minimax(s, depth, gen, ev, order)

				e := newTestEngine(t, Options{Depth: depth, Evaluator: ev, Orderer: order})
				res, err := e.Search(context.Background(), s)
				require.NoError(t, err)

				assert.Equal(t, want, res.Value, "seed %d depth %d %T", seed, depth, order)
				assert.Equal(t, wantIdx, res.ChildIndex, "seed %d depth %d %T", seed, depth, order)
			}
		}
	}
}

func TestSearch_OrderingDoesNotChangeValue(t *testing.T) {
	for seed := int64(20); seed < 30; seed++ {
		s := randomSkirmish(t, seed)
		first := newTestEngine(t, Options{Depth: 3, Orderer: AttackFirst{}})
		plain := newTestEngine(t, Options{Depth: 3, Orderer: GenerationOrder{}})

		a, err := first.Search(context.Background(), s)
		require.NoError(t, err)
		b, err := plain.Search(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, b.Value, a.Value, "seed %d", seed)
	}
}

func TestSearch_Deterministic(t *testing.T) {
	e := newTestEngine(t, Options{Depth: 3, Diagonal: true})

	for seed := int64(1); seed <= 5; seed++ {
		first, err := e.Search(context.Background(), randomSkirmish(t, seed))
		require.NoError(t, err)
		second, err := e.Search(context.Background(), randomSkirmish(t, seed))
		require.NoError(t, err)

		assert.Equal(t, first.Action, second.Action, "seed %d", seed)
		assert.Equal(t, first.Value, second.Value, "seed %d", seed)
		assert.NotEqual(t, first.DecisionID, second.DecisionID)
	}
}

func TestSearch_ParallelRootMatchesSequential(t *testing.T) {
	for seed := int64(1); seed <= 8; seed++ {
		s := randomSkirmish(t, seed)
		seq := newTestEngine(t, Options{Depth: 3})
		par := newTestEngine(t, Options{Depth: 3, ParallelRoot: true})

		want, err := seq.Search(context.Background(), s)
		require.NoError(t, err)
		got, err := par.Search(context.Background(), s)
		require.NoError(t, err)

		assert.Equal(t, want.Value, got.Value, "seed %d", seed)
		assert.Equal(t, want.ChildIndex, got.ChildIndex, "seed %d", seed)
		assert.Equal(t, want.Action, got.Action, "seed %d", seed)
		assert.Positive(t, got.Stats.Nodes)
	}
}

func TestSearch_WinningMoveIsTaken(t *testing.T) {
	// either footman can finish the last archer but not both
	b := testutil.NewStateBuilder(5, 5)
	b.Footman(1, 2, 10, 5)
	b.Footman(3, 2, 10, 5)
	a := b.Archer(2, 2, 5, 3, 2)
	s := b.Build(t)

	e := newTestEngine(t, Options{Depth: 2})
	res, err := e.Search(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, math.Inf(1), res.Value)
	assert.Equal(t, 0, res.ChildIndex, "the first winning child in move order")
	require.Equal(t, 1, res.Action.AttackCount())
	for _, act := range res.Action {
		if act.IsAttack() {
			assert.Equal(t, a, act.TargetID)
		}
	}
}

func TestSearch_ReportsEvalFailures(t *testing.T) {
	ev, err := NewExprEvaluator(failingFormula)
	require.NoError(t, err)
	e := newTestEngine(t, Options{Depth: 1, Evaluator: ev})

	res, err := e.Search(context.Background(), woundedFarArcher(t))
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Value)
	assert.Positive(t, res.Stats.EvalFailures)
	assert.Equal(t, res.Stats.Leaves, res.Stats.EvalFailures, "every leaf keeps the damage dealt")

	res, err = e.Search(context.Background(), testutil.TwoOnTwo(t))
	require.NoError(t, err)
	assert.Zero(t, res.Stats.EvalFailures, "counts are per search")
}
