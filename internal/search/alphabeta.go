package search

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/core"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/rules"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidDepth = errors.New("search depth must be positive")
	ErrNilEvaluator = errors.New("search needs an evaluator")
	ErrNilState     = errors.New("search state is nil")
)

// Options configure an Engine
type Options struct {
	Depth        int  // plies to look ahead, > 0
	Diagonal     bool // allow diagonal steps
	Evaluator    Evaluator
	Orderer      Orderer       // nil means AttackFirst
	ParallelRoot bool          // search root children concurrently
	TimeBudget   time.Duration // 0 means no wall-clock limit
}

// Result is the decision for the side to move
type Result struct {
	Action     core.JointAction // empty when the root has no children
	Value      float64
	ChildIndex int // index of the chosen root child in move order, -1 if none
	Stats      Stats
	Truncated  bool // the time budget or the caller's context cut the search short
	DecisionID string
}

// Engine runs depth-limited alpha-beta searches. An Engine holds no per-search
// state and may be shared between goroutines.
type Engine struct {
	opts   Options
	gen    *rules.ActionGenerator
	logger zerolog.Logger
}

// NewEngine validates the options before any search work happens
func NewEngine(opts Options, logger zerolog.Logger) (*Engine, error) {
	if opts.Depth <= 0 {
		return nil, ErrInvalidDepth
	}
	if opts.Evaluator == nil {
		return nil, ErrNilEvaluator
	}
	if opts.Orderer == nil {
		opts.Orderer = AttackFirst{}
	}

	return &Engine{
		opts:   opts,
		gen:    rules.NewActionGenerator(opts.Diagonal),
		logger: logger.With().Str("component", "search_engine").Logger(),
	}, nil
}

// Options returns the engine configuration
func (e *Engine) Options() Options { return e.opts }

// Search picks the best joint action for s.ToMove: maximising the evaluation
// when the controlled side moves and minimising it otherwise. s is not modified.
func (e *Engine) Search(ctx context.Context, s *game.State) (Result, error) {
	if s == nil {
		return Result{ChildIndex: -1}, ErrNilState
	}
	if e.opts.TimeBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.TimeBudget)
		defer cancel()
	}

	result := Result{
		Action:     core.JointAction{},
		ChildIndex: -1,
		DecisionID: uuid.NewString(),
	}
	logger := e.logger.With().Str("decision_id", result.DecisionID).Logger()
	logger.Debug().
		Int("depth", e.opts.Depth).
		Int("ply", s.Ply).
		Str("to_move", s.ToMove.String()).
		Bool("parallel_root", e.opts.ParallelRoot).
		Msg("Search started")

	start := time.Now()
	failuresBefore := evalFailures(e.opts.Evaluator)
	sr := e.newSearcher(ctx)
	root := s.Clone()
	sr.stats.Nodes++

	var children []Node
	if !root.IsTerminal() {
		children = sr.expand(root)
	}

	if len(children) == 0 {
		sr.stats.Leaves++
		result.Value = e.opts.Evaluator.Evaluate(root)
	} else if e.opts.ParallelRoot {
		result.Value, result.ChildIndex = e.searchRootParallel(sr, root.ToMove, children)
	} else {
		result.Value, result.ChildIndex = sr.best(root.ToMove, children, e.opts.Depth, math.Inf(-1), math.Inf(1))
	}

	if result.ChildIndex >= 0 {
		result.Action = children[result.ChildIndex].Action
	}
	result.Truncated = sr.truncated
	result.Stats = sr.stats
	result.Stats.Elapsed = time.Since(start)
	result.Stats.EvalFailures = evalFailures(e.opts.Evaluator) - failuresBefore
	if result.Stats.EvalFailures > 0 {
		logger.Warn().
			Int64("eval_failures", result.Stats.EvalFailures).
			Msg("Evaluator failed on some leaves; they were scored as 0")
	}

	logger.Info().
		Str("action", result.Action.String()).
		Float64("value", result.Value).
		Int("child_index", result.ChildIndex).
		Bool("truncated", result.Truncated).
		Object("stats", result.Stats).
		Msg("Search complete")

	return result, nil
}

// failureCounter is implemented by evaluators that can fail at run time
type failureCounter interface {
	Failures() int64
}

// evalFailures reads the evaluator's failure count. Engines sharing one
// evaluator see each other's failures during overlapping searches.
func evalFailures(ev Evaluator) int64 {
	if fc, ok := ev.(failureCounter); ok {
		return fc.Failures()
	}
	return 0
}

func (e *Engine) newSearcher(ctx context.Context) *searcher {
	return &searcher{
		done:      ctx.Done(),
		gen:       e.gen,
		eval:      e.opts.Evaluator,
		order:     e.opts.Orderer,
		rootDepth: e.opts.Depth,
	}
}

// searcher carries the state of one search down the recursion
type searcher struct {
	done      <-chan struct{}
	gen       *rules.ActionGenerator
	eval      Evaluator
	order     Orderer
	rootDepth int

	stats     Stats
	truncated bool
}

func (sr *searcher) expand(s *game.State) []Node {
	return sr.order.Order(Expand(s, sr.gen))
}

// value returns the minimax value of s searched depth plies deep within
// the (alpha, beta) window
func (sr *searcher) value(s *game.State, depth int, alpha, beta float64) float64 {
	sr.stats.Nodes++
	if ply := sr.rootDepth - depth; ply > sr.stats.MaxDepth {
		sr.stats.MaxDepth = ply
	}

	if depth == 0 || s.IsTerminal() || sr.expired() {
		sr.stats.Leaves++
		return sr.eval.Evaluate(s)
	}

	v, _ := sr.best(s.ToMove, sr.expand(s), depth, alpha, beta)
	return v
}

func (sr *searcher) expired() bool {
	select {
	case <-sr.done:
		sr.truncated = true
		return true
	default:
		return false
	}
}

// best picks among already expanded children, maximising for the controlled
// side and minimising for the hostile side. A child replaces the current best
// only when strictly better, so ties go to the earlier child.
func (sr *searcher) best(role core.Side, children []Node, depth int, alpha, beta float64) (float64, int) {
	if role == core.Controlled {
		return sr.maxValue(children, depth, alpha, beta)
	}
	return sr.minValue(children, depth, alpha, beta)
}

func (sr *searcher) maxValue(children []Node, depth int, alpha, beta float64) (float64, int) {
	value, best := math.Inf(-1), -1
	for i, child := range children {
		v := sr.value(child.State, depth-1, alpha, beta)
		if best < 0 || v > value {
			value, best = v, i
		}
		if value >= beta {
			sr.stats.Cutoffs++
			return value, best
		}
		alpha = math.Max(alpha, value)
	}
	return value, best
}

func (sr *searcher) minValue(children []Node, depth int, alpha, beta float64) (float64, int) {
	value, best := math.Inf(1), -1
	for i, child := range children {
		v := sr.value(child.State, depth-1, alpha, beta)
		if best < 0 || v < value {
			value, best = v, i
		}
		if value <= alpha {
			sr.stats.Cutoffs++
			return value, best
		}
		beta = math.Min(beta, value)
	}
	return value, best
}
