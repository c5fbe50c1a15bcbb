package search

import (
	"math"
	"runtime"

	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/core"
	"golang.org/x/sync/errgroup"
)

// searchRootParallel scores every root child on its own goroutine with a full
// window. Branches share no bounds, so there is no pruning across them, but
// every child value is exact and the selection below matches the sequential
// search.
func (e *Engine) searchRootParallel(root *searcher, role core.Side, children []Node) (float64, int) {
	values := make([]float64, len(children))
	branches := make([]*searcher, len(children))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, child := range children {
		branch := &searcher{
			done:      root.done,
			gen:       root.gen,
			eval:      root.eval,
			order:     root.order,
			rootDepth: root.rootDepth,
		}
		branches[i] = branch
		i, child := i, child
		g.Go(func() error {
			values[i] = branch.value(child.State, e.opts.Depth-1, math.Inf(-1), math.Inf(1))
			return nil
		})
	}
	_ = g.Wait()

	for _, b := range branches {
		root.stats.add(b.stats)
		root.truncated = root.truncated || b.truncated
	}

	value, best := values[0], 0
	for i, v := range values[1:] {
		if (role == core.Controlled && v > value) || (role != core.Controlled && v < value) {
			value, best = v, i+1
		}
	}
	return value, best
}
