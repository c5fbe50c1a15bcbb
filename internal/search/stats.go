package search

import (
	"time"

	"github.com/rs/zerolog"
)

// Stats describes the work done by one search
type Stats struct {
	Nodes    int64 // states visited, root included
	Leaves   int64 // states scored by the evaluator
	Cutoffs  int64 // alpha or beta cutoffs
	MaxDepth int   // deepest ply reached below the root
	Elapsed  time.Duration

	EvalFailures int64 // leaves the evaluator could not score and counted as neutral
}

func (s *Stats) add(other Stats) {
	s.Nodes += other.Nodes
	s.Leaves += other.Leaves
	s.Cutoffs += other.Cutoffs
	if other.MaxDepth > s.MaxDepth {
		s.MaxDepth = other.MaxDepth
	}
}

// NodesPerSecond returns the search throughput
func (s Stats) NodesPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Nodes) / s.Elapsed.Seconds()
}

// MarshalZerologObject lets stats be logged with Event.Object
func (s Stats) MarshalZerologObject(e *zerolog.Event) {
	e.Int64("nodes", s.Nodes).
		Int64("leaves", s.Leaves).
		Int64("cutoffs", s.Cutoffs).
		Int("max_depth", s.MaxDepth).
		Dur("elapsed", s.Elapsed).
		Int64("eval_failures", s.EvalFailures)
}
