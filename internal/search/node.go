package search

import (
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/core"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/rules"
)

// Node is one edge of the game tree: the joint action taken by the side to
// move and the state it leads to. Each node owns its state.
type Node struct {
	Action core.JointAction
	State  *game.State
}

// Expand enumerates every child of s. Joint actions are the Cartesian product
// of the per-unit legal actions of s.ToMove, the lowest unit ID varying
// slowest. Members are applied in ascending unit-ID order on a clone, and a
// joint action is dropped when one of its later members is no longer legal
// (two units stepping onto one cell, a second attack on a unit the first one
// killed).
//
// A terminal state has no children. When the side to move has nothing to do
// the only child is a pass that hands the ply to the opponent.
func Expand(s *game.State, gen *rules.ActionGenerator) []Node {
	if s.IsTerminal() {
		return nil
	}

	perUnit := gen.SideActions(s, s.ToMove)
	if len(perUnit) == 0 {
		return []Node{pass(s)}
	}

	size := 1
	for _, actions := range perUnit {
		size *= len(actions)
	}
	children := make([]Node, 0, size)

	combo := make([]core.Action, len(perUnit))
	var walk func(i int)
	walk = func(i int) {
		if i == len(perUnit) {
			if child, ok := applyCombo(s, combo); ok {
				children = append(children, child)
			}
			return
		}
		for _, a := range perUnit[i] {
			combo[i] = a
			walk(i + 1)
		}
	}
	walk(0)

	if len(children) == 0 {
		return []Node{pass(s)}
	}
	return children
}

func applyCombo(s *game.State, combo []core.Action) (Node, bool) {
	child := s.Clone()
	joint := make(core.JointAction, len(combo))
	for _, a := range combo {
		if child.ValidateAction(a) != nil {
			return Node{}, false
		}
		child.Apply(a)
		joint[a.UnitID] = a
	}
	child.EndPly()
	return Node{Action: joint, State: child}, true
}

func pass(s *game.State) Node {
	child := s.Clone()
	child.EndPly()
	return Node{Action: core.JointAction{}, State: child}
}
