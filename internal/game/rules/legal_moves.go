package rules

import (
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/core"
)

// ActionGenerator enumerates the legal primitive actions of a unit
type ActionGenerator struct {
	// Diagonal enables the four diagonal steps in addition to the orthogonal ones
	Diagonal bool
}

// NewActionGenerator creates a new action generator
func NewActionGenerator(diagonal bool) *ActionGenerator {
	return &ActionGenerator{Diagonal: diagonal}
}

// Directions returns the movement directions this generator considers, in order
func (g *ActionGenerator) Directions() []core.Direction {
	return core.Directions(g.Diagonal)
}

// LegalActions returns every legal action for the unit in a fixed order: moves
// in direction-table order, then attacks by ascending target ID.
// A dead or unknown unit has no actions. "Do nothing" is never generated.
func (g *ActionGenerator) LegalActions(s *game.State, unitID int) []core.Action {
	u, ok := s.Unit(unitID)
	if !ok || !u.IsAlive() {
		return nil
	}

	dirs := g.Directions()
	targets := s.AttackableTargets(unitID)
	actions := make([]core.Action, 0, len(dirs)+len(targets))

	for _, d := range dirs {
		if s.IsFree(u.Pos.Move(d)) {
			actions = append(actions, core.NewMoveAction(unitID, d))
		}
	}
	for _, target := range targets {
		actions = append(actions, core.NewAttackAction(unitID, target))
	}
	return actions
}

// LegalActionMask returns a boolean per movement direction (indexed by
// core.Direction, length 8) telling whether the unit may step that way.
// Diagonal entries stay false when the generator is orthogonal only.
func (g *ActionGenerator) LegalActionMask(s *game.State, unitID int) []bool {
	mask := make([]bool, len(core.AllDirections))

	u, ok := s.Unit(unitID)
	if !ok || !u.IsAlive() {
		return mask
	}
	for _, d := range g.Directions() {
		mask[d] = s.IsFree(u.Pos.Move(d))
	}
	return mask
}

// SideActions collects the legal actions of every alive unit on a side, in
// ascending unit-ID order. Units with no legal action are left out.
func (g *ActionGenerator) SideActions(s *game.State, side core.Side) [][]core.Action {
	var perUnit [][]core.Action
	for _, u := range s.AliveUnits(side) {
		if actions := g.LegalActions(s, u.ID); len(actions) > 0 {
			perUnit = append(perUnit, actions)
		}
	}
	return perUnit
}
