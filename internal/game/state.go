package game

import (
	"fmt"
	"sort"

	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/core"
)

// Layout is the immutable part of a scenario: board size, obstacles and the
// unit ID index. Every state cloned from one snapshot shares a single Layout.
type Layout struct {
	Width, Height int
	obstacles     []core.Obstacle
	unitIndex     map[int]int // unit ID -> index into State.units
}

// Obstacles returns the scenario's obstacles. The slice is shared and must not be modified.
func (l *Layout) Obstacles() []core.Obstacle { return l.obstacles }

// State is a tactical snapshot of the skirmish: every unit record (alive or
// dead), the occupancy grid and the side to move. Search code only ever mutates
// a private Clone.
type State struct {
	layout *Layout
	units  []core.Unit // sorted by ID
	grid   *core.Grid

	ToMove core.Side
	Ply    int
}

// Clone returns a state that owns independent copies of the unit records and
// the occupancy grid. The layout is shared.
func (s *State) Clone() *State {
	units := make([]core.Unit, len(s.units))
	copy(units, s.units)
	return &State{
		layout: s.layout,
		units:  units,
		grid:   s.grid.Clone(),
		ToMove: s.ToMove,
		Ply:    s.Ply,
	}
}

func (s *State) Layout() *Layout { return s.layout }
func (s *State) Width() int      { return s.layout.Width }
func (s *State) Height() int     { return s.layout.Height }

// Obstacles returns the shared obstacle table
func (s *State) Obstacles() []core.Obstacle { return s.layout.obstacles }

// Units returns every unit record, dead ones included, in ascending ID order.
// The slice belongs to the state; callers must treat it as read-only.
func (s *State) Units() []core.Unit { return s.units }

// Unit returns a copy of the unit record with the given ID
func (s *State) Unit(id int) (core.Unit, bool) {
	idx, ok := s.layout.unitIndex[id]
	if !ok {
		return core.Unit{}, false
	}
	return s.units[idx], true
}

func (s *State) unit(id int) *core.Unit {
	idx, ok := s.layout.unitIndex[id]
	if !ok {
		return nil
	}
	return &s.units[idx]
}

// IsOnBoard reports whether pos lies inside the battlefield
func (s *State) IsOnBoard(pos core.Coordinate) bool {
	return s.grid.InBounds(pos)
}

// IsOccupied reports whether an alive unit or an obstacle sits on pos.
// Off-board cells are not occupied; use IsFree to test a move destination.
func (s *State) IsOccupied(pos core.Coordinate) bool {
	return !s.grid.At(pos).IsEmpty()
}

// IsFree reports whether a unit could step onto pos
func (s *State) IsFree(pos core.Coordinate) bool {
	return s.IsOnBoard(pos) && !s.IsOccupied(pos)
}

// OccupantAt returns the tagged occupant of a cell
func (s *State) OccupantAt(pos core.Coordinate) core.Occupant {
	return s.grid.At(pos)
}

// UnitAt returns the alive unit standing on pos, if any
func (s *State) UnitAt(pos core.Coordinate) (core.Unit, bool) {
	o := s.grid.At(pos)
	if !o.IsUnit() {
		return core.Unit{}, false
	}
	return s.units[o.Index], true
}

// AliveUnits returns the alive units of a side in ascending ID order
func (s *State) AliveUnits(side core.Side) []core.Unit {
	alive := make([]core.Unit, 0, len(s.units))
	for _, u := range s.units {
		if u.Side == side && u.IsAlive() {
			alive = append(alive, u)
		}
	}
	return alive
}

// AliveCount counts the alive units of a side without allocating
func (s *State) AliveCount(side core.Side) int {
	n := 0
	for i := range s.units {
		if s.units[i].Side == side && s.units[i].IsAlive() {
			n++
		}
	}
	return n
}

// IsTerminal reports whether either side has no surviving units
func (s *State) IsTerminal() bool {
	return s.AliveCount(core.Controlled) == 0 || s.AliveCount(core.Hostile) == 0
}

// AttackableTargets returns the IDs of alive opposing units within the unit's
// attack range, ascending. A dead or unknown unit has no targets.
func (s *State) AttackableTargets(unitID int) []int {
	u := s.unit(unitID)
	if u == nil || !u.IsAlive() {
		return nil
	}
	var targets []int
	for i := range s.units {
		t := &s.units[i]
		if t.Side != u.Side && t.IsAlive() && u.InRange(t.Pos) {
			targets = append(targets, t.ID)
		}
	}
	return targets
}

// Distance returns the Chebyshev distance between two units, or -1 if either is unknown
func (s *State) Distance(id1, id2 int) int {
	a, b := s.unit(id1), s.unit(id2)
	if a == nil || b == nil {
		return -1
	}
	return a.Pos.DistanceTo(b.Pos)
}

// Nearest returns the closest alive opposing unit and its distance.
// Ties go to the lower ID. ok is false when there is no alive opponent.
func (s *State) Nearest(unitID int) (targetID, distance int, ok bool) {
	u := s.unit(unitID)
	if u == nil {
		return -1, 0, false
	}
	targetID, distance = -1, 0
	for i := range s.units {
		t := &s.units[i]
		if t.Side == u.Side || !t.IsAlive() {
			continue
		}
		d := u.Pos.DistanceTo(t.Pos)
		if !ok || d < distance {
			targetID, distance, ok = t.ID, d, true
		}
	}
	return targetID, distance, ok
}

// ValidateAction checks an action against this state without applying it
func (s *State) ValidateAction(a core.Action) error {
	u := s.unit(a.UnitID)
	if u == nil {
		return core.WrapActionError(a, core.ErrUnknownUnit)
	}
	if !u.IsAlive() {
		return core.WrapActionError(a, core.ErrUnitDead)
	}

	switch a.Type {
	case core.ActionMove:
		if !a.Direction.IsValid() {
			return core.WrapActionError(a, core.ErrInvalidDirection)
		}
		dest := u.Pos.Move(a.Direction)
		if !s.IsOnBoard(dest) {
			return core.WrapActionError(a, core.ErrOutOfBounds)
		}
		if s.IsOccupied(dest) {
			return core.WrapActionError(a, core.ErrCellOccupied)
		}
	case core.ActionAttack:
		t := s.unit(a.TargetID)
		if t == nil {
			return core.WrapActionError(a, core.ErrUnknownUnit)
		}
		if t.Side == u.Side {
			return core.WrapActionError(a, core.ErrFriendlyTarget)
		}
		if !t.IsAlive() {
			return core.WrapActionError(a, core.ErrTargetDead)
		}
		if !u.InRange(t.Pos) {
			return core.WrapActionError(a, core.ErrTargetOutOfRange)
		}
	default:
		return core.WrapActionError(a, core.ErrInvalidAction)
	}
	return nil
}

// ApplyMove steps a unit one cell. It panics if the move is illegal; callers
// only pass moves produced by the action generator for this state.
func (s *State) ApplyMove(unitID int, dir core.Direction) {
	s.Apply(core.NewMoveAction(unitID, dir))
}

// ApplyAttack subtracts the attacker's damage from the target, flooring hit
// points at zero. A target reduced to zero leaves the occupancy grid but keeps
// its record. It panics if the attack is illegal.
func (s *State) ApplyAttack(attackerID, targetID int) {
	s.Apply(core.NewAttackAction(attackerID, targetID))
}

// Apply executes a single primitive action, panicking on contract violations
func (s *State) Apply(a core.Action) {
	if err := s.ValidateAction(a); err != nil {
		panic(err)
	}

	u := s.unit(a.UnitID)
	switch a.Type {
	case core.ActionMove:
		dest := u.Pos.Move(a.Direction)
		s.grid.Set(dest, s.grid.At(u.Pos))
		s.grid.Clear(u.Pos)
		u.Pos = dest
	case core.ActionAttack:
		t := s.unit(a.TargetID)
		t.HP -= u.Damage
		if t.HP <= 0 {
			t.HP = 0
			s.grid.Clear(t.Pos)
		}
	}
}

// ApplyJoint applies a joint action in ascending unit-ID order and hands the
// ply to the other side. Every acting unit must belong to ToMove.
func (s *State) ApplyJoint(joint core.JointAction) {
	for _, id := range joint.UnitIDs() {
		a := joint[id]
		if u := s.unit(id); u != nil && u.Side != s.ToMove {
			panic(core.WrapActionError(a, core.ErrWrongSide))
		}
		s.Apply(a)
	}
	s.EndPly()
}

// EndPly passes the move to the other side
func (s *State) EndPly() {
	s.ToMove = s.ToMove.Opponent()
	s.Ply++
}

// CheckInvariants verifies the occupancy grid against the unit and obstacle
// tables. It is used by tests and by the self-play driver in debug mode.
func (s *State) CheckInvariants() error {
	seen := make(map[core.Coordinate]string)
	claim := func(pos core.Coordinate, who string) error {
		if !s.IsOnBoard(pos) {
			return fmt.Errorf("%s: %w", who, core.ErrOutOfBounds)
		}
		if prev, dup := seen[pos]; dup {
			return fmt.Errorf("%s and %s share %s: %w", prev, who, pos, core.ErrCellOccupied)
		}
		seen[pos] = who
		return nil
	}

	for i, o := range s.layout.obstacles {
		if err := claim(o.Pos, fmt.Sprintf("obstacle %d", o.ID)); err != nil {
			return err
		}
		if got := s.grid.At(o.Pos); got != core.ObstacleOccupant(i) {
			return fmt.Errorf("grid at %s holds %s, want obstacle %d", o.Pos, got, o.ID)
		}
	}
	for i := range s.units {
		u := &s.units[i]
		if u.HP < 0 {
			return fmt.Errorf("unit %d has negative hp %d", u.ID, u.HP)
		}
		if !u.IsAlive() {
			continue
		}
		if err := claim(u.Pos, fmt.Sprintf("unit %d", u.ID)); err != nil {
			return err
		}
		if got := s.grid.At(u.Pos); got != core.UnitOccupant(i) {
			return fmt.Errorf("grid at %s holds %s, want unit %d", u.Pos, got, u.ID)
		}
	}
	for idx, o := range s.grid.T {
		if o.IsEmpty() {
			continue
		}
		x, y := s.grid.XY(idx)
		if _, ok := seen[core.NewCoordinate(x, y)]; !ok {
			return fmt.Errorf("grid at (%d,%d) holds stale %s", x, y, o)
		}
	}
	return nil
}

func newLayout(width, height int, obstacles []core.Obstacle, units []core.Unit) *Layout {
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	index := make(map[int]int, len(units))
	for i, u := range units {
		index[u.ID] = i
	}
	return &Layout{
		Width:     width,
		Height:    height,
		obstacles: obstacles,
		unitIndex: index,
	}
}
