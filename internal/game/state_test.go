package game

import (
	"errors"
	"strings"
	"testing"

	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// duelSnapshot: footmen 1 and 2 vs archer 3 (range 2) and a dead archer 4, one tree (5)
func duelSnapshot() Snapshot {
	return Snapshot{
		Width:  6,
		Height: 5,
		ToMove: core.Controlled,
		Units: []UnitSnapshot{
			{ID: 2, Side: core.Controlled, X: 1, Y: 3, HP: 10, Damage: 4, Range: 1},
			{ID: 1, Side: core.Controlled, X: 0, Y: 0, HP: 10, Damage: 4, Range: 1},
			{ID: 3, Side: core.Hostile, X: 3, Y: 1, HP: 6, MaxHP: 8, Damage: 3, Range: 2},
			{ID: 4, Side: core.Hostile, X: 2, Y: 2, HP: 0, MaxHP: 8, Damage: 3, Range: 2},
		},
		Obstacles: []ObstacleSnapshot{{ID: 5, X: 1, Y: 0}},
	}
}

func newDuel(t *testing.T) *State {
	t.Helper()
	s, err := NewState(duelSnapshot())
	require.NoError(t, err)
	return s
}

func requirePanicIs(t *testing.T, target error, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic with %v", target)
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		assert.True(t, errors.Is(err, target), "got %v, want %v", err, target)
	}()
	f()
}

func TestNewState_SortsUnitsAndBuildsGrid(t *testing.T) {
	s := newDuel(t)

	ids := make([]int, 0, len(s.Units()))
	for _, u := range s.Units() {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, ids)
	assert.Equal(t, 6, s.Width())
	assert.Equal(t, 5, s.Height())
	assert.Equal(t, core.Controlled, s.ToMove)
	require.NoError(t, s.CheckInvariants())

	u1, ok := s.Unit(1)
	require.True(t, ok)
	assert.Equal(t, 10, u1.MaxHP, "max hp defaults to hp")

	u3, _ := s.Unit(3)
	assert.Equal(t, 2, u3.DamageTaken())

	_, ok = s.Unit(99)
	assert.False(t, ok)
}

func TestNewState_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
		target error
	}{
		{"zero width", func(s *Snapshot) { s.Width = 0 }, core.ErrInvalidSnapshot},
		{"bad side to move", func(s *Snapshot) { s.ToMove = core.Side(5) }, core.ErrInvalidSnapshot},
		{"duplicate unit id", func(s *Snapshot) { s.Units[1].ID = 2 }, core.ErrInvalidSnapshot},
		{"unit reuses obstacle id", func(s *Snapshot) { s.Units[0].ID = 5 }, core.ErrInvalidSnapshot},
		{"unit off board", func(s *Snapshot) { s.Units[0].X = 6 }, core.ErrOutOfBounds},
		{"obstacle off board", func(s *Snapshot) { s.Obstacles[0].Y = -1 }, core.ErrOutOfBounds},
		{"unit on obstacle", func(s *Snapshot) { s.Units[1].X = 1 }, core.ErrCellOccupied},
		{"two alive units share cell", func(s *Snapshot) { s.Units[0].X, s.Units[0].Y = 3, 1 }, core.ErrCellOccupied},
		{"negative hp", func(s *Snapshot) { s.Units[0].HP = -1 }, core.ErrInvalidSnapshot},
		{"max hp below hp", func(s *Snapshot) { s.Units[2].MaxHP = 2 }, core.ErrInvalidSnapshot},
		{"negative damage", func(s *Snapshot) { s.Units[0].Damage = -3 }, core.ErrInvalidSnapshot},
		{"zero range", func(s *Snapshot) { s.Units[0].Range = 0 }, core.ErrInvalidSnapshot},
		{"unknown side", func(s *Snapshot) { s.Units[0].Side = core.Side(3) }, core.ErrInvalidSnapshot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := duelSnapshot()
			tt.mutate(&snap)
			s, err := NewState(snap)
			require.Error(t, err)
			assert.Nil(t, s)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
			assert.True(t, errors.Is(err, core.ErrInvalidSnapshot))
		})
	}
}

func TestNewState_DeadUnitMayShareCell(t *testing.T) {
	snap := duelSnapshot()
	// dead archer 4 placed on the tree
	snap.Units[3].X, snap.Units[3].Y = 1, 0
	s, err := NewState(snap)
	require.NoError(t, err)
	assert.True(t, s.OccupantAt(core.NewCoordinate(1, 0)).IsObstacle())
}

func TestState_OccupancyQueries(t *testing.T) {
	s := newDuel(t)

	tests := []struct {
		name     string
		pos      core.Coordinate
		onBoard  bool
		occupied bool
	}{
		{"footman", core.NewCoordinate(0, 0), true, true},
		{"obstacle", core.NewCoordinate(1, 0), true, true},
		{"dead archer does not block", core.NewCoordinate(2, 2), true, false},
		{"empty", core.NewCoordinate(4, 4), true, false},
		{"off board", core.NewCoordinate(-1, 0), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.onBoard, s.IsOnBoard(tt.pos))
			assert.Equal(t, tt.occupied, s.IsOccupied(tt.pos))
			assert.Equal(t, tt.onBoard && !tt.occupied, s.IsFree(tt.pos))
		})
	}

	u, ok := s.UnitAt(core.NewCoordinate(3, 1))
	require.True(t, ok)
	assert.Equal(t, 3, u.ID)
	_, ok = s.UnitAt(core.NewCoordinate(2, 2))
	assert.False(t, ok, "dead units are not on the grid")
}

func TestState_AliveUnitsAndTargets(t *testing.T) {
	s := newDuel(t)

	allies := s.AliveUnits(core.Controlled)
	require.Len(t, allies, 2)
	assert.Equal(t, 1, allies[0].ID)
	assert.Equal(t, 2, allies[1].ID)

	enemies := s.AliveUnits(core.Hostile)
	require.Len(t, enemies, 1)
	assert.Equal(t, 3, enemies[0].ID)
	assert.Equal(t, 1, s.AliveCount(core.Hostile))
	assert.False(t, s.IsTerminal())

	// archer 3 at (3,1) range 2 reaches footman 2 at (1,3) but not footman 1 at (0,0)
	assert.Equal(t, []int{2}, s.AttackableTargets(3))
	// footmen are out of range; dead archer 4 at (2,2) is adjacent to footman 2 but never a target
	assert.Empty(t, s.AttackableTargets(2))
	assert.Empty(t, s.AttackableTargets(1))
	assert.Nil(t, s.AttackableTargets(4), "dead units have no targets")
	assert.Nil(t, s.AttackableTargets(42))

	assert.Equal(t, 3, s.Distance(1, 3))
	assert.Equal(t, -1, s.Distance(1, 42))

	id, d, ok := s.Nearest(1)
	require.True(t, ok)
	assert.Equal(t, 3, id)
	assert.Equal(t, 3, d)

	id, d, ok = s.Nearest(3)
	require.True(t, ok)
	assert.Equal(t, 2, id, "footman 2 is closer to archer 3")
	assert.Equal(t, 2, d)

	_, _, ok = s.Nearest(42)
	assert.False(t, ok)
}

func TestState_ApplyMove(t *testing.T) {
	s := newDuel(t)

	s.ApplyMove(2, core.East)
	u, _ := s.Unit(2)
	assert.Equal(t, core.NewCoordinate(2, 3), u.Pos)
	assert.False(t, s.IsOccupied(core.NewCoordinate(1, 3)))
	assert.True(t, s.IsOccupied(core.NewCoordinate(2, 3)))
	require.NoError(t, s.CheckInvariants())

	// stepping onto the dead archer's cell is allowed
	s.ApplyMove(2, core.North)
	u, _ = s.Unit(2)
	assert.Equal(t, core.NewCoordinate(2, 2), u.Pos)
	require.NoError(t, s.CheckInvariants())
}

func TestState_ApplyAttackFloorsAtZero(t *testing.T) {
	s := newDuel(t)
	s.ApplyMove(2, core.East)  // (2,3)
	s.ApplyMove(2, core.North) // (2,2), adjacent to archer 3 at (3,1)

	s.ApplyAttack(2, 3)
	a, _ := s.Unit(3)
	assert.Equal(t, 2, a.HP)
	assert.True(t, a.IsAlive())

	s.ApplyAttack(2, 3)
	a, _ = s.Unit(3)
	assert.Equal(t, 0, a.HP, "hp never goes below zero")
	assert.False(t, a.IsAlive())
	assert.Equal(t, core.NewCoordinate(3, 1), a.Pos, "dead record keeps its position")
	assert.False(t, s.IsOccupied(core.NewCoordinate(3, 1)), "dead unit leaves the grid")
	assert.True(t, s.IsTerminal())
	require.NoError(t, s.CheckInvariants())
}

func TestState_ApplyPanicsOnContractViolation(t *testing.T) {
	tests := []struct {
		name   string
		action core.Action
		target error
	}{
		{"move into obstacle", core.NewMoveAction(1, core.East), core.ErrCellOccupied},
		{"move off board", core.NewMoveAction(1, core.North), core.ErrOutOfBounds},
		{"invalid direction", core.NewMoveAction(1, core.NoDirection), core.ErrInvalidDirection},
		{"unknown unit", core.NewMoveAction(77, core.South), core.ErrUnknownUnit},
		{"dead unit moves", core.NewMoveAction(4, core.South), core.ErrUnitDead},
		{"attack ally", core.NewAttackAction(1, 2), core.ErrFriendlyTarget},
		{"attack dead", core.NewAttackAction(1, 4), core.ErrTargetDead},
		{"attack out of range", core.NewAttackAction(1, 3), core.ErrTargetOutOfRange},
		{"attack unknown", core.NewAttackAction(1, 77), core.ErrUnknownUnit},
		{"bad action type", core.Action{Type: core.ActionType(9), UnitID: 1}, core.ErrInvalidAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newDuel(t)
			assert.True(t, errors.Is(s.ValidateAction(tt.action), tt.target))
			requirePanicIs(t, tt.target, func() { s.Apply(tt.action) })
		})
	}
}

func TestState_CloneIsIndependent(t *testing.T) {
	s := newDuel(t)
	c := s.Clone()

	c.ApplyMove(2, core.East)
	c.EndPly()

	orig, _ := s.Unit(2)
	moved, _ := c.Unit(2)
	assert.Equal(t, core.NewCoordinate(1, 3), orig.Pos)
	assert.Equal(t, core.NewCoordinate(2, 3), moved.Pos)
	assert.True(t, s.IsOccupied(core.NewCoordinate(1, 3)))
	assert.Equal(t, core.Controlled, s.ToMove)
	assert.Equal(t, core.Hostile, c.ToMove)
	assert.Equal(t, 0, s.Ply)
	assert.Equal(t, 1, c.Ply)
	assert.Same(t, s.Layout(), c.Layout(), "layout is shared")
	require.NoError(t, s.CheckInvariants())
	require.NoError(t, c.CheckInvariants())
}

func TestState_ApplyJoint(t *testing.T) {
	s := newDuel(t)

	s.ApplyJoint(core.JointAction{
		1: core.NewMoveAction(1, core.South),
		2: core.NewMoveAction(2, core.East),
	})
	assert.Equal(t, core.Hostile, s.ToMove)
	assert.Equal(t, 1, s.Ply)
	require.NoError(t, s.CheckInvariants())

	requirePanicIs(t, core.ErrWrongSide, func() {
		s.ApplyJoint(core.JointAction{1: core.NewMoveAction(1, core.South)})
	})

	s2 := newDuel(t)
	s2.ApplyJoint(core.JointAction{})
	assert.Equal(t, core.Hostile, s2.ToMove, "a pass still hands over the ply")
}

func TestState_SnapshotRoundTrip(t *testing.T) {
	s := newDuel(t)
	s.ApplyMove(1, core.South)

	again, err := NewState(s.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, s.Units(), again.Units())
	assert.Equal(t, s.Obstacles(), again.Obstacles())
	assert.Equal(t, s.ToMove, again.ToMove)
}

func TestState_Render(t *testing.T) {
	s := newDuel(t)
	out := s.String()

	assert.Contains(t, out, "F1")
	assert.Contains(t, out, "A3")
	assert.Contains(t, out, obstacleSymbol)
	assert.NotContains(t, out, "A4", "dead units are not drawn on the grid")
	assert.Contains(t, out, "controlled to move")
	assert.True(t, strings.Contains(s.Render(true), ColorBlue))
}
