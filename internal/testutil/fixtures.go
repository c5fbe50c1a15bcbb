package testutil

import (
	"testing"

	"github.com/mitchelldurbincs/SkirmishSearch/internal/game"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/core"
	"github.com/stretchr/testify/require"
)

// StateBuilder assembles snapshots for tests
type StateBuilder struct {
	snap   game.Snapshot
	nextID int
}

// NewStateBuilder starts a width x height battlefield with the controlled side to move
func NewStateBuilder(width, height int) *StateBuilder {
	return &StateBuilder{
		snap:   game.Snapshot{Width: width, Height: height, ToMove: core.Controlled},
		nextID: 1,
	}
}

// Footman adds a controlled melee unit (range 1) and returns its ID
func (b *StateBuilder) Footman(x, y, hp, damage int) int {
	return b.Unit(core.Controlled, x, y, hp, damage, 1)
}

// Archer adds a hostile unit with the given range and returns its ID
func (b *StateBuilder) Archer(x, y, hp, damage, rng int) int {
	return b.Unit(core.Hostile, x, y, hp, damage, rng)
}

// Unit adds a unit at full health and returns its ID
func (b *StateBuilder) Unit(side core.Side, x, y, hp, damage, rng int) int {
	id := b.nextID
	b.nextID++
	b.snap.Units = append(b.snap.Units, game.UnitSnapshot{
		ID: id, Side: side, X: x, Y: y, HP: hp, MaxHP: hp, Damage: damage, Range: rng,
	})
	return id
}

// Wounded sets a unit's current hit points below its maximum
func (b *StateBuilder) Wounded(id, hp int) *StateBuilder {
	for i := range b.snap.Units {
		if b.snap.Units[i].ID == id {
			b.snap.Units[i].HP = hp
		}
	}
	return b
}

// Obstacle adds an obstacle and returns its ID
func (b *StateBuilder) Obstacle(x, y int) int {
	id := b.nextID
	b.nextID++
	b.snap.Obstacles = append(b.snap.Obstacles, game.ObstacleSnapshot{ID: id, X: x, Y: y})
	return id
}

// HostileToMove hands the first ply to the hostile side
func (b *StateBuilder) HostileToMove() *StateBuilder {
	b.snap.ToMove = core.Hostile
	return b
}

// Snapshot returns the assembled snapshot
func (b *StateBuilder) Snapshot() game.Snapshot { return b.snap }

// Build converts the snapshot into a state, failing the test on error
func (b *StateBuilder) Build(t testing.TB) *game.State {
	t.Helper()
	s, err := game.NewState(b.snap)
	require.NoError(t, err)
	return s
}

// LoneDuel is a controlled footman at (0,0) and a hostile unit at (2,0) on a
// 6x6 board, both hp 10, damage 3, range 1. It returns the state and both IDs.
func LoneDuel(t testing.TB) (*game.State, int, int) {
	t.Helper()
	b := NewStateBuilder(6, 6)
	f := b.Footman(0, 0, 10, 3)
	a := b.Unit(core.Hostile, 2, 0, 10, 3, 1)
	return b.Build(t), f, a
}

// TwoOnTwo is the classic footmen vs archers layout with one tree between them
func TwoOnTwo(t testing.TB) *game.State {
	t.Helper()
	b := NewStateBuilder(8, 8)
	b.Footman(1, 1, 160, 20)
	b.Footman(1, 3, 160, 20)
	b.Archer(6, 2, 50, 10, 3)
	b.Archer(6, 5, 50, 10, 3)
	b.Obstacle(4, 2)
	return b.Build(t)
}
