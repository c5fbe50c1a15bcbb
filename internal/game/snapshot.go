package game

import (
	"fmt"

	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/core"
)

// UnitSnapshot is the ingress record for one unit
type UnitSnapshot struct {
	ID     int
	Side   core.Side
	X, Y   int
	HP     int
	MaxHP  int // starting health; 0 means "same as HP"
	Damage int
	Range  int
}

// ObstacleSnapshot is the ingress record for one obstacle
type ObstacleSnapshot struct {
	ID   int
	X, Y int
}

// Snapshot is the read-only description of a decision point handed over by
// whatever drives the simulation. It is converted into a State once per decision.
type Snapshot struct {
	Width, Height int
	ToMove        core.Side
	Units         []UnitSnapshot
	Obstacles     []ObstacleSnapshot
}

// NewState validates a snapshot and builds the root tactical state from it
func NewState(snap Snapshot) (*State, error) {
	if snap.Width <= 0 || snap.Height <= 0 {
		return nil, core.WrapSnapshotError(fmt.Sprintf("board %dx%d must have positive dimensions", snap.Width, snap.Height), nil)
	}
	if !snap.ToMove.IsValid() {
		return nil, core.WrapSnapshotError(fmt.Sprintf("side to move %s", snap.ToMove), nil)
	}

	grid := core.NewGrid(snap.Width, snap.Height)
	ids := make(map[int]string, len(snap.Units)+len(snap.Obstacles))
	claimID := func(id int, what string) error {
		if prev, dup := ids[id]; dup {
			return core.WrapSnapshotError(fmt.Sprintf("%s reuses id %d of %s", what, id, prev), nil)
		}
		ids[id] = what
		return nil
	}

	obstacles := make([]core.Obstacle, 0, len(snap.Obstacles))
	for _, o := range snap.Obstacles {
		what := fmt.Sprintf("obstacle %d", o.ID)
		if err := claimID(o.ID, what); err != nil {
			return nil, err
		}
		pos := core.NewCoordinate(o.X, o.Y)
		if !grid.InBounds(pos) {
			return nil, core.WrapSnapshotError(what, core.ErrOutOfBounds)
		}
		if !grid.At(pos).IsEmpty() {
			return nil, core.WrapSnapshotError(fmt.Sprintf("%s at %s", what, pos), core.ErrCellOccupied)
		}
		grid.Set(pos, core.ObstacleOccupant(len(obstacles)))
		obstacles = append(obstacles, core.Obstacle{ID: o.ID, Pos: pos})
	}

	units := make([]core.Unit, 0, len(snap.Units))
	for _, us := range snap.Units {
		what := fmt.Sprintf("unit %d", us.ID)
		if err := claimID(us.ID, what); err != nil {
			return nil, err
		}
		u, err := unitFromSnapshot(us)
		if err != nil {
			return nil, core.WrapSnapshotError(what, err)
		}
		if !grid.InBounds(u.Pos) {
			return nil, core.WrapSnapshotError(what, core.ErrOutOfBounds)
		}
		units = append(units, u)
	}

	layout := newLayout(snap.Width, snap.Height, obstacles, units)

	// units is sorted now, so grid indices match the final table
	for i := range units {
		u := &units[i]
		if !u.IsAlive() {
			continue
		}
		if !grid.At(u.Pos).IsEmpty() {
			return nil, core.WrapSnapshotError(fmt.Sprintf("unit %d at %s", u.ID, u.Pos), core.ErrCellOccupied)
		}
		grid.Set(u.Pos, core.UnitOccupant(i))
	}

	return &State{
		layout: layout,
		units:  units,
		grid:   grid,
		ToMove: snap.ToMove,
	}, nil
}

func unitFromSnapshot(us UnitSnapshot) (core.Unit, error) {
	if !us.Side.IsValid() {
		return core.Unit{}, fmt.Errorf("unknown side %s", us.Side)
	}
	if us.HP < 0 {
		return core.Unit{}, fmt.Errorf("hp %d must be non-negative", us.HP)
	}
	maxHP := us.MaxHP
	if maxHP == 0 {
		maxHP = us.HP
	}
	if maxHP < us.HP {
		return core.Unit{}, fmt.Errorf("max hp %d below hp %d", maxHP, us.HP)
	}
	if us.Damage < 0 {
		return core.Unit{}, fmt.Errorf("damage %d must be non-negative", us.Damage)
	}
	if us.Range < 1 {
		return core.Unit{}, fmt.Errorf("range %d must be at least 1", us.Range)
	}
	return core.Unit{
		ID:     us.ID,
		Side:   us.Side,
		Pos:    core.NewCoordinate(us.X, us.Y),
		HP:     us.HP,
		MaxHP:  maxHP,
		Damage: us.Damage,
		Range:  us.Range,
	}, nil
}

// Snapshot converts the state back into its ingress form
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Width:     s.layout.Width,
		Height:    s.layout.Height,
		ToMove:    s.ToMove,
		Units:     make([]UnitSnapshot, 0, len(s.units)),
		Obstacles: make([]ObstacleSnapshot, 0, len(s.layout.obstacles)),
	}
	for _, u := range s.units {
		snap.Units = append(snap.Units, UnitSnapshot{
			ID: u.ID, Side: u.Side, X: u.Pos.X, Y: u.Pos.Y,
			HP: u.HP, MaxHP: u.MaxHP, Damage: u.Damage, Range: u.Range,
		})
	}
	for _, o := range s.layout.obstacles {
		snap.Obstacles = append(snap.Obstacles, ObstacleSnapshot{ID: o.ID, X: o.Pos.X, Y: o.Pos.Y})
	}
	return snap
}
