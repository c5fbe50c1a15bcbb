package mapgen

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/mitchelldurbincs/SkirmishSearch/internal/game"
	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/core"
)

// ErrNoRoom is returned when the board cannot fit the requested units
var ErrNoRoom = errors.New("no free cell satisfies placement constraints")

// UnitTemplate holds the stats every generated unit of a side starts with
type UnitTemplate struct {
	HP     int
	Damage int
	Range  int
}

// MapConfig holds configuration for skirmish generation
type MapConfig struct {
	Width           int
	Height          int
	ControlledUnits int
	HostileUnits    int
	ObstacleRatio   int // 1 obstacle per N cells; 0 disables obstacles
	MinSideSpacing  int // minimum Chebyshev distance between opposing units
	Controlled      UnitTemplate
	Hostile         UnitTemplate
}

// DefaultMapConfig returns the footmen-vs-archers setup: two melee footmen
// against two ranged archers
func DefaultMapConfig(w, h int) MapConfig {
	return MapConfig{
		Width:           w,
		Height:          h,
		ControlledUnits: 2,
		HostileUnits:    2,
		ObstacleRatio:   12,
		MinSideSpacing:  3,
		Controlled:      UnitTemplate{HP: 160, Damage: 20, Range: 1},
		Hostile:         UnitTemplate{HP: 50, Damage: 10, Range: 3},
	}
}

// Validate checks that the config can describe a playable skirmish
func (c MapConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("map dimensions %dx%d must be positive", c.Width, c.Height)
	}
	if c.ControlledUnits < 1 || c.HostileUnits < 1 {
		return fmt.Errorf("each side needs at least one unit")
	}
	if c.ControlledUnits+c.HostileUnits > c.Width*c.Height {
		return fmt.Errorf("%d units do not fit on a %dx%d map", c.ControlledUnits+c.HostileUnits, c.Width, c.Height)
	}
	if c.ObstacleRatio < 0 || c.MinSideSpacing < 0 {
		return fmt.Errorf("obstacle ratio and side spacing must be non-negative")
	}
	for _, tmpl := range []UnitTemplate{c.Controlled, c.Hostile} {
		if tmpl.HP <= 0 || tmpl.Damage < 0 || tmpl.Range < 1 {
			return fmt.Errorf("unit template %+v needs hp > 0, damage >= 0, range >= 1", tmpl)
		}
	}
	return nil
}

// Generator handles skirmish generation with deterministic RNG
type Generator struct {
	config MapConfig
	rng    *rand.Rand
}

// NewGenerator creates a new skirmish generator
func NewGenerator(config MapConfig, rng *rand.Rand) *Generator {
	return &Generator{
		config: config,
		rng:    rng,
	}
}

// GenerateSnapshot creates a random skirmish with the controlled side to move.
// IDs are assigned controlled units first, then hostile units, then obstacles.
func (g *Generator) GenerateSnapshot() (game.Snapshot, error) {
	if err := g.config.Validate(); err != nil {
		return game.Snapshot{}, err
	}

	snap := game.Snapshot{
		Width:  g.config.Width,
		Height: g.config.Height,
		ToMove: core.Controlled,
	}
	taken := make(map[core.Coordinate]core.Side)
	nextID := 1

	place := func(side core.Side, tmpl UnitTemplate) error {
		pos, err := g.findUnitLocation(taken, side)
		if err != nil {
			return err
		}
		taken[pos] = side
		snap.Units = append(snap.Units, game.UnitSnapshot{
			ID: nextID, Side: side, X: pos.X, Y: pos.Y,
			HP: tmpl.HP, MaxHP: tmpl.HP, Damage: tmpl.Damage, Range: tmpl.Range,
		})
		nextID++
		return nil
	}

	for i := 0; i < g.config.ControlledUnits; i++ {
		if err := place(core.Controlled, g.config.Controlled); err != nil {
			return game.Snapshot{}, fmt.Errorf("placing controlled unit %d: %w", i, err)
		}
	}
	for i := 0; i < g.config.HostileUnits; i++ {
		if err := place(core.Hostile, g.config.Hostile); err != nil {
			return game.Snapshot{}, fmt.Errorf("placing hostile unit %d: %w", i, err)
		}
	}

	blocked := make(map[core.Coordinate]bool, len(taken))
	for pos := range taken {
		blocked[pos] = true
	}
	for _, pos := range g.placeObstacles(blocked) {
		snap.Obstacles = append(snap.Obstacles, game.ObstacleSnapshot{ID: nextID, X: pos.X, Y: pos.Y})
		nextID++
	}

	return snap, nil
}

// Generate creates a random skirmish and converts it into a state
func (g *Generator) Generate() (*game.State, error) {
	snap, err := g.GenerateSnapshot()
	if err != nil {
		return nil, err
	}
	return game.NewState(snap)
}

func (g *Generator) placeObstacles(blocked map[core.Coordinate]bool) []core.Coordinate {
	if g.config.ObstacleRatio == 0 {
		return nil
	}
	want := (g.config.Width * g.config.Height) / g.config.ObstacleRatio
	placed := make([]core.Coordinate, 0, want)

	// Use a maximum attempt counter to avoid infinite loops
	maxAttempts := want * 10
	for attempts := 0; len(placed) < want && attempts < maxAttempts; attempts++ {
		pos := core.NewCoordinate(g.rng.Intn(g.config.Width), g.rng.Intn(g.config.Height))
		if blocked[pos] {
			continue
		}
		blocked[pos] = true
		placed = append(placed, pos)
	}
	return placed
}

func (g *Generator) findUnitLocation(taken map[core.Coordinate]core.Side, side core.Side) (core.Coordinate, error) {
	maxAttempts := g.config.Width * g.config.Height * 4

	for attempts := 0; attempts < maxAttempts; attempts++ {
		pos := core.NewCoordinate(g.rng.Intn(g.config.Width), g.rng.Intn(g.config.Height))
		if g.validUnitLocation(taken, side, pos) {
			return pos, nil
		}
	}

	// Fallback: scan in row-major order
	for idx := 0; idx < g.config.Width*g.config.Height; idx++ {
		pos := core.FromIndex(idx, g.config.Width)
		if g.validUnitLocation(taken, side, pos) {
			return pos, nil
		}
	}
	return core.Coordinate{}, ErrNoRoom
}

func (g *Generator) validUnitLocation(taken map[core.Coordinate]core.Side, side core.Side, pos core.Coordinate) bool {
	if _, occupied := taken[pos]; occupied {
		return false
	}
	for other, otherSide := range taken {
		if otherSide != side && pos.DistanceTo(other) < g.config.MinSideSpacing {
			return false
		}
	}
	return true
}
