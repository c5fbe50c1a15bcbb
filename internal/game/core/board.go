package core

import "fmt"

// OccupantKind tags what sits in a grid cell
type OccupantKind uint8

const (
	OccupantEmpty OccupantKind = iota
	OccupantUnit
	OccupantObstacle
)

// Occupant is the value stored per cell: a kind tag plus an index into the
// owning state's unit or obstacle table. The zero value is an empty cell.
type Occupant struct {
	Kind  OccupantKind
	Index int32
}

// EmptyCell is the occupant of an unoccupied cell
var EmptyCell = Occupant{}

// UnitOccupant tags a cell as holding the unit at table index idx
func UnitOccupant(idx int) Occupant { return Occupant{Kind: OccupantUnit, Index: int32(idx)} }

// ObstacleOccupant tags a cell as holding the obstacle at table index idx
func ObstacleOccupant(idx int) Occupant { return Occupant{Kind: OccupantObstacle, Index: int32(idx)} }

func (o Occupant) IsEmpty() bool    { return o.Kind == OccupantEmpty }
func (o Occupant) IsUnit() bool     { return o.Kind == OccupantUnit }
func (o Occupant) IsObstacle() bool { return o.Kind == OccupantObstacle }

func (o Occupant) String() string {
	switch o.Kind {
	case OccupantUnit:
		return fmt.Sprintf("unit[%d]", o.Index)
	case OccupantObstacle:
		return fmt.Sprintf("obstacle[%d]", o.Index)
	default:
		return "empty"
	}
}

// Grid is the occupancy map of the battlefield
type Grid struct {
	W, H int
	T    []Occupant // length = W*H (row-major)
}

// NewGrid creates an empty grid
func NewGrid(w, h int) *Grid {
	return &Grid{W: w, H: h, T: make([]Occupant, w*h)}
}

func (g *Grid) Idx(x, y int) int      { return y*g.W + x }
func (g *Grid) XY(idx int) (int, int) { return idx % g.W, idx / g.W }

// InBounds checks if coordinates are within grid boundaries
func (g *Grid) InBounds(c Coordinate) bool {
	return c.IsValid(g.W, g.H)
}

// At returns the occupant of a cell. Out-of-bounds cells read as empty;
// callers check InBounds first when that matters.
func (g *Grid) At(c Coordinate) Occupant {
	if !g.InBounds(c) {
		return EmptyCell
	}
	return g.T[c.ToIndex(g.W)]
}

// Set stores an occupant in an in-bounds cell
func (g *Grid) Set(c Coordinate, o Occupant) {
	g.T[c.ToIndex(g.W)] = o
}

// Clear empties a cell
func (g *Grid) Clear(c Coordinate) {
	g.T[c.ToIndex(g.W)] = EmptyCell
}

// Clone returns an independent copy of the grid
func (g *Grid) Clone() *Grid {
	t := make([]Occupant, len(g.T))
	copy(t, g.T)
	return &Grid{W: g.W, H: g.H, T: t}
}
