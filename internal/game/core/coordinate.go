package core

import "fmt"

// Coordinate represents a cell on the battlefield grid
type Coordinate struct {
	X, Y int
}

// NewCoordinate creates a new coordinate with the given x and y values
func NewCoordinate(x, y int) Coordinate {
	return Coordinate{X: x, Y: y}
}

// FromIndex creates a coordinate from a grid index using row-major ordering
func FromIndex(idx, width int) Coordinate {
	return Coordinate{
		X: idx % width,
		Y: idx / width,
	}
}

// IsValid checks if the coordinate is within the given bounds
func (c Coordinate) IsValid(width, height int) bool {
	return c.X >= 0 && c.X < width && c.Y >= 0 && c.Y < height
}

// ToIndex converts the coordinate to a grid index using row-major ordering
func (c Coordinate) ToIndex(width int) int {
	return c.Y*width + c.X
}

// DistanceTo calculates the Chebyshev (king-move) distance to another coordinate.
// Attack ranges and proximity features are all measured with this metric.
func (c Coordinate) DistanceTo(other Coordinate) int {
	dx := abs(c.X - other.X)
	dy := abs(c.Y - other.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// IsAdjacentTo checks if the other coordinate is one king-move away.
// A coordinate is never adjacent to itself.
func (c Coordinate) IsAdjacentTo(other Coordinate) bool {
	return c != other && c.DistanceTo(other) <= 1
}

// Neighbors returns the neighbors of this coordinate in direction table order.
// With diagonal set all eight surrounding cells are returned, otherwise the four
// orthogonal ones.
func (c Coordinate) Neighbors(diagonal bool) []Coordinate {
	dirs := Directions(diagonal)
	neighbors := make([]Coordinate, 0, len(dirs))
	for _, d := range dirs {
		neighbors = append(neighbors, c.Move(d))
	}
	return neighbors
}

// ValidNeighbors returns only the neighbors that are within the given bounds.
// Feature extraction uses it to look around a unit without leaving the board.
func (c Coordinate) ValidNeighbors(width, height int, diagonal bool) []Coordinate {
	neighbors := c.Neighbors(diagonal)
	valid := neighbors[:0]
	for _, n := range neighbors {
		if n.IsValid(width, height) {
			valid = append(valid, n)
		}
	}
	return valid
}

// Add returns a new coordinate that is the sum of this coordinate and another
func (c Coordinate) Add(other Coordinate) Coordinate {
	return Coordinate{
		X: c.X + other.X,
		Y: c.Y + other.Y,
	}
}

// String returns a string representation of the coordinate
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Direction represents one of the eight compass directions
type Direction int

const (
	North Direction = iota
	East
	South
	West
	NorthEast
	SouthEast
	SouthWest
	NorthWest
)

// NoDirection marks actions that do not move, such as attacks
const NoDirection Direction = -1

// DirectionVectors provides coordinate offsets for each direction.
// North is towards y = 0.
var DirectionVectors = [...]Coordinate{
	North:     {X: 0, Y: -1},
	East:      {X: 1, Y: 0},
	South:     {X: 0, Y: 1},
	West:      {X: -1, Y: 0},
	NorthEast: {X: 1, Y: -1},
	SouthEast: {X: 1, Y: 1},
	SouthWest: {X: -1, Y: 1},
	NorthWest: {X: -1, Y: -1},
}

var (
	// CardinalDirections lists the orthogonal directions in generation order
	CardinalDirections = []Direction{North, East, South, West}
	// AllDirections lists the orthogonal directions followed by the diagonals
	AllDirections = []Direction{North, East, South, West, NorthEast, SouthEast, SouthWest, NorthWest}
)

var directionNames = [...]string{
	North:     "north",
	East:      "east",
	South:     "south",
	West:      "west",
	NorthEast: "northeast",
	SouthEast: "southeast",
	SouthWest: "southwest",
	NorthWest: "northwest",
}

// Directions returns the movement table for the given diagonal setting
func Directions(diagonal bool) []Direction {
	if diagonal {
		return AllDirections
	}
	return CardinalDirections
}

// IsValid reports whether d is one of the eight defined directions
func (d Direction) IsValid() bool {
	return d >= North && d <= NorthWest
}

func (d Direction) String() string {
	if !d.IsValid() {
		return "none"
	}
	return directionNames[d]
}

// Move returns a new coordinate moved one step in the given direction
func (c Coordinate) Move(direction Direction) Coordinate {
	if !direction.IsValid() {
		return c
	}
	return c.Add(DirectionVectors[direction])
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
