package core

import "fmt"

// Side identifies which of the two forces a unit fights for
type Side int

const (
	// Controlled is the side the search plays for (the maximizing player)
	Controlled Side = iota
	// Hostile is the opposing side (the minimizing player)
	Hostile
)

// Opponent returns the other side
func (s Side) Opponent() Side {
	if s == Controlled {
		return Hostile
	}
	return Controlled
}

// IsValid reports whether s is one of the two sides
func (s Side) IsValid() bool {
	return s == Controlled || s == Hostile
}

func (s Side) String() string {
	switch s {
	case Controlled:
		return "controlled"
	case Hostile:
		return "hostile"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// ParseSide converts "controlled"/"hostile" (as written in scenario files) to a Side
func ParseSide(name string) (Side, bool) {
	switch name {
	case "controlled":
		return Controlled, true
	case "hostile":
		return Hostile, true
	default:
		return 0, false
	}
}

// Unit is a combat unit record.
// HP == 0 means dead: the record stays around for scoring but the unit no
// longer occupies a cell, moves, attacks or can be attacked.
type Unit struct {
	ID     int
	Side   Side
	Pos    Coordinate
	HP     int
	MaxHP  int
	Damage int
	Range  int
}

// IsAlive reports whether the unit still has hit points
func (u *Unit) IsAlive() bool { return u.HP > 0 }

// DamageTaken is the hit points lost since the snapshot's starting health
func (u *Unit) DamageTaken() int { return u.MaxHP - u.HP }

// InRange reports whether pos is within this unit's attack range
func (u *Unit) InRange(pos Coordinate) bool {
	return u.Pos.DistanceTo(pos) <= u.Range
}

func (u Unit) String() string {
	return fmt.Sprintf("unit %d [%s] at %s hp %d/%d", u.ID, u.Side, u.Pos, u.HP, u.MaxHP)
}

// Obstacle is an immovable blocker (a tree or other resource node).
// It blocks movement but never blocks attacks.
type Obstacle struct {
	ID  int
	Pos Coordinate
}
