package core

import (
	"fmt"
	"sort"
	"strings"
)

// ActionType represents the type of action
type ActionType int

const (
	ActionMove ActionType = iota
	ActionAttack
)

func (t ActionType) String() string {
	switch t {
	case ActionMove:
		return "move"
	case ActionAttack:
		return "attack"
	default:
		return fmt.Sprintf("action(%d)", int(t))
	}
}

// Action is a primitive unit command: step one cell in Direction, or attack TargetID
type Action struct {
	Type      ActionType
	UnitID    int
	Direction Direction // ActionMove only
	TargetID  int       // ActionAttack only
}

// NewMoveAction creates a one-cell step for the unit
func NewMoveAction(unitID int, dir Direction) Action {
	return Action{Type: ActionMove, UnitID: unitID, Direction: dir, TargetID: -1}
}

// NewAttackAction creates an attack by unitID against targetID
func NewAttackAction(unitID, targetID int) Action {
	return Action{Type: ActionAttack, UnitID: unitID, Direction: NoDirection, TargetID: targetID}
}

func (a Action) IsMove() bool   { return a.Type == ActionMove }
func (a Action) IsAttack() bool { return a.Type == ActionAttack }

func (a Action) String() string {
	if a.IsAttack() {
		return fmt.Sprintf("unit %d attack %d", a.UnitID, a.TargetID)
	}
	return fmt.Sprintf("unit %d move %s", a.UnitID, a.Direction)
}

// JointAction maps each acting unit to the single action it performs in one ply.
// An empty joint action is a pass.
type JointAction map[int]Action

// UnitIDs returns the acting unit IDs in ascending order
func (j JointAction) UnitIDs() []int {
	ids := make([]int, 0, len(j))
	for id := range j {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// AttackCount returns how many of the actions are attacks
func (j JointAction) AttackCount() int {
	n := 0
	for _, a := range j {
		if a.IsAttack() {
			n++
		}
	}
	return n
}

// AllAttack reports whether every acting unit attacks (false for a pass)
func (j JointAction) AllAttack() bool {
	return len(j) > 0 && j.AttackCount() == len(j)
}

// IsPass reports whether no unit acts
func (j JointAction) IsPass() bool { return len(j) == 0 }

// Clone returns a copy that can be modified independently
func (j JointAction) Clone() JointAction {
	c := make(JointAction, len(j))
	for id, a := range j {
		c[id] = a
	}
	return c
}

func (j JointAction) String() string {
	if j.IsPass() {
		return "pass"
	}
	parts := make([]string, 0, len(j))
	for _, id := range j.UnitIDs() {
		parts = append(parts, j[id].String())
	}
	return strings.Join(parts, "; ")
}
