package search

import (
	"fmt"
	"slices"
)

// Orderer ranks sibling nodes before they are searched. Ordering affects how
// much is pruned, never the value found.
type Orderer interface {
	Order(children []Node) []Node
}

// Names accepted by OrdererByName
const (
	OrderAttackFirst = "attack_first"
	OrderGeneration  = "generation"
)

// AttackFirst visits joint actions where every unit attacks first, then those
// with at least one attack, then pure movement. Ties keep generation order.
type AttackFirst struct{}

func (AttackFirst) Order(children []Node) []Node {
	slices.SortStableFunc(children, func(a, b Node) int {
		return attackRank(a) - attackRank(b)
	})
	return children
}

func attackRank(n Node) int {
	switch {
	case n.Action.AllAttack():
		return 0
	case n.Action.AttackCount() > 0:
		return 1
	default:
		return 2
	}
}

// GenerationOrder leaves children in the order Expand produced them
type GenerationOrder struct{}

func (GenerationOrder) Order(children []Node) []Node { return children }

// OrdererByName maps a configuration name to an orderer
func OrdererByName(name string) (Orderer, error) {
	switch name {
	case OrderAttackFirst, "":
		return AttackFirst{}, nil
	case OrderGeneration:
		return GenerationOrder{}, nil
	default:
		return nil, fmt.Errorf("unknown move ordering %q", name)
	}
}
