package search

import (
	"testing"

	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func joint(actions ...core.Action) core.JointAction {
	j := make(core.JointAction, len(actions))
	for _, a := range actions {
		j[a.UnitID] = a
	}
	return j
}

func TestAttackFirst_Order(t *testing.T) {
	moveMove := Node{Action: joint(core.NewMoveAction(1, core.North), core.NewMoveAction(2, core.East))}
	moveAttack := Node{Action: joint(core.NewMoveAction(1, core.South), core.NewAttackAction(2, 9))}
	attackMove := Node{Action: joint(core.NewAttackAction(1, 9), core.NewMoveAction(2, core.West))}
	attackAttack := Node{Action: joint(core.NewAttackAction(1, 9), core.NewAttackAction(2, 8))}
	passNode := Node{Action: core.JointAction{}}
	moveMove2 := Node{Action: joint(core.NewMoveAction(1, core.West), core.NewMoveAction(2, core.East))}

	children := []Node{moveMove, moveAttack, passNode, attackAttack, moveMove2, attackMove}
	ordered := AttackFirst{}.Order(children)

	expected := []Node{attackAttack, moveAttack, attackMove, moveMove, passNode, moveMove2}
	require.Len(t, ordered, len(expected))
	for i := range expected {
		assert.Equal(t, expected[i].Action, ordered[i].Action, "position %d", i)
	}
}

func TestGenerationOrder_Order(t *testing.T) {
	children := []Node{
		{Action: joint(core.NewMoveAction(1, core.North))},
		{Action: joint(core.NewAttackAction(1, 4))},
	}
	ordered := GenerationOrder{}.Order(children)
	assert.Equal(t, core.NewMoveAction(1, core.North), ordered[0].Action[1])
	assert.Equal(t, core.NewAttackAction(1, 4), ordered[1].Action[1])
}

func TestOrdererByName(t *testing.T) {
	o, err := OrdererByName(OrderAttackFirst)
	require.NoError(t, err)
	assert.Equal(t, AttackFirst{}, o)

	o, err = OrdererByName("")
	require.NoError(t, err)
	assert.Equal(t, AttackFirst{}, o)

	o, err = OrdererByName(OrderGeneration)
	require.NoError(t, err)
	assert.Equal(t, GenerationOrder{}, o)

	_, err = OrdererByName("killer_moves")
	assert.Error(t, err)
}
