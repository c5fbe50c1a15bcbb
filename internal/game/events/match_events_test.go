package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mitchelldurbincs/SkirmishSearch/internal/game/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchEvents_Header(t *testing.T) {
	all := []Event{
		NewMatchStartedEvent("m-9", 4, 4, 1, 1, 2),
		NewMatchEndedEvent("m-9", "draw", 3, time.Second),
		NewDecisionMadeEvent("m-9", "d-1", 0, core.Controlled, core.JointAction{}, 0),
		NewUnitDamagedEvent("m-9", 1, 1, 2, 5, 5),
		NewUnitKilledEvent("m-9", 2, 2, core.Hostile, 1, core.NewCoordinate(1, 1)),
		NewPhaseChangedEvent("m-9", "ready", "running", ""),
	}
	wantTypes := []string{
		TypeMatchStarted, TypeMatchEnded, TypeDecisionMade,
		TypeUnitDamaged, TypeUnitKilled, TypePhaseChanged,
	}

	for i, e := range all {
		assert.Equal(t, wantTypes[i], e.Type())
		assert.Equal(t, "m-9", e.MatchID())
		assert.WithinDuration(t, time.Now(), e.Timestamp(), time.Minute)
	}
}

func TestMatchEvents_JSONCarriesHeader(t *testing.T) {
	b, err := json.Marshal(NewUnitDamagedEvent("m-3", 4, 1, 2, 10, 30))
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &fields))
	assert.Equal(t, TypeUnitDamaged, fields["type"])
	assert.Equal(t, "m-3", fields["match_id"])
	assert.Contains(t, fields, "timestamp")
	assert.Equal(t, float64(30), fields["RemainingHP"])
}
