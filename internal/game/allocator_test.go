package game

import (
	"testing"

	"github.com/duskwatch/werewolf/internal/game/role"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpec_UnmarshalJSON_Fixed(t *testing.T) {
	var s Spec
	require.NoError(t, s.UnmarshalJSON([]byte(`2`)))
	assert.Equal(t, KindFixed, s.Kind)
	assert.Equal(t, 2, s.Fixed)
}

func TestSpec_UnmarshalJSON_Range(t *testing.T) {
	var s Spec
	require.NoError(t, s.UnmarshalJSON([]byte(`[1,2]`)))
	assert.Equal(t, KindRange, s.Kind)
	assert.Equal(t, 1, s.A)
	assert.Equal(t, 2, s.B)
}

func TestSpec_UnmarshalJSON_Rate(t *testing.T) {
	var s Spec
	require.NoError(t, s.UnmarshalJSON([]byte(`[0.5,1]`)))
	assert.Equal(t, KindRate, s.Kind)
	assert.Equal(t, 0.5, s.Rate)
	assert.Equal(t, 1, s.Max)
}

func TestAllocateRoles_FillsEveryFixedSlot(t *testing.T) {
	cfg := RoleConfig{
		4: {
			"Werewolf": Spec{Kind: KindFixed, Fixed: 1},
			"Villager": Spec{Kind: KindFixed, Fixed: 3},
		},
	}
	uids := []int64{1, 2, 3, 4}

	players, counts, err := AllocateRoles(cfg, uids)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["Werewolf"])
	assert.Equal(t, 3, counts["Villager"])
	assert.Len(t, players, 4)

	wolves := 0
	for _, p := range players {
		if p.Name() == role.Werewolf {
			wolves++
		}
	}
	assert.Equal(t, 1, wolves)
}

func TestAllocateRoles_MissingConfigForPlayerCount(t *testing.T) {
	cfg := RoleConfig{4: {"Villager": Spec{Kind: KindFixed, Fixed: 4}}}
	_, _, err := AllocateRoles(cfg, []int64{1, 2, 3})
	assert.Error(t, err)
}

func TestAllocateRoles_RateFillsRemainingSlots(t *testing.T) {
	cfg := RoleConfig{
		5: {
			"Werewolf": Spec{Kind: KindFixed, Fixed: 1},
			"Villager": Spec{Kind: KindRate, Rate: 1.0, Max: 4},
		},
	}
	uids := []int64{1, 2, 3, 4, 5}

	players, counts, err := AllocateRoles(cfg, uids)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["Werewolf"])
	assert.Equal(t, 4, counts["Villager"])
	assert.Len(t, players, 5)
}
