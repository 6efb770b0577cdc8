package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTarget_IndexIntoAliveList(t *testing.T) {
	alive := []int64{10, 20, 30}
	dead := []int64{40}

	id, err := resolveTarget(alive, dead, IndexTarget(2), boolPtr(true))
	require.NoError(t, err)
	assert.Equal(t, int64(20), id)
}

func TestResolveTarget_IndexOutOfRange(t *testing.T) {
	alive := []int64{10, 20}
	_, err := resolveTarget(alive, nil, IndexTarget(3), boolPtr(true))
	assert.ErrorIs(t, err, ErrInvalidIndex)
}

func TestResolveTarget_IndexIntoDeadListForReborn(t *testing.T) {
	alive := []int64{10}
	dead := []int64{20, 30}

	id, err := resolveTarget(alive, dead, IndexTarget(2), boolPtr(false))
	require.NoError(t, err)
	assert.Equal(t, int64(30), id)
}

func TestResolveTarget_MentionMustBeAliveButIsDead(t *testing.T) {
	alive := []int64{10}
	dead := []int64{20}

	_, err := resolveTarget(alive, dead, IDTarget(20), boolPtr(true))
	assert.ErrorIs(t, err, ErrTargetNotAlive)
}

func TestResolveTarget_MentionMustBeDeadButIsAlive(t *testing.T) {
	alive := []int64{10}
	dead := []int64{20}

	_, err := resolveTarget(alive, dead, IDTarget(10), boolPtr(false))
	assert.ErrorIs(t, err, ErrTargetNotDead)
}

func TestResolveTarget_MentionNotInGameAtAll(t *testing.T) {
	alive := []int64{10}
	dead := []int64{20}

	_, err := resolveTarget(alive, dead, IDTarget(99), nil)
	assert.ErrorIs(t, err, ErrTargetNotInGame)
}

func TestResolveTarget_MentionEitherStateAccepted(t *testing.T) {
	alive := []int64{10}
	dead := []int64{20}

	id, err := resolveTarget(alive, dead, IDTarget(20), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(20), id)
}
