package botcmd

import (
	"errors"
	"testing"

	"github.com/duskwatch/werewolf/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_NotPrefixedIsNotACommand(t *testing.T) {
	_, err := Parse("!", "hello there")
	assert.ErrorIs(t, err, ErrNotACommand)
}

func TestParse_NoArgVerb(t *testing.T) {
	cmd, err := Parse("!", "!join")
	require.NoError(t, err)
	assert.Equal(t, VerbJoin, cmd.Verb)
}

func TestParse_NoArgVerbRejectsExtraArgs(t *testing.T) {
	_, err := Parse("!", "!join now")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParse_SingleTargetByIndex(t *testing.T) {
	cmd, err := Parse("!", "!vote 2")
	require.NoError(t, err)
	assert.Equal(t, VerbVote, cmd.Verb)
	assert.Equal(t, game.IndexTarget(2), cmd.Target)
}

func TestParse_SingleTargetByMention(t *testing.T) {
	cmd, err := Parse("!", "!kill <@42>")
	require.NoError(t, err)
	assert.Equal(t, game.IDTarget(42), cmd.Target)
}

func TestParse_ShipTakesTwoTargets(t *testing.T) {
	cmd, err := Parse("!", "!ship 1 <@7>")
	require.NoError(t, err)
	assert.Equal(t, game.IndexTarget(1), cmd.Target)
	assert.Equal(t, game.IDTarget(7), cmd.Target2)
}

func TestParse_ShipRejectsSingleArg(t *testing.T) {
	_, err := Parse("!", "!ship 1")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParse_UnknownVerbIsMalformed(t *testing.T) {
	_, err := Parse("!", "!teleport 1")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParse_BadMentionIsMalformed(t *testing.T) {
	_, err := Parse("!", "!vote <@notanumber>")
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestVerb_Gate(t *testing.T) {
	assert.Equal(t, GateLobby, VerbJoin.Gate())
	assert.Equal(t, GateLobbyOrGamePlay, VerbStart.Gate())
	assert.Equal(t, GateGamePlay, VerbVote.Gate())
	assert.Equal(t, GateWerewolf, VerbKill.Gate())
	assert.Equal(t, GatePersonal, VerbSeer.Gate())
}
