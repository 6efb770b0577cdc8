package game

import (
	"testing"

	"github.com/duskwatch/werewolf/internal/game/role"
	"github.com/stretchr/testify/assert"
)

func newInfoWithPlayers(players map[int64]role.Role) *Info {
	i := NewInfo()
	i.Players = players
	return i
}

func TestCheckWin_VillagersWhenNoWolves(t *testing.T) {
	i := newInfoWithPlayers(map[int64]role.Role{
		1: role.NewVillager(1),
		2: role.NewSeer(2),
	})
	assert.Equal(t, WinnerVillager, CheckWin(i))
}

func TestCheckWin_FoxWhenNoWolvesAndFoxAlive(t *testing.T) {
	i := newInfoWithPlayers(map[int64]role.Role{
		1: role.NewVillager(1),
		2: role.NewFox(2),
	})
	assert.Equal(t, WinnerFox, CheckWin(i))
}

func TestCheckWin_WerewolfOnParity(t *testing.T) {
	i := newInfoWithPlayers(map[int64]role.Role{
		1: role.NewWerewolf(1),
		2: role.NewVillager(2),
	})
	assert.Equal(t, WinnerWerewolf, CheckWin(i))
}

func TestCheckWin_NoneWhileBothFactionsOutnumberEachOther(t *testing.T) {
	i := newInfoWithPlayers(map[int64]role.Role{
		1: role.NewWerewolf(1),
		2: role.NewVillager(2),
		3: role.NewVillager(3),
	})
	assert.Equal(t, WinnerNone, CheckWin(i))
}

func TestCheckWin_CupidWhenLastTwoAreCoupledWithAWolf(t *testing.T) {
	wolf := role.NewWerewolf(1)
	villager := role.NewVillager(2)
	i := newInfoWithPlayers(map[int64]role.Role{1: wolf, 2: villager})
	i.CupidCouple[1] = 2
	i.CupidCouple[2] = 1

	assert.Equal(t, WinnerCupid, CheckWin(i))
}

func TestCheckWin_IgnoresDeadPlayers(t *testing.T) {
	wolf := role.NewWerewolf(1)
	wolf.GetKilled(false)
	i := newInfoWithPlayers(map[int64]role.Role{
		1: wolf,
		2: role.NewVillager(2),
	})
	assert.Equal(t, WinnerVillager, CheckWin(i))
}

func TestCheckWin_BetrayerCountsAsWolf(t *testing.T) {
	i := newInfoWithPlayers(map[int64]role.Role{
		1: role.NewBetrayer(1),
		2: role.NewVillager(2),
	})
	assert.Equal(t, WinnerWerewolf, CheckWin(i))
}
