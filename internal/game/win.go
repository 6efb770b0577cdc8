package game

import "github.com/duskwatch/werewolf/internal/game/role"

// Winner is the faction that ended the game, or "" if none has yet.
type Winner string

const (
	WinnerNone     Winner = ""
	WinnerVillager Winner = "Villager"
	WinnerWerewolf Winner = "Werewolf"
	WinnerFox      Winner = "Fox"
	WinnerCupid    Winner = "Cupid"
)

// CheckWin evaluates the win conditions in priority order. Caller must
// hold info's lock.
//
// The Cupid condition is checked first, interpreted as "exactly two
// alive, one of them a wolf, and both are the cupid couple".
func CheckWin(i *Info) Winner {
	if alive, ok := i.exactlyTwoCoupled(); ok {
		oneIsWolf := false
		for _, uid := range alive {
			switch i.Players[uid].Name() {
			case role.Werewolf, role.Superwolf:
				oneIsWolf = true
			}
		}
		if oneIsWolf {
			return WinnerCupid
		}
	}

	wolves := i.CountWolves()
	if wolves == 0 {
		if i.FoxAlive() {
			return WinnerFox
		}
		return WinnerVillager
	}

	if 2*wolves >= i.CountAlive() {
		return WinnerWerewolf
	}

	return WinnerNone
}

// exactlyTwoCoupled reports whether exactly two players are alive and
// they are each other's cupid couple.
func (i *Info) exactlyTwoCoupled() ([]int64, bool) {
	alive, _ := i.Alive()
	if len(alive) != 2 {
		return nil, false
	}
	a, b := alive[0], alive[1]
	return alive, i.CupidCouple[a] == b && i.CupidCouple[b] == a
}
