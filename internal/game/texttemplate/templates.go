// Package texttemplate holds every bot-authored message string. One
// function per message shape, named parameters only — no generic
// "fill in the blanks" templating engine.
package texttemplate

import "fmt"

func NotInGame() string {
	return "You are not in the game."
}

func AlreadyInGame() string {
	return "You have already joined this game, wait for it to start."
}

func MaxPlayer() string {
	return "Maximum number of players reached."
}

func UserJoin(userID int64, count int) string {
	return fmt.Sprintf("Player <@%d> joined the game, now %d.", userID, count)
}

func UserLeave(userID int64, count int) string {
	return fmt.Sprintf("Player <@%d> left the game, now %d.", userID, count)
}

func LeaveOnStarted() string {
	return "You can't leave once the game has started."
}

func GameIsStarted() string {
	return "The game has already started."
}

func GameIsNotStarted() string {
	return "The game hasn't started yet."
}

func NotDaytime() string {
	return "Voting is only open during the day."
}

func NotEnoughPlayer(count int) string {
	return fmt.Sprintf("Not enough players to start (%d, need at least 4).", count)
}

func UserStart(userID int64, votes, total int) string {
	return fmt.Sprintf("<@%d> voted to start (%d/%d).", userID, votes, total)
}

func UserStop(userID int64, votes, total int) string {
	return fmt.Sprintf("<@%d> voted to stop (%d/%d).", userID, votes, total)
}

func UserNext(userID int64, votes, total int) string {
	return fmt.Sprintf("<@%d> voted to move on (%d/%d).", userID, votes, total)
}

func RolesList(roles map[string]int) string {
	s := "Roles in this game:\n"
	for name, count := range roles {
		s += fmt.Sprintf("- %s x%d\n", name, count)
	}
	return s
}

func StartGame() string {
	return "The game has started. Good luck."
}

func StopGame() string {
	return "The game has been stopped."
}

func MustInChannel(channelID int64) string {
	return fmt.Sprintf("This command must be used in <#%d>.", channelID)
}

func VoteKill(userID, target int64) string {
	return fmt.Sprintf("<@%d> votes to execute <@%d>.", userID, target)
}

func InvalidIndex(min, max int) string {
	return fmt.Sprintf("Invalid index, expected between %d and %d.", min, max)
}

func PlayerNotInGame(userID int64) string {
	return fmt.Sprintf("<@%d> is not in this game.", userID)
}

func PlayerDied() string {
	return "That player is already dead."
}

func PlayerStillAlive(userID int64) string {
	return fmt.Sprintf("<@%d> is still alive.", userID)
}

func NewPhase(numDay uint16, isDay bool) string {
	if isDay {
		return fmt.Sprintf("Day %d has begun.", numDay)
	}
	return fmt.Sprintf("Night %d has fallen.", numDay)
}

func Timeout(count int) string {
	return fmt.Sprintf("%d seconds remaining.", count)
}

func OnStartGame(roleName string) string {
	return fmt.Sprintf("You are a %s.", roleName)
}

func AliveList(ids []int64) string {
	s := "Alive players:\n"
	for i, id := range ids {
		s += fmt.Sprintf("%d. <@%d>\n", i+1, id)
	}
	return s
}

func WolfPrompt() string {
	return "Wolves, choose your target with !kill <target>."
}

func ExecutionSummary(target int64, votes int) string {
	return fmt.Sprintf("<@%d> has been executed by vote (%d votes).", target, votes)
}

func PeacefulNight() string {
	return "No one died last night."
}

func DeathAnnounce(userID int64, roleName string) string {
	return fmt.Sprintf("<@%d> has died. They were a %s.", userID, roleName)
}

func CoupleFollows(userID int64) string {
	return fmt.Sprintf("<@%d>'s heart could not bear it. They died too.", userID)
}

func RebornAnnounce(userID int64) string {
	return fmt.Sprintf("<@%d> has been revived by the Witch.", userID)
}

func SeerResult(target int64, isWolf bool) string {
	if isWolf {
		return fmt.Sprintf("<@%d> is a wolf.", target)
	}
	return fmt.Sprintf("<@%d> is not a wolf.", target)
}

func CupidPair(partnerID int64, partnerRole string) string {
	return fmt.Sprintf("You are in love with <@%d>, who is a %s.", partnerID, partnerRole)
}

func GuardDuplicateTarget() string {
	return "You protected the same target last night; choose someone else."
}

func WrongFormat() string {
	return "Wrong command format."
}

func EndGame(winner string) string {
	return fmt.Sprintf("The game has ended. %s wins!", winner)
}

func WolfIntro(wolfIDs []int64) string {
	s := "Your fellow wolves:\n"
	for _, id := range wolfIDs {
		s += fmt.Sprintf("- <@%d>\n", id)
	}
	return s
}

func CupidPrompt(aliveIDs []int64) string {
	return AliveList(aliveIDs) + "Cupid, pair two of them today with !ship <a> <b>."
}

func NightActionReminder(roleName string) string {
	return fmt.Sprintf("%s, use your night action now.", roleName)
}

func RoleReveal(userID int64, roleName string, alive bool) string {
	status := "survived"
	if !alive {
		status = "died"
	}
	return fmt.Sprintf("<@%d> was a %s and %s.", userID, roleName, status)
}
