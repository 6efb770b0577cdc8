package game

// EventKind enumerates the GameEvent variants of spec.md §6.
type EventKind string

const (
	EventUserJoin   EventKind = "UserJoin"
	EventUserLeave  EventKind = "UserLeave"
	EventUserStart  EventKind = "UserStart"
	EventUserStop   EventKind = "UserStop"
	EventUserNext   EventKind = "UserNext"
	EventUserVote   EventKind = "UserVote"
	EventPlayerDied EventKind = "PlayerDied"
	EventPlayerReborn EventKind = "PlayerReborn"
	EventNewPhase   EventKind = "NewPhase"
	EventStartGame  EventKind = "StartGame"
	EventEndGame    EventKind = "EndGame"
	EventStopGame   EventKind = "StopGame"
)

// Event is the payload posted to the chat hub's GameMsg handler, which
// fans it out only to the game's participants (spec.md §4.1).
type Event struct {
	Kind EventKind

	UserID  int64 // UserJoin/Leave/Start/Stop/Next/Vote, PlayerDied, PlayerReborn
	VoteFor int64 // UserVote

	NumDay uint16 // NewPhase
	IsDay  bool   // NewPhase

	Winner Winner // EndGame
}

// Outbound is the capability handle the game actor and game loop use to
// speak to the outside world: it replaces the source's
// Addr<ChatServer> mailbox reference (spec.md §9's "plain capability
// handle passed in at construction"). The chat hub implements it.
type Outbound interface {
	PostBot(channelID int64, msg string, replyTo *int64)
	PostGameEvent(gameID int64, ev Event)
	UpdatePers(userID int64)
	StopGame(gameID int64)
}
