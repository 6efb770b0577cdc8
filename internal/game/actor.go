// Package game implements the core werewolf rules engine: role
// behaviors, the role allocator, the phase waiter, the game actor and
// the game loop. It is deliberately free of any websocket or database
// import — the chat hub and persistence port are both capability
// handles (Outbound, store.Store) injected at construction, so nothing
// in this package reaches back into global mutable state.
package game

import (
	"context"
	"fmt"
	"log"

	"github.com/duskwatch/werewolf/internal/game/role"
	"github.com/duskwatch/werewolf/internal/game/texttemplate"
	"github.com/duskwatch/werewolf/internal/id"
	"github.com/duskwatch/werewolf/internal/store"
)

const (
	maxPlayers = 15
	minPlayers = 4
	lobbyID    = 1
)

// Actor is the game actor: it owns Info and serializes every mutation
// behind Info's mutex. Each public method corresponds to one player
// command.
type Actor struct {
	ID    int64
	Info  *Info
	out   Outbound
	st    store.Store
	ids   *id.Generator
	botID int64
	cfg   RoleConfig
}

func NewActor(gameID int64, out Outbound, st store.Store, ids *id.Generator, botID int64, cfg RoleConfig) *Actor {
	return &Actor{ID: gameID, Info: NewInfo(), out: out, st: st, ids: ids, botID: botID, cfg: cfg}
}

// mustInGame posts a templated reply and returns false if uid is not a
// participant.
func (a *Actor) mustInGame(uid int64, msgID int64) bool {
	a.Info.Lock()
	_, ok := a.Info.Users[uid]
	a.Info.Unlock()
	if !ok {
		a.out.PostBot(lobbyID, texttemplate.NotInGame(), &msgID)
		return false
	}
	return true
}

// GameplayChannel returns the game's gameplay channel id, so callers
// outside this package (the chat hub's Gate enforcement) can check a
// command's origin channel without reaching into Info directly.
func (a *Actor) GameplayChannel() int64 {
	a.Info.Lock()
	defer a.Info.Unlock()
	return a.Info.Channels[FixedChannel(ChanGamePlay)]
}

// FixedChannelID returns the id of one of the game's fixed channels
// (gameplay, werewolf).
func (a *Actor) FixedChannelID(kind ChannelKind) int64 {
	a.Info.Lock()
	defer a.Info.Unlock()
	return a.Info.Channels[FixedChannel(kind)]
}

// PersonalChannel returns uid's personal channel id, or 0 before roles
// are allocated.
func (a *Actor) PersonalChannel(uid int64) int64 {
	a.Info.Lock()
	defer a.Info.Unlock()
	return a.Info.Channels[PersonalChannel(uid)]
}

func supermajority(votes, participants int) bool { return votes*3 >= participants*2 }

// Join handles the Join command. The hub has already verified
// channelID against the verb's Gate before dispatching here.
func (a *Actor) Join(uid, msgID, channelID int64) {
	a.Info.Lock()
	if _, ok := a.Info.Users[uid]; ok {
		a.Info.Unlock()
		a.out.PostBot(lobbyID, texttemplate.AlreadyInGame(), &msgID)
		return
	}
	if len(a.Info.Users) >= maxPlayers {
		a.Info.Unlock()
		a.out.PostBot(lobbyID, texttemplate.MaxPlayer(), &msgID)
		return
	}
	if a.Info.IsStarted {
		a.Info.Unlock()
		a.out.PostBot(lobbyID, texttemplate.GameIsStarted(), &msgID)
		return
	}
	gameplay := a.Info.Channels[FixedChannel(ChanGamePlay)]
	a.Info.Users[uid] = struct{}{}
	count := len(a.Info.Users)
	a.Info.Unlock()

	if err := a.st.AddGameUser(context.Background(), a.ID, uid); err != nil {
		log.Printf("game %d: persist join for %d: %v", a.ID, uid, err)
	}
	if err := a.st.SetPermission(context.Background(), uid, gameplay, true, true); err != nil {
		log.Printf("game %d: grant perms for %d: %v", a.ID, uid, err)
	}

	a.out.UpdatePers(uid)
	a.out.PostBot(lobbyID, texttemplate.UserJoin(uid, count), &msgID)
	a.out.PostBot(gameplay, fmt.Sprintf("Hi <@%d>.", uid), nil)
	a.out.PostGameEvent(a.ID, Event{Kind: EventUserJoin, UserID: uid})
}

// Leave handles the Leave command. The hub has already verified
// channelID against the verb's Gate before dispatching here.
func (a *Actor) Leave(uid, msgID, channelID int64) {
	if !a.mustInGame(uid, msgID) {
		return
	}

	a.Info.Lock()
	if a.Info.IsStarted {
		a.Info.Unlock()
		a.out.PostBot(lobbyID, texttemplate.LeaveOnStarted(), &msgID)
		return
	}
	delete(a.Info.Users, uid)
	delete(a.Info.VoteStarts, uid)
	delete(a.Info.VoteStops, uid)
	count := len(a.Info.Users)
	gameplay := a.Info.Channels[FixedChannel(ChanGamePlay)]
	channels := make([]int64, 0, len(a.Info.Channels))
	for _, cid := range a.Info.Channels {
		channels = append(channels, cid)
	}
	a.Info.Unlock()

	if err := a.st.RemoveGameUser(context.Background(), a.ID, uid); err != nil {
		log.Printf("game %d: persist leave for %d: %v", a.ID, uid, err)
	}
	for _, cid := range channels {
		if err := a.st.SetPermission(context.Background(), uid, cid, false, false); err != nil {
			log.Printf("game %d: revoke perms for %d on %d: %v", a.ID, uid, cid, err)
		}
	}

	a.out.UpdatePers(uid)
	a.out.PostBot(lobbyID, texttemplate.UserLeave(uid, count), &msgID)
	a.out.PostBot(gameplay, fmt.Sprintf("Bye <@%d>.", uid), nil)
	a.out.PostGameEvent(a.ID, Event{Kind: EventUserLeave, UserID: uid})
}

// Start handles the Start command; on success it spawns the game loop.
// The hub has already verified channelID against the verb's Gate before
// dispatching here.
func (a *Actor) Start(uid, msgID, channelID int64, onStarted func(*Actor)) {
	if !a.mustInGame(uid, msgID) {
		return
	}

	a.Info.Lock()
	if a.Info.IsStarted {
		a.Info.Unlock()
		a.out.PostBot(lobbyID, texttemplate.GameIsStarted(), &msgID)
		return
	}
	numUsers := len(a.Info.Users)
	if numUsers < minPlayers {
		a.Info.Unlock()
		a.out.PostBot(lobbyID, texttemplate.NotEnoughPlayer(numUsers), &msgID)
		return
	}
	a.Info.VoteStarts[uid] = struct{}{}
	votes := len(a.Info.VoteStarts)
	a.Info.Unlock()

	if !supermajority(votes, numUsers) {
		a.out.PostBot(lobbyID, texttemplate.UserStart(uid, votes, numUsers), &msgID)
		a.out.PostGameEvent(a.ID, Event{Kind: EventUserStart, UserID: uid})
		return
	}

	if err := a.allocateAndStart(); err != nil {
		a.out.PostBot(lobbyID, err.Error(), &msgID)
		return
	}

	a.out.PostBot(lobbyID, texttemplate.StartGame(), &msgID)
	a.Info.Lock()
	users := make([]int64, 0, len(a.Info.Users))
	for u := range a.Info.Users {
		users = append(users, u)
	}
	a.Info.Unlock()
	for _, u := range users {
		a.out.UpdatePers(u)
	}
	a.out.PostGameEvent(a.ID, Event{Kind: EventStartGame})

	if onStarted != nil {
		onStarted(a)
	}
}

// allocateAndStart runs the role allocator, creates personal channels
// and grants the Werewolf channel to wolves, per spec.md §4.5 and the
// role-creation loop in original_source's Game::start.
func (a *Actor) allocateAndStart() error {
	a.Info.Lock()
	uids := make([]int64, 0, len(a.Info.Users))
	for u := range a.Info.Users {
		uids = append(uids, u)
	}
	a.Info.Unlock()

	players, counts, err := AllocateRoles(a.cfg, uids)
	if err != nil {
		return fmt.Errorf("allocate roles: %w", err)
	}

	werewolfChan := a.Info.Channels[FixedChannel(ChanWerewolf)]
	ctx := context.Background()
	for uid, p := range players {
		channelID := a.ids.Next()
		if err := a.st.AddGameChannel(ctx, a.ID, channelID, fmt.Sprintf("personal-%d", uid)); err != nil {
			log.Printf("game %d: create personal channel for %d: %v", a.ID, uid, err)
		}
		if err := a.st.SetPermission(ctx, uid, channelID, true, true); err != nil {
			log.Printf("game %d: grant personal perms for %d: %v", a.ID, uid, err)
		}
		p.SetChannelID(channelID)

		if p.Name() == role.Werewolf || p.Name() == role.Superwolf {
			if err := a.st.SetPermission(ctx, uid, werewolfChan, true, true); err != nil {
				log.Printf("game %d: grant werewolf perms for %d: %v", a.ID, uid, err)
			}
		}
	}

	a.Info.Lock()
	a.Info.Players = players
	for uid, p := range players {
		a.Info.Channels[PersonalChannel(uid)] = p.ChannelID()
	}
	a.Info.IsStarted = true
	a.Info.Unlock()

	for _, p := range players {
		p.OnStartGame(a.out)
	}

	gameplay := a.GameplayChannel()
	roleCounts := make(map[string]int, len(counts))
	for k, v := range counts {
		roleCounts[k] = v
	}
	a.out.PostBot(gameplay, texttemplate.RolesList(roleCounts), nil)
	return nil
}

// Stop handles the Stop command. The hub has already verified
// channelID against the verb's Gate before dispatching here.
func (a *Actor) Stop(uid, msgID, channelID int64) {
	if !a.mustInGame(uid, msgID) {
		return
	}

	a.Info.Lock()
	ended := a.Info.IsEnded
	if !ended {
		a.Info.VoteStops[uid] = struct{}{}
		votes := len(a.Info.VoteStops)
		participants := len(a.Info.Users)
		a.Info.Unlock()
		if !supermajority(votes, participants) {
			a.out.PostBot(lobbyID, texttemplate.UserStop(uid, votes, participants), &msgID)
			a.out.PostGameEvent(a.ID, Event{Kind: EventUserStop, UserID: uid})
			return
		}
	} else {
		a.Info.Unlock()
	}

	a.Info.Lock()
	alreadyStopped := a.Info.IsStopped
	if !alreadyStopped {
		a.Info.IsStopped = true
	}
	users := make([]int64, 0, len(a.Info.Users))
	for u := range a.Info.Users {
		users = append(users, u)
	}
	waiter := a.Info.NextFlag
	a.Info.Unlock()

	if !alreadyStopped {
		if err := a.st.DeleteGame(context.Background(), a.ID); err != nil {
			log.Printf("game %d: delete on stop: %v", a.ID, err)
		}
	}

	waiter.Wake()
	a.out.StopGame(a.ID)
	a.out.PostBot(lobbyID, texttemplate.StopGame(), &msgID)
	for _, u := range users {
		a.out.UpdatePers(u)
	}
	a.out.PostGameEvent(a.ID, Event{Kind: EventStopGame})
}

// Next handles the Next command. The hub has already verified
// channelID against the verb's Gate before dispatching here.
func (a *Actor) Next(uid, msgID, channelID int64) {
	if !a.mustInGame(uid, msgID) {
		return
	}
	gameplay := a.GameplayChannel()

	a.Info.Lock()
	if !a.Info.IsStarted {
		a.Info.Unlock()
		a.out.PostBot(gameplay, texttemplate.GameIsNotStarted(), &msgID)
		return
	}
	if a.Info.IsEnded || a.Info.IsStopped {
		a.Info.Unlock()
		a.out.PostBot(gameplay, texttemplate.StopGame(), &msgID)
		return
	}
	a.Info.VoteNexts[uid] = struct{}{}
	votes := len(a.Info.VoteNexts)
	participants := len(a.Info.Users)
	a.Info.Unlock()

	if !supermajority(votes, participants) {
		a.out.PostBot(gameplay, texttemplate.UserNext(uid, votes, participants), &msgID)
		return
	}

	a.Info.Lock()
	a.Info.VoteNexts = make(map[int64]struct{})
	waiter := a.Info.NextFlag
	a.Info.Unlock()
	waiter.Wake()
	a.out.PostGameEvent(a.ID, Event{Kind: EventUserNext, UserID: uid})
}

// Vote handles the Vote command. The hub has already verified
// channelID against the verb's Gate before dispatching here.
func (a *Actor) Vote(uid, channelID int64, target Target, msgID int64) {
	if !a.mustInGame(uid, msgID) {
		return
	}
	gameplay := a.GameplayChannel()

	a.Info.Lock()
	if !a.Info.IsStarted {
		a.Info.Unlock()
		a.out.PostBot(gameplay, texttemplate.GameIsNotStarted(), &msgID)
		return
	}
	if a.Info.IsEnded || a.Info.IsStopped {
		a.Info.Unlock()
		a.out.PostBot(gameplay, texttemplate.StopGame(), &msgID)
		return
	}
	if !a.Info.IsDay {
		a.Info.Unlock()
		a.out.PostBot(gameplay, texttemplate.NotDaytime(), &msgID)
		return
	}
	alive, dead := a.Info.Alive()
	voterAlive := a.Info.Players[uid] != nil && a.Info.Players[uid].IsAlive()
	a.Info.Unlock()

	if !voterAlive {
		a.out.PostBot(gameplay, texttemplate.PlayerDied(), &msgID)
		return
	}

	targetID, err := resolveTarget(alive, dead, target, boolPtr(true))
	if err != nil {
		a.out.PostBot(gameplay, errMessage(err), &msgID)
		return
	}

	a.Info.Lock()
	a.Info.VoteKill[uid] = targetID
	a.Info.Unlock()

	a.out.PostBot(gameplay, texttemplate.VoteKill(uid, targetID), &msgID)
	a.out.PostGameEvent(a.ID, Event{Kind: EventUserVote, UserID: uid, VoteFor: targetID})
}

// Kill handles the Kill command (werewolf night vote). The hub has
// already verified channelID against the verb's Gate before dispatching
// here.
func (a *Actor) Kill(uid, channelID int64, target Target, msgID int64) {
	if !a.mustInGame(uid, msgID) {
		return
	}
	werewolfChan := a.FixedChannelID(ChanWerewolf)

	a.Info.Lock()
	p := a.Info.Players[uid]
	if p == nil || (p.Name() != role.Werewolf && p.Name() != role.Superwolf) {
		a.Info.Unlock()
		a.out.PostBot(werewolfChan, "Only wolves may use this command.", &msgID)
		return
	}
	if a.Info.IsDay || !p.IsAlive() {
		a.Info.Unlock()
		a.out.PostBot(werewolfChan, texttemplate.PlayerDied(), &msgID)
		return
	}
	if !p.Mana() {
		a.Info.Unlock()
		a.out.PostBot(werewolfChan, "No mana remaining tonight.", &msgID)
		return
	}
	alive, dead := a.Info.Alive()
	a.Info.Unlock()

	targetID, err := resolveTarget(alive, dead, target, boolPtr(true))
	if err != nil {
		a.out.PostBot(werewolfChan, errMessage(err), &msgID)
		return
	}

	a.Info.Lock()
	if !p.Mana() {
		a.Info.Unlock()
		a.out.PostBot(werewolfChan, "No mana remaining tonight.", &msgID)
		return
	}
	a.Info.WolfKill[uid] = targetID
	p.UseMana()
	a.Info.Unlock()

	a.out.PostBot(werewolfChan, texttemplate.VoteKill(uid, targetID), &msgID)
}

// Guard handles the Guard command. The hub has already verified
// channelID against the verb's Gate before dispatching here.
func (a *Actor) Guard(uid, channelID int64, target Target, msgID int64) {
	if !a.mustInGame(uid, msgID) {
		return
	}
	personal := a.PersonalChannel(uid)

	a.Info.Lock()
	p := a.Info.Players[uid]
	if p == nil || p.Name() != role.Guard {
		a.Info.Unlock()
		a.out.PostBot(personal, "Only the Guard may use this command.", &msgID)
		return
	}
	if a.Info.IsDay || !p.IsAlive() || !p.Mana() {
		a.Info.Unlock()
		a.out.PostBot(personal, "You cannot act right now.", &msgID)
		return
	}
	alive, dead := a.Info.Alive()
	yesterday := a.Info.GuardYesterday
	a.Info.Unlock()

	targetID, err := resolveTarget(alive, dead, target, boolPtr(true))
	if err != nil {
		a.out.PostBot(personal, errMessage(err), &msgID)
		return
	}
	if yesterday.Set && yesterday.UID == targetID {
		a.out.PostBot(personal, texttemplate.GuardDuplicateTarget(), &msgID)
		return
	}

	a.Info.Lock()
	if !p.Mana() {
		a.Info.Unlock()
		a.out.PostBot(personal, "You cannot act right now.", &msgID)
		return
	}
	a.Info.Players[targetID].GetProtected()
	numDay := a.Info.NumDay
	a.Info.GuardYesterday = GuardTarget{UID: targetID, Day: numDay, Set: true}
	p.UseMana()
	a.Info.Unlock()
}

// Seer handles the Seer command. The hub has already verified channelID
// against the verb's Gate before dispatching here.
func (a *Actor) Seer(uid, channelID int64, target Target, msgID int64) {
	if !a.mustInGame(uid, msgID) {
		return
	}
	personal := a.PersonalChannel(uid)

	a.Info.Lock()
	p := a.Info.Players[uid]
	if p == nil || p.Name() != role.Seer {
		a.Info.Unlock()
		a.out.PostBot(personal, "Only the Seer may use this command.", &msgID)
		return
	}
	if a.Info.IsDay || !p.IsAlive() || !p.Mana() {
		a.Info.Unlock()
		a.out.PostBot(personal, "You cannot act right now.", &msgID)
		return
	}
	alive, dead := a.Info.Alive()
	a.Info.Unlock()

	targetID, err := resolveTarget(alive, dead, target, boolPtr(true))
	if err != nil {
		a.out.PostBot(personal, errMessage(err), &msgID)
		return
	}

	a.Info.Lock()
	if !p.Mana() {
		a.Info.Unlock()
		a.out.PostBot(personal, "You cannot act right now.", &msgID)
		return
	}
	targetRole := a.Info.Players[targetID]
	seerResult := targetRole.OnSeer()
	isWolf := seerResult != nil && *seerResult
	isFox := targetRole.Name() == role.Fox
	if isFox {
		a.Info.NightPendingKill[targetID] = struct{}{}
	}
	p.UseMana()
	a.Info.Unlock()

	a.out.PostBot(personal, texttemplate.SeerResult(targetID, isWolf), &msgID)
}

// Ship handles the Ship command (Cupid). The hub has already verified
// channelID against the verb's Gate before dispatching here.
func (a *Actor) Ship(uid, channelID int64, t1, t2 Target, msgID int64) {
	if !a.mustInGame(uid, msgID) {
		return
	}
	personal := a.PersonalChannel(uid)

	a.Info.Lock()
	p := a.Info.Players[uid]
	if p == nil || p.Name() != role.Cupid {
		a.Info.Unlock()
		a.out.PostBot(personal, "Only Cupid may use this command.", &msgID)
		return
	}
	if !p.Power() {
		a.Info.Unlock()
		a.out.PostBot(personal, "You have already used your power.", &msgID)
		return
	}
	alive, dead := a.Info.Alive()
	a.Info.Unlock()

	id1, err := resolveTarget(alive, dead, t1, boolPtr(true))
	if err != nil {
		a.out.PostBot(personal, errMessage(err), &msgID)
		return
	}
	id2, err := resolveTarget(alive, dead, t2, boolPtr(true))
	if err != nil {
		a.out.PostBot(personal, errMessage(err), &msgID)
		return
	}

	a.Info.Lock()
	if !p.Power() {
		a.Info.Unlock()
		a.out.PostBot(personal, "You have already used your power.", &msgID)
		return
	}
	a.Info.CupidCouple[id1] = id2
	a.Info.CupidCouple[id2] = id1
	r1, r2 := a.Info.Players[id1], a.Info.Players[id2]
	ch1, ch2 := r1.ChannelID(), r2.ChannelID()
	p.UsePower()
	a.Info.Unlock()

	a.out.PostBot(ch1, texttemplate.CupidPair(id2, string(r2.Name())), nil)
	a.out.PostBot(ch2, texttemplate.CupidPair(id1, string(r1.Name())), nil)
}

// Reborn handles the Reborn command (Witch). The hub has already
// verified channelID against the verb's Gate before dispatching here.
func (a *Actor) Reborn(uid, channelID int64, target Target, msgID int64) {
	if !a.mustInGame(uid, msgID) {
		return
	}
	personal := a.PersonalChannel(uid)

	a.Info.Lock()
	p, ok := a.Info.Players[uid].(*role.WitchRole)
	if !ok {
		a.Info.Unlock()
		a.out.PostBot(personal, "Only the Witch may use this command.", &msgID)
		return
	}
	if a.Info.IsDay || !p.IsAlive() || !p.Power() || !p.Mana() {
		a.Info.Unlock()
		a.out.PostBot(personal, "You cannot act right now.", &msgID)
		return
	}
	alive, dead := a.Info.Alive()
	a.Info.Unlock()

	targetID, err := resolveTarget(alive, dead, target, boolPtr(false))
	if err != nil {
		a.out.PostBot(personal, errMessage(err), &msgID)
		return
	}

	a.Info.Lock()
	if !p.Power() || !p.Mana() {
		a.Info.Unlock()
		a.out.PostBot(personal, "You cannot act right now.", &msgID)
		return
	}
	a.Info.WitchReborn = &targetID
	p.UsePower()
	p.UseMana()
	a.Info.Unlock()
}

// Curse handles the Curse command (Witch). The hub has already
// verified channelID against the verb's Gate before dispatching here.
func (a *Actor) Curse(uid, channelID int64, target Target, msgID int64) {
	if !a.mustInGame(uid, msgID) {
		return
	}
	personal := a.PersonalChannel(uid)

	a.Info.Lock()
	p, ok := a.Info.Players[uid].(*role.WitchRole)
	if !ok {
		a.Info.Unlock()
		a.out.PostBot(personal, "Only the Witch may use this command.", &msgID)
		return
	}
	if a.Info.IsDay || !p.IsAlive() || !p.Power2() || !p.Mana() {
		a.Info.Unlock()
		a.out.PostBot(personal, "You cannot act right now.", &msgID)
		return
	}
	alive, dead := a.Info.Alive()
	a.Info.Unlock()

	targetID, err := resolveTarget(alive, dead, target, boolPtr(true))
	if err != nil {
		a.out.PostBot(personal, errMessage(err), &msgID)
		return
	}

	a.Info.Lock()
	if !p.Power2() || !p.Mana() {
		a.Info.Unlock()
		a.out.PostBot(personal, "You cannot act right now.", &msgID)
		return
	}
	a.Info.NightPendingKill[targetID] = struct{}{}
	p.UsePower2()
	p.UseMana()
	a.Info.Unlock()
}

func errMessage(err error) string {
	switch err {
	case ErrInvalidIndex:
		return texttemplate.InvalidIndex(1, 1)
	case ErrTargetNotInGame:
		return texttemplate.PlayerNotInGame(0)
	case ErrTargetNotAlive:
		return texttemplate.PlayerDied()
	case ErrTargetNotDead:
		return texttemplate.PlayerStillAlive(0)
	default:
		return err.Error()
	}
}
