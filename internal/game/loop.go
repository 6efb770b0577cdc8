package game

import (
	"context"
	"log"
	"time"

	"github.com/duskwatch/werewolf/internal/game/role"
	"github.com/duskwatch/werewolf/internal/game/texttemplate"
)

// postEndGrace is how long the game actor lingers after a winner is
// declared before it tears itself down.
const postEndGrace = 1800 * time.Second

// Run is the game loop: a single long-lived goroutine that drives the
// day/night phase state machine, a timer raced against the waiter's
// wake. It owns nothing besides the pointers handed to it; all state
// lives in Info and is only ever touched while holding its lock.
func Run(ctx context.Context, a *Actor) {
	a.postStartPrompts()

	isDay := true
	var numDay uint16

	for {
		a.Info.Lock()
		a.Info.IsDay = isDay
		a.Info.NumDay = numDay
		players := snapshotPlayers(a.Info)
		duration := phaseDuration(a.Info.Timers, isDay)
		waiter := a.Info.NextFlag
		gameplay := a.Info.Channels[FixedChannel(ChanGamePlay)]
		werewolfChan := a.Info.Channels[FixedChannel(ChanWerewolf)]
		alive, _ := a.Info.Alive()
		if isDay && a.Info.GuardYesterday.Set && a.Info.GuardYesterday.Day+1 < numDay {
			a.Info.GuardYesterday = GuardTarget{}
		}
		if !isDay {
			for _, p := range players {
				if p.IsAlive() {
					p.ResetNightMana()
				}
			}
		}
		for _, p := range players {
			if p.IsAlive() {
				role.Tick(p, numDay, isDay)
			}
		}
		a.Info.Unlock()

		a.out.PostBot(gameplay, texttemplate.NewPhase(numDay, isDay), nil)
		a.out.PostGameEvent(a.ID, Event{Kind: EventNewPhase, NumDay: numDay, IsDay: isDay})

		if isDay {
			a.grantGamePlaySend(gameplay, alive, true)
			a.out.PostBot(gameplay, texttemplate.AliveList(alive), nil)
		} else {
			a.out.PostBot(werewolfChan, texttemplate.WolfPrompt(), nil)
			a.promptNightRoles(players)
		}

		if !waitPhase(ctx, waiter, duration) {
			return
		}

		a.Info.Lock()
		if a.Info.IsStopped {
			a.Info.Unlock()
			return
		}
		if isDay {
			a.resolveDayVotesLocked(gameplay)
		} else {
			a.resolveNightActionsLocked(gameplay)
		}
		winner := CheckWin(a.Info)
		if winner != WinnerNone {
			a.Info.IsEnded = true
		}
		stopped := a.Info.IsStopped
		a.Info.Unlock()

		if isDay {
			a.grantGamePlaySend(gameplay, alive, false)
		}

		if winner != WinnerNone {
			a.endGame(ctx, winner)
			return
		}
		if stopped {
			return
		}

		if isDay {
			isDay = false
		} else {
			isDay = true
			numDay++
		}
	}
}

// postStartPrompts runs once, right after Start allocates roles: the
// wolf team is introduced to itself in the Werewolf channel and Cupid is
// shown the alive list in their personal channel.
func (a *Actor) postStartPrompts() {
	a.Info.Lock()
	var wolves []int64
	var cupidChan int64
	for uid, p := range a.Info.Players {
		switch p.Name() {
		case role.Werewolf, role.Superwolf:
			wolves = append(wolves, uid)
		case role.Cupid:
			cupidChan = p.ChannelID()
		}
	}
	werewolfChan := a.Info.Channels[FixedChannel(ChanWerewolf)]
	alive, _ := a.Info.Alive()
	a.Info.Unlock()

	if len(wolves) > 0 {
		a.out.PostBot(werewolfChan, texttemplate.WolfIntro(wolves), nil)
	}
	if cupidChan != 0 {
		a.out.PostBot(cupidChan, texttemplate.CupidPrompt(alive), nil)
	}
}

// promptNightRoles reminds every alive player with a mana-gated night
// action to act.
func (a *Actor) promptNightRoles(players []role.Role) {
	for _, p := range players {
		if !p.IsAlive() {
			continue
		}
		switch p.Name() {
		case role.Guard, role.Seer, role.Witch:
			a.out.PostBot(p.ChannelID(), texttemplate.NightActionReminder(string(p.Name())), nil)
		}
	}
}

// grantGamePlaySend flips send permission on GamePlay for every alive
// player: granted at day start, revoked at day end, while read access is
// left untouched. Persistence failures are logged and otherwise
// ignored, since this is not on the critical path. Caller supplies
// gameplay directly since this may run while Info's lock is already
// held.
func (a *Actor) grantGamePlaySend(gameplay int64, alive []int64, sendable bool) {
	for _, uid := range alive {
		if err := a.st.SetPermission(context.Background(), uid, gameplay, true, sendable); err != nil {
			log.Printf("game %d: set permission user=%d channel=%d: %v", a.ID, uid, gameplay, err)
		}
	}
}

func snapshotPlayers(i *Info) []role.Role {
	out := make([]role.Role, 0, len(i.Players))
	for _, p := range i.Players {
		out = append(out, p)
	}
	return out
}

func phaseDuration(t Timers, isDay bool) time.Duration {
	if isDay {
		return time.Duration(t.DaytimeSecs) * time.Second
	}
	return time.Duration(t.NighttimeSecs) * time.Second
}

// waitPhase blocks until duration elapses or waiter is woken by a
// supermajority Next vote, whichever comes first, reporting false if ctx
// is cancelled first (process shutdown) so Run can exit instead of
// lingering past the server's lifetime. A timed-out wait leaves its
// helper goroutine parked on the waiter's current channel; it is
// released the next time anyone calls Wake, which is bounded by the
// game's remaining lifetime.
func waitPhase(ctx context.Context, w *Waiter, duration time.Duration) bool {
	done := make(chan struct{})
	go func() {
		w.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(duration):
		return true
	case <-ctx.Done():
		return false
	}
}

// resolveDayVotesLocked tallies VoteKill and executes the plurality
// target. A tie or an empty ballot means no one is executed. Caller
// must hold Info's lock.
func (a *Actor) resolveDayVotesLocked(gameplay int64) {
	tally := make(map[int64]int)
	for _, target := range a.Info.VoteKill {
		tally[target]++
	}
	target, votes, tied := plurality(tally)
	a.Info.VoteKill = make(map[int64]int64)
	a.Info.VoteNexts = make(map[int64]struct{})

	if votes == 0 || tied {
		a.out.PostBot(gameplay, texttemplate.PeacefulNight(), nil)
		return
	}

	a.killLocked(target, false, gameplay)
	a.out.PostBot(gameplay, texttemplate.ExecutionSummary(target, votes), nil)
}

// resolveNightActionsLocked resolves the wolves' kill, the witch's
// curse (already queued in NightPendingKill by Curse), the fox reveal
// pending-kill (queued by Seer), and a witch reborn, then announces the
// night's casualties. Caller must hold Info's lock.
func (a *Actor) resolveNightActionsLocked(gameplay int64) {
	tally := make(map[int64]int)
	for _, target := range a.Info.WolfKill {
		tally[target]++
	}
	target, votes, tied := plurality(tally)
	a.Info.WolfKill = make(map[int64]int64)

	if votes > 0 && !tied {
		a.Info.NightPendingKill[target] = struct{}{}
	}

	if a.Info.WitchReborn != nil {
		revived := *a.Info.WitchReborn
		delete(a.Info.NightPendingKill, revived)
		if r := a.Info.Players[revived]; r != nil {
			r.SetStatus(role.Alive)
			a.revivePermsLocked(revived)
			a.out.PostBot(gameplay, texttemplate.RebornAnnounce(revived), nil)
			a.out.PostGameEvent(a.ID, Event{Kind: EventPlayerReborn, UserID: revived})
		}
		a.Info.WitchReborn = nil
	}

	if len(a.Info.NightPendingKill) == 0 {
		a.out.PostBot(gameplay, texttemplate.PeacefulNight(), nil)
		return
	}

	pending := make([]int64, 0, len(a.Info.NightPendingKill))
	for uid := range a.Info.NightPendingKill {
		pending = append(pending, uid)
	}
	a.Info.NightPendingKill = make(map[int64]struct{})

	for _, uid := range pending {
		a.killLocked(uid, false, gameplay)
	}
}

// killLocked applies a kill to uid and, if uid was half of a cupid
// couple, kills the surviving partner too. Both moves shift channel
// permissions the same way: GamePlay read-only, Cemetery read+send,
// Werewolf revoked. Caller must hold Info's lock.
func (a *Actor) killLocked(uid int64, forced bool, gameplay int64) {
	r := a.Info.Players[uid]
	if r == nil || !r.IsAlive() {
		return
	}
	if !r.GetKilled(forced) {
		return
	}
	a.deathPermsLocked(uid)
	a.out.PostBot(gameplay, texttemplate.DeathAnnounce(uid, string(r.Name())), nil)
	a.out.PostGameEvent(a.ID, Event{Kind: EventPlayerDied, UserID: uid})

	if partner, ok := a.Info.CupidCouple[uid]; ok {
		if p := a.Info.Players[partner]; p != nil && p.IsAlive() && p.GetKilled(true) {
			a.deathPermsLocked(partner)
			a.out.PostBot(gameplay, texttemplate.CoupleFollows(partner), nil)
			a.out.PostGameEvent(a.ID, Event{Kind: EventPlayerDied, UserID: partner})
		}
	}
}

// deathPermsLocked moves uid's channel grants from living to dead:
// GamePlay becomes read-only, Cemetery opens up, Werewolf closes.
// Persistence errors are logged and otherwise ignored. Caller must hold
// Info's lock; the store calls themselves run outside of it since they
// don't touch Info.
func (a *Actor) deathPermsLocked(uid int64) {
	gameplay := a.Info.Channels[FixedChannel(ChanGamePlay)]
	cemetery := a.Info.Channels[FixedChannel(ChanCemetery)]
	werewolf := a.Info.Channels[FixedChannel(ChanWerewolf)]
	ctx := context.Background()
	if err := a.st.SetPermission(ctx, uid, gameplay, true, false); err != nil {
		log.Printf("game %d: death perm gameplay user=%d: %v", a.ID, uid, err)
	}
	if err := a.st.SetPermission(ctx, uid, cemetery, true, true); err != nil {
		log.Printf("game %d: death perm cemetery user=%d: %v", a.ID, uid, err)
	}
	if err := a.st.SetPermission(ctx, uid, werewolf, false, false); err != nil {
		log.Printf("game %d: death perm werewolf user=%d: %v", a.ID, uid, err)
	}
}

// revivePermsLocked reverts a witch-reborn player's channel grants back
// to the living shape: Cemetery closes, GamePlay opens.
func (a *Actor) revivePermsLocked(uid int64) {
	gameplay := a.Info.Channels[FixedChannel(ChanGamePlay)]
	cemetery := a.Info.Channels[FixedChannel(ChanCemetery)]
	ctx := context.Background()
	if err := a.st.SetPermission(ctx, uid, cemetery, false, false); err != nil {
		log.Printf("game %d: revive perm cemetery user=%d: %v", a.ID, uid, err)
	}
	if err := a.st.SetPermission(ctx, uid, gameplay, true, true); err != nil {
		log.Printf("game %d: revive perm gameplay user=%d: %v", a.ID, uid, err)
	}
}

// plurality returns the key with the highest count, the count itself,
// and whether more than one key shares that maximum.
func plurality(tally map[int64]int) (target int64, votes int, tied bool) {
	for k, v := range tally {
		switch {
		case v > votes:
			target, votes, tied = k, v, false
		case v == votes && votes > 0:
			tied = true
		}
	}
	return
}

// endGame announces the winner, reveals every role, waits out the
// post-end grace period (or an earlier Stop), and tears the game down.
func (a *Actor) endGame(ctx context.Context, winner Winner) {
	gameplay := a.GameplayChannel()
	a.out.PostBot(gameplay, texttemplate.EndGame(string(winner)), nil)

	a.Info.Lock()
	for uid, p := range a.Info.Players {
		a.out.PostBot(gameplay, texttemplate.RoleReveal(uid, string(p.Name()), p.IsAlive()), nil)
		p.OnEndGame()
	}
	users := make([]int64, 0, len(a.Info.Users))
	for uid := range a.Info.Users {
		users = append(users, uid)
	}
	waiter := a.Info.NextFlag
	a.Info.Unlock()

	a.out.PostGameEvent(a.ID, Event{Kind: EventEndGame, Winner: winner})

	if !waitPhase(ctx, waiter, postEndGrace) {
		return
	}

	if err := a.st.DeleteGame(context.Background(), a.ID); err != nil {
		log.Printf("game %d: delete on end: %v", a.ID, err)
	}

	for _, uid := range users {
		a.out.UpdatePers(uid)
	}
	a.out.StopGame(a.ID)
}
