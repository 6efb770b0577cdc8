package game

import (
	"sort"
	"sync"

	"github.com/duskwatch/werewolf/internal/game/role"
)

// ChannelKind identifies one of the three fixed per-game channels or the
// per-player personal channel variant.
type ChannelKind int

const (
	ChanGamePlay ChannelKind = iota
	ChanWerewolf
	ChanCemetery
	ChanPersonal
)

// GameChannel is a comparable key so it can address a Go map directly.
// UID is only meaningful when Kind is ChanPersonal.
type GameChannel struct {
	Kind ChannelKind
	UID  int64
}

func FixedChannel(kind ChannelKind) GameChannel { return GameChannel{Kind: kind} }
func PersonalChannel(uid int64) GameChannel     { return GameChannel{Kind: ChanPersonal, UID: uid} }

// Timers holds the three phase-duration knobs; defaults are 180, 60, 30.
type Timers struct {
	DaytimeSecs   int
	NighttimeSecs int
	TickPeriod    int
}

func DefaultTimers() Timers {
	return Timers{DaytimeSecs: 180, NighttimeSecs: 60, TickPeriod: 30}
}

// GuardTarget records the guard's most recent protection, to enforce the
// "not the same target twice in a row" rule.
type GuardTarget struct {
	UID int64
	Day uint16
	Set bool
}

// Info holds all runtime state for one game, guarded by a single mutex
// held briefly and never across a suspension point. Command handlers
// (the game actor) and the game loop are the only two things that touch
// it, and both take the lock on every access.
type Info struct {
	mu sync.Mutex

	Channels map[GameChannel]int64
	Users    map[int64]struct{}
	Players  map[int64]role.Role

	IsStarted bool
	IsEnded   bool
	IsStopped bool
	IsDay     bool
	NumDay    uint16

	VoteKill map[int64]int64 // voter -> target
	WolfKill map[int64]int64 // wolf -> target

	VoteStarts map[int64]struct{}
	VoteStops  map[int64]struct{}
	VoteNexts  map[int64]struct{}

	CupidCouple map[int64]int64 // symmetric

	NightPendingKill map[int64]struct{}
	GuardYesterday   GuardTarget
	WitchReborn      *int64

	NextFlag *Waiter
	Timers   Timers
}

func NewInfo() *Info {
	return &Info{
		Channels:         make(map[GameChannel]int64),
		Users:            make(map[int64]struct{}),
		Players:          make(map[int64]role.Role),
		IsDay:            true,
		VoteKill:         make(map[int64]int64),
		WolfKill:         make(map[int64]int64),
		VoteStarts:       make(map[int64]struct{}),
		VoteStops:        make(map[int64]struct{}),
		VoteNexts:        make(map[int64]struct{}),
		CupidCouple:      make(map[int64]int64),
		NightPendingKill: make(map[int64]struct{}),
		NextFlag:         NewWaiter(),
		Timers:           DefaultTimers(),
	}
}

// Lock/Unlock are exported so the actor and the loop can take the same
// short-held lock from different goroutines; nothing else should reach
// into Info's fields directly.
func (i *Info) Lock()   { i.mu.Lock() }
func (i *Info) Unlock() { i.mu.Unlock() }

// Alive returns the sorted-by-uid slice of alive and dead player ids,
// matching the source's get_alives() (used for index-based target
// resolution). Caller must hold the lock.
func (i *Info) Alive() (alive, dead []int64) {
	for uid, p := range i.Players {
		if p.IsAlive() {
			alive = append(alive, uid)
		} else {
			dead = append(dead, uid)
		}
	}
	sort.Slice(alive, func(a, b int) bool { return alive[a] < alive[b] })
	sort.Slice(dead, func(a, b int) bool { return dead[a] < dead[b] })
	return
}

// CountWolves returns the number of alive players whose role counts as a
// wolf for win-condition purposes: Werewolf, Superwolf, and Betrayer,
// which aligns with wolves for counting.
func (i *Info) CountWolves() int {
	n := 0
	for _, p := range i.Players {
		if !p.IsAlive() {
			continue
		}
		switch p.Name() {
		case role.Werewolf, role.Superwolf, role.Betrayer:
			n++
		}
	}
	return n
}

func (i *Info) CountAlive() int {
	n := 0
	for _, p := range i.Players {
		if p.IsAlive() {
			n++
		}
	}
	return n
}

func (i *Info) FoxAlive() bool {
	for _, p := range i.Players {
		if p.Name() == role.Fox && p.IsAlive() {
			return true
		}
	}
	return false
}
