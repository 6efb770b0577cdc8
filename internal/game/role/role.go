// Package role implements the polymorphic player behaviors as a closed
// sum type: one struct per role variant plus a single dispatch function
// per hook, rather than a virtual-call hierarchy.
package role

import "github.com/duskwatch/werewolf/internal/game/texttemplate"

// Status mirrors the three-way player lifecycle state.
type Status int

const (
	Alive Status = iota
	Killed
	Protected
)

// Name identifies a role variant. Kept as a string type (rather than an
// int enum) because it is posted verbatim into chat lines and is the key
// space of role-config.json.
type Name string

const (
	Villager  Name = "Villager"
	Werewolf  Name = "Werewolf"
	Superwolf Name = "Superwolf"
	Seer      Name = "Seer"
	Guard     Name = "Guard"
	Lycan     Name = "Lycan"
	Fox       Name = "Fox"
	Witch     Name = "Witch"
	Cupid     Name = "Cupid"
	Betrayer  Name = "Betrayer"
)

// Poster is the capability handle a role uses to speak; it replaces the
// source's Addr<ChatServer> mailbox reference. Anything able to post a
// bot message into a channel satisfies it.
type Poster interface {
	PostBot(channelID int64, msg string, replyTo *int64)
}

// Role is the capability set every variant implements.
type Role interface {
	Name() Name
	PlayerID() int64
	ChannelID() int64
	SetChannelID(int64)
	Status() Status
	SetStatus(Status)

	Power() bool
	Power2() bool
	UsePower()
	UsePower2()
	Mana() bool
	UseMana()
	// ResetNightMana restores the once-per-night action credit; called
	// by the game loop at the start of every night phase.
	ResetNightMana()

	// OnStartGame fires once, on game start, before the first phase.
	OnStartGame(p Poster)
	// OnDay/OnNight apply the role's phase-boundary state mutation only
	// (e.g. Cupid's power expiring unused at night 0); they must never
	// block or call out to a Poster, since Tick runs under Info's lock.
	OnDay(numDay uint16)
	OnNight(numDay uint16)
	OnEndGame()

	// OnSeer reports how this role appears to a Seer inspection:
	// true = appears as wolf, false = appears innocent, nil = not
	// applicable (only meaningful when this role is itself the target).
	OnSeer() *bool

	IsAlive() bool
	// GetKilled applies a kill attempt. forced bypasses Protected (used
	// for the couple-follow-on-death case). Returns true iff the player
	// is now dead.
	GetKilled(forced bool) bool
	GetProtected()
}

// Tick is the single per-phase dispatch point every role passes through:
// a Protected status reverts to Alive before the day/night hook runs.
// Pure state mutation only, so callers can and must run it under Info's
// lock alongside every other read/write of role state.
func Tick(r Role, numDay uint16, isDay bool) {
	if r.Status() == Protected {
		r.SetStatus(Alive)
	}
	if isDay {
		r.OnDay(numDay)
	} else {
		r.OnNight(numDay)
	}
}

// Base provides the shared fields and default hook bodies: no power, no
// mana, silent on every hook. Concrete roles embed Base and override
// only what they need.
type Base struct {
	playerID  int64
	channelID int64
	status    Status
}

func NewBase(playerID int64) Base {
	return Base{playerID: playerID, status: Alive}
}

func (b *Base) PlayerID() int64       { return b.playerID }
func (b *Base) ChannelID() int64      { return b.channelID }
func (b *Base) SetChannelID(id int64) { b.channelID = id }
func (b *Base) Status() Status        { return b.status }
func (b *Base) SetStatus(s Status)    { b.status = s }

func (b *Base) Power() bool          { return false }
func (b *Base) Power2() bool         { return false }
func (b *Base) UsePower()            {}
func (b *Base) UsePower2()           {}
func (b *Base) Mana() bool           { return false }
func (b *Base) UseMana()             {}
func (b *Base) ResetNightMana()      {}

func (b *Base) OnDay(numDay uint16)   {}
func (b *Base) OnNight(numDay uint16) {}
func (b *Base) OnEndGame()            {}
func (b *Base) OnSeer() *bool         { return nil }

func (b *Base) IsAlive() bool { return b.status != Killed }

func (b *Base) GetKilled(forced bool) bool {
	if b.status == Protected && !forced {
		return false
	}
	b.status = Killed
	return true
}

func (b *Base) GetProtected() { b.status = Protected }

// DefaultOnStartGame posts the role-reveal line to the player's personal
// channel. Every concrete role's OnStartGame delegates to this unless it
// needs to say something role-specific in addition.
func DefaultOnStartGame(r Role, p Poster) {
	p.PostBot(r.ChannelID(), texttemplate.OnStartGame(string(r.Name())), nil)
}
