// Package botcmd is the bot-prefix command parser: it tokenizes a chat
// line whose body starts with the configured prefix into a verb plus
// targets, the same argument shapes (bare integer = index, "<@digits>"
// = user id) the game actor's Target type already models
// (internal/game/target.go). Channel gating per verb is exposed as Gate
// so the chat hub can enforce it against the actor's channel map, which
// this package has no access to.
package botcmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/duskwatch/werewolf/internal/game"
)

// ErrNotACommand means the body doesn't start with the bot prefix; the
// caller should treat the line as an ordinary chat message, not report
// an error.
var ErrNotACommand = errors.New("botcmd: not a bot command")

// ErrMalformed covers every tokenization failure: unknown verb, wrong
// arity, or an argument that's neither a bare integer nor "<@digits>".
// Callers reply with texttemplate.WrongFormat().
var ErrMalformed = errors.New("botcmd: malformed command")

type Verb string

const (
	VerbJoin   Verb = "join"
	VerbLeave  Verb = "leave"
	VerbStart  Verb = "start"
	VerbStop   Verb = "stop"
	VerbNext   Verb = "next"
	VerbVote   Verb = "vote"
	VerbKill   Verb = "kill"
	VerbGuard  Verb = "guard"
	VerbSeer   Verb = "seer"
	VerbShip   Verb = "ship"
	VerbReborn Verb = "reborn"
	VerbCurse  Verb = "curse"
)

// Gate classifies which channel a verb must be posted in.
type Gate int

const (
	GateLobby Gate = iota
	GateLobbyOrGamePlay
	GateGamePlay
	GateWerewolf
	GatePersonal
)

var gates = map[Verb]Gate{
	VerbJoin:   GateLobby,
	VerbLeave:  GateLobby,
	VerbStart:  GateLobbyOrGamePlay,
	VerbStop:   GateLobbyOrGamePlay,
	VerbNext:   GateGamePlay,
	VerbVote:   GateGamePlay,
	VerbKill:   GateWerewolf,
	VerbGuard:  GatePersonal,
	VerbSeer:   GatePersonal,
	VerbShip:   GatePersonal,
	VerbReborn: GatePersonal,
	VerbCurse:  GatePersonal,
}

// Gate reports the channel-gating class for v; callers should treat an
// unrecognized verb as already rejected by Parse.
func (v Verb) Gate() Gate { return gates[v] }

// arity is 1 for every verb except ship, which pairs two targets.
func (v Verb) arity() int {
	if v == VerbShip {
		return 2
	}
	return 1
}

// noArgVerbs take no target at all.
func (v Verb) noArgVerbs() bool {
	switch v {
	case VerbJoin, VerbLeave, VerbStart, VerbStop, VerbNext:
		return true
	default:
		return false
	}
}

// Command is a fully parsed bot line: the verb plus zero, one, or two
// resolved targets (only Ship uses both).
type Command struct {
	Verb    Verb
	Target  game.Target
	Target2 game.Target
}

// Parse tokenizes body on whitespace: the first token (after stripping
// prefix) is the verb, the rest are arguments. Returns
// ErrNotACommand if body isn't prefixed, ErrMalformed for any other
// parse failure.
func Parse(prefix, body string) (Command, error) {
	if prefix == "" || !strings.HasPrefix(body, prefix) {
		return Command{}, ErrNotACommand
	}
	rest := strings.TrimSpace(strings.TrimPrefix(body, prefix))
	if rest == "" {
		return Command{}, ErrMalformed
	}
	fields := strings.Fields(rest)
	verb := Verb(strings.ToLower(fields[0]))
	if _, known := gates[verb]; !known {
		return Command{}, ErrMalformed
	}
	args := fields[1:]

	if verb.noArgVerbs() {
		if len(args) != 0 {
			return Command{}, ErrMalformed
		}
		return Command{Verb: verb}, nil
	}

	if len(args) != verb.arity() {
		return Command{}, ErrMalformed
	}

	t1, err := parseTarget(args[0])
	if err != nil {
		return Command{}, err
	}
	cmd := Command{Verb: verb, Target: t1}

	if verb.arity() == 2 {
		t2, err := parseTarget(args[1])
		if err != nil {
			return Command{}, err
		}
		cmd.Target2 = t2
	}
	return cmd, nil
}

// parseTarget decodes a single argument: a bare integer is a 1-based
// index, "<@123>" is a user id.
func parseTarget(tok string) (game.Target, error) {
	if strings.HasPrefix(tok, "<@") && strings.HasSuffix(tok, ">") {
		digits := tok[2 : len(tok)-1]
		id, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return game.Target{}, fmt.Errorf("%w: bad mention %q", ErrMalformed, tok)
		}
		return game.IDTarget(id), nil
	}
	idx, err := strconv.Atoi(tok)
	if err != nil {
		return game.Target{}, fmt.Errorf("%w: bad argument %q", ErrMalformed, tok)
	}
	return game.IndexTarget(idx), nil
}
