package game

import "errors"

// Closed error enumeration for the game subsystem. Command handlers
// return one of these; the caller (chat hub / HTTP adapter) switches on
// errors.Is to decide whether to post a templated reply, log and
// continue, or propagate.
var (
	ErrNotInGame         = errors.New("not in game")
	ErrAlreadyInGame     = errors.New("already in game")
	ErrGameFull          = errors.New("game full")
	ErrGameStarted       = errors.New("game already started")
	ErrGameNotStarted    = errors.New("game not started")
	ErrGameEnded         = errors.New("game ended")
	ErrNotEnoughPlayers  = errors.New("not enough players")
	ErrWrongChannel      = errors.New("wrong channel")
	ErrWrongRole         = errors.New("wrong role for this command")
	ErrNotAlive          = errors.New("player not alive")
	ErrTargetNotAlive    = errors.New("target not alive")
	ErrTargetNotDead     = errors.New("target not dead")
	ErrTargetNotInGame   = errors.New("target not in game")
	ErrInvalidIndex      = errors.New("invalid index")
	ErrNoPower           = errors.New("no power available")
	ErrNoMana            = errors.New("no mana available")
	ErrDuplicateTarget   = errors.New("duplicate guard target")
	ErrNotDayPhase       = errors.New("not day phase")
	ErrNotNightPhase     = errors.New("not night phase")
	ErrWrongPhaseForShip = errors.New("ship only available on day 0")
)
