package game

import (
	"context"
	"fmt"

	"github.com/duskwatch/werewolf/internal/id"
	"github.com/duskwatch/werewolf/internal/store"
)

// fixedChannelSpecs lists the three channels every game owns, in the
// order original_source/src/ws/game/game.rs::Game::new creates them.
var fixedChannelSpecs = []struct {
	kind ChannelKind
	name string
}{
	{ChanGamePlay, "gameplay"},
	{ChanWerewolf, "werewolf"},
	{ChanCemetery, "cemetery"},
}

// NewGame creates a brand-new game: persists the game row, creates its
// three fixed channels, and returns an Actor with Info.Channels already
// populated so Join can rely on them. Grounded on Game::new.
func NewGame(ctx context.Context, out Outbound, st store.Store, ids *id.Generator, botID int64, cfg RoleConfig) (*Actor, error) {
	gameID := ids.Next()
	if err := st.CreateGame(ctx, gameID); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}

	a := NewActor(gameID, out, st, ids, botID, cfg)

	a.Info.Lock()
	defer a.Info.Unlock()
	for _, spec := range fixedChannelSpecs {
		channelID := ids.Next()
		if err := st.AddGameChannel(ctx, gameID, channelID, spec.name); err != nil {
			return nil, fmt.Errorf("create %s channel: %w", spec.name, err)
		}
		a.Info.Channels[FixedChannel(spec.kind)] = channelID
	}
	return a, nil
}

// LoadGame reconstructs a previously-active, not-yet-stopped game's
// channel map and participant set from persistence — never role state,
// since none is persisted (spec.md §4.1: "starts it in the lobby").
// ok is false if there's no active game row to resume.
func LoadGame(ctx context.Context, out Outbound, st store.Store, ids *id.Generator, botID int64, cfg RoleConfig) (a *Actor, ok bool, err error) {
	row, found, err := st.GetActiveGame(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("get active game: %w", err)
	}
	if !found {
		return nil, false, nil
	}

	channels, err := st.GetGameChannels(ctx, row.ID)
	if err != nil {
		return nil, false, fmt.Errorf("get game channels: %w", err)
	}
	users, err := st.GetGameUsers(ctx, row.ID)
	if err != nil {
		return nil, false, fmt.Errorf("get game users: %w", err)
	}

	a = NewActor(row.ID, out, st, ids, botID, cfg)
	a.Info.Lock()
	defer a.Info.Unlock()
	for name, channelID := range channels {
		for _, spec := range fixedChannelSpecs {
			if spec.name == name {
				a.Info.Channels[FixedChannel(spec.kind)] = channelID
			}
		}
	}
	for _, uid := range users {
		a.Info.Users[uid] = struct{}{}
	}
	return a, true, nil
}
