package game

import (
	"context"
	"testing"

	"github.com/duskwatch/werewolf/internal/game/role"
	"github.com/duskwatch/werewolf/internal/id"
	"github.com/duskwatch/werewolf/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingOutbound captures every call the actor makes so tests can
// assert on the sequence of bot lines and events without a real chat hub.
type recordingOutbound struct {
	bot    []string
	events []Event
}

func (r *recordingOutbound) PostBot(channelID int64, msg string, replyTo *int64) {
	r.bot = append(r.bot, msg)
}
func (r *recordingOutbound) PostGameEvent(gameID int64, ev Event) { r.events = append(r.events, ev) }
func (r *recordingOutbound) UpdatePers(userID int64)              {}
func (r *recordingOutbound) StopGame(gameID int64)                {}

// memStore is a no-op store.Store used so actor tests don't need a
// database; every method just succeeds.
type memStore struct{}

func (memStore) CreateUser(context.Context, string, string, string, string) (models.User, error) {
	return models.User{}, nil
}
func (memStore) GetUserByUsername(context.Context, string) (models.User, error) {
	return models.User{}, nil
}
func (memStore) GetUserInfo(context.Context, int64) (models.User, error) { return models.User{}, nil }
func (memStore) GetAllUsers(context.Context) ([]models.User, error)      { return nil, nil }
func (memStore) CreateChannel(context.Context, int64, string) error      { return nil }
func (memStore) GetPermission(context.Context, int64, int64) (models.ChannelPermission, error) {
	return models.ChannelPermission{}, nil
}
func (memStore) GetAllPermissions(context.Context, int64) ([]models.ChannelPermission, error) {
	return nil, nil
}
func (memStore) SetPermission(context.Context, int64, int64, bool, bool) error { return nil }
func (memStore) SendMessage(context.Context, models.ChatLine) error            { return nil }
func (memStore) GetMessages(context.Context, int64, int, int) ([]models.ChatLine, error) {
	return nil, nil
}
func (memStore) GetChannelUsers(context.Context, int64) ([]int64, error) { return nil, nil }
func (memStore) DeleteChannel(context.Context, int64) error              { return nil }
func (memStore) CreateGame(context.Context, int64) error                 { return nil }
func (memStore) GetActiveGame(context.Context) (models.GameRow, bool, error) {
	return models.GameRow{}, false, nil
}
func (memStore) DeleteGame(context.Context, int64) error          { return nil }
func (memStore) AddGameUser(context.Context, int64, int64) error  { return nil }
func (memStore) RemoveGameUser(context.Context, int64, int64) error { return nil }
func (memStore) AddGameChannel(context.Context, int64, int64, string) error { return nil }
func (memStore) GetGameChannels(context.Context, int64) (map[string]int64, error) {
	return nil, nil
}
func (memStore) GetGameUsers(context.Context, int64) ([]int64, error) { return nil, nil }
func (memStore) GetGameFromUser(context.Context, int64) (int64, bool, error) {
	return 0, false, nil
}
func (memStore) GetGameFromChannel(context.Context, int64) (int64, bool, error) {
	return 0, false, nil
}

func newTestActor() (*Actor, *recordingOutbound) {
	out := &recordingOutbound{}
	a := NewActor(1, out, memStore{}, id.NewGenerator(), 999, RoleConfig{})
	return a, out
}

func TestActor_JoinThenLeave(t *testing.T) {
	a, _ := newTestActor()

	a.Join(10, 1, lobbyID)
	a.Info.Lock()
	_, joined := a.Info.Users[10]
	a.Info.Unlock()
	assert.True(t, joined)

	a.Leave(10, 2, lobbyID)
	a.Info.Lock()
	_, stillThere := a.Info.Users[10]
	a.Info.Unlock()
	assert.False(t, stillThere)
}

func TestActor_JoinTwiceIsRejected(t *testing.T) {
	a, out := newTestActor()
	a.Join(10, 1, lobbyID)
	before := len(out.bot)
	a.Join(10, 2, lobbyID)
	assert.Greater(t, len(out.bot), before)
	a.Info.Lock()
	assert.Len(t, a.Info.Users, 1)
	a.Info.Unlock()
}

func TestActor_LeaveAfterStartIsRejected(t *testing.T) {
	a, _ := newTestActor()
	a.Join(1, 0, lobbyID)
	a.Info.Lock()
	a.Info.IsStarted = true
	a.Info.Unlock()

	a.Leave(1, 0, lobbyID)

	a.Info.Lock()
	_, stillIn := a.Info.Users[1]
	a.Info.Unlock()
	assert.True(t, stillIn)
}

func TestActor_KillRejectsVillager(t *testing.T) {
	a, out := newTestActor()
	a.Info.Lock()
	a.Info.Users[1] = struct{}{}
	a.Info.Players[1] = role.NewVillager(1)
	a.Info.IsDay = false
	a.Info.Unlock()

	a.Kill(1, a.FixedChannelID(ChanWerewolf), IndexTarget(1), 0)

	found := false
	for _, m := range out.bot {
		if m == "Only wolves may use this command." {
			found = true
		}
	}
	assert.True(t, found)
}

func TestActor_KillByWolfQueuesVote(t *testing.T) {
	a, _ := newTestActor()
	a.Info.Lock()
	wolf := role.NewWerewolf(1)
	victim := role.NewVillager(2)
	a.Info.Users[1] = struct{}{}
	a.Info.Users[2] = struct{}{}
	a.Info.Players[1] = wolf
	a.Info.Players[2] = victim
	a.Info.IsDay = false
	werewolfChan := a.Info.Channels[FixedChannel(ChanWerewolf)]
	a.Info.Unlock()

	a.Kill(1, werewolfChan, IndexTarget(1), 0)

	a.Info.Lock()
	target, voted := a.Info.WolfKill[1]
	a.Info.Unlock()
	require.True(t, voted)
	assert.Equal(t, int64(2), target)
}

func TestActor_ResolveNightActionsKillsWolfTarget(t *testing.T) {
	a, out := newTestActor()
	a.Info.Lock()
	a.Info.Players[1] = role.NewWerewolf(1)
	victim := role.NewVillager(2)
	a.Info.Players[2] = victim
	a.Info.WolfKill[1] = 2
	gameplay := a.Info.Channels[FixedChannel(ChanGamePlay)]
	a.Info.Unlock()

	a.Info.Lock()
	a.resolveNightActionsLocked(gameplay)
	a.Info.Unlock()

	assert.False(t, victim.IsAlive())
	found := false
	for _, m := range out.bot {
		if m == "No one died last night." {
			found = true
		}
	}
	assert.False(t, found)
}

func TestActor_GuardProtectionBlocksKill(t *testing.T) {
	a, _ := newTestActor()
	a.Info.Lock()
	wolf := role.NewWerewolf(1)
	target := role.NewVillager(2)
	a.Info.Players[1] = wolf
	a.Info.Players[2] = target
	target.GetProtected()
	a.Info.WolfKill[1] = 2
	gameplay := a.Info.Channels[FixedChannel(ChanGamePlay)]
	a.Info.Unlock()

	a.Info.Lock()
	a.resolveNightActionsLocked(gameplay)
	a.Info.Unlock()

	assert.True(t, target.IsAlive())
}
