// Package store defines the persistence port: a narrow, synchronous
// CRUD surface the core game/chat code consumes. The concrete
// implementation (package store/pg) is a
// collaborator — the core only ever depends on this interface, never on
// pgx directly, so the in-memory GameInfo/actor/loop code stays testable
// without a database.
package store

import (
	"context"

	"github.com/duskwatch/werewolf/internal/models"
)

type Store interface {
	UserStore
	ChannelStore
	GameStore
}

type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash, displayName, email string) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	GetUserInfo(ctx context.Context, id int64) (models.User, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
}

type ChannelStore interface {
	CreateChannel(ctx context.Context, id int64, name string) error
	GetPermission(ctx context.Context, userID, channelID int64) (models.ChannelPermission, error)
	GetAllPermissions(ctx context.Context, userID int64) ([]models.ChannelPermission, error)
	// SetPermission upserts on the (user, channel) key.
	SetPermission(ctx context.Context, userID, channelID int64, readable, sendable bool) error
	SendMessage(ctx context.Context, line models.ChatLine) error
	GetMessages(ctx context.Context, channelID int64, offset, limit int) ([]models.ChatLine, error)
	GetChannelUsers(ctx context.Context, channelID int64) ([]int64, error)
	DeleteChannel(ctx context.Context, id int64) error
}

type GameStore interface {
	CreateGame(ctx context.Context, id int64) error
	// GetActiveGame returns the one non-stopped game row, if any.
	GetActiveGame(ctx context.Context) (models.GameRow, bool, error)
	DeleteGame(ctx context.Context, id int64) error
	AddGameUser(ctx context.Context, gameID, userID int64) error
	RemoveGameUser(ctx context.Context, gameID, userID int64) error
	AddGameChannel(ctx context.Context, gameID, channelID int64, name string) error
	GetGameChannels(ctx context.Context, gameID int64) (map[string]int64, error)
	GetGameUsers(ctx context.Context, gameID int64) ([]int64, error)
	GetGameFromUser(ctx context.Context, userID int64) (int64, bool, error)
	GetGameFromChannel(ctx context.Context, channelID int64) (int64, bool, error)
}
