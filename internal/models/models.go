// Package models holds the persisted data shapes of the system: users,
// channels, permissions and chat lines. Runtime game state (GameInfo,
// roles, votes) lives in package game — it is never persisted beyond
// the game row's is_stopped flag (spec Non-goals).
package models

import "time"

// User is immutable in id; display fields are updated out-of-band.
type User struct {
	ID           int64     `json:"id,string"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserDisplay is the subset of User ever sent over the wire to other users.
type UserDisplay struct {
	ID          int64  `json:"id,string"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	IsOnline    bool    `json:"is_online"`
}

func (u User) Display(online bool) UserDisplay {
	return UserDisplay{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName, IsOnline: online}
}

// Channel ids are created by the game and deleted when the game is torn
// down, except the well-known lobby (id 1), which is seeded externally.
type Channel struct {
	ID   int64  `json:"id,string"`
	Name string `json:"name"`
}

const LobbyChannelID int64 = 1

// ChannelPermission is upserted on the (user, channel) key and evaluated
// on every send.
type ChannelPermission struct {
	UserID    int64 `json:"user_id,string"`
	ChannelID int64 `json:"channel_id,string"`
	Readable  bool  `json:"readable"`
	Sendable  bool  `json:"sendable"`
}

// ChatLine is appended monotonically by id; author is int64 uid (the bot's
// well-known BOT_ID when posted by the game engine). Wire encoding (all
// ids as strings) is the responsibility of package wsproto's DTOs, not
// this internal shape.
type ChatLine struct {
	ID        int64
	AuthorID  int64
	ChannelID int64
	Body      string
	ReplyTo   *int64
	CreatedAt time.Time
}

// GameRow is the only durable trace of a game: enough to resume the lobby
// on restart, never role state.
type GameRow struct {
	ID        int64 `json:"id,string"`
	IsStopped bool  `json:"is_stopped"`
}
