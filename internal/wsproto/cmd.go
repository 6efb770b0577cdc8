// Package wsproto defines the websocket wire protocol: a JSON-encoded
// tagged union of client->server and server->client verbs, with every
// numeric id carried as a string. Each frame is a WSMessage{Type,
// Payload, Timestamp} envelope (see internal/models), tagged the way Go
// code in this stack tags a union: a Type string plus a raw payload.
package wsproto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/duskwatch/werewolf/internal/game"
)

type CmdType string

const (
	TypeSendReq        CmdType = "SendReq"
	TypeSendRes        CmdType = "SendRes"
	TypeBroadCastMsg   CmdType = "BroadCastMsg"
	TypeGetMsg         CmdType = "GetMsg"
	TypeGetMsgRes      CmdType = "GetMsgRes"
	TypeGetUserInfo    CmdType = "GetUserInfo"
	TypeGetUserInfoRes CmdType = "GetUserInfoRes"
	TypeGetUsers       CmdType = "GetUsers"
	TypeGetUsersRes    CmdType = "GetUsersRes"
	TypeGetPers        CmdType = "GetPers"
	TypeGetPersRes     CmdType = "GetPersRes"
	TypeUserOnline     CmdType = "UserOnline"
	TypeUserOffline    CmdType = "UserOffline"
	TypeGameEvent      CmdType = "GameEvent"
	TypeError          CmdType = "Error"
)

// Cmd is the envelope every frame is wrapped in. Payload is deferred
// decoding: callers inspect Type, then unmarshal Payload into the
// matching typed struct below.
type Cmd struct {
	Type      CmdType         `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Decode parses a raw client frame into its envelope. The caller still
// owns dispatching on Type and decoding Payload.
func Decode(raw []byte) (Cmd, error) {
	var c Cmd
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cmd{}, fmt.Errorf("decode cmd: %w", err)
	}
	return c, nil
}

func encode(t CmdType, payload any) Cmd {
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(fmt.Sprintf("wsproto: marshal %s payload: %v", t, err))
	}
	return Cmd{Type: t, Payload: raw, Timestamp: time.Now()}
}

func id(n int64) string { return strconv.FormatInt(n, 10) }

// --- client → server payloads ---

type SendReq struct {
	ChannelID string  `json:"channel_id"`
	Message   string  `json:"message"`
	ReplyTo   *string `json:"reply_to,omitempty"`
}

type GetMsg struct {
	ChannelID string `json:"channel_id"`
	Offset    *int   `json:"offset,omitempty"`
	Limit     *int   `json:"limit,omitempty"`
}

type GetUserInfo struct {
	UserID *string `json:"user_id,omitempty"`
}

type GetPers struct {
	ChannelID *string `json:"channel_id,omitempty"`
}

// Decode* helpers unmarshal a Cmd's Payload into the matching client
// request shape; they return an error if Type doesn't match, so callers
// can dispatch with a single type switch on Cmd.Type and then decode.

func (c Cmd) DecodeSendReq() (SendReq, error)       { var v SendReq; return v, c.decodeInto(TypeSendReq, &v) }
func (c Cmd) DecodeGetMsg() (GetMsg, error)         { var v GetMsg; return v, c.decodeInto(TypeGetMsg, &v) }
func (c Cmd) DecodeGetUserInfo() (GetUserInfo, error) {
	var v GetUserInfo
	return v, c.decodeInto(TypeGetUserInfo, &v)
}
func (c Cmd) DecodeGetPers() (GetPers, error) { var v GetPers; return v, c.decodeInto(TypeGetPers, &v) }

func (c Cmd) decodeInto(want CmdType, v any) error {
	if c.Type != want {
		return fmt.Errorf("wsproto: expected %s, got %s", want, c.Type)
	}
	if len(c.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(c.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", want, err)
	}
	return nil
}

// --- server → client payloads ---

type SendRes struct {
	MessageID string  `json:"message_id"`
	ReplyTo   *string `json:"reply_to,omitempty"`
}

func NewSendRes(messageID int64, replyTo *int64) Cmd {
	return encode(TypeSendRes, SendRes{MessageID: id(messageID), ReplyTo: idPtr(replyTo)})
}

type BroadCastMsg struct {
	UserID    string  `json:"user_id"`
	ChannelID string  `json:"channel_id"`
	MessageID string  `json:"message_id"`
	Message   string  `json:"message"`
	ReplyTo   *string `json:"reply_to,omitempty"`
}

func NewBroadCastMsg(userID, channelID, messageID int64, message string, replyTo *int64) Cmd {
	return encode(TypeBroadCastMsg, BroadCastMsg{
		UserID:    id(userID),
		ChannelID: id(channelID),
		MessageID: id(messageID),
		Message:   message,
		ReplyTo:   idPtr(replyTo),
	})
}

type ChatLine struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	ChannelID string    `json:"channel_id"`
	Body      string    `json:"body"`
	ReplyTo   *string   `json:"reply_to,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type GetMsgRes struct {
	ChannelID string     `json:"channel_id"`
	Messages  []ChatLine `json:"messages"`
}

func NewGetMsgRes(channelID int64, lines []ChatLine) Cmd {
	return encode(TypeGetMsgRes, GetMsgRes{ChannelID: id(channelID), Messages: lines})
}

type UserDisplay struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	IsOnline    bool   `json:"is_online"`
}

func NewGetUserInfoRes(u UserDisplay) Cmd { return encode(TypeGetUserInfoRes, u) }

type GetUsersRes struct {
	Users []UserDisplay `json:"users"`
}

func NewGetUsersRes(users []UserDisplay) Cmd {
	return encode(TypeGetUsersRes, GetUsersRes{Users: users})
}

type Permission struct {
	Readable bool `json:"readable"`
	Sendable bool `json:"sendable"`
}

type GetPersRes struct {
	Permissions map[string]Permission `json:"permissions"`
}

func NewGetPersRes(perms map[string]Permission) Cmd {
	return encode(TypeGetPersRes, GetPersRes{Permissions: perms})
}

func NewUserOnline(u UserDisplay) Cmd  { return encode(TypeUserOnline, u) }
func NewUserOffline(u UserDisplay) Cmd { return encode(TypeUserOffline, u) }

// GameEvent mirrors game.Event over the wire: all ids as strings, only
// the fields relevant to Kind populated.
type GameEvent struct {
	Kind    string  `json:"kind"`
	UserID  *string `json:"user_id,omitempty"`
	VoteFor *string `json:"vote_for,omitempty"`
	NumDay  *uint16 `json:"num_day,omitempty"`
	IsDay   *bool   `json:"is_day,omitempty"`
	Winner  *string `json:"winner,omitempty"`
}

func NewGameEvent(ev game.Event) Cmd {
	out := GameEvent{Kind: string(ev.Kind)}
	switch ev.Kind {
	case game.EventUserJoin, game.EventUserLeave, game.EventUserStart, game.EventUserStop,
		game.EventUserNext, game.EventPlayerDied, game.EventPlayerReborn:
		out.UserID = idPtr(&ev.UserID)
	case game.EventUserVote:
		out.UserID = idPtr(&ev.UserID)
		out.VoteFor = idPtr(&ev.VoteFor)
	case game.EventNewPhase:
		numDay := ev.NumDay
		isDay := ev.IsDay
		out.NumDay = &numDay
		out.IsDay = &isDay
	case game.EventEndGame:
		winner := string(ev.Winner)
		out.Winner = &winner
	}
	return encode(TypeGameEvent, out)
}

func NewError(msg string) Cmd { return encode(TypeError, msg) }

func idPtr(n *int64) *string {
	if n == nil {
		return nil
	}
	s := id(*n)
	return &s
}
