// Package chat implements the chat hub: the single logical actor owning
// websocket sessions, per-user session sets, the set of live game
// actors, channel permission evaluation on send, and broadcast fan-out.
//
// Cross-process fan-out rides on redis/go-redis/v9 pub-sub: every
// outbound frame is published to one channel and every hub process,
// including the publisher, delivers it to whichever local sessions it
// owns. Presence counts live in redis too, so "does this user have any
// open session anywhere" is answered correctly across a horizontally
// scaled hub tier, not just this process.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/duskwatch/werewolf/internal/botcmd"
	"github.com/duskwatch/werewolf/internal/game"
	"github.com/duskwatch/werewolf/internal/game/texttemplate"
	"github.com/duskwatch/werewolf/internal/id"
	"github.com/duskwatch/werewolf/internal/models"
	"github.com/duskwatch/werewolf/internal/store"
	"github.com/duskwatch/werewolf/internal/wsproto"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

const broadcastChannel = "werewolf:chat:fanout"

// lobbyChannelID is the well-known pre-existing channel join/leave/start/
// stop commands are gated on (spec.md §3: "channel id 1 denotes a
// well-known pre-existing 'lobby'"). Seeded externally, not by this code.
const lobbyChannelID = models.LobbyChannelID

// Hub is the chat hub. It implements game.Outbound so every game actor
// can be handed the hub directly as its speaking capability.
type Hub struct {
	mu            sync.Mutex
	sessionsByID  map[int64]*Session
	usersSessions map[int64]map[int64]struct{} // user -> set of ws ids
	games         map[int64]*game.Actor
	currentGame   *game.Actor

	st        store.Store
	ids       *id.Generator
	botID     int64
	botPrefix string
	cfg       game.RoleConfig
	rdb       *redis.Client
}

func NewHub(st store.Store, ids *id.Generator, botID int64, botPrefix string, cfg game.RoleConfig, rdb *redis.Client) *Hub {
	return &Hub{
		sessionsByID:  make(map[int64]*Session),
		usersSessions: make(map[int64]map[int64]struct{}),
		games:         make(map[int64]*game.Actor),
		st:            st,
		ids:           ids,
		botID:         botID,
		botPrefix:     botPrefix,
		cfg:           cfg,
		rdb:           rdb,
	}
}

// Bootstrap resumes any non-stopped game row left over from a previous
// run: reconstructed in the lobby, never started, with no role state.
func (h *Hub) Bootstrap(ctx context.Context) {
	a, ok, err := game.LoadGame(ctx, h, h.st, h.ids, h.botID, h.cfg)
	if err != nil {
		log.Printf("chat: load active game: %v", err)
		return
	}
	if !ok {
		return
	}
	h.mu.Lock()
	h.games[a.ID] = a
	if !a.Info.IsStarted {
		h.currentGame = a
	}
	h.mu.Unlock()
}

// Run subscribes to the cross-process fanout channel and delivers
// frames to whichever sessions this process owns, until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	sub := h.rdb.Subscribe(ctx, broadcastChannel)
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Println("chat hub shutting down")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.deliverLocal(msg.Payload)
		}
	}
}

type fanoutMessage struct {
	TargetUserIDs []int64         `json:"target_user_ids"`
	ExcludeUserID *int64          `json:"exclude_user_id,omitempty"`
	Cmd           json.RawMessage `json:"cmd"`
}

func (h *Hub) deliverLocal(payload string) {
	var fm fanoutMessage
	if err := json.Unmarshal([]byte(payload), &fm); err != nil {
		log.Printf("chat: bad fanout payload: %v", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, uid := range fm.TargetUserIDs {
		if fm.ExcludeUserID != nil && uid == *fm.ExcludeUserID {
			continue
		}
		for wsID := range h.usersSessions[uid] {
			s, ok := h.sessionsByID[wsID]
			if !ok {
				continue
			}
			select {
			case s.send <- fm.Cmd:
			default:
				log.Printf("chat: session %d send buffer full, dropping frame", wsID)
			}
		}
	}
}

func (h *Hub) sendToUsers(ctx context.Context, userIDs []int64, cmd wsproto.Cmd) {
	if len(userIDs) == 0 {
		return
	}
	raw, err := json.Marshal(cmd)
	if err != nil {
		log.Printf("chat: marshal cmd %s: %v", cmd.Type, err)
		return
	}
	data, err := json.Marshal(fanoutMessage{TargetUserIDs: userIDs, Cmd: raw})
	if err != nil {
		log.Printf("chat: marshal fanout envelope: %v", err)
		return
	}
	if err := h.rdb.Publish(ctx, broadcastChannel, data).Err(); err != nil {
		log.Printf("chat: publish fanout: %v", err)
	}
}

func (h *Hub) replyError(ctx context.Context, s *Session, msg string) {
	h.sendToUsers(ctx, []int64{s.UserID}, wsproto.NewError(msg))
}

// --- presence ---

func presenceKey(userID int64) string { return fmt.Sprintf("werewolf:presence:%d", userID) }

// Connect mints a ws id, registers the session, and — if this is the
// user's first session anywhere in the fleet — fans out UserOnline to
// everyone else.
func (h *Hub) Connect(ctx context.Context, userID int64, conn *websocket.Conn) *Session {
	wsID := h.ids.Next()
	s := &Session{hub: h, conn: conn, send: make(chan []byte, 256), ID: wsID, UserID: userID}

	h.mu.Lock()
	h.sessionsByID[wsID] = s
	if h.usersSessions[userID] == nil {
		h.usersSessions[userID] = make(map[int64]struct{})
	}
	h.usersSessions[userID][wsID] = struct{}{}
	h.mu.Unlock()

	n, err := h.rdb.Incr(ctx, presenceKey(userID)).Result()
	if err != nil {
		log.Printf("chat: presence incr for %d: %v", userID, err)
	} else if n == 1 {
		h.broadcastPresence(ctx, userID, true)
	}
	return s
}

// Disconnect reverses Connect: drops the session, and if the user's
// fleet-wide session count reaches zero, fans out UserOffline.
func (h *Hub) Disconnect(s *Session) {
	ctx := context.Background()
	h.mu.Lock()
	delete(h.sessionsByID, s.ID)
	if set := h.usersSessions[s.UserID]; set != nil {
		delete(set, s.ID)
		if len(set) == 0 {
			delete(h.usersSessions, s.UserID)
		}
	}
	h.mu.Unlock()

	n, err := h.rdb.Decr(ctx, presenceKey(s.UserID)).Result()
	if err != nil {
		log.Printf("chat: presence decr for %d: %v", s.UserID, err)
		return
	}
	if n <= 0 {
		h.rdb.Del(ctx, presenceKey(s.UserID))
		h.broadcastPresence(ctx, s.UserID, false)
	}
}

func (h *Hub) broadcastPresence(ctx context.Context, userID int64, online bool) {
	u, err := h.st.GetUserInfo(ctx, userID)
	if err != nil {
		log.Printf("chat: get user info for presence %d: %v", userID, err)
		return
	}
	all, err := h.st.GetAllUsers(ctx)
	if err != nil {
		log.Printf("chat: get all users for presence fanout: %v", err)
		return
	}
	targets := make([]int64, 0, len(all))
	for _, other := range all {
		if other.ID != userID {
			targets = append(targets, other.ID)
		}
	}
	disp := toWireUserDisplay(u, online)
	if online {
		h.sendToUsers(ctx, targets, wsproto.NewUserOnline(disp))
	} else {
		h.sendToUsers(ctx, targets, wsproto.NewUserOffline(disp))
	}
}

func (h *Hub) isOnline(ctx context.Context, userID int64) bool {
	n, err := h.rdb.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// --- inbound client frames ---

// ClientMsg parses a raw frame and dispatches it. Unknown tags get an
// Error reply, never a panic or dropped connection.
func (h *Hub) ClientMsg(s *Session, raw []byte) {
	ctx := context.Background()
	cmd, err := wsproto.Decode(raw)
	if err != nil {
		h.replyError(ctx, s, "malformed command")
		return
	}

	switch cmd.Type {
	case wsproto.TypeSendReq:
		req, err := cmd.DecodeSendReq()
		if err != nil {
			h.replyError(ctx, s, "malformed SendReq")
			return
		}
		h.handleSendReq(ctx, s, req)
	case wsproto.TypeGetMsg:
		req, err := cmd.DecodeGetMsg()
		if err != nil {
			h.replyError(ctx, s, "malformed GetMsg")
			return
		}
		h.handleGetMsg(ctx, s, req)
	case wsproto.TypeGetUserInfo:
		req, err := cmd.DecodeGetUserInfo()
		if err != nil {
			h.replyError(ctx, s, "malformed GetUserInfo")
			return
		}
		h.handleGetUserInfo(ctx, s, req)
	case wsproto.TypeGetUsers:
		h.handleGetUsers(ctx, s)
	case wsproto.TypeGetPers:
		req, err := cmd.DecodeGetPers()
		if err != nil {
			h.replyError(ctx, s, "malformed GetPers")
			return
		}
		h.handleGetPers(ctx, s, req)
	default:
		h.replyError(ctx, s, fmt.Sprintf("unknown command type %q", cmd.Type))
	}
}

func (h *Hub) handleSendReq(ctx context.Context, s *Session, req wsproto.SendReq) {
	channelID, err := strconv.ParseInt(req.ChannelID, 10, 64)
	if err != nil {
		h.replyError(ctx, s, "bad channel id")
		return
	}

	perm, err := h.st.GetPermission(ctx, s.UserID, channelID)
	if err != nil {
		h.replyError(ctx, s, "permission check failed")
		return
	}
	if !perm.Sendable {
		h.replyError(ctx, s, "don't have permission to send in this channel")
		return
	}

	if h.tryBotCommand(s.UserID, channelID, req.Message) {
		return
	}

	var replyTo *int64
	if req.ReplyTo != nil {
		if rid, err := strconv.ParseInt(*req.ReplyTo, 10, 64); err == nil {
			replyTo = &rid
		}
	}
	line := models.ChatLine{
		ID:        h.ids.Next(),
		AuthorID:  s.UserID,
		ChannelID: channelID,
		Body:      req.Message,
		ReplyTo:   replyTo,
		CreatedAt: time.Now(),
	}
	if err := h.st.SendMessage(ctx, line); err != nil {
		log.Printf("chat: persist message: %v", err)
	}
	h.sendToUsers(ctx, []int64{s.UserID}, wsproto.NewSendRes(line.ID, replyTo))
	h.fanoutChatLine(ctx, line)
}

// tryBotCommand parses body as a bot-prefixed command and, if it is
// one, dispatches it to the right game actor and reports true. A
// malformed command still reports true (it was consumed, just
// rejected) so the caller never also persists it as a chat line.
func (h *Hub) tryBotCommand(userID, channelID int64, body string) bool {
	parsed, err := botcmd.Parse(h.botPrefix, body)
	if errors.Is(err, botcmd.ErrNotACommand) {
		return false
	}
	if err != nil {
		h.PostBot(channelID, texttemplate.WrongFormat(), nil)
		return true
	}
	if parsed.Verb.Gate() == botcmd.GateLobby && channelID != lobbyChannelID {
		h.PostBot(channelID, texttemplate.MustInChannel(lobbyChannelID), nil)
		return true
	}

	a := h.actorForCommand(userID, parsed.Verb)
	if a == nil {
		h.PostBot(channelID, texttemplate.NotInGame(), nil)
		return true
	}

	if want, ok := gateChannel(a, parsed.Verb.Gate(), userID, channelID); !ok {
		h.PostBot(channelID, texttemplate.MustInChannel(want), nil)
		return true
	}

	msgID := h.ids.Next()
	switch parsed.Verb {
	case botcmd.VerbJoin:
		a.Join(userID, msgID, channelID)
	case botcmd.VerbLeave:
		a.Leave(userID, msgID, channelID)
	case botcmd.VerbStart:
		a.Start(userID, msgID, channelID, h.onGameStarted)
	case botcmd.VerbStop:
		a.Stop(userID, msgID, channelID)
	case botcmd.VerbNext:
		a.Next(userID, msgID, channelID)
	case botcmd.VerbVote:
		a.Vote(userID, channelID, parsed.Target, msgID)
	case botcmd.VerbKill:
		a.Kill(userID, channelID, parsed.Target, msgID)
	case botcmd.VerbGuard:
		a.Guard(userID, channelID, parsed.Target, msgID)
	case botcmd.VerbSeer:
		a.Seer(userID, channelID, parsed.Target, msgID)
	case botcmd.VerbShip:
		a.Ship(userID, channelID, parsed.Target, parsed.Target2, msgID)
	case botcmd.VerbReborn:
		a.Reborn(userID, channelID, parsed.Target, msgID)
	case botcmd.VerbCurse:
		a.Curse(userID, channelID, parsed.Target, msgID)
	}
	return true
}

// gateChannel enforces a verb's Gate (botcmd.Verb.Gate) against the
// actor's channel map, which botcmd has no access to. It reports the
// channel the command should have been sent in and whether channelID
// already satisfies the gate.
func gateChannel(a *game.Actor, gate botcmd.Gate, userID, channelID int64) (int64, bool) {
	switch gate {
	case botcmd.GateLobby:
		return lobbyChannelID, channelID == lobbyChannelID
	case botcmd.GateLobbyOrGamePlay:
		gameplay := a.GameplayChannel()
		return lobbyChannelID, channelID == lobbyChannelID || channelID == gameplay
	case botcmd.GateGamePlay:
		gameplay := a.GameplayChannel()
		return gameplay, channelID == gameplay
	case botcmd.GateWerewolf:
		werewolf := a.FixedChannelID(game.ChanWerewolf)
		return werewolf, channelID == werewolf
	case botcmd.GatePersonal:
		personal := a.PersonalChannel(userID)
		return personal, channelID == personal
	default:
		return channelID, true
	}
}

// actorForCommand resolves which game a verb applies to. join creates a
// fresh game when there's no current (accepting-joins) one; every other
// verb targets whichever game the user already belongs to. At most one
// game is ever actually running at a time, so a linear scan over live
// actors is cheap.
func (h *Hub) actorForCommand(userID int64, verb botcmd.Verb) *game.Actor {
	h.mu.Lock()
	defer h.mu.Unlock()

	if verb == botcmd.VerbJoin {
		if h.currentGame == nil {
			a, err := game.NewGame(context.Background(), h, h.st, h.ids, h.botID, h.cfg)
			if err != nil {
				log.Printf("chat: create game: %v", err)
				return nil
			}
			h.games[a.ID] = a
			h.currentGame = a
		}
		return h.currentGame
	}

	for _, a := range h.games {
		a.Info.Lock()
		_, in := a.Info.Users[userID]
		a.Info.Unlock()
		if in {
			return a
		}
	}
	return nil
}

// onGameStarted is handed to Actor.Start as its onStarted callback: it
// clears current_game so the next join creates a new game, and spawns
// the loop.
func (h *Hub) onGameStarted(a *game.Actor) {
	h.mu.Lock()
	if h.currentGame != nil && h.currentGame.ID == a.ID {
		h.currentGame = nil
	}
	h.mu.Unlock()
	go game.Run(context.Background(), a)
}

func (h *Hub) handleGetMsg(ctx context.Context, s *Session, req wsproto.GetMsg) {
	channelID, err := strconv.ParseInt(req.ChannelID, 10, 64)
	if err != nil {
		h.replyError(ctx, s, "bad channel id")
		return
	}
	perm, err := h.st.GetPermission(ctx, s.UserID, channelID)
	if err != nil || !perm.Readable {
		h.replyError(ctx, s, "don't have permission to read this channel")
		return
	}

	offset, limit := 0, 50
	if req.Offset != nil {
		offset = *req.Offset
	}
	if req.Limit != nil {
		limit = *req.Limit
	}
	lines, err := h.st.GetMessages(ctx, channelID, offset, limit)
	if err != nil {
		h.replyError(ctx, s, "failed to load messages")
		return
	}
	out := make([]wsproto.ChatLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, toWireChatLine(l))
	}
	h.sendToUsers(ctx, []int64{s.UserID}, wsproto.NewGetMsgRes(channelID, out))
}

func (h *Hub) handleGetUserInfo(ctx context.Context, s *Session, req wsproto.GetUserInfo) {
	targetID := s.UserID
	if req.UserID != nil {
		if parsed, err := strconv.ParseInt(*req.UserID, 10, 64); err == nil {
			targetID = parsed
		}
	}
	u, err := h.st.GetUserInfo(ctx, targetID)
	if err != nil {
		h.replyError(ctx, s, "user not found")
		return
	}
	h.sendToUsers(ctx, []int64{s.UserID}, wsproto.NewGetUserInfoRes(toWireUserDisplay(u, h.isOnline(ctx, targetID))))
}

func (h *Hub) handleGetUsers(ctx context.Context, s *Session) {
	users, err := h.st.GetAllUsers(ctx)
	if err != nil {
		h.replyError(ctx, s, "failed to load users")
		return
	}
	out := make([]wsproto.UserDisplay, 0, len(users))
	for _, u := range users {
		out = append(out, toWireUserDisplay(u, h.isOnline(ctx, u.ID)))
	}
	h.sendToUsers(ctx, []int64{s.UserID}, wsproto.NewGetUsersRes(out))
}

func (h *Hub) handleGetPers(ctx context.Context, s *Session, req wsproto.GetPers) {
	var perms []models.ChannelPermission
	if req.ChannelID != nil {
		channelID, err := strconv.ParseInt(*req.ChannelID, 10, 64)
		if err != nil {
			h.replyError(ctx, s, "bad channel id")
			return
		}
		p, err := h.st.GetPermission(ctx, s.UserID, channelID)
		if err != nil {
			h.replyError(ctx, s, "failed to load permission")
			return
		}
		perms = []models.ChannelPermission{p}
	} else {
		var err error
		perms, err = h.st.GetAllPermissions(ctx, s.UserID)
		if err != nil {
			h.replyError(ctx, s, "failed to load permissions")
			return
		}
	}
	m := make(map[string]wsproto.Permission, len(perms))
	for _, p := range perms {
		m[strconv.FormatInt(p.ChannelID, 10)] = wsproto.Permission{Readable: p.Readable, Sendable: p.Sendable}
	}
	h.sendToUsers(ctx, []int64{s.UserID}, wsproto.NewGetPersRes(m))
}

func (h *Hub) fanoutChatLine(ctx context.Context, line models.ChatLine) {
	readers, err := h.st.GetChannelUsers(ctx, line.ChannelID)
	if err != nil {
		log.Printf("chat: get channel users for fanout: %v", err)
		return
	}
	h.sendToUsers(ctx, readers, wsproto.NewBroadCastMsg(line.AuthorID, line.ChannelID, line.ID, line.Body, line.ReplyTo))
}

func toWireChatLine(l models.ChatLine) wsproto.ChatLine {
	var replyTo *string
	if l.ReplyTo != nil {
		s := strconv.FormatInt(*l.ReplyTo, 10)
		replyTo = &s
	}
	return wsproto.ChatLine{
		ID:        strconv.FormatInt(l.ID, 10),
		AuthorID:  strconv.FormatInt(l.AuthorID, 10),
		ChannelID: strconv.FormatInt(l.ChannelID, 10),
		Body:      l.Body,
		ReplyTo:   replyTo,
		CreatedAt: l.CreatedAt,
	}
}

func toWireUserDisplay(u models.User, online bool) wsproto.UserDisplay {
	d := u.Display(online)
	return wsproto.UserDisplay{
		ID:          strconv.FormatInt(d.ID, 10),
		Username:    d.Username,
		DisplayName: d.DisplayName,
		IsOnline:    d.IsOnline,
	}
}

// --- game.Outbound ---

func (h *Hub) PostBot(channelID int64, msg string, replyTo *int64) {
	ctx := context.Background()
	line := models.ChatLine{
		ID:        h.ids.Next(),
		AuthorID:  h.botID,
		ChannelID: channelID,
		Body:      msg,
		ReplyTo:   replyTo,
		CreatedAt: time.Now(),
	}
	if err := h.st.SendMessage(ctx, line); err != nil {
		log.Printf("chat: persist bot message: %v", err)
	}
	h.fanoutChatLine(ctx, line)
}

func (h *Hub) PostGameEvent(gameID int64, ev game.Event) {
	ctx := context.Background()
	h.mu.Lock()
	a := h.games[gameID]
	h.mu.Unlock()
	if a == nil {
		return
	}
	a.Info.Lock()
	users := make([]int64, 0, len(a.Info.Users))
	for uid := range a.Info.Users {
		users = append(users, uid)
	}
	a.Info.Unlock()

	h.sendToUsers(ctx, users, wsproto.NewGameEvent(ev))
	if ev.Kind == game.EventEndGame {
		for _, uid := range users {
			h.pushUserInfo(ctx, uid)
		}
	}
}

func (h *Hub) pushUserInfo(ctx context.Context, userID int64) {
	u, err := h.st.GetUserInfo(ctx, userID)
	if err != nil {
		log.Printf("chat: refresh user info for %d: %v", userID, err)
		return
	}
	h.sendToUsers(ctx, []int64{userID}, wsproto.NewGetUserInfoRes(toWireUserDisplay(u, h.isOnline(ctx, userID))))
}

func (h *Hub) UpdatePers(userID int64) {
	ctx := context.Background()
	perms, err := h.st.GetAllPermissions(ctx, userID)
	if err != nil {
		log.Printf("chat: load permissions for %d: %v", userID, err)
		return
	}
	m := make(map[string]wsproto.Permission, len(perms))
	for _, p := range perms {
		m[strconv.FormatInt(p.ChannelID, 10)] = wsproto.Permission{Readable: p.Readable, Sendable: p.Sendable}
	}
	h.sendToUsers(ctx, []int64{userID}, wsproto.NewGetPersRes(m))
}

func (h *Hub) StopGame(gameID int64) {
	h.mu.Lock()
	delete(h.games, gameID)
	if h.currentGame != nil && h.currentGame.ID == gameID {
		h.currentGame = nil
	}
	h.mu.Unlock()
}
