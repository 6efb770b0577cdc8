// Package api is the HTTP surface: user registration/login/listing and
// the websocket upgrade, built on gin request/response structs and
// ShouldBindJSON validation over this module's store.Store port and
// int64 ids.
package api

import (
	"net/http"

	"github.com/duskwatch/werewolf/internal/chat"
	"github.com/duskwatch/werewolf/internal/config"
	"github.com/duskwatch/werewolf/internal/store"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS on the REST routes governs origin; see cmd/server/main.go
	},
}

type Handler struct {
	st  store.Store
	hub *chat.Hub
	jwt config.JWTConfig
}

func NewHandler(st store.Store, hub *chat.Hub, jwt config.JWTConfig) *Handler {
	return &Handler{st: st, hub: hub, jwt: jwt}
}
