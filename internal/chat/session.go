package chat

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// Heartbeat timing: a 5-second ping interval and a 10-second liveness
// window. A stalled game actor waiting on phase input must notice a
// dropped connection quickly, not after a minute.
const (
	writeWait      = 5 * time.Second
	pongWait       = 10 * time.Second
	pingPeriod     = (pongWait * 4) / 5
	maxMessageSize = 8192
)

// Session is one live websocket connection. Routing is by user id
// alone, resolved through Hub.usersSessions, with no room field.
type Session struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	ID     int64
	UserID int64
}

// ReadPump pumps frames from the connection into the hub until the
// connection closes, then deregisters itself.
func (s *Session) ReadPump() {
	defer func() {
		s.hub.Disconnect(s)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("chat: session %d read error: %v", s.ID, err)
			}
			return
		}
		s.hub.ClientMsg(s, raw)
	}
}

// WritePump drains the session's outbound buffer to the connection and
// keeps it alive with pings on pingPeriod.
func (s *Session) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
