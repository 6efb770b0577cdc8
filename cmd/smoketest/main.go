// Command smoketest drives a full game lobby end to end over the real
// HTTP and websocket surfaces: register N players, log them in, join
// everyone into the lobby over their own websocket connection by
// posting bot commands, then start the game and print every frame that
// comes back.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/duskwatch/werewolf/internal/wsproto"
	"github.com/gorilla/websocket"
)

type player struct {
	username string
	password string
	token    string
	conn     *websocket.Conn
}

func main() {
	base := flag.String("base", "http://localhost:8080", "HTTP base URL of the server")
	count := flag.Int("players", 6, "number of players to seat")
	flag.Parse()

	players := make([]*player, *count)
	for i := range players {
		players[i] = &player{
			username: fmt.Sprintf("smoketest-bot-%d", i+1),
			password: "password123",
		}
	}

	log.Printf("registering and logging in %d players against %s", len(players), *base)
	for _, p := range players {
		if err := registerOrLogin(*base, p); err != nil {
			log.Fatalf("auth for %s: %v", p.username, err)
		}
		log.Printf("✓ %s authenticated", p.username)
	}

	wsBase := strings.Replace(*base, "http", "ws", 1)
	for _, p := range players {
		conn, err := dial(wsBase, p.token)
		if err != nil {
			log.Fatalf("connect %s: %v", p.username, err)
		}
		p.conn = conn
		defer conn.Close()
		go logFrames(p.username, conn)
	}

	log.Println("joining the lobby")
	for _, p := range players {
		sendBotCommand(p, "1", "!join")
		time.Sleep(100 * time.Millisecond)
	}

	log.Println("starting the game (requires a supermajority of start votes)")
	for _, p := range players {
		sendBotCommand(p, "1", "!start")
		time.Sleep(100 * time.Millisecond)
	}

	log.Println("smoketest running, watching frames for 30s")
	time.Sleep(30 * time.Second)
}

func dial(wsBase, token string) (*websocket.Conn, error) {
	q := url.Values{"token": {token}}
	conn, _, err := websocket.DefaultDialer.Dial(wsBase+"/ws?"+q.Encode(), nil)
	return conn, err
}

func sendBotCommand(p *player, channelID, body string) {
	req := wsproto.SendReq{ChannelID: channelID, Message: body}
	payload, _ := json.Marshal(req)
	cmd := wsproto.Cmd{Type: wsproto.TypeSendReq, Payload: payload, Timestamp: time.Now()}
	data, _ := json.Marshal(cmd)
	if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("%s: send %q: %v", p.username, body, err)
	}
}

func logFrames(username string, conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd wsproto.Cmd
		if json.Unmarshal(raw, &cmd) == nil {
			log.Printf("%s <- %s %s", username, cmd.Type, string(cmd.Payload))
		}
	}
}

type authResponse struct {
	Token string `json:"token"`
}

func registerOrLogin(base string, p *player) error {
	body := map[string]string{"username": p.username, "password": p.password, "email": p.username + "@smoketest.local"}
	data, _ := json.Marshal(body)

	resp, err := http.Post(base+"/users/", "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusCreated {
		defer resp.Body.Close()
		var auth authResponse
		if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
			return err
		}
		p.token = auth.Token
		return nil
	}
	resp.Body.Close()

	// Already registered; fall through to login.
	resp, err = http.Post(base+"/users/login/", "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		drained, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("login failed (%d): %s", resp.StatusCode, drained)
	}
	var auth authResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return err
	}
	p.token = auth.Token
	return nil
}
