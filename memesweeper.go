// Meme Game
//
// Each session owns one meme grid. Whoever opens the session picks Shrek or
// Sigma, then reveals cells until they hit the other meme. In versus mode two
// players share the screen: player one picks, player two gets the other meme,
// and the first to reveal the opponent's meme hands them the round.
//
// Features:
// - WebSockets per session: /{mode}/:gameid and /{mode}/:gameid/ws
// - Every tab connected to a session sees the same board
// - All engine commands for a session run on the hub goroutine, one at a time
// - Hidden cells are never sent to the browser
// - Sessions auto-reaped after configurable idle timeout
// - Random 8-char session IDs via crypto/rand, with server-side collision check
// - In-browser QR button to open the current session elsewhere, backed by go-qrcode

package main

import (
	"crypto/rand"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/Seednode/memesweeper/games"
)

const (
	gameIDLength   = 8
	maxMessageSize = 1024

	// Hijacked connections inherit the server's read deadline, so
	// sockets stay open only as long as pongs keep arriving.
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Messages coming from clients
type ClientMessage struct {
	Type     string `json:"type"`               // "choose", "reveal", "reset"
	Category string `json:"category,omitempty"` // choose
	Index    *int   `json:"index,omitempty"`    // reveal
}

// SessionInfoMessage is sent immediately on connect so the client can lay
// out the grid and knows which images to show.
type SessionInfoMessage struct {
	Type    string            `json:"type"` // "session_info"
	GameID  string            `json:"game_id"`
	Mode    games.Mode        `json:"mode"`
	Columns int               `json:"columns"`
	Cells   int               `json:"cells"`
	Images  map[string]string `json:"images"`
}

// StateMessage carries the public view of the engine after every change.
type StateMessage struct {
	Type  string      `json:"type"` // "state"
	State games.State `json:"state"`
}

type Client struct {
	id   string
	conn *websocket.Conn
	send chan any
}

type Hub struct {
	id     string
	engine *games.Engine

	// only touched by run
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	commands chan ClientMessage
	done     chan struct{}
	stopOnce sync.Once

	mu         sync.RWMutex
	createdAt  time.Time
	lastActive time.Time
}

func newHub(gameID string, mode games.Mode, opts ...games.Option) *Hub {
	now := time.Now()
	return &Hub{
		id:         gameID,
		engine:     games.NewEngine(mode, opts...),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		commands:   make(chan ClientMessage),
		done:       make(chan struct{}),
		createdAt:  now,
		lastActive: now,
	}
}

func (h *Hub) run(cfg *Config) {
	for {
		select {
		case <-h.done:
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return

		case c := <-h.register:
			h.touch()

			h.clients[c] = true
			logf(cfg, "GAMES: Client %s joined %s/%s", c.id, h.engine.Mode(), h.id)

			h.send(c, SessionInfoMessage{
				Type:    "session_info",
				GameID:  h.id,
				Mode:    h.engine.Mode(),
				Columns: games.Columns,
				Cells:   games.GridSize,
				Images: map[string]string{
					games.Shrek.String(): cfg.shrekImage,
					games.Sigma.String(): cfg.sigmaImage,
				},
			})
			h.send(c, h.stateMessage())

		case c := <-h.unreg:
			h.touch()

			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				logf(cfg, "GAMES: Client %s left %s/%s", c.id, h.engine.Mode(), h.id)
			}

		case msg := <-h.commands:
			h.touch()

			if h.apply(cfg, msg) {
				h.broadcast(h.stateMessage())
			}
		}
	}
}

// apply runs one client command against the engine and reports whether the
// engine changed. Unknown or malformed commands are ignored.
func (h *Hub) apply(cfg *Config, msg ClientMessage) bool {
	switch msg.Type {
	case "choose":
		c, err := games.ParseCategory(msg.Category)
		if err != nil {
			return false
		}
		if !h.engine.StartRound(c) {
			return false
		}
		logf(cfg, "GAMES: Round started in %s/%s with %s", h.engine.Mode(), h.id, c)
		return true

	case "reveal":
		if msg.Index == nil || !h.engine.Reveal(*msg.Index) {
			return false
		}
		if h.engine.Phase() == games.Terminal {
			switch h.engine.Outcome() {
			case games.Won:
				logf(cfg, "GAMES: Round in %s/%s won by %s", h.engine.Mode(), h.id, h.engine.Winner())
			default:
				logf(cfg, "GAMES: Round in %s/%s ended: %s", h.engine.Mode(), h.id, h.engine.Outcome())
			}
		}
		return true

	case "reset":
		if h.engine.Phase() == games.AwaitingChoice {
			return false
		}
		h.engine.ResetToSelection()
		return true

	default:
		return false
	}
}

func (h *Hub) stateMessage() StateMessage {
	return StateMessage{
		Type:  "state",
		State: h.engine.State(),
	}
}

// send queues msg for c, dropping the client if its buffer is full.
func (h *Hub) send(c *Client, msg any) {
	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) broadcast(msg any) {
	for c := range h.clients {
		h.send(c, msg)
	}
}

func (h *Hub) touch() {
	h.mu.Lock()
	h.lastActive = time.Now()
	h.mu.Unlock()
}

func (h *Hub) idleSince() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.lastActive
}

// stop ends run, which disconnects every client of this hub.
func (h *Hub) stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// GameManager holds a set of hubs keyed by game ID, so each $mode/$gameid
// is its own isolated session.
type GameManager struct {
	cfg  *Config
	mode games.Mode
	opts []games.Option

	mu          sync.Mutex
	hubs        map[string]*Hub
	idleTimeout time.Duration
	done        chan struct{}
	closeOnce   sync.Once
}

func newGameManager(cfg *Config, mode games.Mode, opts ...games.Option) *GameManager {
	gm := &GameManager{
		cfg:         cfg,
		mode:        mode,
		opts:        opts,
		hubs:        make(map[string]*Hub),
		idleTimeout: cfg.sessionTimeout,
		done:        make(chan struct{}),
	}
	if gm.idleTimeout > 0 {
		go gm.reaperLoop()
	}
	return gm
}

func (gm *GameManager) getHub(gameID string) *Hub {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[gameID]; ok {
		return hub
	}

	hub := newHub(gameID, gm.mode, gm.opts...)
	gm.hubs[gameID] = hub
	go hub.run(gm.cfg)
	return hub
}

func (gm *GameManager) sessions() int {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	return len(gm.hubs)
}

// newGameID generates a crypto-random game ID and ensures it doesn't
// collide with existing games.
func (gm *GameManager) newGameID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for {
		buf := make([]byte, gameIDLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		for i := range buf {
			buf[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(buf)

		gm.mu.Lock()
		_, exists := gm.hubs[id]
		gm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reaperLoop periodically removes hubs that have been idle longer than idleTimeout.
func (gm *GameManager) reaperLoop() {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-gm.done:
			return
		case <-ticker.C:
		}

		cutoff := time.Now().Add(-gm.idleTimeout)

		gm.mu.Lock()
		for id, hub := range gm.hubs {
			if hub.idleSince().Before(cutoff) {
				delete(gm.hubs, id)
				hub.stop()
				logf(gm.cfg, "GAMES: Reaped idle game %s/%s after %s", gm.mode, id, time.Since(hub.createdAt).Round(time.Second))
			}
		}
		gm.mu.Unlock()
	}
}

// closeAll stops the reaper and every hub (used on shutdown).
func (gm *GameManager) closeAll() {
	gm.closeOnce.Do(func() {
		close(gm.done)
	})

	gm.mu.Lock()
	defer gm.mu.Unlock()

	for id, hub := range gm.hubs {
		delete(gm.hubs, id)
		hub.stop()
	}
}

func validGameID(id string) bool {
	if id == "" || len(id) > 32 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// WebSocket handler that picks the hub based on :gameid
func serveWSForManager(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if !validGameID(gameID) {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}

		hub := gm.getHub(gameID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}
		conn.SetReadLimit(maxMessageSize)

		client := &Client{
			id:   uuid.NewString(),
			conn: conn,
			send: make(chan any, 8),
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			_ = conn.Close()
			return
		}

		logf(cfg, "SERVE: WebSocket for %s/%s to %s", gm.mode, gameID, realIP(r))

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "choose", "reveal", "reset":
			select {
			case h.commands <- msg:
			case <-h.done:
				return
			}
		default:
			// ignore unknown types
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))

				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(timeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// QR handler: generates a PNG QR code for the current game URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID := ps.ByName("gameid")
	if !validGameID(gameID) {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}

	// We are at /.../:gameid/qr; strip trailing "/qr" to get the game URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	_, _ = w.Write(png)
}

var gamePage = template.Must(template.ParseFS(assets, "assets/memesweeper/index.html"))

type gamePageData struct {
	Prefix string
	Mode   string
	GameID string
}

func serveGamePage(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if !validGameID(gameID) {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(cfg, w)

		err := gamePage.Execute(w, gamePageData{
			Prefix: cfg.prefix,
			Mode:   gm.mode.String(),
			GameID: gameID,
		})
		if err != nil {
			logf(cfg, "ERROR: Rendering %s/%s: %v", gm.mode, gameID, err)
		}
	}
}

// redirectNewGame handles GET /$mode by generating a new random game ID
// (with server-side collision detection) and redirecting to /$mode/:gameid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID := gm.newGameID()
		logf(cfg, "GAMES: Created game %s/%s", path, gameID)
		http.Redirect(w, r, path+"/"+gameID, http.StatusTemporaryRedirect)
	}
}

// registerMemeGame sets up routes so that:
//   - $mode                  → redirects to new random game (8-char ID)
//   - $mode/:gameid          → HTML client
//   - $mode/:gameid/ws       → WebSocket for that game
//   - $mode/:gameid/qr       → PNG QR code for that game URL
func registerMemeGame(cfg *Config, mode games.Mode, mux *httprouter.Router, opts ...games.Option) *GameManager {
	gm := newGameManager(cfg, mode, opts...)

	path := cfg.prefix + "/" + mode.String()

	mux.GET(path, redirectNewGame(cfg, path, gm))

	mux.GET(path+"/:gameid", serveGamePage(cfg, gm))

	mux.GET(path+"/:gameid/ws", serveWSForManager(cfg, gm))

	mux.GET(path+"/:gameid/qr", qrHandler)

	return gm
}
