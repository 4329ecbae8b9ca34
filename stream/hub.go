// Package stream serves live matches to spectators over websockets. The
// simulation pushes frames into a hub; the hub fans them out to whoever is
// connected, dropping clients that cannot keep up rather than stalling the
// tick loop.
package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/brensch/gridlock/game"
	"github.com/brensch/gridlock/match"
)

// Message is the wire envelope. Type is "frame" for snapshots and "event"
// for lifecycle notifications.
type Message struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data,omitempty"`
	Event string          `json:"event,omitempty"`
}

// Hub fans frames out to connected spectators. It also implements
// match.GameObserver so lifecycle events reach spectators without extra
// plumbing in the driver.
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub builds an empty hub. Spectating is read-only, so cross-origin
// connections are accepted.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Handler upgrades incoming connections and registers them as spectators.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn("spectator upgrade failed", "err", err)
			return
		}

		c := &client{conn: conn, send: make(chan []byte, 64)}
		h.mu.Lock()
		if h.closed {
			h.mu.Unlock()
			conn.Close()
			return
		}
		h.clients[c] = struct{}{}
		n := len(h.clients)
		h.mu.Unlock()
		h.log.Info("spectator connected", "remote", conn.RemoteAddr().String(), "spectators", n)

		go h.writeLoop(c)
		h.readLoop(c)
	}
}

// writeLoop drains the client's send queue onto the socket.
func (h *Hub) writeLoop(c *client) {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.drop(c)
			return
		}
	}
	c.conn.Close()
}

// readLoop consumes (and discards) incoming messages; it is how a
// client-side close is noticed.
func (h *Hub) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.drop(c)
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		// Closing here covers the write-error path, where writeLoop
		// returns before reaching its own close. Double closes from the
		// read side are harmless.
		c.conn.Close()
		h.log.Info("spectator disconnected", "spectators", n)
	}
}

// ClientCount returns the number of connected spectators.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends one frame to every spectator. Marshalling happens once;
// clients whose queue is full are dropped so a slow reader cannot apply
// backpressure to the simulation.
func (h *Hub) Broadcast(snap game.MatchSnapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		h.log.Error("marshal frame", "err", err)
		return
	}
	msg, err := json.Marshal(Message{Type: "frame", Data: data})
	if err != nil {
		h.log.Error("marshal envelope", "err", err)
		return
	}
	h.send(msg)
}

func (h *Hub) broadcastEvent(event string) {
	msg, err := json.Marshal(Message{Type: "event", Event: event})
	if err != nil {
		h.log.Error("marshal event", "err", err)
		return
	}
	h.send(msg)
}

func (h *Hub) send(msg []byte) {
	h.mu.Lock()
	var slow []*client
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	for range slow {
		h.log.Warn("dropped slow spectator")
	}
}

// Close disconnects every spectator and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// GameStateChanged implements match.GameObserver.
func (h *Hub) GameStateChanged(s match.State) {
	h.broadcastEvent("state:" + s.String())
}

// ScoreChanged implements match.GameObserver. Scores ride on frames, so
// there is nothing extra to send.
func (h *Hub) ScoreChanged(string, int32) {}

// BoostCountChanged implements match.GameObserver.
func (h *Hub) BoostCountChanged(string, int32) {}

// PlayerCrashed implements match.GameObserver.
func (h *Hub) PlayerCrashed(id string) {
	h.broadcastEvent("crash:" + id)
}

// GameReset implements match.GameObserver.
func (h *Hub) GameReset() {
	h.broadcastEvent("reset")
}
