package stream

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brensch/gridlock/game"
)

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("spectators=%d want=%d", h.ClientCount(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastsFrames(t *testing.T) {
	h := NewHub(nil)
	conn := dialHub(t, h)
	waitForClients(t, h, 1)

	h.Broadcast(game.MatchSnapshot{
		Tick:  9,
		Width: 500, Height: 500,
		Players: []game.PlayerSnapshot{{ID: "p1", X: 100, Y: 200, Alive: true}},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if msg.Type != "frame" {
		t.Fatalf("type=%q want=frame", msg.Type)
	}
	var snap game.MatchSnapshot
	if err := json.Unmarshal(msg.Data, &snap); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if snap.Tick != 9 || len(snap.Players) != 1 {
		t.Fatalf("frame=%+v want tick=9 with one player", snap)
	}
}

func TestHub_BroadcastsLifecycleEvents(t *testing.T) {
	h := NewHub(nil)
	conn := dialHub(t, h)
	waitForClients(t, h, 1)

	h.PlayerCrashed("p1")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != "event" || msg.Event != "crash:p1" {
		t.Fatalf("got %+v want crash event", msg)
	}
}

func TestHub_DropsDisconnectedClients(t *testing.T) {
	h := NewHub(nil)
	conn := dialHub(t, h)
	waitForClients(t, h, 1)

	conn.Close()
	waitForClients(t, h, 0)
}

func TestHub_DropsClientOnWriteFailure(t *testing.T) {
	h := NewHub(nil)
	conn := dialHub(t, h)
	waitForClients(t, h, 1)

	// With the peer gone, the next writes fail and the hub must fully
	// release the client rather than leaving a half-closed connection.
	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("spectators=%d want=0 after write failures", h.ClientCount())
		}
		h.Broadcast(game.MatchSnapshot{Tick: 1})
		time.Sleep(5 * time.Millisecond)
	}
}
