package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialHub(t *testing.T, hub *Hub, orgID uint) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := hub.Subscribe(orgID, w, r); err != nil {
			t.Errorf("subscribe failed: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForSubscribers(t *testing.T, hub *Hub, orgID uint, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers(orgID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscribers, got %d", want, hub.Subscribers(orgID))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestBroadcastReachesRoomOnly(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, 1)
	other := dialHub(t, hub, 2)
	waitForSubscribers(t, hub, 1, 1)
	waitForSubscribers(t, hub, 2, 1)

	hub.Broadcast(1, map[string]interface{}{"event": "scan", "qr_code_id": 7})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("payload is not json: %v", err)
	}
	if payload["event"] != "scan" {
		t.Fatalf("unexpected payload: %v", payload)
	}

	// The other room stays silent.
	_ = other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := other.ReadMessage(); err == nil {
		t.Fatalf("foreign room must not receive the broadcast")
	}
}

func TestDisconnectLeavesRoom(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub, 1)
	waitForSubscribers(t, hub, 1, 1)

	_ = conn.Close()
	waitForSubscribers(t, hub, 1, 0)
}

func TestBroadcastWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	// Must not panic or block.
	hub.Broadcast(42, map[string]string{"event": "scan"})
	if n := hub.Subscribers(42); n != 0 {
		t.Fatalf("expected empty room, got %d", n)
	}
}
