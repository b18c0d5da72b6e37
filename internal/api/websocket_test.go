package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// dialWS connects a test client to the fixture's /ws endpoint.
func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialling %s: %v", url, err)
	}
	if resp != nil {
		resp.Body.Close() //nolint:errcheck // Test cleanup
	}
	t.Cleanup(func() { conn.Close() }) //nolint:errcheck // Test cleanup
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", hub.ClientCount(), want)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWebSocketBroadcastReachesAllClients(t *testing.T) {
	f := newServerFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	first := dialWS(t, srv)
	second := dialWS(t, srv)
	waitForClients(t, f.server.hub, 2)

	payload := []byte(`{"type":"TELEMETRY","plantId":"planta1"}`)
	f.server.hub.Broadcast(payload)

	for _, conn := range []*websocket.Conn{first, second} {
		//nolint:errcheck // Best-effort deadline in test
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("reading broadcast: %v", err)
		}
		if string(msg) != string(payload) {
			t.Errorf("message = %s, want %s", msg, payload)
		}
	}
}

func TestWebSocketPingPong(t *testing.T) {
	f := newServerFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	conn := dialWS(t, srv)
	waitForClients(t, f.server.hub, 1)

	if err := conn.WriteJSON(wsControlMessage{Type: WSTypePing, ID: "42"}); err != nil {
		t.Fatalf("writing ping: %v", err)
	}

	//nolint:errcheck // Best-effort deadline in test
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading pong: %v", err)
	}

	var reply wsControlMessage
	if err := json.Unmarshal(msg, &reply); err != nil {
		t.Fatalf("decoding pong: %v", err)
	}
	if reply.Type != WSTypePong || reply.ID != "42" {
		t.Errorf("reply = %+v, want pong with id 42", reply)
	}
}

func TestWebSocketDisconnectUnregisters(t *testing.T) {
	f := newServerFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	conn := dialWS(t, srv)
	waitForClients(t, f.server.hub, 1)

	conn.Close() //nolint:errcheck // Deliberate disconnect
	waitForClients(t, f.server.hub, 0)
}
