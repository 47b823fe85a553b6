package iris

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketDeliversMessages(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"msg":"/help","room":"r1","json":{"user_id":"7"}}`))
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	received := make(chan *Message, 1)
	ws := NewWebSocket(wsURL(srv), 1, 10*time.Millisecond, nil)
	ws.OnMessage(func(_ context.Context, m *Message) { received <- m })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ws.Run(ctx) }()

	select {
	case m := <-received:
		assert.Equal(t, "/help", m.Msg)
		id, ok := m.SenderID()
		assert.True(t, ok)
		assert.EqualValues(t, 7, id)
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
	assert.True(t, ws.IsConnected())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	assert.Equal(t, WSStateDisconnected, ws.GetState())
}

func TestWebSocketGivesUpAfterMaxAttempts(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	var states []WebSocketState
	ws := NewWebSocket(wsURL(srv), 2, time.Millisecond, nil)
	ws.OnStateChange(func(s WebSocketState) { states = append(states, s) })

	err := ws.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "giving up after 2 attempts")
	assert.Equal(t, WSStateFailed, ws.GetState())
	assert.Contains(t, states, WSStateReconnecting)
}
