package brackets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastToRoom(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := &Client{Hub: hub, Conn: conn, Send: make(chan []byte, 8), Room: DefaultRoom}
		hub.Register <- client
		go client.WritePump()
		go client.ReadPump()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.RoomSize(DefaultRoom) == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.BroadcastToRoom(DefaultRoom, WebSocketMessage{Type: MessageStandingsUpdated, Payload: []string{"A"}, RoomID: DefaultRoom})
	hub.BroadcastToRoom("other", WebSocketMessage{Type: MessageMatchUpdated})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg WebSocketMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageStandingsUpdated, msg.Type)
	assert.Equal(t, DefaultRoom, msg.RoomID)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.RoomSize(DefaultRoom) == 0 }, 2*time.Second, 10*time.Millisecond)
}
