// internal/handlers/room_ws_test.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unolabs/uno/internal/auth"
	"github.com/unolabs/uno/internal/game"
	"github.com/unolabs/uno/internal/middleware"
)

// TestHandshakeThroughLogMiddleware dials a real upgrade through the logging
// middleware, exactly as cmd/server wires it. The upgrade hijacks the
// connection, so the middleware's response wrapper must stay hijackable.
func TestHandshakeThroughLogMiddleware(t *testing.T) {
	auth.Init()
	rs := newTestServer()
	room := rs.Store.CreateRoom()

	mux := http.NewServeMux()
	mux.Handle("/rooms/", middleware.LogMiddleware(rs.Logger)(http.HandlerFunc(
		RoomWSHandler(rs.Logger, rs),
	)))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := strings.Replace(srv.URL, "http", "ws", 1) + "/rooms/" + room.Code + "/ws?name=Ada"
	c, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		Subprotocols: []string{"uno"},
	})
	require.NoError(t, err, "handshake must succeed behind the logging middleware")
	defer c.Close(websocket.StatusNormalClosure, "")

	_, data, err := c.Read(ctx)
	require.NoError(t, err)

	var ev game.Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, game.EventWelcome, ev.Type)
	assert.NotEmpty(t, ev.SessionID)
	assert.NotEmpty(t, ev.Token)

	room.Mu.Lock()
	defer room.Mu.Unlock()
	require.Len(t, room.SeatOrder, 1)
	assert.Equal(t, "Ada", room.Players[room.SeatOrder[0]].Name)
}
