// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unolabs/uno/internal/auth"
	"github.com/unolabs/uno/internal/game"
	"github.com/unolabs/uno/internal/middleware"
	"github.com/unolabs/uno/internal/models"
)

// RoomWSHandler upgrades the HTTP connection to WebSocket for a specific room
// (/rooms/{code}/ws). It resolves the player's identity, seats or re-seats
// them, and runs the read loop until the connection dies.
func RoomWSHandler(logger *logrus.Logger, rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trimmed := strings.TrimPrefix(r.URL.Path, "/rooms/")
		code := strings.ToUpper(strings.TrimSuffix(trimmed, "/ws"))
		if code == "" || strings.Contains(code, "/") {
			http.Error(w, "Missing room code (/rooms/{code}/ws)", http.StatusBadRequest)
			return
		}

		room, ok := rs.Store.GetRoomByCode(code)
		if !ok {
			http.Error(w, "Room not found", http.StatusNotFound)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"uno"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for room %s: %v", code, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "uno" {
			logger.Warnf("Client for room %s connected with invalid subprotocol: %s", code, c.Subprotocol())
			c.Close(BadSubprotocolError, "Client must use the 'uno' subprotocol.")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		// Resolve identity. A valid session token for this room reclaims the
		// existing seat; anything else is a fresh join.
		sessionID, reconnecting := resolveSession(r, room, logger)
		if reconnecting {
			if err := room.HandleReconnect(sessionID, c); err != nil {
				logger.Warnf("Reconnect for session %s to room %s failed: %v", sessionID, code, err)
				c.Close(InvalidSessionError, "Session no longer valid.")
				return
			}
		} else {
			sessionID = uuid.NewString()
			name := r.URL.Query().Get("name")
			if err := room.Join(sessionID, name, c); err != nil {
				logger.Warnf("Join to room %s refused: %v", code, err)
				c.Close(websocket.StatusPolicyViolation, err.Error())
				return
			}
		}

		token, err := auth.CreateSessionToken(sessionID, code)
		if err != nil {
			logger.Errorf("Failed to sign session token for %s: %v", sessionID, err)
		}
		sendEvent(c, game.Event{Type: game.EventWelcome, SessionID: sessionID, Token: token})

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		consented := readRoomMessages(ctx, c, room, sessionID, logger)

		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
		logger.Infof("Session %s read loop exited for room %s (consented=%v)", sessionID, code, consented)
		room.HandleDisconnect(sessionID, consented)
	}
}

// resolveSession checks the token query parameter against this room. It
// returns the embedded session ID and true only when the token is valid, was
// issued for this room, and the seat still exists.
func resolveSession(r *http.Request, room *game.Room, logger *logrus.Logger) (string, bool) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		return "", false
	}
	sessionID, roomCode, err := auth.AuthenticateSessionToken(tokenStr)
	if err != nil {
		logger.Warnf("Rejected session token for room %s: %v", room.Code, err)
		return "", false
	}
	if roomCode != room.Code {
		return "", false
	}
	room.Mu.Lock()
	_, seated := room.Players[sessionID]
	room.Mu.Unlock()
	return sessionID, seated
}

// readRoomMessages reads and dispatches client actions until the connection
// closes. The room lock is held only while an action executes, never across a
// network write. Returns whether the closure counts as a consented leave.
func readRoomMessages(ctx context.Context, c *websocket.Conn, room *game.Room, sessionID string, logger *logrus.Logger) bool {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("WebSocket closed normally for session %s in room %s.", sessionID, room.Code)
				return true
			}
			if strings.Contains(err.Error(), "context canceled") {
				logger.Infof("WebSocket context canceled for session %s in room %s.", sessionID, room.Code)
			} else {
				logger.Warnf("Error reading from WebSocket for session %s in room %s: %v (Status: %d)", sessionID, room.Code, err, status)
			}
			return false
		}

		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message type %d from session %s in room %s. Ignoring.", msgType, sessionID, room.Code)
			continue
		}

		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err == nil {
			if t, ok := raw["type"]; ok && string(t) == `"ping"` {
				sendEvent(c, game.Event{Type: game.EventNotification, Text: "pong"})
				continue
			}
		}

		act, err := models.DecodeAction(data)
		if err != nil {
			logger.Warnf("Invalid action from session %s in room %s: %v. Data: %s", sessionID, room.Code, err, string(data))
			sendEvent(c, game.Event{Type: game.EventError, Text: "Invalid message."})
			continue
		}

		logger.Debugf("Received action '%s' from session %s in room %s.", act.Type, sessionID, room.Code)

		room.Mu.Lock()
		room.HandleAction(sessionID, act)
		room.Mu.Unlock()

		select {
		case <-ctx.Done():
			return false
		default:
		}
	}
}

// createBroadcastFunc returns a function suitable for Room.BroadcastFn. It is
// invoked with the room lock held, so it must not re-acquire it; writes go
// out asynchronously with their own timeout.
func createBroadcastFunc(room *game.Room, logger *logrus.Logger) func(ev game.Event) {
	return func(ev game.Event) {
		conns := make([]*websocket.Conn, 0, len(room.SeatOrder))
		for _, pid := range room.SeatOrder {
			p := room.Players[pid]
			if p != nil && p.IsConnected && p.Conn != nil {
				conns = append(conns, p.Conn)
			}
		}

		msgBytes, err := json.Marshal(ev)
		if err != nil {
			logger.Errorf("Failed to marshal broadcast event (%s) for room %s: %v", ev.Type, room.Code, err)
			return
		}

		go func(conns []*websocket.Conn, data []byte, code string) {
			for _, conn := range conns {
				writeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				err := conn.Write(writeCtx, websocket.MessageText, data)
				cancel()
				if err != nil {
					logger.Warnf("Failed to write broadcast message in room %s: %v", code, err)
				}
			}
		}(conns, msgBytes, room.Code)
	}
}

// createBroadcastToPlayerFunc returns a function suitable for
// Room.BroadcastToPlayerFn. Same locking contract as createBroadcastFunc.
func createBroadcastToPlayerFunc(room *game.Room, logger *logrus.Logger) func(playerID string, ev game.Event) {
	return func(playerID string, ev game.Event) {
		p, ok := room.Players[playerID]
		if !ok || !p.IsConnected || p.Conn == nil {
			return
		}
		conn := p.Conn

		msgBytes, err := json.Marshal(ev)
		if err != nil {
			logger.Errorf("Failed to marshal private event (%s) for session %s in room %s: %v", ev.Type, playerID, room.Code, err)
			return
		}

		go func(conn *websocket.Conn, data []byte, playerID, code string) {
			writeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := conn.Write(writeCtx, websocket.MessageText, data); err != nil {
				logger.Warnf("Failed to write private message to session %s in room %s: %v", playerID, code, err)
			}
		}(conn, msgBytes, playerID, room.Code)
	}
}

// sendEvent marshals an event and writes it directly to one connection with a
// write timeout. Used on paths where no room state is involved.
func sendEvent(c *websocket.Conn, ev game.Event) {
	msgBytes, err := json.Marshal(ev)
	if err != nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = c.Write(writeCtx, websocket.MessageText, msgBytes)
}
