// internal/handlers/room_http.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/unolabs/uno/internal/database"
	"github.com/unolabs/uno/internal/directory"
	"github.com/unolabs/uno/internal/game"
)

// CreateRoomHandler handles POST /rooms. It mints a room and returns its join
// code; players then connect over the room's WebSocket endpoint.
func CreateRoomHandler(rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		room, err := rs.CreateRoom(r.Context())
		if err != nil {
			http.Error(w, "Failed to create room", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{
			"roomId": room.ID.String(),
			"code":   room.Code,
		})
	}
}

// GetRoomHandler handles GET /rooms/{code}: public room metadata for the
// pre-join screen.
func GetRoomHandler(rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		code := strings.ToUpper(strings.TrimPrefix(r.URL.Path, "/rooms/"))
		if code == "" || strings.Contains(code, "/") {
			http.Error(w, "Missing room code (/rooms/{code})", http.StatusBadRequest)
			return
		}
		room, ok := rs.Store.GetRoomByCode(code)
		if !ok {
			// Not hosted here; the directory may know it from another
			// instance.
			if entry := lookupDirectoryEntry(r.Context(), rs, code); entry != nil {
				writeJSON(w, http.StatusOK, map[string]interface{}{
					"roomId":   entry.RoomID.String(),
					"code":     entry.Code,
					"status":   entry.Status,
					"players":  entry.Players,
					"joinable": entry.Status == string(game.StatusLobby),
				})
				return
			}
			http.Error(w, "Room not found", http.StatusNotFound)
			return
		}

		room.Mu.Lock()
		resp := map[string]interface{}{
			"roomId":  room.ID.String(),
			"code":    room.Code,
			"status":  room.Status,
			"players": len(room.SeatOrder),
			"maxSeats": room.MaxSeats,
			"joinable": room.Status == game.StatusLobby && len(room.SeatOrder) < room.MaxSeats,
		}
		room.Mu.Unlock()

		writeJSON(w, http.StatusOK, resp)
	}
}

// lookupDirectoryEntry consults the room directory for a code not hosted by
// this process. Returns nil when the directory is unavailable or has no
// entry.
func lookupDirectoryEntry(ctx context.Context, rs *RoomServer, code string) *directory.RoomEntry {
	if directory.Rdb == nil {
		return nil
	}
	entry, err := directory.LookupRoom(ctx, code)
	if err != nil {
		rs.Logger.Warnf("directory lookup for %s failed: %v", code, err)
		return nil
	}
	return entry
}

// MatchHistoryHandler handles GET /rooms/{code}/history: the most recent
// recorded outcomes for a join code. Only available when match history is
// enabled.
func MatchHistoryHandler(rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !rs.HistoryEnabled {
			http.Error(w, "Match history not enabled", http.StatusNotFound)
			return
		}
		code := strings.ToUpper(strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/rooms/"), "/history"))
		if code == "" || strings.Contains(code, "/") {
			http.Error(w, "Missing room code (/rooms/{code}/history)", http.StatusBadRequest)
			return
		}
		matches, err := database.RecentMatches(r.Context(), code, 20)
		if err != nil {
			rs.Logger.Warnf("history query for %s failed: %v", code, err)
			http.Error(w, "Failed to load match history", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"code":    code,
			"matches": matches,
		})
	}
}

// HealthHandler handles GET /health.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
