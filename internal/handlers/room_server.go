// internal/handlers/room_server.go
package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unolabs/uno/internal/config"
	"github.com/unolabs/uno/internal/database"
	"github.com/unolabs/uno/internal/directory"
	"github.com/unolabs/uno/internal/game"
)

// RoomServer owns the room registry and wires each new room's outbound hooks:
// fan-out to connections, directory publishing, and match history.
type RoomServer struct {
	Store  *game.RoomStore
	Logger *logrus.Logger

	// HistoryEnabled gates the optional match history writes. The server runs
	// fine without a database.
	HistoryEnabled bool
}

func NewRoomServer(logger *logrus.Logger) *RoomServer {
	return &RoomServer{
		Store:  game.NewRoomStore(),
		Logger: logger,
	}
}

// CreateRoom mints a room and registers it with the directory. If the
// registration fails the room is torn down immediately; a room that cannot be
// discovered must not exist.
func (rs *RoomServer) CreateRoom(ctx context.Context) (*game.Room, error) {
	r := rs.Store.CreateRoom()
	applyTimerOverrides(r)
	rs.wireRoom(r)

	err := directory.RegisterRoom(ctx, directory.RoomEntry{
		RoomID: r.ID,
		Code:   r.Code,
		Status: string(game.StatusLobby),
	})
	if err != nil {
		rs.Store.DeleteRoom(r.ID)
		rs.Logger.Errorf("room %s: directory registration failed, tearing down: %v", r.Code, err)
		return nil, err
	}
	rs.Logger.Infof("room %s created (%s)", r.Code, r.ID)
	return r, nil
}

// applyTimerOverrides lets deployments tune the room's timer windows through
// the environment while keeping the defaults from NewRoom.
func applyTimerOverrides(r *game.Room) {
	r.UnoPenaltyWindow = config.GetEnvDuration("UNO_PENALTY_WINDOW", r.UnoPenaltyWindow)
	r.AutoDrawGrace = config.GetEnvDuration("AUTO_DRAW_GRACE", r.AutoDrawGrace)
	r.ReconnectGrace = config.GetEnvDuration("RECONNECT_GRACE", r.ReconnectGrace)
}

// wireRoom installs the server-side callbacks on a freshly created room.
func (rs *RoomServer) wireRoom(r *game.Room) {
	r.BroadcastFn = createBroadcastFunc(r, rs.Logger)
	r.BroadcastToPlayerFn = createBroadcastToPlayerFunc(r, rs.Logger)

	r.OnStatusChange = func(status game.GameStatus) {
		// Called with the room lock held; the write happens off the hot path.
		entry := directory.RoomEntry{
			RoomID:  r.ID,
			Code:    r.Code,
			Status:  string(status),
			Players: len(r.SeatOrder),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := directory.UpdateRoom(ctx, entry); err != nil {
				rs.Logger.Warnf("room %s: directory update failed: %v", entry.Code, err)
			}
		}()
	}

	r.OnGameEnd = func(roomCode string, winner string, standings []game.Standing) {
		if !rs.HistoryEnabled {
			return
		}
		result := database.MatchResult{
			RoomID:   r.ID,
			RoomCode: roomCode,
			Winner:   winner,
		}
		for _, s := range standings {
			result.Players = append(result.Players, database.MatchPlayerResult{
				Name:           s.Name,
				CardsRemaining: s.CardsRemaining,
				DidWin:         s.Name == winner,
			})
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := database.RecordMatch(ctx, result); err != nil {
				rs.Logger.Warnf("room %s: failed to record match: %v", roomCode, err)
			}
		}()
	}

	r.OnEmpty = func(roomID uuid.UUID) {
		code := r.Code
		rs.Store.DeleteRoom(roomID)
		rs.Logger.Infof("room %s is empty, disposed", code)
		rs.deregister(code)
	}
}

// deregister removes a room's directory entry in the background. A nil
// client (directory not connected) is a no-op.
func (rs *RoomServer) deregister(code string) {
	if directory.Rdb == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := directory.DeregisterRoom(ctx, code); err != nil {
			rs.Logger.Warnf("room %s: directory deregistration failed: %v", code, err)
		}
	}()
}

// StartSweeper periodically disposes rooms that were created but never
// joined. OnEmpty only fires once a seat has existed, so a room minted over
// HTTP and then abandoned before its first websocket needs the sweep.
func (rs *RoomServer) StartSweeper(ctx context.Context, interval, idleTTL time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rs.sweepIdleRooms(idleTTL)
			}
		}
	}()
}

// sweepIdleRooms disposes every room that is past the idle TTL with no seat
// ever taken. IDs are snapshotted first so no store lock is held while each
// room is inspected under its own lock.
func (rs *RoomServer) sweepIdleRooms(idleTTL time.Duration) {
	for _, id := range rs.Store.RoomIDs() {
		r, ok := rs.Store.GetRoom(id)
		if !ok {
			continue
		}
		r.Mu.Lock()
		idle := len(r.SeatOrder) == 0 && time.Since(r.CreatedAt) > idleTTL
		code := r.Code
		r.Mu.Unlock()
		if !idle {
			continue
		}
		rs.Store.DeleteRoom(id)
		rs.Logger.Infof("room %s swept after sitting empty", code)
		rs.deregister(code)
	}
}
