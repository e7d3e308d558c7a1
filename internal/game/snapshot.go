// internal/game/snapshot.go
package game

import (
	"time"

	"github.com/unolabs/uno/internal/models"
)

// Snapshot is the per-player serialized view of the room. Only the viewer's
// own hand is included; opponents are reduced to counts.
type Snapshot struct {
	RoomCode            string             `json:"roomCode"`
	Status              GameStatus         `json:"status"`
	You                 string             `json:"you"`
	Players             []SnapshotPlayer   `json:"players"`
	Hand                []*models.Card     `json:"hand,omitempty"`
	DiscardTop          *models.Card       `json:"discardTop,omitempty"`
	CurrentColor        models.CardColor   `json:"currentColor,omitempty"`
	CurrentTurnPlayerID string             `json:"currentTurnPlayerId,omitempty"`
	Direction           int                `json:"direction"`
	DrawPileCount       int                `json:"drawPileCount"`
	DrawStack           int                `json:"drawStack"`
	MustPlayOrPass      bool               `json:"mustPlayOrPass,omitempty"`
	Winner              string             `json:"winner,omitempty"`
}

// SnapshotPlayer is the public view of one seat.
type SnapshotPlayer struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	CardsRemaining int    `json:"cardsRemaining"`
	IsReady        bool   `json:"isReady"`
	IsConnected    bool   `json:"isConnected"`
	HasSaidUno     bool   `json:"hasSaidUno"`
	GraceSeconds   int    `json:"graceSeconds,omitempty"`
}

// snapshotFor builds the obfuscated state for a single viewer.
// Assumes lock is held.
func (r *Room) snapshotFor(viewerID string) *Snapshot {
	s := &Snapshot{
		RoomCode:            r.Code,
		Status:              r.Status,
		You:                 viewerID,
		CurrentColor:        r.CurrentColor,
		CurrentTurnPlayerID: r.CurrentTurnPlayerID,
		Direction:           r.Direction,
		DrawPileCount:       len(r.DrawPile),
		DrawStack:           r.DrawStack,
		Winner:              r.Winner,
	}
	if n := len(r.DiscardPile); n > 0 {
		s.DiscardTop = r.DiscardPile[n-1]
	}
	if r.drewThisTurn && r.CurrentTurnPlayerID == viewerID {
		s.MustPlayOrPass = true
	}
	for _, pid := range r.SeatOrder {
		p := r.Players[pid]
		sp := SnapshotPlayer{
			ID:             p.ID,
			Name:           p.Name,
			CardsRemaining: len(p.Hand),
			IsReady:        p.IsReady,
			IsConnected:    p.IsConnected,
			HasSaidUno:     p.HasSaidUno,
		}
		if p.Connectivity == models.GracePeriod {
			if rem := time.Until(p.GraceDeadline); rem > 0 {
				sp.GraceSeconds = int(rem.Seconds()) + 1
			}
		}
		s.Players = append(s.Players, sp)
		if pid == viewerID {
			s.Hand = p.Hand
		}
	}
	return s
}
