// internal/models/player.go
package models

import (
	"time"

	"github.com/coder/websocket"
)

// Connectivity is a player's connection state within a room. A player is
// Connected while their websocket is live, enters GracePeriod when the socket
// drops mid-game, and is Removed once the grace window expires.
type Connectivity int

const (
	Connected Connectivity = iota
	GracePeriod
	Removed
)

// Player holds one seat's state. Hand is exclusively owned by the room's
// serialized handler and is never exposed in full to other players;
// CardsRemaining is the public mirror of its length.
type Player struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Hand           []*Card `json:"-"`
	IsReady        bool    `json:"isReady"`
	IsConnected    bool    `json:"isConnected"`
	HasSaidUno     bool    `json:"hasSaidUno"`
	CardsRemaining int     `json:"cardsRemaining"`

	Connectivity  Connectivity `json:"-"`
	GraceDeadline time.Time    `json:"-"`

	Conn *websocket.Conn `json:"-"`
}

// HandIndex returns the position of the card with the given id in the hand,
// or -1 if the player does not hold it.
func (p *Player) HandIndex(cardID string) int {
	for i, c := range p.Hand {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}
