// internal/game/room.go
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/unolabs/uno/internal/models"
)

// GameStatus is the room lifecycle state.
type GameStatus string

const (
	StatusLobby    GameStatus = "LOBBY"
	StatusPlaying  GameStatus = "PLAYING"
	StatusFinished GameStatus = "FINISHED"
)

// Join errors surfaced to the transport layer.
var (
	ErrRoomFull       = errors.New("room is full")
	ErrGameInProgress = errors.New("game already in progress")
	ErrUnknownSession = errors.New("unknown session")
)

// Standing is one row of the final result, reported when a game finishes.
type Standing struct {
	Name           string `json:"name"`
	CardsRemaining int    `json:"cardsRemaining"`
}

// OnGameEndFunc receives the finished game's winner and final standings.
type OnGameEndFunc func(roomCode string, winner string, standings []Standing)

// Room holds the entire state for a single match in memory and is its only
// mutator. Exactly one action (inbound message, timer callback, join/leave
// event) runs to completion under Mu before the next is considered; rooms
// share no mutable state with each other.
type Room struct {
	ID        uuid.UUID
	Code      string
	CreatedAt time.Time

	Status              GameStatus
	Players             map[string]*models.Player
	SeatOrder           []string
	CurrentTurnPlayerID string
	Direction           int
	DrawPile            []*models.Card
	DiscardPile         []*models.Card

	// Active matcher: derived from the top of the discard pile plus any wild
	// color choice.
	CurrentColor models.CardColor
	CurrentType  models.CardType
	CurrentValue int

	DrawStack                 int
	drawStackType             models.CardType
	PendingUnoPenaltyPlayerID string
	Winner                    string

	MaxSeats         int
	UnoPenaltyWindow time.Duration
	AutoDrawGrace    time.Duration
	ReconnectGrace   time.Duration

	// Timer bookkeeping. Generation counters guard against stale callbacks:
	// a timer that fires after the condition that armed it has been resolved
	// must be a no-op.
	unoTimer      *time.Timer
	unoGen        int
	autoDrawTimer *time.Timer
	turnGen       int
	graceTimers   map[string]*time.Timer

	// drewThisTurn is set when the current player drew a single playable card
	// and kept the turn; they must now play or explicitly pass.
	drewThisTurn bool

	rng *rand.Rand
	Mu  sync.Mutex

	// BroadcastFn sends an event to all connected players. If nil, no
	// broadcast is done.
	BroadcastFn func(ev Event)

	// BroadcastToPlayerFn sends an event to a single specific player.
	BroadcastToPlayerFn func(playerID string, ev Event)

	// OnStatusChange is invoked on every lifecycle transition so the room's
	// discoverable metadata can be kept current.
	OnStatusChange func(status GameStatus)

	// OnGameEnd is invoked once when a game reaches FINISHED.
	OnGameEnd OnGameEndFunc

	// OnEmpty is invoked when the last seat leaves, so the owning store can
	// drop the room.
	OnEmpty func(roomID uuid.UUID)
}

// NewRoom builds an empty room in LOBBY with the given public code.
func NewRoom(code string) *Room {
	id, _ := uuid.NewRandom()
	return &Room{
		ID:               id,
		Code:             code,
		CreatedAt:        time.Now(),
		Status:           StatusLobby,
		Players:          make(map[string]*models.Player),
		Direction:        1,
		CurrentValue:     -1,
		MaxSeats:         6,
		UnoPenaltyWindow: 3 * time.Second,
		AutoDrawGrace:    time.Second,
		ReconnectGrace:   30 * time.Second,
		graceTimers:      make(map[string]*time.Timer),
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Join seats a new player. New seats are only added while the room is in
// LOBBY; players returning mid-game go through HandleReconnect instead.
func (r *Room) Join(sessionID, name string, conn *websocket.Conn) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if _, ok := r.Players[sessionID]; ok {
		return fmt.Errorf("session %s already seated", sessionID)
	}
	if r.Status != StatusLobby {
		return ErrGameInProgress
	}
	if len(r.SeatOrder) >= r.MaxSeats {
		return ErrRoomFull
	}
	if name == "" {
		name = "Guest"
	}
	p := &models.Player{
		ID:           sessionID,
		Name:         name,
		IsConnected:  true,
		Connectivity: models.Connected,
		Conn:         conn,
	}
	r.Players[sessionID] = p
	r.SeatOrder = append(r.SeatOrder, sessionID)
	log.Infof("room %s: player %s (%s) joined, %d seated", r.Code, sessionID, name, len(r.SeatOrder))
	r.notifyAll(fmt.Sprintf("%s joined the room.", p.Name))
	r.broadcastState()
	return nil
}

// HandleAction interprets one decoded inbound action for a seated player.
// This is the main dispatch for everything a client can do.
// Assumes lock is held by the caller (the WS read loop or a timer callback).
func (r *Room) HandleAction(playerID string, act models.Action) {
	p, ok := r.Players[playerID]
	if !ok {
		return
	}

	switch act.Type {
	case models.ActionSetInfo:
		p.Name = act.SetInfo.Name
		r.broadcastState()
	case models.ActionToggleReady:
		if r.Status != StatusLobby {
			return
		}
		p.IsReady = !p.IsReady
		r.broadcastState()
	case models.ActionStartGame:
		r.startGame(p)
	case models.ActionPlayCard:
		r.playCard(p, act.PlayCard)
	case models.ActionDrawCard:
		r.drawCard(p)
	case models.ActionPassTurn:
		r.passTurn(p)
	case models.ActionSayUno:
		r.declareUno(p)
	case models.ActionCatchUno:
		r.catchUno(p)
	case models.ActionRestartGame:
		r.restartGame(p)
	}
}

// startGame commits the LOBBY -> PLAYING transition: build and shuffle the
// deck, deal 7 cards per seat, flip the opening card, and hand the turn to
// the first seat. Assumes lock is held.
func (r *Room) startGame(issuer *models.Player) {
	if r.Status != StatusLobby {
		r.sendError(issuer.ID, "Game already started.")
		return
	}
	if len(r.SeatOrder) == 0 || r.SeatOrder[0] != issuer.ID {
		r.sendError(issuer.ID, "Only the host can start the game.")
		return
	}
	ready := 0
	for _, pid := range r.SeatOrder {
		if r.Players[pid].IsReady {
			ready++
		}
	}
	if ready < 2 || ready != len(r.SeatOrder) {
		r.sendError(issuer.ID, "Everyone must be ready, with at least 2 players.")
		return
	}

	r.Status = StatusPlaying
	r.DrawPile = BuildDeck()
	shuffleCards(r.rng, r.DrawPile)
	r.DiscardPile = nil

	for _, pid := range r.SeatOrder {
		p := r.Players[pid]
		p.Hand = nil
		p.HasSaidUno = false
		r.drawN(p, 7)
	}

	// Flip the opening card. A wild opener gets a uniformly random color
	// since no player chose one.
	idx := len(r.DrawPile) - 1
	first := r.DrawPile[idx]
	r.DrawPile = r.DrawPile[:idx]
	r.DiscardPile = append(r.DiscardPile, first)
	r.CurrentColor = first.Color
	r.CurrentType = first.Type
	r.CurrentValue = first.Value
	if first.Color == models.ColorBlack {
		r.CurrentColor = models.PlayColors[r.rng.Intn(len(models.PlayColors))]
	}

	r.Direction = 1
	r.DrawStack = 0
	r.drawStackType = ""
	r.drewThisTurn = false
	r.CurrentTurnPlayerID = r.SeatOrder[0]
	r.turnGen++

	log.Infof("room %s: game started with %d players", r.Code, len(r.SeatOrder))
	r.publishStatus()
	r.notifyAll("Game started!")
	r.broadcastState()
}

// playCard validates and applies one play. On any validation failure a
// private error goes to the issuer and state is left untouched.
// Assumes lock is held.
func (r *Room) playCard(p *models.Player, payload *models.PlayCardPayload) {
	if r.Status != StatusPlaying {
		r.sendError(p.ID, "The game is not running.")
		return
	}
	if r.CurrentTurnPlayerID != p.ID {
		r.sendError(p.ID, "It's not your turn.")
		return
	}
	idx := p.HandIndex(payload.CardID)
	if idx < 0 {
		r.sendError(p.ID, "Card not in your hand.")
		return
	}
	card := p.Hand[idx]
	if r.DrawStack > 0 {
		if r.drawStackType != models.TypeDraw2 || card.Type != models.TypeDraw2 {
			r.sendError(p.ID, "You must draw, or stack another Draw Two.")
			return
		}
	}
	if card.IsWild() && !payload.ChooseColor.IsPlayColor() {
		r.sendError(p.ID, "Choose a color for the wild card.")
		return
	}
	if !r.isValidMove(card) {
		r.sendError(p.ID, "Invalid move")
		return
	}

	// Committing: the player acted, so any pending forced draw for them is
	// off the table.
	r.cancelAutoDraw()

	p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
	r.DiscardPile = append(r.DiscardPile, card)
	p.CardsRemaining = len(p.Hand)

	if len(p.Hand) == 0 {
		// Winning play: no further card effects are applied.
		r.Winner = p.Name
		r.finishGame()
		return
	}
	if len(p.Hand) == 1 && !p.HasSaidUno {
		r.armUnoPenalty(p)
	} else if len(p.Hand) > 1 {
		p.HasSaidUno = false
	}

	// Update the active matcher. The chosen color is stamped onto a wild so
	// the discard top shows it; it resets to black on reshuffle.
	if card.IsWild() {
		card.Color = payload.ChooseColor
	}
	r.CurrentColor = card.Color
	r.CurrentType = card.Type
	r.CurrentValue = card.Value

	skip := false
	switch card.Type {
	case models.TypeReverse:
		// With exactly 2 seats a reverse has no visible effect, so it acts
		// as a skip instead.
		if len(r.SeatOrder) == 2 {
			skip = true
		} else {
			r.Direction *= -1
		}
	case models.TypeSkip:
		skip = true
	case models.TypeDraw2:
		r.DrawStack += 2
		r.drawStackType = models.TypeDraw2
	case models.TypeWild4:
		r.DrawStack += 4
		r.drawStackType = models.TypeWild4
	}

	r.advanceTurn(skip)
	r.broadcastState()
}

// drawCard resolves a pending draw stack in full, or draws a single card.
// After a single draw that turns out playable the player keeps the turn and
// must play or explicitly pass. Assumes lock is held.
func (r *Room) drawCard(p *models.Player) {
	if r.Status != StatusPlaying {
		r.sendError(p.ID, "The game is not running.")
		return
	}
	if r.CurrentTurnPlayerID != p.ID {
		r.sendError(p.ID, "It's not your turn.")
		return
	}

	if r.DrawStack > 0 {
		r.cancelAutoDraw()
		n := r.DrawStack
		r.DrawStack = 0
		r.drawStackType = ""
		drawn := r.drawN(p, n)
		p.HasSaidUno = false
		if r.PendingUnoPenaltyPlayerID == p.ID && len(p.Hand) != 1 {
			r.clearUnoPenalty()
		}
		r.notifyAll(fmt.Sprintf("%s drew %d card(s).", p.Name, drawn))
		r.advanceTurn(false)
		r.broadcastState()
		return
	}

	if r.drewThisTurn {
		r.sendError(p.ID, "You already drew this turn. Play or pass.")
		return
	}

	card := r.drawOne(p)
	if card == nil {
		// Both piles exhausted. Rare terminal condition: tolerate and move on.
		r.notifyAll("No cards left to draw.")
		r.advanceTurn(false)
		r.broadcastState()
		return
	}
	p.HasSaidUno = false
	if r.PendingUnoPenaltyPlayerID == p.ID && len(p.Hand) != 1 {
		r.clearUnoPenalty()
	}
	if r.isValidMove(card) {
		r.drewThisTurn = true
		r.sendToPlayer(p.ID, Event{Type: EventNotification, Text: "You drew a playable card!"})
	} else {
		r.advanceTurn(false)
	}
	r.broadcastState()
}

// passTurn ends the turn of a player who drew a playable card and chose not
// to play it. Assumes lock is held.
func (r *Room) passTurn(p *models.Player) {
	if r.Status != StatusPlaying {
		r.sendError(p.ID, "The game is not running.")
		return
	}
	if r.CurrentTurnPlayerID != p.ID {
		r.sendError(p.ID, "It's not your turn.")
		return
	}
	if !r.drewThisTurn {
		r.sendError(p.ID, "Draw a card before passing.")
		return
	}
	r.advanceTurn(false)
	r.broadcastState()
}

// restartGame re-enters LOBBY from FINISHED, clearing hands and piles while
// preserving player identities. Assumes lock is held.
func (r *Room) restartGame(p *models.Player) {
	if r.Status != StatusFinished {
		r.sendError(p.ID, "The game is still running.")
		return
	}
	r.resetToLobby("Room reset for a new game.")
}

// finishGame commits PLAYING -> FINISHED. Winner must already be set.
// Assumes lock is held.
func (r *Room) finishGame() {
	r.Status = StatusFinished
	r.clearUnoPenalty()
	r.cancelAutoDraw()
	r.DrawStack = 0
	r.drawStackType = ""
	r.drewThisTurn = false
	r.CurrentTurnPlayerID = ""

	log.Infof("room %s: game finished, winner %s", r.Code, r.Winner)
	r.publishStatus()
	r.notifyAll(fmt.Sprintf("%s wins!", r.Winner))
	if r.OnGameEnd != nil {
		standings := make([]Standing, 0, len(r.SeatOrder))
		for _, pid := range r.SeatOrder {
			pl := r.Players[pid]
			standings = append(standings, Standing{Name: pl.Name, CardsRemaining: len(pl.Hand)})
		}
		r.OnGameEnd(r.Code, r.Winner, standings)
	}
	r.broadcastState()
}

// resetToLobby resets the room in place: piles and hands cleared, players
// un-readied, matcher and winner fields zeroed. Player identities survive.
// Assumes lock is held.
func (r *Room) resetToLobby(notice string) {
	r.clearUnoPenalty()
	r.cancelAutoDraw()

	r.Status = StatusLobby
	r.DrawPile = nil
	r.DiscardPile = nil
	r.CurrentTurnPlayerID = ""
	r.Direction = 1
	r.CurrentColor = ""
	r.CurrentType = ""
	r.CurrentValue = -1
	r.DrawStack = 0
	r.drawStackType = ""
	r.Winner = ""
	r.drewThisTurn = false
	for _, p := range r.Players {
		p.Hand = nil
		p.CardsRemaining = 0
		p.IsReady = false
		p.HasSaidUno = false
	}

	r.publishStatus()
	if notice != "" {
		r.notifyAll(notice)
	}
	r.broadcastState()
}

// HandleDisconnect processes a dropped or closed connection. A consented
// leave frees the seat immediately; anything else starts the reconnection
// grace window while the room keeps running for everyone else.
func (r *Room) HandleDisconnect(playerID string, consented bool) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, ok := r.Players[playerID]
	if !ok {
		return
	}
	if !p.IsConnected && !consented {
		return
	}
	p.IsConnected = false
	p.Conn = nil
	log.Infof("room %s: player %s disconnected (consented=%v)", r.Code, playerID, consented)

	if consented {
		r.removeSeat(playerID, fmt.Sprintf("%s left the game.", p.Name))
		return
	}
	r.startGrace(p)
}

// startGrace moves a player into the grace period and arms their removal
// timer. Assumes lock is held.
func (r *Room) startGrace(p *models.Player) {
	p.Connectivity = models.GracePeriod
	p.GraceDeadline = time.Now().Add(r.ReconnectGrace)
	pid := p.ID
	if t, ok := r.graceTimers[pid]; ok {
		t.Stop()
	}
	r.graceTimers[pid] = time.AfterFunc(r.ReconnectGrace, func() {
		r.Mu.Lock()
		defer r.Mu.Unlock()
		cur, ok := r.Players[pid]
		if !ok || cur.Connectivity != models.GracePeriod {
			return
		}
		delete(r.graceTimers, pid)
		log.Infof("room %s: grace period expired for player %s", r.Code, pid)
		r.removeSeat(pid, fmt.Sprintf("%s left the game.", cur.Name))
	})
	r.broadcastState()
}

// HandleReconnect restores a seat within its grace window. The caller owns
// the new connection; no other state changes.
func (r *Room) HandleReconnect(playerID string, conn *websocket.Conn) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	p, ok := r.Players[playerID]
	if !ok {
		return ErrUnknownSession
	}
	if t, ok := r.graceTimers[playerID]; ok {
		t.Stop()
		delete(r.graceTimers, playerID)
	}
	p.Connectivity = models.Connected
	p.IsConnected = true
	p.Conn = conn
	log.Infof("room %s: player %s reconnected", r.Code, playerID)
	r.notifyAll(fmt.Sprintf("%s reconnected.", p.Name))
	r.broadcastState()
	return nil
}

// removeSeat permanently drops a seat. The departing hand is returned to the
// bottom of the draw pile (wild colors reset) so the closed card system stays
// intact. Assumes lock is held.
func (r *Room) removeSeat(playerID string, notice string) {
	p, ok := r.Players[playerID]
	if !ok {
		return
	}
	p.Connectivity = models.Removed
	if t, ok := r.graceTimers[playerID]; ok {
		t.Stop()
		delete(r.graceTimers, playerID)
	}
	if r.PendingUnoPenaltyPlayerID == playerID {
		r.clearUnoPenalty()
	}
	if r.Status == StatusPlaying && r.CurrentTurnPlayerID == playerID {
		r.advanceTurn(false)
	}

	for i, id := range r.SeatOrder {
		if id == playerID {
			r.SeatOrder = append(r.SeatOrder[:i], r.SeatOrder[i+1:]...)
			break
		}
	}
	delete(r.Players, playerID)

	if r.Status != StatusLobby && len(p.Hand) > 0 {
		for _, c := range p.Hand {
			if c.IsWild() {
				c.Color = models.ColorBlack
			}
		}
		r.DrawPile = append(p.Hand, r.DrawPile...)
	}

	log.Infof("room %s: seat removed for player %s, %d remain", r.Code, playerID, len(r.SeatOrder))
	if notice != "" {
		r.notifyAll(notice)
	}

	if len(r.SeatOrder) == 0 {
		if r.OnEmpty != nil {
			r.OnEmpty(r.ID)
		}
		return
	}
	if r.Status != StatusLobby && len(r.SeatOrder) < 2 {
		r.resetToLobby("Game reset (too few players).")
		return
	}
	r.broadcastState()
}

// CardCount returns the total number of cards in both piles and all hands.
func (r *Room) CardCount() int {
	total := len(r.DrawPile) + len(r.DiscardPile)
	for _, p := range r.Players {
		total += len(p.Hand)
	}
	return total
}

// seatIndex returns the seat order index for a player id, or -1.
func (r *Room) seatIndex(playerID string) int {
	for i, id := range r.SeatOrder {
		if id == playerID {
			return i
		}
	}
	return -1
}

// publishStatus pushes the current lifecycle state to the directory hook.
// Assumes lock is held.
func (r *Room) publishStatus() {
	if r.OnStatusChange != nil {
		r.OnStatusChange(r.Status)
	}
}

// broadcastState sends each connected player their own view of the room.
// Assumes lock is held.
func (r *Room) broadcastState() {
	if r.BroadcastToPlayerFn == nil {
		return
	}
	for _, pid := range r.SeatOrder {
		p := r.Players[pid]
		if p == nil || !p.IsConnected {
			continue
		}
		r.BroadcastToPlayerFn(pid, Event{Type: EventState, State: r.snapshotFor(pid)})
	}
}

// notifyAll broadcasts a room-visible notification. Assumes lock is held.
func (r *Room) notifyAll(text string) {
	if r.BroadcastFn != nil {
		r.BroadcastFn(Event{Type: EventNotification, Text: text})
	}
}

// sendToPlayer sends an event to one player. Assumes lock is held.
func (r *Room) sendToPlayer(playerID string, ev Event) {
	if r.BroadcastToPlayerFn != nil {
		r.BroadcastToPlayerFn(playerID, ev)
	}
}

// sendError reports a local validation failure privately to the offending
// client. State is never mutated on these paths. Assumes lock is held.
func (r *Room) sendError(playerID, text string) {
	r.sendToPlayer(playerID, Event{Type: EventError, Text: text})
}
