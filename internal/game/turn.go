// internal/game/turn.go
package game

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/unolabs/uno/internal/models"
)

// advanceTurn rotates the current turn one seat in the active direction, or
// two when skip is set. Starting a new turn bumps the turn generation so any
// timer armed for the previous turn becomes stale. If there is an outstanding
// draw stack, the incoming player is told they may stack when their hand
// allows it; otherwise they are put on the forced-draw clock.
// Assumes lock is held.
func (r *Room) advanceTurn(skip bool) {
	r.cancelAutoDraw()
	r.drewThisTurn = false

	n := len(r.SeatOrder)
	if n == 0 {
		r.CurrentTurnPlayerID = ""
		return
	}
	step := r.Direction
	if skip {
		step *= 2
	}
	idx := r.seatIndex(r.CurrentTurnPlayerID)
	if idx < 0 {
		idx = 0
		step = 0
	}
	// True modulo: ((i + step) % n + n) % n stays in range for negative steps.
	idx = ((idx+step)%n + n) % n
	r.CurrentTurnPlayerID = r.SeatOrder[idx]
	r.turnGen++

	if r.DrawStack > 0 {
		if r.canStackDraw() {
			// Holding a chaining card suspends the forced draw; the choice to
			// stack or take the stack stays with the player.
			r.sendToPlayer(r.CurrentTurnPlayerID, Event{Type: EventNotification, Text: "You can stack a Draw Two!"})
		} else {
			r.scheduleAutoDraw()
		}
	}
}

// canStackDraw reports whether the current player holds a card that may
// extend the pending draw stack. Only draw2-originated stacks are chainable.
// Assumes lock is held.
func (r *Room) canStackDraw() bool {
	if r.drawStackType != models.TypeDraw2 {
		return false
	}
	p, ok := r.Players[r.CurrentTurnPlayerID]
	if !ok {
		return false
	}
	for _, c := range p.Hand {
		if c.Type == models.TypeDraw2 {
			return true
		}
	}
	return false
}

// scheduleAutoDraw arms the forced-draw timer for the current player. If they
// neither stack nor draw within the grace window, the stack is resolved for
// them. Assumes lock is held.
func (r *Room) scheduleAutoDraw() {
	gen := r.turnGen
	pid := r.CurrentTurnPlayerID
	r.autoDrawTimer = time.AfterFunc(r.AutoDrawGrace, func() {
		r.Mu.Lock()
		defer r.Mu.Unlock()
		if r.turnGen != gen || r.Status != StatusPlaying {
			return
		}
		if r.DrawStack == 0 || r.CurrentTurnPlayerID != pid {
			return
		}
		p, ok := r.Players[pid]
		if !ok {
			return
		}
		n := r.DrawStack
		r.DrawStack = 0
		r.drawStackType = ""
		drawn := r.drawN(p, n)
		p.HasSaidUno = false
		if r.PendingUnoPenaltyPlayerID == pid && len(p.Hand) != 1 {
			r.clearUnoPenalty()
		}
		log.Infof("room %s: auto-drew %d card(s) for player %s", r.Code, drawn, pid)
		r.notifyAll(fmt.Sprintf("%s drew %d card(s).", p.Name, drawn))
		r.advanceTurn(false)
		r.broadcastState()
	})
}

// cancelAutoDraw stops the forced-draw timer if armed. The generation guard
// makes a late fire harmless regardless. Assumes lock is held.
func (r *Room) cancelAutoDraw() {
	if r.autoDrawTimer != nil {
		r.autoDrawTimer.Stop()
		r.autoDrawTimer = nil
	}
}
