// internal/game/penalty.go
package game

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/unolabs/uno/internal/models"
)

// armUnoPenalty opens the call-out window after a player goes down to one
// card without announcing. If the window expires with no declaration and no
// catch, the culprit is automatically dealt the two penalty cards.
// Assumes lock is held.
func (r *Room) armUnoPenalty(culprit *models.Player) {
	r.clearUnoPenalty()
	r.PendingUnoPenaltyPlayerID = culprit.ID
	r.unoGen++
	gen := r.unoGen
	r.unoTimer = time.AfterFunc(r.UnoPenaltyWindow, func() {
		r.Mu.Lock()
		defer r.Mu.Unlock()
		if r.unoGen != gen || r.PendingUnoPenaltyPlayerID != culprit.ID {
			return
		}
		r.PendingUnoPenaltyPlayerID = ""
		r.unoTimer = nil
		p, ok := r.Players[culprit.ID]
		if !ok || r.Status != StatusPlaying {
			return
		}
		drawn := r.drawN(p, 2)
		p.HasSaidUno = false
		log.Infof("room %s: player %s missed the UNO window, dealt %d", r.Code, p.ID, drawn)
		r.notifyAll(fmt.Sprintf("%s forgot to say UNO! +2 cards.", p.Name))
		r.broadcastState()
	})
}

// clearUnoPenalty voids any open call-out window. Assumes lock is held.
func (r *Room) clearUnoPenalty() {
	if r.unoTimer != nil {
		r.unoTimer.Stop()
		r.unoTimer = nil
	}
	r.PendingUnoPenaltyPlayerID = ""
	r.unoGen++
}

// declareUno records the announcement. It is accepted preemptively once the
// player is down to two cards, and it closes their own exposure window if one
// is open. Assumes lock is held.
func (r *Room) declareUno(p *models.Player) {
	if r.Status != StatusPlaying {
		return
	}
	if len(p.Hand) > 2 {
		r.sendError(p.ID, "You can only say UNO with two cards or fewer.")
		return
	}
	p.HasSaidUno = true
	if r.PendingUnoPenaltyPlayerID == p.ID {
		r.clearUnoPenalty()
	}
	r.notifyAll(fmt.Sprintf("%s said UNO!", p.Name))
	r.broadcastState()
}

// catchUno lets an opponent punish an open exposure: the culprit is dealt two
// penalty cards and the window closes. A catch with no window open is an
// error back to the caller. Assumes lock is held.
func (r *Room) catchUno(caller *models.Player) {
	if r.Status != StatusPlaying {
		return
	}
	culpritID := r.PendingUnoPenaltyPlayerID
	if culpritID == "" || culpritID == caller.ID {
		r.sendError(caller.ID, "Nobody to catch.")
		return
	}
	culprit, ok := r.Players[culpritID]
	if !ok {
		r.clearUnoPenalty()
		return
	}
	r.clearUnoPenalty()
	drawn := r.drawN(culprit, 2)
	culprit.HasSaidUno = false
	log.Infof("room %s: player %s caught %s without UNO, dealt %d", r.Code, caller.ID, culpritID, drawn)
	r.notifyAll(fmt.Sprintf("%s caught %s without saying UNO! +2 cards.", caller.Name, culprit.Name))
	r.broadcastState()
}
