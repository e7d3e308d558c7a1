// internal/game/deck.go
package game

import (
	"math/rand"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/unolabs/uno/internal/models"
)

// DeckSize is the fixed size of the closed card system: 4 colors x 19 number
// cards (one 0, two each 1-9) + 2 each of skip/reverse/draw2 per color +
// 4 wild + 4 wild4.
const DeckSize = 108

// BuildDeck produces the full 108-card deck in a deterministic composition.
// Order is unspecified; callers shuffle before use.
func BuildDeck() []*models.Card {
	deck := make([]*models.Card, 0, DeckSize)
	add := func(color models.CardColor, typ models.CardType, value int) {
		deck = append(deck, &models.Card{
			ID:    uuid.NewString(),
			Color: color,
			Type:  typ,
			Value: value,
		})
	}

	for _, color := range models.PlayColors {
		add(color, models.TypeNumber, 0)
		for v := 1; v <= 9; v++ {
			add(color, models.TypeNumber, v)
			add(color, models.TypeNumber, v)
		}
		for _, typ := range []models.CardType{models.TypeSkip, models.TypeReverse, models.TypeDraw2} {
			add(color, typ, -1)
			add(color, typ, -1)
		}
	}
	for i := 0; i < 4; i++ {
		add(models.ColorBlack, models.TypeWild, -1)
		add(models.ColorBlack, models.TypeWild4, -1)
	}
	return deck
}

// shuffleCards performs a uniform Fisher-Yates permutation in place.
func shuffleCards(r *rand.Rand, cards []*models.Card) {
	r.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// drawOne pops one card from the draw pile into the player's hand. If the
// draw pile is empty it reshuffles the discard pile (all but its top card,
// wild colors reset to black) into a fresh draw pile first. Returns nil when
// both piles are exhausted; callers must tolerate that without failing.
// Assumes lock is held.
func (r *Room) drawOne(p *models.Player) *models.Card {
	if len(r.DrawPile) == 0 {
		if len(r.DiscardPile) <= 1 {
			log.Warnf("room %s: draw and discard piles exhausted, no card for %s", r.Code, p.ID)
			return nil
		}
		top := r.DiscardPile[len(r.DiscardPile)-1]
		rest := r.DiscardPile[:len(r.DiscardPile)-1]
		for _, c := range rest {
			if c.IsWild() {
				c.Color = models.ColorBlack
			}
		}
		shuffleCards(r.rng, rest)
		r.DrawPile = rest
		r.DiscardPile = []*models.Card{top}
		log.Infof("room %s: reshuffled %d card(s) from discard into draw pile", r.Code, len(rest))
	}

	idx := len(r.DrawPile) - 1
	card := r.DrawPile[idx]
	r.DrawPile = r.DrawPile[:idx]
	p.Hand = append(p.Hand, card)
	p.CardsRemaining = len(p.Hand)
	return card
}

// drawN draws up to n cards into the player's hand and returns how many were
// actually drawn. Assumes lock is held.
func (r *Room) drawN(p *models.Player, n int) int {
	drawn := 0
	for i := 0; i < n; i++ {
		if r.drawOne(p) == nil {
			break
		}
		drawn++
	}
	return drawn
}
