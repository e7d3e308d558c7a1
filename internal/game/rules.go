// internal/game/rules.go
package game

import "github.com/unolabs/uno/internal/models"

// isValidMove decides whether card may legally be played against the active
// matcher. Wild-colored cards always play. Otherwise the card must match the
// current color, or match the current type. For number cards a type match
// also requires an equal value, since a bare type match would let a "7 of
// red" answer a "3 of red". Assumes lock is held.
func (r *Room) isValidMove(card *models.Card) bool {
	if card.Color == models.ColorBlack {
		return true
	}
	if card.Color == r.CurrentColor {
		return true
	}
	if card.Type == r.CurrentType {
		if card.Type == models.TypeNumber {
			return card.Value == r.CurrentValue
		}
		return true
	}
	return false
}
