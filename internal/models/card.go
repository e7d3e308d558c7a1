// internal/models/card.go
package models

// CardColor is one of the four play colors or the neutral "black" carried by
// wild cards until a color is chosen for them.
type CardColor string

const (
	ColorRed    CardColor = "red"
	ColorBlue   CardColor = "blue"
	ColorGreen  CardColor = "green"
	ColorYellow CardColor = "yellow"
	ColorBlack  CardColor = "black"
)

// PlayColors lists the four choosable colors, in a fixed order.
var PlayColors = []CardColor{ColorRed, ColorBlue, ColorGreen, ColorYellow}

// IsPlayColor reports whether c is one of the four choosable colors.
func (c CardColor) IsPlayColor() bool {
	switch c {
	case ColorRed, ColorBlue, ColorGreen, ColorYellow:
		return true
	}
	return false
}

// CardType identifies the card's behavior.
type CardType string

const (
	TypeNumber  CardType = "number"
	TypeSkip    CardType = "skip"
	TypeReverse CardType = "reverse"
	TypeDraw2   CardType = "draw2"
	TypeWild    CardType = "wild"
	TypeWild4   CardType = "wild4"
)

// Card is a single card. The ID is an opaque unique token. Value is 0-9 for
// number cards and -1 for everything else. A wild/wild4 card's Color is
// mutated to the chosen color while it sits on the discard pile and reset to
// black whenever it returns to a shared pile.
type Card struct {
	ID    string    `json:"id"`
	Color CardColor `json:"color"`
	Type  CardType  `json:"type"`
	Value int       `json:"value"`
}

// IsWild reports whether the card is a wild or wild4.
func (c *Card) IsWild() bool {
	return c.Type == TypeWild || c.Type == TypeWild4
}
