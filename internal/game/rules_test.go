// internal/game/rules_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unolabs/uno/internal/models"
)

func TestIsValidMove(t *testing.T) {
	r := NewRoom("TESTT")
	r.CurrentColor = models.ColorRed
	r.CurrentType = models.TypeNumber
	r.CurrentValue = 5

	cases := []struct {
		name string
		card models.Card
		want bool
	}{
		{"wild always plays", models.Card{Color: models.ColorBlack, Type: models.TypeWild, Value: -1}, true},
		{"wild draw four always plays", models.Card{Color: models.ColorBlack, Type: models.TypeWild4, Value: -1}, true},
		{"color match", models.Card{Color: models.ColorRed, Type: models.TypeNumber, Value: 9}, true},
		{"color match non-number", models.Card{Color: models.ColorRed, Type: models.TypeSkip, Value: -1}, true},
		{"value match", models.Card{Color: models.ColorBlue, Type: models.TypeNumber, Value: 5}, true},
		{"number mismatch both", models.Card{Color: models.ColorBlue, Type: models.TypeNumber, Value: 7}, false},
		{"wrong color action", models.Card{Color: models.ColorGreen, Type: models.TypeDraw2, Value: -1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.isValidMove(&tc.card))
		})
	}
}

func TestIsValidMoveActionTypeMatch(t *testing.T) {
	r := NewRoom("TESTT")
	r.CurrentColor = models.ColorRed
	r.CurrentType = models.TypeSkip
	r.CurrentValue = -1

	// A skip of another color matches on type alone.
	assert.True(t, r.isValidMove(&models.Card{Color: models.ColorBlue, Type: models.TypeSkip, Value: -1}))
	// A number of another color does not.
	assert.False(t, r.isValidMove(&models.Card{Color: models.ColorBlue, Type: models.TypeNumber, Value: 4}))
}

func TestIsValidMoveAgainstChosenWildColor(t *testing.T) {
	r := NewRoom("TESTT")
	// A wild was played and blue was chosen.
	r.CurrentColor = models.ColorBlue
	r.CurrentType = models.TypeWild
	r.CurrentValue = -1

	assert.True(t, r.isValidMove(&models.Card{Color: models.ColorBlue, Type: models.TypeNumber, Value: 2}))
	assert.False(t, r.isValidMove(&models.Card{Color: models.ColorRed, Type: models.TypeNumber, Value: 2}))
}
