// internal/game/penalty_test.go
package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unolabs/uno/internal/models"
)

func TestCatchUnoDealsPenalty(t *testing.T) {
	r, ids, mb := setupTestRoom(t, 2)
	rigState(r, map[string][]*models.Card{
		ids[0]: {red(1), red(2)},
		ids[1]: {red(3), red(4)},
	}, red(5), []*models.Card{red(6), red(9)})

	// Playing down to one card without announcing opens the window.
	act(r, ids[0], models.Action{Type: models.ActionPlayCard, PlayCard: &models.PlayCardPayload{CardID: "r1"}})
	assert.Equal(t, ids[0], r.PendingUnoPenaltyPlayerID)

	act(r, ids[1], models.Action{Type: models.ActionCatchUno})

	assert.Empty(t, r.PendingUnoPenaltyPlayerID)
	assert.Len(t, r.Players[ids[0]].Hand, 3, "culprit draws two penalty cards")
	require.NotNil(t, mb.lastNotification())
	assert.Contains(t, mb.lastNotification().Text, "caught")
}

func TestUnoWindowExpiryAutoPenalty(t *testing.T) {
	r, ids, mb := setupTestRoom(t, 2)
	rigState(r, map[string][]*models.Card{
		ids[0]: {red(1), red(2)},
		ids[1]: {red(3), red(4)},
	}, red(5), []*models.Card{red(6), red(9)})

	act(r, ids[0], models.Action{Type: models.ActionPlayCard, PlayCard: &models.PlayCardPayload{CardID: "r1"}})
	require.Equal(t, ids[0], r.PendingUnoPenaltyPlayerID)

	time.Sleep(150 * time.Millisecond)

	r.Mu.Lock()
	pending := r.PendingUnoPenaltyPlayerID
	handSize := len(r.Players[ids[0]].Hand)
	r.Mu.Unlock()
	assert.Empty(t, pending, "window closes on its own")
	assert.Equal(t, 3, handSize, "expiry deals the two penalty cards unprompted")
	require.NotNil(t, mb.lastNotification())
	assert.Contains(t, mb.lastNotification().Text, "forgot to say UNO")

	// A catch after the automatic penalty finds no window and deals nothing.
	act(r, ids[1], models.Action{Type: models.ActionCatchUno})
	assert.Len(t, r.Players[ids[0]].Hand, 3)
}

func TestUnoWindowExpiryNotDoubledAfterCatch(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 2)
	rigState(r, map[string][]*models.Card{
		ids[0]: {red(1), red(2)},
		ids[1]: {red(3), red(4)},
	}, red(5), []*models.Card{red(6), red(9), red(7), red(8)})

	act(r, ids[0], models.Action{Type: models.ActionPlayCard, PlayCard: &models.PlayCardPayload{CardID: "r1"}})
	act(r, ids[1], models.Action{Type: models.ActionCatchUno})
	require.Len(t, r.Players[ids[0]].Hand, 3)

	// The disarmed expiry timer must not add a second penalty.
	time.Sleep(150 * time.Millisecond)
	r.Mu.Lock()
	defer r.Mu.Unlock()
	assert.Len(t, r.Players[ids[0]].Hand, 3)
}

func TestSayUnoPreemptsCatch(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 2)
	rigState(r, map[string][]*models.Card{
		ids[0]: {red(1), red(2)},
		ids[1]: {red(3), red(4)},
	}, red(5), []*models.Card{red(6), red(9)})

	// Announcing with two cards arms the declaration before the play.
	act(r, ids[0], models.Action{Type: models.ActionSayUno})
	assert.True(t, r.Players[ids[0]].HasSaidUno)

	act(r, ids[0], models.Action{Type: models.ActionPlayCard, PlayCard: &models.PlayCardPayload{CardID: "r1"}})
	assert.Empty(t, r.PendingUnoPenaltyPlayerID, "no window opens after a declaration")

	act(r, ids[1], models.Action{Type: models.ActionCatchUno})
	assert.Len(t, r.Players[ids[0]].Hand, 1)
}

func TestSayUnoAfterPlayClosesWindow(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 2)
	rigState(r, map[string][]*models.Card{
		ids[0]: {red(1), red(2)},
		ids[1]: {red(3), red(4)},
	}, red(5), []*models.Card{red(6), red(9)})

	act(r, ids[0], models.Action{Type: models.ActionPlayCard, PlayCard: &models.PlayCardPayload{CardID: "r1"}})
	require.Equal(t, ids[0], r.PendingUnoPenaltyPlayerID)

	// A late but in-window announcement still saves the culprit.
	act(r, ids[0], models.Action{Type: models.ActionSayUno})
	assert.Empty(t, r.PendingUnoPenaltyPlayerID)

	act(r, ids[1], models.Action{Type: models.ActionCatchUno})
	assert.Len(t, r.Players[ids[0]].Hand, 1)
}

func TestSayUnoRefusedWithLargeHand(t *testing.T) {
	r, ids, mb := setupTestRoom(t, 2)
	rigState(r, map[string][]*models.Card{
		ids[0]: {red(1), red(2), red(6), red(7)},
		ids[1]: {red(3), red(4)},
	}, red(5), []*models.Card{red(9)})

	act(r, ids[0], models.Action{Type: models.ActionSayUno})

	assert.False(t, r.Players[ids[0]].HasSaidUno)
	require.NotNil(t, mb.lastError(ids[0]))
}

func TestCatchWithNoWindowIsRefused(t *testing.T) {
	r, ids, mb := setupTestRoom(t, 2)
	rigState(r, map[string][]*models.Card{
		ids[0]: {red(1), red(2)},
		ids[1]: {red(3), red(4)},
	}, red(5), []*models.Card{red(9)})

	act(r, ids[1], models.Action{Type: models.ActionCatchUno})

	require.NotNil(t, mb.lastError(ids[1]))
	assert.Equal(t, "Nobody to catch.", mb.lastError(ids[1]).Text)
}

func TestForcedDrawClearsExposure(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 3)
	d2 := &models.Card{ID: "d2", Color: models.ColorRed, Type: models.TypeDraw2, Value: -1}
	rigState(r, map[string][]*models.Card{
		ids[0]: {red(1), red(2)},
		ids[1]: {d2, red(4)},
		ids[2]: {red(7), red(8)},
	}, red(5), []*models.Card{
		red(6), red(9),
		{ID: "g1", Color: models.ColorGreen, Type: models.TypeNumber, Value: 1},
		{ID: "g2", Color: models.ColorGreen, Type: models.TypeNumber, Value: 2},
	})

	act(r, ids[0], models.Action{Type: models.ActionPlayCard, PlayCard: &models.PlayCardPayload{CardID: "r1"}})
	act(r, ids[1], models.Action{Type: models.ActionPlayCard, PlayCard: &models.PlayCardPayload{CardID: "d2"}})
	require.Equal(t, ids[1], r.PendingUnoPenaltyPlayerID, "second player is exposed at one card")

	// The victim of the draw two resolves it; the culprit's window stays
	// open since their hand is still one card.
	act(r, ids[2], models.Action{Type: models.ActionDrawCard})
	assert.Equal(t, ids[1], r.PendingUnoPenaltyPlayerID)

	// Catching still works across turn boundaries within the window.
	act(r, ids[0], models.Action{Type: models.ActionCatchUno})
	assert.Len(t, r.Players[ids[1]].Hand, 3)
	assert.Empty(t, r.PendingUnoPenaltyPlayerID)
}
