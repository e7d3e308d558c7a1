// internal/game/snapshot_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unolabs/uno/internal/models"
)

func TestSnapshotHidesOpponentHands(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 3)
	rigState(r, map[string][]*models.Card{
		ids[0]: {red(1), red(2)},
		ids[1]: {red(3), red(4)},
		ids[2]: {red(7), red(8)},
	}, red(5), []*models.Card{red(6)})

	r.Mu.Lock()
	s := r.snapshotFor(ids[0])
	r.Mu.Unlock()

	assert.Equal(t, ids[0], s.You)
	require.Len(t, s.Hand, 2, "viewer sees their own cards")
	require.Len(t, s.Players, 3)
	for _, sp := range s.Players {
		assert.Equal(t, 2, sp.CardsRemaining)
	}
	require.NotNil(t, s.DiscardTop)
	assert.Equal(t, "r5", s.DiscardTop.ID)
	assert.Equal(t, 1, s.DrawPileCount)
}

func TestSnapshotDiffersPerViewer(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 2)
	rigState(r, map[string][]*models.Card{
		ids[0]: {red(1), red(2)},
		ids[1]: {red(3)},
	}, red(5), []*models.Card{red(6)})

	r.Mu.Lock()
	s0 := r.snapshotFor(ids[0])
	s1 := r.snapshotFor(ids[1])
	r.Mu.Unlock()

	require.Len(t, s0.Hand, 2)
	require.Len(t, s1.Hand, 1)
	assert.Equal(t, "r1", s0.Hand[0].ID)
	assert.Equal(t, "r3", s1.Hand[0].ID)
}

func TestSnapshotMustPlayOrPassOnlyForCurrentViewer(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 2)
	rigState(r, map[string][]*models.Card{
		ids[0]: {&models.Card{ID: "b7", Color: models.ColorBlue, Type: models.TypeNumber, Value: 7}},
		ids[1]: {red(3), red(4)},
	}, red(5), []*models.Card{red(9)})

	act(r, ids[0], models.Action{Type: models.ActionDrawCard})

	r.Mu.Lock()
	s0 := r.snapshotFor(ids[0])
	s1 := r.snapshotFor(ids[1])
	r.Mu.Unlock()

	assert.True(t, s0.MustPlayOrPass)
	assert.False(t, s1.MustPlayOrPass)
}

func TestSnapshotShowsGraceCountdown(t *testing.T) {
	r, ids, _ := setupTestRoom(t, 3)

	r.HandleDisconnect(ids[1], false)

	r.Mu.Lock()
	s := r.snapshotFor(ids[0])
	r.Mu.Unlock()

	var found bool
	for _, sp := range s.Players {
		if sp.ID == ids[1] {
			found = true
			assert.False(t, sp.IsConnected)
			assert.Greater(t, sp.GraceSeconds, 0)
		}
	}
	require.True(t, found)
}
