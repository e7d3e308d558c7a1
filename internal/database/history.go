// internal/database/history.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MatchResult is one finished match row plus its per-seat outcomes.
type MatchResult struct {
	RoomID   uuid.UUID
	RoomCode string
	Winner   string
	Players  []MatchPlayerResult
}

// MatchPlayerResult is the final standing of one seat.
type MatchPlayerResult struct {
	Name           string `json:"name"`
	CardsRemaining int    `json:"cardsRemaining"`
	DidWin         bool   `json:"didWin"`
}

// RecordMatch persists the outcome of a finished game. It runs after the
// in-memory room has already told its players the result, so a write failure
// only costs the history row, never the game.
func RecordMatch(ctx context.Context, result MatchResult) error {
	standings, err := json.Marshal(result.Players)
	if err != nil {
		return fmt.Errorf("failed to marshal standings: %w", err)
	}

	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsert := `
			INSERT INTO matches (id, room_code, winner, standings, finished_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (id)
			DO UPDATE SET winner = EXCLUDED.winner, standings = EXCLUDED.standings, finished_at = NOW()
		`
		_, e := tx.Exec(ctx, upsert, result.RoomID, result.RoomCode, result.Winner, standings)
		return e
	})
	if err != nil {
		return fmt.Errorf("tx upsert match: %w", err)
	}
	return nil
}

// RecentMatches loads the most recent finished matches for a room code.
func RecentMatches(ctx context.Context, roomCode string, limit int) ([]MatchResult, error) {
	q := `
		SELECT id, room_code, winner, standings
		FROM matches
		WHERE room_code = $1
		ORDER BY finished_at DESC
		LIMIT $2
	`
	rows, err := DB.Query(ctx, q, roomCode, limit)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var out []MatchResult
	for rows.Next() {
		var m MatchResult
		var standings []byte
		if err := rows.Scan(&m.RoomID, &m.RoomCode, &m.Winner, &standings); err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		if err := json.Unmarshal(standings, &m.Players); err != nil {
			return nil, fmt.Errorf("decode standings: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
