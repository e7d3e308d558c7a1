// internal/game/code.go
package game

import (
	"math/rand"
	"time"
)

// roomCodeAlphabet excludes visually ambiguous letters (I, O).
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ"

// roomCodeLength is the length of the public room identifier.
const roomCodeLength = 5

// NewRoomCode generates a 5-character uppercase room code.
func NewRoomCode() string {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomCodeAlphabet[r.Intn(len(roomCodeAlphabet))]
	}
	return string(code)
}
