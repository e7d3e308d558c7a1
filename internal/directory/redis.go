// internal/directory/redis.go
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/unolabs/uno/internal/config"
)

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// keyPrefix namespaces the room directory entries.
const keyPrefix = "uno:room:"

// defaultTTL bounds how long a directory entry survives without a refresh, so
// entries from crashed processes eventually disappear.
var defaultTTL = 24 * time.Hour

// RoomEntry is the discoverable metadata published per live room.
type RoomEntry struct {
	RoomID  uuid.UUID `json:"room_id"`
	Code    string    `json:"code"`
	Status  string    `json:"status"`
	Players int       `json:"players"`
	Updated int64     `json:"updated"`
}

// ConnectRedis initializes the global Redis client with environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := config.GetEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := config.GetEnvInt("REDIS_DB", 0)

	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// RegisterRoom publishes a new room's metadata. A registration failure is
// fatal for the room being created: the caller must tear the room down rather
// than run it undiscoverable.
func RegisterRoom(ctx context.Context, entry RoomEntry) error {
	entry.Updated = time.Now().Unix()
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal room entry: %w", err)
	}
	if err := Rdb.Set(ctx, keyPrefix+entry.Code, data, defaultTTL).Err(); err != nil {
		return fmt.Errorf("failed to register room %s: %w", entry.Code, err)
	}
	return nil
}

// UpdateRoom refreshes a room's published status and seat count. Best effort:
// an update failure is logged by the caller but does not interrupt play.
func UpdateRoom(ctx context.Context, entry RoomEntry) error {
	return RegisterRoom(ctx, entry)
}

// DeregisterRoom removes a room's directory entry when it is torn down.
func DeregisterRoom(ctx context.Context, code string) error {
	if err := Rdb.Del(ctx, keyPrefix+code).Err(); err != nil {
		return fmt.Errorf("failed to deregister room %s: %w", code, err)
	}
	return nil
}

// LookupRoom fetches the published metadata for a join code, if present.
func LookupRoom(ctx context.Context, code string) (*RoomEntry, error) {
	data, err := Rdb.Get(ctx, keyPrefix+code).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up room %s: %w", code, err)
	}
	var entry RoomEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode room entry for %s: %w", code, err)
	}
	return &entry, nil
}
