// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/unolabs/uno/internal/auth"
	"github.com/unolabs/uno/internal/config"
	"github.com/unolabs/uno/internal/database"
	"github.com/unolabs/uno/internal/directory"
	"github.com/unolabs/uno/internal/handlers"
	"github.com/unolabs/uno/internal/middleware"
)

func main() {
	// Persistent signing keys keep reconnect tokens valid across restarts;
	// without them each process generates an ephemeral pair.
	privPath := config.GetEnv("JWT_PRIVATE_KEY_FILE", "")
	pubPath := config.GetEnv("JWT_PUBLIC_KEY_FILE", "")
	if privPath != "" && pubPath != "" {
		if err := auth.InitFromPath(privPath, pubPath); err != nil {
			log.Fatalf("auth keys: %v", err)
		}
	} else {
		auth.Init()
	}

	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(config.GetEnv("LOG_LEVEL", "debug")); err == nil {
		logger.SetLevel(lvl)
	}

	if err := directory.ConnectRedis(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	rs := handlers.NewRoomServer(logger)
	if config.GetEnvBool("MATCH_HISTORY_ENABLED", false) {
		database.ConnectDB()
		rs.HistoryEnabled = true
	}

	mux := http.NewServeMux()

	withLog := middleware.LogMiddleware(logger)

	mux.Handle("/health", withLog(handlers.HealthHandler()))
	mux.Handle("/rooms", withLog(handlers.CreateRoomHandler(rs)))

	// /rooms/{code} serves metadata, /rooms/{code}/ws upgrades to WebSocket,
	// /rooms/{code}/history serves recorded outcomes.
	mux.Handle("/rooms/", withLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/ws"):
			handlers.RoomWSHandler(logger, rs)(w, r)
		case strings.HasSuffix(r.URL.Path, "/history"):
			handlers.MatchHistoryHandler(rs)(w, r)
		default:
			handlers.GetRoomHandler(rs)(w, r)
		}
	})))

	rs.StartSweeper(context.Background(),
		config.GetEnvDuration("ROOM_SWEEP_INTERVAL", time.Minute),
		config.GetEnvDuration("ROOM_IDLE_TTL", 10*time.Minute))

	addr := ":" + config.GetEnv("PORT", "8080")
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
