package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"

	"tycoon_backend/internal/db"
	"tycoon_backend/internal/repository"
	"tycoon_backend/internal/service"
)

// Smoke-tests the realtime channel against a running app: authenticates a
// seeded user, opens the socket for their latest game and exercises the
// ping and roll intents.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}
	service.InitJWT(secret)

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	pool := db.Connect(dsn)
	defer pool.Close()

	ctx := context.Background()
	users := repository.NewUserRepository(pool)
	games := repository.NewGameRepository(pool)

	u, err := users.GetByUsername(ctx, "demo_alice")
	if err != nil || u == nil {
		log.Fatal("demo_alice not found; run seed_demo first")
	}

	ids, err := games.ListActive(ctx)
	if err != nil || len(ids) == 0 {
		log.Fatal("no active games; run seed_demo first")
	}
	gameID := ids[len(ids)-1]

	token, err := service.GenerateJWT(u.ID)
	if err != nil {
		log.Fatalf("gen token: %v", err)
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	wsURL := fmt.Sprintf("ws://127.0.0.1:%s/ws?token=%s&game=%d", port, token, gameID)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	send := func(payload map[string]any) {
		b, _ := json.Marshal(payload)
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Fatalf("write: %v", err)
		}
	}

	send(map[string]any{"type": "ping"})
	send(map[string]any{"type": "roll_dice"})

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(time.Now().Add(time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			continue
		}
		fmt.Printf("<- %s\n", msg)
	}
	log.Println("smoke run finished")
}
