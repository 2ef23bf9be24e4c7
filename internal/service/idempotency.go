package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tycoon_backend/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

var ErrDuplicateIntent = errors.New("intent already applied this turn")

// intentTTL outlives any realistic turn; the key space is per turn number
// so stale keys never collide with live ones.
const intentTTL = 10 * time.Minute

// IntentGuard deduplicates turn intents keyed by game, player, turn number
// and intent kind. Without Redis it fails open: the engine's marker checks
// still reject every genuinely invalid replay, the guard only suppresses
// the noisy double-submit case.
type IntentGuard struct {
	rdb *redis.Client
}

func NewIntentGuard(addr, password string, db int) *IntentGuard {
	if addr == "" {
		return &IntentGuard{}
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("intent guard: redis unavailable, deduplication disabled", "error", err)
		return &IntentGuard{}
	}
	return &IntentGuard{rdb: rdb}
}

// Claim marks the intent as seen. Returns ErrDuplicateIntent when the same
// intent was already claimed this turn.
func (g *IntentGuard) Claim(ctx context.Context, gameID, playerID int64, turnNumber int, kind string) error {
	if g.rdb == nil {
		return nil
	}
	key := fmt.Sprintf("intent:%d:%d:%d:%s", gameID, playerID, turnNumber, kind)
	ok, err := g.rdb.SetNX(ctx, key, 1, intentTTL).Result()
	if err != nil {
		// Redis trouble must not block play.
		logger.Warn("intent guard: setnx", "key", key, "error", err)
		return nil
	}
	if !ok {
		return ErrDuplicateIntent
	}
	return nil
}

// Release frees the claim so a failed intent can be retried within the
// same turn.
func (g *IntentGuard) Release(ctx context.Context, gameID, playerID int64, turnNumber int, kind string) {
	if g.rdb == nil {
		return
	}
	key := fmt.Sprintf("intent:%d:%d:%d:%s", gameID, playerID, turnNumber, kind)
	if err := g.rdb.Del(ctx, key).Err(); err != nil {
		logger.Warn("intent guard: release", "key", key, "error", err)
	}
}
