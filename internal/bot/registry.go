package bot

import (
	"context"
	"sync"

	"tycoon_backend/internal/domain"
	"tycoon_backend/internal/engine"
	"tycoon_backend/internal/logger"
	"tycoon_backend/internal/repository"
)

// Registry holds a Policy per bot player. It is a cache over the player
// rows, not a source of truth: Rebuild reconstructs it from the database
// after a restart, and a missing entry is lazily restored on lookup.
type Registry struct {
	players *repository.PlayerRepository

	mu       sync.RWMutex
	policies map[int64]*Policy
}

func NewRegistry(players *repository.PlayerRepository) *Registry {
	return &Registry{
		players:  players,
		policies: make(map[int64]*Policy),
	}
}

// Rebuild repopulates the registry from the bot players of every
// unfinished game. Called once at startup.
func (r *Registry) Rebuild(ctx context.Context) error {
	bots, err := r.players.ListBots(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies = make(map[int64]*Policy, len(bots))
	for _, b := range bots {
		r.policies[b.ID] = NewPolicy(b.BotArchetype, b.BotDifficulty)
	}
	logger.Info("agent registry rebuilt", "bots", len(bots))
	return nil
}

// Register adds a policy for a newly created bot.
func (r *Registry) Register(p *domain.Player) {
	if !p.IsBot {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[p.ID] = NewPolicy(p.BotArchetype, p.BotDifficulty)
}

// Remove drops a bot that left the game.
func (r *Registry) Remove(playerID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.policies, playerID)
}

// Lookup returns the policy for a bot player, restoring it from the
// player row when the cache misses.
func (r *Registry) Lookup(ctx context.Context, playerID int64) *Policy {
	r.mu.RLock()
	pl, ok := r.policies[playerID]
	r.mu.RUnlock()
	if ok {
		return pl
	}

	p, err := r.players.GetByID(ctx, playerID)
	if err != nil || p == nil || !p.IsBot {
		return nil
	}
	pl = NewPolicy(p.BotArchetype, p.BotDifficulty)
	r.mu.Lock()
	r.policies[playerID] = pl
	r.mu.Unlock()
	return pl
}

// BidderFor implements engine.BidderSource. Humans get nil and sit
// auctions out.
func (r *Registry) BidderFor(playerID int64) engine.Bidder {
	r.mu.RLock()
	pl, ok := r.policies[playerID]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return pl
}

var _ engine.BidderSource = (*Registry)(nil)
