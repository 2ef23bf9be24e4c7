package bot

import (
	"context"
	"sync"
	"time"

	"tycoon_backend/internal/board"
	"tycoon_backend/internal/config"
	"tycoon_backend/internal/domain"
	"tycoon_backend/internal/engine"
	"tycoon_backend/internal/logger"
	"tycoon_backend/internal/metrics"
	"tycoon_backend/internal/repository"
)

// maxStepsPerTurn bounds the drive loop so a marker the bot cannot clear
// never spins forever.
const maxStepsPerTurn = 25

// Scheduler drives the turns of bot players. A ticker sweeps every active
// game; the engine additionally wakes it the moment a turn passes to a
// bot, so bot turns start without waiting out the tick.
type Scheduler struct {
	eng      *engine.Engine
	games    *repository.GameRepository
	players  *repository.PlayerRepository
	registry *Registry
	cfg      config.BotSettings

	wake chan int64

	mu       sync.Mutex
	inFlight map[int64]bool
}

func NewScheduler(eng *engine.Engine, games *repository.GameRepository, players *repository.PlayerRepository, registry *Registry, cfg config.BotSettings) *Scheduler {
	return &Scheduler{
		eng:      eng,
		games:    games,
		players:  players,
		registry: registry,
		cfg:      cfg,
		wake:     make(chan int64, 64),
		inFlight: make(map[int64]bool),
	}
}

// Wake implements engine.Waker. Never blocks; a full channel is fine
// because the sweep will pick the game up anyway.
func (s *Scheduler) Wake(gameID int64) {
	select {
	case s.wake <- gameID:
	default:
	}
}

// Run sweeps until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	logger.Info("bot scheduler started", "tick", s.cfg.TickInterval)
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("bot scheduler stopped")
			return
		case gameID := <-s.wake:
			s.dispatch(ctx, gameID)
		case <-ticker.C:
			ids, err := s.games.ListActive(ctx)
			if err != nil {
				logger.Warn("scheduler: list active games", "error", err)
				continue
			}
			for _, id := range ids {
				s.dispatch(ctx, id)
			}
		}
	}
}

// dispatch starts a drive goroutine for the game unless one is already
// running.
func (s *Scheduler) dispatch(ctx context.Context, gameID int64) {
	s.mu.Lock()
	if s.inFlight[gameID] {
		s.mu.Unlock()
		return
	}
	s.inFlight[gameID] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, gameID)
			s.mu.Unlock()
		}()
		s.driveGame(ctx, gameID)
	}()
}

// driveGame plays the current bot's whole turn for one game, re-reading
// the persisted state before every step. A panic in the decision path is
// contained to this game: it is logged, counted and the turn force-ended
// so the table does not stall.
func (s *Scheduler) driveGame(ctx context.Context, gameID int64) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("bot turn panicked", "game", gameID, "panic", r)
			metrics.BotTurnFailures.Inc()
			if err := s.eng.ForceEndTurn(ctx, gameID); err != nil {
				logger.Error("force end after panic", "game", gameID, "error", err)
			}
		}
	}()

	for step := 0; step < maxStepsPerTurn; step++ {
		g, err := s.games.GetByID(ctx, gameID)
		if err != nil || g == nil || g.Status != domain.GameStatusActive || g.CurrentPlayerID == nil {
			return
		}
		p, err := s.players.GetByID(ctx, *g.CurrentPlayerID)
		if err != nil || p == nil || !p.IsBot {
			return
		}
		policy := s.registry.Lookup(ctx, p.ID)
		if policy == nil {
			return
		}

		if s.cfg.ThinkDelay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.cfg.ThinkDelay):
			}
		}

		done, err := s.step(ctx, g, p, policy)
		if err != nil {
			// The state may have moved under us (a human admin, another
			// process). Give up this pass; the next sweep re-reads.
			logger.Warn("bot step", "game", gameID, "player", p.ID, "action", g.ExpectedAction, "error", err)
			metrics.BotTurnFailures.Inc()
			return
		}
		if done {
			metrics.BotTurnsTotal.WithLabelValues(string(p.BotArchetype)).Inc()
			return
		}
	}

	logger.Error("bot turn exceeded step limit", "game", gameID)
	metrics.BotTurnFailures.Inc()
	if err := s.eng.ForceEndTurn(ctx, gameID); err != nil {
		logger.Error("force end after step limit", "game", gameID, "error", err)
	}
}

// step performs exactly one engine call for the bot's current marker.
// done is true when the turn has been handed over.
func (s *Scheduler) step(ctx context.Context, g *domain.Game, p *domain.Player, policy *Policy) (done bool, err error) {
	switch g.ExpectedAction {
	case domain.ActionRollDice, domain.ActionRollAgain:
		_, err = s.eng.RollAndMove(ctx, g.ID, p.ID)
		return false, err

	case domain.ActionNone:
		// Roll spent, nothing owed: portfolio pass, then hand over.
		s.investmentPass(ctx, g, p, policy)
		if err := s.eng.EndTurn(ctx, g.ID, p.ID); err != nil {
			return false, err
		}
		return true, nil

	case domain.ActionJailPrompt:
		if policy.JailChoice(p, s.eng.Rules().JailFine, s.eng.Rules().MaxJailTurns) {
			_, err = s.eng.ResolvePendingAction(ctx, g.ID, p.ID, engine.Choice{PayFine: true})
			return false, err
		}
		_, err = s.eng.RollAndMove(ctx, g.ID, p.ID)
		return false, err

	case domain.ActionBuyOrPass:
		buy := false
		if g.ActionDetails != nil {
			buy = policy.ShouldBuy(p, board.Get(g.ActionDetails.BoardPos))
		}
		_, err = s.eng.ResolvePendingAction(ctx, g.ID, p.ID, engine.Choice{Buy: buy})
		return false, err

	case domain.ActionDrawChance, domain.ActionDrawChest:
		_, err = s.eng.ResolvePendingAction(ctx, g.ID, p.ID, engine.Choice{})
		return false, err

	case domain.ActionPayTax:
		usePercent := false
		if g.ActionDetails != nil {
			space := board.Get(g.ActionDetails.BoardPos)
			if space.TaxPercent > 0 {
				if worth, werr := s.eng.NetWorth(ctx, p); werr == nil {
					usePercent = policy.TaxChoice(worth, space.TaxAmount, int64(space.TaxPercent))
				}
			}
		}
		_, err = s.eng.ResolvePendingAction(ctx, g.ID, p.ID, engine.Choice{TaxPercent: usePercent})
		return false, err

	case domain.ActionRaiseFunds:
		// Bots always liquidate automatically; the resolver walks credit,
		// secured draws and mortgages before conceding bankruptcy.
		out, rerr := s.eng.ResolvePendingAction(ctx, g.ID, p.ID, engine.Choice{Auto: true})
		if rerr != nil {
			return false, rerr
		}
		if out.Bankrupt {
			s.registry.Remove(p.ID)
			metrics.BotTurnsTotal.WithLabelValues(string(p.BotArchetype)).Inc()
			return true, nil
		}
		return false, nil

	default:
		return false, engine.ErrInvalidTransition
	}
}

// investmentPass lets the bot spend idle end-of-turn time on its
// portfolio: retiring the most expensive affordable loan, or parking
// surplus cash in a term deposit. Errors are logged and swallowed; the
// pass is optional flavor, never turn-blocking.
func (s *Scheduler) investmentPass(ctx context.Context, g *domain.Game, p *domain.Player, policy *Policy) {
	if !policy.WantsInvestment() {
		return
	}

	loans, err := s.eng.Store().LoansOf(ctx, p.ID)
	if err != nil {
		logger.Warn("investment pass: list loans", "player", p.ID, "error", err)
		return
	}
	if loan := policy.PickLoanToPrepay(p, loans); loan != nil {
		if err := s.eng.PrepayLoan(ctx, g.ID, p.ID, loan.ID); err != nil {
			logger.Warn("investment pass: prepay", "player", p.ID, "loan", loan.ID, "error", err)
		}
		return
	}

	if amount := policy.DepositAmount(p); amount > 0 {
		if err := s.eng.OpenDeposit(ctx, g.ID, p.ID, amount, policy.DepositLaps()); err != nil {
			logger.Warn("investment pass: deposit", "player", p.ID, "error", err)
		}
	}
}
