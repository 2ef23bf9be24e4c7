package engine

import (
	"context"
	"fmt"
	"time"

	"tycoon_backend/internal/board"
	"tycoon_backend/internal/config"
	"tycoon_backend/internal/domain"
	"tycoon_backend/internal/logger"
	"tycoon_backend/internal/metrics"
)

// Engine is the turn state machine. Both drivers - realtime client events
// and the bot scheduler - terminate in the same three entry points
// (RollAndMove, ResolvePendingAction, EndTurn), each of which re-validates
// the persisted game state before acting and holds the per-game lock for
// the duration of the operation.
type Engine struct {
	store    Store
	notifier Notifier
	rules    config.GameRules
	locks    *LockRegistry
	roller   Roller
	decks    *Decks
	economy  Economy
	bidders  BidderSource
	waker    Waker
	winCheck WinChecker
}

// WinChecker is the optional external game-mode win condition, evaluated
// after the built-in ones.
type WinChecker interface {
	CheckWin(ctx context.Context, g *domain.Game, players []*domain.Player) (winnerID *int64, ended bool)
}

func New(store Store, notifier Notifier, rules config.GameRules) *Engine {
	return &Engine{
		store:    store,
		notifier: notifier,
		rules:    rules,
		locks:    NewLockRegistry(),
		roller:   NewRoller(),
		decks:    NewDecks(time.Now().UnixNano()),
		economy:  NewCycleEconomy(),
	}
}

// SetBidderSource wires the auction bidder lookup (the agent registry).
func (e *Engine) SetBidderSource(s BidderSource) { e.bidders = s }

// SetWaker wires the agent scheduler wake-up hook.
func (e *Engine) SetWaker(w Waker) { e.waker = w }

// SetWinChecker wires an external game-mode win condition.
func (e *Engine) SetWinChecker(w WinChecker) { e.winCheck = w }

// Locks exposes the per-game lock registry so lifecycle operations outside
// the engine (start, admin reset) serialize with turns.
func (e *Engine) Locks() *LockRegistry { return e.locks }

// Rules exposes the fixed game parameters.
func (e *Engine) Rules() config.GameRules { return e.rules }

// WakeBots nudges the agent scheduler for a game, if one is wired.
func (e *Engine) WakeBots(gameID int64) {
	if e.waker != nil {
		e.waker.Wake(gameID)
	}
}

// Store exposes the persistence layer for read-side collaborators.
func (e *Engine) Store() Store { return e.store }

// EconomyState returns the current phase and rates for external readers.
func (e *Engine) EconomyState() (Phase, int, int) {
	return e.economy.CurrentPhase(), e.economy.InterestRateBP(), e.economy.InflationRateBP()
}

// RollOutcome describes what a single roll did.
type RollOutcome struct {
	Die1         int               `json:"die1"`
	Die2         int               `json:"die2"`
	Doubles      bool              `json:"doubles"`
	Position     int               `json:"position"`
	PassedGo     bool              `json:"passed_go"`
	Jailed       bool              `json:"jailed"`
	LeftJail     bool              `json:"left_jail"`
	StayedInJail bool              `json:"stayed_in_jail"`
	Pending      domain.ActionType `json:"pending"`
	RollAgain    bool              `json:"roll_again"`
}

// RollAndMove rolls two dice for the current player and applies the full
// movement cascade: jail handling, doubles tracking, GO salary, landing
// dispatch. It returns what happened and which input, if any, is now owed.
func (e *Engine) RollAndMove(ctx context.Context, gameID, playerID int64) (*RollOutcome, error) {
	unlock := e.locks.Lock(gameID)
	defer unlock()

	g, p, err := e.loadTurnHolder(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}
	switch g.ExpectedAction {
	case domain.ActionRollDice, domain.ActionRollAgain, domain.ActionJailPrompt:
	default:
		// A none marker means the roll is spent; the turn waits on EndTurn.
		return nil, ErrInvalidTransition
	}

	d1, d2 := e.roller.Roll()
	out := &RollOutcome{Die1: d1, Die2: d2, Doubles: d1 == d2}
	e.emit(ctx, gameID, ref(playerID), domain.EventDiceRolled,
		map[string]any{"die1": d1, "die2": d2, "doubles": out.Doubles})

	if p.InJail {
		return out, e.rollFromJail(ctx, g, p, out)
	}

	if out.Doubles {
		p.DoublesCount++
		if p.DoublesCount >= 3 {
			// Third consecutive double: straight to jail, no fourth roll.
			e.sendToJail(ctx, g, p, "three_doubles")
			out.Jailed = true
			out.Position = p.Position
			g.ExpectedAction = domain.ActionNone
			g.ActionDetails = nil
			if err := e.store.SavePlayer(ctx, p); err != nil {
				return nil, err
			}
			return out, e.store.SaveGame(ctx, g)
		}
	} else {
		p.DoublesCount = 0
	}

	return out, e.moveAndDispatch(ctx, g, p, d1+d2, out)
}

// moveAndDispatch advances the player, credits a GO crossing, handles the
// go-to-jail tile and runs the landing dispatcher. The player row is
// persisted before landing effects so a crash mid-dispatch leaves a
// resumable position.
func (e *Engine) moveAndDispatch(ctx context.Context, g *domain.Game, p *domain.Player, steps int, out *RollOutcome) error {
	if p.Position+steps >= e.rules.BoardSize {
		out.PassedGo = true
	}
	p.Position = (p.Position + steps) % e.rules.BoardSize
	out.Position = p.Position

	if out.PassedGo {
		p.Money += e.rules.GoSalary
		e.emit(ctx, g.ID, ref(p.ID), domain.EventSalaryPaid, map[string]any{"amount": e.rules.GoSalary})
		e.recordTxn(ctx, g.ID, p.ID, "go_salary", e.rules.GoSalary, nil)
	}

	e.emit(ctx, g.ID, ref(p.ID), domain.EventMoved,
		map[string]any{"position": p.Position, "space": board.Get(p.Position).Name})

	if p.Position == e.rules.GoToJailSpace {
		e.sendToJail(ctx, g, p, "go_to_jail_space")
		out.Jailed = true
		out.Position = p.Position
		p.DoublesCount = 0
		g.ExpectedAction = domain.ActionNone
		g.ActionDetails = nil
		if err := e.store.SavePlayer(ctx, p); err != nil {
			return err
		}
		return e.store.SaveGame(ctx, g)
	}

	if err := e.store.SavePlayer(ctx, p); err != nil {
		return err
	}

	res, err := e.dispatchLanding(ctx, g, p, steps)
	if err != nil {
		return err
	}
	return e.settleAfterEffect(ctx, g, p, res, out)
}

// settleAfterEffect writes the post-effect marker: a pending action blocks
// the turn, otherwise a doubles roll owes another roll.
func (e *Engine) settleAfterEffect(ctx context.Context, g *domain.Game, p *domain.Player, res landingResult, out *RollOutcome) error {
	switch {
	case res.bankrupt:
		g.ExpectedAction = domain.ActionNone
		g.ActionDetails = nil
	case res.pending != domain.ActionNone:
		g.ExpectedAction = res.pending
		g.ActionDetails = res.details
		e.emit(ctx, g.ID, g.CurrentPlayerID, domain.EventActionPrompt,
			map[string]any{"action": res.pending, "details": res.details})
	case p.DoublesCount > 0:
		g.ExpectedAction = domain.ActionRollAgain
		g.ActionDetails = nil
		if out != nil {
			out.RollAgain = true
		}
	default:
		g.ExpectedAction = domain.ActionNone
		g.ActionDetails = nil
	}
	if out != nil {
		out.Pending = g.ExpectedAction
	}
	return e.store.SaveGame(ctx, g)
}

// rollFromJail applies one jail attempt: doubles release the player and
// move them; the third failed attempt forces the fine (or the asset
// management path); otherwise the turn is over.
func (e *Engine) rollFromJail(ctx context.Context, g *domain.Game, p *domain.Player, out *RollOutcome) error {
	if out.Doubles {
		p.InJail = false
		p.JailTurns = 0
		p.DoublesCount = 0 // release doubles do not grant another roll
		out.LeftJail = true
		e.emit(ctx, g.ID, ref(p.ID), domain.EventJailLeft, map[string]any{"by": "doubles"})
		return e.moveAndDispatch(ctx, g, p, out.Die1+out.Die2, out)
	}

	p.JailTurns++
	if p.JailTurns < e.rules.MaxJailTurns {
		out.StayedInJail = true
		out.Position = p.Position
		g.ExpectedAction = domain.ActionNone
		g.ActionDetails = nil
		if err := e.store.SavePlayer(ctx, p); err != nil {
			return err
		}
		return e.store.SaveGame(ctx, g)
	}

	// Third attempt failed: the fine is due before anything else.
	if err := e.store.SavePlayer(ctx, p); err != nil {
		return err
	}
	if err := e.store.Transfer(ctx, p.ID, nil, e.rules.JailFine); err != nil {
		if err == ErrInsufficientFunds {
			g.ExpectedAction = domain.ActionRaiseFunds
			g.ActionDetails = &domain.ActionDetails{Amount: e.rules.JailFine, Reason: "jail_fine"}
			out.Pending = g.ExpectedAction
			out.StayedInJail = true
			e.emit(ctx, g.ID, ref(p.ID), domain.EventActionPrompt,
				map[string]any{"action": g.ExpectedAction, "details": g.ActionDetails})
			return e.store.SaveGame(ctx, g)
		}
		return err
	}

	p.Money -= e.rules.JailFine
	p.InJail = false
	p.JailTurns = 0
	out.LeftJail = true
	e.emit(ctx, g.ID, ref(p.ID), domain.EventJailLeft, map[string]any{"by": "fine", "amount": e.rules.JailFine})
	e.recordTxn(ctx, g.ID, p.ID, "jail_fine", -e.rules.JailFine, nil)
	return e.moveAndDispatch(ctx, g, p, out.Die1+out.Die2, out)
}

func (e *Engine) sendToJail(ctx context.Context, g *domain.Game, p *domain.Player, reason string) {
	p.Position = e.rules.JailPosition
	p.InJail = true
	p.JailTurns = 0
	p.DoublesCount = 0
	e.emit(ctx, g.ID, ref(p.ID), domain.EventJailed, map[string]any{"reason": reason})
}

// Choice is the player's answer to a pending action.
type Choice struct {
	Buy        bool `json:"buy"`         // buy_or_auction: buy at list price
	PayFine    bool `json:"pay_fine"`    // jail_prompt: pay instead of rolling
	TaxPercent bool `json:"tax_percent"` // pay_tax: percentage option over the fixed amount
	Auto       bool `json:"auto"`        // manage_assets: run automatic liquidation
}

// ResolveOutcome reports the marker state after a resolution.
type ResolveOutcome struct {
	Pending   domain.ActionType `json:"pending"`
	RollAgain bool              `json:"roll_again"`
	Bankrupt  bool              `json:"bankrupt"`
}

// ResolvePendingAction answers the pending action with choice. The marker
// must match an action type that accepts the choice; clearing it is the
// only way the turn progresses.
func (e *Engine) ResolvePendingAction(ctx context.Context, gameID, playerID int64, choice Choice) (*ResolveOutcome, error) {
	unlock := e.locks.Lock(gameID)
	defer unlock()

	g, p, err := e.loadTurnHolder(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}

	var res landingResult
	switch g.ExpectedAction {
	case domain.ActionBuyOrPass:
		res, err = e.resolveBuyOrAuction(ctx, g, p, choice.Buy)
	case domain.ActionJailPrompt:
		res, err = e.resolveJailFine(ctx, g, p, choice)
	case domain.ActionDrawChance:
		res, err = e.resolveDraw(ctx, g, p, e.decks.DrawChance())
	case domain.ActionDrawChest:
		res, err = e.resolveDraw(ctx, g, p, e.decks.DrawChest())
	case domain.ActionPayTax:
		res, err = e.resolveTax(ctx, g, p, choice.TaxPercent)
	case domain.ActionRaiseFunds:
		res, err = e.resolveRaiseFunds(ctx, g, p, choice)
	default:
		return nil, ErrActionNotPending
	}
	if err != nil {
		return nil, err
	}

	out := &RollOutcome{}
	if err := e.settleAfterEffect(ctx, g, p, res, out); err != nil {
		return nil, err
	}

	// A bankrupt player cannot end their own turn anymore; hand the game
	// over right here.
	if res.bankrupt && g.Status == domain.GameStatusActive {
		if err := e.advanceTurn(ctx, g, playerID); err != nil {
			return nil, err
		}
	}
	return &ResolveOutcome{Pending: g.ExpectedAction, RollAgain: out.RollAgain, Bankrupt: res.bankrupt}, nil
}

// EndTurn finishes the current player's turn and hands the game to the next
// eligible player, running lap-boundary hooks and win-condition checks.
func (e *Engine) EndTurn(ctx context.Context, gameID, playerID int64) error {
	unlock := e.locks.Lock(gameID)
	defer unlock()

	g, p, err := e.loadTurnHolder(ctx, gameID, playerID)
	if err != nil {
		return err
	}
	if g.ExpectedAction != domain.ActionNone && g.ExpectedAction != domain.ActionRollAgain {
		return ErrInvalidTransition
	}

	p.DoublesCount = 0
	if err := e.store.SavePlayer(ctx, p); err != nil {
		return err
	}
	return e.advanceTurn(ctx, g, playerID)
}

// ForceEndTurn discards any pending action and advances the turn. Used by
// the scheduler's failure recovery and by admins to unstall a game.
func (e *Engine) ForceEndTurn(ctx context.Context, gameID int64) error {
	unlock := e.locks.Lock(gameID)
	defer unlock()

	g, err := e.store.Game(ctx, gameID)
	if err != nil {
		return err
	}
	if g == nil {
		return ErrGameNotFound
	}
	if g.Status != domain.GameStatusActive {
		return ErrGameNotActive
	}
	if g.CurrentPlayerID == nil {
		return ErrInvalidTransition
	}

	mover := *g.CurrentPlayerID
	if p, err := e.store.Player(ctx, mover); err == nil && p != nil {
		p.DoublesCount = 0
		_ = e.store.SavePlayer(ctx, p)
	}
	return e.advanceTurn(ctx, g, mover)
}

// advanceTurn clears the marker, selects the next active player cyclically,
// applies lap-boundary hooks on wrap and evaluates win conditions.
func (e *Engine) advanceTurn(ctx context.Context, g *domain.Game, moverID int64) error {
	g.ExpectedAction = domain.ActionNone
	g.ActionDetails = nil
	g.TurnNumber++

	players, err := e.store.Players(ctx, g.ID)
	if err != nil {
		return err
	}
	byID := make(map[int64]*domain.Player, len(players))
	active := 0
	for _, p := range players {
		byID[p.ID] = p
		if p.Active() {
			active++
		}
	}

	// Win condition (a): at most one active player remains.
	if active <= 1 {
		var winner *int64
		for _, p := range players {
			if p.Active() {
				winner = ref(p.ID)
				break
			}
		}
		if winner == nil {
			return e.endGame(ctx, g, domain.EndReasonNoActivePlayers, nil)
		}
		return e.endGame(ctx, g, domain.EndReasonLastStanding, winner)
	}

	next, wrapped := nextActivePlayer(g.PlayerOrder, byID, moverID)
	if next == nil {
		return e.endGame(ctx, g, domain.EndReasonNoActivePlayers, nil)
	}

	if wrapped {
		g.CurrentLap++
		e.economy.AdvanceLap(g.CurrentLap)
		e.settleMaturedDeposits(ctx, g)
		e.emit(ctx, g.ID, nil, domain.EventLapCompleted,
			map[string]any{"lap": g.CurrentLap, "phase": e.economy.CurrentPhase()})

		// Win condition (b): lap limit reached.
		if g.LapLimit > 0 && g.CurrentLap > g.LapLimit {
			winner := e.richestPlayer(ctx, players)
			return e.endGame(ctx, g, domain.EndReasonLapLimit, winner)
		}
	}

	// Win condition (c): external game mode.
	if e.winCheck != nil {
		if winnerID, ended := e.winCheck.CheckWin(ctx, g, players); ended {
			return e.endGame(ctx, g, domain.EndReasonLastStanding, winnerID)
		}
	}

	g.CurrentPlayerID = ref(next.ID)
	g.ExpectedAction = domain.ActionRollDice
	if next.InJail {
		g.ExpectedAction = domain.ActionJailPrompt
		g.ActionDetails = &domain.ActionDetails{TurnsRemaining: e.rules.MaxJailTurns - next.JailTurns}
	}
	if err := e.store.SaveGame(ctx, g); err != nil {
		return err
	}

	metrics.TurnsTotal.Inc()
	e.emit(ctx, g.ID, ref(next.ID), domain.EventTurnChanged,
		map[string]any{"turn_number": g.TurnNumber, "player": next.Name, "in_jail": next.InJail})
	if next.InJail {
		e.emit(ctx, g.ID, ref(next.ID), domain.EventActionPrompt,
			map[string]any{"action": g.ExpectedAction, "details": g.ActionDetails})
	}

	if next.IsBot && e.waker != nil {
		e.waker.Wake(g.ID)
	}
	return nil
}

// nextActivePlayer scans player_order cyclically from the mover. wrapped is
// true when the scan passed the end of the order, which marks a lap.
func nextActivePlayer(order []int64, byID map[int64]*domain.Player, moverID int64) (*domain.Player, bool) {
	idx := -1
	for i, id := range order {
		if id == moverID {
			idx = i
			break
		}
	}
	if idx < 0 {
		// Mover dropped from the order; scan from the start.
		idx = len(order) - 1
	}

	for step := 1; step <= len(order); step++ {
		i := (idx + step) % len(order)
		p := byID[order[i]]
		if p != nil && p.Active() {
			return p, i <= idx
		}
	}
	return nil, false
}

func (e *Engine) endGame(ctx context.Context, g *domain.Game, reason domain.EndReason, winnerID *int64) error {
	g.Status = domain.GameStatusEnded
	g.EndReason = reason
	g.WinnerID = winnerID
	g.CurrentPlayerID = nil
	g.ExpectedAction = domain.ActionNone
	g.ActionDetails = nil
	if err := e.store.SaveGame(ctx, g); err != nil {
		return err
	}

	metrics.GamesActive.Dec()
	payload := map[string]any{"reason": reason}
	if winnerID != nil {
		payload["winner_id"] = *winnerID
	}
	e.emit(ctx, g.ID, winnerID, domain.EventGameOver, payload)
	return nil
}

// settleMaturedDeposits pays out every deposit whose term ended, crediting
// principal plus interest.
func (e *Engine) settleMaturedDeposits(ctx context.Context, g *domain.Game) {
	deposits, err := e.store.MaturedDeposits(ctx, g.ID, g.CurrentLap)
	if err != nil {
		logger.Warn("settle deposits", "game", g.ID, "error", err)
		return
	}
	for _, d := range deposits {
		payout := d.Payout()
		if err := e.store.Credit(ctx, d.PlayerID, payout); err != nil {
			logger.Warn("deposit payout", "deposit", d.ID, "error", err)
			continue
		}
		if err := e.store.SettleDeposit(ctx, d.ID); err != nil {
			logger.Warn("deposit settle", "deposit", d.ID, "error", err)
			continue
		}
		e.emit(ctx, g.ID, ref(d.PlayerID), domain.EventDepositPaid,
			map[string]any{"amount": payout, "principal": d.Amount})
		e.recordTxn(ctx, g.ID, d.PlayerID, "deposit_payout", payout, nil)
	}
}

// richestPlayer picks the active player with the highest net worth. Ties
// resolve to the earliest in player id order, deterministically.
func (e *Engine) richestPlayer(ctx context.Context, players []*domain.Player) *int64 {
	var best *domain.Player
	var bestWorth int64
	for _, p := range players {
		if !p.Active() {
			continue
		}
		worth, err := e.NetWorth(ctx, p)
		if err != nil {
			continue
		}
		if best == nil || worth > bestWorth {
			best = p
			bestWorth = worth
		}
	}
	if best == nil {
		return nil
	}
	return ref(best.ID)
}

// NetWorth is cash plus unmortgaged holdings minus outstanding debt.
func (e *Engine) NetWorth(ctx context.Context, p *domain.Player) (int64, error) {
	worth := p.Money
	props, err := e.store.PropertiesOf(ctx, p.ID)
	if err != nil {
		return 0, err
	}
	for _, prop := range props {
		if prop.Mortgaged {
			continue
		}
		space := board.Get(prop.BoardPos)
		worth += space.Price + int64(prop.Improvements)*space.HouseCost
	}
	loans, err := e.store.LoansOf(ctx, p.ID)
	if err != nil {
		return 0, err
	}
	for _, l := range loans {
		worth -= l.Principal
	}
	return worth, nil
}

// loadTurnHolder loads the game and player, validating the game is active
// and the caller holds the turn.
func (e *Engine) loadTurnHolder(ctx context.Context, gameID, playerID int64) (*domain.Game, *domain.Player, error) {
	g, err := e.store.Game(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	if g == nil {
		return nil, nil, ErrGameNotFound
	}
	if g.Status != domain.GameStatusActive {
		return nil, nil, ErrGameNotActive
	}
	if !g.IsCurrent(playerID) {
		return nil, nil, ErrNotYourTurn
	}

	p, err := e.store.Player(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}
	if p == nil || !p.InGame {
		return nil, nil, ErrPlayerNotFound
	}
	return g, p, nil
}

func (e *Engine) recordTxn(ctx context.Context, gameID, playerID int64, typ string, amount int64, meta map[string]any) {
	if err := e.store.RecordTxn(ctx, &domain.Transaction{
		GameID:   gameID,
		PlayerID: playerID,
		Type:     typ,
		Amount:   amount,
		Meta:     meta,
	}); err != nil {
		logger.Warn("record transaction", "type", typ, "error", fmt.Errorf("player %d: %w", playerID, err))
	}
}
