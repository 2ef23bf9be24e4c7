package engine

import (
	"context"
	"sort"

	"tycoon_backend/internal/board"
	"tycoon_backend/internal/domain"
	"tycoon_backend/internal/metrics"
)

// securedDrawPctBP caps a secured credit draw at this fraction of the
// property's list price, in basis points.
const securedDrawPctBP = 6000

// unsecuredOverdraw requests 1.5x the shortfall so one loan usually
// settles the matter.
const unsecuredOverdrawPct = 150

// RaiseResult is the outcome of an automatic fund-raising run.
type RaiseResult struct {
	Succeeded  bool     `json:"succeeded"`
	NewBalance int64    `json:"new_balance"`
	Bankrupt   bool     `json:"bankrupt"`
	Steps      []string `json:"steps"`
}

// LiquidationOption is one entry of the ordered plan returned in propose
// mode, for a human to pick from.
type LiquidationOption struct {
	Step     string `json:"step"` // credit | secured | mortgage
	BoardPos int    `json:"board_pos,omitempty"`
	Space    string `json:"space,omitempty"`
	Amount   int64  `json:"amount"`
}

// RaiseFunds raises cash for playerID until the balance covers amountNeeded,
// trying unsecured credit, then secured draws against unencumbered
// properties (most valuable first), then mortgages (cheapest first). When
// everything is exhausted and the balance still falls short the player is
// declared bankrupt. Each step re-reads the player so decisions never run
// against stale figures.
func (e *Engine) RaiseFunds(ctx context.Context, gameID, playerID int64, amountNeeded int64) (*RaiseResult, error) {
	res := &RaiseResult{}

	p, err := e.store.Player(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	if p.Money >= amountNeeded {
		res.Succeeded = true
		res.NewBalance = p.Money
		return res, nil
	}

	// Step 1: unsecured credit.
	if e.creditEligible(p, amountNeeded) {
		principal := amountNeeded * unsecuredOverdrawPct / 100
		if principal > e.rules.CreditCap {
			principal = e.rules.CreditCap
		}
		if err := e.grantLoan(ctx, gameID, p, domain.LoanKindUnsecured, nil, principal); err != nil {
			return nil, err
		}
		res.Steps = append(res.Steps, "credit")
		metrics.LiquidationSteps.WithLabelValues("credit").Inc()
		if p, err = e.reload(ctx, playerID); err != nil {
			return nil, err
		}
	}

	// Step 2: secured credit against each unencumbered property, most
	// valuable first.
	if p.Money < amountNeeded {
		props, err := e.store.PropertiesOf(ctx, playerID)
		if err != nil {
			return nil, err
		}
		for _, prop := range sortByPrice(props, true) {
			if p.Money >= amountNeeded {
				break
			}
			if !prop.Unencumbered() {
				continue
			}
			draw := board.Get(prop.BoardPos).Price * securedDrawPctBP / 10000
			if draw <= 0 {
				continue
			}
			propID := prop.ID
			if err := e.grantLoan(ctx, gameID, p, domain.LoanKindSecured, &propID, draw); err != nil {
				return nil, err
			}
			res.Steps = append(res.Steps, "secured")
			metrics.LiquidationSteps.WithLabelValues("secured").Inc()
			if p, err = e.reload(ctx, playerID); err != nil {
				return nil, err
			}
		}
	}

	// Step 3: mortgage remaining unmortgaged properties, cheapest first.
	if p.Money < amountNeeded {
		props, err := e.store.PropertiesOf(ctx, playerID)
		if err != nil {
			return nil, err
		}
		for _, prop := range sortByPrice(props, false) {
			if p.Money >= amountNeeded {
				break
			}
			if prop.Mortgaged {
				continue
			}
			if err := e.mortgage(ctx, gameID, p, prop); err != nil {
				return nil, err
			}
			res.Steps = append(res.Steps, "mortgage")
			metrics.LiquidationSteps.WithLabelValues("mortgage").Inc()
			if p, err = e.reload(ctx, playerID); err != nil {
				return nil, err
			}
		}
	}

	if p.Money < amountNeeded {
		if err := e.declareBankruptcy(ctx, gameID, p); err != nil {
			return nil, err
		}
		res.Bankrupt = true
		res.NewBalance = p.Money
		return res, nil
	}

	res.Succeeded = true
	res.NewBalance = p.Money
	return res, nil
}

// ProposeLiquidation returns the ordered options RaiseFunds would take,
// without executing any of them. Propose mode for human players.
func (e *Engine) ProposeLiquidation(ctx context.Context, playerID int64, amountNeeded int64) ([]LiquidationOption, error) {
	p, err := e.store.Player(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPlayerNotFound
	}

	var opts []LiquidationOption
	if e.creditEligible(p, amountNeeded) {
		principal := amountNeeded * unsecuredOverdrawPct / 100
		if principal > e.rules.CreditCap {
			principal = e.rules.CreditCap
		}
		opts = append(opts, LiquidationOption{Step: "credit", Amount: principal})
	}

	props, err := e.store.PropertiesOf(ctx, playerID)
	if err != nil {
		return nil, err
	}
	for _, prop := range sortByPrice(props, true) {
		if !prop.Unencumbered() {
			continue
		}
		space := board.Get(prop.BoardPos)
		opts = append(opts, LiquidationOption{
			Step:     "secured",
			BoardPos: prop.BoardPos,
			Space:    space.Name,
			Amount:   space.Price * securedDrawPctBP / 10000,
		})
	}
	for _, prop := range sortByPrice(props, false) {
		if prop.Mortgaged {
			continue
		}
		space := board.Get(prop.BoardPos)
		opts = append(opts, LiquidationOption{
			Step:     "mortgage",
			BoardPos: prop.BoardPos,
			Space:    space.Name,
			Amount:   space.Mortgage,
		})
	}

	if len(opts) == 0 {
		return nil, ErrInsufficientFunds
	}
	return opts, nil
}

func (e *Engine) creditEligible(p *domain.Player, amountNeeded int64) bool {
	return p.CreditScore >= e.rules.CreditScoreMin && amountNeeded >= e.rules.CreditFloor
}

func (e *Engine) grantLoan(ctx context.Context, gameID int64, p *domain.Player, kind domain.LoanKind, propertyID *int64, principal int64) error {
	rate := e.economy.InterestRateBP()
	if kind == domain.LoanKindUnsecured {
		// Unsecured lending prices in the borrower's score.
		rate += (850 - p.CreditScore) / 2
	}
	loan := &domain.Loan{
		GameID:     gameID,
		PlayerID:   p.ID,
		Kind:       kind,
		PropertyID: propertyID,
		Principal:  principal,
		RateBP:     rate,
	}
	if err := e.store.AddLoan(ctx, loan); err != nil {
		return err
	}
	if err := e.store.Credit(ctx, p.ID, principal); err != nil {
		return err
	}
	e.emit(ctx, gameID, ref(p.ID), domain.EventLoanTaken,
		map[string]any{"kind": kind, "principal": principal, "rate_bp": rate})
	e.recordTxn(ctx, gameID, p.ID, "loan_"+string(kind), principal, map[string]any{"rate_bp": rate})
	return nil
}

func (e *Engine) mortgage(ctx context.Context, gameID int64, p *domain.Player, prop *domain.Property) error {
	space := board.Get(prop.BoardPos)
	prop.Mortgaged = true
	if err := e.store.SaveProperty(ctx, prop); err != nil {
		return err
	}
	propID := prop.ID
	loan := &domain.Loan{
		GameID:     gameID,
		PlayerID:   p.ID,
		Kind:       domain.LoanKindMortgage,
		PropertyID: &propID,
		Principal:  space.Mortgage,
		RateBP:     e.economy.InterestRateBP() / 2,
	}
	if err := e.store.AddLoan(ctx, loan); err != nil {
		return err
	}
	if err := e.store.Credit(ctx, p.ID, space.Mortgage); err != nil {
		return err
	}
	e.emit(ctx, gameID, ref(p.ID), domain.EventMortgaged,
		map[string]any{"position": prop.BoardPos, "space": space.Name, "amount": space.Mortgage})
	e.recordTxn(ctx, gameID, p.ID, "mortgage", space.Mortgage, map[string]any{"position": prop.BoardPos})
	return nil
}

// declareBankruptcy removes the player from the rotation, returns their
// properties to the bank and re-runs the win-condition evaluation.
func (e *Engine) declareBankruptcy(ctx context.Context, gameID int64, p *domain.Player) error {
	p.Bankrupt = true
	p.InGame = false
	if err := e.store.SavePlayer(ctx, p); err != nil {
		return err
	}
	if err := e.store.ReleaseProperties(ctx, p.ID); err != nil {
		return err
	}

	metrics.BankruptciesTotal.Inc()
	e.emit(ctx, gameID, ref(p.ID), domain.EventBankruptcy, map[string]any{"player": p.Name})

	// The rotation may have collapsed to a winner.
	g, err := e.store.Game(ctx, gameID)
	if err != nil || g == nil || g.Status != domain.GameStatusActive {
		return err
	}
	players, err := e.store.Players(ctx, gameID)
	if err != nil {
		return err
	}
	var last *domain.Player
	active := 0
	for _, pl := range players {
		if pl.Active() {
			active++
			last = pl
		}
	}
	if active == 1 {
		return e.endGame(ctx, g, domain.EndReasonLastStanding, ref(last.ID))
	}
	if active == 0 {
		return e.endGame(ctx, g, domain.EndReasonNoActivePlayers, nil)
	}
	return nil
}

// resolveRaiseFunds answers a manage_assets marker. Auto mode runs the
// full strategy; without it the caller gets the ordered options back as an
// error signal and the marker stays.
func (e *Engine) resolveRaiseFunds(ctx context.Context, g *domain.Game, p *domain.Player, choice Choice) (landingResult, error) {
	if g.ActionDetails == nil {
		return cleared, ErrActionNotPending
	}
	if !choice.Auto {
		return cleared, ErrInsufficientFunds
	}
	due := g.ActionDetails.Amount
	creditor := g.ActionDetails.CreditorID
	reason := g.ActionDetails.Reason

	res, err := e.RaiseFunds(ctx, g.ID, p.ID, due)
	if err != nil {
		return cleared, err
	}
	if res.Bankrupt {
		// declareBankruptcy may have ended the game through its own copy
		// of the row; refresh ours so the settle pass does not write a
		// stale status back.
		if fresh, err := e.store.Game(ctx, g.ID); err == nil && fresh != nil {
			*g = *fresh
		}
		// The creditor's claim dies with the estate.
		return landingResult{bankrupt: true}, nil
	}

	if err := e.store.Transfer(ctx, p.ID, creditor, due); err != nil {
		return cleared, err
	}
	if fresh, err := e.reload(ctx, p.ID); err == nil {
		*p = *fresh
	}
	e.emitPayment(ctx, g, p, due, reason, creditor)

	if reason == "jail_fine" {
		p.InJail = false
		p.JailTurns = 0
		e.emit(ctx, g.ID, ref(p.ID), domain.EventJailLeft, map[string]any{"by": "fine"})
		if err := e.store.SavePlayer(ctx, p); err != nil {
			return cleared, err
		}
		// The dice from the failed attempt are gone; the release grants a
		// fresh roll.
		return landingResult{pending: domain.ActionRollDice}, nil
	}
	return cleared, nil
}

func (e *Engine) reload(ctx context.Context, playerID int64) (*domain.Player, error) {
	p, err := e.store.Player(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	return p, nil
}

func sortByPrice(props []*domain.Property, desc bool) []*domain.Property {
	out := make([]*domain.Property, len(props))
	copy(out, props)
	sort.SliceStable(out, func(i, j int) bool {
		pi := board.Get(out[i].BoardPos).Price
		pj := board.Get(out[j].BoardPos).Price
		if desc {
			return pi > pj
		}
		return pi < pj
	})
	return out
}
