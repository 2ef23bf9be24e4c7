package engine

import (
	"context"
	"errors"

	"tycoon_backend/internal/domain"
)

var (
	ErrLoanNotFound   = errors.New("loan not found")
	ErrPropertyLocked = errors.New("property is collateral for an active loan")
)

// repayScoreBump rewards every settled loan.
const repayScoreBump = 15

// PrepayLoan settles an active loan ahead of schedule. Repaying a mortgage
// clears the mortgage flag on its property. The borrower's credit score
// improves with each repaid loan.
func (e *Engine) PrepayLoan(ctx context.Context, gameID, playerID, loanID int64) error {
	unlock := e.locks.Lock(gameID)
	defer unlock()

	loans, err := e.store.LoansOf(ctx, playerID)
	if err != nil {
		return err
	}
	var loan *domain.Loan
	for _, l := range loans {
		if l.ID == loanID {
			loan = l
			break
		}
	}
	if loan == nil {
		return ErrLoanNotFound
	}

	due := loan.Principal + loan.Principal*int64(loan.RateBP)/10000
	if err := e.store.Transfer(ctx, playerID, nil, due); err != nil {
		return err
	}
	if err := e.store.RepayLoan(ctx, loan.ID); err != nil {
		return err
	}

	if loan.Kind == domain.LoanKindMortgage && loan.PropertyID != nil {
		if err := e.unmortgage(ctx, playerID, *loan.PropertyID); err != nil {
			return err
		}
	}
	if err := e.store.AdjustCreditScore(ctx, playerID, repayScoreBump); err != nil {
		return err
	}

	e.emit(ctx, gameID, ref(playerID), domain.EventLoanRepaid,
		map[string]any{"loan_id": loan.ID, "kind": loan.Kind, "paid": due})
	e.recordTxn(ctx, gameID, playerID, "loan_repaid", -due, map[string]any{"loan_id": loan.ID})
	return nil
}

func (e *Engine) unmortgage(ctx context.Context, playerID, propertyID int64) error {
	props, err := e.store.PropertiesOf(ctx, playerID)
	if err != nil {
		return err
	}
	for _, prop := range props {
		if prop.ID == propertyID {
			prop.Mortgaged = false
			return e.store.SaveProperty(ctx, prop)
		}
	}
	return nil
}

// OpenDeposit locks amount away until the game reaches maturity lap, then
// settleMaturedDeposits pays it back with interest at the lap boundary.
func (e *Engine) OpenDeposit(ctx context.Context, gameID, playerID int64, amount int64, laps int) error {
	unlock := e.locks.Lock(gameID)
	defer unlock()

	if amount <= 0 || laps <= 0 {
		return ErrInvalidTransition
	}
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

	if err := e.store.Transfer(ctx, playerID, nil, amount); err != nil {
		return err
	}
	d := &domain.TermDeposit{
		GameID:     gameID,
		PlayerID:   playerID,
		Amount:     amount,
		RateBP:     e.economy.InflationRateBP() * laps,
		MaturesLap: g.CurrentLap + laps,
	}
	if err := e.store.AddDeposit(ctx, d); err != nil {
		return err
	}
	e.emit(ctx, gameID, ref(playerID), domain.EventDepositOpened,
		map[string]any{"amount": amount, "matures_lap": d.MaturesLap, "rate_bp": d.RateBP})
	e.recordTxn(ctx, gameID, playerID, "deposit", -amount, map[string]any{"matures_lap": d.MaturesLap})
	return nil
}
