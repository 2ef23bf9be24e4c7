package engine

import (
	"context"
	"testing"

	"tycoon_backend/internal/domain"
)

func TestPrepayMortgageRestoresProperty(t *testing.T) {
	eng, store, g, players := newTestGame(t, "alice", "bob")
	ctx := context.Background()
	prop := setOwner(t, store, g.ID, 6, players[0].ID)
	prop.Mortgaged = true
	if err := store.SaveProperty(ctx, prop); err != nil {
		t.Fatalf("save: %v", err)
	}
	loan := &domain.Loan{
		GameID:     g.ID,
		PlayerID:   players[0].ID,
		Kind:       domain.LoanKindMortgage,
		PropertyID: &prop.ID,
		Principal:  100,
		RateBP:     250,
	}
	if err := store.AddLoan(ctx, loan); err != nil {
		t.Fatalf("add loan: %v", err)
	}

	if err := eng.PrepayLoan(ctx, g.ID, players[0].ID, loan.ID); err != nil {
		t.Fatalf("prepay: %v", err)
	}

	// Principal plus simple interest at the loan's rate.
	a := reloadPlayer(t, store, players[0].ID)
	if a.Money != 1398 {
		t.Fatalf("money = %d, want 1398", a.Money)
	}
	if a.CreditScore != 665 {
		t.Fatalf("credit score = %d, want 665", a.CreditScore)
	}
	prop, _ = store.PropertyAt(ctx, g.ID, 6)
	if prop.Mortgaged {
		t.Fatalf("property still mortgaged after repayment")
	}
	loans, _ := store.LoansOf(ctx, players[0].ID)
	if len(loans) != 0 {
		t.Fatalf("loan still outstanding: %+v", loans)
	}
}

func TestPrepayUnknownLoan(t *testing.T) {
	eng, _, g, players := newTestGame(t, "alice", "bob")
	if err := eng.PrepayLoan(context.Background(), g.ID, players[0].ID, 9999); err != ErrLoanNotFound {
		t.Fatalf("want ErrLoanNotFound, got %v", err)
	}
}

func TestPrepayWithoutFunds(t *testing.T) {
	eng, store, g, players := newTestGame(t, "alice", "bob")
	ctx := context.Background()
	a := reloadPlayer(t, store, players[0].ID)
	a.Money = 10
	setPlayer(t, store, a)
	loan := &domain.Loan{
		GameID: g.ID, PlayerID: players[0].ID,
		Kind: domain.LoanKindUnsecured, Principal: 100, RateBP: 500,
	}
	if err := store.AddLoan(ctx, loan); err != nil {
		t.Fatalf("add loan: %v", err)
	}

	if err := eng.PrepayLoan(ctx, g.ID, players[0].ID, loan.ID); err != ErrInsufficientFunds {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	loans, _ := store.LoansOf(ctx, players[0].ID)
	if len(loans) != 1 {
		t.Fatalf("failed repayment closed the loan")
	}
}

func TestOpenDepositLocksCashUntilMaturity(t *testing.T) {
	eng, store, g, players := newTestGame(t, "alice", "bob")
	ctx := context.Background()

	if err := eng.OpenDeposit(ctx, g.ID, players[0].ID, 300, 2); err != nil {
		t.Fatalf("open deposit: %v", err)
	}
	if a := reloadPlayer(t, store, players[0].ID); a.Money != 1200 {
		t.Fatalf("money = %d, want 1200", a.Money)
	}
	// Nothing matures before the target lap.
	early, _ := store.MaturedDeposits(ctx, g.ID, 1)
	if len(early) != 0 {
		t.Fatalf("deposit matured early: %+v", early)
	}
	due, _ := store.MaturedDeposits(ctx, g.ID, 2)
	if len(due) != 1 {
		t.Fatalf("deposit missing at maturity")
	}
	// Stable-phase inflation, scaled by the term length.
	if due[0].RateBP != 500 || due[0].Payout() != 315 {
		t.Fatalf("deposit terms: rate=%d payout=%d", due[0].RateBP, due[0].Payout())
	}
}

func TestOpenDepositValidation(t *testing.T) {
	eng, store, g, players := newTestGame(t, "alice", "bob")
	ctx := context.Background()

	if err := eng.OpenDeposit(ctx, g.ID, players[0].ID, 0, 1); err != ErrInvalidTransition {
		t.Fatalf("zero amount: want ErrInvalidTransition, got %v", err)
	}
	if err := eng.OpenDeposit(ctx, g.ID, players[0].ID, 100, 0); err != ErrInvalidTransition {
		t.Fatalf("zero term: want ErrInvalidTransition, got %v", err)
	}
	if err := eng.OpenDeposit(ctx, g.ID, players[0].ID, 5000, 1); err != ErrInsufficientFunds {
		t.Fatalf("overdrawn: want ErrInsufficientFunds, got %v", err)
	}
	if a := reloadPlayer(t, store, players[0].ID); a.Money != 1500 {
		t.Fatalf("rejected deposits moved money: %d", a.Money)
	}
}
