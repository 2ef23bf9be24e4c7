package repository

import (
	"context"
	"errors"

	"tycoon_backend/internal/domain"
	"tycoon_backend/internal/engine"
)

// Store bundles the repositories behind the engine's persistence interface.
// The only translation it does is mapping repository sentinels onto the
// engine's.
type Store struct {
	Games      *GameRepository
	PlayersR   *PlayerRepository
	Properties *PropertyRepository
	Loans      *LoanRepository
	Txns       *TransactionRepository
}

func NewStore(games *GameRepository, players *PlayerRepository, properties *PropertyRepository, loans *LoanRepository, txns *TransactionRepository) *Store {
	return &Store{
		Games:      games,
		PlayersR:   players,
		Properties: properties,
		Loans:      loans,
		Txns:       txns,
	}
}

func (s *Store) Game(ctx context.Context, id int64) (*domain.Game, error) {
	return s.Games.GetByID(ctx, id)
}

func (s *Store) SaveGame(ctx context.Context, g *domain.Game) error {
	return s.Games.Update(ctx, g)
}

func (s *Store) Player(ctx context.Context, id int64) (*domain.Player, error) {
	return s.PlayersR.GetByID(ctx, id)
}

func (s *Store) Players(ctx context.Context, gameID int64) ([]*domain.Player, error) {
	return s.PlayersR.ListByGame(ctx, gameID)
}

func (s *Store) SavePlayer(ctx context.Context, p *domain.Player) error {
	return s.PlayersR.Update(ctx, p)
}

func (s *Store) Transfer(ctx context.Context, fromID int64, toID *int64, amount int64) error {
	err := s.PlayersR.Transfer(ctx, fromID, toID, amount)
	if errors.Is(err, ErrInsufficientFunds) {
		return engine.ErrInsufficientFunds
	}
	return err
}

func (s *Store) Credit(ctx context.Context, playerID int64, amount int64) error {
	return s.PlayersR.Credit(ctx, playerID, amount)
}

func (s *Store) AdjustCreditScore(ctx context.Context, playerID int64, delta int) error {
	return s.PlayersR.AdjustCreditScore(ctx, playerID, delta)
}

func (s *Store) PropertyAt(ctx context.Context, gameID int64, pos int) (*domain.Property, error) {
	return s.Properties.GetByPos(ctx, gameID, pos)
}

func (s *Store) PropertiesOf(ctx context.Context, playerID int64) ([]*domain.Property, error) {
	return s.Properties.ListByOwner(ctx, playerID)
}

func (s *Store) SaveProperty(ctx context.Context, p *domain.Property) error {
	return s.Properties.Update(ctx, p)
}

func (s *Store) ReleaseProperties(ctx context.Context, playerID int64) error {
	return s.Properties.ReleaseAll(ctx, playerID)
}

func (s *Store) AddLoan(ctx context.Context, l *domain.Loan) error {
	return s.Loans.Create(ctx, l)
}

func (s *Store) LoansOf(ctx context.Context, playerID int64) ([]*domain.Loan, error) {
	return s.Loans.ListActiveByPlayer(ctx, playerID)
}

func (s *Store) RepayLoan(ctx context.Context, loanID int64) error {
	return s.Loans.Repay(ctx, loanID)
}

func (s *Store) AddDeposit(ctx context.Context, d *domain.TermDeposit) error {
	return s.Loans.CreateDeposit(ctx, d)
}

func (s *Store) MaturedDeposits(ctx context.Context, gameID int64, lap int) ([]*domain.TermDeposit, error) {
	return s.Loans.ListMaturedDeposits(ctx, gameID, lap)
}

func (s *Store) SettleDeposit(ctx context.Context, depositID int64) error {
	return s.Loans.MarkDepositPaid(ctx, depositID)
}

func (s *Store) RecordTxn(ctx context.Context, t *domain.Transaction) error {
	return s.Txns.Create(ctx, t)
}

var _ engine.Store = (*Store)(nil)
