package engine

import (
	"context"

	"tycoon_backend/internal/domain"
)

// Store is the persistence surface the state machine runs against. The
// repository package provides the Postgres implementation; tests use an
// in-memory one. Every write commits before the engine continues, so a
// half-finished turn survives a process restart and can be resumed by a
// different caller.
type Store interface {
	Game(ctx context.Context, id int64) (*domain.Game, error)
	SaveGame(ctx context.Context, g *domain.Game) error

	Player(ctx context.Context, id int64) (*domain.Player, error)
	Players(ctx context.Context, gameID int64) ([]*domain.Player, error)
	SavePlayer(ctx context.Context, p *domain.Player) error

	// Transfer moves cash between players atomically; a nil toID pays the
	// bank. Must fail without side effects when the payer cannot cover it.
	Transfer(ctx context.Context, fromID int64, toID *int64, amount int64) error
	Credit(ctx context.Context, playerID int64, amount int64) error
	AdjustCreditScore(ctx context.Context, playerID int64, delta int) error

	PropertyAt(ctx context.Context, gameID int64, pos int) (*domain.Property, error)
	PropertiesOf(ctx context.Context, playerID int64) ([]*domain.Property, error)
	SaveProperty(ctx context.Context, p *domain.Property) error
	ReleaseProperties(ctx context.Context, playerID int64) error

	AddLoan(ctx context.Context, l *domain.Loan) error
	LoansOf(ctx context.Context, playerID int64) ([]*domain.Loan, error)
	RepayLoan(ctx context.Context, loanID int64) error

	AddDeposit(ctx context.Context, d *domain.TermDeposit) error
	MaturedDeposits(ctx context.Context, gameID int64, lap int) ([]*domain.TermDeposit, error)
	SettleDeposit(ctx context.Context, depositID int64) error

	RecordTxn(ctx context.Context, t *domain.Transaction) error
}
