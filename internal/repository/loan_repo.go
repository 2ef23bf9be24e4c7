package repository

import (
	"context"

	"tycoon_backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type LoanRepository struct {
	db *pgxpool.Pool
}

func NewLoanRepository(db *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{db: db}
}

func (r *LoanRepository) Create(ctx context.Context, l *domain.Loan) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO loans (game_id, player_id, kind, property_id, principal, rate_bp)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, l.GameID, l.PlayerID, l.Kind, l.PropertyID, l.Principal, l.RateBP).Scan(&l.ID, &l.CreatedAt)
}

// ListActiveByPlayer returns unrepaid loans, highest rate first.
func (r *LoanRepository) ListActiveByPlayer(ctx context.Context, playerID int64) ([]*domain.Loan, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, game_id, player_id, kind, property_id, principal, rate_bp, repaid, created_at
		FROM loans
		WHERE player_id = $1 AND NOT repaid
		ORDER BY rate_bp DESC, id
	`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Loan
	for rows.Next() {
		var l domain.Loan
		if err := rows.Scan(&l.ID, &l.GameID, &l.PlayerID, &l.Kind, &l.PropertyID,
			&l.Principal, &l.RateBP, &l.Repaid, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// Repay marks a loan repaid.
func (r *LoanRepository) Repay(ctx context.Context, loanID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE loans SET repaid = TRUE WHERE id = $1`, loanID)
	return err
}

func (r *LoanRepository) CreateDeposit(ctx context.Context, d *domain.TermDeposit) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO term_deposits (game_id, player_id, amount, rate_bp, matures_lap)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, d.GameID, d.PlayerID, d.Amount, d.RateBP, d.MaturesLap).Scan(&d.ID, &d.CreatedAt)
}

// ListMaturedDeposits returns unpaid deposits whose term has ended by lap.
func (r *LoanRepository) ListMaturedDeposits(ctx context.Context, gameID int64, lap int) ([]*domain.TermDeposit, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, game_id, player_id, amount, rate_bp, matures_lap, paid_out, created_at
		FROM term_deposits
		WHERE game_id = $1 AND matures_lap <= $2 AND NOT paid_out
		ORDER BY id
	`, gameID, lap)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.TermDeposit
	for rows.Next() {
		var d domain.TermDeposit
		if err := rows.Scan(&d.ID, &d.GameID, &d.PlayerID, &d.Amount, &d.RateBP,
			&d.MaturesLap, &d.PaidOut, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// MarkDepositPaid settles a matured deposit.
func (r *LoanRepository) MarkDepositPaid(ctx context.Context, depositID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE term_deposits SET paid_out = TRUE WHERE id = $1`, depositID)
	return err
}
