package repository

import (
	"context"
	"encoding/json"

	"tycoon_backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	var meta []byte
	if t.Meta != nil {
		var err error
		if meta, err = json.Marshal(t.Meta); err != nil {
			return err
		}
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO transactions (game_id, player_id, type, amount, meta)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, t.GameID, t.PlayerID, t.Type, t.Amount, meta).Scan(&t.ID, &t.CreatedAt)
}

// ListByPlayer returns the player's most recent ledger entries.
func (r *TransactionRepository) ListByPlayer(ctx context.Context, playerID int64, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, game_id, player_id, type, amount, meta, created_at
		FROM transactions
		WHERE player_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var meta []byte
		if err := rows.Scan(&t.ID, &t.GameID, &t.PlayerID, &t.Type, &t.Amount, &meta, &t.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			_ = json.Unmarshal(meta, &t.Meta)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
