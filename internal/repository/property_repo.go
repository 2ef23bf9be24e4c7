package repository

import (
	"context"

	"tycoon_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PropertyRepository struct {
	db *pgxpool.Pool
}

func NewPropertyRepository(db *pgxpool.Pool) *PropertyRepository {
	return &PropertyRepository{db: db}
}

const propertyColumns = `id, game_id, board_pos, owner_id, mortgaged, improvements, created_at`

// CreateForGame inserts one unowned row per purchasable position. Called
// once when a game starts.
func (r *PropertyRepository) CreateForGame(ctx context.Context, gameID int64, positions []int) error {
	batch := &pgx.Batch{}
	for _, pos := range positions {
		batch.Queue(`INSERT INTO properties (game_id, board_pos) VALUES ($1, $2)`, gameID, pos)
	}
	return r.db.SendBatch(ctx, batch).Close()
}

// GetByPos retrieves the property at a board position, or nil if the
// position is not ownable.
func (r *PropertyRepository) GetByPos(ctx context.Context, gameID int64, pos int) (*domain.Property, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+propertyColumns+` FROM properties WHERE game_id = $1 AND board_pos = $2
	`, gameID, pos)
	return scanProperty(row)
}

// ListByOwner returns the player's properties in board order.
func (r *PropertyRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*domain.Property, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+propertyColumns+` FROM properties WHERE owner_id = $1 ORDER BY board_pos
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProperties(rows)
}

// ListByGame returns every property row of a game.
func (r *PropertyRepository) ListByGame(ctx context.Context, gameID int64) ([]*domain.Property, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+propertyColumns+` FROM properties WHERE game_id = $1 ORDER BY board_pos
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProperties(rows)
}

func (r *PropertyRepository) Update(ctx context.Context, p *domain.Property) error {
	_, err := r.db.Exec(ctx, `
		UPDATE properties SET owner_id = $2, mortgaged = $3, improvements = $4 WHERE id = $1
	`, p.ID, p.OwnerID, p.Mortgaged, p.Improvements)
	return err
}

// ReleaseAll clears ownership of every property held by a player. Used on
// bankruptcy with the bank disposition policy.
func (r *PropertyRepository) ReleaseAll(ctx context.Context, ownerID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE properties SET owner_id = NULL, mortgaged = FALSE, improvements = 0
		WHERE owner_id = $1
	`, ownerID)
	return err
}

func collectProperties(rows pgx.Rows) ([]*domain.Property, error) {
	var out []*domain.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProperty(row pgx.Row) (*domain.Property, error) {
	var p domain.Property
	if err := row.Scan(
		&p.ID, &p.GameID, &p.BoardPos, &p.OwnerID, &p.Mortgaged, &p.Improvements, &p.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
