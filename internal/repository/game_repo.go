package repository

import (
	"context"
	"encoding/json"

	"tycoon_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GameRepository struct {
	db *pgxpool.Pool
}

func NewGameRepository(db *pgxpool.Pool) *GameRepository {
	return &GameRepository{db: db}
}

const gameColumns = `id, code, status, current_player_id, expected_action, action_details,
		player_order, current_lap, lap_limit, turn_number, end_reason, winner_id, created_at`

func (r *GameRepository) Create(ctx context.Context, g *domain.Game) error {
	order, err := json.Marshal(g.PlayerOrder)
	if err != nil {
		return err
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO games (code, status, lap_limit, player_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, g.Code, g.Status, g.LapLimit, order).Scan(&g.ID, &g.CreatedAt)
}

// GetByID retrieves a game by id, or nil when absent.
func (r *GameRepository) GetByID(ctx context.Context, id int64) (*domain.Game, error) {
	row := r.db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	return scanGame(row)
}

// GetByCode retrieves a game by its join code.
func (r *GameRepository) GetByCode(ctx context.Context, code string) (*domain.Game, error) {
	row := r.db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE code = $1`, code)
	return scanGame(row)
}

// Update persists the whole mutable portion of the game row.
func (r *GameRepository) Update(ctx context.Context, g *domain.Game) error {
	order, err := json.Marshal(g.PlayerOrder)
	if err != nil {
		return err
	}
	var details []byte
	if g.ActionDetails != nil {
		if details, err = json.Marshal(g.ActionDetails); err != nil {
			return err
		}
	}
	_, err = r.db.Exec(ctx, `
		UPDATE games
		SET status = $2, current_player_id = $3, expected_action = $4, action_details = $5,
		    player_order = $6, current_lap = $7, lap_limit = $8, turn_number = $9,
		    end_reason = $10, winner_id = $11
		WHERE id = $1
	`, g.ID, g.Status, g.CurrentPlayerID, g.ExpectedAction, details,
		order, g.CurrentLap, g.LapLimit, g.TurnNumber, g.EndReason, g.WinnerID)
	return err
}

// ListActive returns ids of games in active status, used by the bot scheduler.
func (r *GameRepository) ListActive(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM games WHERE status = 'active' ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanGame(row pgx.Row) (*domain.Game, error) {
	var g domain.Game
	var details []byte
	var order []byte

	if err := row.Scan(
		&g.ID, &g.Code, &g.Status, &g.CurrentPlayerID, &g.ExpectedAction, &details,
		&order, &g.CurrentLap, &g.LapLimit, &g.TurnNumber, &g.EndReason, &g.WinnerID,
		&g.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if len(details) > 0 {
		var d domain.ActionDetails
		if err := json.Unmarshal(details, &d); err == nil {
			g.ActionDetails = &d
		}
	}
	if len(order) > 0 {
		_ = json.Unmarshal(order, &g.PlayerOrder)
	}
	if g.ExpectedAction == "" {
		g.ExpectedAction = domain.ActionNone
	}
	return &g, nil
}
