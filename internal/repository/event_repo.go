package repository

import (
	"context"
	"encoding/json"

	"tycoon_backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EventRepository persists the per-game ordered event log behind the
// broadcast channel. The serial id orders replay for reconnecting clients.
type EventRepository struct {
	db *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Append(ctx context.Context, e *domain.GameEvent) error {
	var payload []byte
	if e.Payload != nil {
		var err error
		if payload, err = json.Marshal(e.Payload); err != nil {
			return err
		}
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO game_events (game_id, player_id, type, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, e.GameID, e.PlayerID, e.Type, payload).Scan(&e.ID, &e.CreatedAt)
}

// ListAfter returns events of a game with id greater than afterID, oldest first.
func (r *EventRepository) ListAfter(ctx context.Context, gameID, afterID int64, limit int) ([]*domain.GameEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, game_id, player_id, type, payload, created_at
		FROM game_events
		WHERE game_id = $1 AND id > $2
		ORDER BY id
		LIMIT $3
	`, gameID, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.GameEvent
	for rows.Next() {
		var e domain.GameEvent
		var payload []byte
		if err := rows.Scan(&e.ID, &e.GameID, &e.PlayerID, &e.Type, &payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			_ = json.Unmarshal(payload, &e.Payload)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
