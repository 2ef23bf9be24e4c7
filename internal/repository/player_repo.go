package repository

import (
	"context"
	"errors"

	"tycoon_backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

type PlayerRepository struct {
	db *pgxpool.Pool
}

func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

const playerColumns = `id, game_id, user_id, name, position, money, in_jail, jail_turns,
		doubles_count, credit_score, is_bot, bot_archetype, bot_difficulty, in_game,
		bankrupt, created_at`

func (r *PlayerRepository) Create(ctx context.Context, p *domain.Player) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO players (game_id, user_id, name, money, credit_score, is_bot,
			bot_archetype, bot_difficulty)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, p.GameID, p.UserID, p.Name, p.Money, p.CreditScore, p.IsBot,
		p.BotArchetype, p.BotDifficulty).Scan(&p.ID, &p.CreatedAt)
}

func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (*domain.Player, error) {
	row := r.db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
	return scanPlayer(row)
}

// ListByGame returns all players of a game ordered by id.
func (r *PlayerRepository) ListByGame(ctx context.Context, gameID int64) ([]*domain.Player, error) {
	rows, err := r.db.Query(ctx, `SELECT `+playerColumns+` FROM players WHERE game_id = $1 ORDER BY id`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update persists the mutable portion of the player row.
func (r *PlayerRepository) Update(ctx context.Context, p *domain.Player) error {
	_, err := r.db.Exec(ctx, `
		UPDATE players
		SET position = $2, money = $3, in_jail = $4, jail_turns = $5, doubles_count = $6,
		    credit_score = $7, in_game = $8, bankrupt = $9
		WHERE id = $1
	`, p.ID, p.Position, p.Money, p.InJail, p.JailTurns, p.DoublesCount,
		p.CreditScore, p.InGame, p.Bankrupt)
	return err
}

// Transfer moves amount from one player to another atomically, locking the
// payer row and refusing to overdraw. A nil toID pays the bank (money sink).
func (r *PlayerRepository) Transfer(ctx context.Context, fromID int64, toID *int64, amount int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var balance int64
	if err := tx.QueryRow(ctx, `SELECT money FROM players WHERE id=$1 FOR UPDATE`, fromID).Scan(&balance); err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientFunds
	}

	if _, err := tx.Exec(ctx, `UPDATE players SET money = money - $1 WHERE id=$2`, amount, fromID); err != nil {
		return err
	}
	if toID != nil {
		if _, err := tx.Exec(ctx, `UPDATE players SET money = money + $1 WHERE id=$2`, amount, *toID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Credit adds amount to the player's balance.
func (r *PlayerRepository) Credit(ctx context.Context, id int64, amount int64) error {
	_, err := r.db.Exec(ctx, `UPDATE players SET money = money + $1 WHERE id=$2`, amount, id)
	return err
}

// AdjustCreditScore moves the player's credit score by delta, clamped to 300-850.
func (r *PlayerRepository) AdjustCreditScore(ctx context.Context, id int64, delta int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE players
		SET credit_score = LEAST(850, GREATEST(300, credit_score + $1))
		WHERE id = $2
	`, delta, id)
	return err
}

// ListBots returns every bot player of games that are not ended. Used to
// rebuild the agent registry on startup.
func (r *PlayerRepository) ListBots(ctx context.Context) ([]*domain.Player, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+playerColumns+` FROM players p
		WHERE p.is_bot AND EXISTS (
			SELECT 1 FROM games g WHERE g.id = p.game_id AND g.status != 'ended'
		)
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPlayer(row pgx.Row) (*domain.Player, error) {
	var p domain.Player
	if err := row.Scan(
		&p.ID, &p.GameID, &p.UserID, &p.Name, &p.Position, &p.Money, &p.InJail,
		&p.JailTurns, &p.DoublesCount, &p.CreditScore, &p.IsBot, &p.BotArchetype,
		&p.BotDifficulty, &p.InGame, &p.Bankrupt, &p.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
