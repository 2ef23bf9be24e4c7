package domain

import "time"

// Transaction is a ledger entry for every cash movement inside a game.
type Transaction struct {
	ID        int64          `db:"id" json:"id"`
	GameID    int64          `db:"game_id" json:"game_id"`
	PlayerID  int64          `db:"player_id" json:"player_id"`
	Type      string         `db:"type" json:"type"`
	Amount    int64          `db:"amount" json:"amount"`
	Meta      map[string]any `db:"meta" json:"meta,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
