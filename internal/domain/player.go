package domain

import "time"

// Archetype - decision profile of a bot player
type Archetype string

const (
	ArchetypeConservative Archetype = "conservative"
	ArchetypeBalanced     Archetype = "balanced"
	ArchetypeAggressive   Archetype = "aggressive"
)

type Player struct {
	ID            int64     `db:"id" json:"id"`
	GameID        int64     `db:"game_id" json:"game_id"`
	UserID        *int64    `db:"user_id" json:"user_id,omitempty"`
	Name          string    `db:"name" json:"name"`
	Position      int       `db:"position" json:"position"`
	Money         int64     `db:"money" json:"money"`
	InJail        bool      `db:"in_jail" json:"in_jail"`
	JailTurns     int       `db:"jail_turns" json:"jail_turns"`
	DoublesCount  int       `db:"doubles_count" json:"doubles_count"`
	CreditScore   int       `db:"credit_score" json:"credit_score"`
	IsBot         bool      `db:"is_bot" json:"is_bot"`
	BotArchetype  Archetype `db:"bot_archetype" json:"bot_archetype,omitempty"`
	BotDifficulty int       `db:"bot_difficulty" json:"bot_difficulty,omitempty"`
	InGame        bool      `db:"in_game" json:"in_game"`
	Bankrupt      bool      `db:"bankrupt" json:"bankrupt"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Active reports whether the player still participates in the rotation.
func (p *Player) Active() bool {
	return p.InGame && !p.Bankrupt
}
