package domain

import "time"

// GameStatus - lifecycle of a session
type GameStatus string

const (
	GameStatusSetup  GameStatus = "setup"
	GameStatusActive GameStatus = "active"
	GameStatusEnded  GameStatus = "ended"
)

// ActionType marks which input the current player owes before the turn
// may proceed. It is the persisted continuation of a half-finished turn:
// a request (or the bot scheduler) that resumes the game re-reads it and
// validates against it instead of trusting any in-process state.
type ActionType string

const (
	ActionNone       ActionType = "none"
	ActionRollDice   ActionType = "roll_dice"
	ActionRollAgain  ActionType = "roll_again"
	ActionBuyOrPass  ActionType = "buy_or_auction"
	ActionDrawChance ActionType = "draw_chance"
	ActionDrawChest  ActionType = "draw_chest"
	ActionPayTax     ActionType = "pay_tax"
	ActionJailPrompt ActionType = "jail_prompt"
	ActionRaiseFunds ActionType = "manage_assets"
)

// ActionDetails carries the payload of a pending action. Only the fields
// relevant to the action type are set.
type ActionDetails struct {
	BoardPos       int    `json:"board_pos,omitempty"`
	Amount         int64  `json:"amount,omitempty"`
	Reason         string `json:"reason,omitempty"`
	CreditorID     *int64 `json:"creditor_id,omitempty"`
	TurnsRemaining int    `json:"turns_remaining,omitempty"`
}

// EndReason - why a game ended
type EndReason string

const (
	EndReasonLastStanding    EndReason = "last_standing"
	EndReasonLapLimit        EndReason = "lap_limit"
	EndReasonNoActivePlayers EndReason = "no_active_players"
	EndReasonAdmin           EndReason = "admin"
)

type Game struct {
	ID              int64          `db:"id" json:"id"`
	Code            string         `db:"code" json:"code"`
	Status          GameStatus     `db:"status" json:"status"`
	CurrentPlayerID *int64         `db:"current_player_id" json:"current_player_id,omitempty"`
	ExpectedAction  ActionType     `db:"expected_action" json:"expected_action"`
	ActionDetails   *ActionDetails `db:"action_details" json:"action_details,omitempty"`
	PlayerOrder     []int64        `db:"player_order" json:"player_order"`
	CurrentLap      int            `db:"current_lap" json:"current_lap"`
	LapLimit        int            `db:"lap_limit" json:"lap_limit"`
	TurnNumber      int            `db:"turn_number" json:"turn_number"`
	EndReason       EndReason      `db:"end_reason" json:"end_reason,omitempty"`
	WinnerID        *int64         `db:"winner_id" json:"winner_id,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// AwaitsDecision reports whether a pending action blocks the turn. Roll
// markers are not decisions; they are cleared by rolling.
func (g *Game) AwaitsDecision() bool {
	switch g.ExpectedAction {
	case ActionNone, ActionRollDice, ActionRollAgain:
		return false
	}
	return true
}

// IsCurrent reports whether playerID holds the turn.
func (g *Game) IsCurrent(playerID int64) bool {
	return g.CurrentPlayerID != nil && *g.CurrentPlayerID == playerID
}
