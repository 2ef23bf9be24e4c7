package domain

import "time"

// EventType - externally observable state transitions
type EventType string

const (
	EventDiceRolled    EventType = "dice_rolled"
	EventMoved         EventType = "moved"
	EventSalaryPaid    EventType = "salary_paid"
	EventRentPaid      EventType = "rent_paid"
	EventTaxPaid       EventType = "tax_paid"
	EventCardDrawn     EventType = "card_drawn"
	EventJailed        EventType = "jailed"
	EventJailLeft      EventType = "jail_left"
	EventPurchased     EventType = "property_purchased"
	EventAuctionWon    EventType = "auction_won"
	EventMortgaged     EventType = "property_mortgaged"
	EventLoanTaken     EventType = "loan_taken"
	EventLoanRepaid    EventType = "loan_repaid"
	EventDepositOpened EventType = "deposit_opened"
	EventDepositPaid   EventType = "deposit_paid"
	EventBankruptcy    EventType = "bankruptcy"
	EventTurnChanged   EventType = "turn_changed"
	EventLapCompleted  EventType = "lap_completed"
	EventActionPrompt  EventType = "action_prompt"
	EventGameStarted   EventType = "game_started"
	EventGameOver      EventType = "game_over"
)

// GameEvent is one entry of the per-game ordered event log. The serial id
// doubles as the ordering key for reconnect replay.
type GameEvent struct {
	ID        int64          `db:"id" json:"id"`
	GameID    int64          `db:"game_id" json:"game_id"`
	PlayerID  *int64         `db:"player_id" json:"player_id,omitempty"`
	Type      EventType      `db:"type" json:"type"`
	Payload   map[string]any `db:"payload" json:"payload,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
