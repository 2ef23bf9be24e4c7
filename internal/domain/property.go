package domain

import "time"

// Property is the ownership record for one purchasable board space.
// The static price/rent data lives in the board package; this row only
// tracks who owns it and in what state.
type Property struct {
	ID           int64     `db:"id" json:"id"`
	GameID       int64     `db:"game_id" json:"game_id"`
	BoardPos     int       `db:"board_pos" json:"board_pos"`
	OwnerID      *int64    `db:"owner_id" json:"owner_id,omitempty"`
	Mortgaged    bool      `db:"mortgaged" json:"mortgaged"`
	Improvements int       `db:"improvements" json:"improvements"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// OwnedBy reports whether the property belongs to playerID.
func (p *Property) OwnedBy(playerID int64) bool {
	return p.OwnerID != nil && *p.OwnerID == playerID
}

// Unencumbered reports whether the property can back a secured credit draw.
func (p *Property) Unencumbered() bool {
	return p.OwnerID != nil && !p.Mortgaged && p.Improvements == 0
}
