package domain

import "time"

// LoanKind - source of borrowed funds
type LoanKind string

const (
	LoanKindUnsecured LoanKind = "unsecured"
	LoanKindSecured   LoanKind = "secured"
	LoanKindMortgage  LoanKind = "mortgage"
)

// Loan is a debt a player owes the bank. Secured loans and mortgages
// reference the property backing them.
type Loan struct {
	ID         int64     `db:"id" json:"id"`
	GameID     int64     `db:"game_id" json:"game_id"`
	PlayerID   int64     `db:"player_id" json:"player_id"`
	Kind       LoanKind  `db:"kind" json:"kind"`
	PropertyID *int64    `db:"property_id" json:"property_id,omitempty"`
	Principal  int64     `db:"principal" json:"principal"`
	RateBP     int       `db:"rate_bp" json:"rate_bp"` // annual rate, basis points
	Repaid     bool      `db:"repaid" json:"repaid"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// TermDeposit is surplus cash placed at interest, maturing at a lap boundary.
type TermDeposit struct {
	ID         int64     `db:"id" json:"id"`
	GameID     int64     `db:"game_id" json:"game_id"`
	PlayerID   int64     `db:"player_id" json:"player_id"`
	Amount     int64     `db:"amount" json:"amount"`
	RateBP     int       `db:"rate_bp" json:"rate_bp"`
	MaturesLap int       `db:"matures_lap" json:"matures_lap"`
	PaidOut    bool      `db:"paid_out" json:"paid_out"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Payout returns principal plus simple interest for the deposit term.
func (d *TermDeposit) Payout() int64 {
	return d.Amount + d.Amount*int64(d.RateBP)/10000
}
