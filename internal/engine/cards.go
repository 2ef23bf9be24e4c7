package engine

import (
	"math/rand"
	"sync"
)

// CardKind - what a drawn card does
type CardKind string

const (
	CardCollect     CardKind = "collect"
	CardPay         CardKind = "pay"
	CardMoveTo      CardKind = "move_to"
	CardMoveBack    CardKind = "move_back"
	CardGoToJail    CardKind = "go_to_jail"
	CardRepairs     CardKind = "repairs" // pay per improvement level
	CardCreditBoost CardKind = "credit_boost"
)

// Card is the effect descriptor the card engine hands back to the landing
// dispatcher. Movement effects re-enter the dispatcher, so a card can
// itself cause rent or a fine (bounded to one level).
type Card struct {
	Text   string
	Kind   CardKind
	Amount int64
	Target int // board position for move_to, spaces for move_back, score delta for credit_boost
}

// Decks draws chance and community chest cards. Draws are uniform random
// rather than a persisted shuffled order; the decks' composition is the
// contract, not the sequence.
type Decks struct {
	mu     sync.Mutex
	rng    *rand.Rand
	chance []Card
	chest  []Card
}

func NewDecks(seed int64) *Decks {
	return &Decks{
		rng:    rand.New(rand.NewSource(seed)),
		chance: chanceCards,
		chest:  chestCards,
	}
}

func (d *Decks) DrawChance() Card {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chance[d.rng.Intn(len(d.chance))]
}

func (d *Decks) DrawChest() Card {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chest[d.rng.Intn(len(d.chest))]
}

var chanceCards = []Card{
	{Text: "Advance to GO", Kind: CardMoveTo, Target: 0},
	{Text: "Advance to Illinois Avenue", Kind: CardMoveTo, Target: 24},
	{Text: "Advance to St. Charles Place", Kind: CardMoveTo, Target: 11},
	{Text: "Take a ride on the Reading Railroad", Kind: CardMoveTo, Target: 5},
	{Text: "Go back three spaces", Kind: CardMoveBack, Target: 3},
	{Text: "Go directly to jail", Kind: CardGoToJail},
	{Text: "Bank pays you dividend of $50", Kind: CardCollect, Amount: 50},
	{Text: "Your building loan matures, collect $150", Kind: CardCollect, Amount: 150},
	{Text: "Speeding fine $15", Kind: CardPay, Amount: 15},
	{Text: "General repairs, pay $25 per improvement", Kind: CardRepairs, Amount: 25},
}

var chestCards = []Card{
	{Text: "Advance to GO", Kind: CardMoveTo, Target: 0},
	{Text: "Bank error in your favor, collect $200", Kind: CardCollect, Amount: 200},
	{Text: "Doctor's fees, pay $50", Kind: CardPay, Amount: 50},
	{Text: "Income tax refund, collect $20", Kind: CardCollect, Amount: 20},
	{Text: "Go directly to jail", Kind: CardGoToJail},
	{Text: "Life insurance matures, collect $100", Kind: CardCollect, Amount: 100},
	{Text: "Hospital fees, pay $100", Kind: CardPay, Amount: 100},
	{Text: "You inherit $100", Kind: CardCollect, Amount: 100},
	{Text: "Street repairs, pay $40 per improvement", Kind: CardRepairs, Amount: 40},
	{Text: "On-time loan payments improve your credit", Kind: CardCreditBoost, Target: 20},
}
