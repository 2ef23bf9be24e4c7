package bot

import (
	"math/rand"
	"sync"
	"time"

	"tycoon_backend/internal/board"
	"tycoon_backend/internal/domain"
)

// Params are the numeric knobs of an agent archetype. The same decision
// code runs for every bot; only the table row differs.
type Params struct {
	Reserve       int64 // cash kept untouched by purchases and bids
	BidCapBP      int   // max auction bid as basis points of list price
	BidIncrement  int64 // raise step over the current high bid
	InvestChance  int   // percent chance of an investment pass after a turn
	DepositLaps   int   // preferred term when opening a deposit
	TradeMarginBP int   // surplus demanded before accepting a trade, in bp
}

var paramsTable = map[domain.Archetype]Params{
	domain.ArchetypeConservative: {
		Reserve:       400,
		BidCapBP:      9000,
		BidIncrement:  10,
		InvestChance:  40,
		DepositLaps:   2,
		TradeMarginBP: 2000,
	},
	domain.ArchetypeBalanced: {
		Reserve:       250,
		BidCapBP:      11000,
		BidIncrement:  20,
		InvestChance:  25,
		DepositLaps:   1,
		TradeMarginBP: 1000,
	},
	domain.ArchetypeAggressive: {
		Reserve:       100,
		BidCapBP:      13500,
		BidIncrement:  35,
		InvestChance:  15,
		DepositLaps:   1,
		TradeMarginBP: 300,
	},
}

// ParamsFor returns the knob row for an archetype, scaled by difficulty.
// Difficulty widens the bid cap and shrinks the reserve, so a harder bot
// plays closer to the edge.
func ParamsFor(archetype domain.Archetype, difficulty int) Params {
	p, ok := paramsTable[archetype]
	if !ok {
		p = paramsTable[domain.ArchetypeBalanced]
	}
	if difficulty > 1 {
		scale := int64(difficulty - 1)
		p.Reserve -= p.Reserve * scale / 4
		if p.Reserve < 0 {
			p.Reserve = 0
		}
		p.BidCapBP += int(scale) * 500
	}
	return p
}

// TradeVerdict is the policy's answer to a trade offer.
type TradeVerdict string

const (
	TradeAccept  TradeVerdict = "accept"
	TradeReject  TradeVerdict = "reject"
	TradeCounter TradeVerdict = "counter"
)

// TradeOffer values both sides of a proposed swap in cash terms. The
// engine does not execute trades; the policy only renders a verdict.
type TradeOffer struct {
	OfferedValue   int64 // what the bot would receive
	RequestedValue int64 // what the bot would give up
	CashSweetener  int64 // cash added on top of the offered side
}

// Policy makes every decision for one bot player. Safe for use from a
// single scheduler goroutine; the rng is guarded for the auction path,
// which may run on the turn holder's goroutine.
type Policy struct {
	params Params

	mu  sync.Mutex
	rng *rand.Rand
}

func NewPolicy(archetype domain.Archetype, difficulty int) *Policy {
	return &Policy{
		params: ParamsFor(archetype, difficulty),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ShouldBuy buys whenever the list price leaves the reserve intact.
func (pl *Policy) ShouldBuy(p *domain.Player, space *board.Space) bool {
	if !space.Purchasable() {
		return false
	}
	return p.Money >= space.Price+pl.params.Reserve
}

// JailChoice reports whether to pay the fine instead of rolling. The bot
// tries its luck for the free attempts and buys out on the last one when
// the fine fits the reserve.
func (pl *Policy) JailChoice(p *domain.Player, fine int64, maxJailTurns int) (payFine bool) {
	if p.JailTurns < maxJailTurns-1 {
		return false
	}
	return p.Money >= fine+pl.params.Reserve
}

// NextBid raises the current high bid by the increment while the total
// stays under the archetype's price cap and the reserve. Returns 0 to
// drop out.
func (pl *Policy) NextBid(p *domain.Player, space *board.Space, highBid int64) int64 {
	limit := space.Price * int64(pl.params.BidCapBP) / 10000
	bid := highBid + pl.params.BidIncrement
	if bid > limit {
		return 0
	}
	if bid > p.Money-pl.params.Reserve {
		return 0
	}
	return bid
}

// TaxChoice picks the cheaper of the fixed amount and the percentage of
// net worth.
func (pl *Policy) TaxChoice(netWorth, fixed int64, percent int64) (usePercent bool) {
	return netWorth*percent/100 < fixed
}

// WantsInvestment rolls the archetype's chance of spending the idle time
// after a turn on portfolio work.
func (pl *Policy) WantsInvestment() bool {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.rng.Intn(100) < pl.params.InvestChance
}

// DepositLaps returns the preferred deposit term.
func (pl *Policy) DepositLaps() int { return pl.params.DepositLaps }

// DepositAmount is the surplus above twice the reserve, the part the bot
// considers idle.
func (pl *Policy) DepositAmount(p *domain.Player) int64 {
	surplus := p.Money - 2*pl.params.Reserve
	if surplus <= 0 {
		return 0
	}
	return surplus
}

// PickLoanToPrepay returns the active loan worth retiring first, the one
// with the highest rate whose payoff leaves the reserve standing. Nil when
// nothing qualifies.
func (pl *Policy) PickLoanToPrepay(p *domain.Player, loans []*domain.Loan) *domain.Loan {
	var best *domain.Loan
	for _, l := range loans {
		due := l.Principal + l.Principal*int64(l.RateBP)/10000
		if due > p.Money-pl.params.Reserve {
			continue
		}
		if best == nil || l.RateBP > best.RateBP {
			best = l
		}
	}
	return best
}

// EvaluateTrade renders a verdict on a cash-valued trade offer. The offer
// must beat the requested side by the archetype's margin to be accepted;
// near misses draw a counter.
func (pl *Policy) EvaluateTrade(offer TradeOffer) TradeVerdict {
	gain := offer.OfferedValue + offer.CashSweetener
	needed := offer.RequestedValue + offer.RequestedValue*int64(pl.params.TradeMarginBP)/10000
	switch {
	case gain >= needed:
		return TradeAccept
	case gain*10 >= needed*9:
		return TradeCounter
	default:
		return TradeReject
	}
}
