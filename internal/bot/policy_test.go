package bot

import (
	"testing"

	"tycoon_backend/internal/board"
	"tycoon_backend/internal/domain"
)

func TestShouldBuyRespectsReserve(t *testing.T) {
	cases := []struct {
		name      string
		archetype domain.Archetype
		money     int64
		pos       int
		want      bool
	}{
		{"conservative keeps a deep reserve", domain.ArchetypeConservative, 450, 1, false},
		{"conservative buys with room to spare", domain.ArchetypeConservative, 500, 1, true},
		{"aggressive buys near the edge", domain.ArchetypeAggressive, 500, 39, true},
		{"aggressive stops below the reserve", domain.ArchetypeAggressive, 499, 39, false},
		{"balanced buys a railroad", domain.ArchetypeBalanced, 450, 5, true},
		{"nobody buys free parking", domain.ArchetypeAggressive, 5000, 20, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pl := NewPolicy(tc.archetype, 1)
			p := &domain.Player{Money: tc.money}
			if got := pl.ShouldBuy(p, board.Get(tc.pos)); got != tc.want {
				t.Fatalf("ShouldBuy(%d, pos %d) = %v, want %v", tc.money, tc.pos, got, tc.want)
			}
		})
	}
}

func TestNextBidCapsAtArchetypeLimit(t *testing.T) {
	pl := NewPolicy(domain.ArchetypeConservative, 1)
	p := &domain.Player{Money: 10000}
	space := board.Get(5) // price 200, cap 90 percent = 180

	if bid := pl.NextBid(p, space, 0); bid != 10 {
		t.Fatalf("opening bid = %d, want 10", bid)
	}
	if bid := pl.NextBid(p, space, 170); bid != 180 {
		t.Fatalf("bid at 170 = %d, want 180", bid)
	}
	if bid := pl.NextBid(p, space, 180); bid != 0 {
		t.Fatalf("bid above cap = %d, want drop-out", bid)
	}
}

func TestNextBidNeverDipsIntoReserve(t *testing.T) {
	pl := NewPolicy(domain.ArchetypeConservative, 1)
	p := &domain.Player{Money: 450} // 50 above the 400 reserve
	space := board.Get(5)

	if bid := pl.NextBid(p, space, 30); bid != 40 {
		t.Fatalf("affordable bid = %d, want 40", bid)
	}
	if bid := pl.NextBid(p, space, 45); bid != 0 {
		t.Fatalf("bid into the reserve = %d, want drop-out", bid)
	}
}

func TestJailChoiceRollsUntilLastAttempt(t *testing.T) {
	pl := NewPolicy(domain.ArchetypeBalanced, 1)
	p := &domain.Player{Money: 1000}

	p.JailTurns = 0
	if pl.JailChoice(p, 50, 3) {
		t.Fatalf("paid the fine with free attempts left")
	}
	p.JailTurns = 2
	if !pl.JailChoice(p, 50, 3) {
		t.Fatalf("did not buy out on the last attempt")
	}
	p.Money = 200 // fine plus reserve is 300
	if pl.JailChoice(p, 50, 3) {
		t.Fatalf("paid a fine the reserve cannot cover")
	}
}

func TestTaxChoicePicksCheaperOption(t *testing.T) {
	pl := NewPolicy(domain.ArchetypeBalanced, 1)
	if !pl.TaxChoice(1500, 200, 10) {
		t.Fatalf("10 percent of 1500 beats the flat 200")
	}
	if pl.TaxChoice(3000, 200, 10) {
		t.Fatalf("flat 200 beats 10 percent of 3000")
	}
}

func TestParamsForScalesWithDifficulty(t *testing.T) {
	base := ParamsFor(domain.ArchetypeConservative, 1)
	hard := ParamsFor(domain.ArchetypeConservative, 3)

	if hard.Reserve >= base.Reserve {
		t.Fatalf("difficulty did not shrink reserve: %d -> %d", base.Reserve, hard.Reserve)
	}
	if hard.BidCapBP <= base.BidCapBP {
		t.Fatalf("difficulty did not widen bid cap: %d -> %d", base.BidCapBP, hard.BidCapBP)
	}
	if got := ParamsFor("martian", 1); got != paramsTable[domain.ArchetypeBalanced] {
		t.Fatalf("unknown archetype should fall back to balanced, got %+v", got)
	}
}

func TestPickLoanToPrepay(t *testing.T) {
	pl := NewPolicy(domain.ArchetypeBalanced, 1) // reserve 250
	p := &domain.Player{Money: 600}
	loans := []*domain.Loan{
		{ID: 1, Principal: 100, RateBP: 500},
		{ID: 2, Principal: 100, RateBP: 900},
		{ID: 3, Principal: 2000, RateBP: 1200}, // unaffordable
	}

	best := pl.PickLoanToPrepay(p, loans)
	if best == nil || best.ID != 2 {
		t.Fatalf("picked %+v, want the highest affordable rate", best)
	}

	p.Money = 100
	if best := pl.PickLoanToPrepay(p, loans); best != nil {
		t.Fatalf("picked a loan the reserve cannot cover: %+v", best)
	}
}

func TestDepositAmountIsSurplusOverReserve(t *testing.T) {
	pl := NewPolicy(domain.ArchetypeBalanced, 1) // reserve 250

	if got := pl.DepositAmount(&domain.Player{Money: 800}); got != 300 {
		t.Fatalf("surplus = %d, want 300", got)
	}
	if got := pl.DepositAmount(&domain.Player{Money: 400}); got != 0 {
		t.Fatalf("deposited below twice the reserve: %d", got)
	}
}

func TestEvaluateTrade(t *testing.T) {
	pl := NewPolicy(domain.ArchetypeBalanced, 1) // 10 percent margin

	cases := []struct {
		name  string
		offer TradeOffer
		want  TradeVerdict
	}{
		{"clear surplus", TradeOffer{OfferedValue: 300, RequestedValue: 200}, TradeAccept},
		{"sweetener closes the gap", TradeOffer{OfferedValue: 200, RequestedValue: 200, CashSweetener: 30}, TradeAccept},
		{"near miss draws a counter", TradeOffer{OfferedValue: 210, RequestedValue: 200}, TradeCounter},
		{"lowball is rejected", TradeOffer{OfferedValue: 100, RequestedValue: 200}, TradeReject},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := pl.EvaluateTrade(tc.offer); got != tc.want {
				t.Fatalf("verdict = %s, want %s", got, tc.want)
			}
		})
	}
}
