package domain

import "testing"

func TestAwaitsDecision(t *testing.T) {
	cases := []struct {
		action ActionType
		want   bool
	}{
		{ActionNone, false},
		{ActionRollDice, false},
		{ActionRollAgain, false},
		{ActionBuyOrPass, true},
		{ActionDrawChance, true},
		{ActionDrawChest, true},
		{ActionPayTax, true},
		{ActionJailPrompt, true},
		{ActionRaiseFunds, true},
	}
	for _, tc := range cases {
		g := &Game{ExpectedAction: tc.action}
		if got := g.AwaitsDecision(); got != tc.want {
			t.Fatalf("AwaitsDecision(%s) = %v, want %v", tc.action, got, tc.want)
		}
	}
}

func TestIsCurrent(t *testing.T) {
	id := int64(7)
	g := &Game{CurrentPlayerID: &id}
	if !g.IsCurrent(7) || g.IsCurrent(8) {
		t.Fatalf("IsCurrent misjudged the turn holder")
	}
	if (&Game{}).IsCurrent(7) {
		t.Fatalf("IsCurrent true with no current player")
	}
}

func TestPlayerActive(t *testing.T) {
	p := &Player{InGame: true}
	if !p.Active() {
		t.Fatalf("healthy player inactive")
	}
	p.Bankrupt = true
	if p.Active() {
		t.Fatalf("bankrupt player active")
	}
	if (&Player{Bankrupt: false}).Active() {
		t.Fatalf("departed player active")
	}
}

func TestPropertyUnencumbered(t *testing.T) {
	owner := int64(3)
	p := &Property{OwnerID: &owner}
	if !p.Unencumbered() {
		t.Fatalf("clean property encumbered")
	}
	p.Mortgaged = true
	if p.Unencumbered() {
		t.Fatalf("mortgaged property unencumbered")
	}
	p.Mortgaged = false
	p.Improvements = 1
	if p.Unencumbered() {
		t.Fatalf("improved property unencumbered")
	}
	if (&Property{}).Unencumbered() {
		t.Fatalf("bank property unencumbered")
	}
}

func TestDepositPayout(t *testing.T) {
	d := &TermDeposit{Amount: 300, RateBP: 500}
	if got := d.Payout(); got != 315 {
		t.Fatalf("payout = %d, want 315", got)
	}
}
