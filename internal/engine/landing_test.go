package engine

import (
	"context"
	"testing"

	"tycoon_backend/internal/board"
	"tycoon_backend/internal/domain"
)

func TestRentTiers(t *testing.T) {
	eng, store, g, players := newTestGame(t, "alice", "bob")
	ctx := context.Background()
	owner := players[1].ID

	cases := []struct {
		name    string
		setup   func()
		pos     int
		diceSum int
		want    int64
	}{
		{
			name:  "single street base rent",
			setup: func() { setOwner(t, store, g.ID, 1, owner) },
			pos:   1, diceSum: 7, want: 2,
		},
		{
			name: "full unimproved group doubles",
			setup: func() {
				setOwner(t, store, g.ID, 1, owner)
				setOwner(t, store, g.ID, 3, owner)
			},
			pos: 3, diceSum: 7, want: 8,
		},
		{
			name: "improved street uses the ladder",
			setup: func() {
				prop := setOwner(t, store, g.ID, 1, owner)
				prop.Improvements = 2
				if err := store.SaveProperty(ctx, prop); err != nil {
					t.Fatalf("save: %v", err)
				}
			},
			pos: 1, diceSum: 7, want: 30,
		},
		{
			name: "two railroads",
			setup: func() {
				setOwner(t, store, g.ID, 5, owner)
				setOwner(t, store, g.ID, 25, owner)
			},
			pos: 5, diceSum: 7, want: 50,
		},
		{
			name:  "one utility scales dice by four",
			setup: func() { setOwner(t, store, g.ID, 12, owner) },
			pos:   12, diceSum: 7, want: 28,
		},
		{
			name: "both utilities scale dice by ten",
			setup: func() {
				setOwner(t, store, g.ID, 12, owner)
				setOwner(t, store, g.ID, 28, owner)
			},
			pos: 12, diceSum: 9, want: 90,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Reset ownership between cases.
			if err := store.ReleaseProperties(ctx, owner); err != nil {
				t.Fatalf("release: %v", err)
			}
			tc.setup()
			prop, err := store.PropertyAt(ctx, g.ID, tc.pos)
			if err != nil || prop == nil {
				t.Fatalf("property at %d: %v", tc.pos, err)
			}
			got, err := eng.rentFor(ctx, board.Get(tc.pos), prop, tc.diceSum)
			if err != nil {
				t.Fatalf("rentFor: %v", err)
			}
			if got != tc.want {
				t.Fatalf("rent = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestRentTransfersToOwner(t *testing.T) {
	eng, store, g, players := newTestGame(t, "alice", "bob")
	setOwner(t, store, g.ID, 9, players[1].ID) // Connecticut, rent 8
	setRolls(eng, [2]int{4, 5})

	out, err := eng.RollAndMove(context.Background(), g.ID, players[0].ID)
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if out.Position != 9 || out.Pending != domain.ActionNone {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if a := reloadPlayer(t, store, players[0].ID); a.Money != 1492 {
		t.Fatalf("payer money = %d, want 1492", a.Money)
	}
	if b := reloadPlayer(t, store, players[1].ID); b.Money != 1508 {
		t.Fatalf("owner money = %d, want 1508", b.Money)
	}
}

func TestUnpayableRentSetsManageAssets(t *testing.T) {
	eng, store, g, players := newTestGame(t, "alice", "bob")
	setOwner(t, store, g.ID, 3, players[1].ID) // Baltic, rent 4
	a := reloadPlayer(t, store, players[0].ID)
	a.Money = 1
	setPlayer(t, store, a)
	setRolls(eng, [2]int{1, 2})

	out, err := eng.RollAndMove(context.Background(), g.ID, players[0].ID)
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if out.Pending != domain.ActionRaiseFunds {
		t.Fatalf("expected manage_assets, got %s", out.Pending)
	}
	gg := reloadGame(t, store, g.ID)
	d := gg.ActionDetails
	if d == nil || d.Amount != 4 || d.Reason != "rent" || d.CreditorID == nil || *d.CreditorID != players[1].ID {
		t.Fatalf("marker details: %+v", d)
	}
	// The debt is deferred, not partially collected.
	if a := reloadPlayer(t, store, players[0].ID); a.Money != 1 {
		t.Fatalf("partial debit happened: %d", a.Money)
	}
}

func TestOwnAndMortgagedPropertiesChargeNothing(t *testing.T) {
	eng, store, g, players := newTestGame(t, "alice", "bob")
	ctx := context.Background()
	setOwner(t, store, g.ID, 6, players[0].ID) // own property
	prop := setOwner(t, store, g.ID, 8, players[1].ID)
	prop.Mortgaged = true
	if err := store.SaveProperty(ctx, prop); err != nil {
		t.Fatalf("save: %v", err)
	}

	setRolls(eng, [2]int{2, 4}, [2]int{3, 5})
	out, err := eng.RollAndMove(ctx, g.ID, players[0].ID)
	if err != nil {
		t.Fatalf("roll to own property: %v", err)
	}
	if out.Pending != domain.ActionNone {
		t.Fatalf("own property set a marker: %+v", out)
	}

	gg := reloadGame(t, store, g.ID)
	gg.ExpectedAction = domain.ActionRollDice
	setGame(t, store, gg)
	a := reloadPlayer(t, store, players[0].ID)
	a.Position = 0
	setPlayer(t, store, a)

	out, err = eng.RollAndMove(ctx, g.ID, players[0].ID)
	if err != nil {
		t.Fatalf("roll to mortgaged property: %v", err)
	}
	if out.Position != 8 || out.Pending != domain.ActionNone {
		t.Fatalf("mortgaged property charged rent: %+v", out)
	}
	if a := reloadPlayer(t, store, players[0].ID); a.Money != 1500 {
		t.Fatalf("money = %d, want 1500", a.Money)
	}
}

func TestLuxuryTaxDebitedImmediately(t *testing.T) {
	eng, store, g, players := newTestGame(t, "alice", "bob")
	a := reloadPlayer(t, store, players[0].ID)
	a.Position = 35
	setPlayer(t, store, a)
	setRolls(eng, [2]int{1, 2})

	out, err := eng.RollAndMove(context.Background(), g.ID, players[0].ID)
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if out.Position != 38 || out.Pending != domain.ActionNone {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if a := reloadPlayer(t, store, players[0].ID); a.Money != 1400 {
		t.Fatalf("money = %d, want 1400", a.Money)
	}
}

func TestIncomeTaxOffersPercentageChoice(t *testing.T) {
	eng, store, g, players := newTestGame(t, "alice", "bob")
	ctx := context.Background()
	a := reloadPlayer(t, store, players[0].ID)
	a.Position = 1
	setPlayer(t, store, a)
	setRolls(eng, [2]int{1, 2})

	out, err := eng.RollAndMove(ctx, g.ID, players[0].ID)
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if out.Pending != domain.ActionPayTax {
		t.Fatalf("expected pay_tax prompt, got %s", out.Pending)
	}

	// 10 percent of a $1500 net worth beats the $200 flat charge.
	res, err := eng.ResolvePendingAction(ctx, g.ID, players[0].ID, Choice{TaxPercent: true})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Pending != domain.ActionNone {
		t.Fatalf("marker not cleared: %s", res.Pending)
	}
	if a := reloadPlayer(t, store, players[0].ID); a.Money != 1350 {
		t.Fatalf("money = %d, want 1350", a.Money)
	}
}

func TestChanceAndChestSetDrawMarkers(t *testing.T) {
	eng, _, g, players := newTestGame(t, "alice", "bob")
	setRolls(eng, [2]int{3, 4}) // position 7, Chance

	out, err := eng.RollAndMove(context.Background(), g.ID, players[0].ID)
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	if out.Pending != domain.ActionDrawChance {
		t.Fatalf("expected draw_chance, got %s", out.Pending)
	}
}

func TestApplyCardCollect(t *testing.T) {
	eng, store, g, players := newTestGame(t, "alice", "bob")
	ctx := context.Background()
	gg := reloadGame(t, store, g.ID)
	a := reloadPlayer(t, store, players[0].ID)

	res, err := eng.applyCard(ctx, gg, a, Card{Kind: CardCollect, Amount: 50})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res.pending != domain.ActionNone {
		t.Fatalf("collect set a marker: %+v", res)
	}
	if p := reloadPlayer(t, store, players[0].ID); p.Money != 1550 {
		t.Fatalf("money = %d, want 1550", p.Money)
	}
}

func TestApplyCardGoToJail(t *testing.T) {
	eng, store, g, players := newTestGame(t, "alice", "bob")
	ctx := context.Background()
	gg := reloadGame(t, store, g.ID)
	a := reloadPlayer(t, store, players[0].ID)

	if _, err := eng.applyCard(ctx, gg, a, Card{Kind: CardGoToJail}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	p := reloadPlayer(t, store, players[0].ID)
	if !p.InJail || p.Position != 10 {
		t.Fatalf("not jailed: %+v", p)
	}
}

func TestApplyCardAdvanceToGoCreditsSalary(t *testing.T) {
	eng, store, g, players := newTestGame(t, "alice", "bob")
	ctx := context.Background()
	gg := reloadGame(t, store, g.ID)
	a := reloadPlayer(t, store, players[0].ID)
	a.Position = 4
	setPlayer(t, store, a)
	a = reloadPlayer(t, store, players[0].ID)

	res, err := eng.applyCard(ctx, gg, a, Card{Kind: CardMoveTo, Target: 0})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res.pending != domain.ActionNone {
		t.Fatalf("landing on GO set a marker: %+v", res)
	}
	p := reloadPlayer(t, store, players[0].ID)
	if p.Position != 0 || p.Money != 1700 {
		t.Fatalf("pos=%d money=%d, want 0/1700", p.Position, p.Money)
	}
}

func TestApplyCardMoveBackNeverCreditsGo(t *testing.T) {
	eng, store, g, players := newTestGame(t, "alice", "bob")
	ctx := context.Background()
	gg := reloadGame(t, store, g.ID)
	a := reloadPlayer(t, store, players[0].ID)
	a.Position = 7
	setPlayer(t, store, a)
	a = reloadPlayer(t, store, players[0].ID)

	res, err := eng.applyCard(ctx, gg, a, Card{Kind: CardMoveBack, Target: 3})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	// Back three from Chance lands on Income Tax.
	if res.pending != domain.ActionPayTax {
		t.Fatalf("expected pay_tax after move back, got %+v", res)
	}
	p := reloadPlayer(t, store, players[0].ID)
	if p.Position != 4 || p.Money != 1500 {
		t.Fatalf("pos=%d money=%d, want 4/1500", p.Position, p.Money)
	}
}

func TestApplyCardRepairsChargesPerImprovement(t *testing.T) {
	eng, store, g, players := newTestGame(t, "alice", "bob")
	ctx := context.Background()
	prop := setOwner(t, store, g.ID, 1, players[0].ID)
	prop.Improvements = 3
	if err := store.SaveProperty(ctx, prop); err != nil {
		t.Fatalf("save: %v", err)
	}

	gg := reloadGame(t, store, g.ID)
	a := reloadPlayer(t, store, players[0].ID)
	if _, err := eng.applyCard(ctx, gg, a, Card{Kind: CardRepairs, Amount: 25}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if p := reloadPlayer(t, store, players[0].ID); p.Money != 1425 {
		t.Fatalf("money = %d, want 1425", p.Money)
	}
}
