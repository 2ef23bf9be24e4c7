package board

import "testing"

func TestBoardLayout(t *testing.T) {
	for i := 0; i < Size; i++ {
		s := Get(i)
		if s.Pos != i {
			t.Fatalf("space %d carries pos %d", i, s.Pos)
		}
		if s.Name == "" {
			t.Fatalf("space %d has no name", i)
		}
	}
	if got := len(PurchasablePositions()); got != 28 {
		t.Fatalf("purchasable spaces = %d, want 28", got)
	}
	if Get(JailPos).Type != TypeJail || Get(GoToJailPos).Type != TypeGoToJail {
		t.Fatalf("jail corners misplaced")
	}
}

func TestColorGroupSizes(t *testing.T) {
	groups := map[string]int{
		"brown": 2, "lightblue": 3, "pink": 3, "orange": 3,
		"red": 3, "yellow": 3, "green": 3, "blue": 2,
		"rail": 4, "utility": 2,
	}
	for name, want := range groups {
		if got := len(Group(name)); got != want {
			t.Fatalf("group %s has %d members, want %d", name, got, want)
		}
	}
}

func TestStreetEconomics(t *testing.T) {
	for i := 0; i < Size; i++ {
		s := Get(i)
		if s.Type != TypeStreet {
			continue
		}
		if s.Mortgage != s.Price/2 {
			t.Fatalf("%s: mortgage %d is not half of price %d", s.Name, s.Mortgage, s.Price)
		}
		for lvl := 1; lvl < len(s.Rent); lvl++ {
			if s.Rent[lvl] <= s.Rent[lvl-1] {
				t.Fatalf("%s: rent ladder not ascending at level %d", s.Name, lvl)
			}
		}
	}
}

func TestTaxSpaces(t *testing.T) {
	income := Get(4)
	if income.Type != TypeTax || income.TaxAmount != 200 || income.TaxPercent != 10 {
		t.Fatalf("income tax: %+v", income)
	}
	luxury := Get(38)
	if luxury.Type != TypeTax || luxury.TaxAmount != 100 || luxury.TaxPercent != 0 {
		t.Fatalf("luxury tax: %+v", luxury)
	}
}

func TestGroupRents(t *testing.T) {
	cases := []struct {
		count int
		want  int64
	}{
		{0, 0}, {1, 25}, {2, 50}, {3, 100}, {4, 200}, {5, 0},
	}
	for _, tc := range cases {
		if got := RailroadRent(tc.count); got != tc.want {
			t.Fatalf("RailroadRent(%d) = %d, want %d", tc.count, got, tc.want)
		}
	}
	if UtilityMultiplier(1) != 4 || UtilityMultiplier(2) != 10 || UtilityMultiplier(0) != 0 {
		t.Fatalf("utility multipliers off")
	}
}
