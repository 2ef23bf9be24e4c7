package board

// SpaceType - what landing on the space does
type SpaceType string

const (
	TypeGo          SpaceType = "go"
	TypeStreet      SpaceType = "street"
	TypeRailroad    SpaceType = "railroad"
	TypeUtility     SpaceType = "utility"
	TypeTax         SpaceType = "tax"
	TypeChance      SpaceType = "chance"
	TypeChest       SpaceType = "chest"
	TypeJail        SpaceType = "jail" // just visiting
	TypeFreeParking SpaceType = "free_parking"
	TypeGoToJail    SpaceType = "go_to_jail"
)

// Space is one of the 40 board positions. Rent holds the street rent
// ladder indexed by improvement level (0 = unimproved, 5 = hotel).
type Space struct {
	Pos        int
	Name       string
	Type       SpaceType
	Group      string
	Price      int64
	Rent       [6]int64
	Mortgage   int64
	HouseCost  int64
	TaxAmount  int64 // fixed tax
	TaxPercent int   // percentage-of-net-worth tax; wins over TaxAmount when set
}

// Purchasable reports whether the space can be owned.
func (s *Space) Purchasable() bool {
	switch s.Type {
	case TypeStreet, TypeRailroad, TypeUtility:
		return true
	}
	return false
}

const (
	Size         = 40
	GoPos        = 0
	JailPos      = 10
	GoToJailPos  = 30
	FreeParkPos  = 20
)

// Railroad rent by number of railroads the owner holds.
var railroadRent = [5]int64{0, 25, 50, 100, 200}

// RailroadRent returns the flat rent for owning count railroads.
func RailroadRent(count int) int64 {
	if count < 0 || count > 4 {
		return 0
	}
	return railroadRent[count]
}

// UtilityMultiplier returns the dice multiplier for owning count utilities.
func UtilityMultiplier(count int) int64 {
	if count >= 2 {
		return 10
	}
	if count == 1 {
		return 4
	}
	return 0
}

func street(pos int, name, group string, price, house int64, rent [6]int64) Space {
	return Space{Pos: pos, Name: name, Type: TypeStreet, Group: group,
		Price: price, Rent: rent, Mortgage: price / 2, HouseCost: house}
}

var spaces = [Size]Space{
	{Pos: 0, Name: "GO", Type: TypeGo},
	street(1, "Mediterranean Avenue", "brown", 60, 50, [6]int64{2, 10, 30, 90, 160, 250}),
	{Pos: 2, Name: "Community Chest", Type: TypeChest},
	street(3, "Baltic Avenue", "brown", 60, 50, [6]int64{4, 20, 60, 180, 320, 450}),
	{Pos: 4, Name: "Income Tax", Type: TypeTax, TaxAmount: 200, TaxPercent: 10},
	{Pos: 5, Name: "Reading Railroad", Type: TypeRailroad, Group: "rail", Price: 200, Mortgage: 100},
	street(6, "Oriental Avenue", "lightblue", 100, 50, [6]int64{6, 30, 90, 270, 400, 550}),
	{Pos: 7, Name: "Chance", Type: TypeChance},
	street(8, "Vermont Avenue", "lightblue", 100, 50, [6]int64{6, 30, 90, 270, 400, 550}),
	street(9, "Connecticut Avenue", "lightblue", 120, 50, [6]int64{8, 40, 100, 300, 450, 600}),
	{Pos: 10, Name: "Jail", Type: TypeJail},
	street(11, "St. Charles Place", "pink", 140, 100, [6]int64{10, 50, 150, 450, 625, 750}),
	{Pos: 12, Name: "Electric Company", Type: TypeUtility, Group: "utility", Price: 150, Mortgage: 75},
	street(13, "States Avenue", "pink", 140, 100, [6]int64{10, 50, 150, 450, 625, 750}),
	street(14, "Virginia Avenue", "pink", 160, 100, [6]int64{12, 60, 180, 500, 700, 900}),
	{Pos: 15, Name: "Pennsylvania Railroad", Type: TypeRailroad, Group: "rail", Price: 200, Mortgage: 100},
	street(16, "St. James Place", "orange", 180, 100, [6]int64{14, 70, 200, 550, 750, 950}),
	{Pos: 17, Name: "Community Chest", Type: TypeChest},
	street(18, "Tennessee Avenue", "orange", 180, 100, [6]int64{14, 70, 200, 550, 750, 950}),
	street(19, "New York Avenue", "orange", 200, 100, [6]int64{16, 80, 220, 600, 800, 1000}),
	{Pos: 20, Name: "Free Parking", Type: TypeFreeParking},
	street(21, "Kentucky Avenue", "red", 220, 150, [6]int64{18, 90, 250, 700, 875, 1050}),
	{Pos: 22, Name: "Chance", Type: TypeChance},
	street(23, "Indiana Avenue", "red", 220, 150, [6]int64{18, 90, 250, 700, 875, 1050}),
	street(24, "Illinois Avenue", "red", 240, 150, [6]int64{20, 100, 300, 750, 925, 1100}),
	{Pos: 25, Name: "B&O Railroad", Type: TypeRailroad, Group: "rail", Price: 200, Mortgage: 100},
	street(26, "Atlantic Avenue", "yellow", 260, 150, [6]int64{22, 110, 330, 800, 975, 1150}),
	street(27, "Ventnor Avenue", "yellow", 260, 150, [6]int64{22, 110, 330, 800, 975, 1150}),
	{Pos: 28, Name: "Water Works", Type: TypeUtility, Group: "utility", Price: 150, Mortgage: 75},
	street(29, "Marvin Gardens", "yellow", 280, 150, [6]int64{24, 120, 360, 850, 1025, 1200}),
	{Pos: 30, Name: "Go To Jail", Type: TypeGoToJail},
	street(31, "Pacific Avenue", "green", 300, 200, [6]int64{26, 130, 390, 900, 1100, 1275}),
	street(32, "North Carolina Avenue", "green", 300, 200, [6]int64{26, 130, 390, 900, 1100, 1275}),
	{Pos: 33, Name: "Community Chest", Type: TypeChest},
	street(34, "Pennsylvania Avenue", "green", 320, 200, [6]int64{28, 150, 450, 1000, 1200, 1400}),
	{Pos: 35, Name: "Short Line", Type: TypeRailroad, Group: "rail", Price: 200, Mortgage: 100},
	{Pos: 36, Name: "Chance", Type: TypeChance},
	street(37, "Park Place", "blue", 350, 200, [6]int64{35, 175, 500, 1100, 1300, 1500}),
	{Pos: 38, Name: "Luxury Tax", Type: TypeTax, TaxAmount: 100},
	street(39, "Boardwalk", "blue", 400, 200, [6]int64{50, 200, 600, 1400, 1700, 2000}),
}

// Get returns the space at pos. Panics on an out-of-range position, which
// can only come from a programming error since positions are computed mod 40.
func Get(pos int) *Space {
	return &spaces[pos]
}

// Group returns the positions of all spaces in the named color group.
func Group(group string) []int {
	var out []int
	for i := range spaces {
		if spaces[i].Group == group && spaces[i].Group != "" {
			out = append(out, i)
		}
	}
	return out
}

// PurchasablePositions returns every ownable position, in board order.
func PurchasablePositions() []int {
	var out []int
	for i := range spaces {
		if spaces[i].Purchasable() {
			out = append(out, i)
		}
	}
	return out
}
