package engine

import (
	"context"
	"sync"
	"testing"

	"tycoon_backend/internal/board"
	"tycoon_backend/internal/config"
	"tycoon_backend/internal/domain"
)

// memStore is an in-memory Store for state machine tests. It mirrors the
// Postgres repository's contracts: reads return copies, Transfer fails
// without side effects on insufficient funds, credit scores clamp to
// 300-850.
type memStore struct {
	mu       sync.Mutex
	games    map[int64]*domain.Game
	players  map[int64]*domain.Player
	props    map[int64]*domain.Property
	loans    map[int64]*domain.Loan
	deposits map[int64]*domain.TermDeposit
	txns     []*domain.Transaction
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{
		games:    make(map[int64]*domain.Game),
		players:  make(map[int64]*domain.Player),
		props:    make(map[int64]*domain.Property),
		loans:    make(map[int64]*domain.Loan),
		deposits: make(map[int64]*domain.TermDeposit),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func copyGame(g *domain.Game) *domain.Game {
	c := *g
	if g.CurrentPlayerID != nil {
		v := *g.CurrentPlayerID
		c.CurrentPlayerID = &v
	}
	if g.ActionDetails != nil {
		d := *g.ActionDetails
		c.ActionDetails = &d
	}
	if g.WinnerID != nil {
		v := *g.WinnerID
		c.WinnerID = &v
	}
	c.PlayerOrder = append([]int64(nil), g.PlayerOrder...)
	return &c
}

func copyPlayer(p *domain.Player) *domain.Player {
	c := *p
	return &c
}

func copyProp(p *domain.Property) *domain.Property {
	c := *p
	if p.OwnerID != nil {
		v := *p.OwnerID
		c.OwnerID = &v
	}
	return &c
}

func (s *memStore) Game(_ context.Context, id int64) (*domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return nil, nil
	}
	return copyGame(g), nil
}

func (s *memStore) SaveGame(_ context.Context, g *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == 0 {
		g.ID = s.id()
	}
	s.games[g.ID] = copyGame(g)
	return nil
}

func (s *memStore) Player(_ context.Context, id int64) (*domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return nil, nil
	}
	return copyPlayer(p), nil
}

func (s *memStore) Players(_ context.Context, gameID int64) ([]*domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Player
	for _, p := range s.players {
		if p.GameID == gameID {
			out = append(out, copyPlayer(p))
		}
	}
	return out, nil
}

func (s *memStore) SavePlayer(_ context.Context, p *domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	s.players[p.ID] = copyPlayer(p)
	return nil
}

func (s *memStore) Transfer(_ context.Context, fromID int64, toID *int64, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, ok := s.players[fromID]
	if !ok {
		return ErrPlayerNotFound
	}
	if from.Money < amount {
		return ErrInsufficientFunds
	}
	from.Money -= amount
	if toID != nil {
		if to, ok := s.players[*toID]; ok {
			to.Money += amount
		}
	}
	return nil
}

func (s *memStore) Credit(_ context.Context, playerID int64, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	p.Money += amount
	return nil
}

func (s *memStore) AdjustCreditScore(_ context.Context, playerID int64, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	p.CreditScore += delta
	if p.CreditScore > 850 {
		p.CreditScore = 850
	}
	if p.CreditScore < 300 {
		p.CreditScore = 300
	}
	return nil
}

func (s *memStore) PropertyAt(_ context.Context, gameID int64, pos int) (*domain.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.props {
		if p.GameID == gameID && p.BoardPos == pos {
			return copyProp(p), nil
		}
	}
	return nil, nil
}

func (s *memStore) PropertiesOf(_ context.Context, playerID int64) ([]*domain.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Property
	for _, p := range s.props {
		if p.OwnedBy(playerID) {
			out = append(out, copyProp(p))
		}
	}
	// Board order, to match the repository's ORDER BY.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].BoardPos < out[i].BoardPos {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (s *memStore) SaveProperty(_ context.Context, p *domain.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	s.props[p.ID] = copyProp(p)
	return nil
}

func (s *memStore) ReleaseProperties(_ context.Context, playerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.props {
		if p.OwnedBy(playerID) {
			p.OwnerID = nil
			p.Mortgaged = false
			p.Improvements = 0
		}
	}
	return nil
}

func (s *memStore) AddLoan(_ context.Context, l *domain.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == 0 {
		l.ID = s.id()
	}
	c := *l
	s.loans[l.ID] = &c
	return nil
}

func (s *memStore) LoansOf(_ context.Context, playerID int64) ([]*domain.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Loan
	for _, l := range s.loans {
		if l.PlayerID == playerID && !l.Repaid {
			c := *l
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *memStore) RepayLoan(_ context.Context, loanID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loans[loanID]
	if !ok {
		return ErrLoanNotFound
	}
	l.Repaid = true
	return nil
}

func (s *memStore) AddDeposit(_ context.Context, d *domain.TermDeposit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == 0 {
		d.ID = s.id()
	}
	c := *d
	s.deposits[d.ID] = &c
	return nil
}

func (s *memStore) MaturedDeposits(_ context.Context, gameID int64, lap int) ([]*domain.TermDeposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.TermDeposit
	for _, d := range s.deposits {
		if d.GameID == gameID && !d.PaidOut && d.MaturesLap <= lap {
			c := *d
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *memStore) SettleDeposit(_ context.Context, depositID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.deposits[depositID]; ok {
		d.PaidOut = true
	}
	return nil
}

func (s *memStore) RecordTxn(_ context.Context, t *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *t
	s.txns = append(s.txns, &c)
	return nil
}

var _ Store = (*memStore)(nil)

// scriptRoller replays a fixed dice sequence.
type scriptRoller struct {
	rolls [][2]int
	i     int
}

func (r *scriptRoller) Roll() (int, int) {
	d := r.rolls[r.i%len(r.rolls)]
	r.i++
	return d[0], d[1]
}

func testRules() config.GameRules {
	return config.GameRules{
		GoSalary:       200,
		JailFine:       50,
		JailPosition:   10,
		GoToJailSpace:  30,
		BoardSize:      40,
		MaxJailTurns:   3,
		CreditScoreMin: 600,
		CreditCap:      500,
		CreditFloor:    50,
	}
}

// newTestGame builds an active game with one player per name, $1500 each,
// seeds ownership rows for every purchasable space and returns the engine
// wired to a memStore.
func newTestGame(t *testing.T, names ...string) (*Engine, *memStore, *domain.Game, []*domain.Player) {
	t.Helper()
	ctx := context.Background()
	store := newMemStore()

	g := &domain.Game{
		Code:           "TEST",
		Status:         domain.GameStatusActive,
		ExpectedAction: domain.ActionRollDice,
	}
	if err := store.SaveGame(ctx, g); err != nil {
		t.Fatalf("save game: %v", err)
	}

	var players []*domain.Player
	for _, name := range names {
		p := &domain.Player{
			GameID:      g.ID,
			Name:        name,
			Money:       1500,
			CreditScore: 650,
			InGame:      true,
		}
		if err := store.SavePlayer(ctx, p); err != nil {
			t.Fatalf("save player %s: %v", name, err)
		}
		players = append(players, p)
		g.PlayerOrder = append(g.PlayerOrder, p.ID)
	}
	g.CurrentPlayerID = &players[0].ID
	if err := store.SaveGame(ctx, g); err != nil {
		t.Fatalf("save game: %v", err)
	}

	for _, pos := range board.PurchasablePositions() {
		if err := store.SaveProperty(ctx, &domain.Property{GameID: g.ID, BoardPos: pos}); err != nil {
			t.Fatalf("seed property %d: %v", pos, err)
		}
	}

	eng := New(store, nil, testRules())
	return eng, store, g, players
}

// setRolls scripts the engine's dice.
func setRolls(e *Engine, rolls ...[2]int) *scriptRoller {
	r := &scriptRoller{rolls: rolls}
	e.roller = r
	return r
}

// reloadGame fetches the current game row or fails the test.
func reloadGame(t *testing.T, store *memStore, id int64) *domain.Game {
	t.Helper()
	g, err := store.Game(context.Background(), id)
	if err != nil {
		t.Fatalf("reload game: %v", err)
	}
	if g == nil {
		t.Fatalf("game %d disappeared", id)
	}
	return g
}

func reloadPlayer(t *testing.T, store *memStore, id int64) *domain.Player {
	t.Helper()
	p, err := store.Player(context.Background(), id)
	if err != nil {
		t.Fatalf("reload player: %v", err)
	}
	if p == nil {
		t.Fatalf("player %d disappeared", id)
	}
	return p
}

// setPlayer mutates a stored player row through the fixture.
func setPlayer(t *testing.T, store *memStore, p *domain.Player) {
	t.Helper()
	if err := store.SavePlayer(context.Background(), p); err != nil {
		t.Fatalf("set player: %v", err)
	}
}

func setGame(t *testing.T, store *memStore, g *domain.Game) {
	t.Helper()
	if err := store.SaveGame(context.Background(), g); err != nil {
		t.Fatalf("set game: %v", err)
	}
}

// setOwner assigns a property at pos to playerID.
func setOwner(t *testing.T, store *memStore, gameID int64, pos int, playerID int64) *domain.Property {
	t.Helper()
	ctx := context.Background()
	prop, err := store.PropertyAt(ctx, gameID, pos)
	if err != nil || prop == nil {
		t.Fatalf("property at %d: %v", pos, err)
	}
	prop.OwnerID = &playerID
	if err := store.SaveProperty(ctx, prop); err != nil {
		t.Fatalf("save property: %v", err)
	}
	return prop
}
