package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"tycoon_backend/internal/board"
	"tycoon_backend/internal/bot"
	"tycoon_backend/internal/config"
	"tycoon_backend/internal/domain"
	"tycoon_backend/internal/engine"
	"tycoon_backend/internal/metrics"
	"tycoon_backend/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameNotJoinable = errors.New("game is not accepting players")
	ErrTooFewPlayers   = errors.New("at least two players required")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrUserNotFound    = errors.New("user not found")
	ErrAlreadyJoined   = errors.New("already joined this game")
	ErrBadArchetype    = errors.New("unknown bot archetype")
)

var botNames = []string{"Baron", "Magnate", "Broker", "Tycoon", "Mogul", "Shark", "Banker", "Trader"}

// GameService is the application layer over the turn state machine: game
// lifecycle, auth, intent deduplication and read models. Turn intents
// delegate to the engine, which owns all rules.
type GameService struct {
	users      *repository.UserRepository
	games      *repository.GameRepository
	players    *repository.PlayerRepository
	properties *repository.PropertyRepository
	loans      *repository.LoanRepository
	events     *repository.EventRepository
	eng        *engine.Engine
	registry   *bot.Registry
	guard      *IntentGuard
	notifier   *GameNotifier
	rules      config.GameRules
}

func NewGameService(
	users *repository.UserRepository,
	games *repository.GameRepository,
	players *repository.PlayerRepository,
	properties *repository.PropertyRepository,
	loans *repository.LoanRepository,
	events *repository.EventRepository,
	eng *engine.Engine,
	registry *bot.Registry,
	guard *IntentGuard,
	notifier *GameNotifier,
	rules config.GameRules,
) *GameService {
	return &GameService{
		users:      users,
		games:      games,
		players:    players,
		properties: properties,
		loans:      loans,
		events:     events,
		eng:        eng,
		registry:   registry,
		guard:      guard,
		notifier:   notifier,
		rules:      rules,
	}
}

// Register creates a user and returns a signed token.
func (s *GameService) Register(ctx context.Context, username string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, "", ErrUserNotFound
	}
	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrUsernameTaken
	}

	u := &domain.User{Username: username}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", err
	}
	token, err := GenerateJWT(u.ID)
	return u, token, err
}

// Login returns a fresh token for an existing user.
func (s *GameService) Login(ctx context.Context, username string) (*domain.User, string, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", ErrUserNotFound
	}
	token, err := GenerateJWT(u.ID)
	return u, token, err
}

// CreateGame opens a new session in setup status with a shareable join
// code. LapLimit 0 means the game runs until one player remains.
func (s *GameService) CreateGame(ctx context.Context, lapLimit int) (*domain.Game, error) {
	if lapLimit <= 0 {
		lapLimit = s.rules.DefaultLapCap
	}
	g := &domain.Game{
		Code:           strings.ToUpper(uuid.NewString()[:8]),
		Status:         domain.GameStatusSetup,
		ExpectedAction: domain.ActionNone,
		LapLimit:       lapLimit,
	}
	if err := s.games.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// JoinGame adds the user to a game in setup by its join code.
func (s *GameService) JoinGame(ctx context.Context, code string, userID int64, name string) (*domain.Player, error) {
	g, err := s.games.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGameNotFound
	}
	if g.Status != domain.GameStatusSetup {
		return nil, ErrGameNotJoinable
	}

	existing, err := s.players.ListByGame(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		if p.UserID != nil && *p.UserID == userID {
			return nil, ErrAlreadyJoined
		}
	}

	if strings.TrimSpace(name) == "" {
		if u, err := s.users.GetByID(ctx, userID); err == nil && u != nil {
			name = u.Username
		}
	}
	p := &domain.Player{
		GameID: g.ID,
		UserID: &userID,
		Name:   name,
		InGame: true,
	}
	if err := s.players.Create(ctx, p); err != nil {
		return nil, err
	}

	g.PlayerOrder = append(g.PlayerOrder, p.ID)
	if err := s.games.Update(ctx, g); err != nil {
		return nil, err
	}
	return p, nil
}

// AddBot seats a computer player in a game in setup.
func (s *GameService) AddBot(ctx context.Context, gameID int64, archetype domain.Archetype, difficulty int) (*domain.Player, error) {
	switch archetype {
	case domain.ArchetypeConservative, domain.ArchetypeBalanced, domain.ArchetypeAggressive:
	default:
		return nil, ErrBadArchetype
	}
	if difficulty < 1 {
		difficulty = 1
	}

	g, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGameNotFound
	}
	if g.Status != domain.GameStatusSetup {
		return nil, ErrGameNotJoinable
	}

	name := fmt.Sprintf("%s Bot", botNames[rand.Intn(len(botNames))])
	p := &domain.Player{
		GameID:        g.ID,
		Name:          name,
		IsBot:         true,
		BotArchetype:  archetype,
		BotDifficulty: difficulty,
		InGame:        true,
	}
	if err := s.players.Create(ctx, p); err != nil {
		return nil, err
	}
	s.registry.Register(p)

	g.PlayerOrder = append(g.PlayerOrder, p.ID)
	if err := s.games.Update(ctx, g); err != nil {
		return nil, err
	}
	return p, nil
}

// StartGame activates a game: shuffles the seating order, creates the
// property rows for every purchasable space and hands the first roll to
// the first player.
func (s *GameService) StartGame(ctx context.Context, gameID int64) (*domain.Game, error) {
	unlock := s.eng.Locks().Lock(gameID)
	defer unlock()

	g, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGameNotFound
	}
	if g.Status != domain.GameStatusSetup {
		return nil, ErrGameNotJoinable
	}
	if len(g.PlayerOrder) < 2 {
		return nil, ErrTooFewPlayers
	}

	rand.Shuffle(len(g.PlayerOrder), func(i, j int) {
		g.PlayerOrder[i], g.PlayerOrder[j] = g.PlayerOrder[j], g.PlayerOrder[i]
	})

	if err := s.properties.CreateForGame(ctx, g.ID, board.PurchasablePositions()); err != nil {
		return nil, err
	}

	first := g.PlayerOrder[0]
	g.Status = domain.GameStatusActive
	g.CurrentPlayerID = &first
	g.ExpectedAction = domain.ActionRollDice
	g.TurnNumber = 1
	if err := s.games.Update(ctx, g); err != nil {
		return nil, err
	}

	metrics.GamesActive.Inc()
	s.notifier.Notify(ctx, &domain.GameEvent{
		GameID: g.ID,
		Type:   domain.EventGameStarted,
		Payload: map[string]any{
			"order":     g.PlayerOrder,
			"lap_limit": g.LapLimit,
		},
	})

	// The first seat may be a bot.
	if p, err := s.players.GetByID(ctx, first); err == nil && p != nil && p.IsBot {
		s.eng.WakeBots(g.ID)
	}
	return g, nil
}

// Snapshot is the full read model of one game.
type Snapshot struct {
	Game       *domain.Game       `json:"game"`
	Players    []*domain.Player   `json:"players"`
	Properties []*domain.Property `json:"properties"`
	Economy    EconomySnapshot    `json:"economy"`
}

type EconomySnapshot struct {
	Phase           engine.Phase `json:"phase"`
	InterestRateBP  int          `json:"interest_rate_bp"`
	InflationRateBP int          `json:"inflation_rate_bp"`
}

func (s *GameService) Snapshot(ctx context.Context, gameID int64) (*Snapshot, error) {
	g, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGameNotFound
	}
	players, err := s.players.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	props, err := s.properties.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	phase, interest, inflation := s.eng.EconomyState()
	return &Snapshot{
		Game:       g,
		Players:    players,
		Properties: props,
		Economy:    EconomySnapshot{Phase: phase, InterestRateBP: interest, InflationRateBP: inflation},
	}, nil
}

// PlayerForUser resolves the caller's player seat in a game.
func (s *GameService) PlayerForUser(ctx context.Context, gameID, userID int64) (*domain.Player, error) {
	players, err := s.players.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		if p.UserID != nil && *p.UserID == userID {
			return p, nil
		}
	}
	return nil, engine.ErrPlayerNotFound
}

// RollDice runs the roll intent through the dedup guard and the engine.
func (s *GameService) RollDice(ctx context.Context, gameID, playerID int64) (*engine.RollOutcome, error) {
	turn, err := s.turnNumber(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Claim(ctx, gameID, playerID, turn, "roll_dice"); err != nil {
		return nil, err
	}
	out, err := s.eng.RollAndMove(ctx, gameID, playerID)
	if err != nil {
		s.guard.Release(ctx, gameID, playerID, turn, "roll_dice")
		return nil, err
	}
	if out.RollAgain || out.Pending != domain.ActionNone {
		// The turn is not settled yet; a doubles roll may legitimately
		// follow once the prompt resolves, so free the key for it.
		s.guard.Release(ctx, gameID, playerID, turn, "roll_dice")
	}
	return out, nil
}

// ResolveAction answers the pending action.
func (s *GameService) ResolveAction(ctx context.Context, gameID, playerID int64, choice engine.Choice) (*engine.ResolveOutcome, error) {
	turn, err := s.turnNumber(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Claim(ctx, gameID, playerID, turn, "resolve_pending_action"); err != nil {
		return nil, err
	}
	out, err := s.eng.ResolvePendingAction(ctx, gameID, playerID, choice)
	if err != nil {
		s.guard.Release(ctx, gameID, playerID, turn, "resolve_pending_action")
		return nil, err
	}
	if out.Pending != domain.ActionNone {
		// A follow-up action surfaced; its resolution is a new intent.
		s.guard.Release(ctx, gameID, playerID, turn, "resolve_pending_action")
	}
	return out, nil
}

// EndTurn hands the turn over.
func (s *GameService) EndTurn(ctx context.Context, gameID, playerID int64) error {
	turn, err := s.turnNumber(ctx, gameID)
	if err != nil {
		return err
	}
	if err := s.guard.Claim(ctx, gameID, playerID, turn, "end_turn"); err != nil {
		return err
	}
	if err := s.eng.EndTurn(ctx, gameID, playerID); err != nil {
		s.guard.Release(ctx, gameID, playerID, turn, "end_turn")
		return err
	}
	return nil
}

// ForceEndTurn is the admin unstall hatch.
func (s *GameService) ForceEndTurn(ctx context.Context, gameID int64) error {
	return s.eng.ForceEndTurn(ctx, gameID)
}

// ProposeLiquidation lists the options a manage_assets marker offers.
func (s *GameService) ProposeLiquidation(ctx context.Context, gameID, playerID int64) ([]engine.LiquidationOption, error) {
	g, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGameNotFound
	}
	if g.ExpectedAction != domain.ActionRaiseFunds || !g.IsCurrent(playerID) || g.ActionDetails == nil {
		return nil, engine.ErrActionNotPending
	}
	return s.eng.ProposeLiquidation(ctx, playerID, g.ActionDetails.Amount)
}

// PlayerLoans lists a player's outstanding loans.
func (s *GameService) PlayerLoans(ctx context.Context, playerID int64) ([]*domain.Loan, error) {
	return s.loans.ListActiveByPlayer(ctx, playerID)
}

// PrepayLoan settles a loan early.
func (s *GameService) PrepayLoan(ctx context.Context, gameID, playerID, loanID int64) error {
	return s.eng.PrepayLoan(ctx, gameID, playerID, loanID)
}

// OpenDeposit places cash at interest until a future lap.
func (s *GameService) OpenDeposit(ctx context.Context, gameID, playerID int64, amount int64, laps int) error {
	return s.eng.OpenDeposit(ctx, gameID, playerID, amount, laps)
}

// Events replays the durable event log from afterID.
func (s *GameService) Events(ctx context.Context, gameID, afterID int64, limit int) ([]*domain.GameEvent, error) {
	return s.events.ListAfter(ctx, gameID, afterID, limit)
}

func (s *GameService) turnNumber(ctx context.Context, gameID int64) (int, error) {
	g, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return 0, err
	}
	if g == nil {
		return 0, ErrGameNotFound
	}
	return g.TurnNumber, nil
}
