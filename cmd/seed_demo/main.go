package main

import (
	"context"
	"log"
	"os"

	"tycoon_backend/internal/bot"
	"tycoon_backend/internal/config"
	"tycoon_backend/internal/db"
	"tycoon_backend/internal/domain"
	"tycoon_backend/internal/engine"
	"tycoon_backend/internal/repository"
	"tycoon_backend/internal/service"
)

// Seeds a demo game: two human accounts, one bot of each archetype, game
// started and ready for the app's scheduler to pick up.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "seed-demo-secret"
	}
	service.InitJWT(secret)

	pool := db.Connect(dsn)
	defer pool.Close()

	cfg := config.GameRules{
		GoSalary: 200, JailFine: 50, JailPosition: 10, GoToJailSpace: 30,
		BoardSize: 40, MaxJailTurns: 3, DefaultLapCap: 20,
		CreditScoreMin: 600, CreditCap: 500, CreditFloor: 50,
	}

	userRepo := repository.NewUserRepository(pool)
	gameRepo := repository.NewGameRepository(pool)
	playerRepo := repository.NewPlayerRepository(pool)
	propertyRepo := repository.NewPropertyRepository(pool)
	loanRepo := repository.NewLoanRepository(pool)
	txnRepo := repository.NewTransactionRepository(pool)
	eventRepo := repository.NewEventRepository(pool)

	store := repository.NewStore(gameRepo, playerRepo, propertyRepo, loanRepo, txnRepo)
	notifier := service.NewGameNotifier(eventRepo, nil)
	eng := engine.New(store, notifier, cfg)
	registry := bot.NewRegistry(playerRepo)
	eng.SetBidderSource(registry)

	games := service.NewGameService(
		userRepo, gameRepo, playerRepo, propertyRepo, loanRepo, eventRepo,
		eng, registry, service.NewIntentGuard("", "", 0), notifier, cfg,
	)

	ctx := context.Background()

	userA := ensureUser(ctx, games, userRepo, "demo_alice")
	userB := ensureUser(ctx, games, userRepo, "demo_bob")

	g, err := games.CreateGame(ctx, 20)
	if err != nil {
		log.Fatalf("create game: %v", err)
	}
	log.Printf("game created id=%d code=%s", g.ID, g.Code)

	if _, err := games.JoinGame(ctx, g.Code, userA.ID, "Alice"); err != nil {
		log.Fatalf("join alice: %v", err)
	}
	if _, err := games.JoinGame(ctx, g.Code, userB.ID, "Bob"); err != nil {
		log.Fatalf("join bob: %v", err)
	}

	for _, arch := range []domain.Archetype{
		domain.ArchetypeConservative, domain.ArchetypeBalanced, domain.ArchetypeAggressive,
	} {
		p, err := games.AddBot(ctx, g.ID, arch, 1)
		if err != nil {
			log.Fatalf("add bot %s: %v", arch, err)
		}
		log.Printf("bot seated id=%d archetype=%s", p.ID, arch)
	}

	if _, err := games.StartGame(ctx, g.ID); err != nil {
		log.Fatalf("start game: %v", err)
	}
	log.Printf("game %d started; join code %s", g.ID, g.Code)
}

func ensureUser(ctx context.Context, games *service.GameService, users *repository.UserRepository, username string) *domain.User {
	u, err := users.GetByUsername(ctx, username)
	if err != nil {
		log.Fatalf("lookup %s: %v", username, err)
	}
	if u != nil {
		log.Printf("user %s exists id=%d", username, u.ID)
		return u
	}
	u, token, err := games.Register(ctx, username)
	if err != nil {
		log.Fatalf("register %s: %v", username, err)
	}
	log.Printf("user %s created id=%d token=%s", username, u.ID, token)
	return u
}
