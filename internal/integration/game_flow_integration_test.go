package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"tycoon_backend/internal/bot"
	"tycoon_backend/internal/config"
	"tycoon_backend/internal/domain"
	"tycoon_backend/internal/engine"
	"tycoon_backend/internal/repository"
	"tycoon_backend/internal/service"
)

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "..", "internal", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

func connectDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)
	applyMigrations(t, db)
	return db
}

func testGameRules() config.GameRules {
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

func buildService(t *testing.T, db *pgxpool.Pool) *service.GameService {
	t.Helper()
	service.InitJWT("integration-secret")

	users := repository.NewUserRepository(db)
	games := repository.NewGameRepository(db)
	players := repository.NewPlayerRepository(db)
	properties := repository.NewPropertyRepository(db)
	loans := repository.NewLoanRepository(db)
	txns := repository.NewTransactionRepository(db)
	events := repository.NewEventRepository(db)

	store := repository.NewStore(games, players, properties, loans, txns)
	notifier := service.NewGameNotifier(events, nil)
	rules := testGameRules()
	eng := engine.New(store, notifier, rules)
	registry := bot.NewRegistry(players)
	eng.SetBidderSource(registry)
	guard := service.NewIntentGuard(os.Getenv("REDIS_ADDR"), "", 0)

	return service.NewGameService(users, games, players, properties, loans, events,
		eng, registry, guard, notifier, rules)
}

func TestFullTurnOverDatabase(t *testing.T) {
	db := connectDB(t)
	svc := buildService(t, db)
	ctx := context.Background()

	suffix := time.Now().UnixNano()
	ua, _, err := svc.Register(ctx, fmt.Sprintf("it_alice_%d", suffix))
	if err != nil {
		t.Fatalf("register alice: %v", err)
	}
	ub, _, err := svc.Register(ctx, fmt.Sprintf("it_bob_%d", suffix))
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}

	g, err := svc.CreateGame(ctx, 20)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if _, err := svc.JoinGame(ctx, g.Code, ua.ID, "alice"); err != nil {
		t.Fatalf("join alice: %v", err)
	}
	if _, err := svc.JoinGame(ctx, g.Code, ub.ID, "bob"); err != nil {
		t.Fatalf("join bob: %v", err)
	}
	if _, err := svc.StartGame(ctx, g.ID); err != nil {
		t.Fatalf("start game: %v", err)
	}

	snap, err := svc.Snapshot(ctx, g.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Game.Status != domain.GameStatusActive {
		t.Fatalf("game status = %s", snap.Game.Status)
	}
	if snap.Game.ExpectedAction != domain.ActionRollDice {
		t.Fatalf("opening marker = %s", snap.Game.ExpectedAction)
	}
	if len(snap.Properties) != 28 {
		t.Fatalf("seeded properties = %d, want 28", len(snap.Properties))
	}

	mover := *snap.Game.CurrentPlayerID

	// Drive one full turn against live dice: roll, answer whatever prompt
	// lands, repeat while doubles owe more rolls, then end the turn.
	for i := 0; i < 30; i++ {
		snap, err = svc.Snapshot(ctx, g.ID)
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		if snap.Game.Status != domain.GameStatusActive {
			t.Fatalf("game ended mid-turn: %s", snap.Game.EndReason)
		}
		if *snap.Game.CurrentPlayerID != mover {
			t.Fatalf("turn moved without EndTurn")
		}

		switch snap.Game.ExpectedAction {
		case domain.ActionRollDice, domain.ActionRollAgain:
			if _, err := svc.RollDice(ctx, g.ID, mover); err != nil {
				t.Fatalf("roll: %v", err)
			}
			continue
		case domain.ActionNone:
		default:
			choice := engine.Choice{}
			if _, err := svc.ResolveAction(ctx, g.ID, mover, choice); err != nil {
				t.Fatalf("resolve %s: %v", snap.Game.ExpectedAction, err)
			}
			continue
		}

		if err := svc.EndTurn(ctx, g.ID, mover); err != nil {
			t.Fatalf("end turn: %v", err)
		}
		break
	}

	snap, err = svc.Snapshot(ctx, g.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if *snap.Game.CurrentPlayerID == mover {
		t.Fatalf("turn did not advance")
	}
	if snap.Game.ExpectedAction != domain.ActionRollDice {
		t.Fatalf("next player's marker = %s", snap.Game.ExpectedAction)
	}

	events, err := svc.Events(ctx, g.ID, 0, 100)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(events) == 0 {
		t.Fatalf("no events recorded for a played turn")
	}
	for i := 1; i < len(events); i++ {
		if events[i].ID <= events[i-1].ID {
			t.Fatalf("event ids out of order: %d after %d", events[i].ID, events[i-1].ID)
		}
	}
}

func TestTransferFailsAtomically(t *testing.T) {
	db := connectDB(t)
	ctx := context.Background()

	games := repository.NewGameRepository(db)
	players := repository.NewPlayerRepository(db)

	g := &domain.Game{
		Code:           fmt.Sprintf("T%d", time.Now().UnixNano()%1e7),
		Status:         domain.GameStatusSetup,
		ExpectedAction: domain.ActionNone,
	}
	if err := games.Create(ctx, g); err != nil {
		t.Fatalf("create game: %v", err)
	}

	a := &domain.Player{GameID: g.ID, Name: "payer", Money: 100, CreditScore: 650, InGame: true}
	b := &domain.Player{GameID: g.ID, Name: "payee", Money: 100, CreditScore: 650, InGame: true}
	if err := players.Create(ctx, a); err != nil {
		t.Fatalf("create payer: %v", err)
	}
	if err := players.Create(ctx, b); err != nil {
		t.Fatalf("create payee: %v", err)
	}

	if err := players.Transfer(ctx, a.ID, &b.ID, 500); err != repository.ErrInsufficientFunds {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	pa, _ := players.GetByID(ctx, a.ID)
	pb, _ := players.GetByID(ctx, b.ID)
	if pa.Money != 100 || pb.Money != 100 {
		t.Fatalf("failed transfer moved money: %d / %d", pa.Money, pb.Money)
	}

	if err := players.Transfer(ctx, a.ID, &b.ID, 60); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	pa, _ = players.GetByID(ctx, a.ID)
	pb, _ = players.GetByID(ctx, b.ID)
	if pa.Money != 40 || pb.Money != 160 {
		t.Fatalf("transfer balances: %d / %d", pa.Money, pb.Money)
	}
}
