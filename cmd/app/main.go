package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tycoon_backend/internal/bot"
	"tycoon_backend/internal/config"
	"tycoon_backend/internal/db"
	"tycoon_backend/internal/engine"
	httpServer "tycoon_backend/internal/http"
	"tycoon_backend/internal/http/middleware"
	"tycoon_backend/internal/logger"
	"tycoon_backend/internal/repository"
	"tycoon_backend/internal/service"
	"tycoon_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	userRepo := repository.NewUserRepository(dbPool)
	gameRepo := repository.NewGameRepository(dbPool)
	playerRepo := repository.NewPlayerRepository(dbPool)
	propertyRepo := repository.NewPropertyRepository(dbPool)
	loanRepo := repository.NewLoanRepository(dbPool)
	txnRepo := repository.NewTransactionRepository(dbPool)
	eventRepo := repository.NewEventRepository(dbPool)

	store := repository.NewStore(gameRepo, playerRepo, propertyRepo, loanRepo, txnRepo)

	hub := ws.NewHub()
	hub.StartCleanup()
	notifier := service.NewGameNotifier(eventRepo, hub)

	eng := engine.New(store, notifier, cfg.Game)

	registry := bot.NewRegistry(playerRepo)
	if err := registry.Rebuild(context.Background()); err != nil {
		logger.Fatal("rebuild agent registry", "error", err)
	}
	eng.SetBidderSource(registry)

	scheduler := bot.NewScheduler(eng, gameRepo, playerRepo, registry, cfg.Bot)
	eng.SetWaker(scheduler)

	schedCtx, stopScheduler := context.WithCancel(context.Background())
	go scheduler.Run(schedCtx)

	guard := service.NewIntentGuard(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	games := service.NewGameService(
		userRepo, gameRepo, playerRepo, propertyRepo, loanRepo, eventRepo,
		eng, registry, guard, notifier, cfg.Game,
	)

	r := gin.Default()

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, dbPool, games, hub, version)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
