package http

import (
	"os"
	"strconv"
	"time"

	"tycoon_backend/internal/http/handlers"
	"tycoon_backend/internal/http/middleware"
	"tycoon_backend/internal/service"
	"tycoon_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, games *service.GameService, hub *ws.Hub, version string) {
	h := handlers.NewHandler(games)
	healthHandler := handlers.NewHealthHandler(db, version)

	// read limits from env, with safe defaults
	apiRateLimit := 60
	if v := os.Getenv("API_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateLimit = n
		}
	}
	apiRateWindow := time.Minute
	if v := os.Getenv("API_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			apiRateWindow = time.Duration(n) * time.Second
		}
	}

	authRateLimit := 5
	if v := os.Getenv("AUTH_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			authRateLimit = n
		}
	}
	authRateWindow := time.Minute

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(apiRateLimit, apiRateWindow))

	// Auth
	v1.POST("/auth/register", middleware.RedisRateLimit(authRateLimit, authRateWindow), h.Register)
	v1.POST("/auth/login", middleware.RedisRateLimit(authRateLimit, authRateWindow), h.Login)

	// Game lifecycle
	gameRoutes := v1.Group("/games", middleware.JWT())
	gameRoutes.POST("", h.CreateGame)
	gameRoutes.POST("/join", h.JoinGame)
	gameRoutes.POST("/:id/bots", h.AddBot)
	gameRoutes.POST("/:id/start", h.StartGame)
	gameRoutes.GET("/:id", h.GetGame)
	gameRoutes.GET("/:id/events", h.GetEvents)

	// Turn intents
	gameRoutes.POST("/:id/roll", h.RollDice)
	gameRoutes.POST("/:id/resolve", h.ResolveAction)
	gameRoutes.POST("/:id/end-turn", h.EndTurn)
	gameRoutes.POST("/:id/force-end", h.ForceEndTurn)

	// Assets
	gameRoutes.GET("/:id/liquidation-options", h.LiquidationOptions)
	gameRoutes.GET("/:id/loans", h.GetLoans)
	gameRoutes.POST("/:id/loans/:loanId/repay", h.RepayLoan)
	gameRoutes.POST("/:id/deposits", h.OpenDeposit)

	// Realtime channel
	r.GET("/ws", h.WS(hub))
}
