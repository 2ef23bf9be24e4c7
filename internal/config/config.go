package config

import (
	"os"
	"strconv"
	"time"

	"tycoon_backend/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string
	RedisAddr   string
	RedisPass   string
	RedisDB     int
	LogLevel    string
	LogJSON     bool

	Game GameRules
	Bot  BotSettings
}

// GameRules holds the fixed numeric parameters of a session
type GameRules struct {
	GoSalary       int64
	JailFine       int64
	JailPosition   int
	GoToJailSpace  int
	BoardSize      int
	MaxJailTurns   int
	DefaultLapCap  int
	CreditScoreMin int   // minimum score for unsecured credit
	CreditCap      int64 // per-loan cap for unsecured credit
	CreditFloor    int64 // smallest shortfall worth a loan
}

// BotSettings controls the autonomous agent scheduler
type BotSettings struct {
	TickInterval time.Duration
	ThinkDelay   time.Duration
}

// Load reads configuration from the environment
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	return &Config{
		AppPort:     port,
		DatabaseURL: dbURL,
		JWTSecret:   jwtSecret,
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:     redisDB,
		LogLevel:    envStr("LOG_LEVEL", "info"),
		LogJSON:     os.Getenv("LOG_JSON") == "true",
		Game: GameRules{
			GoSalary:       envInt64("GO_SALARY", 200),
			JailFine:       envInt64("JAIL_FINE", 50),
			JailPosition:   10,
			GoToJailSpace:  30,
			BoardSize:      40,
			MaxJailTurns:   3,
			DefaultLapCap:  envInt("DEFAULT_LAP_LIMIT", 0),
			CreditScoreMin: envInt("CREDIT_SCORE_MIN", 600),
			CreditCap:      envInt64("CREDIT_CAP", 500),
			CreditFloor:    envInt64("CREDIT_FLOOR", 50),
		},
		Bot: BotSettings{
			TickInterval: time.Duration(envInt("BOT_TICK_SECONDS", 3)) * time.Second,
			ThinkDelay:   time.Duration(envInt("BOT_THINK_MS", 400)) * time.Millisecond,
		},
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return def
}
