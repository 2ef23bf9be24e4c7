package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TurnsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "game_turns_total",
			Help: "Turns completed across all games",
		},
	)
	BotTurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_turns_total",
			Help: "Turns driven by the agent scheduler",
		},
		[]string{"archetype"},
	)
	BotTurnFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_turn_failures_total",
			Help: "Agent-driven turns that ended in a forced end-turn",
		},
	)
	LiquidationSteps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "liquidation_steps_total",
			Help: "Fund-raising steps taken, by source",
		},
		[]string{"step"},
	)
	BankruptciesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bankruptcies_total",
			Help: "Players declared bankrupt",
		},
	)
	GamesActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "games_active",
			Help: "Games currently in active status",
		},
	)
	RLRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_requests_total",
			Help: "Total requests seen by the rate limiter",
		},
		[]string{"endpoint"},
	)
	RLBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_blocked_total",
			Help: "Total requests blocked by the rate limiter",
		},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(
		TurnsTotal, BotTurnsTotal, BotTurnFailures,
		LiquidationSteps, BankruptciesTotal, GamesActive,
		RLRequests, RLBlocked,
	)
}
