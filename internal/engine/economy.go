package engine

import "sync"

// Phase of the economic cycle. Advanced at lap boundaries only.
type Phase string

const (
	PhaseStable    Phase = "stable"
	PhaseBoom      Phase = "boom"
	PhaseRecession Phase = "recession"
)

// Economy reports the current inflation/interest figures. The turn state
// machine reads it at lap boundaries; loan pricing and deposit yield read
// it on demand.
type Economy interface {
	InterestRateBP() int
	InflationRateBP() int
	CurrentPhase() Phase
	AdvanceLap(lap int)
}

// CycleEconomy rotates stable → boom → stable → recession, holding each
// phase for a fixed number of laps.
type CycleEconomy struct {
	mu           sync.RWMutex
	phase        Phase
	lapsPerPhase int
}

func NewCycleEconomy() *CycleEconomy {
	return &CycleEconomy{phase: PhaseStable, lapsPerPhase: 3}
}

func (e *CycleEconomy) CurrentPhase() Phase {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.phase
}

// InterestRateBP returns the lending rate in basis points.
func (e *CycleEconomy) InterestRateBP() int {
	switch e.CurrentPhase() {
	case PhaseBoom:
		return 900
	case PhaseRecession:
		return 300
	default:
		return 500
	}
}

// InflationRateBP returns the inflation figure in basis points.
func (e *CycleEconomy) InflationRateBP() int {
	switch e.CurrentPhase() {
	case PhaseBoom:
		return 600
	case PhaseRecession:
		return 100
	default:
		return 250
	}
}

// AdvanceLap moves the cycle forward at a lap boundary.
func (e *CycleEconomy) AdvanceLap(lap int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if lap%e.lapsPerPhase != 0 {
		return
	}
	switch e.phase {
	case PhaseStable:
		e.phase = PhaseBoom
	case PhaseBoom:
		e.phase = PhaseRecession
	default:
		e.phase = PhaseStable
	}
}
