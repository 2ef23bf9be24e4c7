package engine

import (
	"crypto/rand"
	"math/big"
)

// Roller produces a two-die roll. The engine takes it as an interface so
// tests can script exact sequences.
type Roller interface {
	Roll() (int, int)
}

type cryptoRoller struct{}

// NewRoller returns a roller backed by crypto/rand.
func NewRoller() Roller {
	return cryptoRoller{}
}

func (cryptoRoller) Roll() (int, int) {
	return die(), die()
}

func die() int {
	n, err := rand.Int(rand.Reader, big.NewInt(6))
	if err != nil {
		// Fallback - should never happen
		return 1
	}
	return int(n.Int64()) + 1
}
