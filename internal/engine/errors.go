package engine

import "errors"

var (
	// ErrNotYourTurn - the caller does not hold the turn.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrGameNotActive - the game is in setup or already ended.
	ErrGameNotActive = errors.New("game is not active")
	// ErrActionNotPending - no decision is owed, or the wrong action type was answered.
	ErrActionNotPending = errors.New("no such action pending")
	// ErrInvalidTransition - the operation is not legal in the current turn state.
	ErrInvalidTransition = errors.New("invalid turn transition")
	// ErrInsufficientFunds - surfaced in propose mode when no automatic resolution was requested.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrPlayerNotFound - the player does not exist or left the game.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrGameNotFound - unknown game id.
	ErrGameNotFound = errors.New("game not found")
)
