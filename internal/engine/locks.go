package engine

import "sync"

// LockRegistry hands out one mutex per game so the realtime driver and the
// bot scheduler serialize on the same game while different games progress
// independently. Locks are never removed; a finished game's mutex is a few
// dozen bytes and games are not created at a rate where that matters.
type LockRegistry struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewLockRegistry() *LockRegistry {
	return &LockRegistry{locks: make(map[int64]*sync.Mutex)}
}

// Lock acquires the game's mutex and returns the unlock func.
func (r *LockRegistry) Lock(gameID int64) func() {
	r.mu.Lock()
	m, ok := r.locks[gameID]
	if !ok {
		m = &sync.Mutex{}
		r.locks[gameID] = m
	}
	r.mu.Unlock()

	m.Lock()
	return m.Unlock
}
