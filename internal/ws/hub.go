package ws

import (
	"context"
	"sync"
	"time"

	"tycoon_backend/internal/domain"
	"tycoon_backend/internal/logger"
)

// Hub owns one room per game. It implements the engine's Notifier so the
// state machine's events reach every connected client as they happen.
type Hub struct {
	mu    sync.RWMutex
	rooms map[int64]*Room
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[int64]*Room)}
}

// Room returns the room for a game, creating and starting it on first use.
func (h *Hub) Room(gameID int64) *Room {
	h.mu.RLock()
	r, ok := h.rooms[gameID]
	h.mu.RUnlock()
	if ok {
		return r
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok = h.rooms[gameID]; ok {
		return r
	}
	r = newRoom(gameID)
	h.rooms[gameID] = r
	go r.Run()
	return r
}

// Notify implements engine.Notifier by broadcasting the event to the
// game's room.
func (h *Hub) Notify(_ context.Context, ev *domain.GameEvent) {
	h.mu.RLock()
	r, ok := h.rooms[ev.GameID]
	h.mu.RUnlock()
	if !ok {
		// Nobody watching; events still reach the log via the store side
		// of the composite notifier.
		return
	}
	r.Broadcast <- marshalOutbound(Outbound{Type: MsgEvent, GameID: ev.GameID, Data: ev})
}

// StartCleanup drops rooms that have sat empty for over an hour.
func (h *Hub) StartCleanup() {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			h.cleanupStaleRooms()
		}
	}()
}

func (h *Hub) cleanupStaleRooms() {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	for id, r := range h.rooms {
		if r.empty() && now.Sub(r.createdAt) > time.Hour {
			delete(h.rooms, id)
			logger.Debug("cleaned up stale room", "game", id)
		}
	}
}
