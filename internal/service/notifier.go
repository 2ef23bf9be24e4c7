package service

import (
	"context"

	"tycoon_backend/internal/domain"
	"tycoon_backend/internal/logger"
	"tycoon_backend/internal/repository"
	"tycoon_backend/internal/ws"
)

// GameNotifier persists every engine event to the event log and then
// broadcasts it to the game's websocket room. The append happens first so
// the durable log is never behind what clients saw.
type GameNotifier struct {
	events *repository.EventRepository
	hub    *ws.Hub
}

func NewGameNotifier(events *repository.EventRepository, hub *ws.Hub) *GameNotifier {
	return &GameNotifier{events: events, hub: hub}
}

func (n *GameNotifier) Notify(ctx context.Context, ev *domain.GameEvent) {
	if err := n.events.Append(ctx, ev); err != nil {
		logger.Warn("event append", "game", ev.GameID, "type", ev.Type, "error", err)
	}
	if n.hub != nil {
		n.hub.Notify(ctx, ev)
	}
}
