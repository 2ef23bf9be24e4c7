package engine

import (
	"context"

	"tycoon_backend/internal/domain"
)

// Notifier receives one event per externally observable state transition.
// Implementations persist and/or broadcast; the engine does not care which.
// Delivery is at-least-once; ordering within a game follows call order.
type Notifier interface {
	Notify(ctx context.Context, event *domain.GameEvent)
}

// Waker lets the engine signal the agent scheduler that a bot just became
// the current player, instead of waiting out a full poll interval.
type Waker interface {
	Wake(gameID int64)
}

func (e *Engine) emit(ctx context.Context, gameID int64, playerID *int64, typ domain.EventType, payload map[string]any) {
	if e.notifier == nil {
		return
	}
	e.notifier.Notify(ctx, &domain.GameEvent{
		GameID:   gameID,
		PlayerID: playerID,
		Type:     typ,
		Payload:  payload,
	})
}

func ref(id int64) *int64 { return &id }
