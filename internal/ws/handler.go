package ws

import (
	"context"
	"encoding/json"
	"time"

	"tycoon_backend/internal/engine"
)

// TurnDriver is the slice of the game service a connected client may
// drive. Intents go through the same validated entry points as HTTP
// requests; the socket is just a faster pipe.
type TurnDriver interface {
	RollDice(ctx context.Context, gameID, playerID int64) (*engine.RollOutcome, error)
	ResolveAction(ctx context.Context, gameID, playerID int64, choice engine.Choice) (*engine.ResolveOutcome, error)
	EndTurn(ctx context.Context, gameID, playerID int64) error
}

const intentTimeout = 10 * time.Second

func (c *Client) handleIntent(raw []byte) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		c.send(Outbound{Type: MsgError, GameID: c.GameID, Error: "bad message"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), intentTimeout)
	defer cancel()

	switch in.Type {
	case MsgPing:
		c.send(Outbound{Type: MsgPong})

	case MsgRollDice:
		out, err := c.driver.RollDice(ctx, c.GameID, c.PlayerID)
		if err != nil {
			c.send(Outbound{Type: MsgError, GameID: c.GameID, Error: err.Error()})
			return
		}
		c.send(Outbound{Type: MsgSnapshot, GameID: c.GameID, Data: out})

	case MsgResolveAction:
		choice := engine.Choice{Buy: in.Buy, PayFine: in.PayFine, TaxPercent: in.TaxPercent, Auto: in.Auto}
		out, err := c.driver.ResolveAction(ctx, c.GameID, c.PlayerID, choice)
		if err != nil {
			c.send(Outbound{Type: MsgError, GameID: c.GameID, Error: err.Error()})
			return
		}
		c.send(Outbound{Type: MsgSnapshot, GameID: c.GameID, Data: out})

	case MsgEndTurn:
		if err := c.driver.EndTurn(ctx, c.GameID, c.PlayerID); err != nil {
			c.send(Outbound{Type: MsgError, GameID: c.GameID, Error: err.Error()})
			return
		}
		c.send(Outbound{Type: MsgSnapshot, GameID: c.GameID, Data: map[string]any{"ended_turn": true}})

	default:
		c.send(Outbound{Type: MsgError, GameID: c.GameID, Error: "unknown intent"})
	}
}
