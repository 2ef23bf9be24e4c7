package engine

import (
	"context"

	"tycoon_backend/internal/board"
	"tycoon_backend/internal/domain"
	"tycoon_backend/internal/logger"
)

// Bidder decides auction bids for one player. The agent registry returns
// one per bot; players without a bidder sit auctions out.
type Bidder interface {
	// NextBid returns the player's bid against the current high bid, or 0
	// to drop out of the auction.
	NextBid(p *domain.Player, space *board.Space, highBid int64) int64
}

// BidderSource looks up the Bidder for a player, nil when the player does
// not bid automatically.
type BidderSource interface {
	BidderFor(playerID int64) Bidder
}

// auction floor and raise step when no bidder states its own.
const auctionOpeningBid = 10

// runAuction sells an unowned property in bidding rounds. Bidders are
// polled in turn order and drop out by bidding 0; the auction ends when a
// full round passes with no raise. The winner pays their bid to the bank.
// With no bids the property stays with the bank.
func (e *Engine) runAuction(ctx context.Context, g *domain.Game, space *board.Space, prop *domain.Property) {
	if e.bidders == nil {
		return
	}
	players, err := e.store.Players(ctx, g.ID)
	if err != nil {
		logger.Error("auction: load players", "game", g.ID, "error", err)
		return
	}
	byID := make(map[int64]*domain.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	type contender struct {
		p *domain.Player
		b Bidder
	}
	var field []contender
	for _, id := range g.PlayerOrder {
		p := byID[id]
		if p == nil || !p.Active() {
			continue
		}
		if b := e.bidders.BidderFor(p.ID); b != nil {
			field = append(field, contender{p, b})
		}
	}
	if len(field) == 0 {
		return
	}

	var (
		highBid   int64
		winner    *domain.Player
		out       = make(map[int64]bool, len(field))
		remaining = len(field)
	)
	for remaining > 1 || (remaining == 1 && winner == nil) {
		raised := false
		for _, c := range field {
			if out[c.p.ID] {
				continue
			}
			if winner != nil && winner.ID == c.p.ID {
				continue
			}
			bid := c.b.NextBid(c.p, space, highBid)
			if bid > 0 && bid < auctionOpeningBid {
				bid = auctionOpeningBid
			}
			if bid <= highBid || bid > c.p.Money {
				out[c.p.ID] = true
				remaining--
				continue
			}
			highBid = bid
			winner = c.p
			raised = true
		}
		if !raised {
			break
		}
	}

	if winner == nil || highBid <= 0 {
		return
	}
	if err := e.store.Transfer(ctx, winner.ID, nil, highBid); err != nil {
		logger.Error("auction: settle winning bid", "game", g.ID, "error", err)
		return
	}
	winner.Money -= highBid
	prop.OwnerID = ref(winner.ID)
	if err := e.store.SaveProperty(ctx, prop); err != nil {
		logger.Error("auction: save property", "game", g.ID, "error", err)
		return
	}
	e.emit(ctx, g.ID, ref(winner.ID), domain.EventAuctionWon,
		map[string]any{"position": prop.BoardPos, "space": space.Name, "bid": highBid})
	e.recordTxn(ctx, g.ID, winner.ID, "auction", -highBid, map[string]any{"position": prop.BoardPos})
}
