package engine

import (
	"context"

	"tycoon_backend/internal/board"
	"tycoon_backend/internal/domain"
)

// landingResult is what a landing effect (or pending-action resolution)
// leaves behind: either the marker to set, or nothing, or a bankruptcy.
type landingResult struct {
	pending  domain.ActionType
	details  *domain.ActionDetails
	bankrupt bool
}

var cleared = landingResult{pending: domain.ActionNone}

// dispatchLanding applies the immediate effect of the player's new
// position. Every branch leaves the game in exactly one of two states:
// marker cleared (turn may proceed) or marker set (turn blocked pending
// input). The caller persists the marker.
func (e *Engine) dispatchLanding(ctx context.Context, g *domain.Game, p *domain.Player, diceSum int) (landingResult, error) {
	space := board.Get(p.Position)

	switch space.Type {
	case board.TypeStreet, board.TypeRailroad, board.TypeUtility:
		return e.landOnProperty(ctx, g, p, space, diceSum)

	case board.TypeTax:
		return e.landOnTax(ctx, g, p, space)

	case board.TypeChance:
		return landingResult{
			pending: domain.ActionDrawChance,
			details: &domain.ActionDetails{BoardPos: p.Position},
		}, nil

	case board.TypeChest:
		return landingResult{
			pending: domain.ActionDrawChest,
			details: &domain.ActionDetails{BoardPos: p.Position},
		}, nil

	default:
		// GO, just visiting, free parking: nothing to do.
		return cleared, nil
	}
}

func (e *Engine) landOnProperty(ctx context.Context, g *domain.Game, p *domain.Player, space *board.Space, diceSum int) (landingResult, error) {
	prop, err := e.store.PropertyAt(ctx, g.ID, p.Position)
	if err != nil {
		return cleared, err
	}
	if prop == nil {
		return cleared, nil
	}

	switch {
	case prop.OwnerID == nil:
		return landingResult{
			pending: domain.ActionBuyOrPass,
			details: &domain.ActionDetails{BoardPos: p.Position, Amount: space.Price},
		}, nil

	case prop.OwnedBy(p.ID) || prop.Mortgaged:
		return cleared, nil

	default:
		rent, err := e.rentFor(ctx, space, prop, diceSum)
		if err != nil {
			return cleared, err
		}
		return e.chargePlayer(ctx, g, p, rent, "rent", prop.OwnerID)
	}
}

// rentFor computes rent at a space: tiered for streets (doubled on a full
// unimproved group), flat by count for railroads, dice-scaled for
// utilities.
func (e *Engine) rentFor(ctx context.Context, space *board.Space, prop *domain.Property, diceSum int) (int64, error) {
	switch space.Type {
	case board.TypeRailroad:
		count, err := e.countOwnedInGroup(ctx, prop, "rail")
		if err != nil {
			return 0, err
		}
		return board.RailroadRent(count), nil

	case board.TypeUtility:
		count, err := e.countOwnedInGroup(ctx, prop, "utility")
		if err != nil {
			return 0, err
		}
		return board.UtilityMultiplier(count) * int64(diceSum), nil

	default:
		rent := space.Rent[prop.Improvements]
		if prop.Improvements == 0 {
			full, err := e.ownsFullGroup(ctx, prop, space.Group)
			if err != nil {
				return 0, err
			}
			if full {
				rent *= 2
			}
		}
		return rent, nil
	}
}

func (e *Engine) countOwnedInGroup(ctx context.Context, prop *domain.Property, group string) (int, error) {
	owned, err := e.store.PropertiesOf(ctx, *prop.OwnerID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, op := range owned {
		if board.Get(op.BoardPos).Group == group {
			count++
		}
	}
	return count, nil
}

func (e *Engine) ownsFullGroup(ctx context.Context, prop *domain.Property, group string) (bool, error) {
	if group == "" {
		return false, nil
	}
	count, err := e.countOwnedInGroup(ctx, prop, group)
	if err != nil {
		return false, err
	}
	return count == len(board.Group(group)), nil
}

func (e *Engine) landOnTax(ctx context.Context, g *domain.Game, p *domain.Player, space *board.Space) (landingResult, error) {
	// A space offering the percentage alternative needs the player's
	// choice; a fixed-only tax is debited on the spot.
	if space.TaxPercent > 0 {
		return landingResult{
			pending: domain.ActionPayTax,
			details: &domain.ActionDetails{BoardPos: space.Pos, Amount: space.TaxAmount},
		}, nil
	}
	return e.chargePlayer(ctx, g, p, space.TaxAmount, "tax", nil)
}

// chargePlayer debits amount, crediting creditorID (nil = bank). On
// insufficient funds the asset-management marker is set instead; the debt
// is settled when the marker resolves.
func (e *Engine) chargePlayer(ctx context.Context, g *domain.Game, p *domain.Player, amount int64, reason string, creditorID *int64) (landingResult, error) {
	if amount <= 0 {
		return cleared, nil
	}

	if err := e.store.Transfer(ctx, p.ID, creditorID, amount); err != nil {
		if err == ErrInsufficientFunds {
			return landingResult{
				pending: domain.ActionRaiseFunds,
				details: &domain.ActionDetails{Amount: amount, Reason: reason, CreditorID: creditorID},
			}, nil
		}
		return cleared, err
	}
	p.Money -= amount

	e.emitPayment(ctx, g, p, amount, reason, creditorID)
	return cleared, nil
}

func (e *Engine) emitPayment(ctx context.Context, g *domain.Game, p *domain.Player, amount int64, reason string, creditorID *int64) {
	payload := map[string]any{"amount": amount, "reason": reason}
	typ := domain.EventTaxPaid
	if creditorID != nil {
		payload["to"] = *creditorID
		typ = domain.EventRentPaid
	}
	e.emit(ctx, g.ID, ref(p.ID), typ, payload)
	e.recordTxn(ctx, g.ID, p.ID, reason, -amount, payload)
}

// resolveBuyOrAuction handles the buy_or_auction answer: a purchase at list
// price, or the auction path on decline.
func (e *Engine) resolveBuyOrAuction(ctx context.Context, g *domain.Game, p *domain.Player, buy bool) (landingResult, error) {
	if g.ActionDetails == nil {
		return cleared, ErrActionNotPending
	}
	pos := g.ActionDetails.BoardPos
	space := board.Get(pos)
	prop, err := e.store.PropertyAt(ctx, g.ID, pos)
	if err != nil {
		return cleared, err
	}
	if prop == nil || prop.OwnerID != nil {
		// Already sold out from under the marker; nothing left to decide.
		return cleared, nil
	}

	if !buy {
		e.runAuction(ctx, g, space, prop)
		return cleared, nil
	}

	if err := e.store.Transfer(ctx, p.ID, nil, space.Price); err != nil {
		if err == ErrInsufficientFunds {
			// Declining by inability: same auction path.
			e.runAuction(ctx, g, space, prop)
			return cleared, nil
		}
		return cleared, err
	}
	p.Money -= space.Price

	prop.OwnerID = ref(p.ID)
	if err := e.store.SaveProperty(ctx, prop); err != nil {
		return cleared, err
	}
	e.emit(ctx, g.ID, ref(p.ID), domain.EventPurchased,
		map[string]any{"position": pos, "space": space.Name, "price": space.Price})
	e.recordTxn(ctx, g.ID, p.ID, "purchase", -space.Price, map[string]any{"position": pos})
	return cleared, nil
}

func (e *Engine) resolveJailFine(ctx context.Context, g *domain.Game, p *domain.Player, choice Choice) (landingResult, error) {
	if !choice.PayFine {
		// Rolling from jail goes through RollAndMove, not here.
		return cleared, ErrActionNotPending
	}

	res, err := e.chargePlayer(ctx, g, p, e.rules.JailFine, "jail_fine", nil)
	if err != nil || res.pending != domain.ActionNone {
		return res, err
	}
	p.InJail = false
	p.JailTurns = 0
	e.emit(ctx, g.ID, ref(p.ID), domain.EventJailLeft, map[string]any{"by": "fine"})
	if err := e.store.SavePlayer(ctx, p); err != nil {
		return cleared, err
	}
	// Buying out restores the turn to its start; the roll is still owed.
	return landingResult{pending: domain.ActionRollDice}, nil
}

func (e *Engine) resolveTax(ctx context.Context, g *domain.Game, p *domain.Player, percent bool) (landingResult, error) {
	if g.ActionDetails == nil {
		return cleared, ErrActionNotPending
	}
	space := board.Get(g.ActionDetails.BoardPos)

	amount := space.TaxAmount
	if percent && space.TaxPercent > 0 {
		worth, err := e.NetWorth(ctx, p)
		if err != nil {
			return cleared, err
		}
		amount = worth * int64(space.TaxPercent) / 100
		if amount < 0 {
			amount = 0
		}
	}
	return e.chargePlayer(ctx, g, p, amount, "tax", nil)
}

// resolveDraw applies a drawn card. Movement effects re-enter the landing
// dispatcher once; an effect produced by that second dispatch (rent, a
// purchase prompt) stands as the new pending action.
func (e *Engine) resolveDraw(ctx context.Context, g *domain.Game, p *domain.Player, card Card) (landingResult, error) {
	e.emit(ctx, g.ID, ref(p.ID), domain.EventCardDrawn, map[string]any{"text": card.Text, "kind": card.Kind})
	return e.applyCard(ctx, g, p, card)
}

func (e *Engine) applyCard(ctx context.Context, g *domain.Game, p *domain.Player, card Card) (landingResult, error) {
	switch card.Kind {
	case CardCollect:
		if err := e.store.Credit(ctx, p.ID, card.Amount); err != nil {
			return cleared, err
		}
		p.Money += card.Amount
		e.recordTxn(ctx, g.ID, p.ID, "card_collect", card.Amount, map[string]any{"card": card.Text})
		return cleared, nil

	case CardPay:
		return e.chargePlayer(ctx, g, p, card.Amount, "card_fine", nil)

	case CardRepairs:
		props, err := e.store.PropertiesOf(ctx, p.ID)
		if err != nil {
			return cleared, err
		}
		levels := 0
		for _, prop := range props {
			levels += prop.Improvements
		}
		return e.chargePlayer(ctx, g, p, card.Amount*int64(levels), "card_repairs", nil)

	case CardGoToJail:
		e.sendToJail(ctx, g, p, "card")
		return cleared, e.store.SavePlayer(ctx, p)

	case CardCreditBoost:
		if err := e.store.AdjustCreditScore(ctx, p.ID, card.Target); err != nil {
			return cleared, err
		}
		return cleared, nil

	case CardMoveTo:
		steps := (card.Target - p.Position + e.rules.BoardSize) % e.rules.BoardSize
		return e.cardMove(ctx, g, p, steps, true)

	case CardMoveBack:
		steps := e.rules.BoardSize - card.Target
		return e.cardMove(ctx, g, p, steps, false)

	default:
		return cleared, nil
	}
}

// cardMove moves the player steps spaces forward (a move-back is encoded
// as a long forward move that never credits GO) and re-dispatches the
// landing once.
func (e *Engine) cardMove(ctx context.Context, g *domain.Game, p *domain.Player, steps int, creditGo bool) (landingResult, error) {
	if creditGo && p.Position+steps >= e.rules.BoardSize {
		p.Money += e.rules.GoSalary
		e.emit(ctx, g.ID, ref(p.ID), domain.EventSalaryPaid, map[string]any{"amount": e.rules.GoSalary})
		e.recordTxn(ctx, g.ID, p.ID, "go_salary", e.rules.GoSalary, nil)
	}
	p.Position = (p.Position + steps) % e.rules.BoardSize
	e.emit(ctx, g.ID, ref(p.ID), domain.EventMoved,
		map[string]any{"position": p.Position, "space": board.Get(p.Position).Name, "by": "card"})

	if p.Position == e.rules.GoToJailSpace {
		e.sendToJail(ctx, g, p, "card_move")
		return cleared, e.store.SavePlayer(ctx, p)
	}
	if err := e.store.SavePlayer(ctx, p); err != nil {
		return cleared, err
	}
	// One level of recursion: the landed-on space may set a fresh marker.
	// Utility rent from a card move uses the expected dice sum.
	return e.dispatchLanding(ctx, g, p, 7)
}
