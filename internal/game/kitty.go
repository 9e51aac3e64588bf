package game

import (
	"github.com/acadien/deuxcents/internal/deck"
)

// TakeKitty moves the four kitty cards into the bidder's hand. Only the
// winning bidder may take the kitty, and only once per round.
func (g *Game) TakeKitty(playerID string) error {
	p, err := g.requireTurn(playerID, PhaseKitty)
	if err != nil {
		return err
	}
	if len(g.Kitty) == 0 {
		return g.errf(CodeWrongPhase, "the kitty has already been taken")
	}
	p.Hand = append(p.Hand, g.Kitty...)
	g.Kitty = nil
	g.TouchTurn()
	return nil
}

// DiscardKitty completes the kitty phase: the bidder returns exactly
// four cards to the discard pile and confirms trump. When the table
// forbids point-card discards, every discard must be a zero-value rank.
// The discard pile's counting value is credited to the defenders at
// round end.
func (g *Game) DiscardKitty(playerID string, cardIDs []string, trump deck.Suit) error {
	p, err := g.requireTurn(playerID, PhaseKitty)
	if err != nil {
		return err
	}
	if len(g.Kitty) != 0 {
		return g.errf(CodeWrongPhase, "take the kitty before discarding")
	}
	if len(cardIDs) != 4 {
		return g.errf(CodeIllegalDiscard, "exactly 4 cards must be discarded, got %d", len(cardIDs))
	}
	seen := make(map[string]struct{}, 4)
	for _, id := range cardIDs {
		if _, dup := seen[id]; dup {
			return g.errf(CodeIllegalDiscard, "duplicate discard %s", id)
		}
		seen[id] = struct{}{}
		if !p.HasCard(id) {
			return g.errf(CodeCardNotHeld, "card %s is not in hand", id)
		}
	}

	discards := make([]deck.Card, 0, 4)
	for _, id := range cardIDs {
		c, _ := p.RemoveCard(id)
		discards = append(discards, c)
	}
	if !g.AllowPointDiscards {
		for _, c := range discards {
			if c.Points() > 0 {
				// Put everything back before rejecting.
				p.Hand = append(p.Hand, discards...)
				return g.errf(CodeIllegalDiscard, "point cards may not be discarded at this table (%s)", c)
			}
		}
	}

	g.KittyDiscards = discards
	g.KittyDone = true
	g.enterPlaying(p, trump)
	return nil
}
