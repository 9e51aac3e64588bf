package bot

import (
	"github.com/acadien/deuxcents/internal/deck"
)

// tracker accumulates public information over one round: which cards
// have hit the table and which seats are proven void in a suit. It is
// reset at every round boundary.
type tracker struct {
	played map[string]struct{}
	voids  map[int]map[deck.Suit]struct{}
}

func newTracker() *tracker {
	t := &tracker{}
	t.reset()
	return t
}

func (t *tracker) reset() {
	t.played = make(map[string]struct{})
	t.voids = make(map[int]map[deck.Suit]struct{})
}

// observe records one play. A seat that does not follow the lead suit
// is void in it for the rest of the round.
func (t *tracker) observe(seat int, card deck.Card, lead deck.Suit) {
	t.played[card.ID] = struct{}{}
	if card.Suit != lead {
		if t.voids[seat] == nil {
			t.voids[seat] = make(map[deck.Suit]struct{})
		}
		t.voids[seat][lead] = struct{}{}
	}
}

func (t *tracker) isVoid(seat int, s deck.Suit) bool {
	_, ok := t.voids[seat][s]
	return ok
}

func (t *tracker) seen(id string) bool {
	_, ok := t.played[id]
	return ok
}

// unseenHigher reports whether a card of the suit outranking `above`
// could still be in an opponent's hand: not yet played and not held by
// the viewer.
func (t *tracker) unseenHigher(v deck.Variant, s deck.Suit, above deck.Rank, myHand []deck.Card) bool {
	for _, r := range v.Ranks() {
		if r.Order() <= above.Order() {
			continue
		}
		c := deck.NewCard(s, r)
		if t.seen(c.ID) || holds(myHand, c.ID) {
			continue
		}
		return true
	}
	return false
}

// isBoss reports whether the card is the highest of its suit still
// unaccounted for.
func (t *tracker) isBoss(v deck.Variant, card deck.Card, myHand []deck.Card) bool {
	return !t.unseenHigher(v, card.Suit, card.Rank, myHand)
}

func holds(hand []deck.Card, id string) bool {
	for _, c := range hand {
		if c.ID == id {
			return true
		}
	}
	return false
}
