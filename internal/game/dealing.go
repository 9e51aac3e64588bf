package game

import "github.com/acadien/deuxcents/internal/deck"

// deal builds and shuffles a fresh deck for the variant, then deals by
// the table's discipline. Standard dealing hands out the whole deck
// round-robin (9 cards each at 36, 10 each at 40). Kitty dealing uses
// the 3-2-3-2-3 packet pattern: three cards to each seat, two to the
// kitty, three more around, two more to the kitty, then a final three
// around, leaving 9 per seat and 4 in the kitty.
func (g *Game) deal() {
	cards := deck.New(g.Variant)
	deck.Shuffle(cards, g.rng)
	g.Deck = cards

	for _, p := range g.Players {
		p.Hand = nil
	}

	if g.KittyEnabled && g.Variant == deck.Variant40 {
		g.dealKitty()
		return
	}

	perSeat := g.Variant.Size() / 4
	for i := 0; i < perSeat; i++ {
		for seat := 0; seat < 4; seat++ {
			g.dealTo(g.PlayerAt(seat), 1)
		}
	}
}

// dealKitty deals the 3-2-3-2-3 packet pattern
func (g *Game) dealKitty() {
	packets := []int{3, 3, 3}
	for round, n := range packets {
		for seat := 0; seat < 4; seat++ {
			g.dealTo(g.PlayerAt(seat), n)
		}
		if round < len(packets)-1 {
			g.Kitty = append(g.Kitty, g.draw(2)...)
		}
	}
}

// dealTo moves n cards from the deck to a player's hand
func (g *Game) dealTo(p *Player, n int) {
	p.Hand = append(p.Hand, g.draw(n)...)
}

// draw removes and returns the top n cards of the deck
func (g *Game) draw(n int) []deck.Card {
	if n > len(g.Deck) {
		n = len(g.Deck)
	}
	drawn := g.Deck[:n]
	g.Deck = g.Deck[n:]
	return drawn
}
