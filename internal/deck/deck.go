package deck

import (
	"fmt"
	"math/rand"
)

// Variant selects the deck size. The 36-card deck drops the sixes; the
// 40-card deck keeps them and is required for the kitty.
type Variant int

const (
	Variant36 Variant = 36
	Variant40 Variant = 40
)

// ParseVariant parses the wire representation of a deck variant
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "36":
		return Variant36, nil
	case "40":
		return Variant40, nil
	default:
		return 0, fmt.Errorf("unknown deck variant %q", s)
	}
}

// String returns the wire representation of a variant
func (v Variant) String() string {
	return fmt.Sprintf("%d", int(v))
}

// Size returns the number of cards in the variant's deck
func (v Variant) Size() int {
	return int(v)
}

// Ranks returns the ranks present in the variant, low to high. Fives stay
// in both variants because they are point cards.
func (v Variant) Ranks() []Rank {
	ranks := []Rank{Five, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}
	if v == Variant40 {
		ranks = append(ranks[:1], append([]Rank{Six}, ranks[1:]...)...)
	}
	return ranks
}

// New builds an unshuffled deck for the given variant
func New(v Variant) []Card {
	cards := make([]Card, 0, v.Size())
	for _, suit := range Suits {
		for _, rank := range v.Ranks() {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	return cards
}

// Shuffle performs an in-place Fisher-Yates shuffle
func Shuffle(cards []Card, rng *rand.Rand) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}
