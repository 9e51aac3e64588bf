// Package bot implements the decision policies behind bot seats. Each
// policy is a pair of pure decision functions over explicit view values;
// the advanced policy additionally tracks played cards across a round
// and is reset at round boundaries via OnRoundStart.
package bot

import (
	"math/rand"
	"sort"

	"github.com/acadien/deuxcents/internal/deck"
	"github.com/acadien/deuxcents/internal/game"
)

// BidDecision is a policy's answer during bidding. Pass true means no
// bid; otherwise Points and Suit form the bid.
type BidDecision struct {
	Pass   bool
	Points int
	Suit   deck.Suit
}

// KittyDecision names the four discards and the confirmed trump suit
type KittyDecision struct {
	DiscardIDs []string
	Trump      deck.Suit
}

// Policy is a bot decision strategy. Implementations must be usable from
// a single game lane; they are never shared across games.
type Policy interface {
	Name() string
	ChooseBid(v game.BidView) BidDecision
	ChooseKitty(v game.KittyView) KittyDecision
	ChooseCard(v game.PlayView) deck.Card

	// OnRoundStart clears any per-round tracking state.
	OnRoundStart()
	// ObservePlay feeds every card played in the game (including the
	// policy's own) to the policy for tracking. lead is the trick's
	// lead suit at the time of the play.
	ObservePlay(seat int, card deck.Card, lead deck.Suit)
}

// ForSkill builds the policy for a skill tier
func ForSkill(skill game.BotSkill, rng *rand.Rand) Policy {
	if skill == game.SkillAdvanced {
		return NewAdvanced(rng)
	}
	return NewBaseline(skill, rng)
}

// chooseKittyDiscards sorts the 13-card hand by ascending point value
// (rank as tie-break) and discards the cheapest four, preferring
// zero-value cards when the table forbids point discards.
func chooseKittyDiscards(v game.KittyView) KittyDecision {
	hand := append([]deck.Card(nil), v.Hand...)
	sort.SliceStable(hand, func(i, j int) bool {
		if hand[i].Points() != hand[j].Points() {
			return hand[i].Points() < hand[j].Points()
		}
		return hand[i].Order() < hand[j].Order()
	})

	ids := make([]string, 0, 4)
	if !v.AllowPointDiscards {
		for _, c := range hand {
			if c.Points() == 0 && len(ids) < 4 {
				ids = append(ids, c.ID)
			}
		}
	}
	for _, c := range hand {
		if len(ids) == 4 {
			break
		}
		if !contains(ids, c.ID) {
			ids = append(ids, c.ID)
		}
	}

	return KittyDecision{DiscardIDs: ids, Trump: v.BidSuit}
}

func contains(ids []string, id string) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// bySuit buckets a hand per suit
func bySuit(hand []deck.Card) map[deck.Suit][]deck.Card {
	out := make(map[deck.Suit][]deck.Card)
	for _, c := range hand {
		out[c.Suit] = append(out[c.Suit], c)
	}
	return out
}

// longestSuit picks the suit to declare: most cards, total rank value as
// tie-break.
func longestSuit(hand []deck.Card) deck.Suit {
	suits := bySuit(hand)
	best := deck.Hearts
	bestLen, bestVal := -1, -1
	for _, s := range deck.Suits {
		cards := suits[s]
		val := 0
		for _, c := range cards {
			val += c.Order()
		}
		if len(cards) > bestLen || (len(cards) == bestLen && val > bestVal) {
			best, bestLen, bestVal = s, len(cards), val
		}
	}
	return best
}

// lowestPoints returns the cheapest card: minimum point value, then
// minimum rank.
func lowestPoints(cards []deck.Card) deck.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if c.Points() < best.Points() || (c.Points() == best.Points() && c.Order() < best.Order()) {
			best = c
		}
	}
	return best
}

// nonTrump filters out trump cards
func nonTrump(cards []deck.Card, trump deck.Suit) []deck.Card {
	out := make([]deck.Card, 0, len(cards))
	for _, c := range cards {
		if c.Suit != trump {
			out = append(out, c)
		}
	}
	return out
}

// highestOrder returns the highest-ranked card
func highestOrder(cards []deck.Card) deck.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if c.Order() > best.Order() {
			best = c
		}
	}
	return best
}

// floorToStep rounds a bid down to a legal multiple of five
func floorToStep(points int) int {
	return points - points%game.BidStep
}
