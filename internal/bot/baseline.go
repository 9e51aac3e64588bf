package bot

import (
	"math/rand"

	"github.com/acadien/deuxcents/internal/deck"
	"github.com/acadien/deuxcents/internal/game"
)

// aggressiveness caps the baseline bot's ceiling above its raw hand
// value; higher tiers are willing to stretch further.
var aggressiveness = map[game.BotSkill]int{
	game.SkillEasy:   5,
	game.SkillMedium: 10,
	game.SkillHard:   15,
}

// Baseline is the hand-value bidder and follow-high/discard-low card
// player used by the easy, medium, and hard tiers.
type Baseline struct {
	skill game.BotSkill
	rng   *rand.Rand
}

func NewBaseline(skill game.BotSkill, rng *rand.Rand) *Baseline {
	if _, ok := aggressiveness[skill]; !ok {
		skill = game.SkillMedium
	}
	return &Baseline{skill: skill, rng: rng}
}

func (b *Baseline) Name() string { return "baseline-" + string(b.skill) }

// ChooseBid bids from the hand's raw point value. Weak hands pass,
// middling hands bid their value plus a small stretch, and loaded hands
// bid their value outright.
func (b *Baseline) ChooseBid(v game.BidView) BidDecision {
	if v.PartnerHoldsBid() {
		return BidDecision{Pass: true}
	}

	suggested := suggestedBid(v.HandPoints)
	if suggested == 0 {
		return BidDecision{Pass: true}
	}
	ceiling := min(game.MaxBid, v.HandPoints+aggressiveness[b.skill])
	points := floorToStep(min(suggested, ceiling))

	required := game.MinBid
	if v.CurrentBid != nil {
		required = v.CurrentBid.Points + game.BidStep
	}
	if points < required {
		return BidDecision{Pass: true}
	}
	return BidDecision{Points: points, Suit: longestSuit(v.Hand)}
}

// suggestedBid is the hand-value threshold table. Zero means pass.
func suggestedBid(handPoints int) int {
	switch {
	case handPoints < 30:
		return 0
	case handPoints < 40:
		return min(handPoints+10, 70)
	case handPoints < 50:
		return min(handPoints+5, 80)
	default:
		return min(handPoints, game.MaxBid)
	}
}

func (b *Baseline) ChooseKitty(v game.KittyView) KittyDecision {
	return chooseKittyDiscards(v)
}

// ChooseCard leads a random card, follows with the highest card of the
// lead suit, and otherwise sloughs the cheapest card.
func (b *Baseline) ChooseCard(v game.PlayView) deck.Card {
	if v.LeadSuit == nil {
		return v.Playable[b.rng.Intn(len(v.Playable))]
	}
	if followers := suitCards(v.Playable, *v.LeadSuit); len(followers) > 0 {
		return highestOrder(followers)
	}
	return lowestPoints(v.Playable)
}

func (b *Baseline) OnRoundStart() {}

func (b *Baseline) ObservePlay(int, deck.Card, deck.Suit) {}

func suitCards(cards []deck.Card, s deck.Suit) []deck.Card {
	out := make([]deck.Card, 0, len(cards))
	for _, c := range cards {
		if c.Suit == s {
			out = append(out, c)
		}
	}
	return out
}
