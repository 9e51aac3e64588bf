package bot

import (
	"math/rand"

	"github.com/acadien/deuxcents/internal/deck"
	"github.com/acadien/deuxcents/internal/game"
)

// action is the advanced policy's read of the current trick
type action int

const (
	actionDefault action = iota
	actionDumpPoints
	actionWinTrick
	actionLoseTrick
	actionConserveTrump
)

// Advanced layers card tracking on top of the baseline heuristics: it
// remembers every card played and every proven void, classifies each
// trick into an intent, and picks the cheapest card serving that
// intent.
type Advanced struct {
	rng     *rand.Rand
	tracker *tracker
}

func NewAdvanced(rng *rand.Rand) *Advanced {
	return &Advanced{rng: rng, tracker: newTracker()}
}

func (a *Advanced) Name() string { return "advanced" }

func (a *Advanced) OnRoundStart() { a.tracker.reset() }

func (a *Advanced) ObservePlay(seat int, card deck.Card, lead deck.Suit) {
	a.tracker.observe(seat, card, lead)
}

// ChooseBid extends the hand-value table with trump quality: long suits
// and high trumps raise the ceiling, and a team pinned at the score
// target by the opposing-bid rule lowers its bar rather than hand the
// round away.
func (a *Advanced) ChooseBid(v game.BidView) BidDecision {
	if v.PartnerHoldsBid() {
		return BidDecision{Pass: true}
	}

	suit := longestSuit(v.Hand)
	trumps := suitCards(v.Hand, suit)

	strength := v.HandPoints
	if len(trumps) >= 5 {
		strength += 5
	}
	if len(trumps) >= 6 {
		strength += 5
	}
	for _, c := range trumps {
		if c.Rank == deck.Ace || c.Rank == deck.King {
			strength += 3
		}
	}

	required := game.MinBid
	if v.CurrentBid != nil {
		required = v.CurrentBid.Points + game.BidStep
	}

	suggested := suggestedBid(strength)
	mustBid := v.EnforceOpposingBid &&
		v.TeamScores[v.MyTeam()] >= 100 &&
		v.TeamBids[v.MyTeam()] == 0
	if suggested == 0 {
		// Scoring nothing all round is worse than a modest contract.
		if mustBid && v.HandPoints >= 20 && required <= 60 {
			return BidDecision{Points: required, Suit: suit}
		}
		return BidDecision{Pass: true}
	}

	ceiling := min(game.MaxBid, strength+aggressiveness[game.SkillHard])
	points := floorToStep(min(suggested, ceiling))
	if points < required {
		if mustBid && required <= ceiling {
			return BidDecision{Points: required, Suit: suit}
		}
		return BidDecision{Pass: true}
	}
	return BidDecision{Points: points, Suit: suit}
}

func (a *Advanced) ChooseKitty(v game.KittyView) KittyDecision {
	return chooseKittyDiscards(v)
}

func (a *Advanced) ChooseCard(v game.PlayView) deck.Card {
	if len(v.Playable) == 1 {
		return v.Playable[0]
	}
	if v.LeadSuit == nil {
		return a.chooseLead(v)
	}

	switch a.classify(v) {
	case actionDumpPoints:
		return a.dumpCard(v)
	case actionWinTrick:
		return a.winningCard(v)
	case actionLoseTrick:
		return lowestPoints(v.Playable)
	case actionConserveTrump:
		return a.conserveCard(v)
	default:
		if followers := suitCards(v.Playable, *v.LeadSuit); len(followers) > 0 {
			return highestOrder(followers)
		}
		return lowestPoints(v.Playable)
	}
}

// classify reads the trick so far and names the intent for this play
func (a *Advanced) classify(v game.PlayView) action {
	winner, ok := currentWinner(v)
	if !ok {
		return actionDefault
	}

	if winner.PlayerID == v.PartnerID() && a.partnerHoldsTrick(v, winner) {
		return actionDumpPoints
	}
	if winner.PlayerID != v.PartnerID() {
		table := tablePoints(v.Trick)
		needPoints := v.Contractor == game.TeamForPosition(v.MySeat) &&
			v.CurrentBid != nil &&
			v.RoundScores[v.Contractor] < v.CurrentBid.Points
		if table >= 5 || needPoints {
			return actionWinTrick
		}
		if lastToPlay(v) && table < 10 {
			return actionLoseTrick
		}
	}
	if len(suitCards(v.Hand, v.TrumpSuit)) <= 2 && *v.LeadSuit != v.TrumpSuit {
		return actionConserveTrump
	}
	return actionDefault
}

// chooseLead prefers a boss card outside trump, then the cheapest exit
func (a *Advanced) chooseLead(v game.PlayView) deck.Card {
	for _, c := range v.Playable {
		if c.Suit != v.TrumpSuit && a.tracker.isBoss(v.Variant, c, v.Hand) {
			return c
		}
	}
	return lowestPoints(v.Playable)
}

// winningCard finds the cheapest card that takes the trick, preferring
// a follow over a trump. Falls back to the cheapest loser when the
// trick cannot be taken.
func (a *Advanced) winningCard(v game.PlayView) deck.Card {
	winner, _ := currentWinner(v)
	var follows, trumps []deck.Card
	for _, c := range v.Playable {
		if !beatsPlayed(c, winner.Card, *v.LeadSuit, v.TrumpSuit) {
			continue
		}
		if c.Suit == v.TrumpSuit && winner.Card.Suit != v.TrumpSuit {
			trumps = append(trumps, c)
		} else {
			follows = append(follows, c)
		}
	}
	if len(follows) > 0 {
		return cheapestWinner(follows)
	}
	if len(trumps) > 0 {
		return cheapestWinner(trumps)
	}
	return lowestPoints(v.Playable)
}

// dumpCard feeds the partner's trick. When the trick is already
// theirs a 5 suffices, saving the 10s and aces for tricks that still
// have to be won; otherwise the fattest card that does not overtake
// them. Never cuts the partner with trump.
func (a *Advanced) dumpCard(v game.PlayView) deck.Card {
	winner, _ := currentWinner(v)
	var safe []deck.Card
	for _, c := range v.Playable {
		if !beatsPlayed(c, winner.Card, *v.LeadSuit, v.TrumpSuit) {
			safe = append(safe, c)
		}
	}
	if len(safe) == 0 {
		if offTrump := nonTrump(v.Playable, v.TrumpSuit); len(offTrump) > 0 {
			return lowestPoints(offTrump)
		}
		return lowestPoints(v.Playable)
	}
	if a.partnerHoldsTrick(v, winner) {
		for _, c := range safe {
			if c.Rank == deck.Five {
				return c
			}
		}
	}
	best := safe[0]
	for _, c := range safe[1:] {
		if c.Points() > best.Points() || (c.Points() == best.Points() && c.Order() < best.Order()) {
			best = c
		}
	}
	return best
}

// conserveCard sloughs off-trump when the trump holding is thin
func (a *Advanced) conserveCard(v game.PlayView) deck.Card {
	if offTrump := nonTrump(v.Playable, v.TrumpSuit); len(offTrump) > 0 {
		return lowestPoints(offTrump)
	}
	return lowestPoints(v.Playable)
}

// partnerHoldsTrick reports whether the partner's winning card is safe
// from the opponents still to act.
func (a *Advanced) partnerHoldsTrick(v game.PlayView, winner game.PlayedCard) bool {
	if lastToPlay(v) {
		return true
	}
	for _, seat := range seatsAfterMe(v) {
		if seat%2 == v.MySeat%2 {
			continue
		}
		if a.opponentCanBeat(v, seat, winner.Card) {
			return false
		}
	}
	return true
}

// opponentCanBeat is deliberately pessimistic: an opponent threatens
// the trick unless tracking has proven otherwise.
func (a *Advanced) opponentCanBeat(v game.PlayView, seat int, winning deck.Card) bool {
	lead := *v.LeadSuit
	if winning.Suit == v.TrumpSuit {
		return !a.tracker.isVoid(seat, v.TrumpSuit) &&
			a.tracker.unseenHigher(v.Variant, v.TrumpSuit, winning.Rank, v.Hand)
	}
	if !a.tracker.isVoid(seat, v.TrumpSuit) && a.tracker.isVoid(seat, lead) {
		return true
	}
	if !a.tracker.isVoid(seat, lead) &&
		a.tracker.unseenHigher(v.Variant, lead, winning.Rank, v.Hand) {
		return true
	}
	return false
}

func currentWinner(v game.PlayView) (game.PlayedCard, bool) {
	trick := game.Trick{Cards: v.Trick}
	return trick.Winner(v.TrumpSuit)
}

// beatsPlayed reports whether the candidate outranks the standing
// winner under trump and lead-suit rules.
func beatsPlayed(candidate, winning deck.Card, lead, trump deck.Suit) bool {
	if candidate.Suit == trump && winning.Suit != trump {
		return true
	}
	if candidate.Suit != trump && winning.Suit == trump {
		return false
	}
	if candidate.Suit != winning.Suit {
		// Two off-trump suits: only the lead suit contends.
		return candidate.Suit == lead && winning.Suit != lead
	}
	return candidate.Order() > winning.Order()
}

// cheapestWinner takes the trick for the fewest points, then the
// lowest rank.
func cheapestWinner(cards []deck.Card) deck.Card {
	best := cards[0]
	for _, c := range cards[1:] {
		if c.Points() < best.Points() || (c.Points() == best.Points() && c.Order() < best.Order()) {
			best = c
		}
	}
	return best
}

func tablePoints(trick []game.PlayedCard) int {
	total := 0
	for _, pc := range trick {
		total += pc.Card.Points()
	}
	return total
}

func lastToPlay(v game.PlayView) bool { return len(v.Trick) == 3 }

func seatsAfterMe(v game.PlayView) []int {
	remaining := 3 - len(v.Trick)
	seats := make([]int, 0, remaining)
	for i := 1; i <= remaining; i++ {
		seats = append(seats, (v.MySeat+i)%4)
	}
	return seats
}
