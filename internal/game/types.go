package game

import (
	"github.com/acadien/deuxcents/internal/deck"
)

// Phase is the game state machine phase
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseBidding  Phase = "bidding"
	PhaseKitty    Phase = "kitty"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// Bid is a declared contract: points in {50,55,...,100} plus a suit
type Bid struct {
	PlayerID string    `json:"playerId"`
	Points   int       `json:"points"`
	Suit     deck.Suit `json:"suit"`
}

const (
	// MinBid is the lowest legal contract
	MinBid = 50
	// MaxBid terminates bidding immediately
	MaxBid = 100
	// BidStep is the legal bid increment
	BidStep = 5
)

// ValidBidPoints reports whether points form a legal contract value
func ValidBidPoints(points int) bool {
	return points >= MinBid && points <= MaxBid && points%BidStep == 0
}

// PlayedCard pairs a card with the seat that played it
type PlayedCard struct {
	Card     deck.Card `json:"card"`
	PlayerID string    `json:"playerId"`
}

// Trick is an ordered sequence of 0-4 played cards
type Trick struct {
	Cards    []PlayedCard `json:"cards"`
	WinnerID string       `json:"winnerId,omitempty"`
	Points   int          `json:"points"`
}

// LeadSuit returns the suit of the first card, valid only when the trick
// is non-empty.
func (t *Trick) LeadSuit() (deck.Suit, bool) {
	if len(t.Cards) == 0 {
		return 0, false
	}
	return t.Cards[0].Card.Suit, true
}

// CardPoints returns the sum of counting values in the trick
func (t *Trick) CardPoints() int {
	total := 0
	for _, pc := range t.Cards {
		total += pc.Card.Points()
	}
	return total
}

// Winner determines the winning play by trump and lead-suit rules: the
// highest trump if any trump was played, otherwise the highest card of
// the lead suit. Off-suit non-trump cards never win.
func (t *Trick) Winner(trump deck.Suit) (PlayedCard, bool) {
	if len(t.Cards) == 0 {
		return PlayedCard{}, false
	}
	lead := t.Cards[0].Card.Suit
	best := 0
	for i := 1; i < len(t.Cards); i++ {
		if beats(t.Cards[i].Card, t.Cards[best].Card, lead, trump) {
			best = i
		}
	}
	return t.Cards[best], true
}

// beats reports whether card a out-ranks card b for the trick: trump
// beats non-trump regardless of rank, within a suit class higher rank
// wins, and among non-trump only lead-suit cards contend.
func beats(a, b deck.Card, lead, trump deck.Suit) bool {
	aTrump, bTrump := a.Suit == trump, b.Suit == trump
	switch {
	case aTrump && !bTrump:
		return true
	case !aTrump && bTrump:
		return false
	case aTrump && bTrump:
		return a.Order() > b.Order()
	default:
		if a.Suit != lead {
			return false
		}
		if b.Suit != lead {
			return true
		}
		return a.Order() > b.Order()
	}
}

// Round records one deal from bidding to hand exhaustion
type Round struct {
	Number         int        `json:"number"`
	Tricks         []Trick    `json:"tricks"`
	ContractorTeam Team       `json:"contractorTeam,omitempty"`
	TrumpSuit      *deck.Suit `json:"trumpSuit,omitempty"`
	WinningBid     *Bid       `json:"winningBid,omitempty"`
	Scores         Scores     `json:"scores"`
}

// RoundSummary carries the per-team deltas applied at round end
type RoundSummary struct {
	Round            int    `json:"round"`
	ContractorTeam   Team   `json:"contractorTeam"`
	BidPoints        int    `json:"bidPoints"`
	ContractorPoints int    `json:"contractorPoints"`
	DefenderPoints   int    `json:"defenderPoints"`
	KittyPoints      int    `json:"kittyPoints"`
	ContractorDelta  int    `json:"contractorDelta"`
	DefenderDelta    int    `json:"defenderDelta"`
	ContractMade     bool   `json:"contractMade"`
	DefenderShutOut  bool   `json:"defenderShutOut"`
	TeamScores       Scores `json:"teamScores"`
}
