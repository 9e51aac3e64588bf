package game

import (
	"github.com/acadien/deuxcents/internal/deck"
)

// BidResult reports what a bid or pass caused
type BidResult struct {
	// Completed is true once bidding has ended and play (or the kitty
	// phase) begins.
	Completed bool
	// AllPassed is true when every seat passed and a fresh round was
	// dealt instead.
	AllPassed bool
	// Phase is the phase the game is in after the event.
	Phase Phase
}

// MakeBid validates and applies a bid from a seat. A legal bid must come
// from the current player, from a seat that has not passed, be a
// multiple of five in [50,100], and exceed the standing bid.
func (g *Game) MakeBid(playerID string, points int, suit deck.Suit) (*BidResult, error) {
	p, err := g.requireTurn(playerID, PhaseBidding)
	if err != nil {
		return nil, err
	}
	if _, passed := g.Passed[p.Position]; passed {
		return nil, g.errf(CodeAlreadyPassed, "player %s has already passed this round", p.Name)
	}
	if !ValidBidPoints(points) {
		return nil, g.errf(CodeIllegalBid, "bid must be a multiple of %d between %d and %d, got %d",
			BidStep, MinBid, MaxBid, points)
	}
	current := 0
	if g.CurrentBid != nil {
		current = g.CurrentBid.Points
	}
	if points <= current {
		return nil, g.errf(CodeIllegalBid, "bid %d does not beat the current bid of %d", points, current)
	}

	g.CurrentBid = &Bid{PlayerID: playerID, Points: points, Suit: suit}
	g.BiddingPasses = 0
	team := p.Team()
	if points > g.TeamBids[team] {
		g.TeamBids[team] = points
	}
	g.TouchTurn()

	return g.afterBidEvent()
}

// PassBid marks the current player as passed for the rest of the round
func (g *Game) PassBid(playerID string) (*BidResult, error) {
	p, err := g.requireTurn(playerID, PhaseBidding)
	if err != nil {
		return nil, err
	}

	g.Passed[p.Position] = struct{}{}
	g.BiddingPasses++
	g.TouchTurn()

	return g.afterBidEvent()
}

// afterBidEvent advances the turn past passed seats and applies the
// bidding completion rules.
func (g *Game) afterBidEvent() (*BidResult, error) {
	// Everyone passed: redeal with the same scores and the next dealer.
	if len(g.Passed) == 4 {
		g.rotateDealer()
		g.RoundNum++
		g.beginRound()
		return &BidResult{AllPassed: true, Phase: g.Phase}, nil
	}

	if g.biddingComplete() {
		g.concludeBidding()
		return &BidResult{Completed: true, Phase: g.Phase}, nil
	}

	g.advancePastPassed()
	return &BidResult{Phase: g.Phase}, nil
}

// biddingComplete applies the completion rules: a 100 bid ends bidding
// immediately; otherwise bidding ends once three seats are out, which
// leaves the standing bidder as the only live seat.
func (g *Game) biddingComplete() bool {
	if g.CurrentBid == nil {
		return false
	}
	if g.CurrentBid.Points == MaxBid {
		return true
	}
	return len(g.Passed) >= 3
}

// concludeBidding transitions to the kitty phase when one is owed,
// otherwise straight to play with the bidder leading.
func (g *Game) concludeBidding() {
	bidder := g.PlayerByID(g.CurrentBid.PlayerID)
	g.OpposingTeamBid = g.TeamBids[bidder.Team().Opponent()]

	if g.KittyEnabled && g.Variant == deck.Variant40 && len(g.Kitty) > 0 && !g.KittyDone {
		g.Phase = PhaseKitty
		g.setTurn(bidder.ID)
		return
	}

	g.enterPlaying(bidder, g.CurrentBid.Suit)
}

// enterPlaying sets trump and the contractor team and hands the lead to
// the bidder.
func (g *Game) enterPlaying(bidder *Player, trump deck.Suit) {
	g.Phase = PhasePlaying
	g.TrumpSuit = &trump
	team := bidder.Team()
	g.ContractorTeam = &team
	g.CurrentRound.ContractorTeam = team
	g.CurrentRound.TrumpSuit = &trump
	bid := *g.CurrentBid
	g.CurrentRound.WinningBid = &bid
	g.CurrentTrick = &Trick{}
	g.setTurn(bidder.ID)
}

// advancePastPassed moves the turn clockwise, skipping seats that have
// passed. The skip is capped at a full rotation to prevent livelock.
func (g *Game) advancePastPassed() {
	pos := g.CurrentPlayer().Position
	for i := 0; i < 4; i++ {
		pos = NextPosition(pos)
		if _, passed := g.Passed[pos]; !passed {
			break
		}
	}
	g.setTurn(g.PlayerAt(pos).ID)
}

// rotateDealer hands the deal to the next seat clockwise
func (g *Game) rotateDealer() {
	dealer := g.PlayerByID(g.DealerID)
	g.DealerID = g.PlayerAt(NextPosition(dealer.Position)).ID
}

// requireTurn guards phase and turn for an inbound action
func (g *Game) requireTurn(playerID string, phase Phase) (*Player, error) {
	p := g.PlayerByID(playerID)
	if p == nil {
		return nil, g.errf(CodeNotInGame, "player %s is not seated in this game", playerID)
	}
	if g.Phase != phase {
		return nil, g.errf(CodeWrongPhase, "operation requires phase %s", phase)
	}
	if g.CurrentTurnID != playerID {
		return nil, g.errf(CodeNotYourTurn, "it is not %s's turn", p.Name)
	}
	return p, nil
}
