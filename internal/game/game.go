package game

import (
	"math/rand"
	"sort"
	"time"

	"github.com/coder/quartz"

	"github.com/acadien/deuxcents/internal/deck"
)

// Config carries the table settings a game is created with
type Config struct {
	ID                 string
	TableID            string
	TimeoutMS          int
	Variant            deck.Variant
	ScoreTarget        int
	Kitty              bool
	AllowPointDiscards bool
	EnforceOpposingBid bool
}

// Game is the authoritative record for a single game. Methods are not
// safe for concurrent use; the owning lane serializes all mutation.
type Game struct {
	ID      string
	TableID string

	Players       []*Player // exactly 4, indexed by seat position
	CurrentTurnID string
	Phase         Phase

	CurrentBid     *Bid
	TrumpSuit      *deck.Suit
	CurrentTrick   *Trick
	LastTrick      *Trick
	RoundNum       int
	TeamScores     Scores
	RoundScores    Scores
	DealerID       string
	Spectators     []string
	ContractorTeam *Team

	BiddingPasses int
	Passed        map[int]struct{} // seat positions that have passed this round
	TeamBids      Scores           // highest bid made by each team this round

	TurnStarted map[string]time.Time
	TimeoutMS   int

	Variant         deck.Variant
	ScoreTarget     int
	KittyEnabled    bool
	Kitty           []deck.Card
	KittyDiscards   []deck.Card
	KittyDone       bool
	Deck            []deck.Card // undealt remainder
	Rounds          []*Round
	CurrentRound    *Round
	OpposingTeamBid int

	AllowPointDiscards bool
	EnforceOpposingBid bool

	// WinnerTeam is set when the game finishes with a decided result.
	WinnerTeam *Team

	rng   *rand.Rand
	clock quartz.Clock
}

// New assembles a game in the waiting phase. players must hold exactly
// four seats with positions 0-3.
func New(cfg Config, players []*Player, rng *rand.Rand, clock quartz.Clock) *Game {
	sorted := make([]*Player, len(players))
	copy(sorted, players)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	return &Game{
		ID:                 cfg.ID,
		TableID:            cfg.TableID,
		Players:            sorted,
		Phase:              PhaseWaiting,
		TeamScores:         Scores{Team1: 0, Team2: 0},
		RoundScores:        Scores{Team1: 0, Team2: 0},
		Passed:             make(map[int]struct{}),
		TeamBids:           Scores{Team1: 0, Team2: 0},
		TurnStarted:        make(map[string]time.Time),
		TimeoutMS:          cfg.TimeoutMS,
		Variant:            cfg.Variant,
		ScoreTarget:        cfg.ScoreTarget,
		KittyEnabled:       cfg.Kitty,
		AllowPointDiscards: cfg.AllowPointDiscards,
		EnforceOpposingBid: cfg.EnforceOpposingBid,
		RoundNum:           1,
		rng:                rng,
		clock:              clock,
	}
}

// Start deals the first round and opens bidding. The dealer is seat 0
// and bids first.
func (g *Game) Start() {
	dealer := g.PlayerAt(0)
	g.DealerID = dealer.ID
	g.beginRound()
}

// beginRound deals and resets per-round state, leaving the dealer to bid
// first.
func (g *Game) beginRound() {
	g.CurrentBid = nil
	g.TrumpSuit = nil
	g.CurrentTrick = &Trick{}
	g.LastTrick = nil
	g.ContractorTeam = nil
	g.BiddingPasses = 0
	g.Passed = make(map[int]struct{})
	g.TeamBids = Scores{Team1: 0, Team2: 0}
	g.RoundScores = Scores{Team1: 0, Team2: 0}
	g.Kitty = nil
	g.KittyDiscards = nil
	g.KittyDone = false
	g.OpposingTeamBid = 0
	g.CurrentRound = &Round{Number: g.RoundNum, Scores: Scores{Team1: 0, Team2: 0}}

	g.deal()
	g.Phase = PhaseBidding
	g.setTurn(g.DealerID)
}

// PlayerByID finds a seated player
func (g *Game) PlayerByID(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerAt returns the player at a seat position
func (g *Game) PlayerAt(position int) *Player {
	for _, p := range g.Players {
		if p.Position == position {
			return p
		}
	}
	return nil
}

// CurrentPlayer returns the seat whose turn it is
func (g *Game) CurrentPlayer() *Player {
	return g.PlayerByID(g.CurrentTurnID)
}

// NextPosition returns the next seat clockwise
func NextPosition(position int) int {
	return (position + 1) % 4
}

// setTurn moves the turn and stamps the turn-start time for the timeout
// supervisor.
func (g *Game) setTurn(playerID string) {
	g.CurrentTurnID = playerID
	g.TurnStarted[playerID] = g.clock.Now()
}

// TouchTurn restamps the current player's turn clock. Called on every
// accepted action.
func (g *Game) TouchTurn() {
	if g.CurrentTurnID != "" {
		g.TurnStarted[g.CurrentTurnID] = g.clock.Now()
	}
}

// TurnExpired reports whether the current player has exceeded the
// per-turn budget.
func (g *Game) TurnExpired(now time.Time) bool {
	if g.Phase == PhaseWaiting || g.Phase == PhaseFinished || g.CurrentTurnID == "" {
		return false
	}
	started, ok := g.TurnStarted[g.CurrentTurnID]
	if !ok {
		return false
	}
	return started.Add(time.Duration(g.TimeoutMS) * time.Millisecond).Before(now)
}

// PassedSeats returns the passed-seat set as an ordered sequence
func (g *Game) PassedSeats() []int {
	seats := make([]int, 0, len(g.Passed))
	for pos := range g.Passed {
		seats = append(seats, pos)
	}
	sort.Ints(seats)
	return seats
}

// Finish terminates the game without a decided winner (exit or timeout)
func (g *Game) Finish() {
	g.Phase = PhaseFinished
}

// CheckConservation verifies that every card of the round's deck is
// accounted for across hands, the current trick, completed tricks, the
// kitty, the kitty discards, and the undealt remainder. A violation is
// fatal for the game.
func (g *Game) CheckConservation() *Error {
	if g.Phase == PhaseWaiting || g.Phase == PhaseFinished {
		return nil
	}
	count := len(g.Kitty) + len(g.KittyDiscards) + len(g.Deck)
	for _, p := range g.Players {
		count += len(p.Hand)
	}
	if g.CurrentTrick != nil {
		count += len(g.CurrentTrick.Cards)
	}
	if g.CurrentRound != nil {
		for _, t := range g.CurrentRound.Tricks {
			count += len(t.Cards)
		}
	}
	if count != g.Variant.Size() {
		return g.errf(CodeInvariantBroken,
			"card conservation violated: %d cards accounted for, want %d", count, g.Variant.Size())
	}
	return nil
}
