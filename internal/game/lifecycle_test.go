package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadien/deuxcents/internal/deck"
)

// rigFinalize prepares a game at the end of a round so finalizeRound can
// be exercised directly.
func rigFinalize(t *testing.T, g *Game, contractor Team, bidPoints, cpts, opts int) {
	t.Helper()
	g.Phase = PhasePlaying
	trump := deck.Hearts
	g.TrumpSuit = &trump
	g.ContractorTeam = &contractor
	bidder := "p0"
	if contractor == Team2 {
		bidder = "p1"
	}
	g.CurrentBid = &Bid{PlayerID: bidder, Points: bidPoints, Suit: trump}
	g.CurrentRound = &Round{Number: g.RoundNum, ContractorTeam: contractor, Scores: Scores{Team1: 0, Team2: 0}}
	g.RoundScores = Scores{contractor: cpts, contractor.Opponent(): opts}
	for _, p := range g.Players {
		p.Hand = nil
	}
}

func TestContractMadeScoring(t *testing.T) {
	g := testGame(t)
	rigFinalize(t, g, Team1, 60, 75, 25)

	sum := g.finalizeRound()

	assert.True(t, sum.ContractMade)
	assert.Equal(t, 75, sum.ContractorDelta)
	assert.Equal(t, 25, sum.DefenderDelta)
	assert.Equal(t, 75, g.TeamScores[Team1])
	assert.Equal(t, 25, g.TeamScores[Team2])
}

func TestContractFailedScoring(t *testing.T) {
	g := testGame(t)
	rigFinalize(t, g, Team1, 80, 45, 55)

	sum := g.finalizeRound()

	assert.False(t, sum.ContractMade)
	assert.Equal(t, -80, sum.ContractorDelta)
	assert.Equal(t, 55, sum.DefenderDelta)
	assert.Equal(t, -80, g.TeamScores[Team1])
	assert.Equal(t, 55, g.TeamScores[Team2])
}

// A defending team at 100+ that never bid scores nothing when the
// opposing-team bid rule is enforced.
func TestOpposingBidRuleShutsOutDefenders(t *testing.T) {
	g := testGame(t, func(cfg *Config) { cfg.EnforceOpposingBid = true })
	g.TeamScores[Team2] = 105
	rigFinalize(t, g, Team1, 60, 70, 30)
	g.OpposingTeamBid = 0

	sum := g.finalizeRound()

	assert.True(t, sum.DefenderShutOut)
	assert.Zero(t, sum.DefenderDelta)
	assert.Equal(t, 105, g.TeamScores[Team2])
	assert.Equal(t, 70, g.TeamScores[Team1])
}

func TestOpposingBidRuleInactiveWhenDefendersBid(t *testing.T) {
	g := testGame(t, func(cfg *Config) { cfg.EnforceOpposingBid = true })
	g.TeamScores[Team2] = 105
	rigFinalize(t, g, Team1, 60, 70, 30)
	g.OpposingTeamBid = 55

	sum := g.finalizeRound()

	assert.False(t, sum.DefenderShutOut)
	assert.Equal(t, 30, sum.DefenderDelta)
	assert.Equal(t, 135, g.TeamScores[Team2])
}

func TestOpposingBidRuleOffByDefault(t *testing.T) {
	g := testGame(t)
	g.TeamScores[Team2] = 105
	rigFinalize(t, g, Team1, 60, 70, 30)
	g.OpposingTeamBid = 0

	sum := g.finalizeRound()
	assert.False(t, sum.DefenderShutOut)
	assert.Equal(t, 30, sum.DefenderDelta)
}

// Kitty discard points go to the defenders even when the shutout clause
// applies to their card points.
func TestKittyDiscardCredit(t *testing.T) {
	g := testGame(t, withKitty)
	g.EnforceOpposingBid = true
	g.TeamScores[Team2] = 110
	rigFinalize(t, g, Team1, 60, 70, 30)
	g.OpposingTeamBid = 0
	g.KittyDiscards = []deck.Card{
		c(deck.Hearts, deck.Five), c(deck.Clubs, deck.Ten),
		c(deck.Spades, deck.Seven), c(deck.Diamonds, deck.Eight),
	}

	sum := g.finalizeRound()

	assert.True(t, sum.DefenderShutOut)
	assert.Equal(t, 15, sum.KittyPoints)
	assert.Equal(t, 15, sum.DefenderDelta)
	assert.Equal(t, 125, g.TeamScores[Team2])
}

func TestGameEndAtPositiveTarget(t *testing.T) {
	g := testGame(t)
	g.TeamScores = Scores{Team1: 210, Team2: 40}

	require.True(t, g.checkGameEnd())
	assert.Equal(t, PhaseFinished, g.Phase)
	require.NotNil(t, g.WinnerTeam)
	assert.Equal(t, Team1, *g.WinnerTeam)
}

func TestGameEndAtNegativeTarget(t *testing.T) {
	g := testGame(t)
	g.TeamScores = Scores{Team1: -200, Team2: 40}

	require.True(t, g.checkGameEnd())
	require.NotNil(t, g.WinnerTeam)
	assert.Equal(t, Team2, *g.WinnerTeam)
}

func TestGameContinuesBelowTarget(t *testing.T) {
	g := testGame(t)
	g.TeamScores = Scores{Team1: 195, Team2: -195}
	assert.False(t, g.checkGameEnd())
	assert.Equal(t, PhaseBidding, g.Phase)
}

func TestStartNextRoundResets(t *testing.T) {
	g := testGame(t)
	rigFinalize(t, g, Team1, 60, 75, 25)
	g.Passed = map[int]struct{}{1: {}, 3: {}}
	g.finalizeRound()

	g.StartNextRound()

	assert.Equal(t, 2, g.RoundNum)
	assert.Equal(t, PhaseBidding, g.Phase)
	assert.Equal(t, "p1", g.DealerID)
	assert.Equal(t, "p1", g.CurrentTurnID)
	assert.Nil(t, g.CurrentBid)
	assert.Nil(t, g.TrumpSuit)
	assert.Nil(t, g.ContractorTeam)
	assert.Empty(t, g.PassedSeats())
	assert.Zero(t, g.OpposingTeamBid)
	assert.Equal(t, Scores{Team1: 0, Team2: 0}, g.RoundScores)
	for _, p := range g.Players {
		assert.Len(t, p.Hand, 9)
	}
	// Cumulative scores survive the reset.
	assert.Equal(t, 75, g.TeamScores[Team1])
}
