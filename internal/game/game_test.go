package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadien/deuxcents/internal/deck"
)

func testPlayers() []*Player {
	return []*Player{
		{ID: "p0", Name: "north", Position: 0},
		{ID: "p1", Name: "east", Position: 1, IsBot: true, Skill: SkillMedium},
		{ID: "p2", Name: "south", Position: 2},
		{ID: "p3", Name: "west", Position: 3, IsBot: true, Skill: SkillMedium},
	}
}

func testGame(t *testing.T, opts ...func(*Config)) *Game {
	t.Helper()
	cfg := Config{
		ID:          "game-1",
		TableID:     "table-1",
		TimeoutMS:   30000,
		Variant:     deck.Variant36,
		ScoreTarget: 200,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	g := New(cfg, testPlayers(), rand.New(rand.NewSource(1)), quartz.NewMock(t))
	g.Start()
	return g
}

func withKitty(cfg *Config) {
	cfg.Variant = deck.Variant40
	cfg.Kitty = true
}

func TestStartDealsAndOpensBidding(t *testing.T) {
	g := testGame(t)

	assert.Equal(t, PhaseBidding, g.Phase)
	assert.Equal(t, "p0", g.DealerID)
	assert.Equal(t, "p0", g.CurrentTurnID)
	for _, p := range g.Players {
		assert.Len(t, p.Hand, 9)
	}
	assert.Empty(t, g.Deck)
	require.NoError(t, errOrNil(g.CheckConservation()))
}

// Minimum bid and three passes: play opens with the bidder leading.
func TestMinimumBidThenThreePasses(t *testing.T) {
	g := testGame(t)

	res, err := g.MakeBid("p0", 50, deck.Hearts)
	require.NoError(t, err)
	assert.False(t, res.Completed)
	assert.Equal(t, "p1", g.CurrentTurnID)

	_, err = g.PassBid("p1")
	require.NoError(t, err)
	_, err = g.PassBid("p2")
	require.NoError(t, err)
	res, err = g.PassBid("p3")
	require.NoError(t, err)

	assert.True(t, res.Completed)
	assert.Equal(t, PhasePlaying, g.Phase)
	require.NotNil(t, g.TrumpSuit)
	assert.Equal(t, deck.Hearts, *g.TrumpSuit)
	require.NotNil(t, g.ContractorTeam)
	assert.Equal(t, Team1, *g.ContractorTeam)
	assert.Equal(t, "p0", g.CurrentTurnID)
	assert.Equal(t, []int{1, 2, 3}, g.PassedSeats())
}

// Everyone passes: fresh deal, same scores, dealer rotates clockwise.
func TestAllPassStartsNewRound(t *testing.T) {
	g := testGame(t)
	g.TeamScores[Team1] = 35

	for _, id := range []string{"p0", "p1", "p2"} {
		_, err := g.PassBid(id)
		require.NoError(t, err)
	}
	res, err := g.PassBid("p3")
	require.NoError(t, err)

	assert.True(t, res.AllPassed)
	assert.Equal(t, PhaseBidding, g.Phase)
	assert.Equal(t, 2, g.RoundNum)
	assert.Equal(t, "p1", g.DealerID)
	assert.Equal(t, "p1", g.CurrentTurnID)
	assert.Empty(t, g.PassedSeats())
	assert.Nil(t, g.CurrentBid)
	assert.Zero(t, g.BiddingPasses)
	assert.Equal(t, 35, g.TeamScores[Team1])
	for _, p := range g.Players {
		assert.Len(t, p.Hand, 9)
	}
}

// A 100 bid ends bidding immediately.
func TestHundredBidTerminatesBidding(t *testing.T) {
	g := testGame(t)

	_, err := g.MakeBid("p0", 50, deck.Spades)
	require.NoError(t, err)
	res, err := g.MakeBid("p1", 100, deck.Clubs)
	require.NoError(t, err)

	assert.True(t, res.Completed)
	assert.Equal(t, PhasePlaying, g.Phase)
	assert.Equal(t, deck.Clubs, *g.TrumpSuit)
	assert.Equal(t, Team2, *g.ContractorTeam)
	assert.Equal(t, "p1", g.CurrentTurnID)
}

func TestBidValidation(t *testing.T) {
	g := testGame(t)

	_, err := g.MakeBid("p1", 50, deck.Hearts)
	assertCode(t, err, CodeNotYourTurn)

	_, err = g.MakeBid("p0", 45, deck.Hearts)
	assertCode(t, err, CodeIllegalBid)

	_, err = g.MakeBid("p0", 52, deck.Hearts)
	assertCode(t, err, CodeIllegalBid)

	_, err = g.MakeBid("p0", 105, deck.Hearts)
	assertCode(t, err, CodeIllegalBid)

	_, err = g.MakeBid("p0", 60, deck.Hearts)
	require.NoError(t, err)

	// Equal or lower re-bids are rejected.
	_, err = g.MakeBid("p1", 60, deck.Spades)
	assertCode(t, err, CodeIllegalBid)

	// A passed seat may not re-enter.
	_, err = g.PassBid("p1")
	require.NoError(t, err)
	g.setTurn("p1")
	_, err = g.MakeBid("p1", 65, deck.Spades)
	assertCode(t, err, CodeAlreadyPassed)
}

func TestBiddingSkipsPassedSeats(t *testing.T) {
	g := testGame(t)

	_, err := g.MakeBid("p0", 50, deck.Hearts)
	require.NoError(t, err)
	_, err = g.PassBid("p1")
	require.NoError(t, err)
	_, err = g.MakeBid("p2", 55, deck.Spades)
	require.NoError(t, err)
	_, err = g.PassBid("p3")
	require.NoError(t, err)

	// p1 and p3 have passed; the turn returns to p0.
	assert.Equal(t, "p0", g.CurrentTurnID)

	_, err = g.MakeBid("p0", 60, deck.Hearts)
	require.NoError(t, err)
	// p1 is skipped straight to p2.
	assert.Equal(t, "p2", g.CurrentTurnID)
}

func TestOpposingTeamBidRecorded(t *testing.T) {
	g := testGame(t)

	_, err := g.MakeBid("p0", 50, deck.Hearts)
	require.NoError(t, err)
	_, err = g.MakeBid("p1", 55, deck.Spades)
	require.NoError(t, err)
	_, err = g.MakeBid("p2", 60, deck.Hearts)
	require.NoError(t, err)
	for _, id := range []string{"p3", "p1"} {
		_, err = g.PassBid(id)
		require.NoError(t, err)
	}
	_, err = g.PassBid("p0")
	require.NoError(t, err)

	// Team1 holds the contract at 60; team2's best bid was 55.
	require.Equal(t, PhasePlaying, g.Phase)
	assert.Equal(t, Team1, *g.ContractorTeam)
	assert.Equal(t, 55, g.OpposingTeamBid)
}

func TestTurnExpiry(t *testing.T) {
	mock := quartz.NewMock(t)
	cfg := Config{ID: "g", TableID: "t", TimeoutMS: 1000, Variant: deck.Variant36, ScoreTarget: 200}
	g := New(cfg, testPlayers(), rand.New(rand.NewSource(1)), mock)
	g.Start()

	assert.False(t, g.TurnExpired(mock.Now()))
	mock.Advance(1500 * time.Millisecond)
	assert.True(t, g.TurnExpired(mock.Now()))

	// Accepted actions restamp the clock.
	_, err := g.MakeBid("p0", 50, deck.Hearts)
	require.NoError(t, err)
	assert.False(t, g.TurnExpired(mock.Now()))
}

func assertCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	require.Error(t, err)
	var ge *Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, code, ge.Code)
}

func errOrNil(e *Error) error {
	if e == nil {
		return nil
	}
	return e
}
