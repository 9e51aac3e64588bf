package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadien/deuxcents/internal/deck"
)

// rigPlaying puts a game straight into the playing phase with fixed
// hands so trick mechanics can be exercised deterministically.
func rigPlaying(t *testing.T, g *Game, trump deck.Suit, hands map[string][]deck.Card) {
	t.Helper()
	g.Phase = PhasePlaying
	tr := trump
	g.TrumpSuit = &tr
	team := Team1
	g.ContractorTeam = &team
	g.CurrentBid = &Bid{PlayerID: "p0", Points: 50, Suit: trump}
	g.CurrentRound = &Round{Number: g.RoundNum, ContractorTeam: team, Scores: Scores{Team1: 0, Team2: 0}}
	g.CurrentTrick = &Trick{}
	g.Deck = nil
	g.Kitty = nil
	for id, hand := range hands {
		g.PlayerByID(id).Hand = hand
	}
	g.setTurn("p0")
}

func c(s deck.Suit, r deck.Rank) deck.Card { return deck.NewCard(s, r) }

// A seat holding the lead suit must play it.
func TestFollowSuitEnforcement(t *testing.T) {
	g := testGame(t)
	rigPlaying(t, g, deck.Clubs, map[string][]deck.Card{
		"p0": {c(deck.Hearts, deck.Ace)},
		"p1": {c(deck.Hearts, deck.Five), c(deck.Spades, deck.Ten)},
		"p2": {c(deck.Hearts, deck.King)},
		"p3": {c(deck.Hearts, deck.Queen)},
	})

	_, err := g.PlayCard("p0", "hearts-A")
	require.NoError(t, err)

	_, err = g.PlayCard("p1", "spades-10")
	assertCode(t, err, CodeFollowSuit)

	_, err = g.PlayCard("p1", "hearts-5")
	require.NoError(t, err)
	assert.Equal(t, "p2", g.CurrentTurnID)
}

func TestPlayGuards(t *testing.T) {
	g := testGame(t)
	rigPlaying(t, g, deck.Clubs, map[string][]deck.Card{
		"p0": {c(deck.Hearts, deck.Ace)},
		"p1": {c(deck.Hearts, deck.Five)},
		"p2": {c(deck.Hearts, deck.King)},
		"p3": {c(deck.Hearts, deck.Queen)},
	})

	_, err := g.PlayCard("p1", "hearts-5")
	assertCode(t, err, CodeNotYourTurn)

	_, err = g.PlayCard("p0", "spades-A")
	assertCode(t, err, CodeCardNotHeld)
}

// Trump wins over higher-ranked lead-suit cards; points go to the
// trumping seat's team.
func TestTrumpWinsTrick(t *testing.T) {
	g := testGame(t)
	rigPlaying(t, g, deck.Clubs, map[string][]deck.Card{
		"p0": {c(deck.Spades, deck.Ace), c(deck.Hearts, deck.Seven)},
		"p1": {c(deck.Spades, deck.King), c(deck.Hearts, deck.Eight)},
		"p2": {c(deck.Clubs, deck.Five), c(deck.Hearts, deck.Nine)},
		"p3": {c(deck.Spades, deck.Ten), c(deck.Hearts, deck.Jack)},
	})

	for _, play := range []struct{ id, card string }{
		{"p0", "spades-A"}, {"p1", "spades-K"}, {"p2", "clubs-5"},
	} {
		_, err := g.PlayCard(play.id, play.card)
		require.NoError(t, err)
	}
	res, err := g.PlayCard("p3", "spades-10")
	require.NoError(t, err)

	require.True(t, res.TrickCompleted)
	assert.Equal(t, "p2", res.Trick.WinnerID)
	assert.Equal(t, 25, res.Trick.Points)
	assert.Equal(t, 25, g.RoundScores[Team1])
	assert.Zero(t, g.RoundScores[Team2])

	// The winner leads the next trick.
	assert.Equal(t, "p2", g.CurrentTurnID)
	assert.Equal(t, res.Trick, g.LastTrick)
	assert.Empty(t, g.CurrentTrick.Cards)
}

// Without trump, the highest lead-suit card takes the trick; off-suit
// cards never win.
func TestLeadSuitWinsWithoutTrump(t *testing.T) {
	g := testGame(t)
	rigPlaying(t, g, deck.Clubs, map[string][]deck.Card{
		"p0": {c(deck.Hearts, deck.Nine), c(deck.Hearts, deck.Seven)},
		"p1": {c(deck.Hearts, deck.Queen), c(deck.Hearts, deck.Eight)},
		"p2": {c(deck.Spades, deck.Ace), c(deck.Hearts, deck.Ten)},
		"p3": {c(deck.Hearts, deck.King), c(deck.Diamonds, deck.Jack)},
	})

	for _, play := range []struct{ id, card string }{
		{"p0", "hearts-9"}, {"p1", "hearts-Q"}, {"p2", "spades-A"},
	} {
		_, err := g.PlayCard(play.id, play.card)
		require.NoError(t, err)
	}
	res, err := g.PlayCard("p3", "hearts-K")
	require.NoError(t, err)

	require.True(t, res.TrickCompleted)
	assert.Equal(t, "p3", res.Trick.WinnerID)
	assert.Equal(t, 10, res.Trick.Points) // only the off-suit ace counts
}

func TestTrickWinnerProperties(t *testing.T) {
	trick := &Trick{Cards: []PlayedCard{
		{Card: c(deck.Hearts, deck.Ace), PlayerID: "a"},
		{Card: c(deck.Clubs, deck.Five), PlayerID: "b"},
		{Card: c(deck.Clubs, deck.Six), PlayerID: "c"},
		{Card: c(deck.Hearts, deck.King), PlayerID: "d"},
	}}

	// Within trump, higher rank wins.
	w, ok := trick.Winner(deck.Clubs)
	require.True(t, ok)
	assert.Equal(t, "c", w.PlayerID)

	// No trump played: lead suit decides.
	w, ok = trick.Winner(deck.Diamonds)
	require.True(t, ok)
	assert.Equal(t, "a", w.PlayerID)
}

// The last trick of the round triggers finalization and scoring.
func TestRoundCompletionOnLastTrick(t *testing.T) {
	g := testGame(t)
	rigPlaying(t, g, deck.Hearts, map[string][]deck.Card{
		"p0": {c(deck.Hearts, deck.Ace)},
		"p1": {c(deck.Hearts, deck.Ten)},
		"p2": {c(deck.Hearts, deck.Five)},
		"p3": {c(deck.Hearts, deck.Nine)},
	})

	for _, play := range []struct{ id, card string }{
		{"p0", "hearts-A"}, {"p1", "hearts-10"}, {"p2", "hearts-5"},
	} {
		_, err := g.PlayCard(play.id, play.card)
		require.NoError(t, err)
	}
	res, err := g.PlayCard("p3", "hearts-9")
	require.NoError(t, err)

	require.True(t, res.TrickCompleted)
	require.True(t, res.RoundCompleted)
	require.NotNil(t, res.Summary)

	// Contractor (team1) took 25 points against a 50 bid: contract
	// failed, so team1 loses the bid and team2 keeps its card points.
	assert.Equal(t, 25, res.Summary.ContractorPoints)
	assert.False(t, res.Summary.ContractMade)
	assert.Equal(t, -50, res.Summary.ContractorDelta)
	assert.Equal(t, -50, g.TeamScores[Team1])
	assert.Zero(t, g.TeamScores[Team2])
	assert.False(t, res.GameEnded)
}

// Round scores always sum to the trick points of the round.
func TestRoundScoreAccounting(t *testing.T) {
	g := testGame(t)
	rigPlaying(t, g, deck.Spades, map[string][]deck.Card{
		"p0": {c(deck.Hearts, deck.Ace), c(deck.Clubs, deck.Ten)},
		"p1": {c(deck.Spades, deck.Five), c(deck.Clubs, deck.Nine)},
		"p2": {c(deck.Hearts, deck.Five), c(deck.Clubs, deck.Ace)},
		"p3": {c(deck.Hearts, deck.Nine), c(deck.Clubs, deck.King)},
	})

	plays := []struct{ id, card string }{
		// p1 holds no hearts and trumps the first trick.
		{"p0", "hearts-A"}, {"p1", "spades-5"}, {"p2", "hearts-5"}, {"p3", "hearts-9"},
		{"p1", "clubs-9"}, {"p2", "clubs-A"}, {"p3", "clubs-K"}, {"p0", "clubs-10"},
	}
	var total int
	for _, play := range plays {
		res, err := g.PlayCard(play.id, play.card)
		require.NoError(t, err)
		if res.TrickCompleted {
			total += res.Trick.Points
		}
	}

	assert.Equal(t, 40, total)
	assert.Equal(t, total, g.RoundScores[Team1]+g.RoundScores[Team2])
	sum := 0
	for _, r := range g.Rounds {
		for _, trick := range r.Tricks {
			sum += trick.Points
		}
	}
	assert.Equal(t, total, sum)
}
