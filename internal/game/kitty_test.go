package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadien/deuxcents/internal/deck"
)

// bidToKitty drives bidding so that p0 wins a 60-hearts contract and the
// game lands in the kitty phase.
func bidToKitty(t *testing.T, g *Game) {
	t.Helper()
	_, err := g.MakeBid("p0", 60, deck.Hearts)
	require.NoError(t, err)
	for _, id := range []string{"p1", "p2"} {
		_, err = g.PassBid(id)
		require.NoError(t, err)
	}
	res, err := g.PassBid("p3")
	require.NoError(t, err)
	require.True(t, res.Completed)
	require.Equal(t, PhaseKitty, g.Phase)
	require.Equal(t, "p0", g.CurrentTurnID)
}

func TestKittyPhaseGating(t *testing.T) {
	g := testGame(t, withKitty)
	bidToKitty(t, g)
}

func TestNoKittyPhaseWithout40CardDeck(t *testing.T) {
	g := testGame(t)
	_, err := g.MakeBid("p0", 60, deck.Hearts)
	require.NoError(t, err)
	for _, id := range []string{"p1", "p2", "p3"} {
		_, err = g.PassBid(id)
		require.NoError(t, err)
	}
	assert.Equal(t, PhasePlaying, g.Phase)
}

func TestTakeKittyGrowsHand(t *testing.T) {
	g := testGame(t, withKitty)
	bidToKitty(t, g)

	require.NoError(t, g.TakeKitty("p0"))
	assert.Len(t, g.PlayerByID("p0").Hand, 13)
	assert.Empty(t, g.Kitty)

	// Taking twice is rejected.
	err := g.TakeKitty("p0")
	assertCode(t, err, CodeWrongPhase)
}

func TestDiscardBeforeTakeRejected(t *testing.T) {
	g := testGame(t, withKitty)
	bidToKitty(t, g)

	err := g.DiscardKitty("p0", []string{"a", "b", "c", "d"}, deck.Hearts)
	assertCode(t, err, CodeWrongPhase)
}

func TestDiscardKittyCompletesPhase(t *testing.T) {
	g := testGame(t, withKitty)
	bidToKitty(t, g)
	require.NoError(t, g.TakeKitty("p0"))

	p0 := g.PlayerByID("p0")
	ids := zeroValueDiscards(t, p0, 4)

	require.NoError(t, g.DiscardKitty("p0", ids, deck.Hearts))

	assert.Equal(t, PhasePlaying, g.Phase)
	assert.True(t, g.KittyDone)
	assert.Len(t, p0.Hand, 9)
	assert.Len(t, g.KittyDiscards, 4)
	assert.Equal(t, deck.Hearts, *g.TrumpSuit)
	assert.Equal(t, Team1, *g.ContractorTeam)
	assert.Equal(t, "p0", g.CurrentTurnID)
	assertFullDeck(t, g, deck.Variant40)
}

func TestDiscardTrumpMayDiffer(t *testing.T) {
	g := testGame(t, withKitty)
	bidToKitty(t, g)
	require.NoError(t, g.TakeKitty("p0"))

	ids := zeroValueDiscards(t, g.PlayerByID("p0"), 4)
	require.NoError(t, g.DiscardKitty("p0", ids, deck.Spades))
	assert.Equal(t, deck.Spades, *g.TrumpSuit)
}

func TestDiscardValidation(t *testing.T) {
	g := testGame(t, withKitty)
	bidToKitty(t, g)
	require.NoError(t, g.TakeKitty("p0"))
	p0 := g.PlayerByID("p0")

	// Wrong count.
	err := g.DiscardKitty("p0", zeroValueDiscards(t, p0, 3), deck.Hearts)
	assertCode(t, err, CodeIllegalDiscard)

	// Card not held.
	ids := zeroValueDiscards(t, p0, 3)
	err = g.DiscardKitty("p0", append(ids, "no-such-card"), deck.Hearts)
	assertCode(t, err, CodeCardNotHeld)

	// Duplicates.
	err = g.DiscardKitty("p0", []string{ids[0], ids[0], ids[1], ids[2]}, deck.Hearts)
	assertCode(t, err, CodeIllegalDiscard)
}

func TestPointCardDiscardsPolicy(t *testing.T) {
	g := testGame(t, withKitty)
	bidToKitty(t, g)
	require.NoError(t, g.TakeKitty("p0"))
	p0 := g.PlayerByID("p0")

	var point string
	for _, card := range p0.Hand {
		if card.Points() > 0 {
			point = card.ID
			break
		}
	}
	require.NotEmpty(t, point, "13-card hand must contain a point card")

	ids := zeroValueDiscards(t, p0, 3)
	err := g.DiscardKitty("p0", append(ids, point), deck.Hearts)
	assertCode(t, err, CodeIllegalDiscard)
	assert.Len(t, p0.Hand, 13, "rejected discard must not shrink the hand")

	// Allowed when the table permits point discards.
	g.AllowPointDiscards = true
	require.NoError(t, g.DiscardKitty("p0", append(ids, point), deck.Hearts))
	assert.Len(t, p0.Hand, 9)
}

func zeroValueDiscards(t *testing.T, p *Player, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for _, card := range p.Hand {
		if card.Points() == 0 {
			ids = append(ids, card.ID)
			if len(ids) == n {
				break
			}
		}
	}
	if len(ids) < n {
		t.Fatalf("hand has only %d zero-value cards, need %d", len(ids), n)
	}
	return ids
}
