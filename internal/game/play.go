package game

import "github.com/acadien/deuxcents/internal/deck"

// PlayResult reports the consequences of a card play
type PlayResult struct {
	// TrickCompleted is set when this was the fourth card; Trick holds
	// the completed trick including winner and points.
	TrickCompleted bool
	Trick          *Trick

	// RoundCompleted is set when all hands are empty; Summary holds the
	// per-team score deltas already applied to the cumulative scores.
	RoundCompleted bool
	Summary        *RoundSummary

	// GameEnded is set when a team reached the score target. The game is
	// in the finished phase and WinnerTeam names the winning side.
	GameEnded bool
}

// PlayCard validates and applies a card play by the current player,
// enforcing follow-suit: a seat holding the lead suit must play it.
func (g *Game) PlayCard(playerID, cardID string) (*PlayResult, error) {
	p, err := g.requireTurn(playerID, PhasePlaying)
	if err != nil {
		return nil, err
	}
	if !p.HasCard(cardID) {
		return nil, g.errf(CodeCardNotHeld, "card %s is not in %s's hand", cardID, p.Name)
	}

	if lead, ok := g.CurrentTrick.LeadSuit(); ok {
		played := cardInHand(p, cardID)
		if played.Suit != lead && p.HasSuit(lead) {
			return nil, g.errf(CodeFollowSuit, "must follow %s", lead)
		}
	}

	card, _ := p.RemoveCard(cardID)
	g.CurrentTrick.Cards = append(g.CurrentTrick.Cards, PlayedCard{Card: card, PlayerID: playerID})
	g.TouchTurn()

	if len(g.CurrentTrick.Cards) < 4 {
		g.setTurn(g.PlayerAt(NextPosition(p.Position)).ID)
		return &PlayResult{}, nil
	}

	return g.completeTrick()
}

// completeTrick resolves the four-card trick: winner, points, and either
// the next trick or round finalization.
func (g *Game) completeTrick() (*PlayResult, error) {
	trick := g.CurrentTrick
	winner, _ := trick.Winner(*g.TrumpSuit)
	trick.WinnerID = winner.PlayerID
	trick.Points = trick.CardPoints()

	winnerTeam := g.PlayerByID(winner.PlayerID).Team()
	g.RoundScores[winnerTeam] += trick.Points
	g.CurrentRound.Scores[winnerTeam] += trick.Points
	g.CurrentRound.Tricks = append(g.CurrentRound.Tricks, *trick)

	g.LastTrick = trick
	g.CurrentTrick = &Trick{}

	result := &PlayResult{TrickCompleted: true, Trick: trick}

	if g.handsEmpty() {
		result.RoundCompleted = true
		result.Summary = g.finalizeRound()
		if g.checkGameEnd() {
			result.GameEnded = true
		}
		return result, nil
	}

	g.setTurn(winner.PlayerID)
	return result, nil
}

// handsEmpty reports whether every seat has played out its hand
func (g *Game) handsEmpty() bool {
	for _, p := range g.Players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}

// cardInHand returns the held card with the given id; the caller has
// already checked membership.
func cardInHand(p *Player, cardID string) deck.Card {
	for _, c := range p.Hand {
		if c.ID == cardID {
			return c
		}
	}
	return deck.Card{}
}
