package game

import (
	"time"

	"github.com/acadien/deuxcents/internal/deck"
)

// Snapshot is the full wire/replay form of a game. Set-typed fields are
// projected to deterministic ordered sequences so clients see stable
// diffs; hands are included so transcripts can replay the game.
type Snapshot struct {
	ID              string               `json:"id"`
	TableID         string               `json:"tableId"`
	Players         []Player             `json:"players"`
	CurrentPlayerID string               `json:"currentPlayerId"`
	Phase           Phase                `json:"phase"`
	CurrentBid      *Bid                 `json:"currentBid,omitempty"`
	TrumpSuit       *deck.Suit           `json:"trumpSuit,omitempty"`
	CurrentTrick    *Trick               `json:"currentTrick,omitempty"`
	LastTrick       *Trick               `json:"lastTrick,omitempty"`
	Round           int                  `json:"round"`
	TeamScores      Scores               `json:"teamScores"`
	RoundScores     Scores               `json:"roundScores"`
	DealerID        string               `json:"dealerId"`
	Spectators      []string             `json:"spectators,omitempty"`
	ContractorTeam  *Team                `json:"contractorTeam,omitempty"`
	BiddingPasses   int                  `json:"biddingPasses"`
	PassedSeats     []int                `json:"playersWhoHavePassed"`
	TurnStarted     map[string]time.Time `json:"turnStartedAt,omitempty"`
	TimeoutMS       int                  `json:"timeoutDuration"`
	DeckVariant     deck.Variant         `json:"deckVariant"`
	ScoreTarget     int                  `json:"scoreTarget"`
	HasKitty        bool                 `json:"hasKitty"`
	Kitty           []deck.Card          `json:"kitty,omitempty"`
	KittyDiscards   []deck.Card          `json:"kittyDiscards,omitempty"`
	KittyDone       bool                 `json:"kittyPhaseCompleted"`
	DeckRemaining   int                  `json:"deckRemaining"`
	WinnerTeam      *Team                `json:"winnerTeam,omitempty"`
}

// Snapshot captures the current authoritative state
func (g *Game) Snapshot() Snapshot {
	players := make([]Player, len(g.Players))
	for i, p := range g.Players {
		cp := *p
		cp.Hand = append([]deck.Card(nil), p.Hand...)
		players[i] = cp
	}

	turns := make(map[string]time.Time, len(g.TurnStarted))
	for k, v := range g.TurnStarted {
		turns[k] = v
	}

	return Snapshot{
		ID:              g.ID,
		TableID:         g.TableID,
		Players:         players,
		CurrentPlayerID: g.CurrentTurnID,
		Phase:           g.Phase,
		CurrentBid:      cloneBid(g.CurrentBid),
		TrumpSuit:       cloneSuit(g.TrumpSuit),
		CurrentTrick:    cloneTrick(g.CurrentTrick),
		LastTrick:       cloneTrick(g.LastTrick),
		Round:           g.RoundNum,
		TeamScores:      g.TeamScores.Clone(),
		RoundScores:     g.RoundScores.Clone(),
		DealerID:        g.DealerID,
		Spectators:      append([]string(nil), g.Spectators...),
		ContractorTeam:  cloneTeam(g.ContractorTeam),
		BiddingPasses:   g.BiddingPasses,
		PassedSeats:     g.PassedSeats(),
		TurnStarted:     turns,
		TimeoutMS:       g.TimeoutMS,
		DeckVariant:     g.Variant,
		ScoreTarget:     g.ScoreTarget,
		HasKitty:        g.KittyEnabled,
		Kitty:           append([]deck.Card(nil), g.Kitty...),
		KittyDiscards:   append([]deck.Card(nil), g.KittyDiscards...),
		KittyDone:       g.KittyDone,
		DeckRemaining:   len(g.Deck),
		WinnerTeam:      cloneTeam(g.WinnerTeam),
	}
}

func cloneBid(b *Bid) *Bid {
	if b == nil {
		return nil
	}
	cp := *b
	return &cp
}

func cloneSuit(s *deck.Suit) *deck.Suit {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

func cloneTeam(t *Team) *Team {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

func cloneTrick(t *Trick) *Trick {
	if t == nil {
		return nil
	}
	cp := *t
	cp.Cards = append([]PlayedCard(nil), t.Cards...)
	return &cp
}
