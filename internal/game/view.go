package game

import (
	"github.com/acadien/deuxcents/internal/deck"
)

// SeatInfo is the public view of one seat
type SeatInfo struct {
	ID       string
	Name     string
	Position int
	IsBot    bool
	HasBid   bool
	Passed   bool
}

// BidView is everything a bidding policy may consult. It is a value
// snapshot with no reference back into the game.
type BidView struct {
	MyID               string
	MySeat             int
	Hand               []deck.Card
	HandPoints         int
	CurrentBid         *Bid
	Seats              []SeatInfo
	TeamScores         Scores
	TeamBids           Scores
	ScoreTarget        int
	EnforceOpposingBid bool
}

// PartnerSeat returns the seat across the table
func (v BidView) PartnerSeat() int {
	return (v.MySeat + 2) % 4
}

// PartnerHoldsBid reports whether the standing bid belongs to partner
func (v BidView) PartnerHoldsBid() bool {
	if v.CurrentBid == nil {
		return false
	}
	for _, s := range v.Seats {
		if s.ID == v.CurrentBid.PlayerID {
			return s.Position == v.PartnerSeat()
		}
	}
	return false
}

// MyTeam returns the viewer's partnership
func (v BidView) MyTeam() Team {
	return TeamForPosition(v.MySeat)
}

// PlayView is everything a card-play policy may consult
type PlayView struct {
	MyID        string
	MySeat      int
	Hand        []deck.Card
	Playable    []deck.Card
	LeadSuit    *deck.Suit
	TrumpSuit   deck.Suit
	Trick       []PlayedCard
	Seats       []SeatInfo
	TeamScores  Scores
	RoundScores Scores
	CurrentBid  *Bid
	Contractor  Team
	ScoreTarget int
	Variant     deck.Variant
}

// PartnerID returns the id of the seat across the table
func (v PlayView) PartnerID() string {
	for _, s := range v.Seats {
		if s.Position == (v.MySeat+2)%4 {
			return s.ID
		}
	}
	return ""
}

// SeatOf maps a player id to its position, -1 when unknown
func (v PlayView) SeatOf(playerID string) int {
	for _, s := range v.Seats {
		if s.ID == playerID {
			return s.Position
		}
	}
	return -1
}

// KittyView is what the kitty-phase bot policy sees
type KittyView struct {
	Hand               []deck.Card
	BidSuit            deck.Suit
	AllowPointDiscards bool
}

// BidViewFor builds a bidding view for a seat
func (g *Game) BidViewFor(playerID string) BidView {
	p := g.PlayerByID(playerID)
	return BidView{
		MyID:               p.ID,
		MySeat:             p.Position,
		Hand:               append([]deck.Card(nil), p.Hand...),
		HandPoints:         p.HandPoints(),
		CurrentBid:         cloneBid(g.CurrentBid),
		Seats:              g.seatInfos(),
		TeamScores:         g.TeamScores.Clone(),
		TeamBids:           g.TeamBids.Clone(),
		ScoreTarget:        g.ScoreTarget,
		EnforceOpposingBid: g.EnforceOpposingBid,
	}
}

// PlayViewFor builds a card-play view for a seat, including the legal
// playable subset under the follow-suit rule.
func (g *Game) PlayViewFor(playerID string) PlayView {
	p := g.PlayerByID(playerID)
	var lead *deck.Suit
	if s, ok := g.CurrentTrick.LeadSuit(); ok {
		lead = &s
	}
	return PlayView{
		MyID:        p.ID,
		MySeat:      p.Position,
		Hand:        append([]deck.Card(nil), p.Hand...),
		Playable:    g.PlayableCards(p),
		LeadSuit:    lead,
		TrumpSuit:   *g.TrumpSuit,
		Trick:       append([]PlayedCard(nil), g.CurrentTrick.Cards...),
		Seats:       g.seatInfos(),
		TeamScores:  g.TeamScores.Clone(),
		RoundScores: g.RoundScores.Clone(),
		CurrentBid:  cloneBid(g.CurrentBid),
		Contractor:  *g.ContractorTeam,
		ScoreTarget: g.ScoreTarget,
		Variant:     g.Variant,
	}
}

// KittyViewFor builds the kitty view for the bidder
func (g *Game) KittyViewFor(playerID string) KittyView {
	p := g.PlayerByID(playerID)
	return KittyView{
		Hand:               append([]deck.Card(nil), p.Hand...),
		BidSuit:            g.CurrentBid.Suit,
		AllowPointDiscards: g.AllowPointDiscards,
	}
}

// PlayableCards applies the follow-suit rule to a hand
func (g *Game) PlayableCards(p *Player) []deck.Card {
	lead, ok := g.CurrentTrick.LeadSuit()
	if !ok || !p.HasSuit(lead) {
		return append([]deck.Card(nil), p.Hand...)
	}
	playable := make([]deck.Card, 0, len(p.Hand))
	for _, c := range p.Hand {
		if c.Suit == lead {
			playable = append(playable, c)
		}
	}
	return playable
}

func (g *Game) seatInfos() []SeatInfo {
	infos := make([]SeatInfo, 0, len(g.Players))
	for _, p := range g.Players {
		_, passed := g.Passed[p.Position]
		hasBid := g.CurrentBid != nil && g.CurrentBid.PlayerID == p.ID
		infos = append(infos, SeatInfo{
			ID:       p.ID,
			Name:     p.Name,
			Position: p.Position,
			IsBot:    p.IsBot,
			HasBid:   hasBid,
			Passed:   passed,
		})
	}
	return infos
}
