package deck

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// Suits lists all suits in display order.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// String returns the wire representation of a suit
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "hearts"
	case Diamonds:
		return "diamonds"
	case Clubs:
		return "clubs"
	case Spades:
		return "spades"
	default:
		return "?"
	}
}

// Symbol returns the one-rune display form of a suit
func (s Suit) Symbol() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// ParseSuit parses the wire representation of a suit
func ParseSuit(s string) (Suit, error) {
	switch s {
	case "hearts":
		return Hearts, nil
	case "diamonds":
		return Diamonds, nil
	case "clubs":
		return Clubs, nil
	case "spades":
		return Spades, nil
	default:
		return 0, fmt.Errorf("unknown suit %q", s)
	}
}

// MarshalJSON encodes the suit as its wire string
func (s Suit) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the suit from its wire string
func (s *Suit) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSuit(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Rank represents a card rank. The numeric value doubles as the trick
// ordering value: A=14 > K=13 > Q=12 > J=11 > 10 > ... > 5.
type Rank int

const (
	Five Rank = iota + 5
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the wire representation of a rank
func (r Rank) String() string {
	switch r {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		if r >= Five && r <= Ten {
			return fmt.Sprintf("%d", int(r))
		}
		return "?"
	}
}

// ParseRank parses the wire representation of a rank
func ParseRank(s string) (Rank, error) {
	switch s {
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	case "A":
		return Ace, nil
	case "5", "6", "7", "8", "9", "10":
		var n int
		_, _ = fmt.Sscanf(s, "%d", &n)
		return Rank(n), nil
	default:
		return 0, fmt.Errorf("unknown rank %q", s)
	}
}

// MarshalJSON encodes the rank as its wire string
func (r Rank) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes the rank from its wire string
func (r *Rank) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseRank(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Order returns the trick comparison value of the rank
func (r Rank) Order() int {
	return int(r)
}

// Points returns the counting value of the rank: aces and tens are worth
// ten, fives are worth five, everything else zero.
func (r Rank) Points() int {
	switch r {
	case Ace, Ten:
		return 10
	case Five:
		return 5
	default:
		return 0
	}
}

// Card represents a playing card. ID is "suit-rank" and is unique within
// a deck.
type Card struct {
	Suit Suit   `json:"suit"`
	Rank Rank   `json:"rank"`
	ID   string `json:"id"`
}

// NewCard creates a new card with its canonical ID
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank, ID: fmt.Sprintf("%s-%s", suit, rank)}
}

// ParseCard rebuilds a card from its canonical ID
func ParseCard(id string) (Card, error) {
	i := strings.IndexByte(id, '-')
	if i < 0 {
		return Card{}, fmt.Errorf("malformed card id %q", id)
	}
	suit, err := ParseSuit(id[:i])
	if err != nil {
		return Card{}, fmt.Errorf("malformed card id %q: %w", id, err)
	}
	rank, err := ParseRank(id[i+1:])
	if err != nil {
		return Card{}, fmt.Errorf("malformed card id %q: %w", id, err)
	}
	return NewCard(suit, rank), nil
}

// String returns the display representation of a card (e.g. "A♥")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit.Symbol())
}

// Points returns the counting value of the card
func (c Card) Points() int {
	return c.Rank.Points()
}

// Order returns the trick comparison value of the card
func (c Card) Order() int {
	return c.Rank.Order()
}
