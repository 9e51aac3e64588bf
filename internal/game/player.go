package game

import (
	"fmt"

	"github.com/acadien/deuxcents/internal/deck"
)

// Team identifies one of the two partnerships. Seats of the same parity
// are partners: team 1 holds positions 0 and 2, team 2 holds 1 and 3.
type Team int

const (
	Team1 Team = 1
	Team2 Team = 2
)

// TeamForPosition returns the team owning a seat position
func TeamForPosition(position int) Team {
	if position%2 == 0 {
		return Team1
	}
	return Team2
}

// Opponent returns the opposing team
func (t Team) Opponent() Team {
	if t == Team1 {
		return Team2
	}
	return Team1
}

// String returns the wire representation of a team
func (t Team) String() string {
	switch t {
	case Team1:
		return "team1"
	case Team2:
		return "team2"
	default:
		return "?"
	}
}

// MarshalText lets teams key JSON maps as "team1"/"team2"
func (t Team) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a team from its wire form
func (t *Team) UnmarshalText(text []byte) error {
	switch string(text) {
	case "team1":
		*t = Team1
	case "team2":
		*t = Team2
	default:
		return fmt.Errorf("unknown team %q", text)
	}
	return nil
}

// Scores holds per-team point totals
type Scores map[Team]int

// Clone returns an independent copy
func (s Scores) Clone() Scores {
	out := make(Scores, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// BotSkill selects a bot decision policy tier
type BotSkill string

const (
	SkillEasy     BotSkill = "easy"
	SkillMedium   BotSkill = "medium"
	SkillHard     BotSkill = "hard"
	SkillAdvanced BotSkill = "advanced"
)

// ParseBotSkill validates a skill name, defaulting empty to medium
func ParseBotSkill(s string) (BotSkill, error) {
	switch BotSkill(s) {
	case SkillEasy, SkillMedium, SkillHard, SkillAdvanced:
		return BotSkill(s), nil
	case "":
		return SkillMedium, nil
	default:
		return "", fmt.Errorf("unknown bot skill %q", s)
	}
}

// Player is one seat occupant, human or bot
type Player struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	IsBot     bool        `json:"isBot"`
	Skill     BotSkill    `json:"skill,omitempty"`
	Position  int         `json:"position"`
	Hand      []deck.Card `json:"hand"`
	Ready     bool        `json:"ready"`
	Spectator bool        `json:"spectator,omitempty"`
}

// Team returns the player's partnership
func (p *Player) Team() Team {
	return TeamForPosition(p.Position)
}

// HasCard reports whether the player holds the card with the given id
func (p *Player) HasCard(cardID string) bool {
	for _, c := range p.Hand {
		if c.ID == cardID {
			return true
		}
	}
	return false
}

// HasSuit reports whether the player holds any card of the suit
func (p *Player) HasSuit(s deck.Suit) bool {
	for _, c := range p.Hand {
		if c.Suit == s {
			return true
		}
	}
	return false
}

// RemoveCard takes the card with the given id out of the hand
func (p *Player) RemoveCard(cardID string) (deck.Card, bool) {
	for i, c := range p.Hand {
		if c.ID == cardID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return deck.Card{}, false
}

// HandPoints returns the sum of counting values in the hand
func (p *Player) HandPoints() int {
	total := 0
	for _, c := range p.Hand {
		total += c.Points()
	}
	return total
}
