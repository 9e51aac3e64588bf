// Package transcript records a replay log per game: every externally
// visible transition is appended with its payload and a full state
// snapshot, and finished transcripts survive game cleanup in a
// size-bounded process-wide store.
package transcript

import (
	"sync"
	"time"

	"github.com/acadien/deuxcents/internal/deck"
	"github.com/acadien/deuxcents/internal/game"
)

// Kind tags one transcript entry
type Kind string

const (
	KindGameStart       Kind = "game_start"
	KindRoundStart      Kind = "round_start"
	KindBidMade         Kind = "bid_made"
	KindBidPass         Kind = "bid_pass"
	KindBiddingComplete Kind = "bidding_complete"
	KindKittyPick       Kind = "kitty_pick"
	KindKittyDiscard    Kind = "kitty_discard"
	KindCardPlayed      Kind = "card_played"
	KindTrickComplete   Kind = "trick_complete"
	KindRoundComplete   Kind = "round_complete"
	KindGameComplete    Kind = "game_complete"
	KindPlayerExit      Kind = "player_exit"
)

// SeatMeta freezes who sat where at game start
type SeatMeta struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	IsBot    bool   `json:"isBot"`
}

// Metadata is the game-level header of a transcript
type Metadata struct {
	Variant     deck.Variant `json:"deckVariant"`
	ScoreTarget int          `json:"scoreTarget"`
	Kitty       bool         `json:"hasKitty"`
	Seats       []SeatMeta   `json:"seats"`
}

// Entry is one recorded transition. The snapshot includes every hand;
// a transcript is a full replay log, not a spectator feed.
type Entry struct {
	At       time.Time     `json:"at"`
	Kind     Kind          `json:"kind"`
	Payload  any           `json:"payload,omitempty"`
	Snapshot game.Snapshot `json:"snapshot"`
}

// Transcript is the ordered log of one game
type Transcript struct {
	mu sync.Mutex

	GameID    string    `json:"gameId"`
	TableID   string    `json:"tableId"`
	TableName string    `json:"tableName"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt,omitzero"`
	Meta      Metadata  `json:"metadata"`
	Entries   []Entry   `json:"entries"`
}

func New(gameID, tableID, tableName string, meta Metadata, start time.Time) *Transcript {
	return &Transcript{
		GameID:    gameID,
		TableID:   tableID,
		TableName: tableName,
		StartedAt: start,
		Meta:      meta,
	}
}

// Append records one transition
func (t *Transcript) Append(at time.Time, kind Kind, payload any, snap game.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Entries = append(t.Entries, Entry{At: at, Kind: kind, Payload: payload, Snapshot: snap})
}

// Close stamps the end of the game. Further appends are still accepted
// (player_exit can arrive after game_complete).
func (t *Transcript) Close(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.EndedAt = at
}

// Len returns the entry count
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.Entries)
}

// Clone returns a copy safe to marshal while the lane keeps appending
func (t *Transcript) Clone() *Transcript {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := &Transcript{
		GameID:    t.GameID,
		TableID:   t.TableID,
		TableName: t.TableName,
		StartedAt: t.StartedAt,
		EndedAt:   t.EndedAt,
		Meta:      t.Meta,
		Entries:   append([]Entry(nil), t.Entries...),
	}
	out.Meta.Seats = append([]SeatMeta(nil), t.Meta.Seats...)
	return out
}
