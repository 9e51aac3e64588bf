package lobby

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/acadien/deuxcents/internal/deck"
	"github.com/acadien/deuxcents/internal/game"
)

// MaxSeats is fixed: the game is always four-handed
const MaxSeats = 4

// TableConfig is the per-table rule set applied to every game it hosts
type TableConfig struct {
	TimeoutMS          int          `json:"timeoutDuration"`
	Variant            deck.Variant `json:"deckVariant"`
	ScoreTarget        int          `json:"scoreTarget"`
	Kitty              bool         `json:"hasKitty"`
	AllowPointDiscards bool         `json:"allowPointCardDiscards"`
	EnforceOpposingBid bool         `json:"enforceOpposingTeamBidRule"`
}

// DefaultTableConfig mirrors a plain house game: 36 cards, play to 200,
// thirty seconds per turn.
func DefaultTableConfig() TableConfig {
	return TableConfig{
		TimeoutMS:   30000,
		Variant:     deck.Variant36,
		ScoreTarget: 200,
	}
}

var validTargets = map[int]struct{}{200: {}, 300: {}, 500: {}, 1000: {}}

// Validate rejects impossible rule combinations
func (c TableConfig) Validate() error {
	if c.Variant != deck.Variant36 && c.Variant != deck.Variant40 {
		return game.Errorf(game.CodeInvalidConfig, "unknown deck variant %d", int(c.Variant))
	}
	if _, ok := validTargets[c.ScoreTarget]; !ok {
		return game.Errorf(game.CodeInvalidConfig, "score target must be one of 200, 300, 500, 1000")
	}
	if c.Kitty && c.Variant != deck.Variant40 {
		return game.Errorf(game.CodeInvalidConfig, "kitty requires the 40-card deck")
	}
	if c.TimeoutMS <= 0 {
		return game.Errorf(game.CodeInvalidConfig, "timeout must be positive")
	}
	return nil
}

// Table is one room in a lobby: up to four seats, optional password,
// spectators, and at most one live game.
type Table struct {
	mu sync.Mutex

	ID      string
	Name    string
	Creator string
	Private bool

	passwordHash []byte

	seats      [MaxSeats]*game.Player
	spectators []string
	gameID     string
	config     TableConfig
}

// NewTable builds a table with the creator's name on record but no
// seats taken; callers seat the creator explicitly.
func NewTable(id, name, creator string, cfg TableConfig, private bool, password string) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Table{ID: id, Name: name, Creator: creator, Private: private, config: cfg}
	if private {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		t.passwordHash = hash
	}
	return t, nil
}

// CheckPassword verifies entry to a private table
func (t *Table) CheckPassword(password string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.Private {
		return nil
	}
	if bcrypt.CompareHashAndPassword(t.passwordHash, []byte(password)) != nil {
		return game.Errorf(game.CodeWrongPassword, "wrong password for table %q", t.Name)
	}
	return nil
}

// Join seats a player at the lowest empty position
func (t *Table) Join(p *game.Player) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gameID != "" {
		return 0, game.Errorf(game.CodeGameStarted, "table %q already has a running game", t.Name)
	}
	for pos := 0; pos < MaxSeats; pos++ {
		if t.seats[pos] == nil {
			p.Position = pos
			t.seats[pos] = p
			return pos, nil
		}
	}
	return 0, game.Errorf(game.CodeTableFull, "table %q is full", t.Name)
}

// Leave vacates the player's seat. Returns the player, or nil when the
// name holds no seat.
func (t *Table) Leave(name string) *game.Player {
	t.mu.Lock()
	defer t.mu.Unlock()
	for pos, p := range t.seats {
		if p != nil && p.Name == name {
			t.seats[pos] = nil
			return p
		}
	}
	return nil
}

// AddBot seats a bot at the given position. Creator-only, pre-game only.
func (t *Table) AddBot(requester, botName string, pos int, skill game.BotSkill) (*game.Player, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.creatorGate(requester); err != nil {
		return nil, err
	}
	if pos < 0 || pos >= MaxSeats {
		return nil, game.Errorf(game.CodeInvalidConfig, "position %d out of range", pos)
	}
	if t.seats[pos] != nil {
		return nil, game.Errorf(game.CodePositionTaken, "position %d is taken", pos)
	}
	bot := &game.Player{
		ID:       uuid.NewString(),
		Name:     botName,
		IsBot:    true,
		Skill:    skill,
		Position: pos,
		Ready:    true,
	}
	t.seats[pos] = bot
	return bot, nil
}

// RemoveBot vacates a bot seat. Creator-only, pre-game only.
func (t *Table) RemoveBot(requester, botID string) (*game.Player, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.creatorGate(requester); err != nil {
		return nil, err
	}
	for pos, p := range t.seats {
		if p != nil && p.IsBot && p.ID == botID {
			t.seats[pos] = nil
			return p, nil
		}
	}
	return nil, game.Errorf(game.CodeUnknownPlayer, "no bot %s at table %q", botID, t.Name)
}

// Move relocates the requesting player to an empty seat. Creator-only.
func (t *Table) Move(requester string, newPos int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.creatorGate(requester); err != nil {
		return err
	}
	if newPos < 0 || newPos >= MaxSeats {
		return game.Errorf(game.CodeInvalidConfig, "position %d out of range", newPos)
	}
	if t.seats[newPos] != nil {
		return game.Errorf(game.CodePositionTaken, "position %d is taken", newPos)
	}
	for pos, p := range t.seats {
		if p != nil && p.Name == requester {
			t.seats[pos] = nil
			p.Position = newPos
			t.seats[newPos] = p
			return nil
		}
	}
	return game.Errorf(game.CodeNotInGame, "%s holds no seat at table %q", requester, t.Name)
}

// UpdateConfig replaces the rule set. Creator-only, pre-game only.
func (t *Table) UpdateConfig(requester string, cfg TableConfig) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.creatorGate(requester); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	t.config = cfg
	return nil
}

// creatorGate enforces creator-only pre-game mutations. Caller holds
// the lock.
func (t *Table) creatorGate(requester string) error {
	if requester != t.Creator {
		return game.Errorf(game.CodeNotCreator, "only %s may manage table %q", t.Creator, t.Name)
	}
	if t.gameID != "" {
		return game.Errorf(game.CodeGameStarted, "table %q already has a running game", t.Name)
	}
	return nil
}

// Config returns the current rule set
func (t *Table) Config() TableConfig {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.config
}

// Players lists occupied seats in position order
func (t *Table) Players() []*game.Player {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playersLocked()
}

func (t *Table) playersLocked() []*game.Player {
	out := make([]*game.Player, 0, MaxSeats)
	for _, p := range t.seats {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// SeatCount returns the number of occupied seats
func (t *Table) SeatCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.playersLocked())
}

// Full reports whether all four seats are taken
func (t *Table) Full() bool {
	return t.SeatCount() == MaxSeats
}

// PlayerByName finds a seated player
func (t *Table) PlayerByName(name string) *game.Player {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.seats {
		if p != nil && p.Name == name {
			return p
		}
	}
	return nil
}

// GameID returns the live game id, empty when idle
func (t *Table) GameID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gameID
}

// SetGameID binds or clears the live game
func (t *Table) SetGameID(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gameID = id
}

// AddSpectator registers a watcher. Spectating requires a public table
// with a live game.
func (t *Table) AddSpectator(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Private {
		return game.Errorf(game.CodeCannotSpectate, "table %q is private", t.Name)
	}
	if t.gameID == "" {
		return game.Errorf(game.CodeCannotSpectate, "table %q has no running game", t.Name)
	}
	for _, s := range t.spectators {
		if s == name {
			return nil
		}
	}
	t.spectators = append(t.spectators, name)
	return nil
}

// RemoveSpectator drops a watcher
func (t *Table) RemoveSpectator(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.spectators {
		if s == name {
			t.spectators = append(t.spectators[:i], t.spectators[i+1:]...)
			return
		}
	}
}

// Spectators lists watchers in join order
func (t *Table) Spectators() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.spectators...)
}

// ResetToBots clears the live game and replaces every human seat with a
// fresh bot, returning the removed humans. Used after timeouts and
// abandoned games.
func (t *Table) ResetToBots(names *Names) []*game.Player {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gameID = ""
	t.spectators = nil
	var removed []*game.Player
	for pos, p := range t.seats {
		if p == nil || p.IsBot {
			continue
		}
		removed = append(removed, p)
		t.seats[pos] = &game.Player{
			ID:       uuid.NewString(),
			Name:     names.Reserve(NextBotName()),
			IsBot:    true,
			Skill:    game.SkillMedium,
			Position: pos,
			Ready:    true,
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].Position < removed[j].Position })
	return removed
}
