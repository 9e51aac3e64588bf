package lobby

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/acadien/deuxcents/internal/game"
)

// DefaultLobby is the lobby every client lands in unless they name one
const DefaultLobby = "main"

// botNames cycles through the house bots' display names. The name
// registry suffixes repeats, so exhaustion is harmless.
var botNames = []string{
	"Albert", "Béatrice", "Clovis", "Delphine",
	"Émile", "Fernande", "Gustave", "Hortense",
	"Isidore", "Joséphine", "Ludger", "Marguerite",
}

var botNameSeq atomic.Uint64

// NextBotName hands out the next house-bot display name
func NextBotName() string {
	n := botNameSeq.Add(1) - 1
	return botNames[n%uint64(len(botNames))]
}

// TableInfo is the lobby listing view of one table
type TableInfo struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Seats      int         `json:"seats"`
	Occupied   int         `json:"occupied"`
	Private    bool        `json:"isPrivate"`
	HasGame    bool        `json:"hasGame"`
	Spectators int         `json:"spectators"`
	Config     TableConfig `json:"config"`
}

// Registry maps lobby ids to their tables. It is written by the service
// and game lanes and read by lobby views.
type Registry struct {
	mu      sync.RWMutex
	lobbies map[string]map[string]*Table
	log     *log.Logger
}

func NewRegistry(logger *log.Logger) *Registry {
	return &Registry{
		lobbies: make(map[string]map[string]*Table),
		log:     logger.WithPrefix("lobby"),
	}
}

// CreateTable registers a table under a lobby. Table ids are unique
// within their lobby.
func (r *Registry) CreateTable(lobbyID string, t *Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tables, ok := r.lobbies[lobbyID]
	if !ok {
		tables = make(map[string]*Table)
		r.lobbies[lobbyID] = tables
	}
	if _, exists := tables[t.ID]; exists {
		return game.Errorf(game.CodeTableExists, "table %s already exists", t.ID)
	}
	tables[t.ID] = t
	r.log.Info("table created", "lobby", lobbyID, "table", t.ID, "name", t.Name, "private", t.Private)
	return nil
}

// Table finds a table by id within a lobby
func (r *Registry) Table(lobbyID, tableID string) (*Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.lobbies[lobbyID][tableID]
	return t, ok
}

// FindTable searches every lobby for a table id
func (r *Registry) FindTable(tableID string) (*Table, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for lobbyID, tables := range r.lobbies {
		if t, ok := tables[tableID]; ok {
			return t, lobbyID, true
		}
	}
	return nil, "", false
}

// Remove deletes a table
func (r *Registry) Remove(lobbyID, tableID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lobbies[lobbyID], tableID)
	r.log.Info("table removed", "lobby", lobbyID, "table", tableID)
}

// List enumerates a lobby's tables sorted by name then id
func (r *Registry) List(lobbyID string) []TableInfo {
	r.mu.RLock()
	tables := make([]*Table, 0, len(r.lobbies[lobbyID]))
	for _, t := range r.lobbies[lobbyID] {
		tables = append(tables, t)
	}
	r.mu.RUnlock()

	out := make([]TableInfo, 0, len(tables))
	for _, t := range tables {
		out = append(out, TableInfo{
			ID:         t.ID,
			Name:       t.Name,
			Seats:      MaxSeats,
			Occupied:   t.SeatCount(),
			Private:    t.Private,
			HasGame:    t.GameID() != "",
			Spectators: len(t.Spectators()),
			Config:     t.Config(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
