package server

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Room names. Players of a running game sit in the game room,
// spectators in the table's spectator room, and everyone at a table
// (seated or watching, game or not) in the table room.
func LobbyRoom(lobbyID string) string { return "lobby-" + lobbyID }

func GameRoom(gameID string) string { return "game-" + gameID }

func SpectatorRoom(tableID string) string { return "spectator-" + tableID }

func TableRoom(tableID string) string { return "table-" + tableID }

// Rooms routes outbound messages to named audiences. A connection may
// sit in any number of rooms.
type Rooms struct {
	mu      sync.RWMutex
	members map[string]map[*Connection]struct{}
	byConn  map[*Connection]map[string]struct{}
	log     *log.Logger
}

func NewRooms(logger *log.Logger) *Rooms {
	return &Rooms{
		members: make(map[string]map[*Connection]struct{}),
		byConn:  make(map[*Connection]map[string]struct{}),
		log:     logger.WithPrefix("rooms"),
	}
}

// Join adds a connection to a room
func (r *Rooms) Join(room string, c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.members[room] == nil {
		r.members[room] = make(map[*Connection]struct{})
	}
	r.members[room][c] = struct{}{}
	if r.byConn[c] == nil {
		r.byConn[c] = make(map[string]struct{})
	}
	r.byConn[c][room] = struct{}{}
}

// Leave removes a connection from a room
func (r *Rooms) Leave(room string, c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(room, c)
}

func (r *Rooms) leaveLocked(room string, c *Connection) {
	delete(r.members[room], c)
	if len(r.members[room]) == 0 {
		delete(r.members, room)
	}
	delete(r.byConn[c], room)
	if len(r.byConn[c]) == 0 {
		delete(r.byConn, c)
	}
}

// LeaveAll removes a connection from every room it joined
func (r *Rooms) LeaveAll(c *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for room := range r.byConn[c] {
		r.leaveLocked(room, c)
	}
}

// Broadcast delivers a message to every member of the given rooms,
// at most once per connection even when rooms overlap.
func (r *Rooms) Broadcast(msg *Message, rooms ...string) {
	r.mu.RLock()
	seen := make(map[*Connection]struct{})
	for _, room := range rooms {
		for c := range r.members[room] {
			seen[c] = struct{}{}
		}
	}
	r.mu.RUnlock()

	for c := range seen {
		if err := c.SendMessage(msg); err != nil {
			r.log.Debug("broadcast drop", "type", msg.Type, "error", err)
		}
	}
}

// Count returns a room's membership size
func (r *Rooms) Count(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members[room])
}
