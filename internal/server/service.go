package server

import (
	"math/rand"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/acadien/deuxcents/internal/bot"
	"github.com/acadien/deuxcents/internal/deck"
	"github.com/acadien/deuxcents/internal/game"
	"github.com/acadien/deuxcents/internal/lobby"
	"github.com/acadien/deuxcents/internal/transcript"
)

// Service coordinates the lobby surface and the per-game lanes. All
// game mutations are posted to the owning lane; the service itself only
// touches lobby state and the room index.
type Service struct {
	log      *log.Logger
	registry *lobby.Registry
	names    *lobby.Names
	store    *transcript.Store
	rooms    *Rooms
	clock    quartz.Clock
	pacing   bool
	newRNG   func() *rand.Rand

	mu    sync.Mutex
	lanes map[string]*lane       // game id → lane
	conns map[string]*Connection // player name → connection
}

// ServiceOptions tunes a Service beyond its defaults
type ServiceOptions struct {
	Clock  quartz.Clock
	Pacing bool
	Seed   func() int64
}

func NewService(logger *log.Logger, opts ServiceOptions) *Service {
	clock := opts.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	seed := opts.Seed
	if seed == nil {
		seed = func() int64 { return clock.Now().UnixNano() }
	}
	return &Service{
		log:      logger.WithPrefix("service"),
		registry: lobby.NewRegistry(logger),
		names:    lobby.NewNames(logger),
		store:    transcript.NewStore(transcript.DefaultLimit),
		rooms:    NewRooms(logger),
		clock:    clock,
		pacing:   opts.Pacing,
		newRNG:   func() *rand.Rand { return rand.New(rand.NewSource(seed())) },
		lanes:    make(map[string]*lane),
		conns:    make(map[string]*Connection),
	}
}

// Registry exposes the table registry for startup seeding
func (s *Service) Registry() *lobby.Registry { return s.registry }

// Names exposes the name registry for startup seeding
func (s *Service) Names() *lobby.Names { return s.names }

// Store exposes the transcript store
func (s *Service) Store() *transcript.Store { return s.store }

func (s *Service) requireIdentity(c *Connection) error {
	if c.PlayerName() == "" {
		return game.Errorf(game.CodeUnknownPlayer, "join a lobby first")
	}
	return nil
}

// JoinLobby registers the client under a (possibly suffixed) name
func (s *Service) JoinLobby(c *Connection, d JoinLobbyData) error {
	if d.PlayerName == "" {
		return game.Errorf(game.CodeUnknownPlayer, "playerName is required")
	}
	lobbyID := d.LobbyID
	if lobbyID == "" {
		lobbyID = lobby.DefaultLobby
	}
	name := s.names.Reserve(d.PlayerName)
	c.SetIdentity(uuid.NewString(), name, lobbyID)

	s.mu.Lock()
	s.conns[name] = c
	s.mu.Unlock()

	s.rooms.Join(LobbyRoom(lobbyID), c)
	s.log.Info("player joined lobby", "player", name, "lobby", lobbyID)

	msg, err := NewMessage(MessageTypeLobbyJoined, LobbyJoinedData{
		PlayerName: name,
		LobbyID:    lobbyID,
		Tables:     s.registry.List(lobbyID),
	})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// ListTables replies with the lobby's current table list
func (s *Service) ListTables(c *Connection, d ListTablesData) error {
	if err := s.requireIdentity(c); err != nil {
		return err
	}
	lobbyID := d.LobbyID
	if lobbyID == "" {
		lobbyID = c.LobbyID()
	}
	msg, err := NewMessage(MessageTypeLobbyUpdated, LobbyUpdatedData{
		LobbyID: lobbyID,
		Tables:  s.registry.List(lobbyID),
	})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// CreateTable opens a table with the creator at seat 0
func (s *Service) CreateTable(c *Connection, d CreateTableData) error {
	if err := s.requireIdentity(c); err != nil {
		return err
	}
	if c.TableID() != "" {
		return game.Errorf(game.CodeAlreadyInGame, "already seated at table %s", c.TableID())
	}

	cfg, err := s.tableConfig(lobby.DefaultTableConfig(), d.TimeoutDuration, d.DeckVariant,
		d.ScoreTarget, d.HasKitty, d.AllowPointCardDiscards, d.EnforceOpposingTeamBidRule)
	if err != nil {
		return err
	}
	tableID := d.TableID
	if tableID == "" {
		tableID = uuid.NewString()
	}
	name := d.TableName
	if name == "" {
		name = c.PlayerName() + "'s table"
	}

	t, err := lobby.NewTable(tableID, name, c.PlayerName(), cfg, d.IsPrivate, d.Password)
	if err != nil {
		return err
	}
	if err := s.registry.CreateTable(c.LobbyID(), t); err != nil {
		return err
	}
	pos, err := t.Join(&game.Player{ID: c.PlayerID(), Name: c.PlayerName()})
	if err != nil {
		return err
	}
	c.SetTable(tableID)
	s.rooms.Join(TableRoom(tableID), c)

	s.pushLobby(c.LobbyID())
	msg, err := NewMessage(MessageTypeTableJoined, TableJoinedData{Table: tableState(t), Position: pos})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// JoinTable seats the player; a fourth seat starts the game
func (s *Service) JoinTable(c *Connection, d JoinTableData) error {
	if err := s.requireIdentity(c); err != nil {
		return err
	}
	if c.GameID() != "" || c.TableID() != "" {
		return game.Errorf(game.CodeAlreadyInGame, "already in a table or game")
	}
	t, ok := s.registry.Table(c.LobbyID(), d.TableID)
	if !ok {
		return game.Errorf(game.CodeTableNotFound, "no table %s", d.TableID)
	}
	if err := t.CheckPassword(d.Password); err != nil {
		return err
	}
	pos, err := t.Join(&game.Player{ID: c.PlayerID(), Name: c.PlayerName()})
	if err != nil {
		return err
	}
	c.SetTable(t.ID)
	s.rooms.Join(TableRoom(t.ID), c)

	joined, err := NewMessage(MessageTypeTableJoined, TableJoinedData{Table: tableState(t), Position: pos})
	if err != nil {
		return err
	}
	if err := c.SendMessage(joined); err != nil {
		return err
	}
	s.broadcastTable(t, MessageTypePlayerJoined, PlayerJoinedData{
		TableID: t.ID, PlayerName: c.PlayerName(), Position: pos, Table: tableState(t),
	})
	s.pushLobby(c.LobbyID())

	if t.Full() {
		return s.startGame(c.LobbyID(), t)
	}
	return nil
}

// LeaveTable vacates a pre-game seat. The creator leaving deletes the
// table.
func (s *Service) LeaveTable(c *Connection, d LeaveTableData) error {
	if err := s.requireIdentity(c); err != nil {
		return err
	}
	t, ok := s.registry.Table(c.LobbyID(), d.TableID)
	if !ok {
		return game.Errorf(game.CodeTableNotFound, "no table %s", d.TableID)
	}
	if c.Spectating() == t.ID {
		s.dropSpectator(c, t.ID)
		left, err := NewMessage(MessageTypeTableLeft, TableLeftData{TableID: t.ID})
		if err != nil {
			return err
		}
		return c.SendMessage(left)
	}
	if t.GameID() != "" {
		return game.Errorf(game.CodeGameStarted, "leave the game, not the table")
	}
	if t.Leave(c.PlayerName()) == nil {
		return game.Errorf(game.CodeNotInGame, "no seat at table %s", d.TableID)
	}
	s.rooms.Leave(TableRoom(t.ID), c)
	c.SetTable("")

	left, err := NewMessage(MessageTypeTableLeft, TableLeftData{TableID: t.ID})
	if err != nil {
		return err
	}
	_ = c.SendMessage(left)

	if c.PlayerName() == t.Creator {
		s.registry.Remove(c.LobbyID(), t.ID)
		s.broadcastTable(t, MessageTypeTableDeleted, TableDeletedData{TableID: t.ID})
		// Detach everyone else still seated or watching.
		for _, p := range t.Players() {
			if p.IsBot {
				continue
			}
			s.mu.Lock()
			other := s.conns[p.Name]
			s.mu.Unlock()
			if other != nil {
				other.SetTable("")
				s.rooms.Leave(TableRoom(t.ID), other)
			}
		}
	} else {
		s.broadcastTable(t, MessageTypePlayerLeft, PlayerLeftData{
			TableID: t.ID, PlayerName: c.PlayerName(), Table: tableState(t),
		})
	}
	s.pushLobby(c.LobbyID())
	return nil
}

// JoinAsSpectator attaches a watcher to a public table's running game
func (s *Service) JoinAsSpectator(c *Connection, d SpectateData) error {
	if err := s.requireIdentity(c); err != nil {
		return err
	}
	t, _, ok := s.registry.FindTable(d.TableID)
	if !ok {
		return game.Errorf(game.CodeTableNotFound, "no table %s", d.TableID)
	}
	if err := t.AddSpectator(c.PlayerName()); err != nil {
		return err
	}
	c.SetSpectating(t.ID)
	s.rooms.Join(SpectatorRoom(t.ID), c)
	s.rooms.Join(TableRoom(t.ID), c)

	s.broadcastTable(t, MessageTypeSpectatorJoined, SpectatorData{
		TableID: t.ID, PlayerName: c.PlayerName(),
	})

	// Current state, serialized through the lane.
	if l := s.lane(t.GameID()); l != nil {
		l.post(func() {
			msg, err := NewMessage(MessageTypeGameUpdated, GameUpdatedData{Game: l.game.Snapshot()})
			if err == nil {
				_ = c.SendMessage(msg)
			}
		})
	}
	return nil
}

// AddBot seats a bot (creator only, before the game starts)
func (s *Service) AddBot(c *Connection, d AddBotData) error {
	if err := s.requireIdentity(c); err != nil {
		return err
	}
	t, ok := s.registry.Table(c.LobbyID(), d.TableID)
	if !ok {
		return game.Errorf(game.CodeTableNotFound, "no table %s", d.TableID)
	}
	skill, err := game.ParseBotSkill(d.Skill)
	if err != nil {
		return game.Errorf(game.CodeInvalidConfig, "unknown bot skill %q", d.Skill)
	}
	botName := s.names.Reserve(lobby.NextBotName())
	if _, err := t.AddBot(c.PlayerName(), botName, d.Position, skill); err != nil {
		s.names.Release(botName)
		return err
	}
	s.broadcastTable(t, MessageTypeTableUpdated, TableUpdatedData{Table: tableState(t)})
	s.pushLobby(c.LobbyID())
	return nil
}

// RemoveBot vacates a bot seat (creator only, before the game starts)
func (s *Service) RemoveBot(c *Connection, d RemoveBotData) error {
	if err := s.requireIdentity(c); err != nil {
		return err
	}
	t, ok := s.registry.Table(c.LobbyID(), d.TableID)
	if !ok {
		return game.Errorf(game.CodeTableNotFound, "no table %s", d.TableID)
	}
	removed, err := t.RemoveBot(c.PlayerName(), d.BotID)
	if err != nil {
		return err
	}
	s.names.Release(removed.Name)
	s.broadcastTable(t, MessageTypeTableUpdated, TableUpdatedData{Table: tableState(t)})
	s.pushLobby(c.LobbyID())
	return nil
}

// MovePlayer relocates the creator to an empty seat
func (s *Service) MovePlayer(c *Connection, d MovePlayerData) error {
	if err := s.requireIdentity(c); err != nil {
		return err
	}
	t, ok := s.registry.Table(c.LobbyID(), d.TableID)
	if !ok {
		return game.Errorf(game.CodeTableNotFound, "no table %s", d.TableID)
	}
	if err := t.Move(c.PlayerName(), d.NewPosition); err != nil {
		return err
	}
	s.broadcastTable(t, MessageTypeTableUpdated, TableUpdatedData{Table: tableState(t)})
	return nil
}

// UpdateTableConfig replaces the table rule set (creator only, pre-game)
func (s *Service) UpdateTableConfig(c *Connection, d UpdateConfigData) error {
	if err := s.requireIdentity(c); err != nil {
		return err
	}
	t, ok := s.registry.Table(c.LobbyID(), d.TableID)
	if !ok {
		return game.Errorf(game.CodeTableNotFound, "no table %s", d.TableID)
	}
	cfg, err := s.tableConfig(t.Config(), d.TimeoutDuration, d.DeckVariant,
		d.ScoreTarget, d.HasKitty, d.AllowPointCardDiscards, d.EnforceOpposingTeamBidRule)
	if err != nil {
		return err
	}
	if err := t.UpdateConfig(c.PlayerName(), cfg); err != nil {
		return err
	}
	s.broadcastTable(t, MessageTypeTableUpdated, TableUpdatedData{Table: tableState(t)})
	s.pushLobby(c.LobbyID())
	return nil
}

// StartGame launches the table's game on creator request
func (s *Service) StartGame(c *Connection, d StartGameData) error {
	if err := s.requireIdentity(c); err != nil {
		return err
	}
	t, ok := s.registry.Table(c.LobbyID(), d.TableID)
	if !ok {
		return game.Errorf(game.CodeTableNotFound, "no table %s", d.TableID)
	}
	if c.PlayerName() != t.Creator {
		return game.Errorf(game.CodeNotCreator, "only the creator can start the game")
	}
	if !t.Full() {
		return game.Errorf(game.CodeInvalidConfig, "table needs 4 seated players, has %d", t.SeatCount())
	}
	return s.startGame(c.LobbyID(), t)
}

// startGame builds the game, its transcript, and its lane
func (s *Service) startGame(lobbyID string, t *lobby.Table) error {
	if t.GameID() != "" {
		return game.Errorf(game.CodeGameStarted, "table %s already has a game", t.ID)
	}
	tcfg := t.Config()
	players := t.Players()

	gameID := uuid.NewString()
	cfg := game.Config{
		ID:                 gameID,
		TableID:            t.ID,
		TimeoutMS:          tcfg.TimeoutMS,
		Variant:            tcfg.Variant,
		ScoreTarget:        tcfg.ScoreTarget,
		Kitty:              tcfg.Kitty,
		AllowPointDiscards: tcfg.AllowPointDiscards,
		EnforceOpposingBid: tcfg.EnforceOpposingBid,
	}
	rng := s.newRNG()
	g := game.New(cfg, players, rng, s.clock)

	policies := make(map[string]bot.Policy)
	meta := transcript.Metadata{
		Variant:     tcfg.Variant,
		ScoreTarget: tcfg.ScoreTarget,
		Kitty:       tcfg.Kitty,
	}
	for _, p := range players {
		meta.Seats = append(meta.Seats, transcript.SeatMeta{
			PlayerID: p.ID, Name: p.Name, Position: p.Position, IsBot: p.IsBot,
		})
		if p.IsBot {
			policies[p.ID] = bot.ForSkill(p.Skill, rng)
		}
	}
	tr := transcript.New(gameID, t.ID, t.Name, meta, s.clock.Now())
	s.store.Put(tr)
	t.SetGameID(gameID)

	l := newLane(g, t, lobbyID, policies, s.rooms, tr, s.clock, s.log, s.pacing, s.laneCleanup)

	s.mu.Lock()
	s.lanes[gameID] = l
	for _, p := range players {
		if p.IsBot {
			continue
		}
		if conn := s.conns[p.Name]; conn != nil {
			conn.SetGame(gameID)
			s.rooms.Join(GameRoom(gameID), conn)
		}
	}
	s.mu.Unlock()

	go l.run()
	l.post(l.start)

	s.broadcastTable(t, MessageTypeTableUpdated, TableUpdatedData{Table: tableState(t)})
	s.pushLobby(lobbyID)
	return nil
}

// laneCleanup runs on the lane after a game ends: retain the
// transcript, reset the table to bots, and push the humans back to the
// lobby.
func (s *Service) laneCleanup(l *lane) {
	s.mu.Lock()
	delete(s.lanes, l.game.ID)
	s.mu.Unlock()

	watchers := l.table.Spectators()
	removed := l.table.ResetToBots(s.names)
	for _, name := range watchers {
		s.mu.Lock()
		conn := s.conns[name]
		s.mu.Unlock()
		if conn == nil {
			continue
		}
		conn.SetSpectating("")
		s.rooms.Leave(SpectatorRoom(l.table.ID), conn)
		s.rooms.Leave(TableRoom(l.table.ID), conn)
	}
	for _, p := range removed {
		s.mu.Lock()
		conn := s.conns[p.Name]
		s.mu.Unlock()
		if conn == nil {
			continue
		}
		conn.SetGame("")
		conn.SetTable("")
		s.rooms.Leave(GameRoom(l.game.ID), conn)
		s.rooms.Leave(TableRoom(l.table.ID), conn)
	}
	s.broadcastTable(l.table, MessageTypeTableUpdated, TableUpdatedData{Table: tableState(l.table)})
	s.pushLobby(l.lobbyID)
	s.log.Info("game cleaned up", "game", l.game.ID, "table", l.table.ID)
}

// Game actions. Resolution to a lane plus a posted closure; legality
// errors travel back to the socket from inside the lane.

func (s *Service) MakeBid(c *Connection, d MakeBidData) error {
	l, err := s.laneFor(c, d.GameID)
	if err != nil {
		return err
	}
	var suit deck.Suit
	if d.Points > 0 {
		if suit, err = deck.ParseSuit(d.Suit); err != nil {
			return game.Errorf(game.CodeIllegalBid, "bid requires a suit")
		}
	}
	playerID := c.PlayerID()
	l.post(func() { l.makeBid(playerID, d.Points, suit, c) })
	return nil
}

func (s *Service) TakeKitty(c *Connection, d TakeKittyData) error {
	l, err := s.laneFor(c, d.GameID)
	if err != nil {
		return err
	}
	playerID := c.PlayerID()
	l.post(func() { l.takeKitty(playerID, c) })
	return nil
}

func (s *Service) DiscardToKitty(c *Connection, d DiscardToKittyData) error {
	l, err := s.laneFor(c, d.GameID)
	if err != nil {
		return err
	}
	trump, perr := deck.ParseSuit(d.TrumpSuit)
	if perr != nil {
		return game.Errorf(game.CodeIllegalDiscard, "unknown trump suit %q", d.TrumpSuit)
	}
	playerID := c.PlayerID()
	l.post(func() { l.discardToKitty(playerID, d.Cards, trump, c) })
	return nil
}

func (s *Service) PlayCard(c *Connection, d PlayCardData) error {
	l, err := s.laneFor(c, d.GameID)
	if err != nil {
		return err
	}
	playerID := c.PlayerID()
	l.post(func() { l.playCard(playerID, d.Card, c) })
	return nil
}

func (s *Service) ExitGame(c *Connection, d ExitGameData) error {
	l, err := s.laneFor(c, d.GameID)
	if err != nil {
		return err
	}
	name := c.PlayerName()
	l.post(func() { l.exit(name) })
	return nil
}

// GetTranscript fetches one stored replay log
func (s *Service) GetTranscript(c *Connection, d GetTranscriptData) error {
	tr, ok := s.store.Get(d.GameID)
	if !ok {
		return game.Errorf(game.CodeGameNotFound, "no transcript for game %s", d.GameID)
	}
	msg, err := NewMessage(MessageTypeGameTranscript, GameTranscriptData{Transcript: tr.Clone()})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// GetAllTranscripts lists the stored replay logs
func (s *Service) GetAllTranscripts(c *Connection) error {
	msg, err := NewMessage(MessageTypeAllTranscriptList, AllTranscriptsData{Transcripts: s.store.List()})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// Disconnect cleans up after a dropped socket. Disconnects are silent
// recoveries: no error events, just seat removal.
func (s *Service) Disconnect(c *Connection) {
	name := c.PlayerName()
	if name == "" {
		return
	}
	if tableID := c.Spectating(); tableID != "" {
		s.dropSpectator(c, tableID)
	}
	if gameID := c.GameID(); gameID != "" {
		if l := s.lane(gameID); l != nil {
			l.post(func() { l.exit(name) })
		}
	} else if tableID := c.TableID(); tableID != "" {
		if t, _, ok := s.registry.FindTable(tableID); ok && t.GameID() == "" {
			_ = s.LeaveTable(c, LeaveTableData{TableID: tableID})
		}
	}

	s.mu.Lock()
	if s.conns[name] == c {
		delete(s.conns, name)
	}
	s.mu.Unlock()
	s.rooms.LeaveAll(c)
	s.names.Release(name)
	s.log.Info("player disconnected", "player", name)
}

// dropSpectator detaches a watcher from its table and tells the room
func (s *Service) dropSpectator(c *Connection, tableID string) {
	c.SetSpectating("")
	s.rooms.Leave(SpectatorRoom(tableID), c)
	s.rooms.Leave(TableRoom(tableID), c)
	t, _, ok := s.registry.FindTable(tableID)
	if !ok {
		return
	}
	t.RemoveSpectator(c.PlayerName())
	s.broadcastTable(t, MessageTypeSpectatorLeft, SpectatorData{
		TableID: tableID, PlayerName: c.PlayerName(),
	})
}

// Lanes snapshots the live lanes for the timer supervisor
func (s *Service) Lanes() []*lane {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*lane, 0, len(s.lanes))
	for _, l := range s.lanes {
		out = append(out, l)
	}
	return out
}

func (s *Service) lane(gameID string) *lane {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lanes[gameID]
}

func (s *Service) laneFor(c *Connection, gameID string) (*lane, error) {
	if err := s.requireIdentity(c); err != nil {
		return nil, err
	}
	l := s.lane(gameID)
	if l == nil {
		return nil, game.Errorf(game.CodeGameNotFound, "no game %s", gameID)
	}
	return l, nil
}

// tableConfig overlays optional request fields on a base config
func (s *Service) tableConfig(base lobby.TableConfig, timeout *int, variant string,
	target *int, kitty, pointDiscards, opposingBid *bool) (lobby.TableConfig, error) {

	cfg := base
	if timeout != nil {
		cfg.TimeoutMS = *timeout
	}
	if variant != "" {
		size, err := strconv.Atoi(variant)
		if err != nil || (size != int(deck.Variant36) && size != int(deck.Variant40)) {
			return cfg, game.Errorf(game.CodeInvalidConfig, "deck variant must be \"36\" or \"40\"")
		}
		cfg.Variant = deck.Variant(size)
	}
	if target != nil {
		cfg.ScoreTarget = *target
	}
	if kitty != nil {
		cfg.Kitty = *kitty
		if *kitty {
			// The kitty only exists in the 40-card game.
			cfg.Variant = deck.Variant40
		}
	}
	if pointDiscards != nil {
		cfg.AllowPointDiscards = *pointDiscards
	}
	if opposingBid != nil {
		cfg.EnforceOpposingBid = *opposingBid
	}
	return cfg, cfg.Validate()
}

// pushLobby fans the fresh table list out to the lobby room
func (s *Service) pushLobby(lobbyID string) {
	msg, err := NewMessage(MessageTypeLobbyUpdated, LobbyUpdatedData{
		LobbyID: lobbyID,
		Tables:  s.registry.List(lobbyID),
	})
	if err != nil {
		s.log.Error("failed to build lobby update", "error", err)
		return
	}
	s.rooms.Broadcast(msg, LobbyRoom(lobbyID))
}

// broadcastTable sends an event to everyone at the table
func (s *Service) broadcastTable(t *lobby.Table, mt MessageType, data any) {
	msg, err := NewMessage(mt, data)
	if err != nil {
		s.log.Error("failed to build table message", "type", mt, "error", err)
		return
	}
	s.rooms.Broadcast(msg, TableRoom(t.ID))
}

// tableState projects a table into its wire form
func tableState(t *lobby.Table) TableState {
	st := TableState{
		ID:         t.ID,
		Name:       t.Name,
		Creator:    t.Creator,
		Private:    t.Private,
		Spectators: t.Spectators(),
		GameID:     t.GameID(),
		Config:     t.Config(),
	}
	for _, p := range t.Players() {
		seat := TableSeat{ID: p.ID, Name: p.Name, Position: p.Position, IsBot: p.IsBot}
		if p.IsBot {
			seat.Skill = string(p.Skill)
		}
		st.Players = append(st.Players, seat)
	}
	return st
}
