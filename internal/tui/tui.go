// Package tui is the terminal client: a Bubble Tea program driven by
// the server's event stream on one side and a command line on the
// other.
package tui

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/acadien/deuxcents/internal/client"
	"github.com/acadien/deuxcents/internal/deck"
	"github.com/acadien/deuxcents/internal/game"
	"github.com/acadien/deuxcents/internal/lobby"
	"github.com/acadien/deuxcents/internal/server"
)

// Model is the Bubble Tea model for a deux cents session
type Model struct {
	client *client.Client
	logger *log.Logger

	logViewport viewport.Model
	input       textinput.Model

	playerName string
	tables     []lobby.TableInfo
	tableID    string
	gameID     string
	snapshot   *game.Snapshot

	gameLog     []string
	width       int
	height      int
	initialized bool
	quitting    bool
}

// serverMsg delivers one server event into the Bubble Tea loop
type serverMsg struct{ msg *server.Message }

// disconnectedMsg signals that the socket closed
type disconnectedMsg struct{}

// NewModel creates the TUI model around a connected client
func NewModel(c *client.Client, playerName string, logger *log.Logger) *Model {
	vp := viewport.New(80, 20)
	input := textinput.New()
	input.Placeholder = "command (help for a list)"
	input.Focus()
	input.CharLimit = 120

	return &Model{
		client:      c,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		input:       input,
		playerName:  playerName,
	}
}

func (m *Model) Init() tea.Cmd {
	if err := m.client.JoinLobby(m.playerName); err != nil {
		m.appendLog(ErrorStyle.Render("failed to join lobby: " + err.Error()))
	}
	return tea.Batch(textinput.Blink, m.waitForServer())
}

// waitForServer blocks on the client's receive stream
func (m *Model) waitForServer() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg, ok := <-m.client.Receive():
			if !ok {
				return disconnectedMsg{}
			}
			return serverMsg{msg: msg}
		case <-m.client.Done():
			return disconnectedMsg{}
		}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logViewport.Width = msg.Width
		m.logViewport.Height = max(msg.Height-8, 3)
		m.initialized = true
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line != "" {
				m.runCommand(line)
			}
			if m.quitting {
				return m, tea.Quit
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case serverMsg:
		m.applyServer(msg.msg)
		return m, m.waitForServer()

	case disconnectedMsg:
		m.appendLog(ErrorStyle.Render("disconnected from server"))
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

// runCommand parses one input line into a client action
func (m *Model) runCommand(line string) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	var err error
	switch cmd {
	case "help":
		m.appendLog(InfoStyle.Render(
			"commands: tables | create [name] | join <table> | bots | start | " +
				"bid <points> <suit> | pass | kitty | discard <c1> <c2> <c3> <c4> <trump> | " +
				"play <card> | watch <table> | replays | replay <game> | exit | quit"))
	case "tables":
		err = m.client.ListTables()
	case "create":
		d := server.CreateTableData{}
		if len(args) > 0 {
			d.TableName = strings.Join(args, " ")
		}
		err = m.client.CreateTable(d)
	case "join":
		if len(args) < 1 {
			err = fmt.Errorf("usage: join <tableId> [password]")
			break
		}
		password := ""
		if len(args) > 1 {
			password = args[1]
		}
		err = m.client.JoinTable(m.resolveTable(args[0]), password)
	case "bots":
		for pos := 1; pos <= 3; pos++ {
			if err = m.client.AddBot(m.tableID, pos, ""); err != nil {
				break
			}
		}
	case "start":
		err = m.client.StartGame(m.tableID)
	case "bid":
		if len(args) != 2 {
			err = fmt.Errorf("usage: bid <points> <suit>")
			break
		}
		var points int
		if points, err = strconv.Atoi(args[0]); err != nil {
			err = fmt.Errorf("bad points %q", args[0])
			break
		}
		err = m.client.MakeBid(m.gameID, points, args[1])
	case "pass":
		err = m.client.PassBid(m.gameID)
	case "kitty":
		err = m.client.TakeKitty(m.gameID)
	case "discard":
		if len(args) != 5 {
			err = fmt.Errorf("usage: discard <c1> <c2> <c3> <c4> <trump>")
			break
		}
		err = m.client.DiscardToKitty(m.gameID, args[:4], args[4])
	case "play":
		if len(args) != 1 {
			err = fmt.Errorf("usage: play <cardId>")
			break
		}
		err = m.client.PlayCard(m.gameID, args[0])
	case "watch":
		if len(args) != 1 {
			err = fmt.Errorf("usage: watch <tableId>")
			break
		}
		err = m.client.Spectate(m.resolveTable(args[0]))
	case "replays":
		err = m.client.GetAllTranscripts()
	case "replay":
		if len(args) != 1 {
			err = fmt.Errorf("usage: replay <gameId>")
			break
		}
		err = m.client.GetTranscript(args[0])
	case "exit":
		err = m.client.ExitGame(m.gameID)
	case "quit":
		m.quitting = true
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		m.logger.Debug("command failed", "cmd", cmd, "error", err)
		m.appendLog(ErrorStyle.Render(err.Error()))
	}
}

// resolveTable lets commands name a table by list index or id
func (m *Model) resolveTable(arg string) string {
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(m.tables) {
		return m.tables[n-1].ID
	}
	return arg
}

// applyServer folds one server event into display state
func (m *Model) applyServer(msg *server.Message) {
	switch msg.Type {
	case server.MessageTypeLobbyJoined:
		var d server.LobbyJoinedData
		if decode(msg, &d) {
			m.playerName = d.PlayerName
			m.tables = d.Tables
			m.appendLog(SuccessStyle.Render("joined lobby as " + d.PlayerName))
			m.logTables()
		}
	case server.MessageTypeLobbyUpdated:
		var d server.LobbyUpdatedData
		if decode(msg, &d) {
			m.tables = d.Tables
		}
	case server.MessageTypeTableJoined:
		var d server.TableJoinedData
		if decode(msg, &d) {
			m.tableID = d.Table.ID
			m.appendLog(SuccessStyle.Render(
				fmt.Sprintf("seated at %q, position %d", d.Table.Name, d.Position)))
		}
	case server.MessageTypeTableLeft, server.MessageTypeTableDeleted:
		m.tableID = ""
		m.appendLog(InfoStyle.Render("back in the lobby"))
	case server.MessageTypePlayerJoined:
		var d server.PlayerJoinedData
		if decode(msg, &d) {
			m.appendLog(fmt.Sprintf("%s sat down at position %d", d.PlayerName, d.Position))
		}
	case server.MessageTypePlayerLeft:
		var d server.PlayerLeftData
		if decode(msg, &d) {
			m.appendLog(fmt.Sprintf("%s left the table", d.PlayerName))
		}
	case server.MessageTypeGameStarted:
		var d server.GameStartedData
		if decode(msg, &d) {
			m.gameID = d.Game.ID
			m.snapshot = &d.Game
			m.appendLog(SuccessStyle.Render(fmt.Sprintf(
				"game on: first to %d, %d-card deck", d.Game.ScoreTarget, int(d.Game.DeckVariant))))
			m.logTurn()
		}
	case server.MessageTypeGameUpdated:
		var d server.GameUpdatedData
		if decode(msg, &d) {
			m.snapshot = &d.Game
			m.logTurn()
		}
	case server.MessageTypeBidMade:
		var d server.BidMadeData
		if decode(msg, &d) {
			m.snapshot = &d.Game
			name := m.nameOf(d.PlayerID)
			if d.Passed {
				m.appendLog(fmt.Sprintf("%s passes", name))
			} else {
				m.appendLog(TurnStyle.Render(fmt.Sprintf("%s bids %d %s", name, d.Points, d.Suit)))
			}
			m.logTurn()
		}
	case server.MessageTypeCardPlayed:
		var d server.CardPlayedData
		if decode(msg, &d) {
			m.snapshot = &d.Game
			m.appendLog(fmt.Sprintf("%s plays %s", m.nameOf(d.PlayerID), renderCardID(d.Card)))
			m.logTurn()
		}
	case server.MessageTypeTrickCompleted:
		var d server.TrickCompletedData
		if decode(msg, &d) {
			m.snapshot = &d.Game
			m.appendLog(TurnStyle.Render(fmt.Sprintf(
				"%s takes the trick (%d pts)", m.nameOf(d.WinnerID), d.Points)))
		}
	case server.MessageTypeRoundCompleted:
		var d server.RoundCompletedData
		if decode(msg, &d) {
			m.snapshot = &d.Game
			s := d.Summary
			m.appendLog(SuccessStyle.Render(fmt.Sprintf(
				"round %d: contractors %+d, defenders %+d (totals %d / %d)",
				s.Round, s.ContractorDelta, s.DefenderDelta,
				s.TeamScores[game.Team1], s.TeamScores[game.Team2])))
		}
	case server.MessageTypeGameEnded, server.MessageTypeGameEndedSpec:
		var d server.GameEndedData
		if decode(msg, &d) {
			m.snapshot = &d.Game
			m.gameID = ""
			m.appendLog(SuccessStyle.Render(fmt.Sprintf("game over: %s wins", d.WinnerTeam)))
		}
	case server.MessageTypeGameTimeout:
		var d server.GameTimeoutData
		if decode(msg, &d) {
			m.appendLog(ErrorStyle.Render(m.nameOf(d.PlayerID) + " timed out, game abandoned"))
		}
	case server.MessageTypePlayerExitedGame:
		var d server.PlayerExitedData
		if decode(msg, &d) {
			m.appendLog(ErrorStyle.Render(d.PlayerName + " abandoned the game"))
		}
	case server.MessageTypeAllTranscriptList:
		var d server.AllTranscriptsData
		if decode(msg, &d) {
			for _, tr := range d.Transcripts {
				m.appendLog(InfoStyle.Render(fmt.Sprintf(
					"replay %s at %q (%d entries)", tr.GameID, tr.TableName, tr.Entries)))
			}
		}
	case server.MessageTypeGameTranscript:
		var d server.GameTranscriptData
		if decode(msg, &d) && d.Transcript != nil {
			m.appendLog(InfoStyle.Render(fmt.Sprintf(
				"replay %s: %d entries", d.Transcript.GameID, len(d.Transcript.Entries))))
		}
	case server.MessageTypeError:
		var d server.ErrorData
		if decode(msg, &d) {
			m.appendLog(ErrorStyle.Render(d.Message))
		}
	}
	m.refreshViewport()
}

func decode[T any](msg *server.Message, out *T) bool {
	return json.Unmarshal(msg.Data, out) == nil
}

func (m *Model) nameOf(playerID string) string {
	if m.snapshot != nil {
		for _, p := range m.snapshot.Players {
			if p.ID == playerID {
				return p.Name
			}
		}
	}
	return playerID
}

// me returns the local player's seat in the current snapshot
func (m *Model) me() *game.Player {
	if m.snapshot == nil {
		return nil
	}
	for i := range m.snapshot.Players {
		if m.snapshot.Players[i].Name == m.playerName {
			return &m.snapshot.Players[i]
		}
	}
	return nil
}

func (m *Model) logTables() {
	for i, t := range m.tables {
		status := "open"
		if t.HasGame {
			status = "playing"
		}
		m.appendLog(InfoStyle.Render(fmt.Sprintf(
			"%d. %s (%d/%d, %s)", i+1, t.Name, t.Occupied, t.Seats, status)))
	}
}

// logTurn announces the local player's turn with a prompt hint
func (m *Model) logTurn() {
	me := m.me()
	if me == nil || m.snapshot == nil || m.snapshot.CurrentPlayerID != me.ID {
		return
	}
	switch m.snapshot.Phase {
	case game.PhaseBidding:
		m.appendLog(TurnStyle.Render("your turn to bid (bid <points> <suit> or pass)"))
	case game.PhaseKitty:
		m.appendLog(TurnStyle.Render("the kitty is yours (kitty, then discard)"))
	case game.PhasePlaying:
		m.appendLog(TurnStyle.Render("your turn to play"))
	}
}

func (m *Model) appendLog(line string) {
	m.gameLog = append(m.gameLog, line)
	if len(m.gameLog) > 500 {
		m.gameLog = m.gameLog[len(m.gameLog)-500:]
	}
}

func (m *Model) refreshViewport() {
	if !m.initialized {
		return
	}
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.GotoBottom()
}

func renderCard(c deck.Card) string {
	if c.Suit.IsRed() {
		return RedCardStyle.Render(c.String())
	}
	return BlackCardStyle.Render(c.String())
}

func renderCardID(id string) string {
	if c, err := deck.ParseCard(id); err == nil {
		return renderCard(c)
	}
	return id
}

func (m *Model) View() string {
	if m.quitting {
		return "bye\n"
	}

	header := HeaderStyle.Width(max(m.width, 20)).Render(" deux cents | " + m.playerName)
	status := m.statusLine()
	hand := m.handLine()

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.logViewport.View(),
		status,
		hand,
		m.input.View(),
	)
}

func (m *Model) statusLine() string {
	if m.snapshot == nil {
		return InfoStyle.Render(fmt.Sprintf("lobby, %d tables (type tables to list)", len(m.tables)))
	}
	s := m.snapshot
	line := fmt.Sprintf("round %d | %s | us/them %d/%d",
		s.Round, s.Phase, s.TeamScores[game.Team1], s.TeamScores[game.Team2])
	if s.TrumpSuit != nil {
		line += " | trump " + s.TrumpSuit.Symbol()
	}
	if s.CurrentBid != nil {
		line += fmt.Sprintf(" | contract %d %s by %s",
			s.CurrentBid.Points, s.CurrentBid.Suit.Symbol(), m.nameOf(s.CurrentBid.PlayerID))
	}
	return InfoStyle.Render(line)
}

func (m *Model) handLine() string {
	me := m.me()
	if me == nil || len(me.Hand) == 0 {
		return ""
	}
	parts := make([]string, 0, len(me.Hand))
	for _, c := range me.Hand {
		parts = append(parts, renderCard(c))
	}
	return HandStyle.Render("hand: ") + strings.Join(parts, " ")
}
