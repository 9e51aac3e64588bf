package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/acadien/deuxcents/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection wraps one WebSocket client with its read/write pumps and
// the identity it acquires through join_lobby.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	service   *Service

	playerID   string
	playerName string
	lobbyID    string
	tableID    string
	gameID     string
	spectating string
}

// NewConnection creates a connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, service *Service) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:    conn,
		send:    make(chan *Message, 256),
		logger:  logger.WithPrefix("conn"),
		ctx:     ctx,
		cancel:  cancel,
		service: service,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// Done exposes the connection's lifetime
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// SendMessage queues a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed during shutdown.
			c.logger.Debug("send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("send buffer full, closing connection", "player", c.PlayerName())
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// Identity accessors. The zero values mean "not yet joined".

func (c *Connection) SetIdentity(playerID, playerName, lobbyID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
	c.playerName = playerName
	c.lobbyID = lobbyID
}

func (c *Connection) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

func (c *Connection) PlayerName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerName
}

func (c *Connection) LobbyID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lobbyID
}

func (c *Connection) SetTable(tableID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tableID = tableID
}

func (c *Connection) TableID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tableID
}

func (c *Connection) SetGame(gameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID = gameID
}

func (c *Connection) GameID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameID
}

// SetSpectating marks the table this connection is watching, "" when
// not a spectator.
func (c *Connection) SetSpectating(tableID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spectating = tableID
}

func (c *Connection) Spectating() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.spectating
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage decodes one inbound message and hands it to the service
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("received message", "type", msg.Type, "player", c.PlayerName())

	var err error
	switch msg.Type {
	case MessageTypeJoinLobby:
		err = decode(msg, func(d JoinLobbyData) error { return c.service.JoinLobby(c, d) })
	case MessageTypeListTables:
		err = decode(msg, func(d ListTablesData) error { return c.service.ListTables(c, d) })
	case MessageTypeCreateTable:
		err = decode(msg, func(d CreateTableData) error { return c.service.CreateTable(c, d) })
	case MessageTypeJoinTable:
		err = decode(msg, func(d JoinTableData) error { return c.service.JoinTable(c, d) })
	case MessageTypeLeaveTable:
		err = decode(msg, func(d LeaveTableData) error { return c.service.LeaveTable(c, d) })
	case MessageTypeJoinAsSpectator:
		err = decode(msg, func(d SpectateData) error { return c.service.JoinAsSpectator(c, d) })
	case MessageTypeAddBot:
		err = decode(msg, func(d AddBotData) error { return c.service.AddBot(c, d) })
	case MessageTypeRemoveBot:
		err = decode(msg, func(d RemoveBotData) error { return c.service.RemoveBot(c, d) })
	case MessageTypeMovePlayer:
		err = decode(msg, func(d MovePlayerData) error { return c.service.MovePlayer(c, d) })
	case MessageTypeUpdateConfig:
		err = decode(msg, func(d UpdateConfigData) error { return c.service.UpdateTableConfig(c, d) })
	case MessageTypeStartGame:
		err = decode(msg, func(d StartGameData) error { return c.service.StartGame(c, d) })
	case MessageTypeMakeBid:
		err = decode(msg, func(d MakeBidData) error { return c.service.MakeBid(c, d) })
	case MessageTypeTakeKitty:
		err = decode(msg, func(d TakeKittyData) error { return c.service.TakeKitty(c, d) })
	case MessageTypeDiscardToKitty:
		err = decode(msg, func(d DiscardToKittyData) error { return c.service.DiscardToKitty(c, d) })
	case MessageTypePlayCard:
		err = decode(msg, func(d PlayCardData) error { return c.service.PlayCard(c, d) })
	case MessageTypeExitGame:
		err = decode(msg, func(d ExitGameData) error { return c.service.ExitGame(c, d) })
	case MessageTypeGetTranscript:
		err = decode(msg, func(d GetTranscriptData) error { return c.service.GetTranscript(c, d) })
	case MessageTypeAllTranscripts:
		err = c.service.GetAllTranscripts(c)
	default:
		c.sendError(game.Errorf("unknown_message_type", "unknown message type %q", msg.Type))
		return
	}
	if err != nil {
		c.sendError(err)
	}
}

// decode unmarshals the payload and invokes the handler
func decode[T any](msg *Message, handle func(T) error) error {
	var data T
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return game.Errorf("invalid_message", "failed to parse %s data", msg.Type)
	}
	return handle(data)
}

// sendError surfaces a recoverable failure to this socket only
func (c *Connection) sendError(err error) {
	payload := ErrorData{Message: err.Error()}
	var ge *game.Error
	if errors.As(err, &ge) {
		payload = ErrorData{
			Code:    string(ge.Code),
			Message: ge.Msg,
			GameID:  ge.GameID,
			Phase:   string(ge.Phase),
		}
	}
	msg, merr := NewMessage(MessageTypeError, payload)
	if merr != nil {
		c.logger.Error("failed to build error message", "error", merr)
		return
	}
	_ = c.SendMessage(msg)
}
