// Package client is the WebSocket client used by the terminal UI. It
// shares the message vocabulary with the server package.
package client

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/acadien/deuxcents/internal/server"
)

// Client maintains one WebSocket connection to a game server
type Client struct {
	serverURL string
	conn      *websocket.Conn
	send      chan *server.Message
	receive   chan *server.Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	connected bool
	closeOnce sync.Once
}

// NewClient creates a client for the given server URL
func NewClient(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		serverURL: serverURL,
		send:      make(chan *server.Message, 256),
		receive:   make(chan *server.Message, 256),
		logger:    logger.WithPrefix("client"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Connect dials the server's /ws endpoint
func (c *Client) Connect() error {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()

	c.logger.Info("connected", "url", u.String())
	return nil
}

// Disconnect closes the connection
func (c *Client) Disconnect() error {
	c.closeOnce.Do(func() {
		c.cancel()
		c.mu.Lock()
		if c.conn != nil {
			_ = c.conn.Close()
			c.connected = false
		}
		c.mu.Unlock()
		close(c.send)
	})
	return nil
}

// IsConnected reports whether the socket is up
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Receive exposes the inbound message stream
func (c *Client) Receive() <-chan *server.Message {
	return c.receive
}

// Done exposes the connection's lifetime
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Send queues one typed message to the server
func (c *Client) Send(mt server.MessageType, data any) error {
	msg, err := server.NewMessage(mt, data)
	if err != nil {
		return err
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		return fmt.Errorf("send buffer full")
	}
}

func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		c.cancel()
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg server.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			return
		}
		select {
		case c.receive <- &msg:
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// Typed senders for each client action.

func (c *Client) JoinLobby(playerName string) error {
	return c.Send(server.MessageTypeJoinLobby, server.JoinLobbyData{PlayerName: playerName})
}

func (c *Client) ListTables() error {
	return c.Send(server.MessageTypeListTables, server.ListTablesData{})
}

func (c *Client) CreateTable(d server.CreateTableData) error {
	return c.Send(server.MessageTypeCreateTable, d)
}

func (c *Client) JoinTable(tableID, password string) error {
	return c.Send(server.MessageTypeJoinTable, server.JoinTableData{TableID: tableID, Password: password})
}

func (c *Client) LeaveTable(tableID string) error {
	return c.Send(server.MessageTypeLeaveTable, server.LeaveTableData{TableID: tableID})
}

func (c *Client) Spectate(tableID string) error {
	return c.Send(server.MessageTypeJoinAsSpectator, server.SpectateData{TableID: tableID})
}

func (c *Client) AddBot(tableID string, position int, skill string) error {
	return c.Send(server.MessageTypeAddBot, server.AddBotData{TableID: tableID, Position: position, Skill: skill})
}

func (c *Client) StartGame(tableID string) error {
	return c.Send(server.MessageTypeStartGame, server.StartGameData{TableID: tableID})
}

func (c *Client) MakeBid(gameID string, points int, suit string) error {
	return c.Send(server.MessageTypeMakeBid, server.MakeBidData{GameID: gameID, Points: points, Suit: suit})
}

func (c *Client) PassBid(gameID string) error {
	return c.Send(server.MessageTypeMakeBid, server.MakeBidData{GameID: gameID})
}

func (c *Client) TakeKitty(gameID string) error {
	return c.Send(server.MessageTypeTakeKitty, server.TakeKittyData{GameID: gameID})
}

func (c *Client) DiscardToKitty(gameID string, cards []string, trump string) error {
	return c.Send(server.MessageTypeDiscardToKitty, server.DiscardToKittyData{
		GameID: gameID, Cards: cards, TrumpSuit: trump,
	})
}

func (c *Client) PlayCard(gameID, cardID string) error {
	return c.Send(server.MessageTypePlayCard, server.PlayCardData{GameID: gameID, Card: cardID})
}

func (c *Client) ExitGame(gameID string) error {
	return c.Send(server.MessageTypeExitGame, server.ExitGameData{GameID: gameID})
}

func (c *Client) GetTranscript(gameID string) error {
	return c.Send(server.MessageTypeGetTranscript, server.GetTranscriptData{GameID: gameID})
}

func (c *Client) GetAllTranscripts() error {
	return c.Send(server.MessageTypeAllTranscripts, struct{}{})
}
