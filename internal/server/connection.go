package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/blackjack/internal/game"
)

// Connection represents a WebSocket connection to one player
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	session   *Session
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		send:   make(chan *Message, 256),
		logger: logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has been closed
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client. A client that stops reading
// fills its buffer and is disconnected.
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

var ErrConnectionClosed = websocket.ErrCloseSent

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
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			var (
				syntaxErr *json.SyntaxError
				typeErr   *json.UnmarshalTypeError
			)
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				c.sendError(ErrorCodeInvalidMessage, "Message is not valid JSON")
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
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
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "session", c.session.ID())

	switch msg.Type {
	case MessageTypeSetBet:
		var data SetBetData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(ErrorCodeInvalidMessage, "Failed to parse set_bet data")
			return
		}
		c.handleAction(func(g *game.Game) (*game.Transition, error) {
			return g.SetBetAmount(data.Amount), nil
		})

	case MessageTypeStartRound:
		c.handleAction((*game.Game).StartRound)

	case MessageTypeHit:
		c.handleAction((*game.Game).Hit)

	case MessageTypeStand:
		c.handleAction((*game.Game).Stand)

	case MessageTypeDouble:
		c.handleAction((*game.Game).Double)

	case MessageTypeSplit:
		c.handleAction((*game.Game).Split)

	case MessageTypeReset:
		c.logger.Info("Reset requested", "session", c.session.ID())
		if err := c.session.Reset(c.ctx); err != nil {
			c.sendActionError(err)
		}

	case MessageTypeState:
		if err := c.session.SendState(); err != nil {
			c.logger.Debug("Failed to send state", "error", err)
		}

	case MessageTypeAnimationDone:
		var data AnimationDoneData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.CardID == "" {
			c.sendError(ErrorCodeInvalidMessage, "Failed to parse animation_done data")
			return
		}
		c.session.Ack(data.CardID)

	default:
		c.sendError(ErrorCodeUnknownMessageType, "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleAction(act ActionFunc) {
	if err := c.session.Do(c.ctx, act); err != nil {
		c.sendActionError(err)
	}
}

// sendActionError reports a rejected action. Insufficient funds also changes
// the status message, so the new state follows the error.
func (c *Connection) sendActionError(err error) {
	switch {
	case errors.Is(err, ErrBusy):
		c.sendError(ErrorCodeBusy, "Cards are still being dealt")
	case errors.Is(err, game.ErrInsufficientFunds):
		c.sendError(ErrorCodeInsufficientFunds, err.Error())
		_ = c.session.SendState()
	case errors.Is(err, game.ErrRoundInProgress):
		c.sendError(ErrorCodeRoundInProgress, err.Error())
	default:
		c.sendError(ErrorCodeInvalidAction, err.Error())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}
