package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/twipi/twinrow/match"
)

const (
	pingInterval   = 30 * time.Second
	pongWait       = 2 * pingInterval
	writeWait      = 10 * time.Second
	maxMessageSize = 1024
	sendBufferSize = 64
)

// client is a WebSocket connection taking part in a match.
type client struct {
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger

	// match and handle are written once by join, from the connection's
	// handler goroutine.
	match  *match.Match
	handle match.Handle

	mu     sync.Mutex
	gameID string
	closed bool
}

var _ match.Participant = (*client)(nil)

func newClient(conn *websocket.Conn, logger *slog.Logger) *client {
	return &client{
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: logger,
	}
}

func (c *client) join(m *match.Match, gameID string) {
	c.mu.Lock()
	c.gameID = gameID
	c.mu.Unlock()

	c.match = m
	c.handle = m.Join(c)
}

// Notify implements [match.Participant].
func (c *client) Notify(ev match.Event) {
	c.mu.Lock()
	gameID := c.gameID
	c.mu.Unlock()

	msg, err := eventMessage(ev, gameID)
	if err != nil {
		c.logger.Error(
			"failed to encode event",
			"event", ev.Kind,
			"err", err)
		return
	}
	c.sendJSON(msg)
}

func (c *client) sendError(err error) {
	msg, merr := newMessage("error", ErrorData{Message: err.Error()})
	if merr != nil {
		return
	}
	c.sendJSON(msg)
}

// sendJSON queues msg without blocking. Messages are dropped if the client
// falls behind or is closed.
func (c *client) sendJSON(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn(
			"websocket client is too slow, dropping message",
			"event", msg.Event)
	}
}

// close stops the writer once it has flushed the queued messages.
func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readLoop handles the client's messages until the connection fails or the
// client stops answering pings.
func (c *client) readLoop(ctx context.Context) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, b, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg Message
		if err := json.Unmarshal(b, &msg); err != nil {
			c.sendError(fmt.Errorf("invalid message: %w", err))
			continue
		}

		switch msg.Event {
		case "move":
			var move MoveData
			if err := json.Unmarshal(msg.Data, &move); err != nil {
				c.sendError(fmt.Errorf("invalid move: %w", err))
				continue
			}
			if err := c.match.Perform(c.handle, move.X, move.Y); err != nil {
				c.sendError(err)
			}
		default:
			c.sendError(fmt.Errorf("unknown event %q", msg.Event))
		}

		if ctx.Err() != nil {
			return
		}
	}
}

// writeWithHeartbeat writes the queued messages to conn until send is
// closed, pinging the client every pingInterval.
func writeWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait))
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}
