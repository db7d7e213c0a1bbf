package ws

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcoot/seabattle/internal/notify"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Pings are sent at this interval; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is one upgraded WebSocket connection. It implements notify.Conn.
type Client struct {
	id          string
	hub         *Hub
	conn        *websocket.Conn
	connectedAt time.Time
	logger      *slog.Logger

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// newClient creates a client with a fresh connection id
func newClient(hub *Hub, conn *websocket.Conn, logger *slog.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:          id,
		hub:         hub,
		conn:        conn,
		connectedAt: time.Now(),
		logger:      logger.With(slog.String("conn_id", id)),
		send:        make(chan []byte, sendBufferSize),
	}
}

// ID returns the connection id
func (c *Client) ID() string {
	return c.id
}

// Send queues a frame for the writer. It never blocks.
func (c *Client) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return notify.ErrConnClosed
	}
	select {
	case c.send <- frame:
		return nil
	default:
		return notify.ErrSendBufferFull
	}
}

// close stops accepting frames and lets the writer drain and exit
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump forwards inbound frames to the inbox until the peer goes away.
// A pong or any frame extends the read deadline.
func (c *Client) readPump(ctx context.Context, inbox Inbox, maxMessageSize int64) {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()

		dctx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		if err := inbox.Disconnect(dctx, c); err != nil {
			c.logger.Debug("disconnect not delivered", slog.Any("error", err))
		}
	}()

	if maxMessageSize > 0 {
		c.conn.SetReadLimit(maxMessageSize)
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read failed", slog.Any("error", err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		if err := inbox.Submit(ctx, c, message); err != nil {
			if !errors.Is(err, context.Canceled) {
				c.logger.Warn("inbound frame dropped", slog.Any("error", err))
			}
			return
		}
	}
}

// writePump drains the send queue onto the socket and keeps the peer alive
// with pings. It exits when the queue is closed or a write fails.
func (c *Client) writePump() {
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
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("websocket write failed", slog.Any("error", err))
				return
			}

			// Each protocol message is its own frame, so flush the backlog one by one
			n := len(c.send)
			for i := 0; i < n; i++ {
				next, ok := <-c.send
				if !ok {
					return
				}
				if err := c.conn.WriteMessage(websocket.TextMessage, next); err != nil {
					c.logger.Debug("websocket write failed", slog.Any("error", err))
					return
				}
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
