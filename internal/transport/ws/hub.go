package ws

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/seabattle/internal/notify"
)

// Inbox receives everything read from clients. The session coordinator
// satisfies it.
type Inbox interface {
	Submit(ctx context.Context, conn notify.Conn, raw []byte) error
	Disconnect(ctx context.Context, conn notify.Conn) error
}

// Config holds WebSocket endpoint settings
type Config struct {
	ReadBufferSize  int
	WriteBufferSize int
	MaxMessageSize  int64
	AllowedOrigins  []string // empty allows any origin
}

// DefaultConfig returns the default endpoint configuration
func DefaultConfig() Config {
	return Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		MaxMessageSize:  64 * 1024,
	}
}

// WithDefaults fills every unset size from DefaultConfig, keeping the rest
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = def.ReadBufferSize
	}
	if c.WriteBufferSize <= 0 {
		c.WriteBufferSize = def.WriteBufferSize
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = def.MaxMessageSize
	}
	return c
}

// Hub owns every live client connection
type Hub struct {
	inbox    Inbox
	cfg      Config
	upgrader websocket.Upgrader
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub creates a new Hub feeding inbound frames to inbox
func NewHub(inbox Inbox, cfg Config, logger *slog.Logger) *Hub {
	cfg = cfg.WithDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		inbox:   inbox,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "ws")),
		ctx:     ctx,
		cancel:  cancel,
		clients: make(map[*Client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// ServeWS upgrades the request and starts the client's pumps
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	if h.ctx.Err() != nil {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response
		h.logger.Warn("websocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.Any("error", err),
		)
		return
	}

	client := newClient(h, conn, h.logger)
	if !h.register(client) {
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(h.ctx, h.inbox, h.cfg.MaxMessageSize)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones
func (h *Hub) Close() {
	h.cancel()

	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
		delete(h.clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		client.close()
		_ = client.conn.Close()
	}
	h.logger.Info("ws hub stopped", slog.Int("disconnected_clients", len(clients)))
}

func (h *Hub) register(client *Client) bool {
	h.mu.Lock()
	if h.ctx.Err() != nil {
		h.mu.Unlock()
		return false
	}
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	client.logger.Info("client connected", slog.Int("total_clients", count))
	return true
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	count := len(h.clients)
	h.mu.Unlock()

	client.close()
	if ok {
		client.logger.Info("client disconnected",
			slog.Duration("connection_duration", time.Since(client.connectedAt)),
			slog.Int("total_clients", count),
		)
	}
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(h.cfg.AllowedOrigins, origin)
}
