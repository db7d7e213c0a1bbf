package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/seabattle/internal/protocol"
)

var (
	// ErrConnClosed is returned when sending to a connection that has gone away
	ErrConnClosed = errors.New("connection closed")

	// ErrSendBufferFull is returned when a slow peer has not drained its outbound queue
	ErrSendBufferFull = errors.New("send buffer full")
)

// Conn is a live connection handle. Send must not block: it enqueues the
// frame for the connection's writer and reports whether that was possible.
type Conn interface {
	ID() string
	Send(frame []byte) error
}

// Notifier delivers outbound messages to connection handles.
// Each message is encoded once regardless of how many recipients it has.
type Notifier struct {
	logger *slog.Logger
}

// New creates a new Notifier
func New(logger *slog.Logger) *Notifier {
	return &Notifier{
		logger: logger.With(slog.String("component", "notify")),
	}
}

// Send delivers msg to a single connection. A nil conn is skipped.
func (n *Notifier) Send(conn Conn, msg protocol.Payload) bool {
	return n.Fanout([]Conn{conn}, msg) == 1
}

// Fanout delivers msg to every non-nil connection and returns how many
// accepted it. Failed sends are logged and skipped.
func (n *Notifier) Fanout(conns []Conn, msg protocol.Payload) int {
	if len(conns) == 0 {
		return 0
	}

	frame, err := protocol.Encode(msg)
	if err != nil {
		n.logger.Error("failed to encode message",
			slog.String("type", string(msg.MessageType())),
			slog.Any("error", err),
		)
		return 0
	}

	delivered := 0
	for _, conn := range conns {
		if conn == nil {
			continue
		}
		if err := conn.Send(frame); err != nil {
			level := slog.LevelDebug
			if errors.Is(err, ErrSendBufferFull) {
				level = slog.LevelWarn
			}
			n.logger.Log(context.Background(), level, "dropped message",
				slog.String("conn_id", conn.ID()),
				slog.String("type", string(msg.MessageType())),
				slog.Any("error", err),
			)
			continue
		}
		delivered++
	}
	return delivered
}
