package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/notify"
	"github.com/mcoot/seabattle/internal/protocol"
	"github.com/mcoot/seabattle/internal/services/game"
	"github.com/mcoot/seabattle/internal/services/player"
	"github.com/mcoot/seabattle/internal/services/room"
)

// inboxSize bounds queued events before transport readers block
const inboxSize = 1024

// ErrStopped is returned when submitting to a coordinator that is no longer running
var ErrStopped = errors.New("session coordinator stopped")

// inbound is a queued event for the worker
type inbound struct {
	conn       notify.Conn
	raw        []byte
	cred       *player.Credential // checked ahead for reg frames
	disconnect bool
}

// Coordinator turns inbound protocol events into table mutations and
// outbound messages. Events are processed one at a time by a single worker.
type Coordinator struct {
	players  *player.Directory
	rooms    *room.Registry
	games    *game.Table
	notifier *notify.Notifier
	logger   *slog.Logger

	inbox   chan inbound
	stopped chan struct{}
}

// New creates a new Coordinator
func New(players *player.Directory, rooms *room.Registry, games *game.Table, notifier *notify.Notifier, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		players:  players,
		rooms:    rooms,
		games:    games,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "session")),
		inbox:    make(chan inbound, inboxSize),
		stopped:  make(chan struct{}),
	}
}

// Run processes queued events until ctx is cancelled
func (c *Coordinator) Run(ctx context.Context) {
	c.logger.Info("session coordinator started")
	defer close(c.stopped)

	for {
		select {
		case ev := <-c.inbox:
			if ev.disconnect {
				c.HandleDisconnect(ctx, ev.conn)
			} else {
				c.handle(ctx, ev.conn, ev.raw, ev.cred)
			}

		case <-ctx.Done():
			c.logger.Info("session coordinator stopped", slog.Int("pending", len(c.inbox)))
			return
		}
	}
}

// Submit queues a raw inbound frame from conn for the worker. Password
// checks for reg frames run here, on the caller's goroutine.
func (c *Coordinator) Submit(ctx context.Context, conn notify.Conn, raw []byte) error {
	return c.enqueue(ctx, inbound{conn: conn, raw: raw, cred: c.checkCredential(ctx, raw)})
}

func (c *Coordinator) checkCredential(ctx context.Context, raw []byte) *player.Credential {
	event, err := protocol.Decode(raw)
	if err != nil {
		return nil
	}
	req, ok := event.(protocol.RegRequest)
	if !ok {
		return nil
	}
	return c.players.Check(ctx, model.PlayerName(req.Name), req.Password)
}

// Disconnect queues the loss of conn for the worker
func (c *Coordinator) Disconnect(ctx context.Context, conn notify.Conn) error {
	return c.enqueue(ctx, inbound{conn: conn, disconnect: true})
}

func (c *Coordinator) enqueue(ctx context.Context, ev inbound) error {
	select {
	case <-c.stopped:
		return ErrStopped
	default:
	}

	select {
	case c.inbox <- ev:
		return nil
	case <-c.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handle processes one inbound frame to completion, then sends whatever
// messages it produced
func (c *Coordinator) Handle(ctx context.Context, conn notify.Conn, raw []byte) {
	c.handle(ctx, conn, raw, nil)
}

func (c *Coordinator) handle(ctx context.Context, conn notify.Conn, raw []byte, cred *player.Credential) {
	out := &outbox{}
	defer c.flush(out)

	event, err := protocol.Decode(raw)
	if err != nil {
		c.rejectFrame(conn, err, out)
		return
	}

	c.logger.Debug("event received",
		slog.String("conn_id", conn.ID()),
		slog.String("type", string(event.MessageType())),
	)

	if err := c.dispatch(ctx, conn, event, cred, out); err != nil {
		c.reportError(conn, event, err, out)
	}
}

func (c *Coordinator) dispatch(ctx context.Context, conn notify.Conn, event protocol.Event, cred *player.Credential, out *outbox) error {
	switch ev := event.(type) {
	case protocol.RegRequest:
		return c.handleReg(ctx, conn, ev, cred, out)
	case protocol.CreateRoomRequest:
		return c.handleCreateRoom(ctx, conn, out)
	case protocol.AddUserToRoomRequest:
		return c.handleAddUserToRoom(ctx, conn, ev, out)
	case protocol.AddShipsRequest:
		return c.handleAddShips(ctx, conn, ev, out)
	case protocol.AttackRequest:
		return c.handleAttack(ctx, conn, ev, out)
	case protocol.RandomAttackRequest:
		return c.handleRandomAttack(ctx, conn, ev, out)
	default:
		c.logger.Warn("unhandled event", slog.String("type", string(event.MessageType())))
		return nil
	}
}

// rejectFrame handles a frame that did not decode. Unknown types are
// ignored; malformed frames get a single error reply.
func (c *Coordinator) rejectFrame(conn notify.Conn, err error, out *outbox) {
	if errors.Is(err, model.ErrUnknownMessageType) {
		c.logger.Info("ignoring unknown message type",
			slog.String("conn_id", conn.ID()),
			slog.String("error", err.Error()),
		)
		return
	}
	c.logger.Debug("malformed message",
		slog.String("conn_id", conn.ID()),
		slog.String("error", err.Error()),
	)
	out.reply(conn, protocol.ErrorResponse{Error: invalidFormatText})
}

// reportError replies to the originating connection only
func (c *Coordinator) reportError(conn notify.Conn, event protocol.Event, err error, out *outbox) {
	text, known := errorText(err)
	attrs := []any{
		slog.String("conn_id", conn.ID()),
		slog.String("type", string(event.MessageType())),
		slog.String("error", err.Error()),
	}
	if known {
		c.logger.Info("request rejected", attrs...)
	} else {
		c.logger.Error("request failed", attrs...)
	}
	out.reply(conn, protocol.ErrorResponse{Error: text})
}

// flush sends every collected message. No table lock is held here.
func (c *Coordinator) flush(out *outbox) {
	for _, d := range out.deliveries {
		switch {
		case d.all:
			c.players.Broadcast(d.msg)
		case d.conn != nil:
			c.notifier.Send(d.conn, d.msg)
		default:
			c.notifier.Fanout(c.players.Conns(d.players...), d.msg)
		}
	}
}
