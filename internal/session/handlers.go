package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/notify"
	"github.com/mcoot/seabattle/internal/protocol"
	"github.com/mcoot/seabattle/internal/services/player"
)

func (c *Coordinator) handleReg(ctx context.Context, conn notify.Conn, req protocol.RegRequest, cred *player.Credential, out *outbox) error {
	if cred == nil {
		cred = c.players.Check(ctx, model.PlayerName(req.Name), req.Password)
	}
	p, err := c.players.RegisterChecked(ctx, cred, conn)
	if err != nil {
		if text, known := errorText(err); known {
			out.reply(conn, protocol.RegResponse{
				Name:      req.Name,
				Index:     -1,
				Error:     true,
				ErrorText: text,
			})
		}
		return err
	}

	out.reply(conn, protocol.RegResponse{
		Name:  string(p.Name),
		Index: p.Index,
	})
	c.queueLobby(ctx, out)
	c.queueWinners(ctx, out)
	return nil
}

func (c *Coordinator) handleCreateRoom(ctx context.Context, conn notify.Conn, out *outbox) error {
	p, err := c.caller(ctx, conn)
	if err != nil {
		return err
	}

	if _, err := c.rooms.CreateRoom(ctx, p.Name); err != nil {
		return err
	}
	c.queueLobby(ctx, out)
	return nil
}

func (c *Coordinator) handleAddUserToRoom(ctx context.Context, conn notify.Conn, req protocol.AddUserToRoomRequest, out *outbox) error {
	p, err := c.caller(ctx, conn)
	if err != nil {
		return err
	}

	room, err := c.rooms.JoinRoom(ctx, model.RoomID(req.IndexRoom), p.Name)
	if err != nil {
		return err
	}

	if room.IsFull() {
		err = c.startGame(ctx, room, out)
	}
	c.queueLobby(ctx, out)
	return err
}

// startGame converts a full room into a game: the game is created first,
// then the room and any other pending rooms of both players are discarded
func (c *Coordinator) startGame(ctx context.Context, room *model.Room, out *outbox) error {
	g, err := c.games.CreateFromRoom(ctx, room)
	if err != nil {
		if rmErr := c.rooms.RemoveRoom(ctx, room.ID); rmErr != nil {
			c.logger.Error("failed to remove room",
				slog.String("room_id", string(room.ID)),
				slog.String("error", rmErr.Error()),
			)
		}
		return err
	}

	if err := c.rooms.RemoveRoom(ctx, room.ID); err != nil {
		return err
	}
	for _, name := range room.Seats {
		if _, err := c.rooms.DiscardRoomsOf(ctx, name); err != nil {
			c.logger.Error("failed to discard rooms",
				slog.String("player", string(name)),
				slog.String("error", err.Error()),
			)
		}
	}

	for _, name := range g.Players() {
		out.toPlayers(protocol.CreateGame{
			IDGame:   string(g.ID),
			IDPlayer: string(name),
		}, name)
	}
	return nil
}

func (c *Coordinator) handleAddShips(ctx context.Context, conn notify.Conn, req protocol.AddShipsRequest, out *outbox) error {
	p, err := c.caller(ctx, conn)
	if err != nil {
		return err
	}
	if err := checkIdentity(p, req.IndexPlayer); err != nil {
		return err
	}

	g, err := c.games.SubmitFleet(ctx, model.GameID(req.GameID), p.Name, protocol.ShipsToModel(req.Ships))
	if err != nil {
		return err
	}
	if !g.IsReady() {
		return nil
	}

	for _, slot := range g.Slots {
		out.toPlayers(protocol.StartGame{
			Ships:              protocol.ShipsFromModel(slot.Fleet),
			CurrentPlayerIndex: string(slot.Player),
		}, slot.Player)
	}
	out.toPlayers(protocol.Turn{CurrentPlayer: string(g.Turn)}, g.Players()...)
	return nil
}

func (c *Coordinator) handleAttack(ctx context.Context, conn notify.Conn, req protocol.AttackRequest, out *outbox) error {
	p, err := c.caller(ctx, conn)
	if err != nil {
		return err
	}
	if err := checkIdentity(p, req.IndexPlayer); err != nil {
		return err
	}
	return c.attack(ctx, p, model.GameID(req.GameID), model.Position{X: req.X, Y: req.Y}, out)
}

func (c *Coordinator) handleRandomAttack(ctx context.Context, conn notify.Conn, req protocol.RandomAttackRequest, out *outbox) error {
	p, err := c.caller(ctx, conn)
	if err != nil {
		return err
	}
	if err := checkIdentity(p, req.IndexPlayer); err != nil {
		return err
	}
	return c.attack(ctx, p, model.GameID(req.GameID), c.games.RandomAttackCoordinates(), out)
}

// attack resolves a shot and announces it to both participants, followed by
// a turn change on a miss or the finish on game over
func (c *Coordinator) attack(ctx context.Context, attacker *model.Player, id model.GameID, target model.Position, out *outbox) error {
	result, g, err := c.games.ResolveAttack(ctx, id, target, attacker.Name)
	if err != nil {
		return err
	}

	participants := g.Players()
	out.toPlayers(protocol.AttackResponse{
		Position:      protocol.PositionRecord{X: target.X, Y: target.Y},
		CurrentPlayer: string(attacker.Name),
		Status:        protocol.AttackStatus(result.Status()),
	}, participants...)

	switch {
	case result.GameOver:
		out.toPlayers(protocol.Finish{WinPlayer: string(attacker.Name)}, participants...)
		if err := c.players.IncrementWins(ctx, attacker.Name); err != nil {
			c.logger.Error("failed to record win",
				slog.String("player", string(attacker.Name)),
				slog.String("error", err.Error()),
			)
		}
		c.queueWinners(ctx, out)

	case !result.Hit:
		out.toPlayers(protocol.Turn{CurrentPlayer: string(g.Turn)}, participants...)
	}
	return nil
}

// HandleDisconnect releases the player bound to conn and discards their
// pending rooms. Games are kept so the player can resume by registering again.
func (c *Coordinator) HandleDisconnect(ctx context.Context, conn notify.Conn) {
	out := &outbox{}
	defer c.flush(out)

	name, ok := c.players.Unbind(conn)
	if !ok {
		return
	}
	c.logger.Info("player disconnected",
		slog.String("conn_id", conn.ID()),
		slog.String("player", string(name)),
	)

	removed, err := c.rooms.DiscardRoomsOf(ctx, name)
	if err != nil {
		c.logger.Error("failed to discard rooms",
			slog.String("player", string(name)),
			slog.String("error", err.Error()),
		)
	}
	if removed > 0 {
		c.queueLobby(ctx, out)
	}
}

// caller resolves the player registered on conn
func (c *Coordinator) caller(ctx context.Context, conn notify.Conn) (*model.Player, error) {
	p, err := c.players.FindByConn(ctx, conn)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, model.ErrNotRegistered
		}
		return nil, err
	}
	return p, nil
}

// checkIdentity rejects requests that name a player other than the caller.
// An omitted indexPlayer means the caller.
func checkIdentity(p *model.Player, indexPlayer protocol.FlexID) error {
	if indexPlayer != "" && model.PlayerName(indexPlayer) != p.Name {
		return model.ErrIdentityMismatch
	}
	return nil
}

func (c *Coordinator) queueLobby(ctx context.Context, out *outbox) {
	rooms, err := c.rooms.ListAvailable(ctx)
	if err != nil {
		c.logger.Error("failed to list rooms", slog.String("error", err.Error()))
		return
	}
	out.broadcast(protocol.NewUpdateRoom(rooms))
}

func (c *Coordinator) queueWinners(ctx context.Context, out *outbox) {
	winners, err := c.players.ListWinners(ctx)
	if err != nil {
		c.logger.Error("failed to list winners", slog.String("error", err.Error()))
		return
	}
	out.broadcast(protocol.NewUpdateWinners(winners))
}
