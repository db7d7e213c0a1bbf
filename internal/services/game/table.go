package game

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/seabattle/internal/dependencies/clock"
	"github.com/mcoot/seabattle/internal/dependencies/random"
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/services/fleet"
	"github.com/mcoot/seabattle/internal/storage"
)

const (
	// IDPrefix prefixes every generated game id
	IDPrefix = "game_"
	// IDLength is the length of the random part of a game id
	IDLength = 8
)

// Table owns active games and drives their turn state machine
type Table struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
	locks   *gameLocks
}

// NewTable creates a new game Table
func NewTable(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Table {
	return &Table{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "game-table")),
		locks:   newGameLocks(),
	}
}

// CreateFromRoom starts a game for a full room. Slots follow seat order and
// the first seated player moves first.
func (t *Table) CreateFromRoom(ctx context.Context, room *model.Room) (*model.Game, error) {
	if !room.IsFull() {
		return nil, model.ErrRoomNotFull
	}

	id, err := random.UniqueID(ctx, t.random, IDPrefix, IDLength, func(ctx context.Context, id string) (bool, error) {
		return t.storage.GameExists(ctx, model.GameID(id))
	})
	if err != nil {
		return nil, fmt.Errorf("generate game id: %w", err)
	}

	now := t.clock.Now()
	game := &model.Game{
		ID:        model.GameID(id),
		Turn:      room.Seats[0],
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i := range game.Slots {
		game.Slots[i] = model.GamePlayerState{Player: room.Seats[i]}
	}

	if err := t.storage.SaveGame(ctx, game); err != nil {
		t.logger.Error("failed to save game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("save game: %w", err)
	}

	t.logger.Info("game created",
		slog.String("game_id", string(game.ID)),
		slog.String("room_id", string(room.ID)),
		slog.Any("players", game.Players()),
	)
	return game, nil
}

// GetGame retrieves a game by id
func (t *Table) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return t.storage.GetGame(ctx, id)
}

// SubmitFleet stores a player's fleet and marks them ready. A fleet can be
// submitted once; it must pass placement validation.
func (t *Table) SubmitFleet(ctx context.Context, id model.GameID, name model.PlayerName, ships []model.Ship) (*model.Game, error) {
	unlock := t.locks.lock(id)
	defer unlock()

	game, err := t.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	slot := game.Participant(name)
	if slot == nil {
		return nil, model.ErrPlayerNotInGame
	}
	if slot.Ready {
		return nil, model.ErrFleetAlreadySubmitted
	}
	if err := fleet.Validate(ships, model.BoardSize); err != nil {
		return nil, err
	}

	placed := make([]model.Ship, len(ships))
	for i, ship := range ships {
		ship.Hits = 0
		ship.Damage = nil
		placed[i] = ship
	}
	slot.Fleet = placed
	slot.Ready = true
	game.UpdatedAt = t.clock.Now()

	if err := t.storage.SaveGame(ctx, game); err != nil {
		return nil, fmt.Errorf("save game: %w", err)
	}

	t.logger.Info("fleet submitted",
		slog.String("game_id", string(id)),
		slog.String("player", string(name)),
		slog.Int("ships", len(placed)),
		slog.Bool("game_ready", game.IsReady()),
	)
	return game, nil
}

// IsReady reports whether both fleets are in
func (t *Table) IsReady(ctx context.Context, id model.GameID) (bool, error) {
	game, err := t.storage.GetGame(ctx, id)
	if err != nil {
		return false, err
	}
	return game.IsReady(), nil
}

// IsPlayerTurn reports whether the named player may attack next
func (t *Table) IsPlayerTurn(ctx context.Context, id model.GameID, name model.PlayerName) (bool, error) {
	game, err := t.storage.GetGame(ctx, id)
	if err != nil {
		return false, err
	}
	return !game.Finished && game.Turn == name, nil
}

// ResolveAttack fires the attacker's shot at the opponent's fleet.
// A miss passes the turn; a hit keeps it. When the last opposing ship is
// destroyed the game is marked finished and removed from the table; the
// returned snapshot is the final state.
func (t *Table) ResolveAttack(ctx context.Context, id model.GameID, target model.Position, attacker model.PlayerName) (AttackResult, *model.Game, error) {
	unlock := t.locks.lock(id)
	defer unlock()

	game, err := t.storage.GetGame(ctx, id)
	if err != nil {
		return AttackResult{}, nil, err
	}

	opponent := game.Opponent(attacker)
	if opponent == nil {
		return AttackResult{}, nil, model.ErrPlayerNotInGame
	}
	if game.Finished {
		return AttackResult{}, nil, model.ErrGameNotFound
	}
	if !game.IsReady() {
		return AttackResult{}, nil, model.ErrGameNotStarted
	}
	if game.Turn != attacker {
		return AttackResult{}, nil, model.ErrNotPlayerTurn
	}

	result := Resolve(opponent.Fleet, target)
	if !result.Hit {
		game.Turn = opponent.Player
	}
	game.UpdatedAt = t.clock.Now()

	if result.GameOver {
		game.Finished = true
		if err := t.storage.DeleteGame(ctx, id); err != nil {
			return AttackResult{}, nil, fmt.Errorf("delete game: %w", err)
		}
		t.logger.Info("game finished",
			slog.String("game_id", string(id)),
			slog.String("winner", string(attacker)),
		)
		return result, game, nil
	}

	if err := t.storage.SaveGame(ctx, game); err != nil {
		return AttackResult{}, nil, fmt.Errorf("save game: %w", err)
	}

	t.logger.Debug("attack resolved",
		slog.String("game_id", string(id)),
		slog.String("attacker", string(attacker)),
		slog.Int("x", target.X),
		slog.Int("y", target.Y),
		slog.String("status", result.Status()),
	)
	return result, game, nil
}

// RandomAttackCoordinates picks a cell uniformly over the board. Cells
// already fired at are not excluded.
func (t *Table) RandomAttackCoordinates() model.Position {
	return model.Position{
		X: t.random.Intn(model.BoardSize),
		Y: t.random.Intn(model.BoardSize),
	}
}

// RemoveGame discards a game. Removing an unknown game is not an error.
func (t *Table) RemoveGame(ctx context.Context, id model.GameID) error {
	unlock := t.locks.lock(id)
	defer unlock()
	return t.storage.DeleteGame(ctx, id)
}

// CountGames returns the number of active games
func (t *Table) CountGames(ctx context.Context) (int, error) {
	return t.storage.CountGames(ctx)
}
