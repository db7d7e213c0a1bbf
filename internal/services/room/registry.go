package room

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/seabattle/internal/dependencies/clock"
	"github.com/mcoot/seabattle/internal/dependencies/random"
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/storage"
)

const (
	// IDPrefix prefixes every generated room id
	IDPrefix = "room_"
	// IDLength is the length of the random part of a room id
	IDLength = 8
)

// Registry manages pending matchmaking rooms
type Registry struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	// mu serializes room mutations so seat checks and writes are atomic
	mu sync.Mutex
}

// NewRegistry creates a new room Registry
func NewRegistry(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Registry {
	return &Registry{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "room-registry")),
	}
}

// CreateRoom opens a new room seated by the given player
func (r *Registry) CreateRoom(ctx context.Context, name model.PlayerName) (*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := random.UniqueID(ctx, r.random, IDPrefix, IDLength, func(ctx context.Context, id string) (bool, error) {
		return r.storage.RoomExists(ctx, model.RoomID(id))
	})
	if err != nil {
		return nil, fmt.Errorf("generate room id: %w", err)
	}

	room := &model.Room{
		ID:        model.RoomID(id),
		Seats:     []model.PlayerName{name},
		CreatedAt: r.clock.Now(),
	}
	if err := r.storage.SaveRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("save room: %w", err)
	}

	r.logger.Info("room created",
		slog.String("room_id", string(room.ID)),
		slog.String("player", string(name)),
	)
	return room, nil
}

// JoinRoom seats a player in an existing room. The caller converts the room
// into a game once it is full.
func (r *Registry) JoinRoom(ctx context.Context, id model.RoomID, name model.PlayerName) (*model.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, err := r.storage.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	if room.HasSeat(name) {
		return nil, model.ErrAlreadySeated
	}
	if room.IsFull() {
		return nil, model.ErrRoomFull
	}

	room.Seats = append(room.Seats, name)
	if err := r.storage.SaveRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("save room: %w", err)
	}

	r.logger.Info("player joined room",
		slog.String("room_id", string(room.ID)),
		slog.String("player", string(name)),
		slog.Int("seats", len(room.Seats)),
	)
	return room, nil
}

// GetRoom retrieves a room by id
func (r *Registry) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	return r.storage.GetRoom(ctx, id)
}

// ListAvailable returns rooms with exactly one seated player, oldest first
func (r *Registry) ListAvailable(ctx context.Context) ([]*model.Room, error) {
	rooms, err := r.storage.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	available := make([]*model.Room, 0, len(rooms))
	for _, room := range rooms {
		if room.IsAvailable() {
			available = append(available, room)
		}
	}
	return available, nil
}

// RemoveRoom discards a room. Removing an unknown room is not an error.
func (r *Registry) RemoveRoom(ctx context.Context, id model.RoomID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.storage.DeleteRoom(ctx, id)
}

// FindByPlayer returns the oldest room with a seat for the named player
func (r *Registry) FindByPlayer(ctx context.Context, name model.PlayerName) (*model.Room, error) {
	rooms, err := r.storage.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	for _, room := range rooms {
		if room.HasSeat(name) {
			return room, nil
		}
	}
	return nil, model.ErrRoomNotFound
}

// DiscardRoomsOf removes every available room seated by the named player and
// returns how many were removed
func (r *Registry) DiscardRoomsOf(ctx context.Context, name model.PlayerName) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms, err := r.storage.ListRooms(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, room := range rooms {
		if !room.IsAvailable() || !room.HasSeat(name) {
			continue
		}
		if err := r.storage.DeleteRoom(ctx, room.ID); err != nil {
			return removed, fmt.Errorf("delete room: %w", err)
		}
		removed++
	}

	if removed > 0 {
		r.logger.Info("discarded rooms",
			slog.String("player", string(name)),
			slog.Int("count", removed),
		)
	}
	return removed, nil
}

// CountAvailable returns the number of joinable rooms
func (r *Registry) CountAvailable(ctx context.Context) (int, error) {
	rooms, err := r.ListAvailable(ctx)
	if err != nil {
		return 0, err
	}
	return len(rooms), nil
}
