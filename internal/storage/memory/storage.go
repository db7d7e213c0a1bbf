package memory

import (
	"context"
	"sync"

	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Each table has its own lock and values are copied in and out, so callers
// never share memory with the table.
type Storage struct {
	playersMu   sync.RWMutex
	players     map[model.PlayerName]*model.Player
	playerOrder []model.PlayerName

	roomsMu   sync.RWMutex
	rooms     map[model.RoomID]*model.Room
	roomOrder []model.RoomID

	gamesMu sync.RWMutex
	games   map[model.GameID]*model.Game
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players: make(map[model.PlayerName]*model.Player),
		rooms:   make(map[model.RoomID]*model.Room),
		games:   make(map[model.GameID]*model.Game),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.playersMu.Lock()
	defer s.playersMu.Unlock()
	if _, ok := s.players[player.Name]; !ok {
		s.playerOrder = append(s.playerOrder, player.Name)
	}
	s.players[player.Name] = player.Clone()
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, name model.PlayerName) (*model.Player, error) {
	s.playersMu.RLock()
	defer s.playersMu.RUnlock()
	player, ok := s.players[name]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player.Clone(), nil
}

func (s *Storage) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	s.playersMu.RLock()
	defer s.playersMu.RUnlock()
	players := make([]*model.Player, 0, len(s.playerOrder))
	for _, name := range s.playerOrder {
		players = append(players, s.players[name].Clone())
	}
	return players, nil
}

func (s *Storage) CountPlayers(ctx context.Context) (int, error) {
	s.playersMu.RLock()
	defer s.playersMu.RUnlock()
	return len(s.players), nil
}

// Room operations

func (s *Storage) SaveRoom(ctx context.Context, room *model.Room) error {
	s.roomsMu.Lock()
	defer s.roomsMu.Unlock()
	if _, ok := s.rooms[room.ID]; !ok {
		s.roomOrder = append(s.roomOrder, room.ID)
	}
	s.rooms[room.ID] = room.Clone()
	return nil
}

func (s *Storage) GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error) {
	s.roomsMu.RLock()
	defer s.roomsMu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (s *Storage) DeleteRoom(ctx context.Context, id model.RoomID) error {
	s.roomsMu.Lock()
	defer s.roomsMu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return nil
	}
	delete(s.rooms, id)
	for i, rid := range s.roomOrder {
		if rid == id {
			s.roomOrder = append(s.roomOrder[:i], s.roomOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Storage) RoomExists(ctx context.Context, id model.RoomID) (bool, error) {
	s.roomsMu.RLock()
	defer s.roomsMu.RUnlock()
	_, ok := s.rooms[id]
	return ok, nil
}

func (s *Storage) ListRooms(ctx context.Context) ([]*model.Room, error) {
	s.roomsMu.RLock()
	defer s.roomsMu.RUnlock()
	rooms := make([]*model.Room, 0, len(s.roomOrder))
	for _, id := range s.roomOrder {
		rooms = append(rooms, s.rooms[id].Clone())
	}
	return rooms, nil
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.Game) error {
	s.gamesMu.Lock()
	defer s.gamesMu.Unlock()
	s.games[game.ID] = game.Clone()
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.gamesMu.RLock()
	defer s.gamesMu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game.Clone(), nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.gamesMu.Lock()
	defer s.gamesMu.Unlock()
	delete(s.games, id)
	return nil
}

func (s *Storage) GameExists(ctx context.Context, id model.GameID) (bool, error) {
	s.gamesMu.RLock()
	defer s.gamesMu.RUnlock()
	_, ok := s.games[id]
	return ok, nil
}

func (s *Storage) CountGames(ctx context.Context) (int, error) {
	s.gamesMu.RLock()
	defer s.gamesMu.RUnlock()
	return len(s.games), nil
}
