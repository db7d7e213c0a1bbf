package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/seabattle/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.RoomTTL = time.Hour
	cfg.GameTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Player tests

func (s *StorageSuite) TestSaveAndGetPlayer() {
	player := &model.Player{
		Name:         "alice",
		PasswordHash: "hash123",
		Wins:         2,
		Index:        0,
		RegisteredAt: time.Now(),
	}

	err := s.storage.SavePlayer(s.ctx, player)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(player.Name, retrieved.Name)
	s.Equal(player.PasswordHash, retrieved.PasswordHash)
	s.Equal(2, retrieved.Wins)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestPlayersHaveNoTTL() {
	_ = s.storage.SavePlayer(s.ctx, &model.Player{Name: "alice"})

	s.Equal(time.Duration(0), s.mini.TTL(playerKey("alice")))
}

func (s *StorageSuite) TestListPlayersInRegistrationOrder() {
	_ = s.storage.SavePlayer(s.ctx, &model.Player{Name: "zed", Index: 0})
	_ = s.storage.SavePlayer(s.ctx, &model.Player{Name: "amy", Index: 1})
	_ = s.storage.SavePlayer(s.ctx, &model.Player{Name: "bob", Index: 2})

	// Updating a player keeps its place
	_ = s.storage.SavePlayer(s.ctx, &model.Player{Name: "zed", Index: 0, Wins: 1})

	players, err := s.storage.ListPlayers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 3)
	s.Equal(model.PlayerName("zed"), players[0].Name)
	s.Equal(1, players[0].Wins)
	s.Equal(model.PlayerName("amy"), players[1].Name)
	s.Equal(model.PlayerName("bob"), players[2].Name)

	count, err := s.storage.CountPlayers(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, count)
}

func (s *StorageSuite) TestListPlayersEmpty() {
	players, err := s.storage.ListPlayers(s.ctx)
	s.Require().NoError(err)
	s.Empty(players)
}

// Room tests

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := &model.Room{
		ID:        "room-1",
		Seats:     []model.PlayerName{"alice"},
		CreatedAt: time.Now(),
	}

	err := s.storage.SaveRoom(s.ctx, room)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRoom(s.ctx, "room-1")
	s.Require().NoError(err)
	s.Equal(room.ID, retrieved.ID)
	s.Equal(room.Seats, retrieved.Seats)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestRoomExists() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "room-1", CreatedAt: time.Now()})

	exists, err := s.storage.RoomExists(s.ctx, "room-1")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.storage.RoomExists(s.ctx, "nonexistent")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *StorageSuite) TestDeleteRoom() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "room-1", CreatedAt: time.Now()})

	err := s.storage.DeleteRoom(s.ctx, "room-1")
	s.Require().NoError(err)

	_, err = s.storage.GetRoom(s.ctx, "room-1")
	s.ErrorIs(err, model.ErrRoomNotFound)

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Empty(rooms)
}

func (s *StorageSuite) TestRoomTTL() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "room-1", CreatedAt: time.Now()})

	ttl := s.mini.TTL(roomKey("room-1"))
	s.True(ttl > 0, "Room should have TTL")
}

func (s *StorageSuite) TestListRoomsInCreationOrder() {
	base := time.Now()
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "b", CreatedAt: base.Add(time.Second)})
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "a", CreatedAt: base})
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "c", CreatedAt: base.Add(2 * time.Second)})

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 3)
	s.Equal(model.RoomID("a"), rooms[0].ID)
	s.Equal(model.RoomID("b"), rooms[1].ID)
	s.Equal(model.RoomID("c"), rooms[2].ID)
}

func (s *StorageSuite) TestListRoomsSkipsExpired() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "room-1", CreatedAt: time.Now()})
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "room-2", CreatedAt: time.Now().Add(time.Second)})

	s.mini.FastForward(2 * time.Hour)
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "room-3", CreatedAt: time.Now().Add(2 * time.Second)})

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 1)
	s.Equal(model.RoomID("room-3"), rooms[0].ID)

	// Expired entries are pruned from the index
	members, err := s.mini.ZMembers(roomOrderKey())
	s.Require().NoError(err)
	s.Equal([]string{"room-3"}, members)
}

// Game tests

func (s *StorageSuite) TestSaveAndGetGame() {
	game := &model.Game{
		ID:   "game-1",
		Turn: "alice",
	}
	game.Slots[0] = model.GamePlayerState{
		Player: "alice",
		Ready:  true,
		Fleet: []model.Ship{
			{Position: model.Position{X: 1, Y: 2}, Vertical: true, Length: 3, Kind: model.ShipLarge},
		},
	}
	game.Slots[1] = model.GamePlayerState{Player: "bob"}

	err := s.storage.SaveGame(s.ctx, game)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(game.ID, retrieved.ID)
	s.Equal(game.Turn, retrieved.Turn)
	s.Equal(game.Slots[0].Fleet, retrieved.Slots[0].Fleet)
	s.Equal(model.PlayerName("bob"), retrieved.Slots[1].Player)
	s.Equal(model.GameStateAwaitingFleets, retrieved.State())
}

func (s *StorageSuite) TestGetGameNotFound() {
	_, err := s.storage.GetGame(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestGameTTL() {
	_ = s.storage.SaveGame(s.ctx, &model.Game{ID: "game-1"})

	ttl := s.mini.TTL(gameKey("game-1"))
	s.True(ttl > 0, "Game should have TTL")
}

func (s *StorageSuite) TestDeleteGame() {
	_ = s.storage.SaveGame(s.ctx, &model.Game{ID: "game-1"})
	_ = s.storage.SaveGame(s.ctx, &model.Game{ID: "game-2"})

	count, err := s.storage.CountGames(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)

	err = s.storage.DeleteGame(s.ctx, "game-1")
	s.Require().NoError(err)

	exists, err := s.storage.GameExists(s.ctx, "game-1")
	s.Require().NoError(err)
	s.False(exists)

	count, err = s.storage.CountGames(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *StorageSuite) TestCountGamesSkipsExpired() {
	_ = s.storage.SaveGame(s.ctx, &model.Game{ID: "game-1"})
	_ = s.storage.SaveGame(s.ctx, &model.Game{ID: "game-2"})

	s.mini.FastForward(2 * time.Hour)
	_ = s.storage.SaveGame(s.ctx, &model.Game{ID: "game-3"})

	count, err := s.storage.CountGames(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)

	// Expired entries are pruned from the index
	members, err := s.mini.Members(gameIndexKey())
	s.Require().NoError(err)
	s.Equal([]string{"game-3"}, members)
}
