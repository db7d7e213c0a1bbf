package memory

import (
	"context"
	"testing"
	"time"

	"github.com/mcoot/seabattle/internal/model"
	"github.com/stretchr/testify/suite"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// Player tests

func (s *StorageSuite) TestSaveAndGetPlayer() {
	player := &model.Player{
		Name:         "alice",
		PasswordHash: "hash123",
		RegisteredAt: time.Now(),
	}

	err := s.storage.SavePlayer(s.ctx, player)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetPlayer(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(player.Name, retrieved.Name)
	s.Equal(player.PasswordHash, retrieved.PasswordHash)
}

func (s *StorageSuite) TestGetPlayerNotFound() {
	_, err := s.storage.GetPlayer(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StorageSuite) TestPlayerIsCopied() {
	player := &model.Player{Name: "alice"}
	_ = s.storage.SavePlayer(s.ctx, player)

	player.Wins = 5
	retrieved, _ := s.storage.GetPlayer(s.ctx, "alice")
	s.Equal(0, retrieved.Wins)

	retrieved.Wins = 7
	again, _ := s.storage.GetPlayer(s.ctx, "alice")
	s.Equal(0, again.Wins)
}

func (s *StorageSuite) TestListPlayersInRegistrationOrder() {
	_ = s.storage.SavePlayer(s.ctx, &model.Player{Name: "zed"})
	_ = s.storage.SavePlayer(s.ctx, &model.Player{Name: "amy"})
	_ = s.storage.SavePlayer(s.ctx, &model.Player{Name: "zed", Wins: 3})

	players, err := s.storage.ListPlayers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 2)
	s.Equal(model.PlayerName("zed"), players[0].Name)
	s.Equal(3, players[0].Wins)
	s.Equal(model.PlayerName("amy"), players[1].Name)

	count, err := s.storage.CountPlayers(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}

// Room tests

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := &model.Room{ID: "room-1", Seats: []model.PlayerName{"alice"}, CreatedAt: time.Now()}

	err := s.storage.SaveRoom(s.ctx, room)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRoom(s.ctx, "room-1")
	s.Require().NoError(err)
	s.Equal(room.Seats, retrieved.Seats)

	// Mutating the returned seats does not touch the table
	retrieved.Seats = append(retrieved.Seats, "bob")
	again, _ := s.storage.GetRoom(s.ctx, "room-1")
	s.Len(again.Seats, 1)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestRoomExistsAndDelete() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "room-1"})

	exists, err := s.storage.RoomExists(s.ctx, "room-1")
	s.Require().NoError(err)
	s.True(exists)

	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "room-1"))
	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "room-1"))

	exists, err = s.storage.RoomExists(s.ctx, "room-1")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *StorageSuite) TestListRoomsInCreationOrder() {
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "b"})
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "a"})
	_ = s.storage.SaveRoom(s.ctx, &model.Room{ID: "c"})
	_ = s.storage.DeleteRoom(s.ctx, "a")

	rooms, err := s.storage.ListRooms(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(rooms, 2)
	s.Equal(model.RoomID("b"), rooms[0].ID)
	s.Equal(model.RoomID("c"), rooms[1].ID)
}

// Game tests

func (s *StorageSuite) TestSaveAndGetGame() {
	game := &model.Game{ID: "game-1", Turn: "alice"}
	game.Slots[0].Player = "alice"
	game.Slots[0].Fleet = []model.Ship{{Position: model.Position{X: 0, Y: 0}, Length: 2}}
	game.Slots[1].Player = "bob"

	err := s.storage.SaveGame(s.ctx, game)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetGame(s.ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(game.Turn, retrieved.Turn)

	// Fleet state is deep-copied
	retrieved.Slots[0].Fleet[0].Strike(model.Position{X: 0, Y: 0})
	again, _ := s.storage.GetGame(s.ctx, "game-1")
	s.Equal(0, again.Slots[0].Fleet[0].Hits)
}

func (s *StorageSuite) TestGetGameNotFound() {
	_, err := s.storage.GetGame(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *StorageSuite) TestDeleteGame() {
	_ = s.storage.SaveGame(s.ctx, &model.Game{ID: "game-1"})

	count, _ := s.storage.CountGames(s.ctx)
	s.Equal(1, count)

	s.Require().NoError(s.storage.DeleteGame(s.ctx, "game-1"))

	exists, err := s.storage.GameExists(s.ctx, "game-1")
	s.Require().NoError(err)
	s.False(exists)
}
