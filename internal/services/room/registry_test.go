package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/seabattle/internal/dependencies/mocks"
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/storage/memory"
	"github.com/mcoot/seabattle/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	storage  *memory.Storage
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	registry *Registry
	ctx      context.Context
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.registry = NewRegistry(s.storage, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

// CreateRoom tests

func (s *RegistrySuite) TestCreateRoomSeatsCreator() {
	s.random.QueueString("abc12345")

	room, err := s.registry.CreateRoom(s.ctx, "alice")
	s.Require().NoError(err)

	s.Equal(model.RoomID("room_abc12345"), room.ID)
	s.Equal([]model.PlayerName{"alice"}, room.Seats)
	s.True(room.IsAvailable())
}

func (s *RegistrySuite) TestCreateRoomRetriesOnCollision() {
	s.random.QueueString("taken", "taken", "fresh")

	_, err := s.registry.CreateRoom(s.ctx, "alice")
	s.Require().NoError(err)

	room, err := s.registry.CreateRoom(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(model.RoomID("room_fresh"), room.ID)
}

func (s *RegistrySuite) TestCreateRoomGivesUpAfterRepeatedCollisions() {
	s.random.QueueString("taken")
	_, _ = s.registry.CreateRoom(s.ctx, "alice")

	for i := 0; i < 20; i++ {
		s.random.QueueString("taken")
	}
	_, err := s.registry.CreateRoom(s.ctx, "bob")
	s.ErrorIs(err, model.ErrIDExhausted)
}

// JoinRoom tests

func (s *RegistrySuite) TestJoinRoomFillsRoom() {
	room, _ := s.registry.CreateRoom(s.ctx, "alice")

	joined, err := s.registry.JoinRoom(s.ctx, room.ID, "bob")
	s.Require().NoError(err)
	s.Equal([]model.PlayerName{"alice", "bob"}, joined.Seats)
	s.True(joined.IsFull())

	available, err := s.registry.ListAvailable(s.ctx)
	s.Require().NoError(err)
	s.Empty(available)
}

func (s *RegistrySuite) TestJoinRoomNotFound() {
	_, err := s.registry.JoinRoom(s.ctx, "missing", "bob")
	s.ErrorIs(err, model.ErrRoomNotFound)
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *RegistrySuite) TestJoinRoomTwiceIsRejected() {
	room, _ := s.registry.CreateRoom(s.ctx, "alice")

	_, err := s.registry.JoinRoom(s.ctx, room.ID, "alice")
	s.ErrorIs(err, model.ErrAlreadySeated)

	stored, err := s.registry.GetRoom(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Len(stored.Seats, 1)
}

func (s *RegistrySuite) TestJoinFullRoomIsRejected() {
	room, _ := s.registry.CreateRoom(s.ctx, "alice")
	_, _ = s.registry.JoinRoom(s.ctx, room.ID, "bob")

	_, err := s.registry.JoinRoom(s.ctx, room.ID, "carol")
	s.ErrorIs(err, model.ErrRoomFull)
}

// Listing tests

func (s *RegistrySuite) TestListAvailableInCreationOrder() {
	s.clock.SetStep(time.Second)
	first, _ := s.registry.CreateRoom(s.ctx, "alice")
	second, _ := s.registry.CreateRoom(s.ctx, "bob")

	available, err := s.registry.ListAvailable(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(available, 2)
	s.Equal(first.ID, available[0].ID)
	s.Equal(second.ID, available[1].ID)

	count, err := s.registry.CountAvailable(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *RegistrySuite) TestFindByPlayer() {
	_, _ = s.registry.CreateRoom(s.ctx, "alice")
	room, _ := s.registry.CreateRoom(s.ctx, "bob")

	found, err := s.registry.FindByPlayer(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(room.ID, found.ID)

	_, err = s.registry.FindByPlayer(s.ctx, "carol")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *RegistrySuite) TestRemoveRoom() {
	room, _ := s.registry.CreateRoom(s.ctx, "alice")

	s.Require().NoError(s.registry.RemoveRoom(s.ctx, room.ID))
	_, err := s.registry.GetRoom(s.ctx, room.ID)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *RegistrySuite) TestDiscardRoomsOfOnlyTouchesAvailableRooms() {
	_, _ = s.registry.CreateRoom(s.ctx, "alice")
	_, _ = s.registry.CreateRoom(s.ctx, "alice")
	full, _ := s.registry.CreateRoom(s.ctx, "bob")
	_, _ = s.registry.JoinRoom(s.ctx, full.ID, "alice")
	other, _ := s.registry.CreateRoom(s.ctx, "carol")

	removed, err := s.registry.DiscardRoomsOf(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(2, removed)

	available, _ := s.registry.ListAvailable(s.ctx)
	s.Require().Len(available, 1)
	s.Equal(other.ID, available[0].ID)

	_, err = s.registry.GetRoom(s.ctx, full.ID)
	s.NoError(err)
}
