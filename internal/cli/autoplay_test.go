package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/seabattle/internal/dependencies/mocks"
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/protocol"
	"github.com/mcoot/seabattle/internal/services/fleet"
)

func envelope(t *testing.T, p protocol.Payload) *protocol.Envelope {
	t.Helper()
	frame, err := protocol.Encode(p)
	require.NoError(t, err)
	env, err := protocol.ParseEnvelope(frame)
	require.NoError(t, err)
	return env
}

func handle(t *testing.T, p *AutoPlayer, msg protocol.Payload) ([]protocol.Payload, bool) {
	t.Helper()
	replies, done, err := p.Handle(envelope(t, msg))
	require.NoError(t, err)
	return replies, done
}

func newTestPlayer(name string) *AutoPlayer {
	return NewAutoPlayer(name, mocks.NewMockRandom(), &bytes.Buffer{}, false)
}

func TestAutoPlayer_CreatesRoomAfterRegistering(t *testing.T) {
	p := newTestPlayer("alice")

	replies, done := handle(t, p, protocol.RegResponse{Name: "alice", Index: 0})
	assert.False(t, done)
	assert.Equal(t, []protocol.Payload{protocol.CreateRoomRequest{}}, replies)

	// Lobby updates are ignored once seated
	replies, _ = handle(t, p, protocol.UpdateRoom{{RoomID: "room_a", RoomUsers: []protocol.RoomUser{{Name: "alice"}}}})
	assert.Empty(t, replies)
}

func TestAutoPlayer_JoinsNamedRoom(t *testing.T) {
	p := newTestPlayer("bob")
	p.JoinRoom = "room_x"

	replies, _ := handle(t, p, protocol.RegResponse{Name: "bob", Index: 1})
	assert.Equal(t, []protocol.Payload{protocol.AddUserToRoomRequest{IndexRoom: "room_x"}}, replies)

	_, _, err := p.Handle(envelope(t, protocol.ErrorResponse{Error: "room is full"}))
	assert.ErrorContains(t, err, "room_x")
}

func TestAutoPlayer_RegistrationFailure(t *testing.T) {
	p := newTestPlayer("bob")

	_, _, err := p.Handle(envelope(t, protocol.RegResponse{Name: "bob", Index: -1, Error: true, ErrorText: "wrong password"}))
	assert.ErrorContains(t, err, "wrong password")
}

func TestAutoPlayer_JoinAnySkipsOwnRoom(t *testing.T) {
	p := newTestPlayer("bob")
	p.JoinAny = true

	replies, _ := handle(t, p, protocol.RegResponse{Name: "bob", Index: 1})
	assert.Empty(t, replies)

	lobby := protocol.UpdateRoom{
		{RoomID: "room_mine", RoomUsers: []protocol.RoomUser{{Name: "bob", Index: 0}}},
		{RoomID: "room_theirs", RoomUsers: []protocol.RoomUser{{Name: "alice", Index: 0}}},
	}
	replies, _ = handle(t, p, lobby)
	assert.Equal(t, []protocol.Payload{protocol.AddUserToRoomRequest{IndexRoom: "room_theirs"}}, replies)

	// A rejected join falls back to opening a room
	replies, _ = handle(t, p, protocol.ErrorResponse{Error: "room is full"})
	assert.Equal(t, []protocol.Payload{protocol.CreateRoomRequest{}}, replies)
}

func TestAutoPlayer_JoinAnyCreatesWhenLobbyEmpty(t *testing.T) {
	p := newTestPlayer("bob")
	p.JoinAny = true

	handle(t, p, protocol.RegResponse{Name: "bob", Index: 1})
	replies, _ := handle(t, p, protocol.UpdateRoom{})
	assert.Equal(t, []protocol.Payload{protocol.CreateRoomRequest{}}, replies)
}

func TestAutoPlayer_PlacesLegalFleet(t *testing.T) {
	p := newTestPlayer("alice")

	replies, _ := handle(t, p, protocol.CreateGame{IDGame: "game_1", IDPlayer: "alice"})
	require.Len(t, replies, 1)

	req, ok := replies[0].(protocol.AddShipsRequest)
	require.True(t, ok)
	assert.Equal(t, protocol.FlexID("game_1"), req.GameID)
	assert.Equal(t, protocol.FlexID("alice"), req.IndexPlayer)
	assert.Len(t, req.Ships, len(fleet.StandardComposition))
	assert.NoError(t, fleet.Validate(protocol.ShipsToModel(req.Ships), model.BoardSize))
	assert.Equal(t, "game_1", p.GameID())
}

func TestAutoPlayer_FiresOnlyOnOwnTurn(t *testing.T) {
	p := newTestPlayer("alice")
	handle(t, p, protocol.CreateGame{IDGame: "game_1", IDPlayer: "alice"})

	replies, _ := handle(t, p, protocol.Turn{CurrentPlayer: "bob"})
	assert.Empty(t, replies)

	replies, _ = handle(t, p, protocol.Turn{CurrentPlayer: "alice"})
	require.Len(t, replies, 1)
	attack, ok := replies[0].(protocol.AttackRequest)
	require.True(t, ok)
	assert.Equal(t, protocol.FlexID("game_1"), attack.GameID)
	assert.Equal(t, 0, attack.X)
	assert.Equal(t, 0, attack.Y)
}

func TestAutoPlayer_HitKeepsFiringAtNewCells(t *testing.T) {
	p := newTestPlayer("alice")
	handle(t, p, protocol.CreateGame{IDGame: "game_1", IDPlayer: "alice"})

	// Opponent's shots need no reply
	replies, _ := handle(t, p, protocol.AttackResponse{
		Position:      protocol.PositionRecord{X: 3, Y: 3},
		CurrentPlayer: "bob",
		Status:        protocol.StatusShot,
	})
	assert.Empty(t, replies)

	replies, _ = handle(t, p, protocol.AttackResponse{
		Position:      protocol.PositionRecord{X: 0, Y: 0},
		CurrentPlayer: "alice",
		Status:        protocol.StatusShot,
	})
	require.Len(t, replies, 1)
	attack := replies[0].(protocol.AttackRequest)
	assert.Equal(t, 1, attack.X, "already-hit cell is skipped")
	assert.Equal(t, 0, attack.Y)

	replies, _ = handle(t, p, protocol.AttackResponse{
		Position:      protocol.PositionRecord{X: 1, Y: 0},
		CurrentPlayer: "alice",
		Status:        protocol.StatusMiss,
	})
	assert.Empty(t, replies)
}

func TestAutoPlayer_FallsBackToRandomAttackWhenBoardExhausted(t *testing.T) {
	p := newTestPlayer("alice")
	handle(t, p, protocol.CreateGame{IDGame: "game_1", IDPlayer: "alice"})
	for y := 0; y < model.BoardSize; y++ {
		for x := 0; x < model.BoardSize; x++ {
			p.shots.Set(model.Position{X: x, Y: y}, model.CellMiss)
		}
	}

	replies, _ := handle(t, p, protocol.Turn{CurrentPlayer: "alice"})
	assert.Equal(t, []protocol.Payload{protocol.RandomAttackRequest{GameID: "game_1", IndexPlayer: "alice"}}, replies)
}

func TestAutoPlayer_FinishEndsPlay(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewAutoPlayer("alice", mocks.NewMockRandom(), out, false)

	replies, done := handle(t, p, protocol.Finish{WinPlayer: "bob"})
	assert.True(t, done)
	assert.Empty(t, replies)
	assert.Equal(t, "bob", p.Winner())
	assert.Contains(t, out.String(), "Winner: bob")
}

func TestWriteBoard(t *testing.T) {
	grid := model.NewGrid(3)
	grid.Set(model.Position{X: 0, Y: 0}, model.CellShip)
	grid.Set(model.Position{X: 1, Y: 1}, model.CellHit)
	grid.Set(model.Position{X: 2, Y: 2}, model.CellMiss)

	var buf bytes.Buffer
	writeBoard(&buf, grid)

	assert.Equal(t, "     0  1  2 \n"+
		"   +---------+\n"+
		" 0 | #  .  . |\n"+
		" 1 | .  X  . |\n"+
		" 2 | .  .  o |\n"+
		"   +---------+\n", buf.String())
}
