package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/mcoot/seabattle/internal/dependencies/random"
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/protocol"
	"github.com/mcoot/seabattle/internal/services/fleet"
)

// AutoPlayer plays a game on its own: it places a random legal fleet and
// fires at cells it has not tried yet.
type AutoPlayer struct {
	Name     string
	JoinRoom string // room to join; empty creates or joins per JoinAny
	JoinAny  bool   // join the first open room, creating one if none exist

	rng     random.Random
	out     io.Writer
	verbose bool

	seated  bool
	joining bool // join request sent, game not created yet
	gameID  string
	fleet   []model.Ship
	shots   *model.Grid
	winner  string
}

// NewAutoPlayer creates an AutoPlayer writing progress to out
func NewAutoPlayer(name string, rng random.Random, out io.Writer, verbose bool) *AutoPlayer {
	return &AutoPlayer{
		Name:    name,
		rng:     rng,
		out:     out,
		verbose: verbose,
	}
}

// Winner returns the winner once the game has finished
func (p *AutoPlayer) Winner() string {
	return p.winner
}

// GameID returns the current game, if any
func (p *AutoPlayer) GameID() string {
	return p.gameID
}

// Handle consumes one server message and returns the requests to send in
// reply. done is true once the game has finished.
func (p *AutoPlayer) Handle(env *protocol.Envelope) (replies []protocol.Payload, done bool, err error) {
	switch env.Type {
	case protocol.TypeReg:
		var reg protocol.RegResponse
		if err := env.Unmarshal(&reg); err != nil {
			return nil, false, err
		}
		if reg.Error {
			return nil, false, fmt.Errorf("registration failed: %s", reg.ErrorText)
		}
		p.logf("Registered as %s (index %d)\n", reg.Name, reg.Index)
		switch {
		case p.JoinRoom != "":
			p.seated = true
			p.joining = true
			return []protocol.Payload{protocol.AddUserToRoomRequest{IndexRoom: protocol.FlexID(p.JoinRoom)}}, false, nil
		case !p.JoinAny:
			p.seated = true
			return []protocol.Payload{protocol.CreateRoomRequest{}}, false, nil
		}

	case protocol.TypeUpdateRoom:
		if p.seated || !p.JoinAny {
			return nil, false, nil
		}
		var lobby protocol.UpdateRoom
		if err := env.Unmarshal(&lobby); err != nil {
			return nil, false, err
		}
		p.seated = true
		for _, entry := range lobby {
			mine := slices.ContainsFunc(entry.RoomUsers, func(u protocol.RoomUser) bool { return u.Name == p.Name })
			if !mine {
				p.joining = true
				p.logf("Joining room %s\n", entry.RoomID)
				return []protocol.Payload{protocol.AddUserToRoomRequest{IndexRoom: protocol.FlexID(entry.RoomID)}}, false, nil
			}
		}
		p.logf("No open rooms, creating one\n")
		return []protocol.Payload{protocol.CreateRoomRequest{}}, false, nil

	case protocol.TypeCreateGame:
		var created protocol.CreateGame
		if err := env.Unmarshal(&created); err != nil {
			return nil, false, err
		}
		ships, err := fleet.Random(p.rng, model.BoardSize, fleet.StandardComposition)
		if err != nil {
			return nil, false, err
		}
		p.joining = false
		p.gameID = created.IDGame
		p.fleet = ships
		p.shots = model.NewGrid(model.BoardSize)
		p.logf("Game %s created, placing %d ships\n", created.IDGame, len(ships))
		return []protocol.Payload{protocol.AddShipsRequest{
			GameID:      protocol.FlexID(p.gameID),
			IndexPlayer: protocol.FlexID(p.Name),
			Ships:       protocol.ShipsFromModel(ships),
		}}, false, nil

	case protocol.TypeStartGame:
		if p.verbose {
			grid := model.NewGrid(model.BoardSize)
			grid.PlaceFleet(p.fleet)
			p.logf("Game started, your fleet:\n")
			writeBoard(p.out, grid)
		}

	case protocol.TypeTurn:
		var turn protocol.Turn
		if err := env.Unmarshal(&turn); err != nil {
			return nil, false, err
		}
		if turn.CurrentPlayer == p.Name {
			return []protocol.Payload{p.fire()}, false, nil
		}

	case protocol.TypeAttack:
		var attack protocol.AttackResponse
		if err := env.Unmarshal(&attack); err != nil {
			return nil, false, err
		}
		target := model.Position{X: attack.Position.X, Y: attack.Position.Y}
		if attack.CurrentPlayer != p.Name {
			if p.verbose {
				p.logf("%s fired at (%d,%d): %s\n", attack.CurrentPlayer, target.X, target.Y, attack.Status)
			}
			return nil, false, nil
		}
		p.logf("Fired at (%d,%d): %s\n", target.X, target.Y, attack.Status)
		if attack.Status == protocol.StatusMiss {
			p.shots.Set(target, model.CellMiss)
			return nil, false, nil
		}
		p.shots.Set(target, model.CellHit)
		// A hit keeps the turn; a kill may also have ended the game, in
		// which case the extra shot is rejected and finish follows
		return []protocol.Payload{p.fire()}, false, nil

	case protocol.TypeFinish:
		var finish protocol.Finish
		if err := env.Unmarshal(&finish); err != nil {
			return nil, false, err
		}
		p.winner = finish.WinPlayer
		if finish.WinPlayer == p.Name {
			p.logf("You won!\n")
		} else {
			p.logf("Winner: %s\n", finish.WinPlayer)
		}
		if p.verbose && p.shots != nil {
			writeBoard(p.out, p.shots)
		}
		return nil, true, nil

	case protocol.TypeError:
		var resp protocol.ErrorResponse
		if err := env.Unmarshal(&resp); err != nil {
			return nil, false, err
		}
		if p.verbose {
			p.logf("Server error: %s\n", resp.Error)
		}
		if p.joining && p.JoinRoom != "" {
			return nil, false, fmt.Errorf("join room %s: %s", p.JoinRoom, resp.Error)
		}
		// The room we tried was taken; open our own instead
		if p.joining {
			p.joining = false
			p.logf("Join rejected, creating a room\n")
			return []protocol.Payload{protocol.CreateRoomRequest{}}, false, nil
		}
	}

	return nil, false, nil
}

// fire picks a cell not shot at yet
func (p *AutoPlayer) fire() protocol.Payload {
	var open []model.Position
	for y := 0; y < p.shots.Size; y++ {
		for x := 0; x < p.shots.Size; x++ {
			pos := model.Position{X: x, Y: y}
			if p.shots.IsEmpty(pos) {
				open = append(open, pos)
			}
		}
	}
	if len(open) == 0 {
		return protocol.RandomAttackRequest{GameID: protocol.FlexID(p.gameID), IndexPlayer: protocol.FlexID(p.Name)}
	}

	target := open[p.rng.Intn(len(open))]
	return protocol.AttackRequest{
		GameID:      protocol.FlexID(p.gameID),
		X:           target.X,
		Y:           target.Y,
		IndexPlayer: protocol.FlexID(p.Name),
	}
}

func (p *AutoPlayer) logf(format string, args ...any) {
	if p.out != nil {
		_, _ = fmt.Fprintf(p.out, format, args...)
	}
}

// Play registers on sess and drives p until the game finishes, returning
// the winner. Cancelling ctx closes the session.
func Play(ctx context.Context, sess *Session, p *AutoPlayer, password string) (string, error) {
	if err := sess.Send(protocol.RegRequest{Name: p.Name, Password: password}); err != nil {
		return "", err
	}

	for {
		env, err := sess.Next()
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", fmt.Errorf("connection lost: %w", err)
		}

		replies, done, err := p.Handle(env)
		if err != nil {
			return "", err
		}
		for _, req := range replies {
			if err := sess.Send(req); err != nil {
				return "", err
			}
		}
		if done {
			return p.Winner(), nil
		}
	}
}
