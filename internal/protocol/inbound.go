package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mcoot/seabattle/internal/model"
)

// FlexID is an identifier that clients may send as a JSON string or number
type FlexID string

// UnmarshalJSON accepts "abc", 123 and null
func (f *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("id must be a string or number: %w", err)
		}
		*f = FlexID(n.String())
		return nil
	}
}

// Event is a decoded inbound request
type Event interface {
	Payload
	isEvent()
}

// RegRequest registers or reconnects a player
type RegRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// CreateRoomRequest opens a new room seated by the caller
type CreateRoomRequest struct{}

// AddUserToRoomRequest seats the caller in an existing room
type AddUserToRoomRequest struct {
	IndexRoom FlexID `json:"indexRoom"`
}

// AddShipsRequest submits the caller's fleet for a game
type AddShipsRequest struct {
	GameID      FlexID       `json:"gameId"`
	IndexPlayer FlexID       `json:"indexPlayer"`
	Ships       []ShipRecord `json:"ships"`
}

// AttackRequest fires at a single cell
type AttackRequest struct {
	GameID      FlexID `json:"gameId"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	IndexPlayer FlexID `json:"indexPlayer"`
}

// RandomAttackRequest fires at a server-chosen cell
type RandomAttackRequest struct {
	GameID      FlexID `json:"gameId"`
	IndexPlayer FlexID `json:"indexPlayer"`
}

func (RegRequest) MessageType() MessageType           { return TypeReg }
func (CreateRoomRequest) MessageType() MessageType    { return TypeCreateRoom }
func (AddUserToRoomRequest) MessageType() MessageType { return TypeAddUserToRoom }
func (AddShipsRequest) MessageType() MessageType      { return TypeAddShips }
func (AttackRequest) MessageType() MessageType        { return TypeAttack }
func (RandomAttackRequest) MessageType() MessageType  { return TypeRandomAttack }

func (RegRequest) isEvent()           {}
func (CreateRoomRequest) isEvent()    {}
func (AddUserToRoomRequest) isEvent() {}
func (AddShipsRequest) isEvent()      {}
func (AttackRequest) isEvent()        {}
func (RandomAttackRequest) isEvent()  {}

// Decode parses an inbound frame into a typed event.
// Unknown types yield model.ErrUnknownMessageType; anything unparseable
// yields model.ErrMalformedMessage.
func Decode(raw []byte) (Event, error) {
	env, err := ParseEnvelope(raw)
	if err != nil {
		return nil, err
	}

	switch env.Type {
	case TypeReg:
		var req RegRequest
		if err := env.Unmarshal(&req); err != nil {
			return nil, err
		}
		return req, nil

	case TypeCreateRoom:
		return CreateRoomRequest{}, nil

	case TypeAddUserToRoom:
		var req AddUserToRoomRequest
		if err := env.Unmarshal(&req); err != nil {
			return nil, err
		}
		return req, nil

	case TypeAddShips:
		var req AddShipsRequest
		if err := env.Unmarshal(&req); err != nil {
			return nil, err
		}
		return req, nil

	case TypeAttack:
		var wire struct {
			GameID      FlexID `json:"gameId"`
			X           *int   `json:"x"`
			Y           *int   `json:"y"`
			IndexPlayer FlexID `json:"indexPlayer"`
		}
		if err := env.Unmarshal(&wire); err != nil {
			return nil, err
		}
		if wire.X == nil || wire.Y == nil {
			return nil, fmt.Errorf("%w: attack without coordinates", model.ErrMalformedMessage)
		}
		return AttackRequest{
			GameID:      wire.GameID,
			X:           *wire.X,
			Y:           *wire.Y,
			IndexPlayer: wire.IndexPlayer,
		}, nil

	case TypeRandomAttack:
		var req RandomAttackRequest
		if err := env.Unmarshal(&req); err != nil {
			return nil, err
		}
		return req, nil

	default:
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownMessageType, env.Type)
	}
}
