package model

import (
	"errors"
	"fmt"
)

// Error classes. Specific errors wrap one of these so boundaries can map
// a whole class with errors.Is.
var (
	ErrAuth     = errors.New("authentication failed")
	ErrNotFound = errors.New("not found")
	ErrTurn     = errors.New("turn violation")
	ErrProtocol = errors.New("protocol error")
)

// Common errors used across the application
var (
	// Player errors
	ErrInvalidCredentials  = fmt.Errorf("invalid credentials: %w", ErrAuth)
	ErrInvalidRegistration = errors.New("name and password are required")
	ErrPlayerNotFound      = fmt.Errorf("player %w", ErrNotFound)
	ErrNotRegistered       = errors.New("player is not registered")
	ErrIdentityMismatch    = errors.New("player does not match connection")

	// Room errors
	ErrRoomNotFound  = fmt.Errorf("room %w", ErrNotFound)
	ErrAlreadySeated = errors.New("player is already in this room")
	ErrRoomFull      = errors.New("room is full")
	ErrRoomNotFull   = errors.New("room needs two players")
	ErrIDExhausted   = errors.New("could not generate a unique id")

	// Game errors
	ErrGameNotFound          = fmt.Errorf("game %w", ErrNotFound)
	ErrPlayerNotInGame       = fmt.Errorf("player in game %w", ErrNotFound)
	ErrNotPlayerTurn         = fmt.Errorf("not this player's turn: %w", ErrTurn)
	ErrGameNotStarted        = errors.New("game has not started")
	ErrInvalidFleet          = errors.New("invalid fleet")
	ErrFleetAlreadySubmitted = errors.New("fleet already submitted")

	// Protocol errors
	ErrMalformedMessage   = fmt.Errorf("invalid message format: %w", ErrProtocol)
	ErrUnknownMessageType = fmt.Errorf("unknown message type: %w", ErrProtocol)
)
