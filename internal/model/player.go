package model

import "time"

// PlayerName uniquely identifies a player across the system
type PlayerName string

// Player is a registered participant.
// The connection handle is not part of the record; the player directory
// keeps the live binding so a record can be stored by any backend.
type Player struct {
	Name         PlayerName
	PasswordHash string // bcrypt hash
	Wins         int
	Index        int // registration order, 0-based
	RegisteredAt time.Time
}

// Clone returns a copy of the player
func (p *Player) Clone() *Player {
	c := *p
	return &c
}
