package model

import (
	"slices"
	"time"
)

// RoomID identifies a matchmaking room
type RoomID string

// RoomCapacity is the number of seats that turns a room into a game
const RoomCapacity = 2

// Room holds one or two players waiting for a game
type Room struct {
	ID        RoomID
	Seats     []PlayerName // seat order; the first seat moves first
	CreatedAt time.Time
}

// HasSeat returns true if the named player occupies a seat
func (r *Room) HasSeat(name PlayerName) bool {
	return slices.Contains(r.Seats, name)
}

// IsAvailable returns true if the room can still be joined
func (r *Room) IsAvailable() bool {
	return len(r.Seats) == 1
}

// IsFull returns true once every seat is taken
func (r *Room) IsFull() bool {
	return len(r.Seats) >= RoomCapacity
}

// Clone returns a deep copy of the room
func (r *Room) Clone() *Room {
	c := *r
	c.Seats = slices.Clone(r.Seats)
	return &c
}
