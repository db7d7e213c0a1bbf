package response

import (
	"time"

	"github.com/mcoot/seabattle/internal/model"
)

// Health is the health check body
type Health struct {
	Status string `json:"status"`
}

// Player represents a registered player in API responses
type Player struct {
	Name         string    `json:"name"`
	Index        int       `json:"index"`
	Wins         int       `json:"wins"`
	Online       bool      `json:"online"`
	RegisteredAt time.Time `json:"registered_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player, online bool) Player {
	return Player{
		Name:         string(p.Name),
		Index:        p.Index,
		Wins:         p.Wins,
		Online:       online,
		RegisteredAt: p.RegisteredAt,
	}
}

// Room represents a matchmaking room
type Room struct {
	ID        string    `json:"id"`
	Seats     []string  `json:"seats"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomFromModel converts a model.Room
func RoomFromModel(r *model.Room) Room {
	seats := make([]string, len(r.Seats))
	for i, s := range r.Seats {
		seats[i] = string(s)
	}
	return Room{
		ID:        string(r.ID),
		Seats:     seats,
		Available: r.IsAvailable(),
		CreatedAt: r.CreatedAt,
	}
}

// GamePlayer is one side of a game. Ship positions are never exposed.
type GamePlayer struct {
	Name        string `json:"name"`
	Ready       bool   `json:"ready"`
	ShipsAfloat int    `json:"ships_afloat"`
}

// Game represents a game summary
type Game struct {
	ID        string       `json:"id"`
	State     string       `json:"state"`
	Turn      string       `json:"turn"`
	Players   []GamePlayer `json:"players"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// GameFromModel converts a model.Game
func GameFromModel(g *model.Game) Game {
	players := make([]GamePlayer, len(g.Slots))
	for i, slot := range g.Slots {
		afloat := 0
		for j := range slot.Fleet {
			if !slot.Fleet[j].IsDestroyed() {
				afloat++
			}
		}
		players[i] = GamePlayer{
			Name:        string(slot.Player),
			Ready:       slot.Ready,
			ShipsAfloat: afloat,
		}
	}
	return Game{
		ID:        string(g.ID),
		State:     string(g.State()),
		Turn:      string(g.Turn),
		Players:   players,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// Stats summarises server occupancy
type Stats struct {
	Players     int `json:"players"`
	Rooms       int `json:"rooms"`
	Games       int `json:"games"`
	Connections int `json:"connections"`
	Clients     int `json:"clients"`
}
