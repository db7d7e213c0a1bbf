package model

import "time"

// GameID uniquely identifies a game
type GameID string

// GameState is the phase of a game, derived from its fields
type GameState string

const (
	GameStateAwaitingFleets GameState = "awaiting_fleets" // Waiting for both fleets
	GameStateInProgress     GameState = "in_progress"     // Players alternate attacks
	GameStateFinished       GameState = "finished"        // One fleet destroyed
)

// GamePlayerState is one participant's side of a game
type GamePlayerState struct {
	Player PlayerName
	Fleet  []Ship
	Ready  bool // true once the fleet is submitted
}

// Game is an active match between exactly two players
type Game struct {
	ID       GameID
	Slots    [RoomCapacity]GamePlayerState
	Turn     PlayerName // player allowed to attack next
	Finished bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SlotOf returns the slot index of the named player
func (g *Game) SlotOf(name PlayerName) (int, bool) {
	for i := range g.Slots {
		if g.Slots[i].Player == name {
			return i, true
		}
	}
	return -1, false
}

// Participant returns the named player's state, or nil if not in this game
func (g *Game) Participant(name PlayerName) *GamePlayerState {
	i, ok := g.SlotOf(name)
	if !ok {
		return nil
	}
	return &g.Slots[i]
}

// Opponent returns the state of the other player, or nil if name is not in this game
func (g *Game) Opponent(name PlayerName) *GamePlayerState {
	i, ok := g.SlotOf(name)
	if !ok {
		return nil
	}
	return &g.Slots[1-i]
}

// Players returns both participant names in slot order
func (g *Game) Players() []PlayerName {
	names := make([]PlayerName, 0, len(g.Slots))
	for _, s := range g.Slots {
		names = append(names, s.Player)
	}
	return names
}

// IsReady returns true if both fleets have been submitted
func (g *Game) IsReady() bool {
	for _, s := range g.Slots {
		if !s.Ready {
			return false
		}
	}
	return true
}

// State returns the current phase of the game
func (g *Game) State() GameState {
	switch {
	case g.Finished:
		return GameStateFinished
	case g.IsReady():
		return GameStateInProgress
	default:
		return GameStateAwaitingFleets
	}
}

// Clone returns a deep copy of the game
func (g *Game) Clone() *Game {
	c := *g
	for i, s := range g.Slots {
		if s.Fleet == nil {
			continue
		}
		fleet := make([]Ship, len(s.Fleet))
		for j, ship := range s.Fleet {
			fleet[j] = ship.Clone()
		}
		c.Slots[i].Fleet = fleet
	}
	return &c
}
