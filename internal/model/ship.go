package model

import "slices"

// Position identifies a cell on the board
type Position struct {
	X int // 0-indexed column from left
	Y int // 0-indexed row from top
}

// ShipKind is the size class of a ship
type ShipKind string

const (
	ShipSmall  ShipKind = "small"
	ShipMedium ShipKind = "medium"
	ShipLarge  ShipKind = "large"
	ShipHuge   ShipKind = "huge"
)

// MaxShipLength is the length of the largest ship class
const MaxShipLength = 4

// ShipKindLength returns the length a ship kind occupies, or 0 if unknown
func ShipKindLength(kind ShipKind) int {
	switch kind {
	case ShipSmall:
		return 1
	case ShipMedium:
		return 2
	case ShipLarge:
		return 3
	case ShipHuge:
		return 4
	default:
		return 0
	}
}

// Ship is a line of cells on a player's board.
// Vertical ships extend along +Y from Position, horizontal ones along +X.
type Ship struct {
	Position Position
	Vertical bool
	Length   int
	Kind     ShipKind
	Hits     int    // distinct cells struck, never above Length
	Damage   []bool // struck flag per cell, indexed from Position
}

// Cells returns every cell the ship occupies
func (s *Ship) Cells() []Position {
	cells := make([]Position, 0, s.Length)
	for i := 0; i < s.Length; i++ {
		cells = append(cells, s.cell(i))
	}
	return cells
}

// Covers returns true if the ship occupies the given cell
func (s *Ship) Covers(p Position) bool {
	return s.offset(p) >= 0
}

// Strike registers a shot at p. Returns false if the shot missed this ship.
// Striking an already damaged cell is a hit but does not count twice.
func (s *Ship) Strike(p Position) bool {
	i := s.offset(p)
	if i < 0 {
		return false
	}
	if len(s.Damage) != s.Length {
		s.Damage = make([]bool, s.Length)
	}
	if !s.Damage[i] {
		s.Damage[i] = true
		s.Hits = min(s.Hits+1, s.Length)
	}
	return true
}

// IsDestroyed returns true once every cell has been struck
func (s *Ship) IsDestroyed() bool {
	return s.Hits >= s.Length
}

// Clone returns a deep copy of the ship
func (s *Ship) Clone() Ship {
	c := *s
	c.Damage = slices.Clone(s.Damage)
	return c
}

func (s *Ship) cell(i int) Position {
	if s.Vertical {
		return Position{X: s.Position.X, Y: s.Position.Y + i}
	}
	return Position{X: s.Position.X + i, Y: s.Position.Y}
}

// offset returns the index of p along the ship, or -1 if p is not covered
func (s *Ship) offset(p Position) int {
	var along, across, start, line int
	if s.Vertical {
		along, across, start, line = p.Y, p.X, s.Position.Y, s.Position.X
	} else {
		along, across, start, line = p.X, p.Y, s.Position.X, s.Position.Y
	}
	if across != line || along < start || along >= start+s.Length {
		return -1
	}
	return along - start
}
