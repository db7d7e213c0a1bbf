package model

// BoardSize is the fixed grid dimension (BoardSize x BoardSize)
const BoardSize = 10

// Cell is the state of a single grid cell
type Cell int

const (
	CellEmpty Cell = iota
	CellShip
	CellHit
	CellMiss
)

// Grid is a square board, row-major: Cells[y][x]
type Grid struct {
	Size  int
	Cells [][]Cell
}

// NewGrid creates an empty grid of the given size
func NewGrid(size int) *Grid {
	cells := make([][]Cell, size)
	for i := range cells {
		cells[i] = make([]Cell, size)
	}
	return &Grid{
		Size:  size,
		Cells: cells,
	}
}

// Get returns the cell at the given position, or CellEmpty if out of bounds
func (g *Grid) Get(pos Position) Cell {
	if !g.IsValidPosition(pos) {
		return CellEmpty
	}
	return g.Cells[pos.Y][pos.X]
}

// Set marks the cell at the given position
func (g *Grid) Set(pos Position, c Cell) {
	if g.IsValidPosition(pos) {
		g.Cells[pos.Y][pos.X] = c
	}
}

// IsEmpty returns true if the cell at the given position is empty
func (g *Grid) IsEmpty(pos Position) bool {
	return g.Get(pos) == CellEmpty
}

// IsValidPosition returns true if the position is within bounds
func (g *Grid) IsValidPosition(pos Position) bool {
	return pos.X >= 0 && pos.X < g.Size && pos.Y >= 0 && pos.Y < g.Size
}

// PlaceFleet marks every ship cell, with struck cells marked as hits
func (g *Grid) PlaceFleet(fleet []Ship) {
	for _, ship := range fleet {
		for i, pos := range ship.Cells() {
			if i < len(ship.Damage) && ship.Damage[i] {
				g.Set(pos, CellHit)
			} else {
				g.Set(pos, CellShip)
			}
		}
	}
}

// CountCells returns the number of cells in the given state
func (g *Grid) CountCells(c Cell) int {
	count := 0
	for y := 0; y < g.Size; y++ {
		for x := 0; x < g.Size; x++ {
			if g.Cells[y][x] == c {
				count++
			}
		}
	}
	return count
}
