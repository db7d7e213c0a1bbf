package fleet

import (
	"fmt"

	"github.com/mcoot/seabattle/internal/dependencies/random"
	"github.com/mcoot/seabattle/internal/model"
)

// StandardComposition is the classic fleet: one huge, two large, three medium
// and four small ships
var StandardComposition = []model.ShipKind{
	model.ShipHuge,
	model.ShipLarge, model.ShipLarge,
	model.ShipMedium, model.ShipMedium, model.ShipMedium,
	model.ShipSmall, model.ShipSmall, model.ShipSmall, model.ShipSmall,
}

// randomAttempts is how many random placements are tried per ship before
// falling back to the first free slot
const randomAttempts = 100

// Validate checks that a fleet fits on a size x size board: at least one
// ship, lengths 1-4 matching the declared kind, every cell in bounds and no
// two ships sharing a cell. Ships may touch.
func Validate(ships []model.Ship, size int) error {
	_, err := Place(ships, size)
	return err
}

// Place lays a fleet out on a new grid, validating it as it goes
func Place(ships []model.Ship, size int) (*model.Grid, error) {
	if len(ships) == 0 {
		return nil, fmt.Errorf("%w: no ships", model.ErrInvalidFleet)
	}

	grid := model.NewGrid(size)
	for i := range ships {
		if err := validateShip(&ships[i]); err != nil {
			return nil, fmt.Errorf("%w: ship %d: %v", model.ErrInvalidFleet, i, err)
		}
		if err := placeShip(grid, &ships[i]); err != nil {
			return nil, fmt.Errorf("%w: ship %d: %v", model.ErrInvalidFleet, i, err)
		}
	}
	return grid, nil
}

func validateShip(ship *model.Ship) error {
	if ship.Length < 1 || ship.Length > model.MaxShipLength {
		return fmt.Errorf("length %d out of range", ship.Length)
	}
	if ship.Kind != "" {
		want := model.ShipKindLength(ship.Kind)
		if want == 0 {
			return fmt.Errorf("unknown kind %q", ship.Kind)
		}
		if want != ship.Length {
			return fmt.Errorf("kind %q must have length %d", ship.Kind, want)
		}
	}
	return nil
}

func placeShip(grid *model.Grid, ship *model.Ship) error {
	cells := ship.Cells()
	for _, pos := range cells {
		if !grid.IsValidPosition(pos) {
			return fmt.Errorf("cell (%d,%d) off the board", pos.X, pos.Y)
		}
		if !grid.IsEmpty(pos) {
			return fmt.Errorf("cell (%d,%d) overlaps another ship", pos.X, pos.Y)
		}
	}
	for _, pos := range cells {
		grid.Set(pos, model.CellShip)
	}
	return nil
}

// Random builds a legal fleet of the given composition on a size x size board
func Random(rng random.Random, size int, kinds []model.ShipKind) ([]model.Ship, error) {
	grid := model.NewGrid(size)
	ships := make([]model.Ship, 0, len(kinds))

	for _, kind := range kinds {
		ship := model.Ship{Kind: kind, Length: model.ShipKindLength(kind)}
		if err := validateShip(&ship); err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrInvalidFleet, err)
		}
		if !placeRandomly(grid, &ship, rng) && !placeFirstFit(grid, &ship) {
			return nil, fmt.Errorf("%w: no room for %s ship", model.ErrInvalidFleet, kind)
		}
		ships = append(ships, ship)
	}
	return ships, nil
}

func placeRandomly(grid *model.Grid, ship *model.Ship, rng random.Random) bool {
	for i := 0; i < randomAttempts; i++ {
		ship.Vertical = rng.Intn(2) == 1
		ship.Position = model.Position{X: rng.Intn(grid.Size), Y: rng.Intn(grid.Size)}
		if placeShip(grid, ship) == nil {
			return true
		}
	}
	return false
}

func placeFirstFit(grid *model.Grid, ship *model.Ship) bool {
	for _, vertical := range []bool{false, true} {
		for y := 0; y < grid.Size; y++ {
			for x := 0; x < grid.Size; x++ {
				ship.Vertical = vertical
				ship.Position = model.Position{X: x, Y: y}
				if placeShip(grid, ship) == nil {
					return true
				}
			}
		}
	}
	return false
}
