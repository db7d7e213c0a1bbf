package protocol

import "github.com/mcoot/seabattle/internal/model"

// PositionRecord is a grid cell on the wire
type PositionRecord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ShipRecord is a ship on the wire. Direction true means vertical.
type ShipRecord struct {
	Position  PositionRecord `json:"position"`
	Direction bool           `json:"direction"`
	Length    int            `json:"length"`
	Type      string         `json:"type"`
}

// ToModel converts a wire ship into a fresh, undamaged model ship
func (r ShipRecord) ToModel() model.Ship {
	return model.Ship{
		Position: model.Position{X: r.Position.X, Y: r.Position.Y},
		Vertical: r.Direction,
		Length:   r.Length,
		Kind:     model.ShipKind(r.Type),
	}
}

// ShipsToModel converts a wire fleet
func ShipsToModel(records []ShipRecord) []model.Ship {
	ships := make([]model.Ship, len(records))
	for i, r := range records {
		ships[i] = r.ToModel()
	}
	return ships
}

// ShipsFromModel converts a fleet to its wire form
func ShipsFromModel(ships []model.Ship) []ShipRecord {
	records := make([]ShipRecord, len(ships))
	for i, s := range ships {
		records[i] = ShipRecord{
			Position:  PositionRecord{X: s.Position.X, Y: s.Position.Y},
			Direction: s.Vertical,
			Length:    s.Length,
			Type:      string(s.Kind),
		}
	}
	return records
}
