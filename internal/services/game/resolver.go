package game

import "github.com/mcoot/seabattle/internal/model"

// AttackResult is the outcome of a single shot
type AttackResult struct {
	Hit      bool
	Killed   bool
	GameOver bool
}

// Status names the outcome the way clients see it: miss, shot or killed
func (r AttackResult) Status() string {
	switch {
	case r.Killed:
		return "killed"
	case r.Hit:
		return "shot"
	default:
		return "miss"
	}
}

// Resolve fires at target against fleet, recording damage on the struck ship.
// Fleets never overlap, so at most one ship is hit. Striking a cell that was
// already hit reports the hit again without adding damage.
func Resolve(fleet []model.Ship, target model.Position) AttackResult {
	var result AttackResult
	for i := range fleet {
		if fleet[i].Strike(target) {
			result.Hit = true
			result.Killed = fleet[i].IsDestroyed()
			break
		}
	}
	result.GameOver = result.Hit && allDestroyed(fleet)
	return result
}

func allDestroyed(fleet []model.Ship) bool {
	for i := range fleet {
		if !fleet[i].IsDestroyed() {
			return false
		}
	}
	return len(fleet) > 0
}
