package session

import (
	"errors"

	"github.com/mcoot/seabattle/internal/model"
)

// clientErrors lists the errors a client may see verbatim. Anything else is
// an infrastructure failure and is reported as internalErrorText.
var clientErrors = []struct {
	err  error
	text string
}{
	{model.ErrInvalidCredentials, "invalid credentials"},
	{model.ErrInvalidRegistration, "name and password are required"},
	{model.ErrNotRegistered, "player not registered"},
	{model.ErrIdentityMismatch, "player does not match connection"},
	{model.ErrRoomNotFound, "room not found"},
	{model.ErrAlreadySeated, "player is already in this room"},
	{model.ErrRoomFull, "room is full"},
	{model.ErrGameNotFound, "game not found"},
	{model.ErrPlayerNotInGame, "player is not in this game"},
	{model.ErrPlayerNotFound, "player not found"},
	{model.ErrNotPlayerTurn, "not your turn"},
	{model.ErrGameNotStarted, "game has not started"},
	{model.ErrFleetAlreadySubmitted, "ships already placed"},
	{model.ErrInvalidFleet, "failed to set ships"},
	{model.ErrMalformedMessage, invalidFormatText},
}

const (
	invalidFormatText = "invalid message format"
	internalErrorText = "internal error"
)

// errorText maps err to the text sent in an error message. The second
// result is false for errors that are not part of the client contract.
func errorText(err error) (string, bool) {
	for _, ce := range clientErrors {
		if errors.Is(err, ce.err) {
			return ce.text, true
		}
	}
	return internalErrorText, false
}
