package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/seabattle/internal/api/response"
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/protocol"
	"github.com/mcoot/seabattle/internal/services/player"
)

// PlayerHandler handles player and winners endpoints
type PlayerHandler struct {
	players *player.Directory
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(players *player.Directory) *PlayerHandler {
	return &PlayerHandler{
		players: players,
	}
}

// Winners handles GET /api/v1/winners
func (h *PlayerHandler) Winners(w http.ResponseWriter, r *http.Request) {
	winners, err := h.players.ListWinners(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, protocol.NewUpdateWinners(winners))
}

// Get handles GET /api/v1/players/{name}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := model.PlayerName(mux.Vars(r)["name"])
	if name == "" {
		WriteError(w, NewInvalidRequestError("name is required"))
		return
	}

	p, err := h.players.FindByName(r.Context(), name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(p, h.players.Conn(name) != nil))
}
