package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/seabattle/internal/api/response"
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/services/game"
	"github.com/mcoot/seabattle/internal/services/player"
	"github.com/mcoot/seabattle/internal/services/room"
)

// ClientCounter reports live transport connections
type ClientCounter interface {
	ClientCount() int
}

// GameHandler handles game and stats endpoints
type GameHandler struct {
	players *player.Directory
	rooms   *room.Registry
	games   *game.Table
	clients ClientCounter
}

// NewGameHandler creates a new game handler. clients may be nil.
func NewGameHandler(players *player.Directory, rooms *room.Registry, games *game.Table, clients ClientCounter) *GameHandler {
	return &GameHandler{
		players: players,
		rooms:   rooms,
		games:   games,
		clients: clients,
	}
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.GameID(mux.Vars(r)["id"])

	g, err := h.games.GetGame(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// Stats handles GET /api/v1/stats
func (h *GameHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	players, err := h.players.ListPlayers(ctx)
	if err != nil {
		WriteError(w, err)
		return
	}
	rooms, err := h.rooms.CountAvailable(ctx)
	if err != nil {
		WriteError(w, err)
		return
	}
	games, err := h.games.CountGames(ctx)
	if err != nil {
		WriteError(w, err)
		return
	}

	stats := response.Stats{
		Players:     len(players),
		Rooms:       rooms,
		Games:       games,
		Connections: h.players.ConnectionCount(),
	}
	if h.clients != nil {
		stats.Clients = h.clients.ClientCount()
	}

	response.JSON(w, http.StatusOK, stats)
}
