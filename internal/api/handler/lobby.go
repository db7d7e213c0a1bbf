package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/seabattle/internal/api/response"
	"github.com/mcoot/seabattle/internal/model"
	"github.com/mcoot/seabattle/internal/protocol"
	"github.com/mcoot/seabattle/internal/services/room"
)

// LobbyHandler handles room endpoints
type LobbyHandler struct {
	rooms *room.Registry
}

// NewLobbyHandler creates a new lobby handler
func NewLobbyHandler(rooms *room.Registry) *LobbyHandler {
	return &LobbyHandler{
		rooms: rooms,
	}
}

// List handles GET /api/v1/rooms
// The body has the same shape as the update_room payload.
func (h *LobbyHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.ListAvailable(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, protocol.NewUpdateRoom(rooms))
}

// Get handles GET /api/v1/rooms/{id}
func (h *LobbyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.RoomID(mux.Vars(r)["id"])

	rm, err := h.rooms.GetRoom(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(rm))
}
