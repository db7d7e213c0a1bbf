package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/seabattle/internal/api/apierr"
	"github.com/mcoot/seabattle/internal/api/handler"
	"github.com/mcoot/seabattle/internal/api/middleware"
	"github.com/mcoot/seabattle/internal/api/response"
	"github.com/mcoot/seabattle/internal/services/game"
	"github.com/mcoot/seabattle/internal/services/player"
	"github.com/mcoot/seabattle/internal/services/room"
	"github.com/mcoot/seabattle/internal/transport/ws"
)

const apiPrefix = "/api/v1"

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger  *slog.Logger
	Players *player.Directory
	Rooms   *room.Registry
	Games   *game.Table
	Hub     *ws.Hub // nil disables the /ws endpoint
}

// NewRouter creates a new router with the WebSocket endpoint and all
// read-only API routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Logging sits outside recovery so panics are logged with their 500 status
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))

	if cfg.Hub != nil {
		r.HandleFunc("/ws", cfg.Hub.ServeWS).Methods(http.MethodGet)
	}

	// Create handlers
	var clients handler.ClientCounter
	if cfg.Hub != nil {
		clients = cfg.Hub
	}
	playerHandler := handler.NewPlayerHandler(cfg.Players)
	lobbyHandler := handler.NewLobbyHandler(cfg.Rooms)
	gameHandler := handler.NewGameHandler(cfg.Players, cfg.Rooms, cfg.Games, clients)

	// Routes sit on the root router so a wrong method gets 405, not 404
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)
	r.HandleFunc(apiPrefix+"/rooms", lobbyHandler.List).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/rooms/{id}", lobbyHandler.Get).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/winners", playerHandler.Winners).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/players/{name}", playerHandler.Get).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/games/{id}", gameHandler.Get).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/stats", gameHandler.Stats).Methods(http.MethodGet)

	r.HandleFunc(apiPrefix+"/health", healthHandler).Methods(http.MethodGet)

	return r
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	apierr.WriteError(w, apierr.NewMethodNotAllowedError())
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
