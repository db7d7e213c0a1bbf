package factory

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/seabattle/internal/api"
	"github.com/mcoot/seabattle/internal/dependencies/clock"
	"github.com/mcoot/seabattle/internal/dependencies/random"
	"github.com/mcoot/seabattle/internal/notify"
	"github.com/mcoot/seabattle/internal/services/game"
	"github.com/mcoot/seabattle/internal/services/player"
	"github.com/mcoot/seabattle/internal/services/room"
	"github.com/mcoot/seabattle/internal/session"
	"github.com/mcoot/seabattle/internal/storage"
	"github.com/mcoot/seabattle/internal/storage/memory"
	redisstorage "github.com/mcoot/seabattle/internal/storage/redis"
	"github.com/mcoot/seabattle/internal/transport/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Notifier    *notify.Notifier
	Players     *player.Directory
	Rooms       *room.Registry
	Games       *game.Table
	Coordinator *session.Coordinator

	// Transport
	Hub    *ws.Hub
	Router http.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PlayerConfig holds password hashing settings (optional)
	// If zero value, defaults to player.DefaultConfig()
	PlayerConfig player.Config
	// WSConfig holds WebSocket endpoint settings (optional)
	// Unset sizes default from ws.DefaultConfig()
	WSConfig ws.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	playerCfg := cfg.PlayerConfig
	if playerCfg.PasswordCost == 0 {
		playerCfg = player.DefaultConfig()
	}
	wsCfg := cfg.WSConfig.WithDefaults()

	logger.Info("storage configured", slog.String("type", storageType))

	return newWithDependencies(store, clock.New(), random.New(), playerCfg, wsCfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, playerCfg player.Config, wsCfg ws.Config, logger *slog.Logger) *App {
	notifier := notify.New(logger)
	players := player.New(store, clk, notifier, logger, playerCfg)
	rooms := room.NewRegistry(store, clk, rnd, logger)
	games := game.NewTable(store, clk, rnd, logger)
	coordinator := session.New(players, rooms, games, notifier, logger)
	hub := ws.NewHub(coordinator, wsCfg, logger)

	router := api.NewRouter(api.RouterConfig{
		Logger:  logger,
		Players: players,
		Rooms:   rooms,
		Games:   games,
		Hub:     hub,
	})

	return &App{
		Storage:     store,
		Clock:       clk,
		Random:      rnd,
		Notifier:    notifier,
		Players:     players,
		Rooms:       rooms,
		Games:       games,
		Coordinator: coordinator,
		Hub:         hub,
		Router:      router,
	}
}

// Close disconnects every client and releases the storage backend
func (a *App) Close() error {
	a.Hub.Close()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
