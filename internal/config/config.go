package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mcoot/seabattle/internal/api"
	"github.com/mcoot/seabattle/internal/factory"
	"github.com/mcoot/seabattle/internal/services/player"
	redisstorage "github.com/mcoot/seabattle/internal/storage/redis"
	"github.com/mcoot/seabattle/internal/transport/ws"
)

// Config is the server configuration read from SEABATTLE_* variables
type Config struct {
	Host            string        `env:"SEABATTLE_HOST"`
	Port            int           `env:"SEABATTLE_PORT"             envDefault:"3000"`
	Storage         string        `env:"SEABATTLE_STORAGE"          envDefault:"memory"`
	RedisURL        string        `env:"SEABATTLE_REDIS_URL"`
	RoomTTL         time.Duration `env:"SEABATTLE_ROOM_TTL"         envDefault:"24h"`
	GameTTL         time.Duration `env:"SEABATTLE_GAME_TTL"         envDefault:"24h"`
	LogLevel        string        `env:"SEABATTLE_LOG_LEVEL"        envDefault:"info"`
	PasswordCost    int           `env:"SEABATTLE_PASSWORD_COST"    envDefault:"10"`
	ShutdownTimeout time.Duration `env:"SEABATTLE_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	AllowedOrigins  []string      `env:"SEABATTLE_ALLOWED_ORIGINS"  envSeparator:","`
}

// Load parses configuration from the environment and validates it
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that env parsing alone cannot
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.Storage {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		if c.RedisURL == "" {
			return errors.New("SEABATTLE_REDIS_URL required when SEABATTLE_STORAGE=redis")
		}
	default:
		return fmt.Errorf("invalid storage %q: must be 'memory' or 'redis'", c.Storage)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name to a slog level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
}

// Factory builds the application factory configuration
func (c Config) Factory(logger *slog.Logger) factory.Config {
	cfg := factory.Config{
		Logger:       logger,
		StorageType:  c.Storage,
		PlayerConfig: player.Config{PasswordCost: c.PasswordCost},
		WSConfig:     ws.DefaultConfig(),
	}
	cfg.WSConfig.AllowedOrigins = c.AllowedOrigins

	if c.Storage == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		redisCfg.RoomTTL = c.RoomTTL
		redisCfg.GameTTL = c.GameTTL
		cfg.RedisConfig = &redisCfg
	}
	return cfg
}

// Server builds the HTTP server configuration
func (c Config) Server() api.ServerConfig {
	cfg := api.DefaultServerConfig()
	cfg.Host = c.Host
	cfg.Port = c.Port
	cfg.ShutdownTimeout = c.ShutdownTimeout
	return cfg
}
