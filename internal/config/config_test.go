package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/seabattle/internal/factory"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, factory.StorageTypeMemory, cfg.Storage)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10, cfg.PasswordCost)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.AllowedOrigins)

	fc := cfg.Factory(nil)
	assert.Nil(t, fc.RedisConfig)
	assert.Equal(t, 10, fc.PlayerConfig.PasswordCost)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SEABATTLE_HOST", "127.0.0.1")
	t.Setenv("SEABATTLE_PORT", "4000")
	t.Setenv("SEABATTLE_STORAGE", "redis")
	t.Setenv("SEABATTLE_REDIS_URL", "redis://cache:6379/1")
	t.Setenv("SEABATTLE_ROOM_TTL", "10m")
	t.Setenv("SEABATTLE_LOG_LEVEL", "debug")
	t.Setenv("SEABATTLE_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	srv := cfg.Server()
	assert.Equal(t, "127.0.0.1", srv.Host)
	assert.Equal(t, 4000, srv.Port)

	fc := cfg.Factory(nil)
	require.NotNil(t, fc.RedisConfig)
	assert.Equal(t, "redis://cache:6379/1", fc.RedisConfig.URL)
	assert.Equal(t, 10*time.Minute, fc.RedisConfig.RoomTTL)
	assert.Equal(t, 24*time.Hour, fc.RedisConfig.GameTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, fc.WSConfig.AllowedOrigins)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "port not a number",
			env:  map[string]string{"SEABATTLE_PORT": "not-an-int"},
			want: "parse env:",
		},
		{
			name: "unknown storage",
			env:  map[string]string{"SEABATTLE_STORAGE": "postgres"},
			want: "invalid storage",
		},
		{
			name: "redis without url",
			env:  map[string]string{"SEABATTLE_STORAGE": "redis"},
			want: "SEABATTLE_REDIS_URL required",
		},
		{
			name: "bad log level",
			env:  map[string]string{"SEABATTLE_LOG_LEVEL": "loud"},
			want: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	level, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}
