package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("DB_DSN", "postgres://localhost/chat")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	req.NoError(err)
	req.Equal(":8080", cfg.Addr)
	req.Equal("localhost:6379", cfg.RedisAddr)
	req.Equal(24*time.Hour, cfg.TokenTTL)
	req.Equal(2*time.Minute, cfg.PresenceTTL)
	req.Equal("info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	req := require.New(t)
	t.Setenv("DB_DSN", "postgres://localhost/chat")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ADDR", ":9999")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	req.NoError(err)
	req.Equal(":9999", cfg.Addr)
	req.Equal(time.Hour, cfg.TokenTTL)
	req.Equal("debug", cfg.LogLevel)
}

func TestLoadRequiresSecrets(t *testing.T) {
	// t.Setenv registers the restore; the vars must be absent, not empty.
	t.Setenv("DB_DSN", "x")
	t.Setenv("JWT_SECRET", "x")
	os.Unsetenv("DB_DSN")
	os.Unsetenv("JWT_SECRET")

	_, err := Load()
	require.Error(t, err)
}
