package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the server reads from its environment.
type Config struct {
	Addr        string        `envconfig:"ADDR" default:":8080"`
	DatabaseDSN string        `envconfig:"DB_DSN" required:"true"`
	RedisAddr   string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	JWTSecret   string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	PresenceTTL time.Duration `envconfig:"PRESENCE_TTL" default:"2m"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
