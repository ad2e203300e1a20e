package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	Environment    string   `env:"ENVIRONMENT" envDefault:"development"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
	JWTSecret      string   `env:"JWT_SECRET" envDefault:"change-me-in-production"`

	Redis RedisConfig `envPrefix:"REDIS_"`
	NATS  NATSConfig  `envPrefix:"NATS_"`

	// PresenceTTL bounds how long a presence entry outlives a crashed
	// client that never sent leave_room.
	PresenceTTL time.Duration `env:"PRESENCE_TTL" envDefault:"1h"`

	// CacheSize is the per-room recent-message capacity.
	CacheSize int           `env:"CACHE_SIZE" envDefault:"100"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"24h"`

	// PublishQueueSize caps each room's outbound bus queue; overflow
	// sheds the oldest queued publish.
	PublishQueueSize int `env:"PUBLISH_QUEUE_SIZE" envDefault:"256"`
}

type RedisConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB" envDefault:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type NATSConfig struct {
	URL  string `env:"URL" envDefault:"nats://localhost:4222"`
	Name string `env:"NAME" envDefault:"chat-gateway"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}
