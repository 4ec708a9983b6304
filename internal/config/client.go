package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"picturebook-server/shared/utils"

	"github.com/kelseyhightower/envconfig"
)

// Поддерживаемые хранилища полки.
const (
	ShelfBackendFile     = "file"
	ShelfBackendRedis    = "redis"
	ShelfBackendPostgres = "postgres"
)

// ClientConfig конфигурация CLI bookctl. Переменные окружения с префиксом BOOKCTL_.
type ClientConfig struct {
	LogLevel   string        `envconfig:"LOG_LEVEL" default:"warn"`
	APIURL     string        `envconfig:"API_URL" default:"http://localhost:8080"`
	APITimeout time.Duration `envconfig:"API_TIMEOUT" default:"120s"`

	ShelfBackend string `envconfig:"SHELF_BACKEND" default:"file"`
	ShelfFile    string `envconfig:"SHELF_FILE"`
	ShelfKey     string `envconfig:"SHELF_KEY" default:"bookshelf"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPassword string `ignored:"true"`

	PostgresDSN string `envconfig:"POSTGRES_DSN"`

	AutoShelve   bool   `envconfig:"AUTO_SHELVE" default:"true"`
	VoiceCommand string `envconfig:"VOICE_COMMAND"`
}

// LoadClientConfig загружает конфигурацию клиента.
func LoadClientConfig(envFilePath string) (*ClientConfig, error) {
	loadDotEnv(envFilePath)

	var cfg ClientConfig
	if err := envconfig.Process("bookctl", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}
	cfg.RedisPassword = utils.ReadSecretOrEnv("BOOKCTL_REDIS_PASSWORD", "redis_password")

	if cfg.ShelfFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.ShelfFile = filepath.Join(home, ".picturebook", "bookshelf.json")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет выбор хранилища.
func (c *ClientConfig) Validate() error {
	switch c.ShelfBackend {
	case ShelfBackendFile, ShelfBackendRedis:
		return nil
	case ShelfBackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("BOOKCTL_POSTGRES_DSN is required for the postgres shelf backend")
		}
		return nil
	}
	return fmt.Errorf("unknown shelf backend %q", c.ShelfBackend)
}
