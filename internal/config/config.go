package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"picturebook-server/shared/utils"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

// DefaultImageURL иллюстрация для страниц, у которых нет своей картинки.
const DefaultImageURL = "https://images.pexels.com/photos/1108099/pexels-photo-1108099.jpeg?auto=compress&cs=tinysrgb&w=800"

// Config holds the generation server configuration.
type Config struct {
	Env                string        `envconfig:"ENV" default:"development"`
	LogLevel           string        `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding        string        `envconfig:"LOG_ENCODING" default:"json"`
	ServerPort         string        `envconfig:"SERVER_PORT" default:"8080"`
	ServerWriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"120s"`
	CORSAllowedOrigins string        `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// AI
	AIClientType  string        `envconfig:"AI_CLIENT_TYPE" default:"openai"`
	AIBaseURL     string        `envconfig:"AI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	AIModel       string        `envconfig:"AI_MODEL" default:"gemini-2.0-flash"`
	AITimeout     time.Duration `envconfig:"AI_TIMEOUT" default:"90s"`
	AITemperature float64       `envconfig:"AI_TEMPERATURE" default:"0.9"`
	AIMaxTokens   int           `envconfig:"AI_MAX_TOKENS" default:"4096"`
	// Секрет: GOOGLE_API_KEY или /run/secrets/ai_api_key. Пустое значение не останавливает сервер.
	AIAPIKey string `ignored:"true"`

	// Illustrations
	DefaultImageURL  string        `envconfig:"DEFAULT_IMAGE_URL"`
	ImageAPIURL      string        `envconfig:"IMAGE_API_URL"`
	ImageAPITimeout  time.Duration `envconfig:"IMAGE_API_TIMEOUT" default:"60s"`
	ImageConcurrency int           `envconfig:"IMAGE_CONCURRENCY" default:"3"`
	ImageAPIKey      string        `ignored:"true"`

	CatalogFile string `envconfig:"CATALOG_FILE"`

	// Rate limit на /api/generate, по IP клиента
	GenerateRateLimit float64 `envconfig:"GENERATE_RATE_LIMIT" default:"0.2"`
	GenerateBurst     int     `envconfig:"GENERATE_RATE_BURST" default:"3"`
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// HasCredential true, если ключ модели задан.
func (c *Config) HasCredential() bool {
	return c.AIAPIKey != "" || strings.EqualFold(c.AIClientType, "ollama")
}

// LoadConfig loads configuration from the optional .env file, environment variables and secrets.
func LoadConfig(envFilePath string) (*Config, error) {
	loadDotEnv(envFilePath)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	cfg.AIAPIKey = utils.ReadSecretOrEnv("GOOGLE_API_KEY", "ai_api_key")
	cfg.ImageAPIKey = utils.ReadSecretOrEnv("IMAGE_API_KEY", "image_api_key")
	if cfg.DefaultImageURL == "" {
		cfg.DefaultImageURL = DefaultImageURL
	}
	if cfg.ImageConcurrency < 1 {
		cfg.ImageConcurrency = 1
	}
	return &cfg, nil
}

func loadDotEnv(envFilePath string) {
	if envFilePath == "" {
		return
	}
	if _, err := os.Stat(envFilePath); err == nil {
		if err := godotenv.Load(envFilePath); err != nil {
			log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
		} else {
			log.Printf("Loaded configuration from %s", envFilePath)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
	}
}

// LogFields поля для логирования конфигурации, секреты замаскированы.
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("env", c.Env),
		zap.String("port", c.ServerPort),
		zap.String("ai_client_type", c.AIClientType),
		zap.String("ai_base_url", c.AIBaseURL),
		zap.String("ai_model", c.AIModel),
		zap.Duration("ai_timeout", c.AITimeout),
		zap.String("ai_api_key", utils.Mask(c.AIAPIKey)),
		zap.String("image_api_url", c.ImageAPIURL),
		zap.String("image_api_key", utils.Mask(c.ImageAPIKey)),
		zap.Int("image_concurrency", c.ImageConcurrency),
		zap.String("catalog_file", c.CatalogFile),
		zap.Float64("generate_rate_limit", c.GenerateRateLimit),
		zap.Int("generate_rate_burst", c.GenerateBurst),
	}
}
