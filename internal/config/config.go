package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
)

type Config struct {
	Iris      IrisConfig
	Kakao     KakaoConfig
	Storage   StorageConfig
	Postgres  PostgresConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Directory DirectoryConfig
	Broadcast BroadcastConfig
	HTTP      HTTPConfig
	Logging   LoggingConfig
	Bot       BotConfig
}

// IrisConfig points at the Iris bridge. With WebSocketEnabled false the bot
// only receives messages through the HTTP webhook.
type IrisConfig struct {
	BaseURL          string
	WSURL            string
	WebSocketEnabled bool
}

// KakaoConfig restricts which rooms the bot answers in. Empty means all rooms.
type KakaoConfig struct {
	Rooms []string
}

type StorageConfig struct {
	Backend string
	Timeout time.Duration
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type DirectoryConfig struct {
	AdminID           int64
	CredentialModulus int
}

type BroadcastConfig struct {
	Enabled     bool
	Concurrency int
}

type HTTPConfig struct {
	Addr string
}

type LoggingConfig struct {
	Level string
	File  string
}

type BotConfig struct {
	Prefix string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Iris: IrisConfig{
			BaseURL:          getEnv("IRIS_BASE_URL", "http://localhost:3000"),
			WSURL:            getEnv("IRIS_WS_URL", "ws://localhost:3000/ws"),
			WebSocketEnabled: getEnvBool("IRIS_WEBSOCKET_ENABLED", true),
		},
		Kakao: KakaoConfig{
			Rooms: parseCommaSeparated(getEnv("KAKAO_ROOMS", "")),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendSQLite)),
			Timeout: time.Duration(getEnvInt("STORAGE_TIMEOUT_MS", 3000)) * time.Millisecond,
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "groupbot"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "groupbot"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "data/groupbot.db"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Directory: DirectoryConfig{
			AdminID:           getEnvInt64("ADMIN_ID", 0),
			CredentialModulus: getEnvInt("CREDENTIAL_MODULUS", 10),
		},
		Broadcast: BroadcastConfig{
			Enabled:     getEnvBool("BROADCAST_ENABLED", true),
			Concurrency: getEnvInt("BROADCAST_CONCURRENCY", 8),
		},
		HTTP: HTTPConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Bot: BotConfig{
			Prefix: getEnv("BOT_PREFIX", "/"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Iris.BaseURL == "" {
		return fmt.Errorf("IRIS_BASE_URL is required")
	}
	if c.Iris.WebSocketEnabled && c.Iris.WSURL == "" {
		return fmt.Errorf("IRIS_WS_URL is required")
	}
	if c.Directory.AdminID == 0 {
		return fmt.Errorf("ADMIN_ID is required")
	}
	if c.Directory.CredentialModulus < 1 || c.Directory.CredentialModulus > 10 {
		return fmt.Errorf("CREDENTIAL_MODULUS must be between 1 and 10, got %d", c.Directory.CredentialModulus)
	}
	if c.Storage.Timeout <= 0 {
		return fmt.Errorf("STORAGE_TIMEOUT_MS must be positive")
	}
	switch c.Storage.Backend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.Postgres.Database == "" {
			return fmt.Errorf("POSTGRES_DB is required for the postgres backend")
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	if c.Broadcast.Concurrency < 1 {
		return fmt.Errorf("BROADCAST_CONCURRENCY must be at least 1")
	}
	if c.Bot.Prefix == "" {
		return fmt.Errorf("BOT_PREFIX must not be empty")
	}
	return nil
}

// AllowsRoom reports whether the bot should answer in room.
func (k KakaoConfig) AllowsRoom(room string) bool {
	if len(k.Rooms) == 0 {
		return true
	}
	for _, r := range k.Rooms {
		if r == room {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
