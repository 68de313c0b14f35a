package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	FrontendURL   string
	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	CatalogCacheTTL time.Duration

	AnthropicAPIKey string
	AnthropicModel  string
	MockGenerator   bool

	LogLevel string
	LogDev   bool
}

// Load reads a .env file if one exists, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "5000"),
		DatabaseURL:        databaseURL(),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getInt("REDIS_DB", 0),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleCallbackURL:  getEnv("GOOGLE_CALLBACK_URL", "http://localhost:5000/auth/google/callback"),
		FrontendURL:        strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		SessionSecret:      getEnv("SESSION_SECRET", ""),
		SessionTTL:         getDuration("SESSION_TTL", 7*24*time.Hour),
		CookieSecure:       getEnv("COOKIE_SECURE", "") == "1",
		CatalogCacheTTL:    getDuration("CATALOG_CACHE_TTL", 10*time.Minute),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogDev:             getEnv("LOG_DEV", "") == "1",
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadStorage reads the database, cache, generator and logging settings. It
// is for offline tools that need no OAuth credentials.
func LoadStorage() *Config {
	_ = godotenv.Load()

	return &Config{
		DatabaseURL:     databaseURL(),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getInt("REDIS_DB", 0),
		CatalogCacheTTL: getDuration("CATALOG_CACHE_TTL", 10*time.Minute),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", ""),
		MockGenerator:   getEnv("MOCK_GENERATOR", "") == "true",
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogDev:          getEnv("LOG_DEV", "") == "1",
	}
}

func (c *Config) validate() error {
	var missing []string
	if c.GoogleClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if c.GoogleClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if c.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}

// databaseURL prefers DATABASE_URL and otherwise assembles a DSN from the
// discrete DB_* variables.
func databaseURL() string {
	if dsn := getEnv("DATABASE_URL", ""); dsn != "" {
		return dsn
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("DB_USER", "fika"),
		getEnv("DB_PASSWORD", "fika"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "fika_quiz"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
