package shared

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	// loads a .env file, when present, before any env var is read
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string `validate:"required"`
	LogLevel    string `validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	HTTPAddr    string `validate:"required"`
	DBDriver    string `validate:"required,oneof=mysql sqlite3 sqlite"`
	DBDSN       string `validate:"required"`
	AutoMigrate bool
	RedisAddr   string `validate:"omitempty,hostname_port"`
	RedisDB     int    `validate:"gte=0"`
	RedisPass   string
	CacheTTL    time.Duration `validate:"gt=0"`
	APIRPS      int           `validate:"gt=0"`
	APIBurst    int           `validate:"gt=0"`
	Shutdown    time.Duration `validate:"gt=0"`
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-integer env value")
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", "info"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		DBDriver:    env("DB_DRIVER", "mysql"),
		DBDSN:       env("DB_DSN", "root:root@tcp(localhost:3306)/reviews?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		AutoMigrate: envBool("AUTO_MIGRATE", false),
		RedisAddr:   env("REDIS_ADDR", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		APIRPS:      atoi("API_RPS", 50),
		APIBurst:    atoi("API_BURST", 100),
		Shutdown:    time.Duration(atoi("SHUTDOWN_SECONDS", 10)) * time.Second,
	}
	if c.RedisAddr == "" {
		log.Warn().Msg("REDIS_ADDR is empty; employee lookups are not cached")
	}
	return c
}

// Validate reports the first group of invalid settings.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
