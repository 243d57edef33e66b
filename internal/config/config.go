package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	TMDBBaseURL     string `envconfig:"TMDB_BASE_URL" default:"https://api.themoviedb.org/3"`
	TMDBAPIKey      string `envconfig:"TMDB_API_KEY"`
	TMDBLanguage    string `envconfig:"TMDB_LANGUAGE" default:"en-US"`
	TMDBTimeoutSecs int    `envconfig:"TMDB_TIMEOUT_SECS" default:"10"`

	ReadTimeoutSecs  int      `envconfig:"SERVER_READ_TIMEOUT" default:"15"`
	WriteTimeoutSecs int      `envconfig:"SERVER_WRITE_TIMEOUT" default:"30"`
	IdleTimeoutSecs  int      `envconfig:"SERVER_IDLE_TIMEOUT" default:"60"`
	AllowedOrigins   []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// DBURL is optional; without it pass history is not recorded.
	DBURL             string `envconfig:"DB_URL"`
	DBMaxConns        int    `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns        int    `envconfig:"DB_MIN_CONNS" default:"1"`
	DBMaxIdleSecs     int    `envconfig:"DB_MAX_CONN_IDLE_SECS" default:"300"`
	DBMaxLifeSecs     int    `envconfig:"DB_MAX_CONN_LIFETIME_SECS" default:"3600"`
	DBConnTimeoutSecs int    `envconfig:"DB_CONN_TIMEOUT_SECS" default:"10"`
	DBStatementCache  int    `envconfig:"DB_STATEMENT_CACHE_CAPACITY" default:"256"`

	// NATSURL is optional; without it pass events are only logged.
	NATSURL string `envconfig:"NATS_URL"`
}

// Load reads configuration from an optional .env file and the environment,
// applying defaults and validation.
func Load() (Config, error) {
	// a missing .env file is fine
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.TMDBAPIKey == "" {
		return Config{}, fmt.Errorf("TMDB_API_KEY is required")
	}
	if cfg.TMDBBaseURL == "" {
		return Config{}, fmt.Errorf("TMDB_BASE_URL is required")
	}
	if cfg.TMDBTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("TMDB_TIMEOUT_SECS must be positive")
	}
	if cfg.ReadTimeoutSecs <= 0 || cfg.WriteTimeoutSecs <= 0 || cfg.IdleTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("SERVER_*_TIMEOUT values must be positive")
	}
	if cfg.DBURL != "" {
		if err := cfg.validateDB(); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

func (cfg Config) validateDB() error {
	if cfg.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	return nil
}

// StoreEnabled reports whether pass history should be written to Postgres.
func (cfg Config) StoreEnabled() bool {
	return cfg.DBURL != ""
}
