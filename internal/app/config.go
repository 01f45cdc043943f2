package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/gaqzi/employee-reviews/internal/platform/database"
)

type Config struct {
	Addr     string
	Dialect  database.Dialect
	DSN      string
	LogLevel slog.Level
}

func NewConfig() Config {
	return Config{
		Addr:     "127.0.0.1:3000",
		Dialect:  database.SQLite,
		DSN:      "file:employee-reviews.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		LogLevel: slog.LevelInfo,
	}
}

// LoadConfig starts from NewConfig and overrides it from the environment.
// Values in envFile are loaded first but never replace variables that are already set.
// A missing envFile is fine.
func LoadConfig(envFile string) (Config, error) {
	cfg := NewConfig()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if v, ok := os.LookupEnv("ADDR"); ok {
		cfg.Addr = v
	}

	if v, ok := os.LookupEnv("DB_DRIVER"); ok {
		dialect, err := database.ParseDialect(v)
		if err != nil {
			return Config{}, err
		}
		cfg.Dialect = dialect
	}

	if v, ok := os.LookupEnv("DB_DSN"); ok {
		cfg.DSN = v
	}

	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(v))); err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL %q: %w", v, err)
		}
	}

	return cfg, nil
}
