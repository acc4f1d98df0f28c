package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. PRACTICE_SERVER_PORT.
const EnvPrefix = "PRACTICE"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	if err := loadDotenvIfPresent(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate runs struct validation and checks that cannot be expressed as tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Daily.Timezone); err != nil {
		return fmt.Errorf("config validation failed: daily.timezone: %w", err)
	}
	return nil
}

// Location resolves the configured calendar timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Daily.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)
	v.SetDefault("database.connect_retry_seconds", 30)

	v.SetDefault("auth.clock_skew_seconds", 30)

	v.SetDefault("log.format", "json")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 14)

	v.SetDefault("leaderboard.refresh_interval_minutes", 30)
	v.SetDefault("leaderboard.default_limit", 50)
	v.SetDefault("leaderboard.max_limit", 100)
	v.SetDefault("leaderboard.cache_ttl_seconds", 300)

	v.SetDefault("review.max_conflict_retries", 3)

	v.SetDefault("daily.timezone", "UTC")
}

// bindEnvs makes every key visible to Unmarshal even when it only exists in
// the environment, which AutomaticEnv alone does not do.
func bindEnvs(v *viper.Viper) {
	keys := []string{
		"server.port", "server.log_level", "server.shutdown_timeout_seconds",
		"database.url", "database.max_open_conns", "database.max_idle_conns",
		"database.conn_max_lifetime_minutes", "database.connect_retry_seconds",
		"auth.jwt_secret", "auth.clock_skew_seconds",
		"log.format", "log.file", "log.max_size_mb", "log.max_backups", "log.max_age_days", "log.compress",
		"leaderboard.refresh_interval_minutes", "leaderboard.default_limit",
		"leaderboard.max_limit", "leaderboard.cache_ttl_seconds",
		"review.intervals_days", "review.max_conflict_retries",
		"daily.timezone",
		"redis.url",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadDotenvIfPresent loads KEY=VALUE pairs from path without overriding
// variables that are already set. A missing file is not an error.
func loadDotenvIfPresent(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat dotenv file failed path=%s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load dotenv file failed path=%s: %w", path, err)
	}
	return nil
}
