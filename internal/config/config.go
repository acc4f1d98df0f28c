package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database" validate:"required"`
	Auth        AuthConfig        `mapstructure:"auth" validate:"required"`
	Log         LogConfig         `mapstructure:"log"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard" validate:"required"`
	Review      ReviewConfig      `mapstructure:"review"`
	Daily       DailyConfig       `mapstructure:"daily"`
	Redis       RedisConfig       `mapstructure:"redis"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=1"`
	ConnectRetrySeconds    int    `mapstructure:"connect_retry_seconds" validate:"gte=0"`
}

// AuthConfig contains the settings needed to validate bearer tokens.
// Tokens are issued by the external identity service.
type AuthConfig struct {
	JWTSecret        string `mapstructure:"jwt_secret" validate:"required,min=32"`
	ClockSkewSeconds int    `mapstructure:"clock_skew_seconds" validate:"gte=0"`
}

// LogConfig controls log output format and optional file rotation.
type LogConfig struct {
	// Format is "json" (default) or "text" for colourised console output.
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`

	// File enables a rotating log file in addition to stdout when set.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
	Compress   bool   `mapstructure:"compress"`
}

// LeaderboardConfig contains aggregation and read path settings.
type LeaderboardConfig struct {
	RefreshIntervalMinutes int `mapstructure:"refresh_interval_minutes" validate:"required,gte=1"`
	DefaultLimit           int `mapstructure:"default_limit" validate:"required,gte=1,ltefield=MaxLimit"`
	MaxLimit               int `mapstructure:"max_limit" validate:"required,gte=1,lte=1000"`
	CacheTTLSeconds        int `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// ReviewConfig contains review scheduler settings.
type ReviewConfig struct {
	IntervalsDays      []int `mapstructure:"intervals_days" validate:"omitempty,len=6,dive,gt=0"`
	MaxConflictRetries int   `mapstructure:"max_conflict_retries" validate:"gte=1"`
}

// DailyConfig contains daily challenge settings.
type DailyConfig struct {
	// Timezone is the IANA zone whose calendar defines "today" for the daily
	// challenge and the daily/weekly/monthly leaderboard windows.
	Timezone string `mapstructure:"timezone" validate:"required"`
}

// RedisConfig configures the optional leaderboard read cache.
// An empty URL disables caching.
type RedisConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}
