// Package config centralizes environment-driven configuration for the service
// and the CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Environment variable names shared across the server and the CLI.
const (
	EnvPort             = "PORT"
	EnvLogLevel         = "LOG_LEVEL"
	EnvDBHost           = "DB_HOST"
	EnvDBUser           = "DB_USER"
	EnvDBPassword       = "DB_PASSWORD"
	EnvDBName           = "DB_NAME"
	EnvDBPort           = "DB_PORT"
	EnvDBSSLEnabled     = "DB_SSL_ENABLED"
	EnvDiscordPublicKey = "DISCORD_PUBLIC_KEY"
	EnvDiscordAppID     = "DISCORD_APP_ID"
	EnvDiscordBotToken  = "DISCORD_BOT_TOKEN"
	EnvDiscordGuildID   = "DISCORD_GUILD_ID"
	EnvDiscordAPIBase   = "DISCORD_API_BASE_URL"
	EnvTornAPIBase      = "TORN_API_BASE_URL"
	EnvBatchSize        = "BATCH_SIZE"
	EnvAnalyzeTimeout   = "ANALYZE_TIMEOUT"
	EnvMaxTargets       = "MAX_TARGETS"
	EnvMaxGroupTargets  = "MAX_GROUP_TARGETS"
	EnvMaxIDDigits      = "MAX_ID_DIGITS"
	EnvRateLimitCalls   = "RATE_LIMIT_CALLS"
	EnvRateLimitPeriod  = "RATE_LIMIT_PERIOD"
)

// Defaults for everything that is safe to default.
const (
	DefaultPort            = "8080"
	DefaultDiscordAPIBase  = "https://discord.com/api/v10"
	DefaultTornAPIBase     = "https://api.torn.com/v2"
	DefaultBatchSize       = 2
	DefaultAnalyzeTimeout  = 8 * time.Second
	DefaultMaxTargets      = 50
	DefaultMaxGroupTargets = 100
	DefaultMaxIDDigits     = 10
	DefaultRateLimitCalls  = 80
	DefaultRateLimitPeriod = 60 * time.Second
)

// Config holds the runtime configuration for the interactions service.
type Config struct {
	Port string `validate:"required"`

	// Database connection settings, mapped onto db.Options by the caller.
	DBHost       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBPort       int
	DBSSLEnabled bool

	// Platform (Discord) settings. The public key authenticates inbound
	// interactions; the application id addresses the follow-up webhooks.
	DiscordPublicKey  string `validate:"required,hexadecimal"`
	DiscordAppID      string `validate:"required"`
	DiscordBotToken   string
	DiscordGuildID    string
	DiscordAPIBaseURL string `validate:"required,url"`

	// Game API settings.
	TornAPIBaseURL  string `validate:"required,url"`
	AnalyzeTimeout  time.Duration
	RateLimitCalls  int `validate:"min=1"`
	RateLimitPeriod time.Duration

	// Job processing knobs.
	BatchSize       int `validate:"min=1"`
	MaxTargets      int `validate:"min=1"`
	MaxGroupTargets int `validate:"min=1"`
	MaxIDDigits     int `validate:"min=1"`
}

// Load reads the configuration from the environment and validates it.
// Callers are expected to have loaded any .env file beforehand.
func Load() (*Config, error) {
	cfg := &Config{
		Port:              GetEnv(EnvPort, DefaultPort),
		DBHost:            GetEnv(EnvDBHost, ""),
		DBUser:            GetEnv(EnvDBUser, ""),
		DBPassword:        GetEnv(EnvDBPassword, ""),
		DBName:            GetEnv(EnvDBName, ""),
		DBPort:            GetEnvInt(EnvDBPort, 0),
		DBSSLEnabled:      GetEnvBool(EnvDBSSLEnabled, false),
		DiscordPublicKey:  GetEnv(EnvDiscordPublicKey, ""),
		DiscordAppID:      GetEnv(EnvDiscordAppID, ""),
		DiscordBotToken:   GetEnv(EnvDiscordBotToken, ""),
		DiscordGuildID:    GetEnv(EnvDiscordGuildID, ""),
		DiscordAPIBaseURL: GetEnv(EnvDiscordAPIBase, DefaultDiscordAPIBase),
		TornAPIBaseURL:    GetEnv(EnvTornAPIBase, DefaultTornAPIBase),
		AnalyzeTimeout:    GetEnvDuration(EnvAnalyzeTimeout, DefaultAnalyzeTimeout),
		RateLimitCalls:    GetEnvInt(EnvRateLimitCalls, DefaultRateLimitCalls),
		RateLimitPeriod:   GetEnvDuration(EnvRateLimitPeriod, DefaultRateLimitPeriod),
		BatchSize:         GetEnvInt(EnvBatchSize, DefaultBatchSize),
		MaxTargets:        GetEnvInt(EnvMaxTargets, DefaultMaxTargets),
		MaxGroupTargets:   GetEnvInt(EnvMaxGroupTargets, DefaultMaxGroupTargets),
		MaxIDDigits:       GetEnvInt(EnvMaxIDDigits, DefaultMaxIDDigits),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// GetEnv retrieves the value of an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// GetEnvInt retrieves an integer environment variable with a fallback value.
// Unparseable values fall back rather than abort; validation catches anything
// that matters.
func GetEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

// GetEnvBool retrieves a boolean environment variable with a fallback value.
func GetEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

// GetEnvDuration retrieves a duration environment variable with a fallback
// value. Plain integers are read as seconds.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
