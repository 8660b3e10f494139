// Package config loads settings from an optional .env file, an optional TOML file and
// MONZO_ANALYSIS_ prefixed environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/solstice035/monzo-analysis/internal/types"
	"github.com/solstice035/monzo-analysis/pkg/budget"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MONZO_ANALYSIS_SLACK_WEBHOOK_URL
const EnvPrefix = "MONZO_ANALYSIS"

// ErrMissingMonzo is returned by RequireMonzo when API credentials are absent
var ErrMissingMonzo = errors.New("monzo access token and account id are required")

// Config holds application configuration
type Config struct {
	Database  DatabaseConfig    `mapstructure:"database"`
	Monzo     MonzoConfig       `mapstructure:"monzo"`
	Slack     SlackConfig       `mapstructure:"slack"`
	Sentry    SentryConfig      `mapstructure:"sentry"`
	Log       LogConfig         `mapstructure:"log"`
	Retry     types.RetryConfig `mapstructure:"retry"`
	Recurring RecurringConfig   `mapstructure:"recurring"`
}

// DatabaseConfig holds sqlite settings
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// MonzoConfig holds banking API settings
type MonzoConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	AccessToken string `mapstructure:"access_token"`
	AccountID   string `mapstructure:"account_id"`
}

// SlackConfig holds notification settings
type SlackConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

// SentryConfig holds error tracking settings
type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// RecurringConfig holds recurring detection defaults
type RecurringConfig struct {
	MinOccurrences      int     `mapstructure:"min_occurrences"`
	MaxIntervalVariance float64 `mapstructure:"max_interval_variance"`
}

// Load reads configuration from .env in the working directory, the config file and env
func Load() (*Config, error) {
	return LoadWithEnvFile(".env")
}

// LoadWithEnvFile is Load with an explicit dotenv path. A missing file is ignored.
func LoadWithEnvFile(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrap(err, "load env file")
		}
	}

	v := viper.New()

	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "monzo-analysis", "budget.db"))
	v.SetDefault("monzo.base_url", types.DefaultMonzoBaseURL)
	v.SetDefault("monzo.access_token", "")
	v.SetDefault("monzo.account_id", "")
	v.SetDefault("slack.webhook_url", "")
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "production")
	v.SetDefault("log.level", "info")
	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.wait", 1*time.Second)
	v.SetDefault("retry.max_wait", 30*time.Second)
	v.SetDefault("recurring.min_occurrences", budget.DefaultMinOccurrences)
	v.SetDefault("recurring.max_interval_variance", budget.DefaultMaxIntervalVariance)

	v.SetConfigType("toml")

	cfgPath := os.Getenv(EnvPrefix + "_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "monzo-analysis"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config")
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &c, nil
}

// RequireMonzo returns ErrMissingMonzo unless API credentials are configured
func (c *Config) RequireMonzo() error {
	if c.Monzo.AccessToken == "" || c.Monzo.AccountID == "" {
		return ErrMissingMonzo
	}
	return nil
}

// DetectOptions returns the configured recurring detection defaults
func (c *Config) DetectOptions() *budget.DetectOptions {
	return &budget.DetectOptions{
		MinOccurrences:      c.Recurring.MinOccurrences,
		MaxIntervalVariance: c.Recurring.MaxIntervalVariance,
	}
}
