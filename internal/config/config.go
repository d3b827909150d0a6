package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	ierr "github.com/recouphq/recoup/internal/errors"
	"github.com/recouphq/recoup/internal/types"
)

type Configuration struct {
	Deployment DeploymentConfig    `mapstructure:"deployment"`
	Logging    LoggingConfig       `mapstructure:"logging"`
	Server     ServerConfig        `mapstructure:"server"`
	Postgres   PostgresConfig      `mapstructure:"postgres"`
	Cache      CacheConfig         `mapstructure:"cache"`
	Email      EmailConfig         `mapstructure:"email"`
	Stripe     StripeConfig        `mapstructure:"stripe"`
	Dunning    types.DunningConfig `mapstructure:"dunning"`
}

type DeploymentConfig struct {
	Mode types.DeploymentMode `mapstructure:"mode"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	// SweepSchedule is the cron expression driving the in-process dunning
	// sweep. Default is hourly at minute 0.
	SweepSchedule string `mapstructure:"sweep_schedule"`
}

type PostgresConfig struct {
	// DSN is the lib/pq connection string. Empty DSN switches the service to
	// in-memory stores, which is only meant for local development.
	DSN             string `mapstructure:"dsn"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_minutes"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type EmailConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	APIKey      string `mapstructure:"api_key"`
	FromAddress string `mapstructure:"from_address"`
}

type StripeConfig struct {
	SecretKey string `mapstructure:"secret_key"`
}

// NewConfig loads configuration from config.yaml and the environment.
// Environment variables use the RECOUP_ prefix with underscores, e.g.
// RECOUP_DUNNING_MAX_ATTEMPTS.
func NewConfig() (*Configuration, error) {
	// Best effort .env loading for local development
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("RECOUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; env vars and defaults are enough
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, ierr.WithError(err).
				WithHint("Failed to read config file").
				Mark(ierr.ErrSystem)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to unmarshal configuration").
			Mark(ierr.ErrSystem)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := GetDefaultConfig()
	v.SetDefault("deployment.mode", string(def.Deployment.Mode))
	v.SetDefault("logging.level", string(def.Logging.Level))
	v.SetDefault("server.address", def.Server.Address)
	v.SetDefault("server.sweep_schedule", def.Server.SweepSchedule)
	v.SetDefault("postgres.max_open_conns", def.Postgres.MaxOpenConns)
	v.SetDefault("postgres.max_idle_conns", def.Postgres.MaxIdleConns)
	v.SetDefault("postgres.conn_max_lifetime_minutes", def.Postgres.ConnMaxLifetime)
	v.SetDefault("cache.enabled", def.Cache.Enabled)
	v.SetDefault("email.enabled", def.Email.Enabled)
	v.SetDefault("dunning.max_attempts", def.Dunning.MaxAttempts)
	v.SetDefault("dunning.retry_interval_days", def.Dunning.RetryIntervalDays)
	v.SetDefault("dunning.grace_period_days", def.Dunning.GracePeriodDays)
	v.SetDefault("dunning.templates.first_reminder", def.Dunning.Templates.FirstReminder)
	v.SetDefault("dunning.templates.second_reminder", def.Dunning.Templates.SecondReminder)
	v.SetDefault("dunning.templates.final_warning", def.Dunning.Templates.FinalWarning)
	v.SetDefault("dunning.templates.suspended", def.Dunning.Templates.Suspended)
}

// Validate checks the configuration for values the service cannot start with.
func (c *Configuration) Validate() error {
	if err := c.Dunning.Validate(); err != nil {
		return err
	}
	if c.Email.Enabled && c.Email.APIKey == "" {
		return ierr.NewError("email is enabled but no API key is configured").
			WithHint("Set email.api_key or disable email").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// GetDefaultConfig returns the stock configuration used by tests and as the
// base for NewConfig defaults.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelInfo},
		Server: ServerConfig{
			Address:       ":8080",
			SweepSchedule: "0 * * * *",
		},
		Postgres: PostgresConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30,
		},
		Cache:   CacheConfig{Enabled: true},
		Email:   EmailConfig{Enabled: false},
		Dunning: types.DefaultDunningConfig(),
	}
}
