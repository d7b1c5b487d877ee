package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the process configuration.
type Config struct {
	Env      string         `mapstructure:"app_env" validate:"oneof=development production"`
	Timezone string         `mapstructure:"timezone" validate:"required"`
	DB       DBConfig       `mapstructure:",squash"`
	Report   ReportConfig   `mapstructure:",squash"`
	Import   ImportSettings `mapstructure:",squash"`
}

// DBConfig selects and locates the database.
type DBConfig struct {
	Type string `mapstructure:"db_type" validate:"oneof=sqlite postgres"`
	Path string `mapstructure:"db_path" validate:"required_if=Type sqlite"`
	URL  string `mapstructure:"database_url" validate:"required_if=Type postgres"`
}

// ReportConfig controls the scheduled report job.
type ReportConfig struct {
	Enabled bool `mapstructure:"report_enabled"`
	Days    int  `mapstructure:"report_days" validate:"min=1,max=365"`
	Hour    int  `mapstructure:"report_hour" validate:"min=0,max=23"`
}

// ImportSettings names optional files imported on start. Flashcards are
// imported before review history so events find their cards.
type ImportSettings struct {
	File           string `mapstructure:"import_file"`
	FlashcardsFile string `mapstructure:"import_flashcards_file"`
}

var keys = []string{
	"app_env", "timezone", "db_type", "db_path", "database_url",
	"report_enabled", "report_days", "report_hour", "import_file",
	"import_flashcards_file",
}

// Load reads .env (if present) and the environment into a validated Config.
func Load() (*Config, error) {
	// A missing .env file is fine, the environment alone is enough.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("app_env", "production")
	v.SetDefault("timezone", "Local")
	v.SetDefault("db_type", "sqlite")
	v.SetDefault("db_path", "data/progress.db")
	v.SetDefault("report_enabled", true)
	v.SetDefault("report_days", 30)
	v.SetDefault("report_hour", 21)

	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Location resolves the configured timezone used for calendar days.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// IsDevelopment reports whether the process runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
