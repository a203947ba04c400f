package config

import (
	"fmt"
	"os"
	"time"

	"github.com/oscelab/osce-review/internal/domain"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Rubric    RubricConfig    `mapstructure:"rubric"`
	Session   SessionConfig   `mapstructure:"session"`
	Snapshots SnapshotsConfig `mapstructure:"snapshots"`
	Mail      MailConfig      `mapstructure:"mail"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RubricConfig optionally overrides the built-in checklist template.
type RubricConfig struct {
	Items []RubricItemConfig `mapstructure:"items"`
}

type RubricItemConfig struct {
	ID    string `mapstructure:"id"`
	Skill string `mapstructure:"skill"`
}

// Template returns the configured checklist, or the built-in one when none
// is configured. Every item starts out pending.
func (c RubricConfig) Template() []domain.RubricItem {
	if len(c.Items) == 0 {
		return domain.DefaultRubric()
	}
	items := make([]domain.RubricItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, domain.RubricItem{
			ID:     it.ID,
			Skill:  it.Skill,
			Status: domain.StatusPending,
		})
	}
	return items
}

type SessionConfig struct {
	DefaultDurationMinutes int `mapstructure:"default_duration_minutes"`
}

type SnapshotsConfig struct {
	Dir         string `mapstructure:"dir"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb"`
}

type MailConfig struct {
	Recipient string `mapstructure:"recipient"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// File, when set, enables a rotating log file alongside stderr.
	File       string `mapstructure:"file"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Session
	v.SetDefault("session.default_duration_minutes", 10)

	// Snapshots
	v.SetDefault("snapshots.dir", "./data/snapshots")
	v.SetDefault("snapshots.max_upload_mb", 10)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.max_age_days", 7)

	// Metrics
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("mail.recipient", "MAIL_RECIPIENT")
	v.BindEnv("snapshots.dir", "SNAPSHOTS_DIR")
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.file", "LOG_FILE")
}
