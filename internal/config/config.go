// Package config loads service settings from an optional config.yaml and
// TCG_-prefixed environment variables (TCG_SERVER_PORT, TCG_DATABASE_DSN, ...).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port           string   `mapstructure:"port"`
		CORSOrigins    []string `mapstructure:"cors_origins"`
		UploadRate     float64  `mapstructure:"upload_rate"`
		UploadBurst    int      `mapstructure:"upload_burst"`
		MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
	} `mapstructure:"server"`
	Database struct {
		Driver   string `mapstructure:"driver"`
		DSN      string `mapstructure:"dsn"`
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"database"`
	Sync struct {
		PoolSize int `mapstructure:"pool_size"`
		// StaleJobAfter is how long a job may sit unfinished before the
		// server fails it at startup
		StaleJobAfter time.Duration `mapstructure:"stale_job_after"`
	} `mapstructure:"sync"`
	Progress struct {
		Capacity int           `mapstructure:"capacity"`
		TTL      time.Duration `mapstructure:"ttl"`
	} `mapstructure:"progress"`
	Log struct {
		Level       string `mapstructure:"level"`
		Development bool   `mapstructure:"development"`
	} `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173", "http://localhost:3000"})
	v.SetDefault("server.upload_rate", 2.0)
	v.SetDefault("server.upload_burst", 5)
	v.SetDefault("server.max_upload_bytes", 32<<20)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./tcg_inventory.db")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("sync.pool_size", 8)
	v.SetDefault("sync.stale_job_after", time.Hour)

	v.SetDefault("progress.capacity", 1024)
	v.SetDefault("progress.ttl", 30*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load reads config.yaml from the given directories (./configs and . when none
// are given). A missing file is not an error; every key has a default.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if len(paths) == 0 {
		paths = []string{"./configs", "."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("TCG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Sync.PoolSize < 1 {
		return fmt.Errorf("sync.pool_size must be at least 1, got %d", c.Sync.PoolSize)
	}
	if c.Sync.StaleJobAfter <= 0 {
		return fmt.Errorf("sync.stale_job_after must be positive, got %v", c.Sync.StaleJobAfter)
	}
	if c.Progress.Capacity < 1 {
		return fmt.Errorf("progress.capacity must be at least 1, got %d", c.Progress.Capacity)
	}
	return nil
}
