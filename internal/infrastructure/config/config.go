package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/GrandZah/Learning-Matan/internal/entity"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Ladder   LadderConfig   `mapstructure:"ladder"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host     string `mapstructure:"host"`
	HTTPPort int    `mapstructure:"http_port"`
}

// DatabaseConfig holds database configuration. Driver selects the backend:
// sqlite3 (single file, the default) or postgres.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
	LogSQL   bool   `mapstructure:"log_sql"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LadderConfig holds the confidence ladder offsets as duration strings.
type LadderConfig struct {
	Offsets []string `mapstructure:"offsets"`
}

// CatalogConfig holds catalog ingestion defaults.
type CatalogConfig struct {
	Dir      string `mapstructure:"dir"`
	GitURL   string `mapstructure:"git_url"`
	CacheDir string `mapstructure:"cache_dir"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.http_port", 8080)

	viper.SetDefault("database.driver", "sqlite3")
	viper.SetDefault("database.path", "flashcards.db")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "flashcards")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.log_sql", false)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")

	viper.SetDefault("ladder.offsets", []string{"0s", "24h", "72h", "168h", "504h"})

	viper.SetDefault("catalog.dir", "output_images")
	viper.SetDefault("catalog.git_url", "")
	viper.SetDefault("catalog.cache_dir", "")
}

// DatabaseDriver returns the configured driver name after validation.
func (c *Config) DatabaseDriver() (string, error) {
	driver := strings.TrimSpace(strings.ToLower(c.Database.Driver))
	switch driver {
	case "sqlite3", "postgres":
		return driver, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
}

// DatabaseURL returns the DSN for the configured driver: a file path for
// sqlite3, a postgres URL otherwise.
func (c *Config) DatabaseURL() (string, error) {
	driver, err := c.DatabaseDriver()
	if err != nil {
		return "", err
	}
	if driver == "sqlite3" {
		if c.Database.Path == "" {
			return "", fmt.Errorf("database.path is required for sqlite3")
		}
		return c.Database.Path, nil
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	), nil
}

// LadderOffsets parses the configured offsets into durations.
func (c *Config) LadderOffsets() ([]time.Duration, error) {
	if len(c.Ladder.Offsets) == 0 {
		return nil, entity.ErrInvalidLadder
	}
	offsets := make([]time.Duration, 0, len(c.Ladder.Offsets))
	for _, raw := range c.Ladder.Offsets {
		offset, err := time.ParseDuration(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("parse ladder offset %q: %w", raw, err)
		}
		offsets = append(offsets, offset)
	}
	return offsets, nil
}
