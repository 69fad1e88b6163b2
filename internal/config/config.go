// Package config loads didrpcd settings from the environment and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

// Config represents the daemon configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Runtime  RuntimeConfig
	LogLevel slog.Level
}

// ServerConfig holds listen addresses.
type ServerConfig struct {
	GRPCAddr    string
	HTTPAddr    string
	MetricsAddr string // empty disables the metrics listener
}

// DatabaseConfig points at the chain mirror.
type DatabaseConfig struct {
	DSN             string
	BlocksTable     string
	HistoryTable    string
	RefreshInterval time.Duration
}

// RuntimeConfig holds query server settings.
type RuntimeConfig struct {
	MinAPIVersion uint32
}

// ErrMissingDSN is returned by Load when DB_DSN is unset.
var ErrMissingDSN = errors.New("config: DB_DSN is required (set via environment variable or config file)")

// InitConfig initializes viper. configFile is optional; when set it
// must exist. Environment variables take precedence over the file.
func InitConfig(configFile string) error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	viper.AllowEmptyEnv(true)
	viper.AutomaticEnv()

	viper.SetDefault("GRPC_ADDR", ":9944")
	viper.SetDefault("HTTP_ADDR", ":9933")
	viper.SetDefault("METRICS_ADDR", ":9615")
	viper.SetDefault("DB_BLOCKS_TABLE", "did_blocks")
	viper.SetDefault("DB_HISTORY_TABLE", "did_attribute_history")
	viper.SetDefault("BEST_REFRESH_INTERVAL", "2s")
	viper.SetDefault("MIN_API_VERSION", 0)
	viper.SetDefault("LOG_LEVEL", "info")

	return nil
}

// Load loads configuration from viper.
func Load() (*Config, error) {
	dsn := viper.GetString("DB_DSN")
	if dsn == "" {
		return nil, ErrMissingDSN
	}

	refresh := viper.GetDuration("BEST_REFRESH_INTERVAL")
	if refresh <= 0 {
		return nil, fmt.Errorf("config: BEST_REFRESH_INTERVAL must be positive, got %q", viper.GetString("BEST_REFRESH_INTERVAL"))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("LOG_LEVEL"))); err != nil {
		return nil, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			GRPCAddr:    viper.GetString("GRPC_ADDR"),
			HTTPAddr:    viper.GetString("HTTP_ADDR"),
			MetricsAddr: viper.GetString("METRICS_ADDR"),
		},
		Database: DatabaseConfig{
			DSN:             dsn,
			BlocksTable:     viper.GetString("DB_BLOCKS_TABLE"),
			HistoryTable:    viper.GetString("DB_HISTORY_TABLE"),
			RefreshInterval: refresh,
		},
		Runtime: RuntimeConfig{
			MinAPIVersion: viper.GetUint32("MIN_API_VERSION"),
		},
		LogLevel: level,
	}, nil
}
