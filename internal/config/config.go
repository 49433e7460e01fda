package config

import (
	"os"
	"strconv"
	"strings"

	"healthcorr/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data      DataConfig
	Engine    EngineConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Profiling ProfilingConfig
	View      ViewConfig
}

// DataConfig holds survey input settings
type DataConfig struct {
	File           string
	Sheet          string
	CodebookFile   string
	MinValidFields int
}

// EngineConfig holds correlation engine settings
type EngineConfig struct {
	Workers int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig holds snapshot storage settings. An empty URL disables storage.
type DatabaseConfig struct {
	Driver string
	URL    string
}

// Enabled reports whether snapshot storage is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// ViewConfig holds heatmap presentation defaults
type ViewConfig struct {
	Scheme string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data:      *loadDataConfig(),
		Engine:    *loadEngineConfig(),
		Server:    *loadServerConfig(),
		Database:  *loadDatabaseConfig(),
		Profiling: *loadProfilingConfig(),
		View:      *loadViewConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// RequireDataFile fails when no survey file is configured
func (c *Config) RequireDataFile() error {
	if c.Data.File == "" {
		return errors.ConfigInvalid("DATA_FILE is required")
	}
	return nil
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		File:           getEnvOrDefault("DATA_FILE", ""),
		Sheet:          getEnvOrDefault("DATA_SHEET", "Sheet1"),
		CodebookFile:   getEnvOrDefault("CODEBOOK_FILE", ""),
		MinValidFields: getEnvIntOrDefault("MIN_VALID_FIELDS", 5),
	}
}

func loadEngineConfig() *EngineConfig {
	return &EngineConfig{
		Workers: getEnvIntOrDefault("ENGINE_WORKERS", 1),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	url, ok := os.LookupEnv("DATABASE_URL")
	if !ok {
		url = "healthcorr.db"
	}
	return &DatabaseConfig{
		Driver: strings.ToLower(getEnvOrDefault("DB_DRIVER", "sqlite3")),
		URL:    strings.TrimSpace(url),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func loadViewConfig() *ViewConfig {
	return &ViewConfig{
		Scheme: getEnvOrDefault("COLOR_SCHEME", "RdBu"),
	}
}

func validateConfig(config *Config) error {
	if config.Data.MinValidFields < 1 {
		return errors.ConfigInvalid("MIN_VALID_FIELDS must be at least 1")
	}
	if config.Engine.Workers < 1 {
		return errors.ConfigInvalid("ENGINE_WORKERS must be at least 1")
	}
	switch config.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return errors.ConfigInvalid("DB_DRIVER must be sqlite3 or postgres")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
