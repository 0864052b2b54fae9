// Package config provides YAML-based configuration with .env and environment
// variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite3"
	DriverDuckDB = "duckdb"
)

// AppConfig represents the root configuration structure
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Service  ServiceConfig  `yaml:"service"`
	Metadata MetadataConfig `yaml:"metadata"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port            int    `yaml:"port"`
	BindAddress     string `yaml:"bind_address"`
	EnableCORS      bool   `yaml:"enable_cors"`
	AllowOrigins    string `yaml:"allow_origins"`
	ReadTimeout     int    `yaml:"read_timeout_seconds"`
	WriteTimeout    int    `yaml:"write_timeout_seconds"`
	IdleTimeout     int    `yaml:"idle_timeout_seconds"`
	ShutdownTimeout int    `yaml:"shutdown_timeout_seconds"`
	BodyLimit       string `yaml:"body_limit"`
	EnableGzip      bool   `yaml:"enable_gzip"`
	StaticDir       string `yaml:"static_dir"`
}

// ServiceConfig selects the HTTP surface: "folders" or "flat".
type ServiceConfig struct {
	Variant string `yaml:"variant"`
}

// MetadataConfig selects and configures the metadata store
type MetadataConfig struct {
	Driver     string `yaml:"driver"`
	MongoURI   string `yaml:"mongo_uri"`
	Collection string `yaml:"collection"`
	SQLDSN     string `yaml:"sql_dsn"`
}

// StorageConfig contains blob storage settings
type StorageConfig struct {
	Mode                 string `yaml:"mode"`
	DataDirectory        string `yaml:"data_directory"`
	UploadsDirectory     string `yaml:"uploads_directory"`
	MaxInlineBytes       int64  `yaml:"max_inline_bytes"`
	CompressInline       bool   `yaml:"compress_inline"`
	TempMaxAgeMinutes    int    `yaml:"temp_max_age_minutes"`
	SweepIntervalMinutes int    `yaml:"sweep_interval_minutes"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level          string `yaml:"level"`
	RequestLogging bool   `yaml:"request_logging"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:            3000,
			BindAddress:     "0.0.0.0",
			EnableCORS:      true,
			AllowOrigins:    "*",
			ReadTimeout:     60,
			WriteTimeout:    60,
			IdleTimeout:     120,
			ShutdownTimeout: 10,
			BodyLimit:       "100M",
		},
		Service: ServiceConfig{
			Variant: "folders",
		},
		Metadata: MetadataConfig{
			Driver:     DriverMongo,
			MongoURI:   "mongodb://localhost:27017/fileuploads",
			Collection: "files",
			SQLDSN:     "./data/metadata.db",
		},
		Storage: StorageConfig{
			Mode:                 "disk",
			DataDirectory:        "./data",
			UploadsDirectory:     "./uploads",
			MaxInlineBytes:       15 << 20,
			TempMaxAgeMinutes:    60,
			SweepIntervalMinutes: 15,
		},
		Logging: LoggingConfig{
			Level:          "info",
			RequestLogging: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file. A .env file next to it is
// loaded into the environment first; variables already set win. When the
// file does not exist the defaults are written to it.
func LoadConfig(configPath string) (*AppConfig, error) {
	configDir := filepath.Dir(configPath)
	if err := godotenv.Load(filepath.Join(configDir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := DefaultConfig()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnvironmentOverrides()
	config.resolvePaths(configDir)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the configuration to a YAML file
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# File service configuration\n# This file is auto-generated on first run\n\n")
	if err := os.WriteFile(configPath, append(header, output...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		c.Metadata.MongoURI = uri
	}
	if driver := os.Getenv("METADATA_DRIVER"); driver != "" {
		c.Metadata.Driver = driver
	}
	if dsn := os.Getenv("SQL_DSN"); dsn != "" {
		c.Metadata.SQLDSN = dsn
	}
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
	}
	if uploadDir := os.Getenv("UPLOAD_DIR"); uploadDir != "" {
		c.Storage.UploadsDirectory = uploadDir
	}
	if mode := os.Getenv("STORAGE_MODE"); mode != "" {
		c.Storage.Mode = mode
	}
	if variant := os.Getenv("SERVICE_VARIANT"); variant != "" {
		c.Service.Variant = variant
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}

	resolve(&c.Storage.DataDirectory)
	resolve(&c.Storage.UploadsDirectory)
	resolve(&c.Server.StaticDir)
	if c.Metadata.Driver != DriverMongo && isFileDSN(c.Metadata.SQLDSN) {
		resolve(&c.Metadata.SQLDSN)
	}
}

// isFileDSN reports whether dsn is a plain file path. In-memory databases and
// URI forms are left alone.
func isFileDSN(dsn string) bool {
	return dsn != "" && !strings.HasPrefix(dsn, ":memory:") && !strings.HasPrefix(dsn, "file:")
}

// Validate checks the enumerated settings
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	switch c.Service.Variant {
	case "folders", "flat":
	default:
		return fmt.Errorf("invalid service variant %q: want folders or flat", c.Service.Variant)
	}
	switch c.Storage.Mode {
	case "disk", "inline":
	default:
		return fmt.Errorf("invalid storage mode %q: want disk or inline", c.Storage.Mode)
	}
	switch c.Metadata.Driver {
	case DriverMongo, DriverSQLite, DriverDuckDB:
	default:
		return fmt.Errorf("invalid metadata driver %q", c.Metadata.Driver)
	}
	return nil
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// Origins returns the CORS origins, "*" when none are configured
func (c *AppConfig) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.Server.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// TempMaxAge is how old a staged upload must be before it is swept
func (c *AppConfig) TempMaxAge() time.Duration {
	return time.Duration(c.Storage.TempMaxAgeMinutes) * time.Minute
}

// SweepInterval is the period of the temp sweeper; zero disables it
func (c *AppConfig) SweepInterval() time.Duration {
	return time.Duration(c.Storage.SweepIntervalMinutes) * time.Minute
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{c.Storage.DataDirectory}
	if c.Storage.Mode == "disk" {
		dirs = append(dirs, c.Storage.UploadsDirectory)
	}
	if c.Metadata.Driver != DriverMongo && isFileDSN(c.Metadata.SQLDSN) {
		dirs = append(dirs, filepath.Dir(c.Metadata.SQLDSN))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
