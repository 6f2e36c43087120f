package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"wastelookup/internal/collection"
)

// EnvPrefix namespaces every environment variable.
const EnvPrefix = "WASTE"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	// AdminKey gates cache invalidation. It is a convenience switch for
	// operators, not access control.
	AdminKey string `yaml:"admin_key" envconfig:"ADMIN_KEY"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// DataConfig describes the collection source.
type DataConfig struct {
	// Source is a .xlsx/.csv file, or a directory holding dated exports.
	Source           string        `yaml:"source" envconfig:"SOURCE"`
	Sheet            string        `yaml:"sheet" envconfig:"SHEET"`
	IdentifierColumn string        `yaml:"identifier_column" envconfig:"IDENTIFIER_COLUMN"`
	DateColumn       string        `yaml:"date_column" envconfig:"DATE_COLUMN"`
	MassColumn       string        `yaml:"mass_column" envconfig:"MASS_COLUMN"`
	PricePerKg       float64       `yaml:"price_per_kg" envconfig:"PRICE_PER_KG"`
	Preload          bool          `yaml:"preload" envconfig:"PRELOAD"`
	Watch            bool          `yaml:"watch" envconfig:"WATCH"`
	WatchDebounce    time.Duration `yaml:"watch_debounce" envconfig:"WATCH_DEBOUNCE"`
}

// Columns returns the configured column labels.
func (d DataConfig) Columns() collection.Columns {
	return collection.Columns{
		Identifier: d.IdentifierColumn,
		Date:       d.DateColumn,
		Mass:       d.MassColumn,
	}.WithDefaults()
}

// TelemetryConfig controls OpenTelemetry setup.
type TelemetryConfig struct {
	Environment   string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	EnableTracing bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	EnableMetrics bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  30 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   25,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Data: DataConfig{
			Source:           "data.xlsx",
			IdentifierColumn: collection.DefaultIdentifierColumn,
			DateColumn:       collection.DefaultDateColumn,
			MassColumn:       collection.DefaultMassColumn,
			PricePerKg:       0.25,
			Preload:          true,
			WatchDebounce:    500 * time.Millisecond,
		},
		Telemetry: TelemetryConfig{
			Environment:   "development",
			EnableTracing: false,
			EnableMetrics: true,
			TraceExporter: "none",
			SampleRatio:   1.0,
		},
	}
}

// Load resolves configuration from defaults, an optional YAML file and the
// environment.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit YAML file. An empty path falls back to
// WASTE_CONFIG_FILE and the usual locations.
func LoadFrom(file string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if file == "" {
		file = getConfigFilePath()
	}
	if file != "" {
		if err := loadFromFile(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Only variables that are set override; defaults live in Default.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	if cfg.Security.AdminKey == "" {
		cfg.Security.AdminKey = os.Getenv("ADMIN_KEY")
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output: %q", c.Logging.Output)
	}
	// JSON is the only supported format
	c.Logging.Format = "json"

	if strings.TrimSpace(c.Data.Source) == "" {
		return fmt.Errorf("data source path is required")
	}
	if c.Data.PricePerKg < 0 {
		return fmt.Errorf("price per kg must not be negative: %v", c.Data.PricePerKg)
	}

	cols := c.Data.Columns()
	seen := make(map[string]bool, 3)
	for _, name := range cols.Names() {
		if seen[name] {
			return fmt.Errorf("column %q is configured more than once", name)
		}
		seen[name] = true
	}

	if c.Security.RateLimit.Enabled && c.Security.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate limit rps must be positive")
	}
	return nil
}

// AdminEnabled reports whether the cache invalidation control is active.
func (c *Config) AdminEnabled() bool {
	return c.Security.AdminKey != ""
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return "" // No config file found, use env vars only
}
