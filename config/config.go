package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Database drivers understood by bundb.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config struct to hold the configuration settings
type Config struct {
	Database      DatabaseConfig      `yaml:"database"`
	NATS          NATSConfig          `yaml:"nats"`
	HTTP          HTTPConfig          `yaml:"http"`
	Reports       ReportsConfig       `yaml:"reports"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// DatabaseConfig selects the record store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL keeps the event bus in-process.
type NATSConfig struct {
	URL         string `yaml:"url"`
	QueueGroup  string `yaml:"queue_group"`
	AuditStream string `yaml:"audit_stream"`
}

// HTTPConfig holds the report API listener settings.
type HTTPConfig struct {
	Addr          string  `yaml:"addr"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	RateBurst     int     `yaml:"rate_burst"`
}

// ReportsConfig holds artifact and analysis settings.
type ReportsConfig struct {
	OutputDir       string        `yaml:"output_dir"`
	AnalysisTool    string        `yaml:"analysis_tool"`
	AnalysisTimeout time.Duration `yaml:"analysis_timeout"`
}

// LoggingConfig holds log level and optional rotating file output.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Dir        string `yaml:"dir"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress  string  `yaml:"metrics_address"`
	Environment     string  `yaml:"environment"`
	OTLPEndpoint    string  `yaml:"otlp_endpoint"`
	OTLPInsecure    bool    `yaml:"otlp_insecure"`
	TraceSampleRate float64 `yaml:"trace_sample_rate"`
}

// Defaults returns a configuration usable without any file or environment:
// a local sqlite database, an in-process event bus and ./reports for artifacts.
func Defaults() Config {
	return Config{
		Database: DatabaseConfig{Driver: DriverSQLite, DSN: "file:ledger.db?_pragma=foreign_keys(1)"},
		NATS:     NATSConfig{QueueGroup: "analytics", AuditStream: "ANALYTICS"},
		HTTP:     HTTPConfig{Addr: ":8080", RatePerSecond: 2, RateBurst: 5},
		Reports: ReportsConfig{
			OutputDir:       "reports",
			AnalysisTool:    "Rscript",
			AnalysisTimeout: 2 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 14,
		},
		Observability: ObservabilityConfig{
			Environment:     "development",
			TraceSampleRate: 0.1,
		},
	}
}

// LoadConfig loads the configuration from a YAML file, then applies
// environment overrides. A missing file falls back to loadConfigFromEnv.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return loadConfigFromEnv()
		}
		return nil, fmt.Errorf("failed to read config %s: %w", filename, err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from defaults plus environment variables.
func loadConfigFromEnv() (*Config, error) {
	cfg := Defaults()
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("REPORTS_OUTPUT_DIR"); v != "" {
		cfg.Reports.OutputDir = v
	}
	if v := os.Getenv("ANALYSIS_TOOL"); v != "" {
		cfg.Reports.AnalysisTool = v
	}
	if v := os.Getenv("ANALYSIS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ANALYSIS_TIMEOUT value: %w", err)
		}
		cfg.Reports.AnalysisTimeout = d
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		cfg.Logging.Dir = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		cfg.Observability.OTLPEndpoint = v
	}
	if v := os.Getenv("OTLP_INSECURE"); v != "" {
		cfg.Observability.OTLPInsecure = v == "true"
	}
	if v := os.Getenv("TRACE_SAMPLE_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid TRACE_SAMPLE_RATE value: %w", err)
		}
		cfg.Observability.TraceSampleRate = f
	}
	return nil
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn not set")
	}
	if c.Reports.OutputDir == "" {
		return fmt.Errorf("reports output_dir not set")
	}
	if c.Reports.AnalysisTimeout < 0 {
		return fmt.Errorf("analysis_timeout must not be negative")
	}
	return nil
}
