package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"prizepool/database"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string `mapstructure:"database_url"`
	DatabaseName string `mapstructure:"database_name"`

	DBMaxConns        int32         `mapstructure:"db_max_conns"`
	DBMinConns        int32         `mapstructure:"db_min_conns"`
	DBMaxConnLifetime time.Duration `mapstructure:"db_max_conn_lifetime"`
	DBConnectTimeout  time.Duration `mapstructure:"db_connect_timeout"`

	// NATS configuration
	NATSServers        string        `mapstructure:"nats_servers"`
	NATSRequestTimeout time.Duration `mapstructure:"nats_request_timeout"`

	// HTTP message transport
	HTTPAddr string `mapstructure:"http_addr"`

	// Pool identity
	ContractAddress  string `mapstructure:"contract_address"`
	TriggererAddress string `mapstructure:"triggerer_address"`

	// Draw worker
	DrawWorkerEnabled    bool          `mapstructure:"draw_worker_enabled"`
	DrawPollInterval     time.Duration `mapstructure:"draw_poll_interval"`
	BlockIntervalSeconds uint64        `mapstructure:"block_interval_seconds"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	// OpenTelemetry
	OTelEnabled              bool   `mapstructure:"otel_enabled"`
	OTelExporterType         string `mapstructure:"otel_exporter_type"`
	OTelServiceName          string `mapstructure:"otel_service_name"`
	OTelExportIntervalMillis int    `mapstructure:"otel_export_interval_millis"`

	// Environment
	Environment string `mapstructure:"environment"` // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance, loaded from the environment
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = Load("")
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// LoadGlobal loads configuration from path (may be empty) and installs it as the global instance
func LoadGlobal(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
	return cfg, nil
}

// Load reads configuration from an optional file and environment variables.
// Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it
func setDefaults(v *viper.Viper) {
	v.SetDefault("database_url", "")
	v.SetDefault("database_name", "")
	v.SetDefault("db_max_conns", 10)
	v.SetDefault("db_min_conns", 0)
	v.SetDefault("db_max_conn_lifetime", "1h")
	v.SetDefault("db_connect_timeout", "10s")

	v.SetDefault("nats_servers", "nats://nats:4222")
	v.SetDefault("nats_request_timeout", "5s")

	v.SetDefault("http_addr", ":8080")

	v.SetDefault("contract_address", "")
	v.SetDefault("triggerer_address", "")

	v.SetDefault("draw_worker_enabled", false)
	v.SetDefault("draw_poll_interval", "10s")
	v.SetDefault("block_interval_seconds", 6)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetDefault("otel_enabled", false)
	v.SetDefault("otel_exporter_type", "console")
	v.SetDefault("otel_service_name", "prizepool")
	v.SetDefault("otel_export_interval_millis", 30000)

	v.SetDefault("environment", "development")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Environment != "test" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
	}
	if c.DBMaxConns < 0 || c.DBMinConns < 0 {
		return fmt.Errorf("DB_MAX_CONNS and DB_MIN_CONNS cannot be negative")
	}
	if c.DBMaxConns > 0 && c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if c.DrawWorkerEnabled {
		if c.TriggererAddress == "" {
			return fmt.Errorf("TRIGGERER_ADDRESS is required when the draw worker is enabled")
		}
		if c.DrawPollInterval <= 0 {
			return fmt.Errorf("DRAW_POLL_INTERVAL must be positive")
		}
	}
	if c.BlockIntervalSeconds == 0 {
		return fmt.Errorf("BLOCK_INTERVAL_SECONDS must be positive")
	}
	if c.NATSRequestTimeout <= 0 {
		return fmt.Errorf("NATS_REQUEST_TIMEOUT must be positive")
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.LogFormat] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, text")
	}

	if c.OTelEnabled {
		validExporters := map[string]bool{"console": true, "none": true}
		if !validExporters[c.OTelExporterType] {
			return fmt.Errorf("OTEL_EXPORTER_TYPE must be one of: console, none")
		}
		if c.OTelExportIntervalMillis <= 0 {
			return fmt.Errorf("OTEL_EXPORT_INTERVAL_MILLIS must be positive")
		}
	}
	return nil
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// PoolOptions returns the database pool sizing
func (c *Config) PoolOptions() database.PoolOptions {
	return database.PoolOptions{
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: c.DBMaxConnLifetime,
		ConnectTimeout:  c.DBConnectTimeout,
	}
}

// ConfigureLogging applies the log level and format to the standard logrus logger
func (c *Config) ConfigureLogging() {
	if level, err := log.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(level)
	}
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:          "test",
		NATSRequestTimeout:   time.Second,
		HTTPAddr:             ":0",
		DrawPollInterval:     time.Second,
		BlockIntervalSeconds: 6,
		LogLevel:             "info",
		LogFormat:            "text",
		OTelExporterType:     "none",
		OTelServiceName:      "prizepool-test",
	}
}
