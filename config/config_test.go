package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prizepool.yaml")
	content := `
database_url: postgres://user:pw@localhost:5432?sslmode=disable
database_name: prizepool
draw_worker_enabled: true
triggerer_address: secret1triggerer
draw_poll_interval: 30s
log_format: json
db_max_conns: 20
db_connect_timeout: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BLOCK_INTERVAL_SECONDS", "5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://user:pw@localhost:5432/prizepool?sslmode=disable", cfg.GetDatabaseURL())
	assert.True(t, cfg.DrawWorkerEnabled)
	assert.Equal(t, 30*time.Second, cfg.DrawPollInterval)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, uint64(5), cfg.BlockIntervalSeconds)
	assert.Equal(t, 5*time.Second, cfg.NATSRequestTimeout)
	assert.Equal(t, "nats://nats:4222", cfg.NATSServers)
	assert.Equal(t, "development", cfg.Environment)

	pool := cfg.PoolOptions()
	assert.Equal(t, int32(20), pool.MaxConns)
	assert.Equal(t, int32(0), pool.MinConns)
	assert.Equal(t, time.Hour, pool.MaxConnLifetime)
	assert.Equal(t, 3*time.Second, pool.ConnectTimeout)
}

func TestLoad_TestEnvironmentNeedsNoDatabase(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing database outside test", func(c *Config) { c.Environment = "production" }, "DATABASE_URL is required"},
		{"worker without triggerer", func(c *Config) { c.DrawWorkerEnabled = true }, "TRIGGERER_ADDRESS is required"},
		{"zero block interval", func(c *Config) { c.BlockIntervalSeconds = 0 }, "BLOCK_INTERVAL_SECONDS"},
		{"negative pool size", func(c *Config) { c.DBMaxConns = -1 }, "cannot be negative"},
		{"min conns above max", func(c *Config) {
			c.DBMaxConns = 2
			c.DBMinConns = 3
		}, "DB_MIN_CONNS cannot exceed"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
		{"otlp exporter", func(c *Config) {
			c.OTelEnabled = true
			c.OTelExporterType = "otlp"
		}, "OTEL_EXPORTER_TYPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewTestConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSetTestConfig(t *testing.T) {
	defer ResetConfig()

	cfg := NewTestConfig()
	cfg.ContractAddress = "secret1pool"
	SetTestConfig(cfg)

	assert.Same(t, cfg, Get())
}
