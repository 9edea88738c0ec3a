package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURL = "postgres://user:pw@localhost:5432/prizepool?sslmode=disable&pool_max_conns=7"

func TestParsePoolConfig(t *testing.T) {
	t.Parallel()

	t.Run("zero options keep URL settings", func(t *testing.T) {
		t.Parallel()
		cfg, err := parsePoolConfig(testURL, PoolOptions{})
		require.NoError(t, err)
		assert.Equal(t, int32(7), cfg.MaxConns)
		assert.Equal(t, "UTC", cfg.ConnConfig.RuntimeParams["timezone"])
	})

	t.Run("options override", func(t *testing.T) {
		t.Parallel()
		cfg, err := parsePoolConfig(testURL, PoolOptions{
			MaxConns:        12,
			MinConns:        2,
			MaxConnLifetime: 30 * time.Minute,
			ConnectTimeout:  4 * time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, int32(12), cfg.MaxConns)
		assert.Equal(t, int32(2), cfg.MinConns)
		assert.Equal(t, 30*time.Minute, cfg.MaxConnLifetime)
		assert.Equal(t, 4*time.Second, cfg.ConnConfig.ConnectTimeout)
	})

	t.Run("rejects inverted limits", func(t *testing.T) {
		t.Parallel()
		_, err := parsePoolConfig(testURL, PoolOptions{MaxConns: 2, MinConns: 5})
		assert.Error(t, err)
	})

	t.Run("rejects malformed URL", func(t *testing.T) {
		t.Parallel()
		_, err := parsePoolConfig("postgres://user:pw@localhost:notaport/db", PoolOptions{})
		assert.Error(t, err)
	})
}
