package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Environment)
	assert.True(t, cfg.Dev())
	assert.Equal(t, "0.0.0.0:5000", cfg.Addr())
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "data/parquet", cfg.SnapshotDir)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SETTLEDB_ENVIRONMENT", "prod")
	t.Setenv("SETTLEDB_SERVER_HOST", "127.0.0.1")
	t.Setenv("SETTLEDB_SERVER_PORT", "8080")
	t.Setenv("SETTLEDB_DATA_DIR", "/var/lib/settledb")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Dev())
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, "/var/lib/settledb", cfg.DataDir)
}
