package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukcompliance/complianceengine/internal/logutil"
)

func newManagerWithXDGHome(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	return NewManager(logutil.NewBufferLogger(), nil)
}

func TestManager_Load_NoFileUsesDefaults(t *testing.T) {
	m := newManagerWithXDGHome(t)
	require.NoError(t, m.Load())

	assert.Equal(t, DefaultSettings().ChunkWorkers, m.Settings().ChunkWorkers)
}

func TestManager_Load_FileOverridesDefaults(t *testing.T) {
	m := newManagerWithXDGHome(t)

	require.NoError(t, os.MkdirAll(m.GetUserConfigDir(), 0o755))
	toml := "chunk_workers = 8\ncache_ttl_s = 120\n"
	require.NoError(t, os.WriteFile(filepath.Join(m.GetUserConfigDir(), ConfigFilename), []byte(toml), 0o644))

	require.NoError(t, m.Load())
	assert.Equal(t, 8, m.Settings().ChunkWorkers)
	assert.Equal(t, 120, m.Settings().CacheTTLSeconds)
	assert.Equal(t, DefaultSettings().MaxIterations, m.Settings().MaxIterations)
}

func TestManager_Load_EnvOverridesFile(t *testing.T) {
	m := newManagerWithXDGHome(t)

	require.NoError(t, os.MkdirAll(m.GetUserConfigDir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(m.GetUserConfigDir(), ConfigFilename), []byte("chunk_workers = 8\n"), 0o644))

	t.Setenv("CE_CHUNK_WORKERS", "16")

	require.NoError(t, m.Load())
	assert.Equal(t, 16, m.Settings().ChunkWorkers)
}

func TestManager_Load_EnvOverridesDefaultsWithNoFile(t *testing.T) {
	m := newManagerWithXDGHome(t)
	t.Setenv("CE_MAX_ITERATIONS", "9")

	require.NoError(t, m.Load())
	assert.Equal(t, 9, m.Settings().MaxIterations)
}
