package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/synth/internal/synth"
)

func TestDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.Backend)
	assert.Equal(t, synth.BackendTag(""), cfg.BackendTag())
	assert.Empty(t, cfg.BuilderOptions())
	assert.False(t, cfg.Log.JSON)
	assert.Equal(t, 0, cfg.Log.Verbose)
	assert.Equal(t, "testdata/golden", cfg.Golden.Dir)
	assert.Empty(t, cfg.Catalog.Path)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend = "forwarding"

[log]
json = true
verbose = 2

[catalog]
path = "catalog.db"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, synth.BackendForwarding, cfg.BackendTag())
	assert.Len(t, cfg.BuilderOptions(), 1)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, 2, cfg.Log.Verbose)
	assert.Equal(t, "catalog.db", cfg.Catalog.Path)
}

func TestProjectFileDiscovered(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "synth.toml"), []byte(`backend = "subclass"`), 0o644))
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, synth.BackendSubclass, cfg.BackendTag())
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "synth.toml")
	require.NoError(t, os.WriteFile(path, []byte(`backend = "subclass"`), 0o644))
	t.Setenv("SYNTH_BACKEND", "forwarding")
	t.Setenv("SYNTH_LOG_VERBOSE", "1")
	t.Setenv("SYNTH_CATALOG_PATH", "/tmp/x.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, synth.BackendForwarding, cfg.BackendTag())
	assert.Equal(t, 1, cfg.Log.Verbose)
	assert.Equal(t, "/tmp/x.db", cfg.Catalog.Path)
}

func TestInvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("SYNTH_BACKEND", "bytecode")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend")
}

func TestMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestNegativeVerbosity(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SYNTH_LOG_VERBOSE", "-1")

	_, err := Load("")
	assert.Error(t, err)
}
