package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Run from a directory without a config file.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Workspace.Dir)
	assert.Equal(t, "exports", cfg.Export.Dir)
	assert.Equal(t, 300, cfg.Export.DPI)
	assert.Equal(t, 12.0, cfg.Map.WidthIn)
	assert.Equal(t, 8.0, cfg.Map.HeightIn)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "greenspace.db", cfg.Store.Path)
	assert.Equal(t, 1.0, cfg.Fetch.MaxRPS)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	content := `
workspace:
  dir: /data/shapefiles
  charset: windows-1252
export:
  dpi: 150
store:
  driver: postgres
  database_url: postgres://localhost/greenspace
`
	require.NoError(t, os.WriteFile("config.yaml", []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/shapefiles", cfg.Workspace.Dir)
	assert.Equal(t, "windows-1252", cfg.Workspace.Charset)
	assert.Equal(t, 150, cfg.Export.DPI)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/greenspace", cfg.Store.DatabaseURL)
	// Untouched keys keep their defaults.
	assert.Equal(t, "exports", cfg.Export.Dir)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "console"})
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "json"}))
}
