package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()
	svc := NewConfigServiceAt(filepath.Join(t.TempDir(), "config.toml"), nil)

	cfg, err := svc.Load()
	require.NoError(t, err)
	require.Equal(t, 1, cfg.Version)
	require.Equal(t, "http://localhost:8000/api/v1", cfg.BaseURL)
	require.Equal(t, 20, cfg.PageSize)
	require.Equal(t, 350, cfg.DebounceMS)
	require.True(t, cfg.UISettings.ConfirmDeletes)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.toml")
	svc := NewConfigServiceAt(path, nil)

	cfg := DefaultConfig()
	cfg.BaseURL = "https://reports.example.com/api/v1"
	cfg.AccessToken = "glpat-xyz"
	cfg.PageSize = 50
	cfg.DebounceMS = 200
	cfg.UISettings.CompactRows = true

	require.NoError(t, svc.Save(cfg))

	loaded, err := svc.Load()
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestSaveRestrictsFileMode(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.toml")
	svc := NewConfigServiceAt(path, nil)
	require.NoError(t, svc.Save(DefaultConfig()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm(), "config carries the token, keep it private")
}

func TestLoadRepairsBrokenValues(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "version = 1\nbase_url = \"http://localhost:8000/api/v1\"\npage_size = 0\ndebounce_ms = -5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	svc := NewConfigServiceAt(path, nil)
	cfg, err := svc.Load()
	require.NoError(t, err)
	require.Equal(t, 20, cfg.PageSize)
	require.Equal(t, 350, cfg.DebounceMS)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid toml"), 0600))

	svc := NewConfigServiceAt(path, nil)
	_, err := svc.Load()
	require.Error(t, err)
}
