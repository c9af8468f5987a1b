// internal/config/discover_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestDefaultPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/reelmate/config.toml", DefaultPath())
}

func TestDiscover_EnvVar(t *testing.T) {
	path := writeConfig(t, "")
	t.Setenv("REELMATE_CONFIG", path)

	got, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestDiscover_EnvVarMissingFile(t *testing.T) {
	t.Setenv("REELMATE_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	_, err := Discover()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REELMATE_CONFIG")
}

func TestDiscover_CurrentDir(t *testing.T) {
	t.Setenv("REELMATE_CONFIG", "")
	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "reelmate.toml"), nil, 0644))
	chdir(t, tmp)

	got, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, "./reelmate.toml", got)
}

func TestDiscover_XDG(t *testing.T) {
	t.Setenv("REELMATE_CONFIG", "")
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	chdir(t, t.TempDir())

	want := filepath.Join(xdg, "reelmate", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(want), 0755))
	require.NoError(t, os.WriteFile(want, nil, 0644))

	got, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolve_FallsBackToDefaults(t *testing.T) {
	if _, err := os.Stat("/etc/reelmate/config.toml"); err == nil {
		t.Skip("system config present")
	}
	t.Setenv("REELMATE_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "xdg"))
	chdir(t, t.TempDir())

	cfg, path, err := Resolve("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, DefaultAlbum, cfg.Library.Album)
}

func TestResolve_ExplicitPath(t *testing.T) {
	path := writeConfig(t, "[library]\nalbum = \"Clips\"\n")

	cfg, got, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, "Clips", cfg.Library.Album)
}
