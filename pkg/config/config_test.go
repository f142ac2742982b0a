package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultServerURL, cfg.ServerURL)
	assert.Empty(t, cfg.Token)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		ServerURL: "http://example.com:9000",
		Username:  "alma",
		Token:     "secret-token",
	}
	require.NoError(t, cfg.Save(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	// Token file must not be group or world readable.
	info, err := os.Stat(Path(dir))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadFillsEmptyServerURL(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir), []byte("token: abc\n"), 0600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultServerURL, cfg.ServerURL)
	assert.Equal(t, "abc", cfg.Token)
}

func TestDataDirEnvOverride(t *testing.T) {
	t.Setenv("PATHCRAFT_DIR", "/custom/pathcraft")
	assert.Equal(t, "/custom/pathcraft", DataDir())
}

func TestDefaultDataDirMacOS(t *testing.T) {
	home, _ := os.UserHomeDir()
	dir := defaultDataDirForOS("darwin")
	assert.Equal(t, filepath.Join(home, "Library", "Application Support", "pathcraft"), dir)
}

func TestDefaultDataDirLinux(t *testing.T) {
	home, _ := os.UserHomeDir()

	t.Setenv("XDG_DATA_HOME", "")
	dir := defaultDataDirForOS("linux")
	assert.Equal(t, filepath.Join(home, ".local", "share", "pathcraft"), dir)

	t.Setenv("XDG_DATA_HOME", "/custom/data")
	dir = defaultDataDirForOS("linux")
	assert.Equal(t, filepath.Join("/custom/data", "pathcraft"), dir)
}
