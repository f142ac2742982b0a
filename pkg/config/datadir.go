package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DataDir returns the directory holding the config file. PATHCRAFT_DIR
// overrides the OS default.
func DataDir() string {
	if dir := os.Getenv("PATHCRAFT_DIR"); dir != "" {
		return dir
	}
	return defaultDataDirForOS(runtime.GOOS)
}

// defaultDataDirForOS picks the conventional per-OS location:
//
//   - macOS:   ~/Library/Application Support/pathcraft
//   - Linux:   $XDG_DATA_HOME/pathcraft (fallback ~/.local/share/pathcraft)
//   - Windows: %LOCALAPPDATA%\pathcraft (fallback %APPDATA%\pathcraft)
func defaultDataDirForOS(goos string) string {
	home, _ := os.UserHomeDir()

	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "pathcraft")
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, "pathcraft")
		}
		if dir := os.Getenv("APPDATA"); dir != "" {
			return filepath.Join(dir, "pathcraft")
		}
		return filepath.Join(home, "pathcraft")
	default: // linux, freebsd, etc.
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return filepath.Join(dir, "pathcraft")
		}
		return filepath.Join(home, ".local", "share", "pathcraft")
	}
}
