// Package config persists client settings (backend URL and the saved
// bearer token) as a YAML file in the pathcraft data directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultServerURL is used until the user configures a backend.
const DefaultServerURL = "http://localhost:8001"

// FileName is the config file's name inside the data directory.
const FileName = "config.yml"

// Config holds everything the client persists locally. Domain data is
// never stored here; it always comes from the backend.
type Config struct {
	ServerURL string `yaml:"server_url"`
	Username  string `yaml:"username,omitempty"`
	Token     string `yaml:"token,omitempty"`
}

// Path returns the config file path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Load reads the config from dir, returning defaults if no file exists.
func Load(dir string) (*Config, error) {
	data, err := os.ReadFile(Path(dir))
	if os.IsNotExist(err) {
		return &Config{ServerURL: DefaultServerURL}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	return &cfg, nil
}

// Save writes the config to dir, creating the directory if needed. The
// file carries the token, so it is not group or world readable.
func (c *Config) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}
	return os.WriteFile(Path(dir), data, 0600)
}
