// Package main implements the pathcraft CLI and TUI.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hanzalatafzeel/path-craft/pkg/api"
	"github.com/hanzalatafzeel/path-craft/pkg/config"
	"github.com/hanzalatafzeel/path-craft/pkg/session"
	"github.com/hanzalatafzeel/path-craft/pkg/tui"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "pathcraft",
	Short:        "Plan and track learning goals",
	SilenceUsage: true,
	RunE:         runTUI,
}

var (
	flagServer string
	flagJSON   bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "backend URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output JSON")
}

// loadConfig reads the config file, applying the --server override.
func loadConfig() (*config.Config, string, error) {
	dir := config.DataDir()
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, "", err
	}
	if flagServer != "" {
		cfg.ServerURL = flagServer
	}
	return cfg, dir, nil
}

// newClient builds an API client from the saved config. Commands that
// need an authenticated session should check cfg.Token first.
func newClient() (*api.Client, *config.Config, string, error) {
	cfg, dir, err := loadConfig()
	if err != nil {
		return nil, nil, "", err
	}
	return api.NewClient(cfg.ServerURL, cfg.Token), cfg, dir, nil
}

func authedClient() (*api.Client, error) {
	client, cfg, _, err := newClient()
	if err != nil {
		return nil, err
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("not logged in, run 'pathcraft login <username>' first")
	}
	return client, nil
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runTUI(cmd *cobra.Command, args []string) error {
	client, cfg, dir, err := newClient()
	if err != nil {
		return err
	}
	if cfg.Token == "" {
		return fmt.Errorf("not logged in, run 'pathcraft login <username>' first")
	}

	s := session.New(client)
	m := tui.NewModel(s, client)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Watch the config so a login from another terminal refreshes the token
	cleanup, err := tui.StartConfigWatcher(dir, p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config watcher failed: %v\n", err)
	} else {
		defer cleanup()
	}

	_, err = p.Run()
	return err
}
