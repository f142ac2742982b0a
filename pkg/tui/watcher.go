package tui

import (
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/hanzalatafzeel/path-craft/pkg/config"
)

// StartConfigWatcher watches the config file for changes and sends
// ConfigChangedMsg. Logging in from another terminal rewrites the config,
// so the running TUI picks up the new token and refreshes.
func StartConfigWatcher(dir string, program *tea.Program) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory rather than the file: editors and Save replace
	// the file, which would drop a file-level watch.
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	target := filepath.Base(config.Path(dir))
	done := make(chan struct{})

	go func() {
		var debounceTimer *time.Timer

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}

				// Debounce: wait 200ms after last change
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(200*time.Millisecond, func() {
					cfg, err := config.Load(dir)
					if err != nil {
						return
					}
					program.Send(ConfigChangedMsg{Cfg: cfg})
				})

			case <-watcher.Errors:
				// Ignore watcher errors silently

			case <-done:
				return
			}
		}
	}()

	cleanup := func() {
		close(done)
		watcher.Close()
	}

	return cleanup, nil
}
