package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	charmlog "github.com/charmbracelet/log"
)

var (
	mu      sync.Mutex
	file    *os.File
	logger  *charmlog.Logger
	enabled bool
)

// Enable starts debug logging to ~/.config/go-performer/debug.log
func Enable() error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(home, ".config", "go-performer")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	file = f
	logger = charmlog.NewWithOptions(f, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.000",
		Level:           charmlog.DebugLevel,
	})
	enabled = true

	logger.Info("debug logging started")
	return nil
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	logger = nil
	enabled = false
}

// Log writes a category-tagged message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || logger == nil {
		return
	}
	logger.Debug(fmt.Sprintf(format, args...), "cat", category)
}
