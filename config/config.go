package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config is the main configuration structure
type Config struct {
	OutputPort    string `json:"outputPort,omitempty"`    // MIDI out port name ("" = first available)
	Velocity      uint8  `json:"velocity,omitempty"`      // default key velocity 1-127
	GateMs        int    `json:"gateMs,omitempty"`        // note length for a key press
	SustainGateMs int    `json:"sustainGateMs,omitempty"` // note length with sustain on
	RecordingsDir string `json:"recordingsDir,omitempty"` // where .mid files live
	LastFile      string `json:"lastFile,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	recordings := ""
	if dir, err := ConfigDir(); err == nil {
		recordings = filepath.Join(dir, "recordings")
	}
	return &Config{
		Velocity:      100,
		GateMs:        500,
		SustainGateMs: 1500,
		RecordingsDir: recordings,
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-performer"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file from an explicit path
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to an explicit path
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
