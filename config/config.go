package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// DeviceConfig describes the Launchpad to look for
type DeviceConfig struct {
	PortName    string `json:"portName"`
	AutoConnect bool   `json:"autoConnect"`
	LatencyMs   int    `json:"latencyMs,omitempty"`
	Greeting    string `json:"greeting,omitempty"`
}

// EditorConfig holds the editor's starting state
type EditorConfig struct {
	FrameDelayMs int    `json:"frameDelayMs"`
	UseSysex     bool   `json:"useSysex,omitempty"`
	Colour       string `json:"colour,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastProject string `json:"lastProject,omitempty"`
	Palette     string `json:"palette,omitempty"` // GIMP .gpl file for the UI colours
	SnapshotDir string `json:"snapshotDir,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Device DeviceConfig `json:"device"`
	Editor EditorConfig `json:"editor"`
	UI     UIConfig     `json:"ui,omitempty"`
	Debug  bool         `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			PortName:    "Launchpad MK2",
			AutoConnect: true,
			Greeting:    "hi",
		},
		Editor: EditorConfig{
			FrameDelayMs: 100,
			Colour:       "#ff0a00",
		},
	}
}

// Latency is the extra output delay for scheduled writes
func (c *Config) Latency() time.Duration {
	return time.Duration(c.Device.LatencyMs) * time.Millisecond
}

// FrameDelay is the duration given to newly painted frames
func (c *Config) FrameDelay() time.Duration {
	return time.Duration(c.Editor.FrameDelayMs) * time.Millisecond
}

// Dir returns the config directory path
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-lightshow"), nil
}

// Path returns the full path to config.json
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file. Missing fields keep their defaults.
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
	if cfg.Editor.FrameDelayMs < 0 {
		cfg.Editor.FrameDelayMs = 0
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
