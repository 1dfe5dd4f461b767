// Package config loads and saves the vcpu's TOML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config represents the virtual CPU's configuration.
type Config struct {
	// Memory settings: local/remote split per spec.md §5.
	Memory struct {
		LocalSize  uint32 `toml:"local_size"`
		RemoteSize uint32 `toml:"remote_size"`
	} `toml:"memory"`

	// Execution settings.
	Execution struct {
		MaxCycles    uint64 `toml:"max_cycles"`
		EntryPoint   uint32 `toml:"entry_point"`
		InitialSP    uint32 `toml:"initial_sp"`
		HaltOnError  bool   `toml:"halt_on_error"`
	} `toml:"execution"`

	// Remote serial link settings, per spec.md §6.
	Remote struct {
		Enabled bool   `toml:"enabled"`
		Device  string `toml:"device"`
		BaudRate int   `toml:"baud_rate"`
	} `toml:"remote"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Memory.LocalSize = 1 << 20  // 1MB local
	cfg.Memory.RemoteSize = 1 << 16 // 64KB remote

	cfg.Execution.MaxCycles = 10_000_000
	cfg.Execution.EntryPoint = 0
	cfg.Execution.InitialSP = cfg.Memory.LocalSize
	cfg.Execution.HaltOnError = true

	cfg.Remote.Enabled = false
	cfg.Remote.Device = "/dev/ttyUSB0"
	cfg.Remote.BaudRate = 115200

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "vcpu")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "vcpu")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file. A missing file
// yields the default configuration rather than an error.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
