package appconfig

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	Socket        string        `mapstructure:"socket" yaml:"socket"`
	StateDir      string        `mapstructure:"state_dir" yaml:"state_dir"`
	Console       ConsoleConfig `mapstructure:"console" yaml:"console"`
	SSH           SSHConfig     `mapstructure:"ssh" yaml:"ssh"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// ConsoleConfig controls the console's editing and display behavior.
type ConsoleConfig struct {
	Prompt       string `mapstructure:"prompt" yaml:"prompt"`
	Font         string `mapstructure:"font" yaml:"font"`
	FontSize     int    `mapstructure:"font_size" yaml:"font_size"`
	HistoryDedup bool   `mapstructure:"history_dedup" yaml:"history_dedup"`
	HistoryMax   int    `mapstructure:"history_max" yaml:"history_max"`
	LogLines     int    `mapstructure:"log_lines" yaml:"log_lines"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
}

// SSHConfig configures the optional SSH attach server.
type SSHConfig struct {
	Addr        string `mapstructure:"addr" yaml:"addr"`
	HostKeyPath string `mapstructure:"host_key_path" yaml:"host_key_path"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	uid := os.Getuid()
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = filepath.Join("/run", "user", fmt.Sprintf("%d", uid))
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Socket:        filepath.Join(runtimeDir, "mpv", "socket"),
		StateDir:      filepath.Join(home, ".mpvc", "state"),
		Console: ConsoleConfig{
			Prompt:       "> ",
			Font:         "monospace",
			FontSize:     16,
			HistoryDedup: true,
			HistoryMax:   200,
			LogLines:     100,
			LogLevel:     "info",
		},
		SSH: SSHConfig{
			Addr:        "127.0.0.1:27450",
			HostKeyPath: filepath.Join(home, ".mpvc", "ssh_host_key"),
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".mpvc", "config.yaml"), nil
}
