package commands

import (
	"os"
	"path/filepath"

	"github.com/colonyops/mtdock/internal/core/config"
)

// Flags holds the root flags shared by every command.
type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	ProfilerPort int

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config
}

// xdgDir returns $env/mtdock, or ~/<fallback...>/mtdock when env is unset.
func xdgDir(env string, fallback ...string) string {
	base := os.Getenv(env)
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(append([]string{home}, fallback...)...)
	}
	return filepath.Join(base, "mtdock")
}

// DefaultConfigPath returns config.yaml in the XDG config dir, or config.toml
// when only the TOML file exists.
func DefaultConfigPath() string {
	dir := xdgDir("XDG_CONFIG_HOME", ".config")

	yamlPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(yamlPath); err != nil {
		tomlPath := filepath.Join(dir, "config.toml")
		if _, err := os.Stat(tomlPath); err == nil {
			return tomlPath
		}
	}
	return yamlPath
}

// DefaultDataDir returns the XDG data directory for mtdock.
func DefaultDataDir() string {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}
