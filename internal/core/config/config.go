// Package config handles configuration loading and validation for mtdock.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/mtdock/internal/core/styles"
	"github.com/colonyops/mtdock/internal/core/translation"
)

// DefaultProviderEndpoint is the lookup template used by providers that do
// not set their own.
const DefaultProviderEndpoint = "/get-first?providers_id={{.ProviderID}}&direction={{.Direction}}&to_lang={{q .ToLang}}&id={{.Position}}"

// DefaultFinalEndpoint pages through submitted final translations.
const DefaultFinalEndpoint = "/get-translation?table=final_translation&direction={{.Direction}}&id={{.Position}}"

// Config holds the application configuration.
type Config struct {
	API       APIConfig        `yaml:"api"       toml:"api"`
	Providers []ProviderConfig `yaml:"providers" toml:"providers"`
	Final     ProviderConfig   `yaml:"final"     toml:"final"`
	Languages LanguagesConfig  `yaml:"languages" toml:"languages"`
	TUI       TUIConfig        `yaml:"tui"       toml:"tui"`
	Database  DatabaseConfig   `yaml:"database"  toml:"database"`
	DataDir   string           `yaml:"-"         toml:"-"` // set by caller, not from config file
}

// APIConfig locates the translation backend.
type APIConfig struct {
	BaseURL      string   `yaml:"base_url"      toml:"base_url"`
	Timeout      Duration `yaml:"timeout"       toml:"timeout"` // 0 = no timeout
	SubmitPath   string   `yaml:"submit_path"   toml:"submit_path"`
	ArticleCache int      `yaml:"article_cache" toml:"article_cache"` // 0 = default size, <0 = off
}

// ProviderConfig describes one translation provider.
type ProviderConfig struct {
	Name       string `yaml:"name"       toml:"name"`
	ID         int    `yaml:"id"         toml:"id"`         // providers_id on the backend
	Precedence int    `yaml:"precedence" toml:"precedence"` // lower wins ties
	Endpoint   string `yaml:"endpoint"   toml:"endpoint"`   // text/template, see backend.CheckEndpoint
}

// Provider converts the config entry to the domain descriptor.
func (p ProviderConfig) Provider() translation.Provider {
	return translation.Provider{
		Name:       p.Name,
		BackendID:  p.ID,
		Precedence: p.Precedence,
		Endpoint:   p.Endpoint,
	}
}

// LanguagesConfig holds the source language and the selectable targets.
type LanguagesConfig struct {
	From      string   `yaml:"from"      toml:"from"`
	To        string   `yaml:"to"        toml:"to"`
	Available []string `yaml:"available" toml:"available"`
}

// TUIConfig holds dashboard settings.
type TUIConfig struct {
	Theme    string   `yaml:"theme"     toml:"theme"`
	ToastTTL Duration `yaml:"toast_ttl" toml:"toast_ttl"`
}

// DatabaseConfig configures the local SQLite database.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns" toml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns" toml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"   toml:"busy_timeout"` // milliseconds
}

// Duration is a time.Duration written as a Go duration string ("4s").
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	*d = Duration(v)
	return nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:    "http://localhost:8000",
			Timeout:    Duration(30 * time.Second),
			SubmitPath: "/put-final",
		},
		Providers: []ProviderConfig{
			{Name: "aws", ID: 1, Precedence: 1, Endpoint: DefaultProviderEndpoint},
			{Name: "gcp", ID: 2, Precedence: 2, Endpoint: DefaultProviderEndpoint},
			{Name: "azure", ID: 3, Precedence: 3, Endpoint: DefaultProviderEndpoint},
		},
		Final: ProviderConfig{Name: "final", Endpoint: DefaultFinalEndpoint},
		Languages: LanguagesConfig{
			From:      "en",
			To:        "fr",
			Available: []string{"fr", "de", "es", "it", "pt"},
		},
		TUI: TUIConfig{
			Theme:    styles.DefaultTheme,
			ToastTTL: Duration(4 * time.Second),
		},
		Database: DatabaseConfig{
			MaxOpenConns: 4,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided
// dataDir. Files ending in .toml are decoded as TOML, anything else as YAML.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := decode(configPath, data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// decode overlays the file onto cfg. List defaults are cleared first so a
// file that sets them replaces rather than extends them; applyDefaults
// restores them when the file leaves them out.
func decode(path string, data []byte, cfg *Config) error {
	cfg.Providers = nil
	cfg.Languages.Available = nil

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.SubmitPath == "" {
		c.API.SubmitPath = defaults.API.SubmitPath
	}
	if len(c.Providers) == 0 {
		c.Providers = defaults.Providers
	}
	for i := range c.Providers {
		if c.Providers[i].Endpoint == "" {
			c.Providers[i].Endpoint = DefaultProviderEndpoint
		}
	}
	if c.Final.Name == "" {
		c.Final.Name = defaults.Final.Name
	}
	if c.Final.Endpoint == "" {
		c.Final.Endpoint = defaults.Final.Endpoint
	}
	if c.Languages.From == "" {
		c.Languages.From = defaults.Languages.From
	}
	if c.Languages.To == "" {
		c.Languages.To = defaults.Languages.To
	}
	if len(c.Languages.Available) == 0 {
		c.Languages.Available = defaults.Languages.Available
	}
	if !slices.Contains(c.Languages.Available, c.Languages.To) {
		c.Languages.Available = append([]string{c.Languages.To}, c.Languages.Available...)
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.TUI.ToastTTL == 0 {
		c.TUI.ToastTTL = defaults.TUI.ToastTTL
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url cannot be empty")
	}

	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout cannot be negative")
	}

	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one provider is required")
	}

	seen := make(map[string]bool, len(c.Providers))
	for i, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("providers[%d]: name is required", i)
		}
		key := strings.ToLower(p.Name)
		if seen[key] {
			return fmt.Errorf("providers[%d]: duplicate provider name %q", i, p.Name)
		}
		seen[key] = true
	}

	if c.TUI.ToastTTL < 0 {
		return fmt.Errorf("tui.toast_ttl cannot be negative")
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}

	return nil
}

// ProviderSet returns the configured providers as domain descriptors.
func (c *Config) ProviderSet() []translation.Provider {
	out := make([]translation.Provider, 0, len(c.Providers))
	for _, p := range c.Providers {
		out = append(out, p.Provider())
	}
	return out
}

// LogFile returns the default log file path inside the data directory.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "mtdock.log")
}
