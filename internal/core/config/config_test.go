package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/mtdock/internal/core/translation"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout.Std())
	assert.Equal(t, 4*time.Second, cfg.TUI.ToastTTL.Std())
	require.Len(t, cfg.Providers, 3)
	assert.Equal(t, "aws", cfg.Providers[0].Name)
	assert.Equal(t, DefaultProviderEndpoint, cfg.Providers[0].Endpoint)
	assert.Equal(t, DefaultFinalEndpoint, cfg.Final.Endpoint)
	assert.Equal(t, filepath.Join(dataDir, "mtdock.log"), cfg.LogFile())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
api:
  base_url: https://mt.example.com
  timeout: 5s
providers:
  - name: deepl
    id: 7
    precedence: 1
  - name: aws
    id: 1
    precedence: 2
    endpoint: "/custom?id={{.Position}}&d={{.Direction}}"
languages:
  from: en
  to: de
tui:
  toast_ttl: 2s
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://mt.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout.Std())
	assert.Equal(t, "/put-final", cfg.API.SubmitPath)
	assert.Equal(t, 2*time.Second, cfg.TUI.ToastTTL.Std())
	assert.Equal(t, "de", cfg.Languages.To)

	assert.Equal(t, []translation.Provider{
		{Name: "deepl", BackendID: 7, Precedence: 1, Endpoint: DefaultProviderEndpoint},
		{Name: "aws", BackendID: 1, Precedence: 2, Endpoint: "/custom?id={{.Position}}&d={{.Direction}}"},
	}, cfg.ProviderSet())
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[api]
base_url = "http://api.internal:9000"
timeout = "0s"

[languages]
from = "en"
to = "it"
available = ["it", "es"]

[[providers]]
name = "gcp"
id = 2
precedence = 1

[database]
busy_timeout = 100
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "http://api.internal:9000", cfg.API.BaseURL)
	assert.Zero(t, cfg.API.Timeout)
	assert.Equal(t, []string{"it", "es"}, cfg.Languages.Available)
	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, "gcp", cfg.Providers[0].Name)
	assert.Equal(t, 100, cfg.Database.BusyTimeout)
	assert.Equal(t, 4, cfg.Database.MaxOpenConns)
}

func TestLoad_TargetAddedToAvailable(t *testing.T) {
	path := writeFile(t, "config.yaml", `
languages:
  to: ja
  available: [fr]
`)

	cfg, err := Load(path, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"ja", "fr"}, cfg.Languages.Available)
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeFile(t, "config.yaml", "api:\n  timeout: soon\n")

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_DuplicateProvider(t *testing.T) {
	path := writeFile(t, "config.yaml", `
providers:
  - name: aws
  - name: AWS
`)

	_, err := Load(path, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate provider")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, "data directory"},
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, "api.base_url"},
		{"negative timeout", func(c *Config) { c.API.Timeout = Duration(-time.Second) }, "api.timeout"},
		{"no providers", func(c *Config) { c.Providers = nil }, "at least one provider"},
		{"unnamed provider", func(c *Config) { c.Providers[1].Name = "" }, "providers[1]"},
		{"negative toast ttl", func(c *Config) { c.TUI.ToastTTL = -1 }, "tui.toast_ttl"},
		{"no connections", func(c *Config) { c.Database.MaxOpenConns = 0 }, "max_open_conns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DataDir = t.TempDir()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte(" 1m30s ")))
	assert.Equal(t, 90*time.Second, d.Std())

	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(b))

	assert.Error(t, d.UnmarshalText([]byte("ten")))
}
