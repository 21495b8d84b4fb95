package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/mtdock/internal/backend"
	"github.com/colonyops/mtdock/internal/core/styles"
)

var langCode = regexp.MustCompile(`^[a-z]{2,3}(-[A-Za-z]{2,4})?$`)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration
// including endpoint templates, the backend URL and file accessibility. The
// configPath argument specifies the config file location to validate (empty
// string skips the config file check).
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		criterio.Run("api.base_url", c.API.BaseURL, isHTTPURL),
		c.validateEndpoints(),
		c.validateLanguages(),
		criterio.Run("tui.theme", c.TUI.Theme, isKnownTheme),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.API.Timeout == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "API",
			Message:  "timeout is 0; a stalled provider blocks navigation indefinitely",
		})
	}

	precedence := map[int]string{}
	for _, p := range c.Providers {
		if other, ok := precedence[p.Precedence]; ok {
			warnings = append(warnings, ValidationWarning{
				Category: "Providers",
				Item:     p.Name,
				Message:  fmt.Sprintf("shares precedence %d with %s; configured order breaks the tie", p.Precedence, other),
			})
			continue
		}
		precedence[p.Precedence] = p.Name
	}

	return warnings
}

// validateFileAccess checks the config file and data directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func isHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

func isKnownTheme(name string) error {
	if _, ok := styles.GetPalette(name); !ok {
		return fmt.Errorf("unknown theme %q (available: %v)", name, styles.ThemeNames())
	}
	return nil
}

// validateEndpoints renders every endpoint template against placeholder data.
func (c *Config) validateEndpoints() error {
	var errs criterio.FieldErrorsBuilder
	for i, p := range c.Providers {
		if err := backend.CheckEndpoint(p.Provider()); err != nil {
			errs = errs.Append(fmt.Sprintf("providers[%d].endpoint", i), fmt.Errorf("template error: %w", err))
		}
	}
	if err := backend.CheckEndpoint(c.Final.Provider()); err != nil {
		errs = errs.Append("final.endpoint", fmt.Errorf("template error: %w", err))
	}
	return errs.ToError()
}

func (c *Config) validateLanguages() error {
	var errs criterio.FieldErrorsBuilder

	if !langCode.MatchString(c.Languages.From) {
		errs = errs.Append("languages.from", fmt.Errorf("invalid language code %q", c.Languages.From))
	}
	if !langCode.MatchString(c.Languages.To) {
		errs = errs.Append("languages.to", fmt.Errorf("invalid language code %q", c.Languages.To))
	}
	for i, lang := range c.Languages.Available {
		if !langCode.MatchString(lang) {
			errs = errs.Append(fmt.Sprintf("languages.available[%d]", i), fmt.Errorf("invalid language code %q", lang))
		}
	}
	if c.Languages.From == c.Languages.To {
		errs = errs.Append("languages.to", fmt.Errorf("target language equals source language %q", c.Languages.From))
	}

	return errs.ToError()
}
