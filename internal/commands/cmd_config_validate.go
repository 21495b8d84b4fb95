package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/mtdock/internal/core/config"
	"github.com/colonyops/mtdock/internal/core/styles"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "mtdock config validate [options]",
				Description: "Validates the configuration file, checking endpoint templates, the backend URL, language codes, and file paths.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}

	err := cfg.ValidateDeep(cmd.flags.ConfigPath)
	warnings := cfg.Warnings()

	w := c.Root().Writer
	if cmd.format == "json" {
		if jerr := cmd.outputJSON(w, err, warnings); jerr != nil {
			return jerr
		}
	} else {
		cmd.outputText(w, err, warnings)
	}

	if err != nil {
		return fmt.Errorf("configuration is invalid")
	}
	return nil
}

func (cmd *ConfigValidateCmd) outputJSON(w io.Writer, err error, warnings []config.ValidationWarning) error {
	out := struct {
		Valid    bool                       `json:"valid"`
		Errors   []string                   `json:"errors,omitempty"`
		Warnings []config.ValidationWarning `json:"warnings,omitempty"`
	}{
		Valid:    err == nil,
		Errors:   errorLines(err),
		Warnings: warnings,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (cmd *ConfigValidateCmd) outputText(w io.Writer, err error, warnings []config.ValidationWarning) {
	for _, warn := range warnings {
		_, _ = fmt.Fprintf(w, "%s %s: %s\n", lipgloss.NewStyle().Foreground(styles.ColorWarning).Render("warn"), warn.Category, warn.Message)
		if warn.Item != "" {
			_, _ = fmt.Fprintf(w, "  Item: %s\n", warn.Item)
		}
	}

	for _, line := range errorLines(err) {
		_, _ = fmt.Fprintf(w, "%s %s\n", lipgloss.NewStyle().Foreground(styles.ColorError).Render("error"), line)
	}

	_, _ = fmt.Fprintln(w)
	if err == nil {
		_, _ = fmt.Fprintln(w, styles.CommandHeaderStyle.Render("Configuration is valid"))
		return
	}
	_, _ = fmt.Fprintf(w, "%d error(s) found\n", len(errorLines(err)))
}

// errorLines splits a joined validation error into one entry per line.
func errorLines(err error) []string {
	if err == nil {
		return nil
	}
	var lines []string
	for _, l := range strings.Split(err.Error(), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
