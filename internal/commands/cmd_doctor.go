package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/mtdock/internal/core/doctor"
	"github.com/colonyops/mtdock/internal/core/styles"
	"github.com/colonyops/mtdock/internal/data/db"
	"github.com/colonyops/mtdock/internal/mtdock"
	"github.com/colonyops/mtdock/pkg/iojson"
)

const doctorProbeTimeout = 5 * time.Second

type DoctorCmd struct {
	flags *Flags
	app   *mtdock.App

	format string
}

// NewDoctorCmd creates a new doctor command.
func NewDoctorCmd(flags *Flags, app *mtdock.App) *DoctorCmd {
	return &DoctorCmd{flags: flags, app: app}
}

// Register adds the doctor command to the application.
func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "doctor",
		Usage:     "Check configuration, database and backend health",
		UsageText: "mtdock doctor [--format text|json]",
		Description: `Runs diagnostic checks:

- the configuration validates
- the local database opens and passes SQLite's integrity check
- every provider answers a lookup and the queue status endpoint responds`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) checks() []doctor.Check {
	cfg := cmd.app.Config
	providers := append(cfg.ProviderSet(), cfg.Final.Provider())
	return []doctor.Check{
		doctor.NewConfigCheck(cfg, cmd.flags.ConfigPath),
		doctor.NewDatabaseCheck(cmd.app.DB.Conn(), filepath.Join(cfg.DataDir, db.FileName)),
		doctor.NewBackendCheck(cmd.app.Backend, providers, cfg.Languages.From, cfg.Languages.To, doctorProbeTimeout),
	}
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	results := doctor.RunAll(ctx, cmd.checks())
	passed, warned, failed := doctor.Summary(results)

	w := c.Root().Writer
	if cmd.format == "json" {
		out := struct {
			Healthy bool            `json:"healthy"`
			Summary summaryJSON     `json:"summary"`
			Checks  []doctor.Result `json:"checks"`
		}{
			Healthy: failed == 0,
			Summary: summaryJSON{Passed: passed, Warned: warned, Failed: failed},
			Checks:  results,
		}
		if err := iojson.WriteWith(w, c.Root().ErrWriter, out); err != nil {
			return err
		}
	} else {
		printDoctor(w, results, passed, warned, failed)
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

type summaryJSON struct {
	Passed int `json:"passed"`
	Warned int `json:"warned"`
	Failed int `json:"failed"`
}

func statusIcon(status doctor.Status) string {
	switch status {
	case doctor.StatusPass:
		return lipgloss.NewStyle().Foreground(styles.ColorSuccess).Render("✔")
	case doctor.StatusWarn:
		return lipgloss.NewStyle().Foreground(styles.ColorWarning).Render("●")
	default:
		return lipgloss.NewStyle().Foreground(styles.ColorError).Render("✘")
	}
}

func printDoctor(w io.Writer, results []doctor.Result, passed, warned, failed int) {
	muted := lipgloss.NewStyle().Foreground(styles.ColorMuted)

	_, _ = fmt.Fprintln(w, styles.CommandHeaderStyle.Render("mtdock doctor"))
	_, _ = fmt.Fprintln(w, styles.DividerStyle.Render(strings.Repeat("─", 40)))
	_, _ = fmt.Fprintln(w)

	for _, result := range results {
		_, _ = fmt.Fprintf(w, "%s %s %s\n",
			statusIcon(result.Worst()),
			lipgloss.NewStyle().Bold(true).Render(result.Name),
			muted.Render(result.Took.Round(time.Millisecond).String()),
		)

		for _, item := range result.Items {
			var detail string
			if item.Detail != "" {
				detail = " " + muted.Render(item.Detail)
			}
			_, _ = fmt.Fprintf(w, "  %s %s%s\n", statusIcon(item.Status), item.Label, detail)
		}

		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintf(w, "%s  %s  %s\n",
		lipgloss.NewStyle().Foreground(styles.ColorSuccess).Render(fmt.Sprintf("%d passed", passed)),
		lipgloss.NewStyle().Foreground(styles.ColorWarning).Render(fmt.Sprintf("%d warnings", warned)),
		lipgloss.NewStyle().Foreground(styles.ColorError).Render(fmt.Sprintf("%d failed", failed)),
	)
}
