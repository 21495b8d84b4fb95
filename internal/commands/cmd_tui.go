package commands

import (
	"context"
	"fmt"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/mtdock/internal/core/logging"
	"github.com/colonyops/mtdock/internal/mtdock"
	"github.com/colonyops/mtdock/internal/tui"
	"github.com/colonyops/mtdock/pkg/profiler"
)

type TuiCmd struct {
	flags *Flags
	app   *mtdock.App

	lang string
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *mtdock.App) *TuiCmd {
	return &TuiCmd{
		flags: flags,
		app:   app,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "lang",
			Aliases:     []string{"l"},
			Usage:       "target language to review (defaults to languages.to)",
			Sources:     cli.EnvVars("MTDOCK_LANG"),
			Local:       true,
			Destination: &cmd.lang,
		},
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on 127.0.0.1 at the given port (e.g., 6060)",
			Sources:     cli.EnvVars("MTDOCK_PROFILER_PORT"),
			Local:       true,
			Destination: &cmd.flags.ProfilerPort,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	cfg := cmd.app.Config

	if cmd.flags.ProfilerPort > 0 {
		profServer := profiler.New(cmd.flags.ProfilerPort, logging.Component("profiler"))
		if err := profServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := profServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
		log.Info().Str("url", profServer.URL()).Msg("profiler endpoint available")
	}

	// Toasts are driven from the model, so the cursor gets no notifier.
	cursor, err := cmd.app.NewCursor(mtdock.CursorOptions{
		Set:    mtdock.SetReview,
		ToLang: cmd.lang,
	})
	if err != nil {
		return fmt.Errorf("create cursor: %w", err)
	}

	languages := slices.Clone(cfg.Languages.Available)
	if _, to := cursor.Languages(); !slices.Contains(languages, to) {
		languages = append([]string{to}, languages...)
	}

	m := tui.New(tui.Options{
		Cursor:    cursor,
		Backend:   cmd.app.Backend,
		Reviews:   cmd.app.Reviews,
		Bus:       cmd.app.Bus,
		Languages: languages,
		ToastTTL:  cfg.TUI.ToastTTL.Std(),
	})

	log.Info().Str("to_lang", cmd.lang).Msg("starting dashboard")

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
