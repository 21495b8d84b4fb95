package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/mtdock/internal/core/notify"
	"github.com/colonyops/mtdock/internal/mtdock"
	"github.com/colonyops/mtdock/pkg/iojson"
)

type NotificationsCmd struct {
	flags *Flags
	app   *mtdock.App

	// flags
	limit      int
	level      string
	since      time.Duration
	clear      bool
	jsonOutput bool
}

// NewNotificationsCmd creates a new notifications command.
func NewNotificationsCmd(flags *Flags, app *mtdock.App) *NotificationsCmd {
	return &NotificationsCmd{flags: flags, app: app}
}

// Register adds the notifications command to the application.
func (cmd *NotificationsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "notifications",
		Aliases:   []string{"notif"},
		Usage:     "Show notification history",
		UsageText: "mtdock notifications [--limit N] [--level warning] [--since 1h] [--clear] [--json]",
		Description: `Lists past notifications, newest first.

Every toast shown in the dashboard and every warning raised by the CLI is
recorded. Use --clear to delete the history.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "show at most N notifications (0 for all)",
				Value:       50,
				Destination: &cmd.limit,
			},
			&cli.StringFlag{
				Name:        "level",
				Usage:       "only show notifications at or above this level (info, warning, error)",
				Destination: &cmd.level,
			},
			&cli.DurationFlag{
				Name:        "since",
				Usage:       "only show notifications newer than this (e.g. 30m, 24h)",
				Destination: &cmd.since,
			},
			&cli.BoolFlag{
				Name:        "clear",
				Usage:       "delete all notifications",
				Destination: &cmd.clear,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *NotificationsCmd) run(ctx context.Context, c *cli.Command) error {
	out := c.Root().Writer

	if cmd.clear {
		if err := cmd.app.Bus.Clear(ctx); err != nil {
			return fmt.Errorf("clear notifications: %w", err)
		}
		_, err := fmt.Fprintln(out, "notification history cleared")
		return err
	}

	q := notify.Query{Limit: cmd.limit}
	if cmd.level != "" {
		lv, err := notify.ParseLevel(cmd.level)
		if err != nil {
			return err
		}
		q.MinLevel = lv
	}
	if cmd.since > 0 {
		q.Since = time.Now().Add(-cmd.since)
	}

	history, err := cmd.app.Bus.History(ctx, q)
	if err != nil {
		return fmt.Errorf("list notifications: %w", err)
	}

	if cmd.jsonOutput {
		for _, n := range history {
			if err := iojson.WriteLine(out, n); err != nil {
				return fmt.Errorf("encode notification: %w", err)
			}
		}
		return nil
	}

	if len(history) == 0 {
		_, err := fmt.Fprintln(c.Root().ErrWriter, "No notifications")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TIME\tLEVEL\tMESSAGE")
	for _, n := range history {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", n.CreatedAt.Local().Format(time.DateTime), n.Level, n.Message)
	}
	return w.Flush()
}
