package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/mtdock/internal/core/translation"
	"github.com/colonyops/mtdock/internal/mtdock"
	"github.com/colonyops/mtdock/pkg/iojson"
)

type QueueCmd struct {
	flags *Flags
	app   *mtdock.App

	// flags
	from       string
	to         string
	filter     string
	status     string
	jsonOutput bool
}

// NewQueueCmd creates a new queue command.
func NewQueueCmd(flags *Flags, app *mtdock.App) *QueueCmd {
	return &QueueCmd{flags: flags, app: app}
}

// Register adds the queue command to the application.
func (cmd *QueueCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "queue",
		Usage: "Manage the retranslation queue",
		Description: `Queue commands talk to the translation backend's FIFO.

Pushing an article asks every provider to translate it again for the
language pair; the queue listing shows pending and finished jobs.`,
		Commands: []*cli.Command{
			cmd.pushCmd(),
			cmd.lsCmd(),
			cmd.rmCmd(),
		},
	})

	return app
}

func (cmd *QueueCmd) langFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "from",
			Usage:       "source language (defaults to languages.from)",
			Destination: &cmd.from,
		},
		&cli.StringFlag{
			Name:        "to",
			Usage:       "target language (defaults to languages.to)",
			Destination: &cmd.to,
		},
	}
}

func (cmd *QueueCmd) pushCmd() *cli.Command {
	return &cli.Command{
		Name:      "push",
		Usage:     "Queue an article for retranslation",
		UsageText: "mtdock queue push <id> [--from CODE] [--to CODE]",
		Flags:     cmd.langFlags(),
		Action:    cmd.runPush,
	}
}

func (cmd *QueueCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List queue status",
		UsageText: "mtdock queue ls [--filter GLOB] [--status STATUS] [--json]",
		Description: `Lists queued and finished translation jobs.

--filter matches titles with a glob (case-insensitive), e.g. "*climate*".`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "filter",
				Aliases:     []string{"f"},
				Usage:       "only show entries whose title matches the glob",
				Destination: &cmd.filter,
			},
			&cli.StringFlag{
				Name:        "status",
				Usage:       "only show entries with this status",
				Destination: &cmd.status,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.runLs,
	}
}

func (cmd *QueueCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:          "rm",
		Usage:         "Remove an article's translations from the queue",
		UsageText:     "mtdock queue rm <id> [--from CODE] [--to CODE]",
		Flags:         cmd.langFlags(),
		ShellComplete: QueueIDCompleter(cmd.app),
		Action:        cmd.runRm,
	}
}

func (cmd *QueueCmd) languages() (string, string) {
	from, to := cmd.from, cmd.to
	if from == "" {
		from = cmd.app.Config.Languages.From
	}
	if to == "" {
		to = cmd.app.Config.Languages.To
	}
	return from, to
}

func (cmd *QueueCmd) runPush(ctx context.Context, c *cli.Command) error {
	id, err := parseID(c.Args().First())
	if err != nil {
		return err
	}

	from, to := cmd.languages()
	ack, err := cmd.app.Backend.PushToFIFO(ctx, id, from, to)
	if err != nil {
		return fmt.Errorf("push #%d: %w", id, err)
	}

	cmd.app.Bus.Infof("queued #%d %s→%s", id, from, to)
	_, err = fmt.Fprintf(c.Root().Writer, "#%d %s→%s: %s\n", id, from, to, ack)
	return err
}

func (cmd *QueueCmd) runLs(ctx context.Context, c *cli.Command) error {
	if cmd.filter != "" && !doublestar.ValidatePattern(strings.ToLower(cmd.filter)) {
		return fmt.Errorf("invalid --filter glob %q", cmd.filter)
	}

	items, err := cmd.app.Backend.QueueStatus(ctx)
	if err != nil {
		return fmt.Errorf("queue status: %w", err)
	}

	items = filterQueue(items, cmd.filter, cmd.status)

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, it := range items {
			if err := iojson.WriteLine(out, it); err != nil {
				return fmt.Errorf("encode queue item: %w", err)
			}
		}
		return nil
	}

	if len(items) == 0 {
		_, err := fmt.Fprintln(c.Root().ErrWriter, "Queue is empty")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATUS\tFROM\tTO\tTITLE")
	for _, it := range items {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", it.ID, it.Status, it.LangFrom, it.LangTo, it.Title)
	}
	return w.Flush()
}

func (cmd *QueueCmd) runRm(ctx context.Context, c *cli.Command) error {
	id, err := parseID(c.Args().First())
	if err != nil {
		return err
	}

	from, to := cmd.languages()
	if err := cmd.app.Backend.RemoveFromQueue(ctx, id, from, to); err != nil {
		return fmt.Errorf("remove #%d: %w", id, err)
	}

	_, err = fmt.Fprintf(c.Root().Writer, "removed #%d %s→%s\n", id, from, to)
	return err
}

// titleSep stands in for "/" so titles are matched as a single segment.
const titleSep = "\x00"

// filterQueue keeps items whose title matches glob (case-insensitive) and
// whose status equals status. Empty arguments match everything. Titles are
// not paths: "*" also matches "/".
func filterQueue(items []translation.QueueItem, glob, status string) []translation.QueueItem {
	glob = strings.ReplaceAll(strings.ToLower(glob), "/", titleSep)

	var out []translation.QueueItem
	for _, it := range items {
		if status != "" && !strings.EqualFold(it.Status, status) {
			continue
		}
		if glob != "" {
			title := strings.ReplaceAll(strings.ToLower(it.Title), "/", titleSep)
			ok, err := doublestar.Match(glob, title)
			if err != nil || !ok {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}
