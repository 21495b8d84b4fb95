package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/mtdock/internal/core/navigator"
	"github.com/colonyops/mtdock/internal/core/translation"
	"github.com/colonyops/mtdock/internal/mtdock"
	"github.com/colonyops/mtdock/pkg/iojson"
)

// NavCmd steps a cursor from the command line. The same command drives the
// review providers (nav) and the final-translation browser (final).
type NavCmd struct {
	flags *Flags
	app   *mtdock.App

	name  string
	usage string
	set   string

	// flags
	from       int
	lang       string
	jsonOutput bool
}

// NewNavCmd creates the nav command over the configured providers.
func NewNavCmd(flags *Flags, app *mtdock.App) *NavCmd {
	return &NavCmd{
		flags: flags,
		app:   app,
		name:  "nav",
		usage: "Step through provider translations",
		set:   mtdock.SetReview,
	}
}

// NewFinalCmd creates the final command over submitted final translations.
func NewFinalCmd(flags *Flags, app *mtdock.App) *NavCmd {
	return &NavCmd{
		flags: flags,
		app:   app,
		name:  "final",
		usage: "Step through submitted final translations",
		set:   mtdock.SetFinal,
	}
}

// Register adds the command to the application.
func (cmd *NavCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  cmd.name,
		Usage: cmd.usage,
		Description: `Moves the cursor one step and prints where it landed.

Every provider is asked for its nearest translation and the one with the
lowest precedence wins. Without --from the cursor starts at the position
saved by the last successful step for the target language.`,
		Commands: []*cli.Command{
			cmd.stepCmd(translation.Next, "Move to the next article"),
			cmd.stepCmd(translation.Previous, "Move to the previous article"),
		},
	})

	return app
}

func (cmd *NavCmd) stepCmd(dir translation.Direction, usage string) *cli.Command {
	return &cli.Command{
		Name:      dir.String(),
		Usage:     usage,
		UsageText: fmt.Sprintf("mtdock %s %s [--from N] [--lang CODE] [--json]", cmd.name, dir),
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "from",
				Usage:       "start from this position instead of the saved one",
				Destination: &cmd.from,
			},
			&cli.StringFlag{
				Name:        "lang",
				Aliases:     []string{"l"},
				Usage:       "target language (defaults to languages.to)",
				Destination: &cmd.lang,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the outcome as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return cmd.run(ctx, c, dir)
		},
	}
}

func (cmd *NavCmd) run(ctx context.Context, c *cli.Command, dir translation.Direction) error {
	cursor, err := cmd.app.NewCursor(mtdock.CursorOptions{
		Set:      cmd.set,
		ToLang:   cmd.lang,
		Notifier: cmd.app.Bus,
	})
	if err != nil {
		return fmt.Errorf("create cursor: %w", err)
	}

	if c.IsSet("from") {
		if err := cursor.Seek(cmd.from); err != nil {
			return fmt.Errorf("--from: %w", err)
		}
	} else if _, _, err := cursor.Restore(ctx); err != nil {
		return err
	}

	out, err := cursor.Advance(ctx, dir)
	if err != nil {
		return fmt.Errorf("advance: %w", err)
	}

	w := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteWith(w, c.Root().ErrWriter, newNavResult(out))
	}

	from, to := cursor.Languages()
	printOutcome(w, out, from, to)
	return nil
}

// navResult is the JSON output format for mtdock nav --json.
type navResult struct {
	Direction string           `json:"direction"`
	From      int              `json:"from"`
	Position  int              `json:"position"`
	Moved     bool             `json:"moved"`
	Notified  bool             `json:"notified"`
	Winner    string           `json:"winner,omitempty"`
	Title     string           `json:"title,omitempty"`
	Text      string           `json:"text,omitempty"`
	Article   *articleResult   `json:"article,omitempty"`
	Providers []providerResult `json:"providers"`
}

type articleResult struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

type providerResult struct {
	Name   string `json:"name"`
	Found  bool   `json:"found"`
	ID     int    `json:"id,omitempty"`
	Title  string `json:"title,omitempty"`
	NoMore bool   `json:"no_more,omitempty"`
	Error  string `json:"error,omitempty"`
}

func newNavResult(out navigator.Outcome) navResult {
	res := navResult{
		Direction: out.Direction.String(),
		From:      out.From,
		Position:  out.Position,
		Moved:     out.Moved(),
		Notified:  out.Notified,
		Providers: make([]providerResult, 0, len(out.Results)),
	}

	if out.Moved() {
		res.Winner = out.Winner.Provider.Name
		res.Title = out.Winner.Candidate.Title
		res.Text = out.Winner.Candidate.Text
		if out.ArticleErr == nil {
			res.Article = &articleResult{ID: out.Article.ID, Title: out.Article.Title, Text: out.Article.Text}
		}
	}

	for _, r := range out.Results {
		pr := providerResult{Name: r.Provider.Name, Found: r.Found(), NoMore: r.NoMore()}
		if r.Found() {
			pr.ID = r.Candidate.ID
			pr.Title = r.Candidate.Title
		}
		if r.Err != nil && !r.NoMore() {
			pr.Error = r.Err.Error()
		}
		res.Providers = append(res.Providers, pr)
	}

	return res
}

func printOutcome(w io.Writer, out navigator.Outcome, from, to string) {
	if !out.Moved() {
		_, _ = fmt.Fprintf(w, "%s (still at #%d)\n", navigator.NoMoreMessage, out.Position)
		return
	}

	_, _ = fmt.Fprintf(w, "#%d  %s → %s  (%s)\n", out.Position, from, to, out.Winner.Provider.Name)
	switch {
	case out.ArticleErr != nil:
		_, _ = fmt.Fprintf(w, "original: unavailable (%v)\n", out.ArticleErr)
	case out.Article.Title != "":
		_, _ = fmt.Fprintf(w, "original: %s\n", out.Article.Title)
	}
	_, _ = fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PROVIDER\tID\tTITLE")
	for _, r := range out.Results {
		name := r.Provider.Name
		if r.Provider.Name == out.Winner.Provider.Name {
			name += " *"
		}

		switch {
		case r.Found():
			_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\n", name, r.Candidate.ID, r.Candidate.Title)
		case r.NoMore():
			_, _ = fmt.Fprintf(tw, "%s\t-\tno more\n", name)
		case r.Err != nil:
			_, _ = fmt.Fprintf(tw, "%s\t-\terror: %v\n", name, r.Err)
		default:
			_, _ = fmt.Fprintf(tw, "%s\t-\tno result\n", name)
		}
	}
	_ = tw.Flush()

	if out.Notified {
		_, _ = fmt.Fprintf(w, "\n%s\n", navigator.NoMoreMessage)
	}
}
