package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/mtdock/internal/core/styles"
	"github.com/colonyops/mtdock/internal/mtdock"
	"github.com/colonyops/mtdock/pkg/iojson"
)

type ArticleCmd struct {
	flags *Flags
	app   *mtdock.App

	// flags
	render     bool
	width      int
	jsonOutput bool
}

// NewArticleCmd creates a new article command.
func NewArticleCmd(flags *Flags, app *mtdock.App) *ArticleCmd {
	return &ArticleCmd{flags: flags, app: app}
}

// Register adds the article command to the application.
func (cmd *ArticleCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "article",
		Usage:     "Show an original article",
		UsageText: "mtdock article <id> [--render] [--json]",
		Description: `Fetches the original (untranslated) article with the given id.

Use --render to format the article as markdown for the terminal.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "render",
				Aliases:     []string{"r"},
				Usage:       "render the article as markdown",
				Destination: &cmd.render,
			},
			&cli.IntFlag{
				Name:        "width",
				Usage:       "wrap width for --render (defaults to the terminal width)",
				Destination: &cmd.width,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		ShellComplete: QueueIDCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *ArticleCmd) run(ctx context.Context, c *cli.Command) error {
	id, err := parseID(c.Args().First())
	if err != nil {
		return err
	}

	a, err := cmd.app.Backend.GetArticle(ctx, id)
	if err != nil {
		return fmt.Errorf("get article: %w", err)
	}

	w := c.Root().Writer
	switch {
	case cmd.jsonOutput:
		return iojson.WriteWith(w, c.Root().ErrWriter, articleResult{ID: a.ID, Title: a.Title, Text: a.Text})
	case cmd.render:
		out, err := styles.RenderMarkdown(a.Markdown(), cmd.wrapWidth())
		if err != nil {
			return fmt.Errorf("render article: %w", err)
		}
		_, err = fmt.Fprintln(w, out)
		return err
	default:
		_, err = fmt.Fprintln(w, a.Body())
		return err
	}
}

func (cmd *ArticleCmd) wrapWidth() int {
	if cmd.width > 0 {
		return cmd.width
	}
	if w, _, err := term.GetSize(0); err == nil && w > 0 {
		return min(w, 120)
	}
	return 80
}

// parseID parses a positional article id.
func parseID(arg string) (int, error) {
	if arg == "" {
		return 0, fmt.Errorf("article id is required")
	}
	id, err := strconv.Atoi(arg)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid article id %q", arg)
	}
	return id, nil
}
