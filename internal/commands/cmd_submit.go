package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/mtdock/internal/core/styles"
	"github.com/colonyops/mtdock/internal/core/translation"
	"github.com/colonyops/mtdock/internal/mtdock"
	"github.com/colonyops/mtdock/pkg/iojson"
)

// submitInput is the JSON document accepted on stdin or with --file.
type submitInput struct {
	ID       int            `json:"id"`
	Title    string         `json:"title"`
	Text     string         `json:"text"`
	Comments string         `json:"comments"`
	Ratings  map[string]int `json:"ratings"`
	Lang     string         `json:"lang"`
}

type SubmitCmd struct {
	flags *Flags
	app   *mtdock.App

	// flags
	id       int
	title    string
	text     string
	comments string
	ratings  []string
	lang     string
	input    iojson.FileReader[submitInput]
}

// NewSubmitCmd creates a new submit command.
func NewSubmitCmd(flags *Flags, app *mtdock.App) *SubmitCmd {
	return &SubmitCmd{flags: flags, app: app}
}

// Register adds the submit command to the application.
func (cmd *SubmitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "submit",
		Usage:     "Submit a final translation",
		UsageText: "mtdock submit [--id N --title T [--text T] [--rating provider=N]...] [-f file.json]",
		Description: `Posts a reviewed translation to the backend and records it locally.

The submission can be provided as:
- Flags (--id and --title are required)
- A JSON document with -f/--file or piped on stdin:
    {"id": 6, "title": "...", "text": "...", "ratings": {"gcp": 4}}
- An interactive form when neither is given

Examples:
  mtdock submit --id 6 --title "Titre" --text "Texte" --rating gcp=4
  mtdock submit -f review.json
  mtdock submit`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "id",
				Usage:       "article id",
				Destination: &cmd.id,
			},
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "translated title",
				Destination: &cmd.title,
			},
			&cli.StringFlag{
				Name:        "text",
				Usage:       "translated body",
				Destination: &cmd.text,
			},
			&cli.StringFlag{
				Name:        "comments",
				Aliases:     []string{"m"},
				Usage:       "reviewer comments",
				Destination: &cmd.comments,
			},
			&cli.StringSliceFlag{
				Name:        "rating",
				Aliases:     []string{"r"},
				Usage:       "provider rating as provider=N, 0-5 (repeatable)",
				Destination: &cmd.ratings,
			},
			&cli.StringFlag{
				Name:        "lang",
				Aliases:     []string{"l"},
				Usage:       "target language (defaults to languages.to)",
				Destination: &cmd.lang,
			},
			cmd.input.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *SubmitCmd) run(ctx context.Context, c *cli.Command) error {
	in, err := cmd.collect(c)
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	lang := in.Lang
	if lang == "" {
		lang = cmd.app.Config.Languages.To
	}

	sub := translation.Submission{
		ID:       in.ID,
		Title:    strings.TrimSpace(in.Title),
		Text:     strings.TrimSpace(in.Text),
		Comments: in.Comments,
		Ratings:  in.Ratings,
	}
	if err := sub.Validate(); err != nil {
		return fmt.Errorf("invalid submission: %w", err)
	}

	resp, err := cmd.app.Submit(ctx, lang, sub)
	switch {
	case err != nil && resp == "":
		return err
	case err != nil:
		log.Warn().Err(err).Int("id", sub.ID).Msg("submission accepted but not recorded")
	}

	cmd.app.Bus.Infof("submitted final translation for #%d", sub.ID)

	w := c.Root().Writer
	_, _ = fmt.Fprintf(w, "%s #%d (%s)\n", styles.CommandHeaderStyle.Render("submitted"), sub.ID, lang)
	_, _ = fmt.Fprintf(w, "%s %s\n", styles.LabelStyle.Render("checksum:"), sub.Checksum())
	if resp != "" {
		_, _ = fmt.Fprintf(w, "%s %s\n", styles.LabelStyle.Render("response:"), resp)
	}
	return nil
}

// collect gathers the submission from flags, a JSON document or a form, in
// that order.
func (cmd *SubmitCmd) collect(c *cli.Command) (submitInput, error) {
	if c.IsSet("id") || c.IsSet("title") {
		ratings, err := parseRatings(cmd.ratings)
		if err != nil {
			return submitInput{}, err
		}
		return submitInput{
			ID:       cmd.id,
			Title:    cmd.title,
			Text:     cmd.text,
			Comments: cmd.comments,
			Ratings:  ratings,
			Lang:     cmd.lang,
		}, nil
	}

	if cmd.input.Provided() {
		in, err := cmd.input.Read()
		if err != nil {
			return submitInput{}, err
		}
		if cmd.lang != "" {
			in.Lang = cmd.lang
		}
		return in, nil
	}

	return cmd.runForm()
}

func (cmd *SubmitCmd) runForm() (submitInput, error) {
	in := submitInput{Lang: cmd.lang}
	var idStr, ratingStr string

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Article id").
				Validate(func(s string) error {
					_, err := parseID(strings.TrimSpace(s))
					return err
				}).
				Value(&idStr),
			huh.NewInput().
				Title("Title").
				Validate(validateRequired("title")).
				Value(&in.Title),
			huh.NewText().
				Title("Text").
				Value(&in.Text),
			huh.NewInput().
				Title("Ratings").
				Description("provider=N pairs separated by spaces, e.g. aws=3 gcp=5").
				Validate(func(s string) error {
					_, err := parseRatings(strings.Fields(s))
					return err
				}).
				Value(&ratingStr),
			huh.NewText().
				Title("Comments").
				Value(&in.Comments),
		),
	).WithTheme(styles.FormTheme()).Run()
	if err != nil {
		return submitInput{}, err
	}

	in.ID, _ = parseID(strings.TrimSpace(idStr))
	in.Ratings, _ = parseRatings(strings.Fields(ratingStr))
	return in, nil
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// parseRatings parses provider=N pairs.
func parseRatings(pairs []string) (map[string]int, error) {
	ratings := make(map[string]int, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("rating %q must be provider=N", pair)
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 || n > translation.MaxRating {
			return nil, fmt.Errorf("rating for %s must be 0-%d, got %q", name, translation.MaxRating, value)
		}
		ratings[name] = n
	}
	return ratings, nil
}
