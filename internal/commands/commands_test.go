package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/mtdock/internal/backend/backendtest"
	"github.com/colonyops/mtdock/internal/core/config"
	"github.com/colonyops/mtdock/internal/core/notify"
	"github.com/colonyops/mtdock/internal/core/translation"
	"github.com/colonyops/mtdock/internal/mtdock"
)

type harness struct {
	flags *Flags
	app   *mtdock.App
	srv   *backendtest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	srv := backendtest.New(t)

	cfg := config.DefaultConfig()
	cfg.API.BaseURL = srv.URL
	cfg.DataDir = t.TempDir()

	app, err := mtdock.Open(&cfg, mtdock.BuildInfo{Version: "test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	srv.AddArticle(translation.Article{ID: 6, Title: "Six", Text: "Original six"})
	srv.AddArticle(translation.Article{ID: 8, Title: "Eight", Text: "Original eight"})
	srv.AddTranslation(2, translation.Candidate{ID: 6, Title: "Six fr", Text: "gcp six", LangTo: "fr"})
	srv.AddTranslation(3, translation.Candidate{ID: 6, Title: "Six fr az", Text: "azure six", LangTo: "fr"})
	srv.AddTranslation(3, translation.Candidate{ID: 8, Title: "Huit", Text: "azure eight", LangTo: "fr"})

	return &harness{flags: &Flags{Config: &cfg}, app: app, srv: srv}
}

// run executes args against a root command with every subcommand registered.
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := h.runStreams(t, args...)
	return out, err
}

// runStreams is run that also returns what was written to the error writer.
func (h *harness) runStreams(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := &cli.Command{
		Name:      "mtdock",
		Writer:    &out,
		ErrWriter: &errOut,
	}
	NewNavCmd(h.flags, h.app).Register(root)
	NewFinalCmd(h.flags, h.app).Register(root)
	NewArticleCmd(h.flags, h.app).Register(root)
	NewQueueCmd(h.flags, h.app).Register(root)
	NewSubmitCmd(h.flags, h.app).Register(root)
	NewNotificationsCmd(h.flags, h.app).Register(root)
	NewConfigValidateCmd(h.flags).Register(root)
	NewDoctorCmd(h.flags, h.app).Register(root)

	err := root.Run(context.Background(), append([]string{"mtdock"}, args...))
	return out.String(), errOut.String(), err
}

func decode[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestNav_fromPosition(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "nav", "next", "--from", "5", "--json")
	require.NoError(t, err)

	res := decode[navResult](t, out)
	assert.Equal(t, 5, res.From)
	assert.Equal(t, 6, res.Position)
	assert.True(t, res.Moved)
	assert.Equal(t, "gcp", res.Winner)
	assert.Equal(t, "Six fr", res.Title)
	assert.True(t, res.Notified, "aws answered 400")
	require.NotNil(t, res.Article)
	assert.Equal(t, "Six", res.Article.Title)

	require.Len(t, res.Providers, 3)
	assert.Equal(t, "aws", res.Providers[0].Name)
	assert.True(t, res.Providers[0].NoMore)
	assert.True(t, res.Providers[2].Found)
}

func TestNav_resumesFromCheckpoint(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "nav", "next", "--from", "5")
	require.NoError(t, err)

	out, err := h.run(t, "nav", "next", "--json")
	require.NoError(t, err)

	res := decode[navResult](t, out)
	assert.Equal(t, 6, res.From)
	assert.Equal(t, 8, res.Position)
	assert.Equal(t, "azure", res.Winner)
}

func TestNav_exhausted(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "nav", "prev", "--from", "6")
	require.NoError(t, err)
	assert.Contains(t, out, "No more articles (still at #6)")

	history, err := h.app.Bus.History(context.Background(), notify.Query{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "No more articles", history[0].Message)
}

func TestNav_textOutput(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "nav", "next", "--from", "5")
	require.NoError(t, err)

	assert.Contains(t, out, "#6  en → fr  (gcp)")
	assert.Contains(t, out, "original: Six")
	assert.Contains(t, out, "gcp *")
	assert.Contains(t, out, "no more")
}

func TestNav_otherLanguage(t *testing.T) {
	h := newHarness(t)
	h.srv.AddTranslation(1, translation.Candidate{ID: 2, Title: "Zwei", LangTo: "de"})

	out, err := h.run(t, "nav", "next", "--lang", "de", "--json")
	require.NoError(t, err)

	res := decode[navResult](t, out)
	assert.Equal(t, 2, res.Position)
	assert.Equal(t, "aws", res.Winner)
}

func TestNav_negativeFrom(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "nav", "next", "--from", "-1")
	require.Error(t, err)
}

func TestFinal_next(t *testing.T) {
	h := newHarness(t)
	h.srv.AddFinal(translation.Candidate{ID: 4, Title: "Final four", Text: "done"})

	out, err := h.run(t, "final", "next", "--json")
	require.NoError(t, err)

	res := decode[navResult](t, out)
	assert.Equal(t, 4, res.Position)
	assert.Equal(t, "final", res.Winner)
	assert.Equal(t, "Final four", res.Title)
}

func TestArticle(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "article", "6")
	require.NoError(t, err)
	assert.Equal(t, "Six\n\nOriginal six\n", out)

	out, err = h.run(t, "article", "6", "--json")
	require.NoError(t, err)
	a := decode[articleResult](t, out)
	assert.Equal(t, articleResult{ID: 6, Title: "Six", Text: "Original six"}, a)

	out, err = h.run(t, "article", "6", "--render", "--width", "60")
	require.NoError(t, err)
	assert.Contains(t, out, "Six")
}

func TestArticle_errors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "article")
	require.Error(t, err)

	_, err = h.run(t, "article", "abc")
	require.Error(t, err)

	_, err = h.run(t, "article", "99")
	require.Error(t, err, "empty object means not found")
}

func TestQueue_pushListRemove(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "queue", "push", "6")
	require.NoError(t, err)
	assert.Equal(t, "#6 en→fr: queued\n", out)

	_, err = h.run(t, "queue", "push", "8", "--to", "de")
	require.NoError(t, err)

	out, err = h.run(t, "queue", "ls", "--json")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	first := decode[translation.QueueItem](t, lines[0])
	assert.Equal(t, 6, first.ID)
	assert.Equal(t, "fr", first.LangTo)

	out, err = h.run(t, "queue", "ls", "--filter", "EIG*")
	require.NoError(t, err)
	assert.Contains(t, out, "Eight")
	assert.NotContains(t, out, "Six")

	_, err = h.run(t, "queue", "rm", "8", "--to", "de")
	require.NoError(t, err)

	queue := h.srv.Queue()
	require.Len(t, queue, 1)
	assert.Equal(t, 6, queue[0].ID)
}

func TestQueue_badFilter(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "queue", "ls", "--filter", "[")
	require.Error(t, err)
}

func TestSubmit_flags(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "submit",
		"--id", "6",
		"--title", "Titre six",
		"--text", "Texte",
		"--comments", "good",
		"--rating", "gcp=4",
		"--rating", "azure=2",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "#6 (fr)")

	sub := translation.Submission{ID: 6, Title: "Titre six", Text: "Texte"}
	assert.Contains(t, out, sub.Checksum())

	posted := h.srv.Submissions()
	require.Len(t, posted, 1)
	assert.Equal(t, "good", posted[0]["comments"])
	assert.EqualValues(t, 4, posted[0]["gcp_rating"])
	assert.EqualValues(t, 2, posted[0]["azure_rating"])

	reviews, err := h.app.Reviews.ListByArticle(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, map[string]int{"gcp": 4, "azure": 2}, reviews[0].Ratings)
}

func TestSubmit_invalid(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "submit", "--id", "6", "--title", "T", "--rating", "gcp=9")
	require.Error(t, err)

	_, err = h.run(t, "submit", "--id", "6")
	require.Error(t, err, "title is required")

	assert.Empty(t, h.srv.Submissions())
}

func TestNotifications(t *testing.T) {
	h := newHarness(t)
	h.app.Bus.Infof("first")
	h.app.Bus.Warnf("second")

	out, err := h.run(t, "notifications", "--json")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "second")

	out, err = h.run(t, "notifications")
	require.NoError(t, err)
	assert.Contains(t, out, "LEVEL")
	assert.Contains(t, out, "warning")

	_, err = h.run(t, "notifications", "--clear")
	require.NoError(t, err)

	history, err := h.app.Bus.History(context.Background(), notify.Query{})
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestNotifications_filters(t *testing.T) {
	h := newHarness(t)
	h.app.Bus.Infof("chatty")
	h.app.Bus.Errorf("submit #6: boom")

	out, err := h.run(t, "notifications", "--level", "warn", "--since", "1h", "--json")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "boom")

	_, err = h.run(t, "notifications", "--level", "loud")
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "config", "validate", "--format", "json")
	require.NoError(t, err)

	res := decode[struct {
		Valid  bool     `json:"valid"`
		Errors []string `json:"errors"`
	}](t, out)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestConfigValidate_invalid(t *testing.T) {
	h := newHarness(t)
	h.flags.Config.Providers[0].Endpoint = "/get-first?id={{.Nope"

	out, err := h.run(t, "config", "validate")
	require.Error(t, err)
	assert.Contains(t, out, "error(s) found")
}

func TestParseRatings(t *testing.T) {
	got, err := parseRatings([]string{"aws=0", " gcp = 5 "})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"aws": 0, "gcp": 5}, got)

	for _, bad := range []string{"aws", "=3", "aws=x", "aws=6", "aws=-1"} {
		_, err := parseRatings([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestFilterQueue(t *testing.T) {
	items := []translation.QueueItem{
		{ID: 1, Title: "Climate report", Status: "pending"},
		{ID: 2, Title: "Election night", Status: "done"},
		{ID: 3, Title: "Climate summit", Status: "done"},
	}

	assert.Len(t, filterQueue(items, "", ""), 3)
	assert.Len(t, filterQueue(items, "climate*", ""), 2)
	assert.Len(t, filterQueue(items, "*NIGHT", ""), 1)

	got := filterQueue(items, "climate*", "DONE")
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ID)
}

func TestFilterQueue_slashInTitle(t *testing.T) {
	items := []translation.QueueItem{
		{ID: 1, Title: "Peace/War"},
		{ID: 2, Title: "Peace talks"},
	}

	tests := []struct {
		glob string
		want []int
	}{
		{"*war*", []int{1}},
		{"peace*", []int{1, 2}},
		{"peace/war", []int{1}},
		{"*/*", []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.glob, func(t *testing.T) {
			var ids []int
			for _, it := range filterQueue(items, tt.glob, "") {
				ids = append(ids, it.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestQueue_emptyListGoesToErrWriter(t *testing.T) {
	h := newHarness(t)

	out, errOut, err := h.runStreams(t, "queue", "ls")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, "Queue is empty\n", errOut)
}

func TestDoctor_json(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "doctor", "--format", "json")
	require.NoError(t, err)

	var res struct {
		Healthy bool `json:"healthy"`
		Summary struct {
			Failed int `json:"failed"`
		} `json:"summary"`
		Checks []struct {
			Name string `json:"name"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Healthy)
	assert.Zero(t, res.Summary.Failed)
	require.Len(t, res.Checks, 3)
}

func TestDoctor_backendDown(t *testing.T) {
	h := newHarness(t)
	h.srv.Close()

	out, err := h.run(t, "doctor")
	require.Error(t, err)
	assert.Contains(t, out, "failed")
}

func TestQueueCompletions(t *testing.T) {
	items := []translation.QueueItem{
		{ID: 9, Title: "Nine", LangTo: "fr"},
		{ID: 3, Title: "Three", LangTo: "de"},
		{ID: 9, Title: "Nine", LangTo: "de"},
		{ID: 4, Title: "Four", LangTo: "fr"},
	}

	ids := func(in []translation.QueueItem) []int {
		out := make([]int, len(in))
		for i, it := range in {
			out[i] = it.ID
		}
		return out
	}

	assert.Equal(t, []int{3, 4, 9}, ids(queueCompletions(items, "")))
	assert.Equal(t, []int{4, 9}, ids(queueCompletions(items, "fr")))
	assert.Empty(t, queueCompletions(items, "es"))
}

func TestDefaultPaths(t *testing.T) {
	cfgHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgHome)
	t.Setenv("XDG_DATA_HOME", "/data")

	assert.Equal(t, filepath.Join(cfgHome, "mtdock", "config.yaml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/data", "mtdock"), DefaultDataDir())

	require.NoError(t, os.MkdirAll(filepath.Join(cfgHome, "mtdock"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgHome, "mtdock", "config.toml"), nil, 0o644))
	assert.Equal(t, filepath.Join(cfgHome, "mtdock", "config.toml"), DefaultConfigPath())
}
