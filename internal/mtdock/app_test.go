package mtdock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/mtdock/internal/backend/backendtest"
	"github.com/colonyops/mtdock/internal/core/config"
	"github.com/colonyops/mtdock/internal/core/translation"
)

func setupApp(t *testing.T) (*App, *backendtest.Server) {
	t.Helper()

	srv := backendtest.New(t)

	cfg := config.DefaultConfig()
	cfg.API.BaseURL = srv.URL
	cfg.DataDir = t.TempDir()

	app, err := Open(&cfg, BuildInfo{Version: "test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	return app, srv
}

func TestNewCursor_review(t *testing.T) {
	app, srv := setupApp(t)
	srv.AddArticle(translation.Article{ID: 6, Title: "Six", Text: "Original"})
	srv.AddTranslation(2, translation.Candidate{ID: 6, Title: "Six fr", Text: "gcp", LangTo: "fr"})
	srv.AddTranslation(3, translation.Candidate{ID: 9, Title: "Nine fr", Text: "azure", LangTo: "fr"})

	cursor, err := app.NewCursor(CursorOptions{})
	require.NoError(t, err)
	require.NoError(t, cursor.Seek(5))

	out, err := cursor.Advance(context.Background(), translation.Next)
	require.NoError(t, err)

	assert.Equal(t, 6, out.Position)
	assert.Equal(t, "gcp", out.Winner.Provider.Name)
	assert.Equal(t, "Six", out.Article.Title)
	assert.True(t, out.Notified, "aws answered 400")

	restored, err := app.NewCursor(CursorOptions{})
	require.NoError(t, err)
	pos, ok, err := restored.Restore(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 6, pos)
}

func TestNewCursor_checkpointsPerLanguage(t *testing.T) {
	app, srv := setupApp(t)
	srv.AddTranslation(1, translation.Candidate{ID: 2, Title: "Deux", LangTo: "fr"})
	srv.AddTranslation(1, translation.Candidate{ID: 4, Title: "Vier", LangTo: "de"})

	fr, err := app.NewCursor(CursorOptions{})
	require.NoError(t, err)
	_, err = fr.Advance(context.Background(), translation.Next)
	require.NoError(t, err)

	de, err := app.NewCursor(CursorOptions{ToLang: "de"})
	require.NoError(t, err)
	_, ok, err := de.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	out, err := de.Advance(context.Background(), translation.Next)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Position)
}

func TestNewCursor_final(t *testing.T) {
	app, srv := setupApp(t)
	srv.AddFinal(translation.Candidate{ID: 3, Title: "Final three", Text: "done"})

	cursor, err := app.NewCursor(CursorOptions{Set: SetFinal})
	require.NoError(t, err)

	providers := cursor.Providers()
	require.Len(t, providers, 1)
	assert.Equal(t, "final", providers[0].Name)

	out, err := cursor.Advance(context.Background(), translation.Next)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Position)
	assert.Equal(t, "Final three", out.Winner.Candidate.Title)

	out, err = cursor.Advance(context.Background(), translation.Next)
	require.NoError(t, err)
	assert.True(t, out.Exhausted)
	assert.Equal(t, 3, cursor.Position())
}

func TestNewCursor_unknownSet(t *testing.T) {
	app, _ := setupApp(t)

	_, err := app.NewCursor(CursorOptions{Set: "draft"})
	require.Error(t, err)
}

func TestSubmit_records_review(t *testing.T) {
	app, srv := setupApp(t)

	sub := translation.Submission{
		ID:      6,
		Title:   "Titre",
		Text:    "Texte",
		Ratings: map[string]int{"gcp": 4},
	}

	resp, err := app.Submit(context.Background(), "fr", sub)
	require.NoError(t, err)
	assert.Equal(t, "stored", resp)

	posted := srv.Submissions()
	require.Len(t, posted, 1)
	assert.Equal(t, "Titre", posted[0]["title"])
	assert.EqualValues(t, 4, posted[0]["gcp_rating"])

	reviews, err := app.Reviews.ListByArticle(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "fr", reviews[0].ToLang)
	assert.Equal(t, "stored", reviews[0].Response)
}

func TestSubmit_invalid(t *testing.T) {
	app, srv := setupApp(t)

	_, err := app.Submit(context.Background(), "fr", translation.Submission{ID: 1})
	require.Error(t, err)
	assert.Empty(t, srv.Submissions())
}
