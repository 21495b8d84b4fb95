package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/mtdock/internal/core/translation"
)

func TestReviewStore(t *testing.T) {
	ctx := context.Background()

	t.Run("record and list by article", func(t *testing.T) {
		store := NewReviewStore(openTestDB(t))

		sub := translation.Submission{
			ID:       7,
			Title:    "Titre",
			Text:     "Corps",
			Comments: "ok",
			Ratings:  map[string]int{"aws": 4, "gcp": 2},
		}

		rec, err := store.Record(ctx, "fr", sub, "stored")
		require.NoError(t, err)
		assert.Positive(t, rec.ID)
		assert.Equal(t, sub.Checksum(), rec.Checksum)

		_, err = store.Record(ctx, "fr", translation.Submission{ID: 8, Title: "Other"}, "stored")
		require.NoError(t, err)

		got, err := store.ListByArticle(ctx, 7)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Titre", got[0].Title)
		assert.Equal(t, "Corps", got[0].Body)
		assert.Equal(t, "fr", got[0].ToLang)
		assert.Equal(t, map[string]int{"aws": 4, "gcp": 2}, got[0].Ratings)
		assert.Equal(t, "stored", got[0].Response)
	})

	t.Run("list with limit", func(t *testing.T) {
		store := NewReviewStore(openTestDB(t))

		for i := 1; i <= 3; i++ {
			_, err := store.Record(ctx, "de", translation.Submission{ID: i, Title: "t"}, "")
			require.NoError(t, err)
		}

		got, err := store.List(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, got, 2)

		all, err := store.List(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, all, 3)
		assert.Empty(t, all[0].Ratings)
	})
}
