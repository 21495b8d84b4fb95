package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/colonyops/mtdock/internal/core/translation"
	"github.com/colonyops/mtdock/internal/data/db"
)

// Review is a submission as recorded locally after the backend accepted it.
type Review struct {
	ID          int64
	ArticleID   int
	ToLang      string
	Title       string
	Body        string
	Comments    string
	Ratings     map[string]int
	Checksum    string
	Response    string
	SubmittedAt time.Time
}

// ReviewStore records submitted final translations.
type ReviewStore struct {
	db *db.DB
}

// NewReviewStore creates a new SQLite-backed review store.
func NewReviewStore(db *db.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

// Record stores a submission together with the backend's response.
func (s *ReviewStore) Record(ctx context.Context, toLang string, sub translation.Submission, response string) (Review, error) {
	ratings := sub.Ratings
	if ratings == nil {
		ratings = map[string]int{}
	}

	data, err := json.Marshal(ratings)
	if err != nil {
		return Review{}, fmt.Errorf("marshal ratings: %w", err)
	}

	r := Review{
		ArticleID:   sub.ID,
		ToLang:      toLang,
		Title:       sub.Title,
		Body:        sub.Text,
		Comments:    sub.Comments,
		Ratings:     ratings,
		Checksum:    sub.Checksum(),
		Response:    response,
		SubmittedAt: time.Now(),
	}

	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO reviews (article_id, to_lang, title, body, comments, ratings, checksum, response, submitted_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ArticleID, r.ToLang, r.Title, r.Body, r.Comments, string(data), r.Checksum, r.Response, r.SubmittedAt.UnixNano(),
		)
		if err != nil {
			return err
		}
		r.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return Review{}, fmt.Errorf("insert review: %w", err)
	}

	return r, nil
}

// ListByArticle returns the reviews for an article, newest first.
func (s *ReviewStore) ListByArticle(ctx context.Context, articleID int) ([]Review, error) {
	return s.query(ctx, `
		SELECT id, article_id, to_lang, title, body, comments, ratings, checksum, response, submitted_at
		FROM reviews WHERE article_id = ? ORDER BY submitted_at DESC, id DESC`, articleID)
}

// List returns up to limit reviews, newest first. limit <= 0 means all.
func (s *ReviewStore) List(ctx context.Context, limit int) ([]Review, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.query(ctx, `
		SELECT id, article_id, to_lang, title, body, comments, ratings, checksum, response, submitted_at
		FROM reviews ORDER BY submitted_at DESC, id DESC LIMIT ?`, limit)
}

func (s *ReviewStore) query(ctx context.Context, q string, args ...any) ([]Review, error) {
	rows, err := s.db.Conn().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []Review
	for rows.Next() {
		var (
			r           Review
			ratings     string
			submittedAt int64
		)
		if err := rows.Scan(&r.ID, &r.ArticleID, &r.ToLang, &r.Title, &r.Body, &r.Comments,
			&ratings, &r.Checksum, &r.Response, &submittedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		if err := json.Unmarshal([]byte(ratings), &r.Ratings); err != nil {
			return nil, fmt.Errorf("decode ratings for review %d: %w", r.ID, err)
		}
		r.SubmittedAt = time.Unix(0, submittedAt)
		result = append(result, r)
	}

	return result, rows.Err()
}
