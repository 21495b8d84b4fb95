package translation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// MaxRating is the top of the 0..5 rating scale. Zero means unrated.
const MaxRating = 5

// Submission is a reviewer's final translation for one article.
type Submission struct {
	ID       int
	Title    string
	Text     string
	Comments string
	// Ratings maps provider name to a 0..5 score.
	Ratings map[string]int
}

// SplitTitleText splits an edited translation into title and body. The first
// line is the title; the remaining non-blank lines form the body.
func SplitTitleText(s string) (title, text string) {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return "", ""
	}

	title = strings.TrimSpace(lines[0])

	body := make([]string, 0, len(lines)-1)
	for _, l := range lines[1:] {
		if strings.TrimSpace(l) == "" {
			continue
		}
		body = append(body, l)
	}

	return title, strings.Join(body, "\n")
}

// Validate checks the submission can be sent.
func (s Submission) Validate() error {
	if s.ID < 0 {
		return fmt.Errorf("id must be non-negative, got %d", s.ID)
	}
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("title is required")
	}
	for name, r := range s.Ratings {
		if r < 0 || r > MaxRating {
			return fmt.Errorf("rating for %s must be between 0 and %d, got %d", name, MaxRating, r)
		}
	}
	return nil
}

// Checksum is the hex SHA-256 of the canonical JSON of id, title and text.
func (s Submission) Checksum() string {
	canonical, _ := json.Marshal(struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
		Text  string `json:"text"`
	}{s.ID, s.Title, s.Text})

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

// MarshalJSON renders the put-final wire payload: ratings are flattened into
// "<provider>_rating" keys.
func (s Submission) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"id":       s.ID,
		"title":    s.Title,
		"text":     s.Text,
		"comments": s.Comments,
		"checksum": s.Checksum(),
	}

	for name, r := range s.Ratings {
		out[strings.ToLower(name)+"_rating"] = r
	}

	return json.Marshal(out)
}
