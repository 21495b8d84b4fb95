package backend

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/colonyops/mtdock/internal/core/translation"
)

// candidateWire covers both lookup shapes: get-first nests the translation
// under text as {title, text}; get-translation returns title and text flat.
type candidateWire struct {
	ID       *int            `json:"id"`
	Title    string          `json:"title"`
	Text     json.RawMessage `json:"text"`
	Status   string          `json:"status"`
	LangTo   string          `json:"lang_to"`
	LangFrom string          `json:"lang_from"`
}

func decodeCandidate(body []byte) (translation.Candidate, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return translation.Candidate{}, fmt.Errorf("decode candidate: %w: %v", ErrMalformed, err)
	}
	if len(raw) == 0 {
		return translation.Candidate{}, nil
	}

	var w candidateWire
	if err := json.Unmarshal(body, &w); err != nil {
		return translation.Candidate{}, fmt.Errorf("decode candidate: %w: %v", ErrMalformed, err)
	}
	if w.ID == nil {
		return translation.Candidate{}, fmt.Errorf("decode candidate: %w: missing id", ErrMalformed)
	}

	c := translation.Candidate{
		ID:       *w.ID,
		Title:    w.Title,
		Status:   w.Status,
		LangTo:   w.LangTo,
		LangFrom: w.LangFrom,
		Found:    true,
	}

	text := bytes.TrimSpace(w.Text)
	switch {
	case len(text) == 0:
	case text[0] == '{':
		var nested struct {
			Title string `json:"title"`
			Text  string `json:"text"`
		}
		if err := json.Unmarshal(text, &nested); err != nil {
			return translation.Candidate{}, fmt.Errorf("decode candidate text: %w: %v", ErrMalformed, err)
		}
		if nested.Title != "" {
			c.Title = nested.Title
		}
		c.Text = nested.Text
	default:
		if err := json.Unmarshal(text, &c.Text); err != nil {
			return translation.Candidate{}, fmt.Errorf("decode candidate text: %w: %v", ErrMalformed, err)
		}
	}

	return c, nil
}
