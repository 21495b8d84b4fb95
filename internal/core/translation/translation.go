// Package translation defines the domain types shared by the backend client,
// the navigation cursor and the dashboard.
package translation

import (
	"fmt"
	"strings"
)

// Direction is the paging direction relative to the current position.
type Direction string

const (
	Next     Direction = "next"
	Previous Direction = "prev"
)

// ParseDirection accepts the wire values plus the long "previous" spelling.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "next", "n":
		return Next, nil
	case "prev", "previous", "p":
		return Previous, nil
	default:
		return "", fmt.Errorf("unknown direction %q (want next or prev)", s)
	}
}

func (d Direction) String() string { return string(d) }

// Provider describes one translation backend queried during navigation.
type Provider struct {
	// Name is the display and rating key, e.g. "aws".
	Name string
	// BackendID is the providers_id the API uses for this provider.
	BackendID int
	// Precedence orders providers when several return a result. Lower wins.
	Precedence int
	// Endpoint is a text/template rendered against LookupRequest.
	Endpoint string
}

// LookupRequest carries the parameters rendered into a provider endpoint.
type LookupRequest struct {
	Position  int
	Direction Direction
	FromLang  string
	ToLang    string
}

// Candidate is a provider's translation at some position. A zero Candidate
// with Found unset is the "no result in this direction" answer.
type Candidate struct {
	ID       int
	Title    string
	Text     string
	Status   string
	LangTo   string
	LangFrom string
	Found    bool
}

// Body joins title and text the way the dashboard panes display them.
func (c Candidate) Body() string {
	return joinBody(c.Title, c.Text)
}

// Article is an original (source language) article.
type Article struct {
	ID    int
	Title string
	Text  string
}

func (a Article) Body() string {
	return joinBody(a.Title, a.Text)
}

// Markdown renders the article as a markdown document with the title as a
// level one heading.
func (a Article) Markdown() string {
	md := "# " + a.Title
	if a.Text != "" {
		md += "\n\n" + a.Text
	}
	return md
}

// QueueItem is one row of the translation queue status listing.
type QueueItem struct {
	ID       int    `json:"id"`
	Status   string `json:"status"`
	Title    string `json:"title"`
	LangTo   string `json:"lang_to"`
	LangFrom string `json:"lang_from"`
}

func joinBody(title, text string) string {
	if text == "" {
		return title
	}
	return title + "\n\n" + text
}
