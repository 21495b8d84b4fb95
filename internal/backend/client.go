// Package backend is the HTTP client for the translation dashboard API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/colonyops/mtdock/internal/core/logging"
	"github.com/colonyops/mtdock/internal/core/translation"
	"github.com/colonyops/mtdock/pkg/tmpl"
)

const (
	articlePath = "/get-article"
	fifoPath    = "/push-to-fifo"
	statusPath  = "/get-status"
	deletePath  = "/delete-translation"

	// DefaultSubmitPath receives final translations.
	DefaultSubmitPath = "/put-final"

	maxBodyBytes = 8 << 20

	// DefaultArticleCacheSize bounds how many originals a Client keeps.
	DefaultArticleCacheSize = 256
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	SubmitPath string
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
	// ArticleCacheSize bounds the original-article cache. Zero uses
	// DefaultArticleCacheSize, negative disables caching.
	ArticleCacheSize int
}

// Client talks to the dashboard API.
type Client struct {
	http       *http.Client
	baseURL    string
	submitPath string
	articles   *lru.Cache[int, translation.Article]
	log        zerolog.Logger
}

// New creates a Client for the API rooted at opts.BaseURL.
func New(opts Options) (*Client, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	submit := opts.SubmitPath
	if submit == "" {
		submit = DefaultSubmitPath
	}

	c := &Client{
		http:       hc,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		submitPath: submit,
		log:        logging.Component("backend"),
	}

	size := opts.ArticleCacheSize
	if size == 0 {
		size = DefaultArticleCacheSize
	}
	if size > 0 {
		c.articles, err = lru.New[int, translation.Article](size)
		if err != nil {
			return nil, fmt.Errorf("create article cache: %w", err)
		}
	}

	return c, nil
}

// endpointData is what provider endpoint templates are rendered against.
type endpointData struct {
	Position   int
	Direction  string
	FromLang   string
	ToLang     string
	ProviderID int
	Provider   string
}

// CheckEndpoint renders p.Endpoint against placeholder values so template
// errors surface at config validation instead of on the first lookup.
func CheckEndpoint(p translation.Provider) error {
	_, err := tmpl.Render(p.Endpoint, endpointData{
		Position:   1,
		Direction:  translation.Next.String(),
		FromLang:   "en",
		ToLang:     "fr",
		ProviderID: p.BackendID,
		Provider:   p.Name,
	})
	return err
}

// Lookup asks one provider for its candidate relative to req.Position.
// An empty JSON object yields a Candidate with Found == false and a nil error.
func (c *Client) Lookup(ctx context.Context, p translation.Provider, req translation.LookupRequest) (translation.Candidate, error) {
	endpoint, err := tmpl.Render(p.Endpoint, endpointData{
		Position:   req.Position,
		Direction:  req.Direction.String(),
		FromLang:   req.FromLang,
		ToLang:     req.ToLang,
		ProviderID: p.BackendID,
		Provider:   p.Name,
	})
	if err != nil {
		return translation.Candidate{}, fmt.Errorf("render endpoint for %s: %w", p.Name, err)
	}

	body, err := c.do(ctx, http.MethodGet, c.resolve(endpoint), nil, "")
	if err != nil {
		return translation.Candidate{}, err
	}

	return decodeCandidate(body)
}

// GetArticle fetches the original article with the given id. Originals do
// not change, so found articles are served from cache on later calls.
func (c *Client) GetArticle(ctx context.Context, id int) (translation.Article, error) {
	if c.articles != nil {
		if a, ok := c.articles.Get(id); ok {
			return a, nil
		}
	}

	a, err := c.fetchArticle(ctx, id)
	if err != nil {
		return translation.Article{}, err
	}

	if c.articles != nil {
		c.articles.Add(id, a)
	}
	return a, nil
}

func (c *Client) fetchArticle(ctx context.Context, id int) (translation.Article, error) {
	q := url.Values{"id": {strconv.Itoa(id)}}

	body, err := c.do(ctx, http.MethodGet, c.resolve(articlePath+"?"+q.Encode()), nil, "")
	if err != nil {
		return translation.Article{}, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return translation.Article{}, fmt.Errorf("decode article %d: %w: %v", id, ErrMalformed, err)
	}
	if len(raw) == 0 {
		return translation.Article{}, fmt.Errorf("article %d: %w", id, ErrNotFound)
	}

	var w struct {
		ID       *int   `json:"id"`
		Title    string `json:"title"`
		Text     string `json:"text"`
		BodyText string `json:"BodyText"`
	}
	if err := json.Unmarshal(body, &w); err != nil {
		return translation.Article{}, fmt.Errorf("decode article %d: %w: %v", id, ErrMalformed, err)
	}

	a := translation.Article{ID: id, Title: w.Title, Text: w.Text}
	if w.ID != nil {
		a.ID = *w.ID
	}
	if a.Text == "" {
		a.Text = w.BodyText
	}
	return a, nil
}

// PushToFIFO queues an article for (re)translation and returns the API's
// acknowledgement text.
func (c *Client) PushToFIFO(ctx context.Context, id int, fromLang, toLang string) (string, error) {
	q := url.Values{
		"id":        {strconv.Itoa(id)},
		"from_lang": {fromLang},
		"to_lang":   {toLang},
	}

	body, err := c.do(ctx, http.MethodPost, c.resolve(fifoPath+"?"+q.Encode()), nil, "")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// QueueStatus lists queued and finished translation jobs.
func (c *Client) QueueStatus(ctx context.Context) ([]translation.QueueItem, error) {
	body, err := c.do(ctx, http.MethodGet, c.resolve(statusPath), nil, "")
	if err != nil {
		return nil, err
	}

	var items []translation.QueueItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decode queue status: %w: %v", ErrMalformed, err)
	}
	return items, nil
}

// RemoveFromQueue deletes the translations of one article for a language pair.
func (c *Client) RemoveFromQueue(ctx context.Context, id int, fromLang, toLang string) error {
	q := url.Values{
		"id":        {strconv.Itoa(id)},
		"lang_from": {fromLang},
		"lang_to":   {toLang},
	}

	_, err := c.do(ctx, http.MethodDelete, c.resolve(deletePath+"?"+q.Encode()), nil, "")
	return err
}

// SubmitFinal posts a reviewed translation.
func (c *Client) SubmitFinal(ctx context.Context, s translation.Submission) (string, error) {
	if err := s.Validate(); err != nil {
		return "", fmt.Errorf("invalid submission: %w", err)
	}

	payload, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode submission: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, c.resolve(c.submitPath), bytes.NewReader(payload), "application/json")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// resolve joins a relative endpoint onto the base URL; absolute URLs pass through.
func (c *Client) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

func (c *Client) do(ctx context.Context, method, target string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, target, err)
	}

	c.log.Debug().Ctx(ctx).
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method: method,
			URL:    target,
			Code:   resp.StatusCode,
			Body:   truncate(strings.TrimSpace(string(data)), 200),
		}
	}

	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
