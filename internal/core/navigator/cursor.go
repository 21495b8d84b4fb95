// Package navigator implements the navigation cursor: a single position into
// the article collection that moves only to ids returned by the configured
// translation providers.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/colonyops/mtdock/internal/backend"
	"github.com/colonyops/mtdock/internal/core/logging"
	"github.com/colonyops/mtdock/internal/core/translation"
)

// NoMoreMessage is the notification shown when navigation cannot move.
const NoMoreMessage = "No more articles"

// ErrBusy is returned when Advance (or another mutating call) is made while a
// navigation is already in flight.
var ErrBusy = errors.New("navigation in progress")

// State is the cursor's lifecycle state.
type State int

const (
	Idle State = iota
	Navigating
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Navigating:
		return "navigating"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Lookup fetches one provider's candidate relative to a position.
type Lookup interface {
	Lookup(ctx context.Context, p translation.Provider, req translation.LookupRequest) (translation.Candidate, error)
}

// ArticleSource fetches the original article for a position.
type ArticleSource interface {
	GetArticle(ctx context.Context, id int) (translation.Article, error)
}

// Notifier surfaces transient user-facing messages.
type Notifier interface {
	Warnf(format string, args ...any)
}

// Config wires a Cursor to its collaborators.
type Config struct {
	Providers []translation.Provider
	Lookup    Lookup
	// Articles is optional; when nil no article is fetched after a move.
	Articles ArticleSource
	// Notifier is optional; when nil notifications are only logged.
	Notifier Notifier
	// Checkpoint is optional; when nil positions are not persisted.
	Checkpoint Checkpoint
	FromLang   string
	ToLang     string
	// Start is the initial position.
	Start int
}

// Cursor owns a navigation position. It is safe for concurrent use; at most
// one Advance runs at a time and concurrent calls fail with ErrBusy.
type Cursor struct {
	providers  []translation.Provider
	lookup     Lookup
	articles   ArticleSource
	notifier   Notifier
	checkpoint Checkpoint
	log        zerolog.Logger

	mu       sync.Mutex
	position int
	state    State
	fromLang string
	toLang   string
}

// New creates a cursor. Providers are ordered by precedence; ties keep their
// configured order.
func New(cfg Config) (*Cursor, error) {
	if cfg.Lookup == nil {
		return nil, errors.New("navigator: lookup is required")
	}
	if len(cfg.Providers) == 0 {
		return nil, errors.New("navigator: at least one provider is required")
	}
	if cfg.Start < 0 {
		return nil, fmt.Errorf("navigator: start position must be non-negative, got %d", cfg.Start)
	}

	providers := slices.Clone(cfg.Providers)
	slices.SortStableFunc(providers, func(a, b translation.Provider) int {
		return a.Precedence - b.Precedence
	})

	return &Cursor{
		providers:  providers,
		lookup:     cfg.Lookup,
		articles:   cfg.Articles,
		notifier:   cfg.Notifier,
		checkpoint: cfg.Checkpoint,
		log:        logging.Component("navigator"),
		position:   cfg.Start,
		fromLang:   cfg.FromLang,
		toLang:     cfg.ToLang,
	}, nil
}

// Position returns the current position.
func (c *Cursor) Position() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// State returns Idle or Navigating.
func (c *Cursor) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Providers returns the providers in precedence order.
func (c *Cursor) Providers() []translation.Provider {
	return slices.Clone(c.providers)
}

// Languages returns the source and target languages used for lookups.
func (c *Cursor) Languages() (from, to string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fromLang, c.toLang
}

// SetTargetLanguage changes the target language for subsequent lookups.
func (c *Cursor) SetTargetLanguage(lang string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Navigating {
		return ErrBusy
	}
	c.toLang = lang
	return nil
}

// Seek moves the cursor to pos without any lookup. It is used to restore a
// known position, never to step through the collection.
func (c *Cursor) Seek(pos int) error {
	if pos < 0 {
		return fmt.Errorf("position must be non-negative, got %d", pos)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Navigating {
		return ErrBusy
	}
	c.position = pos
	return nil
}

// Restore seeks to the checkpointed position for the current target language.
// ok is false when there is no checkpoint or nothing was saved for the
// language; the position is then unchanged.
func (c *Cursor) Restore(ctx context.Context) (pos int, ok bool, err error) {
	if c.checkpoint == nil {
		return c.Position(), false, nil
	}

	_, to := c.Languages()
	saved, ok, err := c.checkpoint.Load(ctx, to)
	if err != nil {
		return c.Position(), false, fmt.Errorf("load checkpoint: %w", err)
	}
	if !ok {
		return c.Position(), false, nil
	}

	if err := c.Seek(saved); err != nil {
		return c.Position(), false, err
	}
	return saved, true, nil
}

// Resume shows the checkpointed article again: it seeks to just before the
// saved position and advances forward, which lands on the saved id when it
// still exists. Without a checkpoint it advances from the current position.
//
// Article ids start at 1; position 0 is the start of the collection, so a
// saved 0 resumes like a fresh cursor.
func (c *Cursor) Resume(ctx context.Context) (Outcome, error) {
	pos, ok, err := c.Restore(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("resume without checkpoint")
	}
	if ok && pos > 0 {
		if err := c.Seek(pos - 1); err != nil {
			return Outcome{}, err
		}
	}
	return c.Advance(ctx, translation.Next)
}

// Advance moves the cursor one step in dir. Every provider is queried
// concurrently and all lookups complete before the outcome is decided. The
// winner is the first provider, in precedence order, with a result. Lookup
// failures count as empty results and are reported in Outcome.Results.
//
// When no provider has a result, or the winner is the current position, the
// position is unchanged and NoMoreMessage is sent to the notifier. A 400 from any provider sends the same message
// even when another provider wins. At most one notification is sent per call.
//
// The returned error is non-nil only for ErrBusy, an invalid direction, or a
// cancelled context; in those cases nothing is mutated.
func (c *Cursor) Advance(ctx context.Context, dir translation.Direction) (Outcome, error) {
	if dir != translation.Next && dir != translation.Previous {
		return Outcome{}, fmt.Errorf("invalid direction %q", dir)
	}

	c.mu.Lock()
	if c.state == Navigating {
		c.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	c.state = Navigating
	req := translation.LookupRequest{
		Position:  c.position,
		Direction: dir,
		FromLang:  c.fromLang,
		ToLang:    c.toLang,
	}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.state = Idle
		c.mu.Unlock()
	}()

	ctx = logging.WithNavID(ctx, uuid.NewString())
	c.log.Debug().Ctx(ctx).
		Int("from", req.Position).
		Str("direction", dir.String()).
		Str("to_lang", req.ToLang).
		Msg("advance")

	out := Outcome{
		Direction: dir,
		From:      req.Position,
		Position:  req.Position,
		Results:   c.fanOut(ctx, req),
	}

	if err := ctx.Err(); err != nil {
		return out, err
	}

	noMore := false
	for i := range out.Results {
		r := &out.Results[i]
		if r.NoMore() {
			noMore = true
		}
		if out.Winner == nil && r.Found() {
			out.Winner = r
		}
	}
	out.Exhausted = out.Winner == nil
	out.Stalled = !out.Exhausted && out.Winner.Candidate.ID == req.Position

	if out.Exhausted || out.Stalled || noMore {
		c.notify(ctx)
		out.Notified = true
	}

	if out.Exhausted || out.Stalled {
		c.log.Debug().Ctx(ctx).
			Int("position", req.Position).
			Bool("stalled", out.Stalled).
			Msg("exhausted")
		return out, nil
	}

	out.Position = out.Winner.Candidate.ID
	c.mu.Lock()
	c.position = out.Position
	c.mu.Unlock()

	c.log.Debug().Ctx(ctx).
		Str("winner", out.Winner.Provider.Name).
		Int("position", out.Position).
		Msg("advanced")

	if c.checkpoint != nil {
		if err := c.checkpoint.Save(ctx, req.ToLang, out.Position); err != nil {
			c.log.Warn().Ctx(ctx).Err(err).Msg("failed to save checkpoint")
		}
	}

	if c.articles != nil {
		out.Article, out.ArticleErr = c.articles.GetArticle(ctx, out.Position)
		if out.ArticleErr != nil {
			c.log.Warn().Ctx(ctx).Err(out.ArticleErr).Int("id", out.Position).Msg("article fetch failed")
		}
	}

	return out, nil
}

// fanOut queries every provider concurrently and waits for all of them. Each
// goroutine writes only its own slot.
func (c *Cursor) fanOut(ctx context.Context, req translation.LookupRequest) []ProviderResult {
	results := make([]ProviderResult, len(c.providers))

	var g errgroup.Group
	for i, p := range c.providers {
		g.Go(func() error {
			pctx := logging.WithProvider(ctx, p.Name)

			cand, err := c.lookup.Lookup(pctx, p, req)
			if err == nil && cand.Found && cand.ID < 1 {
				err = fmt.Errorf("%w: id %d out of range", backend.ErrMalformed, cand.ID)
			}
			if err != nil {
				cand = translation.Candidate{}
				c.log.Debug().Ctx(pctx).Err(err).Msg("lookup failed")
			}

			results[i] = ProviderResult{Provider: p, Candidate: cand, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (c *Cursor) notify(ctx context.Context) {
	c.log.Info().Ctx(ctx).Msg(NoMoreMessage)
	if c.notifier != nil {
		c.notifier.Warnf("%s", NoMoreMessage)
	}
}
