// Package mtdock wires configuration, storage and the backend client into
// the services the CLI and the dashboard consume.
package mtdock

import (
	"context"
	"fmt"

	"github.com/colonyops/mtdock/internal/backend"
	"github.com/colonyops/mtdock/internal/core/config"
	"github.com/colonyops/mtdock/internal/core/navigator"
	"github.com/colonyops/mtdock/internal/core/notify"
	"github.com/colonyops/mtdock/internal/core/translation"
	"github.com/colonyops/mtdock/internal/data/db"
	"github.com/colonyops/mtdock/internal/data/stores"
)

// Cursor sets. Each set keeps its own checkpoint per target language.
const (
	SetReview = "review"
	SetFinal  = "final"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// App is the central entry point for all mtdock operations.
// Commands and the TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Config  *config.Config
	DB      *db.DB
	Backend *backend.Client
	Bus     *notify.Bus
	Reviews *stores.ReviewStore
	KV      *stores.KVStore
	Build   BuildInfo
}

// NewApp constructs an App from explicit dependencies.
func NewApp(cfg *config.Config, database *db.DB, client *backend.Client, build BuildInfo) *App {
	return &App{
		Config:  cfg,
		DB:      database,
		Backend: client,
		Bus:     notify.NewBus(stores.NewNotifyStore(database)),
		Reviews: stores.NewReviewStore(database),
		KV:      stores.NewKVStore(database),
		Build:   build,
	}
}

// Open opens the database and the backend client described by cfg.
func Open(cfg *config.Config, build BuildInfo) (*App, error) {
	client, err := backend.New(backend.Options{
		BaseURL:    cfg.API.BaseURL,
		SubmitPath: cfg.API.SubmitPath,
		Timeout:    cfg.API.Timeout.Std(),

		ArticleCacheSize: cfg.API.ArticleCache,
	})
	if err != nil {
		return nil, fmt.Errorf("create backend client: %w", err)
	}

	database, err := db.Open(cfg.DataDir, db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return NewApp(cfg, database, client, build), nil
}

// Close releases the database.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// CursorOptions selects which cursor NewCursor builds.
type CursorOptions struct {
	// Set is SetReview or SetFinal.
	Set string
	// ToLang overrides the configured target language.
	ToLang string
	// Notifier receives "no more articles" warnings. Nil leaves them to the
	// caller, which inspects Outcome.Notified.
	Notifier navigator.Notifier
}

// NewCursor builds a navigation cursor for the review providers or the
// final-translation browser, checkpointed in the KV store.
func (a *App) NewCursor(opts CursorOptions) (*navigator.Cursor, error) {
	var providers []translation.Provider
	switch opts.Set {
	case SetReview, "":
		opts.Set = SetReview
		providers = a.Config.ProviderSet()
	case SetFinal:
		providers = []translation.Provider{a.Config.Final.Provider()}
	default:
		return nil, fmt.Errorf("unknown cursor set %q", opts.Set)
	}

	to := opts.ToLang
	if to == "" {
		to = a.Config.Languages.To
	}

	return navigator.New(navigator.Config{
		Providers:  providers,
		Lookup:     a.Backend,
		Articles:   a.Backend,
		Notifier:   opts.Notifier,
		Checkpoint: navigator.NewKVCheckpoint(a.KV, opts.Set),
		FromLang:   a.Config.Languages.From,
		ToLang:     to,
	})
}

// Submit posts a final translation and records it locally. A failure to
// record is returned alongside the backend response so callers can warn
// without treating the submission as lost.
func (a *App) Submit(ctx context.Context, toLang string, sub translation.Submission) (string, error) {
	resp, err := a.Backend.SubmitFinal(ctx, sub)
	if err != nil {
		return "", fmt.Errorf("submit #%d: %w", sub.ID, err)
	}

	if _, err := a.Reviews.Record(ctx, toLang, sub, resp); err != nil {
		return resp, fmt.Errorf("record review #%d: %w", sub.ID, err)
	}

	return resp, nil
}
