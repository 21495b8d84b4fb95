package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/mtdock/internal/backend"
	"github.com/colonyops/mtdock/internal/core/translation"
)

// Backend is the part of the translation API the backend check probes.
type Backend interface {
	Lookup(ctx context.Context, p translation.Provider, req translation.LookupRequest) (translation.Candidate, error)
	QueueStatus(ctx context.Context) ([]translation.QueueItem, error)
}

// BackendCheck asks every provider for its first translation and reads the
// queue status.
type BackendCheck struct {
	api       Backend
	providers []translation.Provider
	fromLang  string
	toLang    string
	timeout   time.Duration
}

// NewBackendCheck creates a new backend check. Each probe is bounded by timeout.
func NewBackendCheck(api Backend, providers []translation.Provider, fromLang, toLang string, timeout time.Duration) *BackendCheck {
	return &BackendCheck{
		api:       api,
		providers: providers,
		fromLang:  fromLang,
		toLang:    toLang,
		timeout:   timeout,
	}
}

func (c *BackendCheck) Name() string {
	return "Backend"
}

func (c *BackendCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	for _, p := range c.providers {
		result.Items = append(result.Items, c.probe(ctx, p))
	}

	qctx, cancel := c.bound(ctx)
	defer cancel()

	items, err := c.api.QueueStatus(qctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "queue",
			Status: StatusFail,
			Detail: err.Error(),
		})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "queue",
			Status: StatusPass,
			Detail: fmt.Sprintf("%d entries", len(items)),
		})
	}

	return result
}

func (c *BackendCheck) probe(ctx context.Context, p translation.Provider) CheckItem {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	cand, err := c.api.Lookup(ctx, p, translation.LookupRequest{
		Position:  0,
		Direction: translation.Next,
		FromLang:  c.fromLang,
		ToLang:    c.toLang,
	})

	item := CheckItem{Label: p.Name}
	switch {
	case backend.IsNoMore(err):
		item.Status = StatusWarn
		item.Detail = fmt.Sprintf("no translations to %s", c.toLang)
	case err != nil:
		item.Status = StatusFail
		item.Detail = err.Error()
	case !cand.Found:
		item.Status = StatusWarn
		item.Detail = "empty response"
	default:
		item.Status = StatusPass
		item.Detail = fmt.Sprintf("first translation #%d", cand.ID)
	}
	return item
}

func (c *BackendCheck) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}
