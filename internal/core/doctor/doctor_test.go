package doctor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/mtdock/internal/backend"
	"github.com/colonyops/mtdock/internal/core/config"
	"github.com/colonyops/mtdock/internal/core/translation"
	"github.com/colonyops/mtdock/internal/data/db"
)

type fakeBackend struct {
	lookup   map[string]func() (translation.Candidate, error)
	queue    []translation.QueueItem
	queueErr error
}

func (f *fakeBackend) Lookup(_ context.Context, p translation.Provider, _ translation.LookupRequest) (translation.Candidate, error) {
	return f.lookup[p.Name]()
}

func (f *fakeBackend) QueueStatus(context.Context) ([]translation.QueueItem, error) {
	return f.queue, f.queueErr
}

func TestSummary(t *testing.T) {
	results := []Result{
		{Name: "a", Items: []CheckItem{{Status: StatusPass}, {Status: StatusWarn}}},
		{Name: "b", Items: []CheckItem{{Status: StatusFail}, {Status: StatusPass}}},
	}

	passed, warned, failed := Summary(results)
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, warned)
	assert.Equal(t, 1, failed)
}

type staticCheck struct {
	name  string
	delay time.Duration
	items []CheckItem
}

func (c staticCheck) Name() string { return c.name }

func (c staticCheck) Run(context.Context) Result {
	time.Sleep(c.delay)
	return Result{Items: c.items}
}

func TestRunAll_keepsOrder(t *testing.T) {
	results := RunAll(context.Background(), []Check{
		staticCheck{name: "slow", delay: 30 * time.Millisecond, items: []CheckItem{{Status: StatusPass}}},
		staticCheck{name: "fast", items: []CheckItem{{Status: StatusWarn}}},
	})

	require.Len(t, results, 2)
	assert.Equal(t, "slow", results[0].Name, "name falls back to the check's")
	assert.Equal(t, "fast", results[1].Name)
	assert.GreaterOrEqual(t, results[0].Took, 30*time.Millisecond)
}

func TestResult_Worst(t *testing.T) {
	assert.Equal(t, StatusPass, Result{}.Worst())
	assert.Equal(t, StatusWarn, Result{Items: []CheckItem{{Status: StatusPass}, {Status: StatusWarn}}}.Worst())
	assert.Equal(t, StatusFail, Result{Items: []CheckItem{{Status: StatusWarn}, {Status: StatusFail}}}.Worst())
}

func TestBackendCheck(t *testing.T) {
	providers := []translation.Provider{{Name: "aws"}, {Name: "gcp"}, {Name: "azure"}, {Name: "deepl"}}
	api := &fakeBackend{
		lookup: map[string]func() (translation.Candidate, error){
			"aws": func() (translation.Candidate, error) { return translation.Candidate{ID: 3, Found: true}, nil },
			"gcp": func() (translation.Candidate, error) { return translation.Candidate{}, &backend.StatusError{Code: 400} },
			"azure": func() (translation.Candidate, error) {
				return translation.Candidate{}, errors.New("connection refused")
			},
			"deepl": func() (translation.Candidate, error) { return translation.Candidate{}, nil },
		},
		queue: []translation.QueueItem{{ID: 1}, {ID: 2}},
	}

	result := NewBackendCheck(api, providers, "en", "fr", time.Second).Run(context.Background())

	assert.Equal(t, "Backend", result.Name)
	require.Len(t, result.Items, 5)

	assert.Equal(t, CheckItem{Label: "aws", Status: StatusPass, Detail: "first translation #3"}, result.Items[0])
	assert.Equal(t, CheckItem{Label: "gcp", Status: StatusWarn, Detail: "no translations to fr"}, result.Items[1])
	assert.Equal(t, StatusFail, result.Items[2].Status)
	assert.Contains(t, result.Items[2].Detail, "connection refused")
	assert.Equal(t, StatusWarn, result.Items[3].Status)
	assert.Equal(t, CheckItem{Label: "queue", Status: StatusPass, Detail: "2 entries"}, result.Items[4])
}

func TestBackendCheck_queueFailure(t *testing.T) {
	api := &fakeBackend{queueErr: errors.New("boom")}

	result := NewBackendCheck(api, nil, "en", "fr", 0).Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusFail, result.Items[0].Status)
	assert.Equal(t, "boom", result.Items[0].Detail)
}

func TestDatabaseCheck(t *testing.T) {
	dir := t.TempDir()
	database, err := db.Open(dir, db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	result := NewDatabaseCheck(database.Conn(), filepath.Join(dir, db.FileName)).Run(context.Background())

	require.Len(t, result.Items, 3)
	for _, item := range result.Items {
		assert.Equal(t, StatusPass, item.Status, item.Label)
	}
	assert.Equal(t, "version 3", result.Items[2].Detail)
}

func TestDatabaseCheck_closed(t *testing.T) {
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	require.NoError(t, database.Close())

	result := NewDatabaseCheck(database.Conn(), "").Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusFail, result.Items[0].Status)
}

func TestConfigCheck(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.API.Timeout = 0

	result := NewConfigCheck(&cfg, filepath.Join(t.TempDir(), "missing.yaml")).Run(context.Background())

	require.Len(t, result.Items, 3)
	assert.Equal(t, "not found, using defaults", result.Items[0].Detail)
	assert.Equal(t, StatusPass, result.Items[1].Status)
	assert.Equal(t, StatusWarn, result.Items[2].Status)
}

func TestConfigCheck_invalid(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Providers[0].Endpoint = "{{.Broken"

	result := NewConfigCheck(&cfg, "").Run(context.Background())

	require.GreaterOrEqual(t, len(result.Items), 2)
	assert.Equal(t, StatusFail, result.Items[1].Status)
}
