// Package doctor runs health checks over the configuration, the local
// database and the translation backend.
package doctor

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// CheckItem is one line of a check's report.
type CheckItem struct {
	Label  string `json:"label"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Result groups the items a check produced.
type Result struct {
	Name  string        `json:"name"`
	Items []CheckItem   `json:"items"`
	Took  time.Duration `json:"took_ns"`
}

// Worst returns the most severe status among the items, StatusPass when empty.
func (r Result) Worst() Status {
	worst := StatusPass
	for _, item := range r.Items {
		switch item.Status {
		case StatusFail:
			return StatusFail
		case StatusWarn:
			worst = StatusWarn
		}
	}
	return worst
}

type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// RunAll runs the checks concurrently. Results keep the order of checks.
func RunAll(ctx context.Context, checks []Check) []Result {
	results := make([]Result, len(checks))

	var g errgroup.Group
	for i, check := range checks {
		g.Go(func() error {
			start := time.Now()
			r := check.Run(ctx)
			if r.Name == "" {
				r.Name = check.Name()
			}
			r.Took = time.Since(start)
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Summary counts passed, warned and failed items across all results.
func Summary(results []Result) (passed, warned, failed int) {
	for _, r := range results {
		for _, item := range r.Items {
			switch item.Status {
			case StatusPass:
				passed++
			case StatusWarn:
				warned++
			case StatusFail:
				failed++
			}
		}
	}
	return passed, warned, failed
}
