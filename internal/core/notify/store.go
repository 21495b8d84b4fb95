// Package notify defines user-facing notifications, the bus that fans them
// out to the dashboard and the contract for persisting them.
package notify

import (
	"context"
	"fmt"
	"time"
)

// Level represents the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Rank orders levels by severity; unknown levels rank below info.
func (l Level) Rank() int {
	switch l {
	case LevelInfo:
		return 1
	case LevelWarning:
		return 2
	case LevelError:
		return 3
	default:
		return 0
	}
}

// AtLeast returns the known levels with rank >= l's, least severe first.
func (l Level) AtLeast() []Level {
	var out []Level
	for _, lv := range []Level{LevelInfo, LevelWarning, LevelError} {
		if lv.Rank() >= l.Rank() {
			out = append(out, lv)
		}
	}
	return out
}

// ParseLevel accepts info, warn/warning and error.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	default:
		return "", fmt.Errorf("unknown level %q (want info, warning or error)", s)
	}
}

type Notification struct {
	ID        int64     `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Query selects notifications from a Store. The zero Query matches everything.
type Query struct {
	// Limit caps the result; <= 0 means no cap.
	Limit int
	// MinLevel drops notifications less severe than it.
	MinLevel Level
	// Since drops notifications created before it.
	Since time.Time
}

// Match reports whether n passes the level and time filters.
func (q Query) Match(n Notification) bool {
	if q.MinLevel != "" && n.Level.Rank() < q.MinLevel.Rank() {
		return false
	}
	if !q.Since.IsZero() && n.CreatedAt.Before(q.Since) {
		return false
	}
	return true
}

// Store persists notifications to durable storage.
type Store interface {
	Save(ctx context.Context, n Notification) (int64, error)
	// List returns the notifications matching q, newest first.
	List(ctx context.Context, q Query) ([]Notification, error)
	Clear(ctx context.Context) error
}
