package notify

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/colonyops/mtdock/internal/core/logging"
)

// Subscriber is a callback invoked when a notification is published.
type Subscriber func(Notification)

// Bus persists notifications and then hands them to subscribers on the
// publishing goroutine. A subscriber feeding a UI loop must not block.
//
// The navigator's Notifier interface is satisfied by *Bus, so CLI commands
// pass the app bus straight to the cursor and every "No more articles"
// lands in the history.
type Bus struct {
	store Store

	mu     sync.Mutex
	subs   map[int]Subscriber
	nextID int
}

// NewBus creates a bus. A nil store dispatches without persisting.
func NewBus(store Store) *Bus {
	return &Bus{store: store, subs: make(map[int]Subscriber)}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn Subscriber) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish stamps, persists and dispatches n. A failed save is logged and
// the notification is still dispatched, without an ID.
func (b *Bus) Publish(n Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	if b.store != nil {
		id, err := b.store.Save(context.Background(), n)
		if err != nil {
			logging.Component("notify").Error().Err(err).
				Str("level", string(n.Level)).
				Str("message", n.Message).
				Msg("failed to persist notification")
		} else {
			n.ID = id
		}
	}

	b.mu.Lock()
	subs := make([]Subscriber, 0, len(b.subs))
	for _, id := range slices.Sorted(maps.Keys(b.subs)) {
		subs = append(subs, b.subs[id])
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
}

func (b *Bus) Errorf(format string, args ...any) {
	b.Publish(Notification{Level: LevelError, Message: fmt.Sprintf(format, args...)})
}

func (b *Bus) Warnf(format string, args ...any) {
	b.Publish(Notification{Level: LevelWarning, Message: fmt.Sprintf(format, args...)})
}

func (b *Bus) Infof(format string, args ...any) {
	b.Publish(Notification{Level: LevelInfo, Message: fmt.Sprintf(format, args...)})
}

// History returns persisted notifications matching q, newest first.
// Returns nil if no store is configured.
func (b *Bus) History(ctx context.Context, q Query) ([]Notification, error) {
	if b.store == nil {
		return nil, nil
	}
	return b.store.List(ctx, q)
}

// Clear deletes all persisted notifications.
func (b *Bus) Clear(ctx context.Context) error {
	if b.store == nil {
		return nil
	}
	return b.store.Clear(ctx)
}
