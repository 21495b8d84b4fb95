package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store for testing.
type memStore struct {
	items   []Notification
	nextID  int64
	saveErr error
}

func (m *memStore) Save(_ context.Context, n Notification) (int64, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	m.nextID++
	n.ID = m.nextID
	m.items = append(m.items, n)
	return n.ID, nil
}

func (m *memStore) List(_ context.Context, q Query) ([]Notification, error) {
	var out []Notification
	for i := len(m.items) - 1; i >= 0; i-- {
		if q.Match(m.items[i]) {
			out = append(out, m.items[i])
		}
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *memStore) Clear(_ context.Context) error {
	m.items = nil
	return nil
}

func TestBus_Publish_dispatches_in_subscription_order(t *testing.T) {
	bus := NewBus(&memStore{})

	var received []string
	bus.Subscribe(func(n Notification) { received = append(received, "a:"+n.Message) })
	bus.Subscribe(func(n Notification) { received = append(received, "b:"+n.Message) })

	bus.Errorf("test error: %d", 42)
	bus.Warnf("No more articles")

	assert.Equal(t, []string{
		"a:test error: 42", "b:test error: 42",
		"a:No more articles", "b:No more articles",
	}, received)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)

	var count int
	unsubscribe := bus.Subscribe(func(Notification) { count++ })

	bus.Infof("one")
	unsubscribe()
	bus.Infof("two")

	assert.Equal(t, 1, count)
}

func TestBus_Publish_assigns_id_and_timestamp(t *testing.T) {
	bus := NewBus(&memStore{})

	var got Notification
	bus.Subscribe(func(n Notification) { got = n })

	bus.Infof("hello")

	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, LevelInfo, got.Level)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestBus_Publish_store_failure_still_dispatches(t *testing.T) {
	bus := NewBus(&memStore{saveErr: errors.New("disk full")})

	var got []Notification
	bus.Subscribe(func(n Notification) { got = append(got, n) })

	bus.Warnf("x")

	require.Len(t, got, 1)
	assert.Zero(t, got[0].ID)
}

func TestBus_History_and_Clear(t *testing.T) {
	ctx := context.Background()
	bus := NewBus(&memStore{})

	bus.Infof("first")
	bus.Warnf("second")
	bus.Errorf("third")
	bus.Infof("fourth")

	history, err := bus.History(ctx, Query{Limit: 2})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "fourth", history[0].Message)

	history, err = bus.History(ctx, Query{MinLevel: LevelWarning})
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "third", history[0].Message)
	assert.Equal(t, "second", history[1].Message)

	require.NoError(t, bus.Clear(ctx))
	history, err = bus.History(ctx, Query{})
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestBus_nil_store(t *testing.T) {
	ctx := context.Background()
	bus := NewBus(nil)

	var count int
	bus.Subscribe(func(Notification) { count++ })
	bus.Errorf("x")

	assert.Equal(t, 1, count)

	history, err := bus.History(ctx, Query{})
	require.NoError(t, err)
	assert.Nil(t, history)
	assert.NoError(t, bus.Clear(ctx))
}

func TestQuery_Match(t *testing.T) {
	now := time.Now()
	n := Notification{Level: LevelWarning, CreatedAt: now}

	assert.True(t, Query{}.Match(n))
	assert.True(t, Query{MinLevel: LevelInfo}.Match(n))
	assert.True(t, Query{MinLevel: LevelWarning}.Match(n))
	assert.False(t, Query{MinLevel: LevelError}.Match(n))
	assert.True(t, Query{Since: now.Add(-time.Second)}.Match(n))
	assert.False(t, Query{Since: now.Add(time.Second)}.Match(n))
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"info": LevelInfo, "warn": LevelWarning, "warning": LevelWarning, "error": LevelError} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseLevel("debug")
	assert.Error(t, err)
}

func TestLevel_AtLeast(t *testing.T) {
	assert.Equal(t, []Level{LevelWarning, LevelError}, LevelWarning.AtLeast())
	assert.Equal(t, []Level{LevelInfo, LevelWarning, LevelError}, Level("").AtLeast())
}
