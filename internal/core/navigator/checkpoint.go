package navigator

import (
	"context"

	"github.com/colonyops/mtdock/internal/core/kv"
)

// Checkpoint persists the last position reached per target language.
type Checkpoint interface {
	Save(ctx context.Context, toLang string, pos int) error
	// Load returns ok=false when nothing has been saved for toLang.
	Load(ctx context.Context, toLang string) (pos int, ok bool, err error)
}

// KVCheckpoint stores positions in a KV store under "cursor:<set>.<lang>".
type KVCheckpoint struct {
	store *kv.Bucket[int]
	set   string
}

// NewKVCheckpoint returns a checkpoint for the named cursor set, e.g. "review"
// or "final".
func NewKVCheckpoint(store kv.KV, set string) *KVCheckpoint {
	return &KVCheckpoint{
		store: kv.Scoped[int](store, "cursor"),
		set:   set,
	}
}

func (k *KVCheckpoint) key(toLang string) string {
	return k.set + "." + toLang
}

func (k *KVCheckpoint) Save(ctx context.Context, toLang string, pos int) error {
	return k.store.Set(ctx, k.key(toLang), pos)
}

func (k *KVCheckpoint) Load(ctx context.Context, toLang string) (int, bool, error) {
	return k.store.Lookup(ctx, k.key(toLang))
}

// Reset removes the saved position for toLang.
func (k *KVCheckpoint) Reset(ctx context.Context, toLang string) error {
	return k.store.Delete(ctx, k.key(toLang))
}
