package kv

import "context"

// Bucket is a namespace in a KV store whose values all have type T.
// Keys are stored as "<namespace>:<key>".
type Bucket[T any] struct {
	store     KV
	namespace string
}

// Scoped returns the bucket named namespace inside store.
func Scoped[T any](store KV, namespace string) *Bucket[T] {
	return &Bucket[T]{store: store, namespace: namespace}
}

func (b *Bucket[T]) key(k string) string {
	return b.namespace + ":" + k
}

// Get returns the value for k. A missing key yields an error for which
// IsMissing is true.
func (b *Bucket[T]) Get(ctx context.Context, k string) (T, error) {
	var v T
	err := b.store.Get(ctx, b.key(k), &v)
	return v, err
}

// Lookup is Get with the missing case reported as ok=false instead of an error.
func (b *Bucket[T]) Lookup(ctx context.Context, k string) (v T, ok bool, err error) {
	v, err = b.Get(ctx, k)
	switch {
	case IsMissing(err):
		var zero T
		return zero, false, nil
	case err != nil:
		return v, false, err
	}
	return v, true, nil
}

func (b *Bucket[T]) Set(ctx context.Context, k string, value T) error {
	return b.store.Set(ctx, b.key(k), value)
}

func (b *Bucket[T]) Delete(ctx context.Context, k string) error {
	return b.store.Delete(ctx, b.key(k))
}
