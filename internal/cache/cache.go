// Package cache keeps short-lived derived answers, such as drink recommendations,
// out of the hot path.
package cache

import "context"

// Cache is an expiring key/value store for values of type T.
// A miss is (zero, false, nil).
type Cache[T any] interface {
	Get(ctx context.Context, key string) (T, bool, error)
	Set(ctx context.Context, key string, value T) error
}

// Noop never stores anything.
type Noop[T any] struct{}

func (Noop[T]) Get(context.Context, string) (T, bool, error) {
	var zero T
	return zero, false, nil
}

func (Noop[T]) Set(context.Context, string, T) error {
	return nil
}
