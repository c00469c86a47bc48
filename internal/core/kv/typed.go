package kv

import (
	"context"
	"database/sql"
	"errors"
)

// Typed provides type-safe access to a single key of a KV store.
type Typed[T any] struct {
	store KV
	key   string
}

// NewTyped returns a Typed[T] bound to key.
func NewTyped[T any](store KV, key string) *Typed[T] {
	return &Typed[T]{store: store, key: key}
}

// Key returns the underlying store key.
func (t *Typed[T]) Key() string {
	return t.key
}

// Get retrieves the value. A missing key reports false with a nil error.
func (t *Typed[T]) Get(ctx context.Context) (T, bool, error) {
	var v T
	err := t.store.Get(ctx, t.key, &v)
	if errors.Is(err, sql.ErrNoRows) {
		return v, false, nil
	}
	if err != nil {
		return v, false, err
	}
	return v, true, nil
}

// Set stores the value.
func (t *Typed[T]) Set(ctx context.Context, value T) error {
	return t.store.Set(ctx, t.key, value)
}

// Delete removes the value.
func (t *Typed[T]) Delete(ctx context.Context) error {
	return t.store.Delete(ctx, t.key)
}
