// Package dao defines the generic persistence contract used for definitions,
// snapshots, runs and run logs, together with its backends (memory, fs,
// badger, postgres).
package dao

import (
	"context"
)

type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}

// Attributed entities expose filterable attributes matched by List
// parameters.
type Attributed interface {
	Attributes() map[string]interface{}
}
