// Package repo defines the generic repository interface backing the
// document catalog.
package repo

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no entity matches the given id.
var ErrNotFound = errors.New("repo: not found")

// Repository is a generic persistence interface keyed by ID.
type Repository[T any, ID comparable] interface {
	Get(ctx context.Context, id ID) (T, error)
	List(ctx context.Context, opts ListOpts) ([]T, error)
	// Save upserts the entity by id.
	Save(ctx context.Context, entity T) (T, error)
	Delete(ctx context.Context, id ID) error
	Exists(ctx context.Context, id ID) (bool, error)
}

// ListOpts controls pagination for List operations.
type ListOpts struct {
	Offset int
	Limit  int
}
