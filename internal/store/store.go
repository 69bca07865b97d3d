package store

import (
	"context"
	"errors"
)

// Collection names used by the application.
const (
	Users      = "users"
	PassResets = "pass_resets"
	Readings   = "readings"
	Settings   = "settings"
)

// ErrNotFound is returned by FindOne when no document matches the filter.
var ErrNotFound = errors.New("store: document not found")

// Filter matches documents whose fields equal the given values.
type Filter map[string]any

// Sort orders results by a single RFC3339 timestamp field. Values are
// compared chronologically, not as strings: RFC3339Nano trims trailing
// zeros, so string order diverges from time order within a second.
type Sort struct {
	Field string
	Desc  bool
}

// Store is a collection-scoped document store. Documents are encoded as
// JSON; every created document gets an opaque "_id" field. Implementations
// must treat a nil filter as "match everything".
type Store interface {
	// FindOne decodes the first matching document into out, or ErrNotFound.
	FindOne(ctx context.Context, collection string, filter Filter, sort *Sort, out any) error
	// Find decodes all matching documents into out, which must be a
	// pointer to a slice.
	Find(ctx context.Context, collection string, filter Filter, sort *Sort, out any) error
	// Count returns the number of matching documents.
	Count(ctx context.Context, collection string, filter Filter) (int64, error)
	// Distinct returns the unique values of a string field across matches.
	Distinct(ctx context.Context, collection, field string, filter Filter) ([]string, error)
	// Create stores a new document and returns its generated id.
	Create(ctx context.Context, collection string, doc any) (string, error)
	// UpdateByFilter merges set into every matching document and returns
	// the number of documents updated.
	UpdateByFilter(ctx context.Context, collection string, filter Filter, set map[string]any) (int64, error)
}
