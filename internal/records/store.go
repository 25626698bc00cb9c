// Package records provides the namespaced record store: opaque JSON values
// addressed by string keys, with exact-key reads and writes plus
// prefix-scoped scans.
//
// The store itself has no notion of namespace or schema; key construction is
// caller discipline, enforced through the typed builders in keys.go. Writes
// are last-writer-wins with no versioning. Backend failures surface
// immediately; nothing is retried here.
package records

import (
	"context"
	"encoding/json"
)

// Store is the key-value contract shared by the memory, Redis, and Postgres
// backends.
type Store interface {
	// Set overwrites the value under key. Idempotent; the later of two
	// concurrent writes wins by arrival order at the backend.
	Set(ctx context.Context, key string, value json.RawMessage) error

	// Get returns the value stored under key, or sentinel.ErrNotFound when
	// the key was never written. A stored JSON null is a present value, not
	// an absence.
	Get(ctx context.Context, key string) (json.RawMessage, error)

	// Scan returns every value whose key starts with prefix, in unspecified
	// order. No matches yields an empty slice, never an error.
	Scan(ctx context.Context, prefix string) ([]json.RawMessage, error)
}
