// Package repository defines the persistence gateway and the typed state store built on it.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/model"
)

// Gateway is a key/value store of opaque JSON blobs.
type Gateway interface {
	// Get returns the value stored under key, or errs.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
}

// Entry is one key/value pair of a batch write.
type Entry struct {
	Key   string
	Value []byte
}

// Batcher is implemented by gateways that write several keys atomically.
// StateStore prefers it over per-key Set when available.
type Batcher interface {
	SetMany(ctx context.Context, entries []Entry) error
}

// StateRepository loads and saves the records of one profile.
type StateRepository interface {
	Load(ctx context.Context, profileID uuid.UUID, name string) (model.AppState, error)
	Save(ctx context.Context, profileID uuid.UUID, st model.AppState, recs Record) error
}
