// Package memory provides an in-process Gateway on go-cache.
package memory

import (
	"context"

	"github.com/patrickmn/go-cache"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
)

// Gateway keeps values in memory for the lifetime of the process.
type Gateway struct {
	cache *cache.Cache
}

// New constructs an empty Gateway. Values never expire.
func New() *Gateway {
	return &Gateway{cache: cache.New(cache.NoExpiration, 0)}
}

// Get returns a copy of the stored value.
func (g *Gateway) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := g.cache.Get(key)
	if !ok {
		return nil, errs.ErrNotFound
	}
	return append([]byte(nil), v.([]byte)...), nil
}

// Set stores a copy of value.
func (g *Gateway) Set(_ context.Context, key string, value []byte) error {
	g.cache.Set(key, append([]byte(nil), value...), cache.NoExpiration)
	return nil
}

// Len reports the number of stored keys.
func (g *Gateway) Len() int { return g.cache.ItemCount() }
