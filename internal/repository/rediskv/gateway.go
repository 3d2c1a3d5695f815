// Package rediskv provides a Gateway backed by Redis string keys.
package rediskv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/repository"
)

// Gateway stores each key as a Redis string without TTL.
type Gateway struct {
	client redis.Cmdable
	closer func() error
}

// Connect parses a redis:// URL, pings the server and returns a Gateway.
func Connect(ctx context.Context, url string) (*Gateway, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Gateway{client: client, closer: client.Close}, nil
}

// New wraps an existing client.
func New(client redis.Cmdable) *Gateway { return &Gateway{client: client} }

// Get returns the value of key.
func (g *Gateway) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := g.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Set stores value under key.
func (g *Gateway) Set(ctx context.Context, key string, value []byte) error {
	return g.client.Set(ctx, key, string(value), 0).Err()
}

// SetMany writes all entries inside MULTI/EXEC.
func (g *Gateway) SetMany(ctx context.Context, entries []repository.Entry) error {
	_, err := g.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, e := range entries {
			p.Set(ctx, e.Key, string(e.Value), 0)
		}
		return nil
	})
	return err
}

// Close releases the connection when the Gateway owns it.
func (g *Gateway) Close() error {
	if g.closer == nil {
		return nil
	}
	return g.closer()
}
