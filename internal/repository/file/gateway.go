// Package file provides a Gateway that keeps each key in its own file.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
)

// Gateway stores values as files under a directory.
type Gateway struct {
	dir string
	mu  sync.RWMutex
}

// New creates dir when missing and returns a Gateway rooted at it.
func New(dir string) (*Gateway, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Gateway{dir: dir}, nil
}

func (g *Gateway) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("bad key %q: %w", key, errs.ErrInvalid)
	}
	return filepath.Join(g.dir, strings.ReplaceAll(key, ":", ".")+".json"), nil
}

// Get reads the file of key.
func (g *Gateway) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := g.path(key)
	if err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.ErrNotFound
	}
	return b, err
}

// Set replaces the file of key. The write goes through a temp file and a rename.
func (g *Gateway) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := g.path(key)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	tmp, err := os.CreateTemp(g.dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}
