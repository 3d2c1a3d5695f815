// Package sealed encrypts values of another Gateway at rest.
package sealed

import (
	"context"
	"errors"
	"fmt"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/crypto/seal"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/repository"
)

// Reserved keys in the inner gateway.
const (
	SaltKey  = "crafty:seal:salt"
	CheckKey = "crafty:seal:check"
)

const saltLen = 16

var checkPlain = []byte("crafty")

// Gateway seals every value with XChaCha20-Poly1305. The storage key is the AAD,
// so a blob copied under another key fails to open.
type Gateway struct {
	inner repository.Gateway
	key   []byte
}

// New derives the record key from passphrase and the salt kept in inner,
// creating both salt and check value on first use. A wrong passphrase
// returns errs.ErrInvalidPassword.
func New(ctx context.Context, inner repository.Gateway, passphrase string) (*Gateway, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("validation: empty passphrase: %w", errs.ErrInvalid)
	}
	salt, err := inner.Get(ctx, SaltKey)
	fresh := errors.Is(err, errs.ErrNotFound)
	switch {
	case fresh:
		if salt, err = seal.Rand(saltLen); err != nil {
			return nil, err
		}
		if err := inner.Set(ctx, SaltKey, salt); err != nil {
			return nil, fmt.Errorf("store salt: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("load salt: %w", err)
	}

	g := &Gateway{inner: inner, key: seal.DeriveKey([]byte(passphrase), salt)}
	if fresh {
		if err := g.Set(ctx, CheckKey, checkPlain); err != nil {
			return nil, fmt.Errorf("store check: %w", err)
		}
		return g, nil
	}
	if _, err := g.Get(ctx, CheckKey); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return g, nil
		}
		return nil, fmt.Errorf("verify passphrase: %w", errs.ErrInvalidPassword)
	}
	return g, nil
}

// Get opens the sealed value of key.
func (g *Gateway) Get(ctx context.Context, key string) ([]byte, error) {
	blob, err := g.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	pt, err := seal.Open(g.key, []byte(key), blob)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return pt, nil
}

// Set seals value and stores it under key.
func (g *Gateway) Set(ctx context.Context, key string, value []byte) error {
	blob, err := seal.Seal(g.key, []byte(key), value)
	if err != nil {
		return err
	}
	return g.inner.Set(ctx, key, blob)
}

// SetMany seals every entry and delegates to the inner Batcher when it has one.
func (g *Gateway) SetMany(ctx context.Context, entries []repository.Entry) error {
	sealed := make([]repository.Entry, 0, len(entries))
	for _, e := range entries {
		blob, err := seal.Seal(g.key, []byte(e.Key), e.Value)
		if err != nil {
			return err
		}
		sealed = append(sealed, repository.Entry{Key: e.Key, Value: blob})
	}
	if b, ok := g.inner.(repository.Batcher); ok {
		return b.SetMany(ctx, sealed)
	}
	var failed []error
	for _, e := range sealed {
		if err := g.inner.Set(ctx, e.Key, e.Value); err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", e.Key, err))
		}
	}
	return errors.Join(failed...)
}
