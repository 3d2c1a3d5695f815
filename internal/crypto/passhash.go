// Package crypto implements password hashing for note locks.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/argon2"
)

// Params are Argon2id cost parameters.
type Params struct {
	Time    uint32 // iterations
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

// DefaultParams are tuned for interactive unlocks.
var DefaultParams = Params{Time: 3, Memory: 64 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

// Hasher hashes and verifies note passwords.
type Hasher struct{ p Params }

// NewHasher constructs a Hasher; zero fields fall back to DefaultParams.
func NewHasher(p Params) *Hasher {
	if p.Time == 0 {
		p.Time = DefaultParams.Time
	}
	if p.Memory == 0 {
		p.Memory = DefaultParams.Memory
	}
	if p.Threads == 0 {
		p.Threads = DefaultParams.Threads
	}
	if p.KeyLen == 0 {
		p.KeyLen = DefaultParams.KeyLen
	}
	if p.SaltLen <= 0 {
		p.SaltLen = DefaultParams.SaltLen
	}
	return &Hasher{p: p}
}

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// Hash derives a hash of password under a fresh random salt.
func (h *Hasher) Hash(password string) (hash, salt []byte, err error) {
	if password == "" {
		return nil, nil, errors.New("empty password")
	}
	salt, err = RandBytes(h.p.SaltLen)
	if err != nil {
		return nil, nil, err
	}
	return h.derive(password, salt), salt, nil
}

// Verify reports whether password matches the expected hash under salt.
func (h *Hasher) Verify(password string, salt, expected []byte) bool {
	if len(expected) == 0 {
		return false
	}
	got := h.derive(password, salt)
	return subtle.ConstantTimeCompare(got, expected) == 1
}

func (h *Hasher) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, h.p.Time, h.p.Memory, h.p.Threads, h.p.KeyLen)
}
