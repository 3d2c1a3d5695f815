// Package confirm issues and checks short-lived tokens that authorize a
// permanent delete.
package confirm

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
)

// Kinds of permanently deletable targets.
const (
	KindNote = "note"
	KindItem = "item"
)

// DefaultTTL is how long a confirmation stays valid.
const DefaultTTL = 2 * time.Minute

type claims struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
	// Rev pins the token to one stay of the target in the bin.
	Rev string `json:"rev,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 confirmation tokens.
type Issuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewIssuer constructs an Issuer. A non-positive ttl means DefaultTTL.
func NewIssuer(key []byte, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{key: key, ttl: ttl, now: time.Now}
}

// Issue returns a token bound to profile, kind, target and the bin revision rev.
func (i *Issuer) Issue(profileID, kind, target, rev string) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	c := claims{
		Kind:   kind,
		Target: target,
		Rev:    rev,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profileID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.key)
	return signed, exp, err
}

// Verify checks token against profile, kind and target and returns the bin
// revision it was issued for. Any mismatch, expiry or bad signature yields
// errs.ErrConfirmationRequired.
func (i *Issuer) Verify(token, profileID, kind, target string) (string, error) {
	if token == "" {
		return "", errs.ErrConfirmationRequired
	}
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) { return i.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errs.ErrConfirmationRequired, err)
	}
	if c.Subject != profileID || c.Kind != kind || c.Target != target {
		return "", fmt.Errorf("%w: %w", errs.ErrConfirmationRequired, errors.New("token bound to another target"))
	}
	return c.Rev, nil
}
