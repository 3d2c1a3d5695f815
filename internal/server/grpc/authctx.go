package grpcserver

import (
	"context"

	"github.com/gofrs/uuid/v5"
)

type profileKey struct{}

// WithProfileID returns ctx carrying the profile resolved from the session token.
func WithProfileID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, profileKey{}, id)
}

// ProfileIDFromCtx returns the profile AuthUnary stored. The nil id counts as absent.
func ProfileIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(profileKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
