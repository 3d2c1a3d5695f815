// Package limiter throttles failed note-unlock attempts.
package limiter

import (
	"context"
	"time"
)

// Limiter controls unlock attempts and temporary lockouts per subject.
type Limiter interface {
	// Allow reports whether an attempt is currently allowed and optional retry-after.
	Allow(ctx context.Context, subject string) (bool, time.Duration, error)
	// Success resets counters after a correct password.
	Success(ctx context.Context, subject string) error
	// Failure records a failed attempt; may place a temporary block.
	Failure(ctx context.Context, subject string) (bool, time.Duration, error)
}

// Subject names the throttled pair of profile and note.
func Subject(profileID, noteID string) string { return profileID + "/" + noteID }
