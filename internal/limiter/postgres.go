package limiter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PG keeps unlock counters in the unlock_limiter table, so lockouts survive
// restarts and hold across daemons sharing the database.
type PG struct {
	q        pgxQuerier
	window   time.Duration
	maxFails int
	blockFor time.Duration
	now      func() time.Time
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	allowSQL = `SELECT blocked_until FROM unlock_limiter WHERE subject = $1`

	resetSQL = `
INSERT INTO unlock_limiter (subject, fail_count, blocked_until, updated_at)
VALUES ($1, 0, 'epoch', $2)
ON CONFLICT (subject) DO UPDATE
SET fail_count = 0, blocked_until = 'epoch', updated_at = $2`

	// The counter restarts when the previous failure is older than $3;
	// blocked_until is stamped in the same statement once it reaches $4.
	failSQL = `
INSERT INTO unlock_limiter AS l (subject, fail_count, blocked_until, updated_at)
VALUES ($1, 1, CASE WHEN $4 <= 1 THEN $5 ELSE 'epoch'::timestamptz END, $2)
ON CONFLICT (subject) DO UPDATE
SET fail_count = CASE WHEN $2 - l.updated_at > $3::interval THEN 1 ELSE l.fail_count + 1 END,
    blocked_until = CASE
        WHEN (CASE WHEN $2 - l.updated_at > $3::interval THEN 1 ELSE l.fail_count + 1 END) >= $4 THEN $5
        ELSE l.blocked_until END,
    updated_at = $2
RETURNING fail_count`
)

// NewPG constructs a PostgreSQL-backed limiter. *pgxpool.Pool satisfies q.
func NewPG(q pgxQuerier, window time.Duration, maxFails int, blockFor time.Duration) *PG {
	return &PG{q: q, window: window, maxFails: maxFails, blockFor: blockFor, now: time.Now}
}

// Allow reports whether subject may try a password now, and how long to wait if not.
func (l *PG) Allow(ctx context.Context, subject string) (bool, time.Duration, error) {
	var blockedUntil time.Time
	err := l.q.QueryRow(ctx, allowSQL, subject).Scan(&blockedUntil)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return true, 0, nil
	case err != nil:
		return false, 0, err
	}
	if d := blockedUntil.Sub(l.now()); d > 0 {
		return false, d, nil
	}
	return true, 0, nil
}

// Success clears the counter and any block of subject.
func (l *PG) Success(ctx context.Context, subject string) error {
	_, err := l.q.Exec(ctx, resetSQL, subject, l.now())
	return err
}

// Failure counts one wrong password and reports whether subject is now blocked.
func (l *PG) Failure(ctx context.Context, subject string) (bool, time.Duration, error) {
	now := l.now()
	var fails int
	err := l.q.QueryRow(ctx, failSQL, subject, now, l.window, l.maxFails, now.Add(l.blockFor)).Scan(&fails)
	if err != nil {
		return false, 0, err
	}
	if fails < l.maxFails {
		return false, 0, nil
	}
	return true, l.blockFor, nil
}
