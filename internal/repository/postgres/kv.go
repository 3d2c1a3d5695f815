package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/repository"
)

// KV implements repository.Gateway on the kv_state table.
type KV struct{ db *DB }

// NewKV constructs a Postgres gateway.
func NewKV(db *DB) *KV { return &KV{db: db} }

const upsertKV = `
INSERT INTO kv_state (key, value, ver, updated_at)
VALUES ($1, $2, 1, now())
ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, ver=kv_state.ver+1, updated_at=now()`

// Get selects the value of key.
func (r *KV) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT value FROM kv_state WHERE key=$1`
	var v []byte
	if err := r.db.Pool.QueryRow(ctx, q, key).Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// Set upserts value under key.
func (r *KV) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.Pool.Exec(ctx, upsertKV, key, value)
	return err
}

// SetMany upserts all entries in one transaction.
func (r *KV) SetMany(ctx context.Context, entries []repository.Entry) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	for _, e := range entries {
		if _, err = tx.Exec(ctx, upsertKV, e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}
