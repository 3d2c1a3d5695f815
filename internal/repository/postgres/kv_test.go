package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/repository"
)

var (
	_ repository.Gateway = (*KV)(nil)
	_ repository.Batcher = (*KV)(nil)
)

const upsertRe = `INSERT INTO kv_state \(key, value, ver, updated_at\)`

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func TestKV_Get(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewKV(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT value FROM kv_state WHERE key=\$1`).
		WithArgs("crafty:a:notes").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow([]byte(`[]`)))
	v, err := r.Get(ctx, "crafty:a:notes")
	require.NoError(t, err)
	require.Equal(t, `[]`, string(v))

	mock.ExpectQuery(`SELECT value FROM kv_state WHERE key=\$1`).
		WithArgs("crafty:a:bin").
		WillReturnError(pgx.ErrNoRows)
	_, err = r.Get(ctx, "crafty:a:bin")
	require.ErrorIs(t, err, errs.ErrNotFound)

	mock.ExpectQuery(`SELECT value FROM kv_state WHERE key=\$1`).
		WithArgs("crafty:a:bin").
		WillReturnError(errors.New("conn reset"))
	_, err = r.Get(ctx, "crafty:a:bin")
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestKV_Set(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewKV(db)

	mock.ExpectExec(upsertRe).
		WithArgs("k", []byte("v")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Set(context.Background(), "k", []byte("v")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestKV_SetMany_Commit(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewKV(db)

	mock.ExpectBegin()
	mock.ExpectExec(upsertRe).WithArgs("k1", []byte("a")).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(upsertRe).WithArgs("k2", []byte("b")).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := r.SetMany(context.Background(), []repository.Entry{{Key: "k1", Value: []byte("a")}, {Key: "k2", Value: []byte("b")}})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestKV_SetMany_RollbackOnError(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewKV(db)

	mock.ExpectBegin()
	mock.ExpectExec(upsertRe).WithArgs("k1", []byte("a")).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := r.SetMany(context.Background(), []repository.Entry{{Key: "k1", Value: []byte("a")}, {Key: "k2", Value: []byte("b")}})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
