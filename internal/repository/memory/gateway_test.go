package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sachu255/CRAFTY-notes--sub000/internal/errs"
	"github.com/sachu255/CRAFTY-notes--sub000/internal/repository"
)

var _ repository.Gateway = (*Gateway)(nil)

func TestGateway_GetSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	g := New()

	_, err := g.Get(ctx, "k")
	require.ErrorIs(t, err, errs.ErrNotFound)

	v := []byte(`{"a":1}`)
	require.NoError(t, g.Set(ctx, "k", v))
	v[0] = 'X'

	got, err := g.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, string(got))

	got[0] = 'Y'
	again, _ := g.Get(ctx, "k")
	require.Equal(t, `{"a":1}`, string(again))

	require.NoError(t, g.Set(ctx, "k", []byte(`2`)))
	got, _ = g.Get(ctx, "k")
	require.Equal(t, "2", string(got))
	require.Equal(t, 1, g.Len())
}
