package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awharton/catwatch/internal/catalog"
	"github.com/awharton/catwatch/internal/store"
	domain "github.com/awharton/catwatch/pkg/types"
)

// newTx opens a transaction against a fresh in-memory store.
func newTx(t *testing.T) (context.Context, store.Tx) {
	t.Helper()

	ctx := context.Background()
	tx, err := store.NewMemoryStore().Begin(ctx)
	require.NoError(t, err)
	return ctx, tx
}

func TestGetOrCreate_CreatesThenFinds(t *testing.T) {
	t.Parallel()

	ctx, tx := newTx(t)

	find := func(ctx context.Context) (*domain.List, error) {
		return tx.GetListByName(ctx, "deals")
	}
	fresh := func() *domain.List { return &domain.List{Name: "deals"} }

	first, created, err := catalog.GetOrCreate(ctx, "list", find, fresh, tx.InsertList)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, first.ID)

	second, created, err := catalog.GetOrCreate(ctx, "list", find, fresh, tx.InsertList)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestGetOrCreate_FindError(t *testing.T) {
	t.Parallel()

	ctx, _ := newTx(t)
	boom := errors.New("boom")

	_, _, err := catalog.GetOrCreate(ctx, "list",
		func(context.Context) (*domain.List, error) { return nil, boom },
		func() *domain.List { return &domain.List{} },
		func(context.Context, *domain.List) error { return nil },
	)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "finding list")
}

func TestGetOrCreate_InsertError(t *testing.T) {
	t.Parallel()

	ctx, tx := newTx(t)

	require.NoError(t, tx.InsertList(ctx, &domain.List{Name: "taken"}))

	// find misses, insert collides with the uniqueness constraint.
	_, _, err := catalog.GetOrCreate(ctx, "list",
		func(context.Context) (*domain.List, error) { return nil, nil },
		func() *domain.List { return &domain.List{Name: "taken"} },
		tx.InsertList,
	)
	require.ErrorIs(t, err, store.ErrConflict)
	assert.Contains(t, err.Error(), "creating list")
}
