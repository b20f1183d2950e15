package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awharton/catwatch/internal/catalog"
	"github.com/awharton/catwatch/internal/store"
	domain "github.com/awharton/catwatch/pkg/types"
)

func insertListing(t *testing.T, ctx context.Context, tx store.Tx, source domain.Source, sku string) *domain.Listing {
	t.Helper()

	l := &domain.Listing{Source: source, SKU: sku, Title: sku, Price: 10}
	require.NoError(t, tx.InsertListing(ctx, l))
	return l
}

func TestAddToList_CreatesListAndMemberships(t *testing.T) {
	t.Parallel()

	ctx, tx := newTx(t)
	a := insertListing(t, ctx, tx, domain.SourceAmazon, "B001")
	b := insertListing(t, ctx, tx, domain.SourceAmazon, "B002")

	list, err := catalog.AddToList(ctx, tx, []int64{a.ID, b.ID}, "tracked")
	require.NoError(t, err)
	assert.Equal(t, "tracked", list.Name)
	assert.True(t, list.IsAmazon)

	members, err := tx.ListMemberships(ctx, list.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestAddToList_Idempotent(t *testing.T) {
	t.Parallel()

	ctx, tx := newTx(t)
	a := insertListing(t, ctx, tx, domain.SourceVendor, "V-1")

	first, err := catalog.AddToList(ctx, tx, []int64{a.ID}, "tracked")
	require.NoError(t, err)

	second, err := catalog.AddToList(ctx, tx, []int64{a.ID}, "tracked")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	members, err := tx.ListMemberships(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestAddToList_IsAmazonFollowsFirstID(t *testing.T) {
	t.Parallel()

	ctx, tx := newTx(t)
	amz := insertListing(t, ctx, tx, domain.SourceAmazon, "B001")
	vnd := insertListing(t, ctx, tx, domain.SourceVendor, "V-1")

	list, err := catalog.AddToList(ctx, tx, []int64{vnd.ID, amz.ID}, "mixed")
	require.NoError(t, err)
	assert.False(t, list.IsAmazon, "flag samples the first id only")

	// Re-adding with the amazon listing first flips the flag.
	list, err = catalog.AddToList(ctx, tx, []int64{amz.ID, vnd.ID}, "mixed")
	require.NoError(t, err)
	assert.True(t, list.IsAmazon)
}

func TestAddToList_EmptyIDsCreatesEmptyList(t *testing.T) {
	t.Parallel()

	ctx, tx := newTx(t)

	list, err := catalog.AddToList(ctx, tx, nil, "empty")
	require.NoError(t, err)
	assert.False(t, list.IsAmazon)

	members, err := tx.ListMemberships(ctx, list.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestAddToList_MissingFirstListing(t *testing.T) {
	t.Parallel()

	ctx, tx := newTx(t)

	list, err := catalog.AddToList(ctx, tx, []int64{999}, "ghosts")
	require.NoError(t, err)
	assert.False(t, list.IsAmazon, "missing first listing reads as not amazon")
}

func TestRemoveFromList(t *testing.T) {
	t.Parallel()

	ctx, tx := newTx(t)
	a := insertListing(t, ctx, tx, domain.SourceAmazon, "B001")
	b := insertListing(t, ctx, tx, domain.SourceAmazon, "B002")

	list, err := catalog.AddToList(ctx, tx, []int64{a.ID, b.ID}, "tracked")
	require.NoError(t, err)

	require.NoError(t, catalog.RemoveFromList(ctx, tx, []int64{a.ID}, "tracked"))

	members, err := tx.ListMemberships(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, b.ID, members[0].ListingID)
}

func TestRemoveFromList_NoOps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		run  func(t *testing.T, ctx context.Context, tx store.Tx) error
	}{
		{
			name: "empty id set",
			run: func(_ *testing.T, ctx context.Context, tx store.Tx) error {
				return catalog.RemoveFromList(ctx, tx, nil, "tracked")
			},
		},
		{
			name: "missing list",
			run: func(_ *testing.T, ctx context.Context, tx store.Tx) error {
				return catalog.RemoveFromList(ctx, tx, []int64{1}, "nonexistent")
			},
		},
		{
			name: "absent membership",
			run: func(t *testing.T, ctx context.Context, tx store.Tx) error {
				a := insertListing(t, ctx, tx, domain.SourceAmazon, "B001")
				if _, err := catalog.AddToList(ctx, tx, []int64{a.ID}, "tracked"); err != nil {
					return err
				}
				return catalog.RemoveFromList(ctx, tx, []int64{999}, "tracked")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx, tx := newTx(t)
			assert.NoError(t, tt.run(t, ctx, tx))
		})
	}
}
