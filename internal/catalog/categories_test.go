package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awharton/catwatch/internal/catalog"
	domain "github.com/awharton/catwatch/pkg/types"
)

func TestResolveCategory_ByCategoryID(t *testing.T) {
	t.Parallel()

	ctx, tx := newTx(t)

	cat, err := catalog.ResolveCategory(ctx, tx, "16310101", "")
	require.NoError(t, err)
	assert.Equal(t, "16310101", cat.ProductCategoryID)
	assert.Equal(t, "16310101", cat.Name, "unset name defaults to the raw id")

	again, err := catalog.ResolveCategory(ctx, tx, "16310101", "")
	require.NoError(t, err)
	assert.Equal(t, cat.ID, again.ID)
}

func TestResolveCategory_ExistingNameKept(t *testing.T) {
	t.Parallel()

	ctx, tx := newTx(t)

	require.NoError(t, tx.InsertCategory(ctx, &domain.Category{
		ProductCategoryID: "16310101",
		Name:              "Kitchen",
	}))

	cat, err := catalog.ResolveCategory(ctx, tx, "16310101", "")
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", cat.Name)
}

func TestResolveCategory_ByGroup(t *testing.T) {
	t.Parallel()

	ctx, tx := newTx(t)

	require.NoError(t, tx.InsertCategory(ctx, &domain.Category{
		Name:          "Electronics",
		ProductGroups: []string{"Electronics", "CE"},
	}))

	cat, err := catalog.ResolveCategory(ctx, tx, "", "CE")
	require.NoError(t, err)
	assert.Equal(t, "Electronics", cat.Name)
}

func TestResolveCategory_GroupNeverCreates(t *testing.T) {
	t.Parallel()

	ctx, tx := newTx(t)

	cat, err := catalog.ResolveCategory(ctx, tx, "", "NoSuchGroup")
	require.NoError(t, err)
	assert.Equal(t, domain.UnknownCategoryName, cat.Name, "unmatched group falls through to Unknown")
}

func TestResolveCategory_CategoryIDWinsOverGroup(t *testing.T) {
	t.Parallel()

	ctx, tx := newTx(t)

	require.NoError(t, tx.InsertCategory(ctx, &domain.Category{
		Name:          "Electronics",
		ProductGroups: []string{"CE"},
	}))

	cat, err := catalog.ResolveCategory(ctx, tx, "999", "CE")
	require.NoError(t, err)
	assert.Equal(t, "999", cat.ProductCategoryID)
	assert.NotEqual(t, "Electronics", cat.Name)
}

func TestResolveCategory_UnknownSingleton(t *testing.T) {
	t.Parallel()

	ctx, tx := newTx(t)

	first, err := catalog.ResolveCategory(ctx, tx, "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.UnknownCategoryName, first.Name)

	second, err := catalog.ResolveCategory(ctx, tx, "", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "Unknown category is reused, not duplicated")
}
