package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awharton/catwatch/internal/catalog"
	domain "github.com/awharton/catwatch/pkg/types"
)

func TestSetWatch_CreatesWatch(t *testing.T) {
	t.Parallel()

	ctx, tx := newTx(t)
	l := insertListing(t, ctx, tx, domain.SourceAmazon, "B001")

	watch, err := catalog.SetWatch(ctx, tx, l.ID, "12h")
	require.NoError(t, err)

	assert.Equal(t, domain.OpUpdateAmazonListing, watch.Kind)
	assert.Equal(t, domain.DefaultWatchPriority, watch.Priority)
	assert.Equal(t, "12h", watch.RepeatInterval())
	assert.Equal(t, true, watch.Params[domain.ParamLog])
	assert.Equal(t, tx.Now(), watch.Scheduled)
}

func TestSetWatch_ReArmsExisting(t *testing.T) {
	t.Parallel()

	ctx, tx := newTx(t)
	l := insertListing(t, ctx, tx, domain.SourceAmazon, "B001")

	first, err := catalog.SetWatch(ctx, tx, l.ID, "24h")
	require.NoError(t, err)

	second, err := catalog.SetWatch(ctx, tx, l.ID, "6h")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "one watch per listing")
	assert.Equal(t, "6h", second.RepeatInterval())

	stored, err := catalog.GetWatch(ctx, tx, l.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "6h", stored.RepeatInterval())
}

func TestSetWatch_EmptyIntervalClears(t *testing.T) {
	t.Parallel()

	ctx, tx := newTx(t)
	l := insertListing(t, ctx, tx, domain.SourceAmazon, "B001")

	_, err := catalog.SetWatch(ctx, tx, l.ID, "12h")
	require.NoError(t, err)

	watch, err := catalog.SetWatch(ctx, tx, l.ID, "")
	require.NoError(t, err)
	assert.Nil(t, watch)

	stored, err := catalog.GetWatch(ctx, tx, l.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestClearWatch_MissingIsNoOp(t *testing.T) {
	t.Parallel()

	ctx, tx := newTx(t)

	assert.NoError(t, catalog.ClearWatch(ctx, tx, 42))
}

func TestGetWatch_IgnoresNonWatchOperations(t *testing.T) {
	t.Parallel()

	ctx, tx := newTx(t)
	l := insertListing(t, ctx, tx, domain.SourceAmazon, "B001")

	// A one-shot operation without a repeat param is not a watch.
	op := domain.NewUpdateListingOp(l.ID)
	op.Params = map[string]any{domain.ParamLog: true}
	require.NoError(t, tx.InsertOperation(ctx, op))

	watch, err := catalog.GetWatch(ctx, tx, l.ID)
	require.NoError(t, err)
	assert.Nil(t, watch)
}
