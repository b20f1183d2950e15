package catalog

import (
	"context"

	"github.com/awharton/catwatch/internal/metrics"
	"github.com/awharton/catwatch/internal/store"
	domain "github.com/awharton/catwatch/pkg/types"
)

// GetWatch returns the repeating UpdateAmazonListing operation recorded for
// this listing, or nil when none exists.
func GetWatch(ctx context.Context, tx store.Tx, listingID int64) (*domain.Operation, error) {
	return tx.GetWatch(ctx, listingID)
}

// SetWatch records or re-arms a recurring watch on a listing. An empty
// interval clears any existing watch. Otherwise the watch operation is
// created if missing, and its params are unconditionally overwritten to
// {log: true, repeat: interval} with scheduled reset to the store clock,
// re-arming it to fire immediately regardless of prior state.
//
// Watches record intent only; nothing in this repository executes them.
func SetWatch(ctx context.Context, tx store.Tx, listingID int64, interval string) (*domain.Operation, error) {
	if interval == "" {
		return nil, ClearWatch(ctx, tx, listingID)
	}

	watch, _, err := GetOrCreate(ctx, "watch",
		func(ctx context.Context) (*domain.Operation, error) {
			return tx.GetWatch(ctx, listingID)
		},
		func() *domain.Operation {
			op := domain.NewUpdateListingOp(listingID)
			op.Params = map[string]any{domain.ParamLog: true, domain.ParamRepeat: interval}
			return op
		},
		tx.InsertOperation,
	)
	if err != nil {
		return nil, err
	}

	watch.Params = map[string]any{domain.ParamLog: true, domain.ParamRepeat: interval}
	watch.Scheduled = tx.Now()
	if err := tx.UpdateOperation(ctx, watch); err != nil {
		return nil, err
	}

	metrics.WatchesArmedTotal.Inc()
	return watch, nil
}

// ClearWatch deletes the watch recorded for a listing; a missing watch is a
// valid no-op.
func ClearWatch(ctx context.Context, tx store.Tx, listingID int64) error {
	watch, err := tx.GetWatch(ctx, listingID)
	if err != nil {
		return err
	}
	if watch == nil {
		return nil
	}
	if err := tx.DeleteOperation(ctx, watch.ID); err != nil {
		return err
	}

	metrics.WatchesClearedTotal.Inc()
	return nil
}
