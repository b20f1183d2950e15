// Package catalog implements the record-reconciliation operations: the
// get-or-create primitive and the list, link, watch, and category managers
// built on top of it. Every operation runs against a caller-owned store.Tx
// and never commits.
package catalog

import (
	"context"
	"fmt"

	"github.com/awharton/catwatch/internal/metrics"
)

// GetOrCreate returns the unique record produced by find, or inserts a fresh
// record when find reports no match. The returned bool is true when a record
// was created.
//
// The read-then-write sequence is not atomic. Two transactions racing on the
// same constraints can both observe "no match" and both insert; the schema's
// uniqueness constraints make the loser fail with a store error, and nothing
// here retries.
func GetOrCreate[T any](
	ctx context.Context,
	entity string,
	find func(context.Context) (*T, error),
	fresh func() *T,
	insert func(context.Context, *T) error,
) (*T, bool, error) {
	got, err := find(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("finding %s: %w", entity, err)
	}
	if got != nil {
		metrics.UpsertsTotal.WithLabelValues(entity, "found").Inc()
		return got, false, nil
	}

	obj := fresh()
	if err := insert(ctx, obj); err != nil {
		return nil, false, fmt.Errorf("creating %s: %w", entity, err)
	}

	metrics.UpsertsTotal.WithLabelValues(entity, "created").Inc()
	return obj, true, nil
}
