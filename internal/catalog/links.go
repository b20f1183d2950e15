package catalog

import (
	"context"
	"fmt"

	"github.com/awharton/catwatch/internal/metrics"
	"github.com/awharton/catwatch/internal/store"
	domain "github.com/awharton/catwatch/pkg/types"
)

// Scorer estimates the confidence that an Amazon listing and a vendor listing
// refer to the same physical product. It must be pure and deterministic;
// either argument may be nil when a listing id did not resolve. The linker
// guarantees it is invoked at most once per link for the lifetime of the
// record.
type Scorer func(amz, vnd *domain.Listing) float64

// LinkByID retrieves or creates the link between two products by their
// listing ids. When the link has no cached confidence yet, the transaction is
// flushed first so the link row holds a durable id, then both listings are
// loaded and scored.
//
// Link skips the flush and scores the caller's in-memory listings directly;
// whether the scorer needs flushed state is deliberately left to the caller's
// choice of entry point rather than unified here.
func LinkByID(ctx context.Context, tx store.Tx, score Scorer, amzListingID, vndListingID int64) (*domain.ProductLink, error) {
	link, _, err := getOrCreateLink(ctx, tx, amzListingID, vndListingID)
	if err != nil {
		return nil, err
	}
	if link.Confidence != nil {
		return link, nil
	}

	if err := tx.Flush(ctx); err != nil {
		return nil, err
	}

	amz, err := tx.GetListing(ctx, amzListingID)
	if err != nil {
		return nil, fmt.Errorf("loading amazon listing: %w", err)
	}
	vnd, err := tx.GetListing(ctx, vndListingID)
	if err != nil {
		return nil, fmt.Errorf("loading vendor listing: %w", err)
	}

	if err := cacheConfidence(ctx, tx, link, score(amz, vnd)); err != nil {
		return nil, err
	}
	return link, nil
}

// Link retrieves or creates the link between two already-loaded listings.
// Scoring runs against the supplied objects without a flush, so it may see
// in-memory state no other reader sees yet.
func Link(ctx context.Context, tx store.Tx, score Scorer, amz, vnd *domain.Listing) (*domain.ProductLink, error) {
	link, _, err := getOrCreateLink(ctx, tx, amz.ID, vnd.ID)
	if err != nil {
		return nil, err
	}
	if link.Confidence != nil {
		return link, nil
	}

	if err := cacheConfidence(ctx, tx, link, score(amz, vnd)); err != nil {
		return nil, err
	}
	return link, nil
}

// Unlink deletes the link between two products if one exists.
func Unlink(ctx context.Context, tx store.Tx, amzListingID, vndListingID int64) error {
	link, err := tx.GetLink(ctx, amzListingID, vndListingID)
	if err != nil {
		return err
	}
	if link == nil {
		return nil
	}
	return tx.DeleteLink(ctx, link.ID)
}

func getOrCreateLink(ctx context.Context, tx store.Tx, amzListingID, vndListingID int64) (*domain.ProductLink, bool, error) {
	return GetOrCreate(ctx, "link",
		func(ctx context.Context) (*domain.ProductLink, error) {
			return tx.GetLink(ctx, amzListingID, vndListingID)
		},
		func() *domain.ProductLink {
			return &domain.ProductLink{AmzListingID: amzListingID, VndListingID: vndListingID}
		},
		tx.InsertLink,
	)
}

// cacheConfidence persists a freshly computed confidence. Once set it is
// immutable; later link calls are pure lookups.
func cacheConfidence(ctx context.Context, tx store.Tx, link *domain.ProductLink, confidence float64) error {
	if err := tx.UpdateLinkConfidence(ctx, link.ID, confidence); err != nil {
		return err
	}
	link.Confidence = &confidence

	metrics.ConfidenceComputedTotal.Inc()
	metrics.ConfidenceDistribution.Observe(confidence)
	return nil
}
