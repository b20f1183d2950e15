// Package store defines the transactional datastore abstraction for catwatch.
// All business logic depends on the Store and Tx interfaces, never on concrete
// implementations; the in-memory backend doubles for Postgres in unit tests.
//
// Transactions are caller-owned. Components stage reads and writes against a
// Tx but never commit; WithTx scopes a transaction with a guaranteed
// commit-or-rollback on every exit path.
package store

import (
	"context"
	"errors"
	"time"

	domain "github.com/awharton/catwatch/pkg/types"
)

// ErrConflict is returned when an insert violates a uniqueness constraint.
// Both backends map their native unique violation onto it, and it is
// deliberately not retried anywhere: get-or-create races surface to the
// caller, who owns the transaction.
var ErrConflict = errors.New("uniqueness conflict")

// Store hands out transactions and answers pool-level queries.
type Store interface {
	// Begin opens a transaction. The returned Tx must be finished with
	// Commit or Rollback; prefer WithTx.
	Begin(ctx context.Context) (Tx, error)

	// Counts returns a snapshot of entity totals.
	Counts(ctx context.Context) (*domain.Counts, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}

// Tx is a single transactional context. Finders return (nil, nil) when no row
// matches: absence is a valid outcome, not an error. Inserts execute eagerly
// within the transaction and assign the generated id before returning.
//
// Get-or-create callers race: two transactions can both observe "no match"
// and both insert. The schema's uniqueness constraints make that race fail
// fast as a store-level error; nothing here retries.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// Flush verifies the transaction is still usable and that every staged
	// write has an assigned id. Writes execute eagerly in both backends, so
	// Flush is a checkpoint rather than a write barrier; it exists because
	// link scoring requires a durable link id (see catalog.LinkByID).
	Flush(ctx context.Context) error

	// Now returns the store clock, captured once at Begin and stable for the
	// lifetime of the transaction.
	Now() time.Time

	// Listings.
	GetListing(ctx context.Context, id int64) (*domain.Listing, error)
	GetListingBySKU(ctx context.Context, source domain.Source, sku string) (*domain.Listing, error)
	InsertListing(ctx context.Context, l *domain.Listing) error

	// Lists.
	GetListByName(ctx context.Context, name string) (*domain.List, error)
	InsertList(ctx context.Context, l *domain.List) error
	UpdateList(ctx context.Context, l *domain.List) error

	// Memberships.
	GetMembership(ctx context.Context, listID, listingID int64) (*domain.ListMembership, error)
	InsertMembership(ctx context.Context, m *domain.ListMembership) error
	DeleteMembership(ctx context.Context, id int64) error
	ListMemberships(ctx context.Context, listID int64) ([]domain.ListMembership, error)

	// Product links.
	GetLink(ctx context.Context, amzListingID, vndListingID int64) (*domain.ProductLink, error)
	InsertLink(ctx context.Context, l *domain.ProductLink) error
	UpdateLinkConfidence(ctx context.Context, id int64, confidence float64) error
	DeleteLink(ctx context.Context, id int64) error

	// Operations. GetWatch applies the watch filter: kind UpdateAmazonListing
	// with a repeat param.
	GetWatch(ctx context.Context, listingID int64) (*domain.Operation, error)
	InsertOperation(ctx context.Context, op *domain.Operation) error
	UpdateOperation(ctx context.Context, op *domain.Operation) error
	DeleteOperation(ctx context.Context, id int64) error

	// Categories.
	GetCategoryByCategoryID(ctx context.Context, productCategoryID string) (*domain.Category, error)
	GetCategoryByGroup(ctx context.Context, group string) (*domain.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*domain.Category, error)
	InsertCategory(ctx context.Context, c *domain.Category) error
	UpdateCategory(ctx context.Context, c *domain.Category) error

	// Rank history. Observations returns newest first. ObservationBefore
	// returns the most recent row whose id is strictly below beforeID, ties
	// broken by larger id. AvgSalesrank returns nil when the listing has no
	// qualifying observations; a nil since means all history.
	Observations(ctx context.Context, listingID int64) ([]domain.RankObservation, error)
	ObservationBefore(ctx context.Context, listingID, beforeID int64) (*domain.RankObservation, error)
	AvgSalesrank(ctx context.Context, listingID int64, since *time.Time) (*float64, error)
	InsertObservation(ctx context.Context, o *domain.RankObservation) error
}

// WithTx runs fn inside a transaction, committing on success and rolling back
// on error or panic.
func WithTx(ctx context.Context, s Store, fn func(Tx) error) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}
