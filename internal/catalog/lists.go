package catalog

import (
	"context"
	"fmt"

	"github.com/awharton/catwatch/internal/store"
	domain "github.com/awharton/catwatch/pkg/types"
)

// AddToList adds the given listings to the named list, creating the list and
// any missing memberships. After processing, the list's is_amazon flag is
// derived from the first id's listing source: a single advisory sample,
// not an enforced invariant. A missing first listing yields false.
func AddToList(ctx context.Context, tx store.Tx, listingIDs []int64, name string) (*domain.List, error) {
	list, _, err := GetOrCreate(ctx, "list",
		func(ctx context.Context) (*domain.List, error) { return tx.GetListByName(ctx, name) },
		func() *domain.List { return &domain.List{Name: name} },
		tx.InsertList,
	)
	if err != nil {
		return nil, err
	}

	for _, listingID := range listingIDs {
		_, _, err := GetOrCreate(ctx, "membership",
			func(ctx context.Context) (*domain.ListMembership, error) {
				return tx.GetMembership(ctx, list.ID, listingID)
			},
			func() *domain.ListMembership {
				return &domain.ListMembership{ListID: list.ID, ListingID: listingID}
			},
			tx.InsertMembership,
		)
		if err != nil {
			return nil, err
		}
	}

	if len(listingIDs) == 0 {
		return list, nil
	}

	first, err := tx.GetListing(ctx, listingIDs[0])
	if err != nil {
		return nil, fmt.Errorf("resolving first listing: %w", err)
	}
	list.IsAmazon = first != nil && first.IsAmazon()
	if err := tx.UpdateList(ctx, list); err != nil {
		return nil, err
	}

	return list, nil
}

// RemoveFromList removes the given listings from the named list. A missing
// list, an empty id set, and absent memberships are all valid no-ops, never
// errors.
func RemoveFromList(ctx context.Context, tx store.Tx, listingIDs []int64, name string) error {
	if len(listingIDs) == 0 {
		return nil
	}

	list, err := tx.GetListByName(ctx, name)
	if err != nil {
		return err
	}
	if list == nil {
		return nil
	}

	for _, listingID := range listingIDs {
		m, err := tx.GetMembership(ctx, list.ID, listingID)
		if err != nil {
			return err
		}
		if m == nil {
			continue
		}
		if err := tx.DeleteMembership(ctx, m.ID); err != nil {
			return err
		}
	}

	return nil
}
