package catalog

import (
	"context"

	"github.com/awharton/catwatch/internal/metrics"
	"github.com/awharton/catwatch/internal/store"
	domain "github.com/awharton/catwatch/pkg/types"
)

// ResolveCategory resolves a product category through a three-tier fallback:
//
//  1. A non-empty productCategoryID gets or creates the category keyed by it,
//     defaulting an unset name to the raw id string.
//  2. Otherwise a non-empty productGroup matches an existing category whose
//     product groups contain it. Lookup only, never a create.
//  3. Otherwise the singleton "Unknown" category is returned, created on
//     first use.
//
// The result is never nil without an error.
func ResolveCategory(ctx context.Context, tx store.Tx, productCategoryID, productGroup string) (*domain.Category, error) {
	if productCategoryID != "" {
		cat, _, err := GetOrCreate(ctx, "category",
			func(ctx context.Context) (*domain.Category, error) {
				return tx.GetCategoryByCategoryID(ctx, productCategoryID)
			},
			func() *domain.Category {
				return &domain.Category{ProductCategoryID: productCategoryID}
			},
			tx.InsertCategory,
		)
		if err != nil {
			return nil, err
		}
		if cat.Name == "" {
			cat.Name = productCategoryID
			if err := tx.UpdateCategory(ctx, cat); err != nil {
				return nil, err
			}
		}
		return cat, nil
	}

	if productGroup != "" {
		cat, err := tx.GetCategoryByGroup(ctx, productGroup)
		if err != nil {
			return nil, err
		}
		if cat != nil {
			return cat, nil
		}
	}

	metrics.CategoryFallbacksTotal.Inc()
	cat, _, err := GetOrCreate(ctx, "category",
		func(ctx context.Context) (*domain.Category, error) {
			return tx.GetCategoryByName(ctx, domain.UnknownCategoryName)
		},
		func() *domain.Category {
			return &domain.Category{Name: domain.UnknownCategoryName}
		},
		tx.InsertCategory,
	)
	return cat, err
}
