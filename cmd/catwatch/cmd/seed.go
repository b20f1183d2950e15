package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/awharton/catwatch/internal/catalog"
	"github.com/awharton/catwatch/internal/store"
	score "github.com/awharton/catwatch/pkg/scorer"
	domain "github.com/awharton/catwatch/pkg/types"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo data into an empty database",
		Long: "Seed creates a pair of linked listings, a tracked list, a watch, and a\n" +
			"week of salesrank history including one sale-shaped drop. Intended for\n" +
			"local development against a fresh database.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withStore(func(ctx context.Context, s *store.PostgresStore) error {
				return store.WithTx(ctx, s, func(tx store.Tx) error {
					return seed(ctx, tx)
				})
			})
		},
	}
}

func seed(ctx context.Context, tx store.Tx) error {
	cat, err := catalog.ResolveCategory(ctx, tx, "16310101", "Electronics")
	if err != nil {
		return err
	}
	cat.Name = "Electronics"
	cat.ProductGroups = []string{"Electronics", "CE"}
	if err := tx.UpdateCategory(ctx, cat); err != nil {
		return err
	}

	amz := &domain.Listing{
		Source:     domain.SourceAmazon,
		SKU:        "B07DEMOHUB",
		Title:      "7-Port USB-C Hub with Power Delivery",
		Brand:      "Hubble",
		CategoryID: &cat.ID,
		Price:      39.99,
		URL:        "https://www.amazon.com/dp/B07DEMOHUB",
	}
	if err := tx.InsertListing(ctx, amz); err != nil {
		return err
	}

	vnd := &domain.Listing{
		Source:     domain.SourceVendor,
		SKU:        "HUB-7C-PD",
		Title:      "Hubble 7 Port USB-C Hub Power Delivery",
		Brand:      "Hubble",
		CategoryID: &cat.ID,
		Price:      31.50,
		URL:        "https://vendor.example.com/hub-7c-pd",
	}
	if err := tx.InsertListing(ctx, vnd); err != nil {
		return err
	}

	if _, err := catalog.Link(ctx, tx, score.Confidence, amz, vnd); err != nil {
		return err
	}

	if _, err := catalog.AddToList(ctx, tx, []int64{amz.ID}, "tracked"); err != nil {
		return err
	}

	if _, err := catalog.SetWatch(ctx, tx, amz.ID, "12h"); err != nil {
		return err
	}

	// A week of drifting rank with one steep drop on day five.
	base := tx.Now().AddDate(0, 0, -7)
	ranks := []int{52000, 51200, 53100, 50800, 9400, 11200, 12900}
	for i, r := range ranks {
		obs := &domain.RankObservation{
			ListingID: amz.ID,
			Timestamp: base.Add(time.Duration(i) * 24 * time.Hour),
			Salesrank: r,
			HasPrime:  true,
			Offers:    5 + i,
		}
		if err := tx.InsertObservation(ctx, obs); err != nil {
			return err
		}
	}

	fmt.Printf("Seeded listings %d and %d, list %q, watch, and %d observations.\n",
		amz.ID, vnd.ID, "tracked", len(ranks))
	return nil
}
