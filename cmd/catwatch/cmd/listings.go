package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/awharton/catwatch/internal/catalog"
	"github.com/awharton/catwatch/internal/store"
	domain "github.com/awharton/catwatch/pkg/types"
)

func listingsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "listings",
		Short: "Manage catalog listings",
	}

	root.AddCommand(
		listingsAddCmd(),
		listingsGetCmd(),
	)

	return root
}

func listingsAddCmd() *cobra.Command {
	var (
		source     string
		sku        string
		title      string
		brand      string
		price      float64
		url        string
		categoryID string
		group      string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Get or create a listing",
		Long: "Get or create a listing keyed by (source, sku). An existing listing is\n" +
			"returned unchanged; category flags only apply on creation.",
		Example: `  catwatch listings add --source amazon --sku B07XYZ --title "USB-C Hub" --price 39.99
  catwatch listings add --source vendor --sku HUB-7 --title "7-Port USB-C Hub" --group Electronics`,
		RunE: func(_ *cobra.Command, _ []string) error {
			if source != string(domain.SourceAmazon) && source != string(domain.SourceVendor) {
				return fmt.Errorf("--source must be %q or %q", domain.SourceAmazon, domain.SourceVendor)
			}
			if sku == "" {
				return fmt.Errorf("--sku is required")
			}

			return withStore(func(ctx context.Context, s *store.PostgresStore) error {
				var out *domain.Listing
				var created bool
				err := store.WithTx(ctx, s, func(tx store.Tx) error {
					listing, fresh, err := catalog.GetOrCreate(ctx, "listing",
						func(ctx context.Context) (*domain.Listing, error) {
							return tx.GetListingBySKU(ctx, domain.Source(source), sku)
						},
						func() *domain.Listing {
							return &domain.Listing{
								Source: domain.Source(source),
								SKU:    sku,
								Title:  title,
								Brand:  brand,
								Price:  price,
								URL:    url,
							}
						},
						tx.InsertListing,
					)
					if err != nil {
						return err
					}

					if fresh && (categoryID != "" || group != "") {
						cat, err := catalog.ResolveCategory(ctx, tx, categoryID, group)
						if err != nil {
							return err
						}
						listing.CategoryID = &cat.ID
					}

					out, created = listing, fresh
					return nil
				})
				if err != nil {
					return err
				}

				if jsonOutput() {
					return outputJSON(out)
				}
				if created {
					fmt.Printf("Listing created: %d\n", out.ID)
				} else {
					fmt.Printf("Listing exists: %d\n", out.ID)
				}
				return printListingDetail(out)
			})
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "catalog source (amazon, vendor)")
	cmd.Flags().StringVar(&sku, "sku", "", "source-local SKU")
	cmd.Flags().StringVar(&title, "title", "", "listing title")
	cmd.Flags().StringVar(&brand, "brand", "", "brand name")
	cmd.Flags().Float64Var(&price, "price", 0, "listing price")
	cmd.Flags().StringVar(&url, "url", "", "listing URL")
	cmd.Flags().StringVar(&categoryID, "category-id", "", "product category id")
	cmd.Flags().StringVar(&group, "group", "", "product group for category fallback")

	return cmd
}

func listingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Short:   "Show listing details",
		Example: `  catwatch listings get 42`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withStore(func(ctx context.Context, s *store.PostgresStore) error {
				return store.WithTx(ctx, s, func(tx store.Tx) error {
					listing, err := tx.GetListing(ctx, id)
					if err != nil {
						return err
					}
					if listing == nil {
						return fmt.Errorf("listing %d not found", id)
					}
					if jsonOutput() {
						return outputJSON(listing)
					}
					return printListingDetail(listing)
				})
			})
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
