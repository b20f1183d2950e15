package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/awharton/catwatch/internal/catalog"
	"github.com/awharton/catwatch/internal/store"
	domain "github.com/awharton/catwatch/pkg/types"
)

func listsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lists",
		Short: "Manage named listing lists",
	}

	root.AddCommand(
		listsAddCmd(),
		listsRemoveCmd(),
		listsShowCmd(),
	)

	return root
}

func listsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <listing-id>...",
		Short: "Add listings to a list, creating it if missing",
		Example: `  catwatch lists add tracked 12 13 14
  catwatch lists add amazon-favorites 42`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name := args[0]
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}

			return withStore(func(ctx context.Context, s *store.PostgresStore) error {
				var list *domain.List
				err := store.WithTx(ctx, s, func(tx store.Tx) error {
					list, err = catalog.AddToList(ctx, tx, ids, name)
					return err
				})
				if err != nil {
					return err
				}

				if jsonOutput() {
					return outputJSON(list)
				}
				fmt.Printf("Added %d listing(s) to %q (list %d).\n", len(ids), list.Name, list.ID)
				return nil
			})
		},
	}
}

func listsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name> <listing-id>...",
		Short:   "Remove listings from a list",
		Example: `  catwatch lists remove tracked 13`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name := args[0]
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}

			return withStore(func(ctx context.Context, s *store.PostgresStore) error {
				err := store.WithTx(ctx, s, func(tx store.Tx) error {
					return catalog.RemoveFromList(ctx, tx, ids, name)
				})
				if err != nil {
					return err
				}
				fmt.Printf("Removed %d listing(s) from %q.\n", len(ids), name)
				return nil
			})
		},
	}
}

func listsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show <name>",
		Short:   "Show the listings in a list",
		Example: `  catwatch lists show tracked`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name := args[0]

			return withStore(func(ctx context.Context, s *store.PostgresStore) error {
				return store.WithTx(ctx, s, func(tx store.Tx) error {
					list, err := tx.GetListByName(ctx, name)
					if err != nil {
						return err
					}
					if list == nil {
						return fmt.Errorf("list %q not found", name)
					}

					members, err := tx.ListMemberships(ctx, list.ID)
					if err != nil {
						return err
					}

					listings := make([]domain.Listing, 0, len(members))
					for _, m := range members {
						l, err := tx.GetListing(ctx, m.ListingID)
						if err != nil {
							return err
						}
						if l != nil {
							listings = append(listings, *l)
						}
					}

					if jsonOutput() {
						return outputJSON(map[string]any{"list": list, "listings": listings})
					}
					fmt.Printf("%s (is_amazon=%v, %d member(s))\n", list.Name, list.IsAmazon, len(listings))
					return printListingsTable(listings)
				})
			})
		},
	}
}
