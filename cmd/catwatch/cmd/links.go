package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/awharton/catwatch/internal/catalog"
	"github.com/awharton/catwatch/internal/store"
	score "github.com/awharton/catwatch/pkg/scorer"
	domain "github.com/awharton/catwatch/pkg/types"
)

func linksCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "links",
		Short: "Manage cross-catalog product links",
	}

	root.AddCommand(
		linksCreateCmd(),
		linksRemoveCmd(),
		linksGetCmd(),
	)

	return root
}

func linksCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <amz-listing-id> <vnd-listing-id>",
		Short: "Link an Amazon listing to a vendor listing",
		Long: "Get or create the link between the two listings. A new link gets a match\n" +
			"confidence computed once and cached for the record's lifetime.",
		Example: `  catwatch links create 42 117`,
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			amzID, err := parseID(args[0])
			if err != nil {
				return err
			}
			vndID, err := parseID(args[1])
			if err != nil {
				return err
			}

			return withStore(func(ctx context.Context, s *store.PostgresStore) error {
				var link *domain.ProductLink
				err := store.WithTx(ctx, s, func(tx store.Tx) error {
					link, err = catalog.LinkByID(ctx, tx, score.Confidence, amzID, vndID)
					return err
				})
				if err != nil {
					return err
				}

				if jsonOutput() {
					return outputJSON(link)
				}
				return printLinkDetail(link)
			})
		},
	}
}

func linksRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <amz-listing-id> <vnd-listing-id>",
		Short:   "Remove the link between two listings",
		Example: `  catwatch links remove 42 117`,
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			amzID, err := parseID(args[0])
			if err != nil {
				return err
			}
			vndID, err := parseID(args[1])
			if err != nil {
				return err
			}

			return withStore(func(ctx context.Context, s *store.PostgresStore) error {
				err := store.WithTx(ctx, s, func(tx store.Tx) error {
					return catalog.Unlink(ctx, tx, amzID, vndID)
				})
				if err != nil {
					return err
				}
				fmt.Printf("Link %d-%d removed.\n", amzID, vndID)
				return nil
			})
		},
	}
}

func linksGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <amz-listing-id> <vnd-listing-id>",
		Short:   "Show link details",
		Example: `  catwatch links get 42 117`,
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			amzID, err := parseID(args[0])
			if err != nil {
				return err
			}
			vndID, err := parseID(args[1])
			if err != nil {
				return err
			}

			return withStore(func(ctx context.Context, s *store.PostgresStore) error {
				return store.WithTx(ctx, s, func(tx store.Tx) error {
					link, err := tx.GetLink(ctx, amzID, vndID)
					if err != nil {
						return err
					}
					if link == nil {
						return fmt.Errorf("link %d-%d not found", amzID, vndID)
					}
					if jsonOutput() {
						return outputJSON(link)
					}
					return printLinkDetail(link)
				})
			})
		},
	}
}
