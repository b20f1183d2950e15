package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/awharton/catwatch/internal/analytics"
	"github.com/awharton/catwatch/internal/store"
	domain "github.com/awharton/catwatch/pkg/types"
)

func historyCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "history",
		Short: "Inspect salesrank history and sale signals",
	}

	root.AddCommand(
		historyRecordCmd(),
		historyShowCmd(),
		historyAvgCmd(),
		historySalesCmd(),
	)

	return root
}

func historyRecordCmd() *cobra.Command {
	var (
		prime    bool
		merchant int64
		offers   int
	)

	cmd := &cobra.Command{
		Use:     "record <listing-id> <salesrank>",
		Short:   "Append a salesrank observation",
		Example: `  catwatch history record 42 15320 --offers 7`,
		Args:    cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			rank, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid salesrank %q", args[1])
			}

			return withStore(func(ctx context.Context, s *store.PostgresStore) error {
				obs := &domain.RankObservation{
					ListingID:  id,
					Timestamp:  time.Now().UTC(),
					Salesrank:  rank,
					HasPrime:   prime,
					MerchantID: merchant,
					Offers:     offers,
				}
				err := store.WithTx(ctx, s, func(tx store.Tx) error {
					return tx.InsertObservation(ctx, obs)
				})
				if err != nil {
					return err
				}
				fmt.Printf("Observation %d recorded for listing %d.\n", obs.ID, id)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&prime, "prime", false, "prime offer present")
	cmd.Flags().Int64Var(&merchant, "merchant", 0, "merchant id")
	cmd.Flags().IntVar(&offers, "offers", 0, "offer count")

	return cmd
}

func historyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show <listing-id>",
		Short:   "Show rank history, newest first",
		Example: `  catwatch history show 42`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withStore(func(ctx context.Context, s *store.PostgresStore) error {
				return store.WithTx(ctx, s, func(tx store.Tx) error {
					obs, err := analytics.NewHistory(tx, id).DataPoints(ctx)
					if err != nil {
						return err
					}
					if jsonOutput() {
						return outputJSON(obs)
					}
					if len(obs) == 0 {
						fmt.Printf("No history for listing %d.\n", id)
						return nil
					}
					return printObservationsTable(obs)
				})
			})
		},
	}
}

func historyAvgCmd() *cobra.Command {
	var recent bool

	cmd := &cobra.Command{
		Use:   "avg <listing-id>",
		Short: "Show the mean salesrank",
		Example: `  catwatch history avg 42
  catwatch history avg 42 --recent`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withStore(func(ctx context.Context, s *store.PostgresStore) error {
				return store.WithTx(ctx, s, func(tx store.Tx) error {
					h := analytics.NewHistory(tx, id)

					var avg *float64
					var err error
					if recent {
						avg, err = h.Avg90DaySalesrank(ctx)
					} else {
						avg, err = h.AvgSalesrank(ctx)
					}
					if err != nil {
						return err
					}

					if avg == nil {
						fmt.Printf("No qualifying history for listing %d.\n", id)
						return nil
					}
					if jsonOutput() {
						return outputJSON(map[string]float64{"avg_salesrank": *avg})
					}
					fmt.Printf("Average salesrank: %.1f\n", *avg)
					return nil
				})
			})
		},
	}

	cmd.Flags().BoolVar(&recent, "recent", false, "restrict to the last 90 days")

	return cmd
}

func historySalesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "sales <listing-id>",
		Short:   "Show observations flagged as sale events",
		Example: `  catwatch history sales 42`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withStore(func(ctx context.Context, s *store.PostgresStore) error {
				return store.WithTx(ctx, s, func(tx store.Tx) error {
					points, err := analytics.NewHistory(tx, id).SalesPoints(ctx)
					if err != nil {
						return err
					}
					if jsonOutput() {
						return outputJSON(points)
					}
					if len(points) == 0 {
						fmt.Printf("No sales detected for listing %d.\n", id)
						return nil
					}
					return printObservationsTable(points)
				})
			})
		},
	}
}
