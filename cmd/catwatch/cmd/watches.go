package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/awharton/catwatch/internal/catalog"
	"github.com/awharton/catwatch/internal/store"
	domain "github.com/awharton/catwatch/pkg/types"
)

func watchesCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "watches",
		Short: "Manage recurring listing watches",
		Long: "Watches record the intent to refresh an Amazon listing on a repeat\n" +
			"interval. Setting a watch that already exists re-arms it to fire\n" +
			"immediately.",
	}

	root.AddCommand(
		watchesSetCmd(),
		watchesClearCmd(),
		watchesGetCmd(),
	)

	return root
}

func watchesSetCmd() *cobra.Command {
	var every string

	cmd := &cobra.Command{
		Use:   "set <listing-id>",
		Short: "Set or re-arm a watch on a listing",
		Example: `  catwatch watches set 42 --every 12h
  catwatch watches set 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			interval := every
			if interval == "" {
				interval = cfg.Watch.DefaultInterval
			}

			ctx := context.Background()
			s, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			var watch *domain.Operation
			err = store.WithTx(ctx, s, func(tx store.Tx) error {
				watch, err = catalog.SetWatch(ctx, tx, id, interval)
				if err != nil || watch == nil {
					return err
				}
				if watch.Priority != cfg.Watch.Priority {
					watch.Priority = cfg.Watch.Priority
					return tx.UpdateOperation(ctx, watch)
				}
				return nil
			})
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(watch)
			}
			fmt.Printf("Watch armed on listing %d every %s.\n", id, interval)
			return printWatchDetail(watch)
		},
	}

	cmd.Flags().StringVar(&every, "every", "", "repeat interval (default from config)")

	return cmd
}

func watchesClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "clear <listing-id>",
		Short:   "Clear the watch on a listing",
		Example: `  catwatch watches clear 42`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withStore(func(ctx context.Context, s *store.PostgresStore) error {
				err := store.WithTx(ctx, s, func(tx store.Tx) error {
					return catalog.ClearWatch(ctx, tx, id)
				})
				if err != nil {
					return err
				}
				fmt.Printf("Watch cleared on listing %d.\n", id)
				return nil
			})
		},
	}
}

func watchesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <listing-id>",
		Short:   "Show the watch recorded for a listing",
		Example: `  catwatch watches get 42`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withStore(func(ctx context.Context, s *store.PostgresStore) error {
				return store.WithTx(ctx, s, func(tx store.Tx) error {
					watch, err := catalog.GetWatch(ctx, tx, id)
					if err != nil {
						return err
					}
					if watch == nil {
						fmt.Printf("No watch on listing %d.\n", id)
						return nil
					}
					if jsonOutput() {
						return outputJSON(watch)
					}
					return printWatchDetail(watch)
				})
			})
		},
	}
}
