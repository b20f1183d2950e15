package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/awharton/catwatch/internal/store"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show entity counts",
		Example: `  catwatch status`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withStore(func(ctx context.Context, s *store.PostgresStore) error {
				counts, err := s.Counts(ctx)
				if err != nil {
					return err
				}
				if jsonOutput() {
					return outputJSON(counts)
				}
				return printCounts(counts)
			})
		},
	}
}
