// Package cmd implements the catwatch CLI commands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/awharton/catwatch/internal/config"
	"github.com/awharton/catwatch/internal/store"
	"github.com/awharton/catwatch/pkg/logger"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "catwatch",
		Short: "Cross-catalog product monitoring",
		Long: "catwatch reconciles Amazon and vendor catalog records, links products\n" +
			"across catalogs with match confidence, records listing watches, and\n" +
			"detects sale events from salesrank history.",
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().
		String("output", "table", "output format (table, json)")

	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCommand())
	rootCmd.AddCommand(listingsCmd())
	rootCmd.AddCommand(listsCmd())
	rootCmd.AddCommand(linksCmd())
	rootCmd.AddCommand(watchesCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(seedCmd())
}

func initConfig() {
	viper.SetEnvPrefix("CATWATCH")
	viper.AutomaticEnv()
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}

// loadConfig reads the config file named by the persistent flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// openStore connects to Postgres using the loaded config.
func openStore(ctx context.Context, cfg *config.Config) (*store.PostgresStore, error) {
	s, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return s, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logger.New(cfg.Logging.Level, cfg.Logging.Format)
}

// withStore runs fn against a connected store, closing it afterwards.
func withStore(fn func(ctx context.Context, s *store.PostgresStore) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(ctx, s)
}
