package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"catalog-svc/config"
	"catalog-svc/database"
	"catalog-svc/middleware"
	"catalog-svc/seed"
	"catalog-svc/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const serviceName = "catalog-service"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Catalog service: greeting and product price-range API",
	Long: `catalog serves a small product API backed by a JSON document store
(PostgreSQL or SQLite) and seeds the Products and Profiles collections
on first run.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a config file (yaml, json or toml); environment variables take precedence")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads config, builds the logger and opens the document store.
// The caller owns the returned logger and db.
func bootstrap() (*config.Config, *zap.Logger, *sql.DB, *store.SQLStore, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.InitDB(cfg.Database, logger)
	if err != nil {
		logger.Sync()
		return nil, nil, nil, nil, err
	}

	docs, err := store.NewSQLStore(db, cfg.Database.Driver)
	if err != nil {
		db.Close()
		logger.Sync()
		return nil, nil, nil, nil, err
	}
	return cfg, logger, db, docs, nil
}

func runSeeder(cmd *cobra.Command, docs store.Store, logger *zap.Logger) error {
	results, err := seed.New(docs, logger, seed.Defaults()...).Run(cmd.Context())
	for _, r := range results {
		middleware.RecordSeedInserted(r.Collection, r.Inserted)
	}
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	return nil
}
