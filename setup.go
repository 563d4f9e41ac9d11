package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create and populate the Products and Profiles collections",
	Long: `Create the Products and Profiles collections if they are missing and
insert the sample records into each collection this run created. Existing
collections are left untouched, so the command is safe to repeat.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	_, logger, db, docs, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer db.Close()

	if err := runSeeder(cmd, docs, logger); err != nil {
		logger.Error("Failed to seed collections", zap.Error(err))
		return err
	}
	logger.Info("Seeding complete")
	return nil
}
