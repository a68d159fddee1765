package main

import (
	"fmt"

	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/config"
	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/database"
	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/logging"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply PostgreSQL migrations (postgres storage driver only)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(v)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if cfg.StorageDriver != config.DriverPostgres {
			return fmt.Errorf("migrate needs --storage-driver=%s, got %q", config.DriverPostgres, cfg.StorageDriver)
		}

		logger, err := logging.NewLogger(cfg.Environment)
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		pool, err := database.NewPool(cmd.Context(), cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer pool.Close()

		return database.Migrate(cmd.Context(), pool, logger)
	},
}
