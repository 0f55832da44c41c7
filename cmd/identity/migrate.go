package main

import (
	"github.com/spf13/cobra"

	"github.com/machwork/identity/internal/observability/logger"
	"github.com/machwork/identity/internal/store/pg"
	"github.com/machwork/identity/migrations"
)

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Aplica las migraciones del esquema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger.Init(logger.Config{
			Env:         cfg.App.Env,
			Level:       cfg.Log.Level,
			ServiceName: "identity-migrate",
		})
		defer logger.Sync()

		store, err := pg.New(cmd.Context(), cfg.Storage.DSN, pg.Options{})
		if err != nil {
			return err
		}
		defer store.Close()

		if migrateDown {
			if err := store.RunMigrationsDown(cmd.Context(), migrations.FS, "postgres"); err != nil {
				return err
			}
			logger.L().Info("migrations rolled back")
			return nil
		}
		if err := store.RunMigrations(cmd.Context(), migrations.FS, "postgres"); err != nil {
			return err
		}
		logger.L().Info("migrations applied")
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "revierte las migraciones en orden inverso")
}
