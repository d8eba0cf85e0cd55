package main

import (
	"fmt"

	"fridge-recipe/internal/infrastructure/database"
	"fridge-recipe/internal/pkg/common"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer common.Sync()

			db, err := database.New(cfg.Database.Driver, cfg.Database.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := database.Migrate(db, cfg.Database.Driver); err != nil {
				return err
			}

			version, err := database.Version(db, cfg.Database.Driver)
			if err != nil {
				return err
			}
			common.LogInfo("資料庫 migration 完成", zap.Int64("version", version))
			fmt.Fprintf(cmd.OutOrStdout(), "database at version %d\n", version)
			return nil
		},
	}
}
