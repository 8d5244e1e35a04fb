package main

import (
	"github.com/spf13/cobra"

	"github.com/deppfellow/invoices/internal/config"
	"github.com/deppfellow/invoices/internal/database"
	"github.com/deppfellow/invoices/internal/logger"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.MustLoadConfig()
			log := logger.NewLoggerWithService(cfg.Observability, nil)

			return database.Migrate(cmd.Context(), &log, cfg)
		},
	}
}
