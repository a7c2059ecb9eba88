package main

import (
	"github.com/bluemoon-apartment/bluemoon-backend/internal/config"
	"github.com/bluemoon-apartment/bluemoon-backend/internal/db"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(func(cfg *config.Config) error {
				return db.RunMigrations(&cfg.Database)
			})
		},
	}
}
