package main

import (
	"github.com/spf13/cobra"

	"github.com/sanosuguru/go-ticket-escrow/internal/config"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/logger"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "データベースのマイグレーションを実行する",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			logger.Init(cfg.Log.Env, cfg.Log.Level)
			defer logger.Sync()

			steps, _ := cmd.Flags().GetInt("steps")
			return migrateStorage(cfg, steps)
		},
	}
	cmd.Flags().Int("steps", 0, "適用するステップ数（0 は最新まで、負の値で戻す）")
	return cmd
}
