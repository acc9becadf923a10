package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ticket-escrow",
		Short:        "エスクロー付きチケット販売API",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("storage", "", "ストレージ（postgres または memory）")
	root.PersistentFlags().String("migrations-path", "", "マイグレーションファイルのディレクトリ")
	root.PersistentFlags().String("log-level", "", "ログレベル（debug, info, warn, error）")

	root.AddCommand(newServeCmd(), newMigrateCmd(), newTokenCmd())
	return root
}
