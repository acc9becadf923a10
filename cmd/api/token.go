package main

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/sanosuguru/go-ticket-escrow/internal/api/middleware"
	"github.com/sanosuguru/go-ticket-escrow/internal/config"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "AUTH_JWT_SECRET で署名した呼び出し元トークンを発行する",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("AUTH_JWT_SECRET が設定されていません")
			}
			raw, _ := cmd.Flags().GetString("address")
			if !common.IsHexAddress(raw) {
				return fmt.Errorf("アドレスの形式が不正です: %q", raw)
			}
			ttl, _ := cmd.Flags().GetDuration("ttl")

			token, err := middleware.IssueCallerToken(cfg.Auth.JWTSecret, common.HexToAddress(raw), ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("address", "", "トークンの sub にするアドレス")
	cmd.Flags().Duration("ttl", 24*time.Hour, "有効期限")
	_ = cmd.MarkFlagRequired("address")
	return cmd
}
