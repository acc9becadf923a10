package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-escrow/internal/api/middleware"
	"github.com/sanosuguru/go-ticket-escrow/internal/config"
	"github.com/sanosuguru/go-ticket-escrow/internal/infrastructure/chain"
	"github.com/sanosuguru/go-ticket-escrow/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-ticket-escrow/internal/infrastructure/redis"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/clock"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/logger"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/metrics"
	"github.com/sanosuguru/go-ticket-escrow/internal/server"
	"github.com/sanosuguru/go-ticket-escrow/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "APIサーバーを起動する",
		RunE:  runServe,
	}
	cmd.Flags().String("port", "", "待ち受けポート")
	cmd.Flags().Int("commission", 0, "手数料率（%）。初回起動時のみ反映される")
	cmd.Flags().String("admin", "", "プラットフォーム管理者のアドレス")
	cmd.Flags().Bool("migrate", false, "起動前にマイグレーションを実行する（postgres のみ）")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.Init(cfg.Log.Env, cfg.Log.Level)
	defer logger.Sync()
	m := metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer st.close()

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		if err := migrateStorage(cfg, 0); err != nil {
			return err
		}
	}

	opts := server.Options{
		Admin:         cfg.Escrow.Admin(),
		CommissionPct: cfg.Escrow.CommissionPct,
		JWTSecret:     cfg.Auth.JWTSecret,
		MetricsAuth:   cfg.Metrics,
		HTTP: middleware.Options{
			AllowOrigins: cfg.Server.CORSOrigins,
			BodyLimit:    cfg.Server.BodyLimit,
		},
		Clock:         clock.NewSystem(),
		Metrics:       m,
		HealthChecks:  st.checks,
	}

	// Redis があれば全インスタンス共通のロックと残り枚数キャッシュを使う
	if cfg.Redis.Enabled {
		client, err := redisinfra.NewClient(&redisinfra.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer client.Close()

		opts.Locker = redisinfra.NewOperationLocker(redisinfra.NewLockManager(client))
		opts.Cache = redisinfra.NewAvailabilityCache(client)
		opts.HealthChecks["redis"] = func(ctx context.Context) error { return redisinfra.Ping(ctx, client) }
		log.Info("Redis を使用", zap.String("addr", cfg.Redis.Addr()))
	}

	srv, err := server.New(ctx, st.repos, opts)
	if err != nil {
		return err
	}

	if cfg.Chain.RPCURL != "" {
		sender, err := chain.Dial(ctx, cfg.Chain.RPCURL, cfg.Chain.PrivateKey)
		if err != nil {
			return err
		}
		defer sender.Close()

		dispatcher := worker.NewTransferDispatcher(st.repos.TxManager, st.repos.Escrow, sender, clock.NewSystem(), worker.DispatcherConfig{
			Interval:    cfg.Dispatch.Interval,
			MaxAttempts: cfg.Dispatch.MaxAttempts,
			BatchSize:   cfg.Dispatch.BatchSize,
		})
		go dispatcher.Start(ctx)
		defer dispatcher.Stop()
		log.Info("送金配信を有効化", zap.String("from", sender.From().Hex()))
	} else {
		log.Warn("CHAIN_RPC_URL が未設定のため送金は記録のみ行います")
	}

	e := srv.Echo
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	errCh := make(chan error, 1)
	go func() {
		log.Info("サーバー起動",
			zap.String("port", cfg.Server.Port),
			zap.String("storage", cfg.Storage.Driver),
			zap.String("admin", cfg.Escrow.Admin().Hex()),
		)
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	log.Info("サーバーをシャットダウンしています...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("サーバーが正常にシャットダウンしました")
	return nil
}

func migrateStorage(cfg *config.Config, steps int) error {
	if cfg.Storage.Driver != config.StorageDriverPostgres {
		logger.Info("memory ストレージのためマイグレーションをスキップ")
		return nil
	}
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	status, err := postgres.RunMigrations(db.DB, cfg.MigrationsPath, steps)
	if err != nil {
		return err
	}
	logger.Info("マイグレーション完了",
		zap.String("path", cfg.MigrationsPath),
		zap.Uint("version", status.Version),
		zap.Bool("dirty", status.Dirty),
	)
	return nil
}
