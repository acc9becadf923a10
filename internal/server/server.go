// Package server はリポジトリ実装からサービスとHTTPサーバーを組み立てる
package server

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanosuguru/go-ticket-escrow/internal/api"
	"github.com/sanosuguru/go-ticket-escrow/internal/api/handler"
	"github.com/sanosuguru/go-ticket-escrow/internal/api/middleware"
	"github.com/sanosuguru/go-ticket-escrow/internal/application"
	"github.com/sanosuguru/go-ticket-escrow/internal/config"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/credential"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/escrow"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/event"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/identity"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/transaction"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/clock"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/metrics"
)

// Repositories は永続化先ごとのリポジトリ実装
type Repositories struct {
	TxManager   transaction.Manager
	Events      event.Repository
	Tickets     ticket.Repository
	Identities  identity.Repository
	Escrow      escrow.Repository
	Credentials credential.Repository
}

// Options はサービスとHTTP層の設定
type Options struct {
	Admin         common.Address
	CommissionPct int
	JWTSecret     string
	MetricsAuth   config.MetricsConfig
	HTTP          middleware.Options

	// Locker が nil の場合はプロセス内ロックを使う
	Locker application.Locker
	// Cache が nil の場合は残り枚数をキャッシュしない
	Cache application.AvailabilityCache
	// Clock が nil の場合はシステム時刻を使う
	Clock clock.Clock
	// Metrics が nil の場合はHTTPメトリクスを収集しない
	Metrics *metrics.Metrics

	HealthChecks map[string]handler.HealthCheck
}

// Server は組み立て済みのサービスとEcho
type Server struct {
	Echo        *echo.Echo
	Identities  *application.IdentityService
	Events      *application.EventService
	Tickets     *application.TicketService
	Escrow      *application.EscrowService
	Credentials *application.CredentialService
}

// New はサービスを組み立て、エスクロー状態を初期化してからルートを登録する
func New(ctx context.Context, repos Repositories, opts Options) (*Server, error) {
	locker := opts.Locker
	if locker == nil {
		locker = application.NewLocalLocker()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}

	escrowService := application.NewEscrowService(
		repos.TxManager, locker, repos.Escrow, repos.Events, repos.Tickets, repos.Credentials, opts.Admin, clk,
	)
	if _, err := escrowService.Init(ctx, opts.CommissionPct); err != nil {
		return nil, fmt.Errorf("エスクローの初期化に失敗: %w", err)
	}

	identityService := application.NewIdentityService(repos.TxManager, locker, repos.Identities, clk)
	eventService := application.NewEventService(
		repos.TxManager, locker, repos.Events, identityService, escrowService, opts.Cache, opts.Admin, clk,
	)
	ticketService := application.NewTicketService(
		repos.TxManager, locker, repos.Tickets, repos.Events, repos.Escrow, opts.Cache, clk,
	)
	credentialService := application.NewCredentialService(repos.Credentials)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e, opts.HTTP)
	if opts.Metrics != nil {
		e.Use(middleware.PrometheusMiddleware(opts.Metrics, "/metrics"))
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(opts.MetricsAuth))
	}

	handler.RegisterRoutes(e, handler.Handlers{
		Identity:   handler.NewIdentityHandler(identityService),
		Event:      handler.NewEventHandler(eventService),
		Ticket:     handler.NewTicketHandler(ticketService),
		Escrow:     handler.NewEscrowHandler(escrowService),
		Credential: handler.NewCredentialHandler(credentialService),
		Health:     handler.NewHealthHandler(opts.HealthChecks),
	}, opts.JWTSecret)

	return &Server{
		Echo:        e,
		Identities:  identityService,
		Events:      eventService,
		Tickets:     ticketService,
		Escrow:      escrowService,
		Credentials: credentialService,
	}, nil
}
