package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-ticket-escrow/internal/api/middleware"
)

// Handlers はルーティングに登録するハンドラー一式
type Handlers struct {
	Identity   *IdentityHandler
	Event      *EventHandler
	Ticket     *TicketHandler
	Escrow     *EscrowHandler
	Credential *CredentialHandler
	Health     *HealthHandler
}

// RegisterRoutes は /health と /api/v1 配下のルートを登録する
// 状態を変更するルートは呼び出し元アドレスを必須とする
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string) {
	e.GET("/health", h.Health.Check)

	v1 := e.Group("/api/v1", middleware.CallerAuth(jwtSecret))
	auth := middleware.RequireCaller()

	v1.GET("/health", h.Health.Check)

	v1.PUT("/identity", h.Identity.Set, auth)
	v1.GET("/identities/:address", h.Identity.Get)

	v1.POST("/events", h.Event.Create, auth)
	v1.GET("/events", h.Event.List)
	v1.GET("/events/public", h.Event.ListPublic)
	v1.GET("/events/:id", h.Event.GetByID)
	v1.PUT("/events/:id", h.Event.Update, auth)
	v1.DELETE("/events/:id", h.Event.Delete, auth)
	v1.POST("/events/:id/visibility", h.Event.ToggleVisibility, auth)

	v1.POST("/events/:id/tickets", h.Ticket.Buy, auth)
	v1.GET("/events/:id/tickets", h.Ticket.ListByEvent)
	v1.GET("/events/:id/tickets/available/count", h.Ticket.CountAvailable)

	v1.POST("/events/:id/payout", h.Escrow.Payout, auth)
	v1.GET("/events/:id/transfers", h.Escrow.ListTransfers)
	v1.GET("/escrow", h.Escrow.Get)

	v1.GET("/me/events", h.Event.ListMine, auth)
	v1.GET("/me/purchased-events", h.Ticket.ListPurchasedEvents, auth)
	v1.GET("/me/credentials", h.Credential.ListMine, auth)
}
