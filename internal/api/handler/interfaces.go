package handler

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/sanosuguru/go-ticket-escrow/internal/application"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/credential"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/escrow"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/event"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/identity"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/ticket"
)

// IdentityServiceInterface はアイデンティティサービスのインターフェース
type IdentityServiceInterface interface {
	SetIdentity(ctx context.Context, input application.SetIdentityInput) (*identity.Identity, error)
	GetIdentity(ctx context.Context, addr common.Address) (*identity.Identity, error)
}

// EventServiceInterface はイベントサービスのインターフェース
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error)
	GetEvent(ctx context.Context, id int64) (*event.Event, error)
	ListEvents(ctx context.Context) ([]*event.Event, error)
	ListPublicEvents(ctx context.Context) ([]*event.Event, error)
	ListOwnedBy(ctx context.Context, owner common.Address) ([]*event.Event, error)
	UpdateEvent(ctx context.Context, input application.UpdateEventInput) (*event.Event, error)
	DeleteEvent(ctx context.Context, id int64, caller common.Address) (*event.Event, error)
	ToggleVisibility(ctx context.Context, id int64, caller common.Address) (*event.Event, error)
}

// TicketServiceInterface はチケットサービスのインターフェース
type TicketServiceInterface interface {
	BuyTicket(ctx context.Context, input application.BuyTicketInput) (*ticket.Ticket, error)
	ListTickets(ctx context.Context, eventID int64) ([]*ticket.Ticket, error)
	ListPurchasedEvents(ctx context.Context, caller common.Address) ([]*event.Event, error)
	CountAvailable(ctx context.Context, eventID int64) (int, error)
}

// EscrowServiceInterface はエスクローサービスのインターフェース
type EscrowServiceInterface interface {
	Admin() common.Address
	Balance(ctx context.Context) (*escrow.State, error)
	ListTransfers(ctx context.Context, eventID int64) ([]*escrow.Transfer, error)
	Payout(ctx context.Context, eventID int64, caller common.Address) (*application.PayoutResult, error)
}

// CredentialServiceInterface はクレデンシャル参照サービスのインターフェース
type CredentialServiceInterface interface {
	ListOwnedBy(ctx context.Context, owner common.Address) ([]*credential.Credential, error)
}
