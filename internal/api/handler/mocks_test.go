package handler

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-ticket-escrow/internal/application"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/credential"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/escrow"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/event"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/identity"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/ticket"
)

// MockEventService はEventServiceInterfaceのモック
type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) event(args mock.Arguments) (*event.Event, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

func (m *MockEventService) events(args mock.Arguments) ([]*event.Event, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockEventService) CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error) {
	return m.event(m.Called(ctx, input))
}

func (m *MockEventService) GetEvent(ctx context.Context, id int64) (*event.Event, error) {
	return m.event(m.Called(ctx, id))
}

func (m *MockEventService) ListEvents(ctx context.Context) ([]*event.Event, error) {
	return m.events(m.Called(ctx))
}

func (m *MockEventService) ListPublicEvents(ctx context.Context) ([]*event.Event, error) {
	return m.events(m.Called(ctx))
}

func (m *MockEventService) ListOwnedBy(ctx context.Context, owner common.Address) ([]*event.Event, error) {
	return m.events(m.Called(ctx, owner))
}

func (m *MockEventService) UpdateEvent(ctx context.Context, input application.UpdateEventInput) (*event.Event, error) {
	return m.event(m.Called(ctx, input))
}

func (m *MockEventService) DeleteEvent(ctx context.Context, id int64, caller common.Address) (*event.Event, error) {
	return m.event(m.Called(ctx, id, caller))
}

func (m *MockEventService) ToggleVisibility(ctx context.Context, id int64, caller common.Address) (*event.Event, error) {
	return m.event(m.Called(ctx, id, caller))
}

// MockTicketService はTicketServiceInterfaceのモック
type MockTicketService struct {
	mock.Mock
}

func (m *MockTicketService) BuyTicket(ctx context.Context, input application.BuyTicketInput) (*ticket.Ticket, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Ticket), args.Error(1)
}

func (m *MockTicketService) ListTickets(ctx context.Context, eventID int64) ([]*ticket.Ticket, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ticket.Ticket), args.Error(1)
}

func (m *MockTicketService) ListPurchasedEvents(ctx context.Context, caller common.Address) ([]*event.Event, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*event.Event), args.Error(1)
}

func (m *MockTicketService) CountAvailable(ctx context.Context, eventID int64) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

// MockIdentityService はIdentityServiceInterfaceのモック
type MockIdentityService struct {
	mock.Mock
}

func (m *MockIdentityService) SetIdentity(ctx context.Context, input application.SetIdentityInput) (*identity.Identity, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Identity), args.Error(1)
}

func (m *MockIdentityService) GetIdentity(ctx context.Context, addr common.Address) (*identity.Identity, error) {
	args := m.Called(ctx, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Identity), args.Error(1)
}

// MockEscrowService はEscrowServiceInterfaceのモック
type MockEscrowService struct {
	mock.Mock
}

func (m *MockEscrowService) Admin() common.Address {
	return m.Called().Get(0).(common.Address)
}

func (m *MockEscrowService) Balance(ctx context.Context) (*escrow.State, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*escrow.State), args.Error(1)
}

func (m *MockEscrowService) ListTransfers(ctx context.Context, eventID int64) ([]*escrow.Transfer, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*escrow.Transfer), args.Error(1)
}

func (m *MockEscrowService) Payout(ctx context.Context, eventID int64, caller common.Address) (*application.PayoutResult, error) {
	args := m.Called(ctx, eventID, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.PayoutResult), args.Error(1)
}

// MockCredentialService はCredentialServiceInterfaceのモック
type MockCredentialService struct {
	mock.Mock
}

func (m *MockCredentialService) ListOwnedBy(ctx context.Context, owner common.Address) ([]*credential.Credential, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*credential.Credential), args.Error(1)
}
