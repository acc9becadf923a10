package application

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/event"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-escrow/internal/infrastructure/memory"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/clock"
)

var (
	testNow   = time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	ownerAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	buyerAddr = common.HexToAddress("0x2222222222222222222222222222222222222222")
	otherAddr = common.HexToAddress("0x3333333333333333333333333333333333333333")
	adminAddr = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
)

const testCommissionPct = 5

// testEnv はインメモリストアと固定時計で組み立てたサービス一式
type testEnv struct {
	store      *memory.Store
	clock      *clock.Manual
	identities *IdentityService
	events     *EventService
	tickets    *TicketService
	escrow     *EscrowService
	creds      *CredentialService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	locker := NewLocalLocker()
	clk := clock.NewManual(testNow)

	escrowService := NewEscrowService(store, locker, store.Escrow(), store.Events(), store.Tickets(), store.Credentials(), adminAddr, clk)
	_, err := escrowService.Init(context.Background(), testCommissionPct)
	require.NoError(t, err)

	identityService := NewIdentityService(store, locker, store.Identities(), clk)

	return &testEnv{
		store:      store,
		clock:      clk,
		identities: identityService,
		events:     NewEventService(store, locker, store.Events(), identityService, escrowService, nil, adminAddr, clk),
		tickets:    NewTicketService(store, locker, store.Tickets(), store.Events(), store.Escrow(), nil, clk),
		escrow:     escrowService,
		creds:      NewCredentialService(store.Credentials()),
	}
}

func validEventInput(owner common.Address, capacity int) CreateEventInput {
	return CreateEventInput{
		Caller:       owner,
		Name:         "Go Conference 2025",
		Description:  "年末のGoカンファレンス",
		ImageURL:     "https://example.com/gocon.png",
		StartDate:    "2025-12-24",
		FreePrice:    0,
		RegularPrice: 100,
		VIPPrice:     300,
		EndAt:        testNow.Add(24 * time.Hour),
		Capacity:     capacity,
	}
}

func (env *testEnv) register(t *testing.T, addr common.Address) {
	t.Helper()
	_, err := env.identities.SetIdentity(context.Background(), SetIdentityInput{
		Caller: addr,
		Name:   "user",
		Handle: "@user",
	})
	require.NoError(t, err)
}

// createEvent はオーナーを登録してイベントを作成する
func (env *testEnv) createEvent(t *testing.T, owner common.Address, capacity int) *event.Event {
	t.Helper()
	env.register(t, owner)
	e, err := env.events.CreateEvent(context.Background(), validEventInput(owner, capacity))
	require.NoError(t, err)
	return e
}

func (env *testEnv) buy(t *testing.T, eventID int64, buyer common.Address, tier ticket.Tier, paid int64) *ticket.Ticket {
	t.Helper()
	tk, err := env.tickets.BuyTicket(context.Background(), BuyTicketInput{
		EventID:   eventID,
		Tier:      tier,
		PaidValue: paid,
		Caller:    buyer,
	})
	require.NoError(t, err)
	return tk
}

func (env *testEnv) balance(t *testing.T) int64 {
	t.Helper()
	st, err := env.escrow.Balance(context.Background())
	require.NoError(t, err)
	return st.Balance
}

func (env *testEnv) event(t *testing.T, id int64) *event.Event {
	t.Helper()
	e, err := env.store.Events().GetByID(context.Background(), id)
	require.NoError(t, err)
	return e
}

// endEvent は時計をイベント終了後まで進める
func (env *testEnv) endEvent(t *testing.T, e *event.Event) {
	t.Helper()
	env.clock.Set(e.EndAt.Add(time.Second))
}
