package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/apperror"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/escrow"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/event"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/ticket"
)

// MockIssuer implements credential.Issuer
type MockIssuer struct {
	mock.Mock
}

func (m *MockIssuer) Issue(ctx context.Context, owner common.Address, eventID, ticketID int64, issuedAt time.Time) (uint64, error) {
	args := m.Called(ctx, owner, eventID, ticketID, issuedAt)
	return args.Get(0).(uint64), args.Error(1)
}

// failingEscrowRepo は指定回数目以降の送金記録を失敗させる
type failingEscrowRepo struct {
	escrow.Repository
	failFrom int
	calls    int
}

func (r *failingEscrowRepo) EnqueueTransfer(ctx context.Context, t *escrow.Transfer) error {
	r.calls++
	if r.calls >= r.failFrom {
		return errors.New("disk full")
	}
	return r.Repository.EnqueueTransfer(ctx, t)
}

func TestEscrowService_Payout_Guards(t *testing.T) {
	ctx := context.Background()

	t.Run("存在しないイベントはNotFound", func(t *testing.T) {
		env := setupTestEnv(t)
		_, err := env.escrow.Payout(ctx, 3, ownerAddr)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("終了前はOngoing", func(t *testing.T) {
		env := setupTestEnv(t)
		e := env.createEvent(t, ownerAddr, 2)
		env.buy(t, e.ID, buyerAddr, ticket.TierRegular, 100)

		_, err := env.escrow.Payout(ctx, e.ID, ownerAddr)
		assert.ErrorIs(t, err, apperror.ErrOngoing)
	})

	t.Run("終了時刻ちょうどはOngoing", func(t *testing.T) {
		env := setupTestEnv(t)
		e := env.createEvent(t, ownerAddr, 2)
		env.clock.Set(e.EndAt)

		_, err := env.escrow.Payout(ctx, e.ID, ownerAddr)
		assert.ErrorIs(t, err, event.ErrEventOngoing)
	})

	t.Run("オーナーでも管理者でもなければUnauthorized", func(t *testing.T) {
		env := setupTestEnv(t)
		e := env.createEvent(t, ownerAddr, 2)
		env.endEvent(t, e)

		_, err := env.escrow.Payout(ctx, e.ID, buyerAddr)
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("終了前の判定は権限より先", func(t *testing.T) {
		env := setupTestEnv(t)
		e := env.createEvent(t, ownerAddr, 2)

		_, err := env.escrow.Payout(ctx, e.ID, buyerAddr)
		assert.ErrorIs(t, err, apperror.ErrOngoing)
	})

	t.Run("管理者は支払いを実行できる", func(t *testing.T) {
		env := setupTestEnv(t)
		e := env.createEvent(t, ownerAddr, 2)
		env.buy(t, e.ID, buyerAddr, ticket.TierRegular, 100)
		env.endEvent(t, e)

		result, err := env.escrow.Payout(ctx, e.ID, adminAddr)
		require.NoError(t, err)
		// オーナーへの送金先は呼び出し元ではなくオーナー
		assert.Equal(t, ownerAddr, result.Transfers[0].Recipient)
	})
}

func TestEscrowService_Payout_RevenueUsesRegularPrice(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	e := env.createEvent(t, ownerAddr, 5)

	env.buy(t, e.ID, buyerAddr, ticket.TierVIP, 300)
	env.buy(t, e.ID, buyerAddr, ticket.TierFree, 0)
	env.buy(t, e.ID, buyerAddr, ticket.TierRegular, 100)
	require.Equal(t, int64(400), env.balance(t))

	env.endEvent(t, e)
	result, err := env.escrow.Payout(ctx, e.ID, ownerAddr)
	require.NoError(t, err)

	// 通常価格 × 販売数
	assert.Equal(t, int64(300), result.Revenue)
	assert.Equal(t, int64(15), result.Fee)
	assert.Equal(t, int64(285), result.OwnerShare)
	assert.Equal(t, int64(100), env.balance(t))
}

func TestEscrowService_Payout_FeeTruncates(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.register(t, ownerAddr)

	in := validEventInput(ownerAddr, 1)
	in.RegularPrice = 33
	e, err := env.events.CreateEvent(ctx, in)
	require.NoError(t, err)
	env.buy(t, e.ID, buyerAddr, ticket.TierRegular, 33)

	env.endEvent(t, e)
	result, err := env.escrow.Payout(ctx, e.ID, ownerAddr)
	require.NoError(t, err)

	// 33 * 5 / 100 = 1.65 は切り捨て
	assert.Equal(t, int64(1), result.Fee)
	assert.Equal(t, int64(32), result.OwnerShare)
}

func TestEscrowService_Payout_CredentialIDsAreMonotonic(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	first := env.createEvent(t, ownerAddr, 3)
	second := env.createEvent(t, otherAddr, 3)
	env.buy(t, first.ID, buyerAddr, ticket.TierRegular, 100)
	env.buy(t, second.ID, buyerAddr, ticket.TierRegular, 100)
	env.buy(t, first.ID, otherAddr, ticket.TierRegular, 100)

	env.endEvent(t, first)
	r1, err := env.escrow.Payout(ctx, first.ID, ownerAddr)
	require.NoError(t, err)
	r2, err := env.escrow.Payout(ctx, second.ID, otherAddr)
	require.NoError(t, err)

	ids := append(append([]uint64{}, r1.CredentialIDs...), r2.CredentialIDs...)
	require.Len(t, ids, 3)
	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i], ids[i-1])
	}
}

func TestEscrowService_Payout_RollsBackOnIssuerFailure(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	e := env.createEvent(t, ownerAddr, 3)
	env.buy(t, e.ID, buyerAddr, ticket.TierRegular, 100)
	env.buy(t, e.ID, otherAddr, ticket.TierRegular, 100)

	issuer := new(MockIssuer)
	issuer.On("Issue", mock.Anything, buyerAddr, e.ID, int64(0), mock.Anything).Return(uint64(1), nil)
	issuer.On("Issue", mock.Anything, otherAddr, e.ID, int64(1), mock.Anything).Return(uint64(0), errors.New("issuer unavailable"))
	env.escrow.issuer = issuer

	env.endEvent(t, e)
	_, err := env.escrow.Payout(ctx, e.ID, ownerAddr)
	require.Error(t, err)
	issuer.AssertExpectations(t)

	got := env.event(t, e.ID)
	assert.False(t, got.PaidOut)
	assert.False(t, got.TicketsMinted)

	tickets, err := env.tickets.ListTickets(ctx, e.ID)
	require.NoError(t, err)
	for _, tk := range tickets {
		assert.False(t, tk.CredentialMinted)
	}
	assert.Equal(t, int64(200), env.balance(t))

	transfers, err := env.escrow.ListTransfers(ctx, e.ID)
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestEscrowService_Payout_RollsBackOnTransferFailure(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	e := env.createEvent(t, ownerAddr, 3)
	env.buy(t, e.ID, buyerAddr, ticket.TierRegular, 100)

	// オーナーへの送金は記録でき、手数料の送金で失敗する
	env.escrow.escrowRepo = &failingEscrowRepo{Repository: env.store.Escrow(), failFrom: 2}

	env.endEvent(t, e)
	_, err := env.escrow.Payout(ctx, e.ID, ownerAddr)
	assert.ErrorIs(t, err, apperror.ErrTransferFailed)

	got := env.event(t, e.ID)
	assert.False(t, got.PaidOut)
	assert.False(t, got.TicketsMinted)
	assert.Equal(t, int64(100), env.balance(t))

	transfers, err := env.store.Escrow().ListTransfersByEventID(ctx, e.ID)
	require.NoError(t, err)
	assert.Empty(t, transfers, "先に記録したオーナーへの送金も取り消される")

	creds, err := env.store.Credentials().ListByOwner(ctx, buyerAddr)
	require.NoError(t, err)
	assert.Empty(t, creds)
}

func TestEscrowService_Refund_RollsBackOnTransferFailure(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	e := env.createEvent(t, ownerAddr, 3)
	env.buy(t, e.ID, buyerAddr, ticket.TierRegular, 100)
	env.buy(t, e.ID, otherAddr, ticket.TierRegular, 100)
	env.buy(t, e.ID, buyerAddr, ticket.TierVIP, 300)

	env.escrow.escrowRepo = &failingEscrowRepo{Repository: env.store.Escrow(), failFrom: 3}

	_, err := env.events.DeleteEvent(ctx, e.ID, ownerAddr)
	assert.ErrorIs(t, err, apperror.ErrTransferFailed)

	got := env.event(t, e.ID)
	assert.False(t, got.Deleted)
	assert.False(t, got.Refunded)

	tickets, err := env.tickets.ListTickets(ctx, e.ID)
	require.NoError(t, err)
	for _, tk := range tickets {
		assert.False(t, tk.Refunded)
	}
	assert.Equal(t, int64(500), env.balance(t))
}

func TestEscrowService_PayTo(t *testing.T) {
	ctx := context.Background()
	env := setupTestEnv(t)

	t.Run("ゼロアドレスへの送金はTransferFailed", func(t *testing.T) {
		_, err := env.escrow.PayTo(ctx, common.Address{}, 10, escrow.ReasonRefund, 1, nil)
		assert.ErrorIs(t, err, apperror.ErrTransferFailed)
	})

	t.Run("負の金額はTransferFailed", func(t *testing.T) {
		_, err := env.escrow.PayTo(ctx, buyerAddr, -1, escrow.ReasonRefund, 1, nil)
		assert.ErrorIs(t, err, apperror.ErrTransferFailed)
	})

	t.Run("記録の失敗はTransferFailed", func(t *testing.T) {
		env.escrow.escrowRepo = &failingEscrowRepo{Repository: env.store.Escrow(), failFrom: 1}
		_, err := env.escrow.PayTo(ctx, buyerAddr, 10, escrow.ReasonRefund, 1, nil)
		assert.ErrorIs(t, err, apperror.ErrTransferFailed)
	})
}

func TestEscrowService_Init_KeepsCommission(t *testing.T) {
	env := setupTestEnv(t)

	st, err := env.escrow.Init(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, testCommissionPct, st.CommissionPct)

	_, err = env.escrow.Init(context.Background(), 101)
	assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
}
