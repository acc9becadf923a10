package application

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/event"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/ticket"
)

// TestBenchmark_LargeScalePayout は大量チケットの購入と精算の処理時間を計測する
func TestBenchmark_LargeScalePayout(t *testing.T) {
	if testing.Short() {
		t.Skip("大規模ベンチマークテストはshortモードではスキップ")
	}

	const (
		capacity = 10000
		workers  = 50
	)

	env := setupTestEnv(t)
	e := env.createEvent(t, ownerAddr, capacity)
	ctx := context.Background()

	t.Log("=== 1万枚の並行購入開始 ===")
	startBuy := time.Now()

	var (
		wg      sync.WaitGroup
		success int64
		soldOut int64
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			addr := common.HexToAddress(fmt.Sprintf("0x%040x", 0x1000+w))
			// 定員を超える数を購入しようとする
			for i := 0; i < capacity/workers+10; i++ {
				_, err := env.tickets.BuyTicket(ctx, BuyTicketInput{
					EventID:   e.ID,
					Tier:      ticket.TierRegular,
					PaidValue: 100,
					Caller:    addr,
				})
				if err == nil {
					atomic.AddInt64(&success, 1)
				} else if assert.ErrorIs(t, err, event.ErrSoldOut) {
					atomic.AddInt64(&soldOut, 1)
				}
			}
		}(w)
	}
	wg.Wait()
	t.Logf("購入: %d件成功, %d件完売 (%v)", success, soldOut, time.Since(startBuy))

	assert.Equal(t, int64(capacity), success)
	assert.Equal(t, int64(workers*10), soldOut)
	assert.Equal(t, int64(capacity*100), env.balance(t))

	t.Log("=== 精算開始 ===")
	env.endEvent(t, e)
	startPayout := time.Now()
	res, err := env.escrow.Payout(ctx, e.ID, ownerAddr)
	require.NoError(t, err)
	t.Logf("精算: クレデンシャル%d件発行 (%v)", len(res.CredentialIDs), time.Since(startPayout))

	assert.Len(t, res.CredentialIDs, capacity)
	assert.Equal(t, int64(0), env.balance(t))
	assert.True(t, env.event(t, e.ID).TicketsMinted)
}
