package event

import (
	"math"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/apperror"
)

var (
	testNow   = time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	testOwner = common.HexToAddress("0x1111111111111111111111111111111111111111")
)

func validDetails() Details {
	return Details{
		Name:         "東京ドームコンサート2025",
		Description:  "年末スペシャルコンサート",
		ImageURL:     "https://example.com/concert.png",
		StartDate:    "2025-12-31",
		FreePrice:    0,
		RegularPrice: 100,
		VIPPrice:     300,
		EndAt:        testNow.Add(30 * 24 * time.Hour),
		Capacity:     2,
	}
}

func TestNewEvent(t *testing.T) {
	d := validDetails()

	e := NewEvent(testOwner, d, testNow)

	assert.Equal(t, d.Name, e.Name)
	assert.Equal(t, d.Description, e.Description)
	assert.Equal(t, d.ImageURL, e.ImageURL)
	assert.Equal(t, d.StartDate, e.StartDate)
	assert.Equal(t, int64(100), e.RegularPrice)
	assert.Equal(t, int64(300), e.VIPPrice)
	assert.Equal(t, d.EndAt, e.EndAt)
	assert.Equal(t, 2, e.Capacity)
	assert.Equal(t, testOwner, e.Owner)
	assert.Equal(t, testNow, e.CreatedAt)
	assert.Zero(t, e.SoldCount)
	assert.True(t, e.PublicDisplay)
	assert.False(t, e.Deleted)
	assert.False(t, e.PaidOut)
	assert.False(t, e.Refunded)
	assert.False(t, e.TicketsMinted)
}

func TestDetails_Validate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(d *Details)
		expectedErr error
	}{
		{name: "有効な入力", modify: func(d *Details) {}},
		{name: "イベント名が空", modify: func(d *Details) { d.Name = "" }, expectedErr: ErrEventNameRequired},
		{name: "説明が空", modify: func(d *Details) { d.Description = "" }, expectedErr: ErrDescriptionRequired},
		{name: "画像URLが空", modify: func(d *Details) { d.ImageURL = "" }, expectedErr: ErrImageURLRequired},
		{name: "開始日が空", modify: func(d *Details) { d.StartDate = "" }, expectedErr: ErrStartDateRequired},
		{name: "定員が0", modify: func(d *Details) { d.Capacity = 0 }, expectedErr: ErrInvalidCapacity},
		{name: "定員が負", modify: func(d *Details) { d.Capacity = -1 }, expectedErr: ErrInvalidCapacity},
		{name: "価格が負", modify: func(d *Details) { d.VIPPrice = -1 }, expectedErr: ErrNegativePrice},
		{
			name:        "全ての価格が0",
			modify:      func(d *Details) { d.FreePrice, d.RegularPrice, d.VIPPrice = 0, 0, 0 },
			expectedErr: ErrPriceRequired,
		},
		{name: "無料価格のみ設定", modify: func(d *Details) { d.FreePrice, d.RegularPrice, d.VIPPrice = 5, 0, 0 }},
		{name: "終了時刻が現在", modify: func(d *Details) { d.EndAt = testNow }, expectedErr: ErrInvalidEndTime},
		{name: "終了時刻が過去", modify: func(d *Details) { d.EndAt = testNow.Add(-time.Second) }, expectedErr: ErrInvalidEndTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDetails()
			tt.modify(&d)
			err := d.Validate(testNow)
			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestEvent_Update(t *testing.T) {
	t.Run("項目を上書きし販売数とフラグは維持する", func(t *testing.T) {
		e := NewEvent(testOwner, validDetails(), testNow)
		e.SoldCount = 1
		e.PublicDisplay = false

		d := validDetails()
		d.Name = "変更後"
		d.Capacity = 10
		d.RegularPrice = 250
		require.NoError(t, e.Update(d, testNow))

		assert.Equal(t, "変更後", e.Name)
		assert.Equal(t, 10, e.Capacity)
		assert.Equal(t, int64(250), e.RegularPrice)
		assert.Equal(t, 1, e.SoldCount)
		assert.False(t, e.PublicDisplay)
	})

	t.Run("検証エラーの場合は変更しない", func(t *testing.T) {
		e := NewEvent(testOwner, validDetails(), testNow)
		d := validDetails()
		d.Name = ""
		d.Capacity = 99

		err := e.Update(d, testNow)
		assert.ErrorIs(t, err, ErrEventNameRequired)
		assert.Equal(t, 2, e.Capacity)
	})

	t.Run("販売数未満の定員にはできない", func(t *testing.T) {
		e := NewEvent(testOwner, validDetails(), testNow)
		e.SoldCount = 2
		d := validDetails()
		d.Capacity = 1

		assert.ErrorIs(t, e.Update(d, testNow), ErrCapacityBelowSold)
	})

	t.Run("支払い済みは更新できない", func(t *testing.T) {
		e := NewEvent(testOwner, validDetails(), testNow)
		e.TicketsMinted = true
		e.PaidOut = true

		err := e.Update(validDetails(), testNow)
		assert.ErrorIs(t, err, ErrAlreadyPaidOut)
		assert.ErrorIs(t, err, apperror.ErrAlreadySettled)
	})
}

func TestEvent_RecordSale(t *testing.T) {
	e := NewEvent(testOwner, validDetails(), testNow)

	require.NoError(t, e.RecordSale())
	require.NoError(t, e.RecordSale())
	assert.Equal(t, 2, e.SoldCount)
	assert.True(t, e.IsSoldOut())
	assert.Equal(t, 0, e.Available())

	err := e.RecordSale()
	assert.ErrorIs(t, err, ErrSoldOut)
	assert.ErrorIs(t, err, apperror.ErrSoldOut)
	assert.Equal(t, 2, e.SoldCount)
}

func TestEvent_ToggleVisibility(t *testing.T) {
	e := NewEvent(testOwner, validDetails(), testNow)

	e.ToggleVisibility()
	assert.False(t, e.PublicDisplay)
	e.ToggleVisibility()
	assert.True(t, e.PublicDisplay)
}

func TestEvent_SettlementTransitions(t *testing.T) {
	t.Run("返金後は削除でき、支払いはできない", func(t *testing.T) {
		e := NewEvent(testOwner, validDetails(), testNow)
		require.NoError(t, e.CheckDeletable())
		require.NoError(t, e.MarkRefunded())
		require.NoError(t, e.MarkDeleted())

		assert.True(t, e.Refunded)
		assert.True(t, e.Deleted)
		assert.ErrorIs(t, e.CheckDeletable(), ErrAlreadyRefunded)

		e.MarkTicketsMinted()
		assert.ErrorIs(t, e.MarkPaidOut(), ErrAlreadyRefunded)
		assert.False(t, e.PaidOut)
	})

	t.Run("返金前は削除できない", func(t *testing.T) {
		e := NewEvent(testOwner, validDetails(), testNow)
		assert.ErrorIs(t, e.MarkDeleted(), ErrNotRefunded)
	})

	t.Run("発行前は支払いできない", func(t *testing.T) {
		e := NewEvent(testOwner, validDetails(), testNow)
		assert.ErrorIs(t, e.MarkPaidOut(), ErrTicketsNotMinted)
	})

	t.Run("支払い後は返金できない", func(t *testing.T) {
		e := NewEvent(testOwner, validDetails(), testNow)
		e.MarkTicketsMinted()
		require.NoError(t, e.MarkPaidOut())

		assert.ErrorIs(t, e.CheckDeletable(), ErrAlreadyPaidOut)
		assert.ErrorIs(t, e.MarkRefunded(), ErrAlreadyPaidOut)
		assert.ErrorIs(t, e.RecordSale(), ErrAlreadyPaidOut)
		assert.False(t, e.Refunded)
	})
}

func TestEvent_HasEnded(t *testing.T) {
	e := NewEvent(testOwner, validDetails(), testNow)

	assert.False(t, e.HasEnded(testNow))
	assert.False(t, e.HasEnded(e.EndAt))
	assert.True(t, e.HasEnded(e.EndAt.Add(time.Second)))
}

func TestEvent_Revenue(t *testing.T) {
	e := NewEvent(testOwner, validDetails(), testNow)
	e.SoldCount = 3

	// VIP価格に関係なく通常価格 × 販売数
	revenue, err := e.Revenue()
	require.NoError(t, err)
	assert.Equal(t, int64(300), revenue)

	t.Run("桁あふれする場合はエラー", func(t *testing.T) {
		e := NewEvent(testOwner, validDetails(), testNow)
		e.RegularPrice = math.MaxInt64/2 + 1
		e.SoldCount = 2

		_, err := e.Revenue()
		assert.ErrorIs(t, err, ErrRevenueOverflow)
		assert.ErrorIs(t, err, apperror.ErrInvalidArgument)
	})

	t.Run("上限ちょうどは計算できる", func(t *testing.T) {
		e := NewEvent(testOwner, validDetails(), testNow)
		e.RegularPrice = math.MaxInt64
		e.SoldCount = 1

		revenue, err := e.Revenue()
		require.NoError(t, err)
		assert.Equal(t, int64(math.MaxInt64), revenue)
	})
}

func TestEvent_IsOwner(t *testing.T) {
	e := NewEvent(testOwner, validDetails(), testNow)

	assert.True(t, e.IsOwner(testOwner))
	assert.False(t, e.IsOwner(common.HexToAddress("0x2222222222222222222222222222222222222222")))
}
