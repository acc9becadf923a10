package handler

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/event"
)

var (
	ownerAddr = common.HexToAddress("0x1111111111111111111111111111111111111111")
	buyerAddr = common.HexToAddress("0x2222222222222222222222222222222222222222")
	adminAddr = common.HexToAddress("0xaAaAaAaaAaAaAaaAaAAAAAAAAaaaAaAaAaaAaaAa")
	testNow   = time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
)

func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

// assertHTTPError はハンドラーが指定コードの HTTPError を返したことを確認する
func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "HTTPError ではありません: %v", err)
	assert.Equal(t, code, he.Code)
}

func sampleEvent(id int64) *event.Event {
	return &event.Event{
		ID:            id,
		Name:          "テストライブ",
		Description:   "テスト説明",
		ImageURL:      "https://example.com/live.png",
		StartDate:     "2025-12-02",
		Owner:         ownerAddr,
		RegularPrice:  100,
		VIPPrice:      300,
		EndAt:         testNow.Add(24 * time.Hour),
		Capacity:      10,
		CreatedAt:     testNow,
		PublicDisplay: true,
	}
}

