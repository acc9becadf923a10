package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-ticket-escrow/internal/application"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/identity"
)

func TestIdentityHandler_Set(t *testing.T) {
	e := NewTestEcho()

	t.Run("呼び出し元のプロフィールを登録する", func(t *testing.T) {
		mockService := new(MockIdentityService)
		saved := &identity.Identity{
			Address: ownerAddr, UID: 18446744073709551615,
			Name: "Alice", Bio: "bio", Handle: "@alice",
			CreatedAt: testNow, UpdatedAt: testNow,
		}
		mockService.On("SetIdentity", mock.Anything, application.SetIdentityInput{
			Caller: ownerAddr, Name: "Alice", Bio: "bio", Handle: "@alice",
		}).Return(saved, nil)

		h := NewIdentityHandler(mockService)
		c, rec := NewTestContext(e, http.MethodPut, "/", `{"name":"Alice","bio":"bio","handle":"@alice"}`, ownerAddr)

		require.NoError(t, h.Set(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp IdentityResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, ownerAddr.Hex(), resp.Address)
		// 64bit の UID は文字列で正確に返る
		assert.Equal(t, "18446744073709551615", resp.UID)
		mockService.AssertExpectations(t)
	})

	t.Run("呼び出し元がなければ401", func(t *testing.T) {
		h := NewIdentityHandler(new(MockIdentityService))
		c, _ := NewTestContext(e, http.MethodPut, "/", `{"name":"Alice"}`, common.Address{})

		assertHTTPError(t, h.Set(c), http.StatusUnauthorized)
	})
}

func TestIdentityHandler_Get(t *testing.T) {
	e := NewTestEcho()

	t.Run("登録済みのアイデンティティを返す", func(t *testing.T) {
		mockService := new(MockIdentityService)
		mockService.On("GetIdentity", mock.Anything, ownerAddr).Return(&identity.Identity{Address: ownerAddr, Name: "Alice"}, nil)

		h := NewIdentityHandler(mockService)
		c, rec := NewTestContext(e, http.MethodGet, "/", "", common.Address{})
		c.SetParamNames("address")
		c.SetParamValues("0x1111111111111111111111111111111111111111")

		require.NoError(t, h.Get(c))
		assert.Contains(t, rec.Body.String(), `"name":"Alice"`)
	})

	t.Run("未登録は404", func(t *testing.T) {
		mockService := new(MockIdentityService)
		mockService.On("GetIdentity", mock.Anything, buyerAddr).Return(nil, identity.ErrIdentityNotFound)

		h := NewIdentityHandler(mockService)
		c, _ := NewTestContext(e, http.MethodGet, "/", "", common.Address{})
		c.SetParamNames("address")
		c.SetParamValues(buyerAddr.Hex())

		assertHTTPError(t, h.Get(c), http.StatusNotFound)
	})

	t.Run("アドレス形式でなければ400", func(t *testing.T) {
		h := NewIdentityHandler(new(MockIdentityService))
		c, _ := NewTestContext(e, http.MethodGet, "/", "", common.Address{})
		c.SetParamNames("address")
		c.SetParamValues("alice")

		assertHTTPError(t, h.Get(c), http.StatusBadRequest)
	})
}
