package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/apperror"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{"不正な引数", apperror.New(apperror.ErrInvalidArgument, "x"), http.StatusBadRequest, "invalid_argument"},
		{"支払い不足", apperror.New(apperror.ErrInsufficientPayment, "x"), http.StatusBadRequest, "insufficient_payment"},
		{"アイデンティティ未登録", apperror.New(apperror.ErrIdentityRequired, "x"), http.StatusForbidden, "identity_required"},
		{"権限なし", apperror.New(apperror.ErrUnauthorized, "x"), http.StatusForbidden, "unauthorized"},
		{"見つからない", apperror.New(apperror.ErrNotFound, "x"), http.StatusNotFound, "not_found"},
		{"精算済み", apperror.New(apperror.ErrAlreadySettled, "x"), http.StatusConflict, "already_settled"},
		{"完売", apperror.New(apperror.ErrSoldOut, "x"), http.StatusConflict, "sold_out"},
		{"開催中", apperror.New(apperror.ErrOngoing, "x"), http.StatusConflict, "ongoing"},
		{"送金失敗", apperror.New(apperror.ErrTransferFailed, "x"), http.StatusBadGateway, "transfer_failed"},
		{"ラップされた種別", fmt.Errorf("購入に失敗: %w", apperror.New(apperror.ErrSoldOut, "x")), http.StatusConflict, "sold_out"},
		{"種別なし", errors.New("boom"), http.StatusInternalServerError, ""},
		{"HTTPError", echo.NewHTTPError(http.StatusUnauthorized, "x"), http.StatusUnauthorized, ""},
		{"内部エラー付き HTTPError", ToHTTPError(apperror.New(apperror.ErrNotFound, "x")), http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, kind := StatusOf(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestToHTTPError(t *testing.T) {
	t.Run("ドメインエラーのメッセージを返す", func(t *testing.T) {
		he := ToHTTPError(apperror.New(apperror.ErrSoldOut, "完売しました"))
		assert.Equal(t, http.StatusConflict, he.Code)
		assert.Equal(t, "完売しました", he.Message)
	})

	t.Run("種別のないエラーは詳細を隠す", func(t *testing.T) {
		he := ToHTTPError(errors.New("pq: connection refused"))
		assert.Equal(t, http.StatusInternalServerError, he.Code)
		assert.Equal(t, internalErrorMessage, he.Message)
		assert.EqualError(t, he.Internal, "pq: connection refused")
	})

	t.Run("HTTPError はそのまま返す", func(t *testing.T) {
		orig := echo.NewHTTPError(http.StatusTeapot, "teapot")
		assert.Same(t, orig, ToHTTPError(orig))
	})
}

func TestCustomHTTPErrorHandler(t *testing.T) {
	serve := func(err error) (*httptest.ResponseRecorder, ErrorResponse) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		CustomHTTPErrorHandler(err, c)

		var body ErrorResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		return rec, body
	}

	t.Run("ドメインエラー", func(t *testing.T) {
		rec, body := serve(apperror.New(apperror.ErrOngoing, "まだ終了していません"))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "まだ終了していません", body.Error)
		assert.Equal(t, "ongoing", body.Kind)
		assert.Equal(t, http.StatusConflict, body.Code)
	})

	t.Run("HTTPError", func(t *testing.T) {
		rec, body := serve(echo.NewHTTPError(http.StatusBadRequest, "bad"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "bad", body.Error)
		assert.Empty(t, body.Kind)
	})

	t.Run("文字列でないメッセージはステータス文言にする", func(t *testing.T) {
		rec, body := serve(echo.NewHTTPError(http.StatusNotFound, map[string]string{"a": "b"}))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, http.StatusText(http.StatusNotFound), body.Error)
	})

	t.Run("内部エラーの詳細は返さない", func(t *testing.T) {
		rec, body := serve(errors.New("pq: connection refused"))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, internalErrorMessage, body.Error)
	})

	t.Run("レスポンス送信済みなら何もしない", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		require.NoError(t, c.String(http.StatusOK, "done"))

		CustomHTTPErrorHandler(errors.New("late"), c)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "done", rec.Body.String())
	})
}
