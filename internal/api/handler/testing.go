package handler

import (
	"io"
	"net/http/httptest"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-ticket-escrow/internal/api"
	"github.com/sanosuguru/go-ticket-escrow/internal/api/middleware"
)

// NewTestEcho はテスト用のEchoインスタンスを作成する
func NewTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	return e
}

// NewTestContext はハンドラーを直接呼ぶためのコンテキストを作成する
// caller がゼロアドレスの場合は匿名リクエストになる
func NewTestContext(e *echo.Echo, method, target, body string, caller common.Address) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if caller != (common.Address{}) {
		middleware.SetCaller(c, caller)
	}
	return c, rec
}
