package handler

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-ticket-escrow/internal/api/middleware"
)

// eventIDParam はパスの :id をイベントIDとして読む
func eventIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "イベントIDの形式が不正です")
	}
	return id, nil
}

// callerOf は認証ミドルウェアが特定した呼び出し元を返す
func callerOf(c echo.Context) (common.Address, error) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return common.Address{}, echo.NewHTTPError(http.StatusUnauthorized, "呼び出し元アドレスが必要です")
	}
	return caller, nil
}
