package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Options は共通ミドルウェアの設定
type Options struct {
	// AllowOrigins が空の場合はすべてのオリジンを許可する
	AllowOrigins []string
	// BodyLimit はリクエストボディの上限（例: "1M"）。空の場合は制限しない
	BodyLimit string
}

// SetupMiddleware は共通ミドルウェアを設定する
func SetupMiddleware(e *echo.Echo, opts Options) {
	// リクエストID（UUID）
	e.Use(RequestIDMiddleware())

	// 構造化リクエストログ（zap）
	e.Use(RequestLogger())

	// パニックリカバリー
	e.Use(middleware.Recover())

	if opts.BodyLimit != "" {
		e.Use(middleware.BodyLimit(opts.BodyLimit))
	}

	origins := opts.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  origins,
		AllowMethods:  []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodDelete},
		AllowHeaders:  []string{echo.HeaderContentType, echo.HeaderAuthorization, HeaderCallerAddress},
		ExposeHeaders: []string{echo.HeaderXRequestID},
	}))
}
