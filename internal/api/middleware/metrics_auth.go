package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-escrow/internal/config"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/logger"
)

const metricsRealm = "metrics"

// MetricsBasicAuth は /metrics 用の Basic 認証ミドルウェア
// ユーザー名とパスワードの両方が設定されていない場合は認証しない
func MetricsBasicAuth(cfg config.MetricsConfig) echo.MiddlewareFunc {
	if !cfg.AuthEnabled() {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	user, pass := []byte(cfg.User), []byte(cfg.Password)
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm: metricsRealm,
		Validator: func(username, password string, c echo.Context) (bool, error) {
			// 両方を必ず比較して所要時間を揃える
			userOK := subtle.ConstantTimeCompare([]byte(username), user)
			passOK := subtle.ConstantTimeCompare([]byte(password), pass)
			if userOK&passOK != 1 {
				logger.FromContext(c.Request().Context()).Warn("メトリクスの認証に失敗",
					zap.String("remote_ip", c.RealIP()),
				)
				return false, nil
			}
			return true, nil
		},
	})
}
