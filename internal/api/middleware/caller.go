package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// HeaderCallerAddress は JWT を使わない構成で呼び出し元アドレスを渡すヘッダー
const HeaderCallerAddress = "X-Caller-Address"

const callerContextKey = "caller"

// CallerAuth は呼び出し元アドレスを特定するミドルウェア
//
// secret が設定されている場合は Authorization: Bearer の HS256 トークンを検証し、
// sub クレームをアドレスとして扱う。未設定の場合は X-Caller-Address ヘッダーを信頼する。
// 認証情報がないリクエストは匿名として通し、必須かどうかは RequireCaller で判定する。
func CallerAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var (
				caller common.Address
				err    error
				found  bool
			)
			if secret != "" {
				caller, found, err = callerFromToken(c.Request(), secret)
			} else {
				caller, found, err = callerFromHeader(c.Request())
			}
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			if found {
				SetCaller(c, caller)
			}
			return next(c)
		}
	}
}

// RequireCaller は呼び出し元が特定できないリクエストを 401 で拒否する
func RequireCaller() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := CallerFrom(c); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "呼び出し元アドレスが必要です")
			}
			return next(c)
		}
	}
}

// CallerFrom はコンテキストから呼び出し元アドレスを取得する
func CallerFrom(c echo.Context) (common.Address, bool) {
	caller, ok := c.Get(callerContextKey).(common.Address)
	return caller, ok
}

// SetCaller は呼び出し元アドレスをコンテキストに設定する
func SetCaller(c echo.Context, caller common.Address) {
	c.Set(callerContextKey, caller)
}

// IssueCallerToken は呼び出し元アドレスを sub に持つ HS256 トークンを発行する
func IssueCallerToken(secret string, caller common.Address, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   caller.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func callerFromHeader(req *http.Request) (common.Address, bool, error) {
	raw := strings.TrimSpace(req.Header.Get(HeaderCallerAddress))
	if raw == "" {
		return common.Address{}, false, nil
	}
	return parseAddress(raw)
}

func callerFromToken(req *http.Request, secret string) (common.Address, bool, error) {
	auth := req.Header.Get(echo.HeaderAuthorization)
	if auth == "" {
		return common.Address{}, false, nil
	}
	raw, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return common.Address{}, false, fmt.Errorf("トークンは Bearer 形式である必要があります")
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return common.Address{}, false, fmt.Errorf("トークンが無効です: %w", err)
	}
	return parseAddress(claims.Subject)
}

func parseAddress(raw string) (common.Address, bool, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, false, fmt.Errorf("アドレスの形式が不正です: %q", raw)
	}
	addr := common.HexToAddress(raw)
	if addr == (common.Address{}) {
		return common.Address{}, false, fmt.Errorf("ゼロアドレスは使用できません")
	}
	return addr, true, nil
}
