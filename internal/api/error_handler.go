package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/apperror"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// kindStatus はエラー種別ごとのHTTPステータスとレスポンス上の名前
var kindStatus = map[error]struct {
	status int
	name   string
}{
	apperror.ErrInvalidArgument:     {http.StatusBadRequest, "invalid_argument"},
	apperror.ErrInsufficientPayment: {http.StatusBadRequest, "insufficient_payment"},
	apperror.ErrIdentityRequired:    {http.StatusForbidden, "identity_required"},
	apperror.ErrUnauthorized:        {http.StatusForbidden, "unauthorized"},
	apperror.ErrNotFound:            {http.StatusNotFound, "not_found"},
	apperror.ErrAlreadySettled:      {http.StatusConflict, "already_settled"},
	apperror.ErrSoldOut:             {http.StatusConflict, "sold_out"},
	apperror.ErrOngoing:             {http.StatusConflict, "ongoing"},
	apperror.ErrTransferFailed:      {http.StatusBadGateway, "transfer_failed"},
}

// StatusOf はエラーに対応するHTTPステータスと種別名を返す
// HTTPError はそのコードを使い、種別名は内部エラーから求める。種別を持たないエラーは 500
func StatusOf(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		_, name := statusOfKind(he.Internal)
		return he.Code, name
	}
	return statusOfKind(err)
}

func statusOfKind(err error) (int, string) {
	if err != nil {
		if k, ok := kindStatus[apperror.Kind(err)]; ok {
			return k.status, k.name
		}
	}
	return http.StatusInternalServerError, ""
}

// ToHTTPError はドメインエラーを種別に応じた HTTPError に変換する
// 種別を持たないエラーのメッセージはクライアントに返さない
func ToHTTPError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	code, kind := statusOfKind(err)
	msg := err.Error()
	if kind == "" {
		msg = internalErrorMessage
	}
	return echo.NewHTTPError(code, msg).SetInternal(err)
}

const internalErrorMessage = "内部サーバーエラー"

// CustomHTTPErrorHandler はカスタムエラーハンドラー
// ドメインエラーは種別に応じたステータスに変換し、メッセージをそのまま返す
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, kind := StatusOf(err)
	message := err.Error()

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}

	if code >= 500 {
		logger.FromContext(c.Request().Context()).Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
		if kind == "" && he == nil {
			message = internalErrorMessage
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, ErrorResponse{
			Error: message,
			Code:  code,
			Kind:  kind,
		})
	}
	if err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}
