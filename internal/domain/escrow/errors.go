package escrow

import "github.com/sanosuguru/go-ticket-escrow/internal/domain/apperror"

// Escrow ドメインのエラー定義
var (
	ErrInvalidCommission   = apperror.New(apperror.ErrInvalidArgument, "手数料率は0〜100である必要があります")
	ErrInvalidAmount       = apperror.New(apperror.ErrTransferFailed, "金額は0以上である必要があります")
	ErrInvalidRecipient    = apperror.New(apperror.ErrTransferFailed, "送金先アドレスが不正です")
	ErrBalanceOverflow     = apperror.New(apperror.ErrInvalidArgument, "預かり残高の上限を超えます")
	ErrInsufficientBalance = apperror.New(apperror.ErrTransferFailed, "預かり残高が不足しています")
	ErrStateNotInitialized = apperror.New(apperror.ErrNotFound, "エスクローが初期化されていません")
	ErrTransferNotFound    = apperror.New(apperror.ErrNotFound, "送金が見つかりません")
)
