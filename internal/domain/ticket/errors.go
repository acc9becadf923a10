package ticket

import "github.com/sanosuguru/go-ticket-escrow/internal/domain/apperror"

// Ticket ドメインのエラー定義
var (
	ErrInvalidTier             = apperror.New(apperror.ErrInvalidArgument, "チケット種別が不正です")
	ErrNegativePayment         = apperror.New(apperror.ErrInvalidArgument, "支払い金額は0以上である必要があります")
	ErrInsufficientPayment     = apperror.New(apperror.ErrInsufficientPayment, "支払い金額がチケット価格に足りません")
	ErrTicketNotFound          = apperror.New(apperror.ErrNotFound, "チケットが見つかりません")
	ErrAlreadyRefunded         = apperror.New(apperror.ErrAlreadySettled, "チケットは既に返金済みです")
	ErrCredentialAlreadyMinted = apperror.New(apperror.ErrAlreadySettled, "クレデンシャルは既に発行済みです")
)
