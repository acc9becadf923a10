package identity

import "github.com/sanosuguru/go-ticket-escrow/internal/domain/apperror"

// Identity ドメインのエラー定義
var (
	ErrIdentityNotFound = apperror.New(apperror.ErrNotFound, "アイデンティティが見つかりません")
	ErrNotRegistered    = apperror.New(apperror.ErrIdentityRequired, "アイデンティティが登録されていません")
	ErrInvalidAddress   = apperror.New(apperror.ErrInvalidArgument, "アドレスが不正です")
)
