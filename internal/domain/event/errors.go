package event

import "github.com/sanosuguru/go-ticket-escrow/internal/domain/apperror"

// Event ドメインのエラー定義
var (
	ErrEventNotFound       = apperror.New(apperror.ErrNotFound, "イベントが見つかりません")
	ErrEventNameRequired   = apperror.New(apperror.ErrInvalidArgument, "イベント名は必須です")
	ErrDescriptionRequired = apperror.New(apperror.ErrInvalidArgument, "説明は必須です")
	ErrImageURLRequired    = apperror.New(apperror.ErrInvalidArgument, "画像URLは必須です")
	ErrStartDateRequired   = apperror.New(apperror.ErrInvalidArgument, "開始日は必須です")
	ErrInvalidCapacity     = apperror.New(apperror.ErrInvalidArgument, "定員は1以上である必要があります")
	ErrNegativePrice       = apperror.New(apperror.ErrInvalidArgument, "価格は0以上である必要があります")
	ErrPriceRequired       = apperror.New(apperror.ErrInvalidArgument, "いずれかの価格を設定する必要があります")
	ErrInvalidEndTime      = apperror.New(apperror.ErrInvalidArgument, "終了時刻は現在より後である必要があります")
	ErrCapacityBelowSold   = apperror.New(apperror.ErrInvalidArgument, "定員を販売済み枚数より少なくすることはできません")
	ErrNotOwner            = apperror.New(apperror.ErrUnauthorized, "イベントのオーナーではありません")
	ErrNotOwnerOrAdmin     = apperror.New(apperror.ErrUnauthorized, "イベントのオーナーまたは管理者ではありません")
	ErrSoldOut             = apperror.New(apperror.ErrSoldOut, "チケットは完売しました")
	ErrAlreadyPaidOut      = apperror.New(apperror.ErrAlreadySettled, "イベントは既に支払い済みです")
	ErrAlreadyRefunded     = apperror.New(apperror.ErrAlreadySettled, "イベントは既に返金済みです")
	ErrAlreadyDeleted      = apperror.New(apperror.ErrAlreadySettled, "イベントは既に削除されています")
	ErrEventOngoing        = apperror.New(apperror.ErrOngoing, "イベントはまだ終了していません")
	ErrRevenueOverflow     = apperror.New(apperror.ErrInvalidArgument, "売上が計算可能な上限を超えています")
	ErrNotRefunded         = apperror.New(apperror.ErrInvalidArgument, "返金前のイベントは削除できません")
	ErrTicketsNotMinted    = apperror.New(apperror.ErrInvalidArgument, "クレデンシャル発行前に支払いはできません")
)
