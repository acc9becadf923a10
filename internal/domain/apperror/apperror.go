// Package apperror はドメイン横断のエラー種別を定義する
//
// 各ドメインのエラーはここで定義した種別をラップするため、
// 呼び出し側は errors.Is で個別エラーと種別の両方を判定できる。
package apperror

import (
	"errors"
	"fmt"
)

// エラー種別
var (
	ErrInvalidArgument     = errors.New("不正な引数です")
	ErrIdentityRequired    = errors.New("アイデンティティの登録が必要です")
	ErrNotFound            = errors.New("見つかりません")
	ErrUnauthorized        = errors.New("権限がありません")
	ErrAlreadySettled      = errors.New("既に精算済みです")
	ErrSoldOut             = errors.New("チケットは完売しました")
	ErrInsufficientPayment = errors.New("支払い金額が不足しています")
	ErrTransferFailed      = errors.New("送金に失敗しました")
	ErrOngoing             = errors.New("イベントはまだ終了していません")
)

// kinds は Kind が判定対象とする種別の一覧
var kinds = []error{
	ErrInvalidArgument,
	ErrIdentityRequired,
	ErrNotFound,
	ErrUnauthorized,
	ErrAlreadySettled,
	ErrSoldOut,
	ErrInsufficientPayment,
	ErrTransferFailed,
	ErrOngoing,
}

// New は種別をラップしたドメインエラーを作成する
func New(kind error, msg string) error {
	return &Error{kind: kind, msg: msg}
}

// Error は種別付きのドメインエラー
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

// Unwrap は種別を返す
func (e *Error) Unwrap() error {
	return e.kind
}

// Kind はエラーチェーンに含まれる種別を返す。該当しない場合は nil
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Wrap は任意のエラーに種別を付与する
func Wrap(kind error, err error) error {
	return fmt.Errorf("%w: %w", kind, err)
}
