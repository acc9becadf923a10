package event

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Repository はイベントリポジトリのインターフェース
// トランザクション内で呼ばれた場合はそのトランザクションを使用する
type Repository interface {
	// Create は新しいイベントを作成し、採番したIDを設定する
	Create(ctx context.Context, event *Event) error

	// GetByID はIDからイベントを取得する（論理削除済みも含む）
	GetByID(ctx context.Context, id int64) (*Event, error)

	// List は論理削除されていないイベントをID順に取得する
	List(ctx context.Context) ([]*Event, error)

	// ListByOwner はオーナーのイベントをID順に取得する（論理削除済みは除く）
	ListByOwner(ctx context.Context, owner common.Address) ([]*Event, error)

	// ListPublic は公開中のイベントをID順に取得する（論理削除済みは除く）
	ListPublic(ctx context.Context) ([]*Event, error)

	// ListByIDs は指定IDのイベントを指定順に取得する（論理削除済みも含む）
	ListByIDs(ctx context.Context, ids []int64) ([]*Event, error)

	// Update はイベントの全項目を更新する
	Update(ctx context.Context, event *Event) error

	// UpdateDetails は編集可能な項目（名前・説明・画像・開催日・価格・締切・定員）だけを更新する。
	// 販売数や決済フラグは書き換えない
	UpdateDetails(ctx context.Context, event *Event) error

	// UpdateVisibility は公開状態だけを更新する
	UpdateVisibility(ctx context.Context, event *Event) error
}
