package ticket

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Repository はチケットリポジトリのインターフェース
type Repository interface {
	// Append はイベントのチケット一覧の末尾に追加する
	Append(ctx context.Context, ticket *Ticket) error

	// CountByEventID はイベントのチケット数を返す（次のチケットIDになる）
	CountByEventID(ctx context.Context, eventID int64) (int64, error)

	// ListByEventID はイベントのチケットをID順に取得する
	ListByEventID(ctx context.Context, eventID int64) ([]*Ticket, error)

	// ListEventIDsByOwner は所有者がチケットを持つイベントIDを重複なしでID順に返す
	ListEventIDsByOwner(ctx context.Context, owner common.Address) ([]int64, error)

	// Update はチケットのフラグを更新する
	Update(ctx context.Context, ticket *Ticket) error
}
