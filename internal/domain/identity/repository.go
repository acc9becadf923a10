package identity

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Repository はアイデンティティリポジトリのインターフェース
type Repository interface {
	// GetByAddress はアドレスからアイデンティティを取得する
	GetByAddress(ctx context.Context, addr common.Address) (*Identity, error)

	// Save はアイデンティティを作成または更新する
	Save(ctx context.Context, identity *Identity) error
}
