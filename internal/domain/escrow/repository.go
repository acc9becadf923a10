package escrow

import "context"

// Repository はエスクローリポジトリのインターフェース
type Repository interface {
	// Init は状態が未作成の場合のみ作成する。既存の状態を返す
	Init(ctx context.Context, state *State) (*State, error)

	// GetState は状態を取得する。トランザクション内では行ロックを取る
	GetState(ctx context.Context) (*State, error)

	// SaveBalance は残高を保存する
	SaveBalance(ctx context.Context, balance int64) error

	// EnqueueTransfer は配信待ちの送金を記録する
	EnqueueTransfer(ctx context.Context, transfer *Transfer) error

	// ListPendingTransfers は配信待ちの送金を古い順に取得する
	ListPendingTransfers(ctx context.Context, limit int) ([]*Transfer, error)

	// ListTransfersByEventID はイベントの送金をID順に取得する
	ListTransfersByEventID(ctx context.Context, eventID int64) ([]*Transfer, error)

	// UpdateTransfer は送金の配信状態を更新する
	UpdateTransfer(ctx context.Context, transfer *Transfer) error
}
