package transaction

import "context"

// Manager はトランザクションを管理するインターフェース
// ドメイン層がインフラ層（sqlx等）に依存しないようにするための抽象化
type Manager interface {
	// WithinTx は fn をひとつのトランザクションで実行する
	// fn がエラーを返した場合は全ての変更をロールバックする。
	// トランザクションは ctx 経由でリポジトリに渡される
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
