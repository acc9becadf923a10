package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/transaction"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/metrics"
)

// Locker はエスクローを変更する操作をプロセス全体（または全インスタンス）で直列化する
type Locker interface {
	// Acquire はロックを取得し、解放関数を返す
	Acquire(ctx context.Context) (release func(), err error)
}

// LocalLocker はプロセス内のミューテックスによる Locker
type LocalLocker struct {
	mu sync.Mutex
}

// NewLocalLocker は LocalLocker を作成する
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{}
}

// Acquire はミューテックスを取得する
func (l *LocalLocker) Acquire(ctx context.Context) (func(), error) {
	l.mu.Lock()
	return l.mu.Unlock, nil
}

// operationRunner は1つの操作をロック取得とトランザクションで包む
// ロックは再入できないため、run の中から別の run を呼んではならない
type operationRunner struct {
	txManager transaction.Manager
	locker    Locker
}

func (r operationRunner) run(ctx context.Context, fn func(ctx context.Context) error) error {
	start := time.Now()
	release, err := r.locker.Acquire(ctx)
	metrics.Get().LockAcquired(start, err)
	if err != nil {
		return fmt.Errorf("操作ロックの取得に失敗: %w", err)
	}
	defer release()

	return r.txManager.WithinTx(ctx, fn)
}
