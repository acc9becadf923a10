package worker

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-escrow/internal/domain/escrow"
	"github.com/sanosuguru/go-ticket-escrow/internal/domain/transaction"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/clock"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/logger"
	"github.com/sanosuguru/go-ticket-escrow/internal/pkg/metrics"
)

// TransferStore は配信待ち送金の取得と状態更新を行う
type TransferStore interface {
	ListPendingTransfers(ctx context.Context, limit int) ([]*escrow.Transfer, error)
	UpdateTransfer(ctx context.Context, transfer *escrow.Transfer) error
}

// TransferSender は送金を実行し、トランザクションハッシュを返す
type TransferSender interface {
	Send(ctx context.Context, recipient common.Address, amount int64) (string, error)
}

// DispatcherConfig は配信ワーカーの設定
type DispatcherConfig struct {
	Interval    time.Duration
	MaxAttempts int
	BatchSize   int
}

// TransferDispatcher は精算で記録された送金を定期的に配信するワーカー
// 残高やイベントのフラグは変更せず、送金の配信状態だけを更新する
type TransferDispatcher struct {
	txManager transaction.Manager
	store     TransferStore
	sender    TransferSender
	clock     clock.Clock
	cfg       DispatcherConfig
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewTransferDispatcher は新しい配信ワーカーを作成
func NewTransferDispatcher(
	tm transaction.Manager,
	store TransferStore,
	sender TransferSender,
	clk clock.Clock,
	cfg DispatcherConfig,
) *TransferDispatcher {
	return &TransferDispatcher{
		txManager: tm,
		store:     store,
		sender:    sender,
		clock:     clk,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start は配信ワーカーを開始
func (d *TransferDispatcher) Start(ctx context.Context) {
	logger.Info("送金配信ワーカー開始",
		zap.Duration("interval", d.cfg.Interval),
		zap.Int("max_attempts", d.cfg.MaxAttempts),
		zap.Int("batch_size", d.cfg.BatchSize),
	)

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()
	defer close(d.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("送金配信ワーカー停止（コンテキストキャンセル）")
			return
		case <-d.stopCh:
			logger.Info("送金配信ワーカー停止（シグナル受信）")
			return
		case <-ticker.C:
			d.dispatch(ctx)
		}
	}
}

// Stop は配信ワーカーを停止
func (d *TransferDispatcher) Stop() {
	close(d.stopCh)
	<-d.doneCh
}

// DispatchResult は1回の配信の結果
type DispatchResult struct {
	Sent    int
	Retried int
	Failed  int
}

// dispatch は配信待ちの送金を1バッチ分配信する
// バッチ全体を1トランザクションで扱い、PostgreSQL では他インスタンスと同じ行を取り合わない
func (d *TransferDispatcher) dispatch(ctx context.Context) DispatchResult {
	log := logger.Get()
	log.Debug("送金配信開始")

	var result DispatchResult
	err := d.txManager.WithinTx(ctx, func(ctx context.Context) error {
		transfers, err := d.store.ListPendingTransfers(ctx, d.cfg.BatchSize)
		if err != nil {
			return err
		}
		for _, t := range transfers {
			d.deliver(ctx, t, &result)
			if err := d.store.UpdateTransfer(ctx, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("送金配信失敗", zap.Error(err))
		return result
	}

	if result.Sent+result.Retried+result.Failed > 0 {
		log.Info("送金を配信",
			zap.Int("sent", result.Sent),
			zap.Int("retried", result.Retried),
			zap.Int("failed", result.Failed),
		)
	} else {
		log.Debug("配信待ちの送金なし")
	}
	return result
}

func (d *TransferDispatcher) deliver(ctx context.Context, t *escrow.Transfer, result *DispatchResult) {
	// 0件の送金はチェーンに送らず完了扱い
	if t.Amount == 0 {
		t.MarkSent("", d.clock.Now())
		result.Sent++
		metrics.Get().TransferDispatched("sent")
		return
	}

	txHash, err := d.sender.Send(ctx, t.Recipient, t.Amount)
	if err != nil {
		t.MarkAttemptFailed(err, d.cfg.MaxAttempts, d.clock.Now())
		if t.Status == escrow.TransferStatusFailed {
			result.Failed++
			metrics.Get().TransferDispatched("failed")
			logger.Error("送金の配信を断念",
				zap.Int64("transfer_id", t.ID),
				zap.String("recipient", t.Recipient.Hex()),
				zap.Int64("amount", t.Amount),
				zap.Error(err),
			)
			return
		}
		result.Retried++
		metrics.Get().TransferDispatched("retry")
		logger.Warn("送金の配信に失敗（再試行予定）", zap.Int64("transfer_id", t.ID), zap.Int("attempts", t.Attempts), zap.Error(err))
		return
	}

	t.MarkSent(txHash, d.clock.Now())
	result.Sent++
	metrics.Get().TransferDispatched("sent")
}
